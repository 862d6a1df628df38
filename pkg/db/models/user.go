package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/medimall/medimall-backend/pkg/enums"
)

// User is the identity record. Email is the natural key; the role is never
// embedded in a token and is re-read on every privileged check.
type User struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Email     string     `gorm:"type:text;not null;uniqueIndex"`
	Name      string     `gorm:"column:name;not null;default:''"`
	PhotoURL  *string    `gorm:"column:photo_url"`
	Role      enums.Role `gorm:"column:role;type:text;not null;default:'none'"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
