package users

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/medimall/medimall-backend/pkg/db/models"
	"github.com/medimall/medimall-backend/pkg/enums"
)

// UserDTO is the transport shape of an identity.
type UserDTO struct {
	ID        uuid.UUID  `json:"id"`
	Email     string     `json:"email"`
	Name      string     `json:"name"`
	PhotoURL  *string    `json:"photo_url,omitempty"`
	Role      enums.Role `json:"role"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// RegisterUserDTO is the self-registration payload.
type RegisterUserDTO struct {
	Email    string  `json:"email" validate:"required,email"`
	Name     string  `json:"name" validate:"omitempty,max=200"`
	PhotoURL *string `json:"photo_url" validate:"omitempty,url"`
}

// SetRoleDTO is the role-assignment payload.
type SetRoleDTO struct {
	Role string `json:"role" validate:"required"`
}

func FromModel(u *models.User) *UserDTO {
	if u == nil {
		return nil
	}
	return &UserDTO{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		PhotoURL:  u.PhotoURL,
		Role:      u.Role.Normalize(),
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// ToModel builds a new identity. Registration never grants privileges.
func (d RegisterUserDTO) ToModel() *models.User {
	return &models.User{
		Email:    normalizeEmail(d.Email),
		Name:     strings.TrimSpace(d.Name),
		PhotoURL: d.PhotoURL,
		Role:     enums.RoleNone,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
