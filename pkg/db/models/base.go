package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func ensureID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

func (u *User) BeforeCreate(*gorm.DB) error          { ensureID(&u.ID); return nil }
func (m *Medicine) BeforeCreate(*gorm.DB) error      { ensureID(&m.ID); return nil }
func (c *Category) BeforeCreate(*gorm.DB) error      { ensureID(&c.ID); return nil }
func (a *Advice) BeforeCreate(*gorm.DB) error        { ensureID(&a.ID); return nil }
func (c *CartItem) BeforeCreate(*gorm.DB) error      { ensureID(&c.ID); return nil }
func (p *PaymentRecord) BeforeCreate(*gorm.DB) error { ensureID(&p.ID); return nil }
func (o *OutboxEvent) BeforeCreate(*gorm.DB) error   { ensureID(&o.ID); return nil }

// All lists every persisted model in dependency order.
func All() []any {
	return []any{
		&User{},
		&Category{},
		&Medicine{},
		&Advice{},
		&CartItem{},
		&PaymentRecord{},
		&OutboxEvent{},
	}
}
