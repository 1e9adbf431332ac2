package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/agriportal/agriportal-backend/pkg/enums"
)

// Notification stores in-app notifications addressed to a user email. Rows are
// never expired; only IsRead changes after insert.
type Notification struct {
	ID        uuid.UUID              `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	UserEmail string                 `gorm:"column:user_email;not null;index" json:"user_email"`
	Type      enums.NotificationType `gorm:"column:type;not null" json:"type"`
	Title     string                 `gorm:"column:title;not null" json:"title"`
	Message   string                 `gorm:"column:message;not null" json:"message"`
	ProductID *uuid.UUID             `gorm:"column:product_id;type:uuid" json:"product_id,omitempty"`
	IsRead    bool                   `gorm:"column:is_read;not null;default:false" json:"is_read"`
	CreatedAt time.Time              `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Notification) TableName() string { return "notifications" }

func (n *Notification) BeforeCreate(*gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}
