package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/agriportal/agriportal-backend/pkg/enums"
)

// Message is an append-only chat record between two participants.
type Message struct {
	ID        uuid.UUID         `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	RoomID    string            `gorm:"column:room_id;not null;index" json:"room_id"`
	From      string            `gorm:"column:from_email;not null" json:"from"`
	To        string            `gorm:"column:to_email;not null" json:"to"`
	Text      *string           `gorm:"column:text" json:"text,omitempty"`
	ImageURL  *string           `gorm:"column:image_url" json:"image_url,omitempty"`
	Type      enums.MessageType `gorm:"column:type;not null" json:"type"`
	Read      bool              `gorm:"column:is_read;not null;default:false" json:"read"`
	Timestamp time.Time         `gorm:"column:sent_at;not null" json:"timestamp"`
}

func (Message) TableName() string { return "messages" }

func (m *Message) BeforeCreate(*gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.Timestamp.IsZero() {
		m.Timestamp = time.Now().UTC()
	}
	return nil
}
