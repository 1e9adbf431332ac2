package messages

import (
	"context"

	"gorm.io/gorm"

	"github.com/agriportal/agriportal-backend/pkg/db/models"
	"github.com/agriportal/agriportal-backend/pkg/pagination"
)

// Repository persists chat messages.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds the message repository to a database handle.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, msg *models.Message) error {
	return r.db.WithContext(ctx).Create(msg).Error
}

// ListRoom returns a room's messages newest first with one look-ahead row.
func (r *Repository) ListRoom(ctx context.Context, roomID string, page pagination.Params) ([]models.Message, error) {
	query := r.db.WithContext(ctx).Model(&models.Message{}).Where("room_id = ?", roomID)
	query, err := pagination.Apply(query, page, "sent_at")
	if err != nil {
		return nil, err
	}
	var rows []models.Message
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// MarkRead flags every unread message addressed to reader in the room.
func (r *Repository) MarkRead(ctx context.Context, roomID, reader string) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Message{}).
		Where("room_id = ? AND to_email = ? AND is_read = ?", roomID, reader, false).
		UpdateColumn("is_read", true)
	return res.RowsAffected, res.Error
}

// CountUnread counts messages addressed to reader that are still unread.
func (r *Repository) CountUnread(ctx context.Context, reader string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Message{}).
		Where("to_email = ? AND is_read = ?", reader, false).
		Count(&count).Error
	return count, err
}
