package permits

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/agriportal/agriportal-backend/pkg/db/models"
	"github.com/agriportal/agriportal-backend/pkg/enums"
	"github.com/agriportal/agriportal-backend/pkg/pagination"
)

// Repository exposes permit persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a permit repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

type listQuery struct {
	status     *enums.ApplicationStatus
	permitType *enums.PermitType
	page       pagination.Params
}

func (r *Repository) Create(ctx context.Context, permit *models.Permit) (*models.Permit, error) {
	if err := r.db.WithContext(ctx).Create(permit).Error; err != nil {
		return nil, err
	}
	return permit, nil
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Permit, error) {
	var permit models.Permit
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&permit).Error; err != nil {
		return nil, err
	}
	return &permit, nil
}

func (r *Repository) List(ctx context.Context, q listQuery) ([]models.Permit, error) {
	query := r.db.WithContext(ctx).Model(&models.Permit{})
	if q.status != nil {
		query = query.Where("status = ?", *q.status)
	}
	if q.permitType != nil {
		query = query.Where("permit_type = ?", *q.permitType)
	}
	query, err := pagination.Apply(query, q.page, "created_at")
	if err != nil {
		return nil, err
	}

	var rows []models.Permit
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// UpdateStatus writes the new status only while the row still holds expected.
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, expected, target enums.ApplicationStatus) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Permit{}).
		Where("id = ? AND status = ?", id, expected).
		Update("status", target)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
