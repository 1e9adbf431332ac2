package registrations

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/agriportal/agriportal-backend/pkg/db/models"
	"github.com/agriportal/agriportal-backend/pkg/enums"
	"github.com/agriportal/agriportal-backend/pkg/pagination"
)

// Repository exposes registration persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a registration repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

type listQuery struct {
	status *enums.ApplicationStatus
	page   pagination.Params
}

// Create inserts a new registration row.
func (r *Repository) Create(ctx context.Context, reg *models.Registration) (*models.Registration, error) {
	if err := r.db.WithContext(ctx).Create(reg).Error; err != nil {
		return nil, err
	}
	return reg, nil
}

// FindByID loads a registration or returns gorm.ErrRecordNotFound.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Registration, error) {
	var reg models.Registration
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&reg).Error; err != nil {
		return nil, err
	}
	return &reg, nil
}

// List returns registrations newest first with one look-ahead row.
func (r *Repository) List(ctx context.Context, q listQuery) ([]models.Registration, error) {
	query := r.db.WithContext(ctx).Model(&models.Registration{})
	if q.status != nil {
		query = query.Where("status = ?", *q.status)
	}
	query, err := pagination.Apply(query, q.page, "created_at")
	if err != nil {
		return nil, err
	}

	var rows []models.Registration
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// UpdateStatus writes the transition only if the row still holds the expected
// status. It reports whether a row was updated.
func (r *Repository) UpdateStatus(ctx context.Context, reg *models.Registration, expected enums.ApplicationStatus) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Registration{}).
		Where("id = ? AND status = ?", reg.ID, expected).
		Updates(map[string]any{
			"status":             reg.Status,
			"registration_date":  reg.RegistrationDate,
			"valid_until":        reg.ValidUntil,
			"certificate_number": reg.CertificateNumber,
			"updated_at":         reg.UpdatedAt,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
