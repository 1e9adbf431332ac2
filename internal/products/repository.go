package product

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/agriportal/agriportal-backend/pkg/db/models"
	"github.com/agriportal/agriportal-backend/pkg/enums"
	"github.com/agriportal/agriportal-backend/pkg/pagination"
)

// Repository persists marketplace listings.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a product repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository that executes within the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

type productListQuery struct {
	ownerEmail *string
	status     *enums.ApplicationStatus
	category   *enums.ProductCategory
	page       pagination.Params
}

// CreateProduct inserts a new listing.
func (r *Repository) CreateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

// FindByID loads a listing or returns gorm.ErrRecordNotFound.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// ListProducts returns listings newest first with one look-ahead row.
func (r *Repository) ListProducts(ctx context.Context, q productListQuery) ([]models.Product, error) {
	query := r.db.WithContext(ctx).Model(&models.Product{})
	if q.ownerEmail != nil {
		query = query.Where("owner_email = ?", *q.ownerEmail)
	}
	if q.status != nil {
		query = query.Where("status = ?", *q.status)
	}
	if q.category != nil {
		query = query.Where("category = ?", *q.category)
	}
	query, err := pagination.Apply(query, q.page, "created_at")
	if err != nil {
		return nil, err
	}

	var rows []models.Product
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// UpdateStatus moves a listing to target only while it still holds expected.
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, expected, target enums.ApplicationStatus) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ? AND status = ?", id, expected).
		Update("status", target)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
