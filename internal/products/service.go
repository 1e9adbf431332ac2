package product

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/agriportal/agriportal-backend/internal/notifications"
	"github.com/agriportal/agriportal-backend/pkg/db/models"
	"github.com/agriportal/agriportal-backend/pkg/enums"
	pkgerrors "github.com/agriportal/agriportal-backend/pkg/errors"
	"github.com/agriportal/agriportal-backend/pkg/logger"
	"github.com/agriportal/agriportal-backend/pkg/pagination"
)

// Service exposes marketplace listing operations.
type Service interface {
	CreateProduct(ctx context.Context, ownerEmail string, input CreateProductInput) (*ProductDTO, error)
	GetProduct(ctx context.Context, id uuid.UUID, viewer Viewer) (*ProductDTO, error)
	ListPublic(ctx context.Context, input ListProductsInput) (*pagination.Page[ProductDTO], error)
	ListMine(ctx context.Context, ownerEmail string, input ListProductsInput) (*pagination.Page[ProductDTO], error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*StatusResult, error)
}

// CreateProductInput holds the validated payload to create a listing.
type CreateProductInput struct {
	Name        string
	Description *string
	Category    string
	Price       decimal.Decimal
	Quantity    int
	Unit        string
	ImageURL    *string
}

// ListProductsInput filters listing queries.
type ListProductsInput struct {
	Category string
	pagination.Params
}

// Viewer identifies who is reading a listing. Unapproved listings are visible
// to their owner and to admins only.
type Viewer struct {
	Email string
	Admin bool
}

// StatusResult reports the outcome of a review decision on a listing.
type StatusResult struct {
	Product      *ProductDTO
	Changed      bool
	Notification *models.Notification
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	repo          *Repository
	notifications notifications.Repository
	tx            txRunner
	logg          *logger.Logger
}

// NewService constructs a product service instance.
func NewService(repo *Repository, notificationRepo notifications.Repository, tx txRunner, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if notificationRepo == nil {
		return nil, fmt.Errorf("notification repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("db client required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{repo: repo, notifications: notificationRepo, tx: tx, logg: logg}, nil
}

func (s *service) CreateProduct(ctx context.Context, ownerEmail string, input CreateProductInput) (*ProductDTO, error) {
	owner := strings.ToLower(strings.TrimSpace(ownerEmail))
	if owner == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "owner email required")
	}
	product, err := buildProduct(owner, input)
	if err != nil {
		return nil, err
	}

	created, err := s.repo.CreateProduct(ctx, product)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert product")
	}
	s.logg.Info(s.logg.WithRecord(ctx, "product", created.ID.String()), "product.created")
	return NewProductDTO(created), nil
}

func (s *service) GetProduct(ctx context.Context, id uuid.UUID, viewer Viewer) (*ProductDTO, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.InvalidInput("product id is required")
	}
	product, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if product.Status != enums.ApplicationStatusApproved && !viewer.Admin &&
		!strings.EqualFold(strings.TrimSpace(viewer.Email), product.OwnerEmail) {
		return nil, pkgerrors.NotFound("product not found")
	}
	return NewProductDTO(product), nil
}

func (s *service) ListPublic(ctx context.Context, input ListProductsInput) (*pagination.Page[ProductDTO], error) {
	approved := enums.ApplicationStatusApproved
	q := productListQuery{status: &approved, page: input.Params}
	return s.list(ctx, q, input.Category)
}

func (s *service) ListMine(ctx context.Context, ownerEmail string, input ListProductsInput) (*pagination.Page[ProductDTO], error) {
	owner := strings.ToLower(strings.TrimSpace(ownerEmail))
	if owner == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "owner email required")
	}
	return s.list(ctx, productListQuery{ownerEmail: &owner, page: input.Params}, input.Category)
}

func (s *service) list(ctx context.Context, q productListQuery, category string) (*pagination.Page[ProductDTO], error) {
	if strings.TrimSpace(category) != "" {
		parsed, err := enums.ParseProductCategory(category)
		if err != nil {
			return nil, pkgerrors.InvalidInput("invalid category")
		}
		q.category = &parsed
	}
	if _, err := pagination.ParseCursor(q.page.Cursor); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	rows, err := s.repo.ListProducts(ctx, q)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	return newProductPage(rows, q.page.Limit), nil
}

// UpdateStatus records an admin decision. For Approved and Rejected the owner
// notification is inserted in the same transaction as the status write, so the
// response is only sent once both rows exist.
func (s *service) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*StatusResult, error) {
	target, err := enums.ParseApplicationStatus(strings.TrimSpace(status))
	if err != nil {
		return nil, pkgerrors.InvalidInput("status must be Pending, Approved or Rejected").
			WithDetails(map[string]any{"status": status})
	}
	if id == uuid.Nil {
		return nil, pkgerrors.InvalidInput("product id is required")
	}

	product, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	current := product.Status
	if !enums.CanTransition(current, target) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "status transition not allowed").
			WithDetails(map[string]any{"from": current, "to": target})
	}
	if current == target {
		return &StatusResult{Product: NewProductDTO(product)}, nil
	}

	product.Status = target
	notice := notifications.ForProductDecision(*product)
	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		updated, err := s.repo.WithTx(tx).UpdateStatus(ctx, product.ID, current, target)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update product status")
		}
		if !updated {
			return pkgerrors.New(pkgerrors.CodeConflict, "product was modified concurrently; reload and retry")
		}
		if notice == nil {
			return nil
		}
		if err := s.notifications.WithTx(tx).Create(ctx, notice); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert notification")
		}
		return nil
	}); err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product status")
	}

	s.logg.Info(s.logg.WithFields(s.logg.WithRecord(ctx, "product", product.ID.String()), map[string]any{
		"from": current,
		"to":   target,
	}), "product.status_changed")

	reloaded, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	return &StatusResult{Product: NewProductDTO(reloaded), Changed: true, Notification: notice}, nil
}

func (s *service) find(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.NotFound("product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup product")
	}
	return product, nil
}

func buildProduct(owner string, input CreateProductInput) (*models.Product, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.InvalidInput("name is required")
	}
	category, err := enums.ParseProductCategory(input.Category)
	if err != nil {
		return nil, pkgerrors.InvalidInput("invalid category")
	}
	unit, err := enums.ParseProductUnit(input.Unit)
	if err != nil {
		return nil, pkgerrors.InvalidInput("invalid unit")
	}
	if !input.Price.IsPositive() {
		return nil, pkgerrors.InvalidInput("price must be greater than zero")
	}
	if input.Quantity < 0 {
		return nil, pkgerrors.InvalidInput("quantity cannot be negative")
	}

	return &models.Product{
		OwnerEmail:  owner,
		Name:        name,
		Description: trimmedPtr(input.Description),
		Category:    category,
		Price:       input.Price.Round(2),
		Quantity:    input.Quantity,
		Unit:        unit,
		ImageURL:    trimmedPtr(input.ImageURL),
		Status:      enums.ApplicationStatusPending,
	}, nil
}

func trimmedPtr(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
