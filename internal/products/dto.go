package product

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/agriportal/agriportal-backend/pkg/db/models"
	"github.com/agriportal/agriportal-backend/pkg/pagination"
)

// ProductDTO represents the listing payload returned to clients.
type ProductDTO struct {
	ID          uuid.UUID       `json:"id"`
	OwnerEmail  string          `json:"owner_email"`
	Name        string          `json:"name"`
	Description *string         `json:"description,omitempty"`
	Category    string          `json:"category"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
	Unit        string          `json:"unit"`
	ImageURL    *string         `json:"image_url,omitempty"`
	Status      string          `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// NewProductDTO builds a DTO from the persisted model.
func NewProductDTO(product *models.Product) *ProductDTO {
	return &ProductDTO{
		ID:          product.ID,
		OwnerEmail:  product.OwnerEmail,
		Name:        product.Name,
		Description: product.Description,
		Category:    string(product.Category),
		Price:       product.Price,
		Quantity:    product.Quantity,
		Unit:        string(product.Unit),
		ImageURL:    product.ImageURL,
		Status:      string(product.Status),
		CreatedAt:   product.CreatedAt,
		UpdatedAt:   product.UpdatedAt,
	}
}

func newProductPage(rows []models.Product, limit int) *pagination.Page[ProductDTO] {
	page := pagination.Finish(rows, limit, func(p models.Product) pagination.Cursor {
		return pagination.Cursor{CreatedAt: p.CreatedAt, ID: p.ID}
	})
	items := make([]ProductDTO, 0, len(page.Items))
	for i := range page.Items {
		items = append(items, *NewProductDTO(&page.Items[i]))
	}
	return &pagination.Page[ProductDTO]{Items: items, NextCursor: page.NextCursor}
}
