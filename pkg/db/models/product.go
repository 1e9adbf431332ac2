package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/agriportal/agriportal-backend/pkg/enums"
)

// Product is a marketplace listing that becomes public once approved.
type Product struct {
	ID          uuid.UUID               `gorm:"column:id;type:uuid;primaryKey"`
	OwnerEmail  string                  `gorm:"column:owner_email;not null;index"`
	Name        string                  `gorm:"column:name;not null"`
	Description *string                 `gorm:"column:description"`
	Category    enums.ProductCategory   `gorm:"column:category;not null"`
	Price       decimal.Decimal         `gorm:"column:price;type:numeric(12,2);not null"`
	Quantity    int                     `gorm:"column:quantity;not null"`
	Unit        enums.ProductUnit       `gorm:"column:unit;not null"`
	ImageURL    *string                 `gorm:"column:image_url"`
	Status      enums.ApplicationStatus `gorm:"column:status;not null;default:'Pending';index"`
	CreatedAt   time.Time               `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time               `gorm:"column:updated_at;autoUpdateTime"`
}

func (Product) TableName() string { return "products" }

func (p *Product) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.Status == "" {
		p.Status = enums.ApplicationStatusPending
	}
	return nil
}
