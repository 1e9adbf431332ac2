package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/agriportal/agriportal-backend/pkg/enums"
)

// Permit is a cut or transport authorization with its own review lifecycle.
type Permit struct {
	ID                uuid.UUID               `gorm:"column:id;type:uuid;primaryKey"`
	PermitType        enums.PermitType        `gorm:"column:permit_type;not null"`
	ApplicantName     string                  `gorm:"column:applicant_name;not null"`
	Email             string                  `gorm:"column:email;not null;index"`
	Phone             *string                 `gorm:"column:phone"`
	Address           string                  `gorm:"column:address;not null"`
	Municipality      enums.Municipality      `gorm:"column:municipality;not null"`
	NumberOfTrees     int                     `gorm:"column:number_of_trees;not null"`
	VolumeCubicMeters decimal.Decimal         `gorm:"column:volume_cubic_meters;type:numeric(12,3);not null"`
	Purpose           *string                 `gorm:"column:purpose"`
	Destination       *string                 `gorm:"column:destination"`
	Status            enums.ApplicationStatus `gorm:"column:status;not null;default:'Pending';index"`
	CreatedAt         time.Time               `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time               `gorm:"column:updated_at;autoUpdateTime"`
}

func (Permit) TableName() string { return "permits" }

func (p *Permit) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.Status == "" {
		p.Status = enums.ApplicationStatusPending
	}
	return nil
}
