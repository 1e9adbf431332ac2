package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/agriportal/agriportal-backend/pkg/enums"
)

// Registration is a business's application for regulatory registration.
type Registration struct {
	ID                uuid.UUID               `gorm:"column:id;type:uuid;primaryKey"`
	BusinessName      string                  `gorm:"column:business_name;not null"`
	ContactPerson     string                  `gorm:"column:contact_person;not null"`
	Email             string                  `gorm:"column:email;not null;index"`
	Phone             *string                 `gorm:"column:phone"`
	OfficeAddress     string                  `gorm:"column:office_address;not null"`
	Municipality      *string                 `gorm:"column:municipality"`
	NatureOfBusiness  *string                 `gorm:"column:nature_of_business"`
	ToolsAndEquipment *string                 `gorm:"column:tools_and_equipment"`
	ApplicationType   enums.ApplicationType   `gorm:"column:application_type;not null;default:'new'"`
	FilingDate        time.Time               `gorm:"column:filing_date;not null"`
	RegistrationDate  *time.Time              `gorm:"column:registration_date"`
	ValidUntil        *time.Time              `gorm:"column:valid_until"`
	CertificateNumber *string                 `gorm:"column:certificate_number;uniqueIndex"`
	IdentityDocument  *string                 `gorm:"column:identity_document"`
	QRCode            *string                 `gorm:"column:qr_code"`
	Status            enums.ApplicationStatus `gorm:"column:status;not null;default:'Pending';index"`
	CreatedAt         time.Time               `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time               `gorm:"column:updated_at;autoUpdateTime"`
}

func (Registration) TableName() string { return "registrations" }

func (r *Registration) BeforeCreate(*gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.Status == "" {
		r.Status = enums.ApplicationStatusPending
	}
	return nil
}
