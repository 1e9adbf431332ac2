package registrations

import (
	"time"

	"github.com/google/uuid"

	"github.com/agriportal/agriportal-backend/pkg/db/models"
)

// RegistrationDTO is the client view of a registration record.
type RegistrationDTO struct {
	ID                uuid.UUID  `json:"id"`
	BusinessName      string     `json:"business_name"`
	ContactPerson     string     `json:"contact_person"`
	Email             string     `json:"email"`
	Phone             *string    `json:"phone,omitempty"`
	OfficeAddress     string     `json:"office_address"`
	Municipality      *string    `json:"municipality,omitempty"`
	NatureOfBusiness  *string    `json:"nature_of_business,omitempty"`
	ToolsAndEquipment *string    `json:"tools_and_equipment,omitempty"`
	ApplicationType   string     `json:"application_type"`
	FilingDate        time.Time  `json:"filing_date"`
	RegistrationDate  *time.Time `json:"registration_date,omitempty"`
	ValidUntil        *time.Time `json:"valid_until,omitempty"`
	CertificateNumber *string    `json:"certificate_number,omitempty"`
	IdentityDocument  *string    `json:"identity_document,omitempty"`
	QRCode            *string    `json:"qr_code,omitempty"`
	Status            string     `json:"status"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// NewRegistrationDTO maps the persisted registration.
func NewRegistrationDTO(r *models.Registration) *RegistrationDTO {
	return &RegistrationDTO{
		ID:                r.ID,
		BusinessName:      r.BusinessName,
		ContactPerson:     r.ContactPerson,
		Email:             r.Email,
		Phone:             r.Phone,
		OfficeAddress:     r.OfficeAddress,
		Municipality:      r.Municipality,
		NatureOfBusiness:  r.NatureOfBusiness,
		ToolsAndEquipment: r.ToolsAndEquipment,
		ApplicationType:   string(r.ApplicationType),
		FilingDate:        r.FilingDate,
		RegistrationDate:  r.RegistrationDate,
		ValidUntil:        r.ValidUntil,
		CertificateNumber: r.CertificateNumber,
		IdentityDocument:  r.IdentityDocument,
		QRCode:            r.QRCode,
		Status:            string(r.Status),
		CreatedAt:         r.CreatedAt,
		UpdatedAt:         r.UpdatedAt,
	}
}

// NewRegistrationItems maps a page of registrations.
func NewRegistrationItems(rows []models.Registration) []RegistrationDTO {
	items := make([]RegistrationDTO, 0, len(rows))
	for i := range rows {
		items = append(items, *NewRegistrationDTO(&rows[i]))
	}
	return items
}
