package models

import (
	"time"

	"gorm.io/gorm"
)

// Invoice status constants (canonical spellings)
const (
	InvoiceStatusPending   = "pending"
	InvoiceStatusToPay     = "to_pay"
	InvoiceStatusPaid      = "paid"
	InvoiceStatusCancelled = "cancelled"
)

// invoiceStatusAliases maps legacy French spellings to canonical statuses
var invoiceStatusAliases = map[string]string{
	"en_attente": InvoiceStatusPending,
	"à_payer":    InvoiceStatusToPay,
	"payée":      InvoiceStatusPaid,
	"annulée":    InvoiceStatusCancelled,
}

// Invoice represents a bill issued for an appointment. A consolidated series
// invoice covers every occurrence of a recurring series; its notes enumerate
// the covered dates.
type Invoice struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Unique number, format F-<year>-<appointment id padded to 4 digits>
	InvoiceNumber string `gorm:"size:20;uniqueIndex;not null" json:"invoice_number"`

	PatientID uint    `gorm:"index;not null" json:"patient_id"`
	Patient   Patient `gorm:"foreignKey:PatientID" json:"patient,omitempty"`

	TherapistID uint      `gorm:"index;not null" json:"therapist_id"`
	Therapist   Therapist `gorm:"foreignKey:TherapistID" json:"therapist,omitempty"`

	// One invoice per appointment
	AppointmentID uint        `gorm:"uniqueIndex;not null" json:"appointment_id"`
	Appointment   Appointment `gorm:"foreignKey:AppointmentID" json:"appointment,omitempty"`

	Amount      float64 `gorm:"not null" json:"amount"`
	TaxRate     float64 `gorm:"default:0" json:"tax_rate"`
	TotalAmount float64 `gorm:"not null" json:"total_amount"`

	Status string `gorm:"size:20;default:'pending';index" json:"status"`

	// Day-precision, DD/MM/YYYY
	IssueDate string `gorm:"size:10;not null" json:"issue_date"`
	DueDate   string `gorm:"size:10;not null" json:"due_date"`

	PaymentMethod *string `gorm:"size:50" json:"payment_method,omitempty"`
	Notes         *string `gorm:"type:text" json:"notes,omitempty"`
}

// TableName specifies the table name for Invoice model
func (Invoice) TableName() string {
	return "invoices"
}

// NormalizeInvoiceStatus maps an input status (canonical or legacy French
// spelling) to its canonical value
func NormalizeInvoiceStatus(status string) (string, bool) {
	if canonical, ok := invoiceStatusAliases[status]; ok {
		return canonical, true
	}
	switch status {
	case InvoiceStatusPending, InvoiceStatusToPay, InvoiceStatusPaid, InvoiceStatusCancelled:
		return status, true
	}
	return status, false
}

// IsValidInvoiceStatus checks if the status is valid (canonical or alias)
func IsValidInvoiceStatus(status string) bool {
	_, ok := NormalizeInvoiceStatus(status)
	return ok
}

// IsPaid reports whether the invoice has been settled by the patient
func (i *Invoice) IsPaid() bool {
	canonical, _ := NormalizeInvoiceStatus(i.Status)
	return canonical == InvoiceStatusPaid
}

// GetInvoiceStatusDisplayName returns the localized display string
func GetInvoiceStatusDisplayName(status string) string {
	canonical, _ := NormalizeInvoiceStatus(status)
	names := map[string]string{
		InvoiceStatusPending:   "En attente",
		InvoiceStatusToPay:     "À payer",
		InvoiceStatusPaid:      "Payée",
		InvoiceStatusCancelled: "Annulée",
	}
	if name, ok := names[canonical]; ok {
		return name
	}
	return status
}
