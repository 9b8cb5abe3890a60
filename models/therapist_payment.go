package models

import "time"

// Default payment method used when a paid invoice carries none
const DefaultPaymentMethod = "bank_transfer"

// TherapistPayment records money paid out to a therapist for a settled
// invoice. Its existence freezes deletion of the invoice and the appointment
// behind it.
type TherapistPayment struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	TherapistID uint      `gorm:"index;not null" json:"therapist_id"`
	Therapist   Therapist `gorm:"foreignKey:TherapistID" json:"therapist,omitempty"`

	InvoiceID uint    `gorm:"index;not null;constraint:OnDelete:RESTRICT" json:"invoice_id"`
	Invoice   Invoice `gorm:"foreignKey:InvoiceID" json:"invoice,omitempty"`

	Amount float64 `gorm:"not null" json:"amount"`

	// Day-precision, DD/MM/YYYY
	PaymentDate string `gorm:"size:10;not null" json:"payment_date"`

	PaymentMethod string  `gorm:"size:50;default:'bank_transfer'" json:"payment_method"`
	Reference     *string `gorm:"size:100" json:"reference,omitempty"`
	Notes         *string `gorm:"type:text" json:"notes,omitempty"`
}

// TableName specifies the table name for TherapistPayment model
func (TherapistPayment) TableName() string {
	return "therapist_payments"
}
