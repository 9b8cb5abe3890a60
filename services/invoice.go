package services

import (
	"errors"
	"fmt"
	"math"
	"time"

	"clinic_flow_app_go/models"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// sessionPrice is the process-wide per-session amount used for invoice
// generation and cancellation-driven recomputation. Installed from config at
// startup; the default matches config.DefaultSessionPrice.
var sessionPrice = 50.0

// SetSessionPrice installs the configured per-session price
func SetSessionPrice(price float64) {
	if price > 0 {
		sessionPrice = price
	}
}

// SessionPrice returns the configured per-session price
func SessionPrice() float64 {
	return sessionPrice
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// invoiceUpdatableColumns enumerates the storage columns a partial invoice
// update may touch. Unknown fields are rejected at the boundary.
var invoiceUpdatableColumns = map[string]bool{
	"amount":         true,
	"tax_rate":       true,
	"total_amount":   true,
	"status":         true,
	"issue_date":     true,
	"due_date":       true,
	"payment_method": true,
	"notes":          true,
}

// GenerateInvoiceForAppointment derives a pending invoice from an
// appointment at the fixed session price. The invoice number embeds the
// current year and the appointment id.
func GenerateInvoiceForAppointment(db *gorm.DB, apt *models.Appointment) (*models.Invoice, error) {
	now := time.Now()
	notes := fmt.Sprintf("Facture pour la séance du %s à %s", apt.Date, apt.Time)

	invoice := &models.Invoice{
		InvoiceNumber: fmt.Sprintf("F-%d-%04d", now.Year(), apt.ID),
		PatientID:     apt.PatientID,
		TherapistID:   apt.TherapistID,
		AppointmentID: apt.ID,
		Amount:        sessionPrice,
		TaxRate:       0,
		TotalAmount:   sessionPrice,
		Status:        models.InvoiceStatusPending,
		IssueDate:     FormatDayMonthYear(now),
		DueDate:       FormatDayMonthYear(now.AddDate(0, 0, 30)),
		Notes:         &notes,
	}

	if err := CreateInvoice(db, invoice); err != nil {
		return nil, err
	}
	return invoice, nil
}

// CreateInvoice persists a new invoice
func CreateInvoice(db *gorm.DB, invoice *models.Invoice) error {
	if invoice.Status == "" {
		invoice.Status = models.InvoiceStatusPending
	}
	canonical, ok := models.NormalizeInvoiceStatus(invoice.Status)
	if !ok {
		return fmt.Errorf("invalid invoice status: %s", invoice.Status)
	}
	invoice.Status = canonical
	return db.Create(invoice).Error
}

// GetInvoiceByID fetches a single invoice with relationships
func GetInvoiceByID(db *gorm.DB, id uint) (*models.Invoice, error) {
	var invoice models.Invoice
	err := db.Preload("Patient").Preload("Therapist").Preload("Appointment").
		First(&invoice, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvoiceNotFound
	}
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

// GetInvoiceByAppointment fetches the invoice issued for an appointment, or
// nil when none exists
func GetInvoiceByAppointment(db *gorm.DB, appointmentID uint) (*models.Invoice, error) {
	var invoice models.Invoice
	err := db.First(&invoice, "appointment_id = ?", appointmentID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

// ListInvoices fetches all invoices. A storage failure degrades to an empty
// list so one bad read does not take down the whole billing page.
func ListInvoices(db *gorm.DB) []models.Invoice {
	var invoices []models.Invoice
	err := db.Preload("Patient").Preload("Therapist").
		Order("created_at desc").
		Find(&invoices).Error
	if err != nil {
		log.Warn().Err(err).Msg("invoice list query failed, returning empty list")
		return []models.Invoice{}
	}
	return invoices
}

// GetInvoicesByPatient fetches invoices for a patient, degrading to an empty
// list on storage failure
func GetInvoicesByPatient(db *gorm.DB, patientID uint) []models.Invoice {
	var invoices []models.Invoice
	err := db.Preload("Therapist").
		Where("patient_id = ?", patientID).
		Order("created_at desc").
		Find(&invoices).Error
	if err != nil {
		log.Warn().Err(err).Uint("patient_id", patientID).Msg("invoice query failed, returning empty list")
		return []models.Invoice{}
	}
	return invoices
}

// GetInvoicesByTherapist fetches invoices for a therapist, degrading to an
// empty list on storage failure
func GetInvoicesByTherapist(db *gorm.DB, therapistID uint) []models.Invoice {
	var invoices []models.Invoice
	err := db.Preload("Patient").
		Where("therapist_id = ?", therapistID).
		Order("created_at desc").
		Find(&invoices).Error
	if err != nil {
		log.Warn().Err(err).Uint("therapist_id", therapistID).Msg("invoice query failed, returning empty list")
		return []models.Invoice{}
	}
	return invoices
}

// UpdateInvoice applies a partial update to an invoice.
//
// A paid invoice is immutable through this path except for amount
// corrections: unless the patch sets both amount and total_amount together,
// any status field is dropped before applying. When the update transitions
// the invoice to paid, a therapist payment is derived as a side effect;
// failure to create it is logged and does not roll back the update.
func UpdateInvoice(db *gorm.DB, id uint, updates map[string]interface{}) (*models.Invoice, error) {
	var existing models.Invoice
	err := db.First(&existing, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvoiceNotFound
	}
	if err != nil {
		return nil, err
	}

	for column := range updates {
		if !invoiceUpdatableColumns[column] {
			return nil, fmt.Errorf("unknown invoice field: %s", column)
		}
	}

	if status, ok := updates["status"].(string); ok {
		canonical, valid := models.NormalizeInvoiceStatus(status)
		if !valid {
			return nil, fmt.Errorf("invalid invoice status: %s", status)
		}
		updates["status"] = canonical
	}

	wasPaid := existing.IsPaid()
	_, hasAmount := updates["amount"]
	_, hasTotal := updates["total_amount"]
	amountCorrection := hasAmount && hasTotal

	if wasPaid && !amountCorrection {
		// Paid invoices cannot be reopened; only the cancellation
		// amount-correction path may touch them.
		delete(updates, "status")
	}

	if len(updates) > 0 {
		if err := db.Model(&existing).Updates(updates).Error; err != nil {
			return nil, err
		}
	}

	var updated models.Invoice
	if err := db.First(&updated, "id = ?", id).Error; err != nil {
		return nil, err
	}

	if !wasPaid && updated.IsPaid() {
		if _, err := CreatePaymentFromInvoice(db, updated.ID); err != nil {
			log.Warn().Err(err).Uint("invoice_id", updated.ID).
				Msg("failed to create therapist payment for paid invoice")
		}
		NotifyInvoicePaid(db, &updated)
	}

	return &updated, nil
}

// DeleteInvoice removes an invoice unless a therapist payment has been
// recorded against it
func DeleteInvoice(db *gorm.DB, id uint) error {
	var invoice models.Invoice
	err := db.First(&invoice, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrInvoiceNotFound
	}
	if err != nil {
		return err
	}

	settled, err := invoiceHasPayment(db, invoice.ID)
	if err != nil {
		return err
	}
	if settled {
		return ErrInvoiceSettled
	}

	// Hard delete: invoice_number and appointment_id carry unique indexes, and
	// a soft-deleted row would block regenerating the invoice after a later
	// confirmed/pending transition.
	return db.Unscoped().Delete(&models.Invoice{}, "id = ?", id).Error
}

// invoiceHasPayment reports whether a therapist payment references the invoice
func invoiceHasPayment(db *gorm.DB, invoiceID uint) (bool, error) {
	var count int64
	err := db.Model(&models.TherapistPayment{}).
		Where("invoice_id = ?", invoiceID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
