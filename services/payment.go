package services

import (
	"errors"
	"fmt"
	"time"

	"clinic_flow_app_go/models"

	"gorm.io/gorm"
)

// paymentUpdatableColumns enumerates the storage columns a partial payment
// update may touch
var paymentUpdatableColumns = map[string]bool{
	"amount":         true,
	"payment_date":   true,
	"payment_method": true,
	"reference":      true,
	"notes":          true,
}

// CreatePaymentFromInvoice derives a therapist payment from a paid invoice.
//
// The operation is a no-op when the invoice does not exist or is not paid,
// and idempotent when a payment already references the invoice: the existing
// payment is returned unchanged.
func CreatePaymentFromInvoice(db *gorm.DB, invoiceID uint) (*models.TherapistPayment, error) {
	var invoice models.Invoice
	err := db.First(&invoice, "id = ?", invoiceID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if !invoice.IsPaid() {
		return nil, nil
	}

	var existing models.TherapistPayment
	err = db.First(&existing, "invoice_id = ?", invoice.ID).Error
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	method := models.DefaultPaymentMethod
	if invoice.PaymentMethod != nil && *invoice.PaymentMethod != "" {
		method = *invoice.PaymentMethod
	}
	notes := fmt.Sprintf("Paiement généré pour la facture %s", invoice.InvoiceNumber)

	payment := &models.TherapistPayment{
		TherapistID:   invoice.TherapistID,
		InvoiceID:     invoice.ID,
		Amount:        invoice.Amount,
		PaymentDate:   FormatDayMonthYear(time.Now()),
		PaymentMethod: method,
		Notes:         &notes,
	}
	if err := db.Create(payment).Error; err != nil {
		return nil, err
	}
	return payment, nil
}

// CreatePayment persists a manually recorded therapist payment
func CreatePayment(db *gorm.DB, payment *models.TherapistPayment) error {
	if payment.PaymentMethod == "" {
		payment.PaymentMethod = models.DefaultPaymentMethod
	}
	if payment.PaymentDate == "" {
		payment.PaymentDate = FormatDayMonthYear(time.Now())
	}
	return db.Create(payment).Error
}

// GetPaymentByID fetches a single payment with relationships
func GetPaymentByID(db *gorm.DB, id uint) (*models.TherapistPayment, error) {
	var payment models.TherapistPayment
	err := db.Preload("Therapist").Preload("Invoice").
		First(&payment, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPaymentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

// GetPaymentByInvoice fetches the payment recorded for an invoice, or nil
// when none exists
func GetPaymentByInvoice(db *gorm.DB, invoiceID uint) (*models.TherapistPayment, error) {
	var payment models.TherapistPayment
	err := db.First(&payment, "invoice_id = ?", invoiceID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

// ListPayments fetches all therapist payments
func ListPayments(db *gorm.DB) ([]models.TherapistPayment, error) {
	var payments []models.TherapistPayment
	err := db.Preload("Therapist").Preload("Invoice").
		Order("created_at desc").
		Find(&payments).Error
	return payments, err
}

// GetPaymentsByTherapist fetches payments made to a therapist
func GetPaymentsByTherapist(db *gorm.DB, therapistID uint) ([]models.TherapistPayment, error) {
	var payments []models.TherapistPayment
	err := db.Preload("Invoice").
		Where("therapist_id = ?", therapistID).
		Order("created_at desc").
		Find(&payments).Error
	return payments, err
}

// GetPaymentsByDateRange fetches payments whose payment date falls within the
// inclusive range. Dates are compared on parsed day values since the stored
// pattern does not sort lexically.
func GetPaymentsByDateRange(db *gorm.DB, start, end time.Time) ([]models.TherapistPayment, error) {
	var payments []models.TherapistPayment
	err := db.Preload("Therapist").Preload("Invoice").
		Order("created_at desc").
		Find(&payments).Error
	if err != nil {
		return nil, err
	}

	var filtered []models.TherapistPayment
	for _, payment := range payments {
		date, parseErr := ParseDayMonthYear(payment.PaymentDate)
		if parseErr != nil {
			continue
		}
		if !date.Before(start) && !date.After(end) {
			filtered = append(filtered, payment)
		}
	}
	return filtered, nil
}

// UpdatePayment applies a partial update to a payment
func UpdatePayment(db *gorm.DB, id uint, updates map[string]interface{}) (*models.TherapistPayment, error) {
	var existing models.TherapistPayment
	err := db.First(&existing, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPaymentNotFound
	}
	if err != nil {
		return nil, err
	}

	for column := range updates {
		if !paymentUpdatableColumns[column] {
			return nil, fmt.Errorf("unknown payment field: %s", column)
		}
	}

	if len(updates) > 0 {
		if err := db.Model(&existing).Updates(updates).Error; err != nil {
			return nil, err
		}
	}

	var updated models.TherapistPayment
	if err := db.First(&updated, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeletePayment removes a therapist payment
func DeletePayment(db *gorm.DB, id uint) error {
	result := db.Delete(&models.TherapistPayment{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrPaymentNotFound
	}
	return nil
}
