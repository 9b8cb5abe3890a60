package services

import (
	"errors"
	"fmt"
	"strings"

	"clinic_flow_app_go/models"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// appointmentUpdatableColumns enumerates the storage columns a partial
// appointment update may touch. Unknown fields are rejected at the boundary.
var appointmentUpdatableColumns = map[string]bool{
	"patient_id":       true,
	"therapist_id":     true,
	"date":             true,
	"time":             true,
	"duration_minutes": true,
	"type":             true,
	"notes":            true,
	"status":           true,
}

// CreateAppointment persists an appointment. Unless skipped, reaching a
// confirmed or pending status generates the appointment's invoice as a side
// effect. Invoice generation is best-effort: a failure is logged and never
// rolls back the created appointment.
func CreateAppointment(db *gorm.DB, apt *models.Appointment, skipInvoiceGeneration bool) error {
	if apt.Status == "" {
		apt.Status = models.AppointmentStatusPending
	}
	canonical, ok := models.NormalizeAppointmentStatus(apt.Status)
	if !ok {
		return fmt.Errorf("invalid appointment status: %s", apt.Status)
	}
	apt.Status = canonical

	if _, err := ParseDayMonthYear(apt.Date); err != nil {
		return err
	}
	if err := ValidateTimeOfDay(apt.Time); err != nil {
		return err
	}

	if err := db.Create(apt).Error; err != nil {
		return err
	}

	if !skipInvoiceGeneration &&
		(apt.Status == models.AppointmentStatusConfirmed || apt.Status == models.AppointmentStatusPending) {
		if _, err := GenerateInvoiceForAppointment(db, apt); err != nil {
			log.Warn().Err(err).Uint("appointment_id", apt.ID).
				Msg("failed to generate invoice for appointment")
		}
	}

	if apt.Status == models.AppointmentStatusConfirmed {
		NotifyAppointmentConfirmed(db, apt)
	}

	return nil
}

// CreateRecurringAppointments generates a full recurring series from a base
// appointment.
//
// Every occurrence after the base is conflict-checked before anything is
// created; a single occupied slot aborts the whole operation. The first
// occurrence becomes the series parent and gets the invoice; when
// generateSingleInvoice is set the children share that anchor invoice, whose
// notes and amount are rewritten to cover the whole series. Otherwise each
// child is invoiced at the session price.
//
// Returns the created appointments, parent first then children in
// chronological order.
func CreateRecurringAppointments(db *gorm.DB, base *models.Appointment, frequency string, count int, generateSingleInvoice bool) ([]models.Appointment, error) {
	if count < 1 {
		return nil, fmt.Errorf("recurring count must be at least 1")
	}
	if !models.IsValidFrequency(frequency) {
		return nil, fmt.Errorf("invalid recurrence frequency: %s", frequency)
	}

	baseDate, err := ParseDayMonthYear(base.Date)
	if err != nil {
		return nil, err
	}
	if err := ValidateTimeOfDay(base.Time); err != nil {
		return nil, err
	}

	occurrences := RecurrenceDates(baseDate, base.Time, frequency, count)

	// Conflict-check every generated occurrence before creating anything so
	// an occupied slot aborts with zero rows written.
	for _, occ := range occurrences[1:] {
		date := FormatDayMonthYear(occ.Date)
		conflict, err := CheckAvailability(db, base.TherapistID, date, occ.Time, 0)
		if err != nil {
			return nil, err
		}
		if conflict != nil {
			return nil, ErrSlotOccupied(date, occ.Time, conflict.Patient.FullName())
		}
	}

	parent := models.Appointment{
		PatientID:           base.PatientID,
		TherapistID:         base.TherapistID,
		Date:                base.Date,
		Time:                base.Time,
		DurationMinutes:     base.DurationMinutes,
		Type:                base.Type,
		Notes:               base.Notes,
		Status:              base.Status,
		IsRecurring:         true,
		RecurringFrequency:  &frequency,
		RecurringCount:      &count,
		ParentAppointmentID: nil,
	}
	if err := CreateAppointment(db, &parent, false); err != nil {
		return nil, err
	}

	// The parent's invoice anchors the consolidated series when one invoice
	// covers everything.
	anchor, err := GetInvoiceByAppointment(db, parent.ID)
	if err != nil {
		log.Warn().Err(err).Uint("appointment_id", parent.ID).
			Msg("failed to fetch anchor invoice for recurring series")
	}

	created := []models.Appointment{parent}

	for _, occ := range occurrences[1:] {
		child := models.Appointment{
			PatientID:           base.PatientID,
			TherapistID:         base.TherapistID,
			Date:                FormatDayMonthYear(occ.Date),
			Time:                occ.Time,
			DurationMinutes:     base.DurationMinutes,
			Type:                base.Type,
			Notes:               base.Notes,
			Status:              parent.Status,
			IsRecurring:         true,
			RecurringFrequency:  &frequency,
			ParentAppointmentID: &parent.ID,
		}
		if err := CreateAppointment(db, &child, generateSingleInvoice); err != nil {
			return nil, err
		}

		if generateSingleInvoice && anchor != nil {
			line := fmt.Sprintf("Séance du %s à %s", child.Date, child.Time)
			notes := line
			if anchor.Notes != nil && *anchor.Notes != "" {
				notes = *anchor.Notes + "\n" + line
			}
			if err := db.Model(anchor).Update("notes", notes).Error; err != nil {
				log.Warn().Err(err).Uint("invoice_id", anchor.ID).
					Msg("failed to append occurrence to anchor invoice notes")
			} else {
				anchor.Notes = &notes
			}
		}

		created = append(created, child)
	}

	if generateSingleInvoice && anchor != nil {
		var lines []string
		for _, occ := range occurrences {
			lines = append(lines, fmt.Sprintf("- %s à %s", FormatDayMonthYear(occ.Date), occ.Time))
		}
		summary := fmt.Sprintf("Facture groupée pour %d séances (récurrence %s) :\n%s",
			count, models.GetFrequencyDisplayName(frequency), strings.Join(lines, "\n"))
		amount := round2(sessionPrice * float64(count))

		err := db.Model(anchor).Updates(map[string]interface{}{
			"notes":        summary,
			"amount":       amount,
			"total_amount": amount,
		}).Error
		if err != nil {
			log.Warn().Err(err).Uint("invoice_id", anchor.ID).
				Msg("failed to consolidate anchor invoice for recurring series")
		}
	}

	return created, nil
}

// GetAppointmentByID fetches a single appointment with relationships
func GetAppointmentByID(db *gorm.DB, id uint) (*models.Appointment, error) {
	var apt models.Appointment
	err := db.Preload("Patient").Preload("Therapist").
		First(&apt, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrAppointmentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &apt, nil
}

// ListAppointments fetches all appointments ordered by schedule
func ListAppointments(db *gorm.DB) ([]models.Appointment, error) {
	var appointments []models.Appointment
	err := db.Preload("Patient").Preload("Therapist").
		Order("date, time").
		Find(&appointments).Error
	return appointments, err
}

// GetAppointmentsByPatient fetches appointments for a patient
func GetAppointmentsByPatient(db *gorm.DB, patientID uint) ([]models.Appointment, error) {
	var appointments []models.Appointment
	err := db.Preload("Therapist").
		Where("patient_id = ?", patientID).
		Order("date, time").
		Find(&appointments).Error
	return appointments, err
}

// GetAppointmentsByTherapist fetches appointments for a therapist
func GetAppointmentsByTherapist(db *gorm.DB, therapistID uint) ([]models.Appointment, error) {
	var appointments []models.Appointment
	err := db.Preload("Patient").
		Where("therapist_id = ?", therapistID).
		Order("date, time").
		Find(&appointments).Error
	return appointments, err
}

// UpdateAppointment applies a partial update to an appointment and reconciles
// invoice and payment state when the status changed.
//
// A status change on a recurring parent cascades to every child of the
// series. The owning invoice of a recurring child is the parent's invoice.
// Cancelling a recurring child recomputes the consolidated invoice amount
// from the remaining sessions and retroactively corrects an already-recorded
// therapist payment.
func UpdateAppointment(db *gorm.DB, id uint, updates map[string]interface{}) (*models.Appointment, error) {
	var existing models.Appointment
	err := db.First(&existing, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrAppointmentNotFound
	}
	if err != nil {
		return nil, err
	}

	for column := range updates {
		if !appointmentUpdatableColumns[column] {
			return nil, fmt.Errorf("unknown appointment field: %s", column)
		}
	}

	newStatus := ""
	if status, ok := updates["status"].(string); ok {
		canonical, valid := models.NormalizeAppointmentStatus(status)
		if !valid {
			return nil, fmt.Errorf("invalid appointment status: %s", status)
		}
		updates["status"] = canonical
		newStatus = canonical
	}

	// Updates mutates the destination struct, so capture the prior status
	// before applying the patch
	oldStatus := existing.Status

	if len(updates) > 0 {
		if err := db.Model(&existing).Updates(updates).Error; err != nil {
			return nil, err
		}
	}

	if newStatus != "" && newStatus != oldStatus {
		if err := reconcileStatusChange(db, &existing, oldStatus, newStatus); err != nil {
			return nil, err
		}
	}

	var updated models.Appointment
	if err := db.Preload("Patient").Preload("Therapist").First(&updated, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &updated, nil
}

// reconcileStatusChange applies the invoice and payment side effects of an
// appointment status transition
func reconcileStatusChange(db *gorm.DB, apt *models.Appointment, oldStatus, newStatus string) error {
	// A parent's status propagates to every child of its series
	if apt.IsRecurringParent() {
		err := db.Model(&models.Appointment{}).
			Where("parent_appointment_id = ?", apt.ID).
			Update("status", newStatus).Error
		if err != nil {
			return err
		}
	}

	// The owning invoice of a recurring child is the parent's invoice
	owningAppointmentID := apt.ID
	if apt.IsRecurringChild() {
		owningAppointmentID = *apt.ParentAppointmentID
	}
	invoice, err := GetInvoiceByAppointment(db, owningAppointmentID)
	if err != nil {
		return err
	}

	if invoice == nil {
		if !apt.IsRecurringChild() &&
			(newStatus == models.AppointmentStatusConfirmed || newStatus == models.AppointmentStatusPending) {
			if _, err := GenerateInvoiceForAppointment(db, apt); err != nil {
				log.Warn().Err(err).Uint("appointment_id", apt.ID).
					Msg("failed to generate invoice on status change")
			}
		}
		return nil
	}

	if apt.IsRecurringChild() && newStatus == models.AppointmentStatusCancelled {
		return recomputeSeriesInvoice(db, apt, invoice, oldStatus, newStatus)
	}

	if !apt.IsRecurringChild() {
		invoiceStatus := ""
		switch newStatus {
		case models.AppointmentStatusCancelled:
			invoiceStatus = models.InvoiceStatusCancelled
		case models.AppointmentStatusPending:
			invoiceStatus = models.InvoiceStatusPending
		case models.AppointmentStatusCompleted:
			invoiceStatus = models.InvoiceStatusToPay
		}
		// Paid invoices only accept amount corrections; status mutation is
		// suppressed.
		if invoiceStatus != "" && !invoice.IsPaid() {
			if err := db.Model(invoice).Update("status", invoiceStatus).Error; err != nil {
				return err
			}
		}
	}

	return nil
}

// recomputeSeriesInvoice shrinks a consolidated series invoice after a child
// session was cancelled, and corrects the therapist payment if one was
// already recorded. The amount correction applies even when the invoice is
// paid.
func recomputeSeriesInvoice(db *gorm.DB, child *models.Appointment, invoice *models.Invoice, oldStatus, newStatus string) error {
	var parent models.Appointment
	if err := db.First(&parent, "id = ?", *child.ParentAppointmentID).Error; err != nil {
		return err
	}
	if parent.RecurringCount == nil {
		return nil
	}

	var cancelledCount int64
	err := db.Model(&models.Appointment{}).
		Where("parent_appointment_id = ? AND status = ?", parent.ID, models.AppointmentStatusCancelled).
		Count(&cancelledCount).Error
	if err != nil {
		return err
	}

	remaining := *parent.RecurringCount - int(cancelledCount)
	if remaining < 0 {
		remaining = 0
	}
	amount := round2(sessionPrice * float64(remaining))

	err = db.Model(invoice).Updates(map[string]interface{}{
		"amount":       amount,
		"total_amount": amount,
	}).Error
	if err != nil {
		return err
	}

	payment, err := GetPaymentByInvoice(db, invoice.ID)
	if err != nil {
		return err
	}
	if payment != nil {
		if err := db.Model(payment).Update("amount", amount).Error; err != nil {
			return err
		}
	}

	return LogStatusChange(db, child.ID, oldStatus, newStatus)
}

// LogStatusChange records a status-change audit entry
func LogStatusChange(db *gorm.DB, appointmentID uint, oldStatus, newStatus string) error {
	entry := models.AppointmentStatusChange{
		AppointmentID: appointmentID,
		OldStatus:     oldStatus,
		NewStatus:     newStatus,
	}
	return db.Create(&entry).Error
}

// DeleteAppointment removes an appointment, its unpaid invoices, and - for a
// recurring parent - its deletable children.
//
// Deletion is refused outright when any invoice of the appointment carries a
// therapist payment. Children whose invoices are settled are skipped and left
// intact; the rest are removed together with their invoices. A foreign-key
// violation naming the payment relationship surfaces as the same settled
// refusal, guarding against a payment recorded between the check and the
// delete.
func DeleteAppointment(db *gorm.DB, id uint) error {
	var apt models.Appointment
	err := db.First(&apt, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrAppointmentNotFound
	}
	if err != nil {
		return err
	}

	var invoices []models.Invoice
	if err := db.Where("appointment_id = ?", apt.ID).Find(&invoices).Error; err != nil {
		return err
	}
	for _, invoice := range invoices {
		settled, err := invoiceHasPayment(db, invoice.ID)
		if err != nil {
			return err
		}
		if settled {
			return ErrAppointmentSettled
		}
	}

	if apt.IsRecurringParent() {
		var children []models.Appointment
		if err := db.Where("parent_appointment_id = ?", apt.ID).Find(&children).Error; err != nil {
			return err
		}
		// Best-effort: a failing child does not stop the rest of the series
		for _, child := range children {
			if err := deleteChildAppointment(db, &child); err != nil {
				log.Warn().Err(err).Uint("appointment_id", child.ID).
					Msg("failed to delete recurring child, continuing")
			}
		}
	}

	// Re-check before removing: a payment may have been recorded since the
	// first pass.
	invoices = nil
	if err := db.Where("appointment_id = ?", apt.ID).Find(&invoices).Error; err != nil {
		return err
	}
	for _, invoice := range invoices {
		settled, err := invoiceHasPayment(db, invoice.ID)
		if err != nil {
			return err
		}
		if settled {
			return ErrAppointmentSettled
		}
		// Hard delete so the invoice's unique indexes release the slot
		if err := db.Unscoped().Delete(&models.Invoice{}, "id = ?", invoice.ID).Error; err != nil {
			return translatePaymentConstraint(err)
		}
	}

	result := db.Delete(&models.Appointment{}, "id = ?", apt.ID)
	if result.Error != nil {
		return translatePaymentConstraint(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrAppointmentNotFound
	}
	return nil
}

// deleteChildAppointment removes one recurring child and its invoices unless
// any of them is settled, in which case the child is left intact
func deleteChildAppointment(db *gorm.DB, child *models.Appointment) error {
	var invoices []models.Invoice
	if err := db.Where("appointment_id = ?", child.ID).Find(&invoices).Error; err != nil {
		return err
	}
	for _, invoice := range invoices {
		settled, err := invoiceHasPayment(db, invoice.ID)
		if err != nil {
			return err
		}
		if settled {
			// Settled child: keep it and its invoice
			return nil
		}
	}
	for _, invoice := range invoices {
		if err := db.Unscoped().Delete(&models.Invoice{}, "id = ?", invoice.ID).Error; err != nil {
			return translatePaymentConstraint(err)
		}
	}
	return db.Delete(&models.Appointment{}, "id = ?", child.ID).Error
}

// translatePaymentConstraint maps a foreign-key violation on the
// payment-to-invoice relationship to the settled refusal; anything else
// propagates unchanged
func translatePaymentConstraint(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return ErrAppointmentSettled
	}
	if strings.Contains(err.Error(), "therapist_payments") {
		return ErrAppointmentSettled
	}
	return err
}
