package services

import (
	"fmt"
	"testing"
	"time"

	"clinic_flow_app_go/models"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupAppointmentTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	assert.NoError(t, err)

	err = db.AutoMigrate(
		&models.Patient{},
		&models.Therapist{},
		&models.Appointment{},
		&models.Invoice{},
		&models.TherapistPayment{},
		&models.AppointmentStatusChange{},
	)
	assert.NoError(t, err)

	return db
}

func seedPatientAndTherapist(t *testing.T, db *gorm.DB) (models.Patient, models.Therapist) {
	patient := models.Patient{FirstName: "Claire", LastName: "Martin", Email: ""}
	therapist := models.Therapist{FirstName: "Paul", LastName: "Girard", Specialty: "Psychothérapie"}
	assert.NoError(t, db.Create(&patient).Error)
	assert.NoError(t, db.Create(&therapist).Error)
	return patient, therapist
}

func TestCreateAppointment(t *testing.T) {
	db := setupAppointmentTestDB(t)
	patient, therapist := seedPatientAndTherapist(t, db)

	t.Run("PendingStatusGeneratesInvoice", func(t *testing.T) {
		apt := &models.Appointment{
			PatientID:   patient.ID,
			TherapistID: therapist.ID,
			Date:        "05/01/2026",
			Time:        "10:00",
			Status:      models.AppointmentStatusPending,
		}
		assert.NoError(t, CreateAppointment(db, apt, false))

		invoice, err := GetInvoiceByAppointment(db, apt.ID)
		assert.NoError(t, err)
		assert.NotNil(t, invoice)
		assert.Equal(t, fmt.Sprintf("F-%d-%04d", time.Now().Year(), apt.ID), invoice.InvoiceNumber)
		assert.Equal(t, SessionPrice(), invoice.Amount)
		assert.Equal(t, SessionPrice(), invoice.TotalAmount)
		assert.Equal(t, models.InvoiceStatusPending, invoice.Status)
	})

	t.Run("SkipInvoiceGeneration", func(t *testing.T) {
		apt := &models.Appointment{
			PatientID:   patient.ID,
			TherapistID: therapist.ID,
			Date:        "06/01/2026",
			Time:        "10:00",
			Status:      models.AppointmentStatusConfirmed,
		}
		assert.NoError(t, CreateAppointment(db, apt, true))

		invoice, err := GetInvoiceByAppointment(db, apt.ID)
		assert.NoError(t, err)
		assert.Nil(t, invoice)
	})

	t.Run("CancelledStatusGeneratesNoInvoice", func(t *testing.T) {
		apt := &models.Appointment{
			PatientID:   patient.ID,
			TherapistID: therapist.ID,
			Date:        "07/01/2026",
			Time:        "10:00",
			Status:      models.AppointmentStatusCancelled,
		}
		assert.NoError(t, CreateAppointment(db, apt, false))

		invoice, err := GetInvoiceByAppointment(db, apt.ID)
		assert.NoError(t, err)
		assert.Nil(t, invoice)
	})

	t.Run("LocalizedStatusIsNormalized", func(t *testing.T) {
		apt := &models.Appointment{
			PatientID:   patient.ID,
			TherapistID: therapist.ID,
			Date:        "08/01/2026",
			Time:        "10:00",
			Status:      "confirmé",
		}
		assert.NoError(t, CreateAppointment(db, apt, true))
		assert.Equal(t, models.AppointmentStatusConfirmed, apt.Status)
	})

	t.Run("RejectsInvalidStatus", func(t *testing.T) {
		apt := &models.Appointment{
			PatientID:   patient.ID,
			TherapistID: therapist.ID,
			Date:        "09/01/2026",
			Time:        "10:00",
			Status:      "maybe",
		}
		assert.Error(t, CreateAppointment(db, apt, true))
	})
}

func TestCreateRecurringAppointments(t *testing.T) {
	t.Run("ConflictAbortsEntireSeries", func(t *testing.T) {
		db := setupAppointmentTestDB(t)
		patient, therapist := seedPatientAndTherapist(t, db)
		other := models.Patient{FirstName: "Marc", LastName: "Dupont"}
		assert.NoError(t, db.Create(&other).Error)

		// Occupy the slot of the second weekly occurrence
		blocker := &models.Appointment{
			PatientID:   other.ID,
			TherapistID: therapist.ID,
			Date:        "12/01/2026",
			Time:        "10:00",
			Status:      models.AppointmentStatusConfirmed,
		}
		assert.NoError(t, CreateAppointment(db, blocker, true))

		base := &models.Appointment{
			PatientID:   patient.ID,
			TherapistID: therapist.ID,
			Date:        "05/01/2026",
			Time:        "10:00",
			Status:      models.AppointmentStatusPending,
		}
		created, err := CreateRecurringAppointments(db, base, models.FrequencyWeekly, 4, true)
		assert.Error(t, err)
		assert.Nil(t, created)
		assert.Contains(t, err.Error(), "12/01/2026")
		assert.Contains(t, err.Error(), "Marc Dupont")

		// Full abort: only the blocker exists
		var count int64
		db.Model(&models.Appointment{}).Count(&count)
		assert.Equal(t, int64(1), count)
	})

	t.Run("ConsolidatedInvoiceCoversSeries", func(t *testing.T) {
		db := setupAppointmentTestDB(t)
		patient, therapist := seedPatientAndTherapist(t, db)

		base := &models.Appointment{
			PatientID:   patient.ID,
			TherapistID: therapist.ID,
			Date:        "05/01/2026",
			Time:        "10:00",
			Status:      models.AppointmentStatusPending,
		}
		created, err := CreateRecurringAppointments(db, base, models.FrequencyWeekly, 4, true)
		assert.NoError(t, err)
		assert.Len(t, created, 4)

		parent := created[0]
		assert.True(t, parent.IsRecurringParent())
		assert.Equal(t, 4, *parent.RecurringCount)
		for _, child := range created[1:] {
			assert.Equal(t, parent.ID, *child.ParentAppointmentID)
			assert.Nil(t, child.RecurringCount)
		}
		assert.Equal(t, "12/01/2026", created[1].Date)
		assert.Equal(t, "19/01/2026", created[2].Date)
		assert.Equal(t, "26/01/2026", created[3].Date)

		var invoiceCount int64
		db.Model(&models.Invoice{}).Count(&invoiceCount)
		assert.Equal(t, int64(1), invoiceCount)

		anchor, err := GetInvoiceByAppointment(db, parent.ID)
		assert.NoError(t, err)
		assert.NotNil(t, anchor)
		assert.Equal(t, 4*SessionPrice(), anchor.Amount)
		assert.Equal(t, 4*SessionPrice(), anchor.TotalAmount)
		assert.NotNil(t, anchor.Notes)
		assert.Contains(t, *anchor.Notes, "4 séances")
		assert.Contains(t, *anchor.Notes, "05/01/2026")
		assert.Contains(t, *anchor.Notes, "26/01/2026")
	})

	t.Run("PerSessionInvoices", func(t *testing.T) {
		db := setupAppointmentTestDB(t)
		patient, therapist := seedPatientAndTherapist(t, db)

		base := &models.Appointment{
			PatientID:   patient.ID,
			TherapistID: therapist.ID,
			Date:        "05/01/2026",
			Time:        "10:00",
			Status:      models.AppointmentStatusPending,
		}
		created, err := CreateRecurringAppointments(db, base, models.FrequencyWeekly, 4, false)
		assert.NoError(t, err)
		assert.Len(t, created, 4)

		var invoices []models.Invoice
		assert.NoError(t, db.Find(&invoices).Error)
		assert.Len(t, invoices, 4)
		for _, invoice := range invoices {
			assert.Equal(t, SessionPrice(), invoice.Amount)
		}
	})

	t.Run("RejectsInvalidFrequency", func(t *testing.T) {
		db := setupAppointmentTestDB(t)
		patient, therapist := seedPatientAndTherapist(t, db)

		base := &models.Appointment{
			PatientID:   patient.ID,
			TherapistID: therapist.ID,
			Date:        "05/01/2026",
			Time:        "10:00",
		}
		_, err := CreateRecurringAppointments(db, base, "daily", 3, true)
		assert.Error(t, err)
	})
}

func TestUpdateAppointment(t *testing.T) {
	t.Run("NotFound", func(t *testing.T) {
		db := setupAppointmentTestDB(t)
		_, err := UpdateAppointment(db, 999, map[string]interface{}{"status": "cancelled"})
		assert.ErrorIs(t, err, ErrAppointmentNotFound)
	})

	t.Run("ParentStatusCascadesToChildren", func(t *testing.T) {
		db := setupAppointmentTestDB(t)
		patient, therapist := seedPatientAndTherapist(t, db)

		base := &models.Appointment{
			PatientID:   patient.ID,
			TherapistID: therapist.ID,
			Date:        "05/01/2026",
			Time:        "10:00",
			Status:      models.AppointmentStatusPending,
		}
		created, err := CreateRecurringAppointments(db, base, models.FrequencyWeekly, 3, true)
		assert.NoError(t, err)

		_, err = UpdateAppointment(db, created[0].ID, map[string]interface{}{"status": models.AppointmentStatusConfirmed})
		assert.NoError(t, err)

		var children []models.Appointment
		db.Where("parent_appointment_id = ?", created[0].ID).Find(&children)
		assert.Len(t, children, 2)
		for _, child := range children {
			assert.Equal(t, models.AppointmentStatusConfirmed, child.Status)
		}
	})

	t.Run("StatusMapsToInvoiceStatus", func(t *testing.T) {
		db := setupAppointmentTestDB(t)
		patient, therapist := seedPatientAndTherapist(t, db)

		apt := &models.Appointment{
			PatientID:   patient.ID,
			TherapistID: therapist.ID,
			Date:        "05/01/2026",
			Time:        "10:00",
			Status:      models.AppointmentStatusPending,
		}
		assert.NoError(t, CreateAppointment(db, apt, false))

		_, err := UpdateAppointment(db, apt.ID, map[string]interface{}{"status": models.AppointmentStatusCompleted})
		assert.NoError(t, err)
		invoice, _ := GetInvoiceByAppointment(db, apt.ID)
		assert.Equal(t, models.InvoiceStatusToPay, invoice.Status)

		_, err = UpdateAppointment(db, apt.ID, map[string]interface{}{"status": models.AppointmentStatusCancelled})
		assert.NoError(t, err)
		invoice, _ = GetInvoiceByAppointment(db, apt.ID)
		assert.Equal(t, models.InvoiceStatusCancelled, invoice.Status)
	})

	t.Run("GeneratesInvoiceOnConfirmWhenMissing", func(t *testing.T) {
		db := setupAppointmentTestDB(t)
		patient, therapist := seedPatientAndTherapist(t, db)

		apt := &models.Appointment{
			PatientID:   patient.ID,
			TherapistID: therapist.ID,
			Date:        "05/01/2026",
			Time:        "10:00",
			Status:      models.AppointmentStatusCancelled,
		}
		assert.NoError(t, CreateAppointment(db, apt, false))
		invoice, _ := GetInvoiceByAppointment(db, apt.ID)
		assert.Nil(t, invoice)

		_, err := UpdateAppointment(db, apt.ID, map[string]interface{}{"status": models.AppointmentStatusConfirmed})
		assert.NoError(t, err)
		invoice, _ = GetInvoiceByAppointment(db, apt.ID)
		assert.NotNil(t, invoice)
	})

	t.Run("ChildCancellationRecomputesInvoiceAndPayment", func(t *testing.T) {
		db := setupAppointmentTestDB(t)
		patient, therapist := seedPatientAndTherapist(t, db)

		base := &models.Appointment{
			PatientID:   patient.ID,
			TherapistID: therapist.ID,
			Date:        "05/01/2026",
			Time:        "10:00",
			Status:      models.AppointmentStatusPending,
		}
		created, err := CreateRecurringAppointments(db, base, models.FrequencyWeekly, 4, true)
		assert.NoError(t, err)
		parent := created[0]

		anchor, _ := GetInvoiceByAppointment(db, parent.ID)
		assert.Equal(t, 4*SessionPrice(), anchor.Amount)

		// Settle the anchor invoice; a therapist payment is derived
		paid, err := UpdateInvoice(db, anchor.ID, map[string]interface{}{"status": models.InvoiceStatusPaid})
		assert.NoError(t, err)
		assert.True(t, paid.IsPaid())

		payment, err := GetPaymentByInvoice(db, anchor.ID)
		assert.NoError(t, err)
		assert.NotNil(t, payment)
		assert.Equal(t, 4*SessionPrice(), payment.Amount)

		// Cancel one of the four sessions
		_, err = UpdateAppointment(db, created[2].ID, map[string]interface{}{"status": models.AppointmentStatusCancelled})
		assert.NoError(t, err)

		// The paid invoice shrinks to three sessions, status untouched
		anchor, _ = GetInvoiceByAppointment(db, parent.ID)
		assert.Equal(t, 3*SessionPrice(), anchor.Amount)
		assert.Equal(t, 3*SessionPrice(), anchor.TotalAmount)
		assert.True(t, anchor.IsPaid())

		// The recorded payment is corrected retroactively
		payment, _ = GetPaymentByInvoice(db, anchor.ID)
		assert.Equal(t, 3*SessionPrice(), payment.Amount)

		// An audit entry was recorded
		var changes []models.AppointmentStatusChange
		db.Where("appointment_id = ?", created[2].ID).Find(&changes)
		assert.Len(t, changes, 1)
		assert.Equal(t, models.AppointmentStatusPending, changes[0].OldStatus)
		assert.Equal(t, models.AppointmentStatusCancelled, changes[0].NewStatus)
	})

	t.Run("PaidInvoiceStatusIsNotTouched", func(t *testing.T) {
		db := setupAppointmentTestDB(t)
		patient, therapist := seedPatientAndTherapist(t, db)

		apt := &models.Appointment{
			PatientID:   patient.ID,
			TherapistID: therapist.ID,
			Date:        "05/01/2026",
			Time:        "10:00",
			Status:      models.AppointmentStatusPending,
		}
		assert.NoError(t, CreateAppointment(db, apt, false))

		invoice, _ := GetInvoiceByAppointment(db, apt.ID)
		_, err := UpdateInvoice(db, invoice.ID, map[string]interface{}{"status": models.InvoiceStatusPaid})
		assert.NoError(t, err)

		_, err = UpdateAppointment(db, apt.ID, map[string]interface{}{"status": models.AppointmentStatusCompleted})
		assert.NoError(t, err)

		invoice, _ = GetInvoiceByAppointment(db, apt.ID)
		assert.Equal(t, models.InvoiceStatusPaid, invoice.Status)
	})
}

func TestDeleteAppointment(t *testing.T) {
	t.Run("NotFound", func(t *testing.T) {
		db := setupAppointmentTestDB(t)
		assert.ErrorIs(t, DeleteAppointment(db, 999), ErrAppointmentNotFound)
	})

	t.Run("SettledAppointmentIsBlocked", func(t *testing.T) {
		db := setupAppointmentTestDB(t)
		patient, therapist := seedPatientAndTherapist(t, db)

		apt := &models.Appointment{
			PatientID:   patient.ID,
			TherapistID: therapist.ID,
			Date:        "05/01/2026",
			Time:        "10:00",
			Status:      models.AppointmentStatusPending,
		}
		assert.NoError(t, CreateAppointment(db, apt, false))
		invoice, _ := GetInvoiceByAppointment(db, apt.ID)
		_, err := UpdateInvoice(db, invoice.ID, map[string]interface{}{"status": models.InvoiceStatusPaid})
		assert.NoError(t, err)

		err = DeleteAppointment(db, apt.ID)
		assert.ErrorIs(t, err, ErrAppointmentSettled)

		// Nothing was mutated
		var aptCount, invCount int64
		db.Model(&models.Appointment{}).Count(&aptCount)
		db.Model(&models.Invoice{}).Count(&invCount)
		assert.Equal(t, int64(1), aptCount)
		assert.Equal(t, int64(1), invCount)
	})

	t.Run("UnsettledSeriesIsFullyRemoved", func(t *testing.T) {
		db := setupAppointmentTestDB(t)
		patient, therapist := seedPatientAndTherapist(t, db)

		base := &models.Appointment{
			PatientID:   patient.ID,
			TherapistID: therapist.ID,
			Date:        "05/01/2026",
			Time:        "10:00",
			Status:      models.AppointmentStatusPending,
		}
		created, err := CreateRecurringAppointments(db, base, models.FrequencyWeekly, 3, true)
		assert.NoError(t, err)

		assert.NoError(t, DeleteAppointment(db, created[0].ID))

		var aptCount, invCount int64
		db.Model(&models.Appointment{}).Count(&aptCount)
		db.Model(&models.Invoice{}).Count(&invCount)
		assert.Equal(t, int64(0), aptCount)
		assert.Equal(t, int64(0), invCount)
	})

	t.Run("SettledParentAbortsBeforeChildren", func(t *testing.T) {
		db := setupAppointmentTestDB(t)
		patient, therapist := seedPatientAndTherapist(t, db)

		base := &models.Appointment{
			PatientID:   patient.ID,
			TherapistID: therapist.ID,
			Date:        "05/01/2026",
			Time:        "10:00",
			Status:      models.AppointmentStatusPending,
		}
		created, err := CreateRecurringAppointments(db, base, models.FrequencyWeekly, 3, false)
		assert.NoError(t, err)
		parent := created[0]

		parentInvoice, _ := GetInvoiceByAppointment(db, parent.ID)
		assert.NoError(t, CreatePayment(db, &models.TherapistPayment{
			TherapistID: therapist.ID,
			InvoiceID:   parentInvoice.ID,
			Amount:      parentInvoice.Amount,
		}))

		// A settled parent refuses the whole operation before any child is
		// touched: the unsettled children and their invoices survive too
		assert.ErrorIs(t, DeleteAppointment(db, parent.ID), ErrAppointmentSettled)

		var aptCount, invCount int64
		db.Model(&models.Appointment{}).Count(&aptCount)
		db.Model(&models.Invoice{}).Count(&invCount)
		assert.Equal(t, int64(3), aptCount)
		assert.Equal(t, int64(3), invCount)
	})

	t.Run("SettledChildIsSkipped", func(t *testing.T) {
		db := setupAppointmentTestDB(t)
		patient, therapist := seedPatientAndTherapist(t, db)

		base := &models.Appointment{
			PatientID:   patient.ID,
			TherapistID: therapist.ID,
			Date:        "05/01/2026",
			Time:        "10:00",
			Status:      models.AppointmentStatusPending,
		}
		// Per-session invoices so each child carries its own
		created, err := CreateRecurringAppointments(db, base, models.FrequencyWeekly, 3, false)
		assert.NoError(t, err)
		parent, settledChild, freeChild := created[0], created[1], created[2]

		settledInvoice, _ := GetInvoiceByAppointment(db, settledChild.ID)
		assert.NoError(t, CreatePayment(db, &models.TherapistPayment{
			TherapistID: therapist.ID,
			InvoiceID:   settledInvoice.ID,
			Amount:      settledInvoice.Amount,
		}))

		assert.NoError(t, DeleteAppointment(db, parent.ID))

		// The settled child and its invoice survive
		var remaining []models.Appointment
		db.Find(&remaining)
		assert.Len(t, remaining, 1)
		assert.Equal(t, settledChild.ID, remaining[0].ID)

		invoice, err := GetInvoiceByAppointment(db, settledChild.ID)
		assert.NoError(t, err)
		assert.NotNil(t, invoice)

		// The free child and the parent are gone, along with their invoices
		freeInvoice, err := GetInvoiceByAppointment(db, freeChild.ID)
		assert.NoError(t, err)
		assert.Nil(t, freeInvoice)
		parentInvoice, err := GetInvoiceByAppointment(db, parent.ID)
		assert.NoError(t, err)
		assert.Nil(t, parentInvoice)
	})
}

func TestCheckAvailability(t *testing.T) {
	db := setupAppointmentTestDB(t)
	patient, therapist := seedPatientAndTherapist(t, db)

	apt := &models.Appointment{
		PatientID:   patient.ID,
		TherapistID: therapist.ID,
		Date:        "05/01/2026",
		Time:        "10:00",
		Status:      models.AppointmentStatusConfirmed,
	}
	assert.NoError(t, CreateAppointment(db, apt, true))

	t.Run("OccupiedSlotReturnsConflict", func(t *testing.T) {
		conflict, err := CheckAvailability(db, therapist.ID, "05/01/2026", "10:00", 0)
		assert.NoError(t, err)
		assert.NotNil(t, conflict)
		assert.Equal(t, "Claire Martin", conflict.Patient.FullName())
	})

	t.Run("FreeSlot", func(t *testing.T) {
		conflict, err := CheckAvailability(db, therapist.ID, "05/01/2026", "11:00", 0)
		assert.NoError(t, err)
		assert.Nil(t, conflict)
	})

	t.Run("CancelledAppointmentDoesNotBlock", func(t *testing.T) {
		_, err := UpdateAppointment(db, apt.ID, map[string]interface{}{"status": models.AppointmentStatusCancelled})
		assert.NoError(t, err)

		free, err := IsSlotFree(db, therapist.ID, "05/01/2026", "10:00")
		assert.NoError(t, err)
		assert.True(t, free)
	})

	t.Run("ExcludeIDSkipsOwnRow", func(t *testing.T) {
		other := &models.Appointment{
			PatientID:   patient.ID,
			TherapistID: therapist.ID,
			Date:        "06/01/2026",
			Time:        "14:00",
			Status:      models.AppointmentStatusConfirmed,
		}
		assert.NoError(t, CreateAppointment(db, other, true))

		conflict, err := CheckAvailability(db, therapist.ID, "06/01/2026", "14:00", other.ID)
		assert.NoError(t, err)
		assert.Nil(t, conflict)
	})
}
