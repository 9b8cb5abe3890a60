package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"clinic_flow_app_go/db"
	"clinic_flow_app_go/models"
	"clinic_flow_app_go/services"
)

func TestCreateAppointmentHandler(t *testing.T) {
	testDB := setupTestDB(t)
	patient, therapist := seedTestPatientAndTherapist(t, testDB)

	t.Run("CreatesAppointmentWithInvoice", func(t *testing.T) {
		body := fmt.Sprintf(`{"patient_id":%d,"therapist_id":%d,"date":"05/01/2026","time":"10:00","status":"confirmed"}`,
			patient.ID, therapist.ID)
		_, c, rec := setupEcho(http.MethodPost, "/api/appointments", strings.NewReader(body))

		assert.NoError(t, CreateAppointmentHandler(c))
		assert.Equal(t, http.StatusCreated, rec.Code)

		var apt models.Appointment
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &apt))
		assert.NotZero(t, apt.ID)

		invoice, err := services.GetInvoiceByAppointment(db.DB, apt.ID)
		assert.NoError(t, err)
		assert.NotNil(t, invoice)
	})

	t.Run("SanitizesNotes", func(t *testing.T) {
		body := fmt.Sprintf(`{"patient_id":%d,"therapist_id":%d,"date":"06/01/2026","time":"10:00","notes":"<script>alert(1)</script>Suivi hebdomadaire"}`,
			patient.ID, therapist.ID)
		_, c, rec := setupEcho(http.MethodPost, "/api/appointments", strings.NewReader(body))

		assert.NoError(t, CreateAppointmentHandler(c))
		assert.Equal(t, http.StatusCreated, rec.Code)

		var apt models.Appointment
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &apt))
		assert.NotNil(t, apt.Notes)
		assert.Equal(t, "Suivi hebdomadaire", *apt.Notes)
	})

	t.Run("RecurringConflictReturnsConflict", func(t *testing.T) {
		blocker := &models.Patient{FirstName: "Marc", LastName: "Dupont"}
		assert.NoError(t, services.CreatePatient(testDB, blocker))
		assert.NoError(t, services.CreateAppointment(testDB, &models.Appointment{
			PatientID:   blocker.ID,
			TherapistID: therapist.ID,
			Date:        "09/03/2026",
			Time:        "14:00",
			Status:      models.AppointmentStatusConfirmed,
		}, true))

		body := fmt.Sprintf(`{"patient_id":%d,"therapist_id":%d,"date":"02/03/2026","time":"14:00","is_recurring":true,"recurring_frequency":"weekly","recurring_count":3}`,
			patient.ID, therapist.ID)
		_, c, _ := setupEcho(http.MethodPost, "/api/appointments", strings.NewReader(body))

		err := CreateAppointmentHandler(c)
		httpErr, ok := err.(*echo.HTTPError)
		assert.True(t, ok)
		assert.Equal(t, http.StatusConflict, httpErr.Code)
		assert.Contains(t, fmt.Sprint(httpErr.Message), "Marc Dupont")
	})

	t.Run("RecurringSeriesReturnsAllAppointments", func(t *testing.T) {
		body := fmt.Sprintf(`{"patient_id":%d,"therapist_id":%d,"date":"07/04/2026","time":"09:00","is_recurring":true,"recurring_frequency":"weekly","recurring_count":3}`,
			patient.ID, therapist.ID)
		_, c, rec := setupEcho(http.MethodPost, "/api/appointments", strings.NewReader(body))

		assert.NoError(t, CreateAppointmentHandler(c))
		assert.Equal(t, http.StatusCreated, rec.Code)

		var created []models.Appointment
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
		assert.Len(t, created, 3)
		assert.True(t, created[0].IsRecurringParent())
	})
}

func TestGetAppointmentHandler(t *testing.T) {
	setupTestDB(t)

	_, c, _ := setupEcho(http.MethodGet, "/api/appointments/999", nil)
	c.SetParamNames("id")
	c.SetParamValues("999")

	err := GetAppointmentHandler(c)
	httpErr, ok := err.(*echo.HTTPError)
	assert.True(t, ok)
	assert.Equal(t, http.StatusNotFound, httpErr.Code)
}

func TestDeleteAppointmentHandler(t *testing.T) {
	testDB := setupTestDB(t)
	patient, therapist := seedTestPatientAndTherapist(t, testDB)

	apt := &models.Appointment{
		PatientID:   patient.ID,
		TherapistID: therapist.ID,
		Date:        "05/01/2026",
		Time:        "10:00",
		Status:      models.AppointmentStatusConfirmed,
	}
	assert.NoError(t, services.CreateAppointment(testDB, apt, false))

	invoice, err := services.GetInvoiceByAppointment(testDB, apt.ID)
	assert.NoError(t, err)
	_, err = services.UpdateInvoice(testDB, invoice.ID, map[string]interface{}{"status": models.InvoiceStatusPaid})
	assert.NoError(t, err)

	t.Run("SettledAppointmentReturnsConflict", func(t *testing.T) {
		_, c, _ := setupEcho(http.MethodDelete, "/api/appointments/1", nil)
		c.SetParamNames("id")
		c.SetParamValues(fmt.Sprint(apt.ID))

		err := DeleteAppointmentHandler(c)
		httpErr, ok := err.(*echo.HTTPError)
		assert.True(t, ok)
		assert.Equal(t, http.StatusConflict, httpErr.Code)
	})
}
