package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"clinic_flow_app_go/db"
	"clinic_flow_app_go/models"
	"clinic_flow_app_go/services"
)

// CreateAppointmentRequest is the JSON payload for creating an appointment,
// standalone or as a recurring series
type CreateAppointmentRequest struct {
	PatientID       uint    `json:"patient_id"`
	TherapistID     uint    `json:"therapist_id"`
	Date            string  `json:"date"`
	Time            string  `json:"time"`
	DurationMinutes int     `json:"duration_minutes"`
	Type            string  `json:"type"`
	Notes           *string `json:"notes"`
	Status          string  `json:"status"`

	IsRecurring        bool   `json:"is_recurring"`
	RecurringFrequency string `json:"recurring_frequency"`
	RecurringCount     int    `json:"recurring_count"`
	// SingleInvoice consolidates the whole series on one invoice (default true
	// when recurring)
	SingleInvoice *bool `json:"single_invoice"`

	SkipInvoiceGeneration bool `json:"skip_invoice_generation"`
}

// GetAppointmentsHandler returns appointments, filtered by patient_id or
// therapist_id when present
func GetAppointmentsHandler(c echo.Context) error {
	patientID, err := parseQueryID(c, "patient_id")
	if err != nil {
		return err
	}
	therapistID, err := parseQueryID(c, "therapist_id")
	if err != nil {
		return err
	}

	var appointments []models.Appointment
	switch {
	case patientID != 0:
		appointments, err = services.GetAppointmentsByPatient(db.DB, patientID)
	case therapistID != 0:
		appointments, err = services.GetAppointmentsByTherapist(db.DB, therapistID)
	default:
		appointments, err = services.ListAppointments(db.DB)
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch appointments")
	}
	return c.JSON(http.StatusOK, appointments)
}

// GetAppointmentHandler returns a single appointment
func GetAppointmentHandler(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	apt, err := services.GetAppointmentByID(db.DB, id)
	if err != nil {
		return serviceError(err, "Failed to fetch appointment")
	}
	return c.JSON(http.StatusOK, apt)
}

// CreateAppointmentHandler creates a standalone appointment or a full
// recurring series depending on the payload
func CreateAppointmentHandler(c echo.Context) error {
	var req CreateAppointmentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid appointment payload")
	}
	if req.PatientID == 0 || req.TherapistID == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "patient_id and therapist_id are required")
	}

	apt := models.Appointment{
		PatientID:       req.PatientID,
		TherapistID:     req.TherapistID,
		Date:            req.Date,
		Time:            req.Time,
		DurationMinutes: req.DurationMinutes,
		Type:            req.Type,
		Notes:           sanitizeText(req.Notes),
		Status:          req.Status,
	}

	if req.IsRecurring {
		singleInvoice := true
		if req.SingleInvoice != nil {
			singleInvoice = *req.SingleInvoice
		}
		created, err := services.CreateRecurringAppointments(db.DB, &apt, req.RecurringFrequency, req.RecurringCount, singleInvoice)
		if err != nil {
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		}
		return c.JSON(http.StatusCreated, created)
	}

	if err := services.CreateAppointment(db.DB, &apt, req.SkipInvoiceGeneration); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, apt)
}

// UpdateAppointmentHandler applies a partial update; status changes cascade
// to recurring children and reconcile the owning invoice
func UpdateAppointmentHandler(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var updates map[string]interface{}
	if err := c.Bind(&updates); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid update payload")
	}
	sanitizeUpdates(updates, "notes")

	apt, err := services.UpdateAppointment(db.DB, id, updates)
	if err != nil {
		if err == services.ErrAppointmentNotFound {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, apt)
}

// DeleteAppointmentHandler removes an appointment, its unpaid invoices and,
// for a series parent, every unsettled child
func DeleteAppointmentHandler(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if err := services.DeleteAppointment(db.DB, id); err != nil {
		return serviceError(err, "Failed to delete appointment")
	}
	return c.NoContent(http.StatusNoContent)
}

// CheckAvailabilityHandler reports whether a therapist slot is free
func CheckAvailabilityHandler(c echo.Context) error {
	therapistID, err := parseQueryID(c, "therapist_id")
	if err != nil {
		return err
	}
	if therapistID == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "therapist_id is required")
	}
	date := c.QueryParam("date")
	timeOfDay := c.QueryParam("time")
	if date == "" || timeOfDay == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "date and time are required")
	}
	excludeID, err := parseQueryID(c, "exclude_id")
	if err != nil {
		return err
	}

	conflict, err := services.CheckAvailability(db.DB, therapistID, date, timeOfDay, excludeID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to check availability")
	}
	if conflict == nil {
		return c.JSON(http.StatusOK, map[string]interface{}{"available": true})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"available": false,
		"conflict":  conflict,
	})
}
