package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"clinic_flow_app_go/db"
	"clinic_flow_app_go/models"
	"clinic_flow_app_go/services"
)

// GetInvoicesHandler returns invoices, filtered by patient_id, therapist_id
// or appointment_id when present
func GetInvoicesHandler(c echo.Context) error {
	patientID, err := parseQueryID(c, "patient_id")
	if err != nil {
		return err
	}
	therapistID, err := parseQueryID(c, "therapist_id")
	if err != nil {
		return err
	}
	appointmentID, err := parseQueryID(c, "appointment_id")
	if err != nil {
		return err
	}

	if appointmentID != 0 {
		invoice, err := services.GetInvoiceByAppointment(db.DB, appointmentID)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch invoice")
		}
		if invoice == nil {
			return c.JSON(http.StatusOK, []models.Invoice{})
		}
		return c.JSON(http.StatusOK, []models.Invoice{*invoice})
	}

	var invoices []models.Invoice
	switch {
	case patientID != 0:
		invoices = services.GetInvoicesByPatient(db.DB, patientID)
	case therapistID != 0:
		invoices = services.GetInvoicesByTherapist(db.DB, therapistID)
	default:
		invoices = services.ListInvoices(db.DB)
	}
	return c.JSON(http.StatusOK, invoices)
}

// GetInvoiceHandler returns a single invoice
func GetInvoiceHandler(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	invoice, err := services.GetInvoiceByID(db.DB, id)
	if err != nil {
		return serviceError(err, "Failed to fetch invoice")
	}
	return c.JSON(http.StatusOK, invoice)
}

// CreateInvoiceHandler records a manually issued invoice
func CreateInvoiceHandler(c echo.Context) error {
	var invoice models.Invoice
	if err := c.Bind(&invoice); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid invoice payload")
	}
	invoice.Notes = sanitizeText(invoice.Notes)

	if err := services.CreateInvoice(db.DB, &invoice); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, invoice)
}

// UpdateInvoiceHandler applies a partial update; the paid transition derives
// a therapist payment
func UpdateInvoiceHandler(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var updates map[string]interface{}
	if err := c.Bind(&updates); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid update payload")
	}
	sanitizeUpdates(updates, "notes")

	invoice, err := services.UpdateInvoice(db.DB, id, updates)
	if err != nil {
		if err == services.ErrInvoiceNotFound {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, invoice)
}

// DeleteInvoiceHandler removes an invoice unless a payment settles it
func DeleteInvoiceHandler(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if err := services.DeleteInvoice(db.DB, id); err != nil {
		return serviceError(err, "Failed to delete invoice")
	}
	return c.NoContent(http.StatusNoContent)
}

// DerivePaymentHandler creates (or returns) the therapist payment derived
// from a paid invoice
func DerivePaymentHandler(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	payment, err := services.CreatePaymentFromInvoice(db.DB, id)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to derive payment")
	}
	if payment == nil {
		return echo.NewHTTPError(http.StatusConflict, "Invoice is missing or not paid")
	}
	return c.JSON(http.StatusOK, payment)
}
