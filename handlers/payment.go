package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"clinic_flow_app_go/db"
	"clinic_flow_app_go/models"
	"clinic_flow_app_go/services"
)

// GetPaymentsHandler returns therapist payments, filtered by therapist_id or
// a from/to date range (DD/MM/YYYY) when present
func GetPaymentsHandler(c echo.Context) error {
	therapistID, err := parseQueryID(c, "therapist_id")
	if err != nil {
		return err
	}

	if from, to := c.QueryParam("from"), c.QueryParam("to"); from != "" && to != "" {
		start, err := services.ParseDayMonthYear(from)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid from date")
		}
		end, err := services.ParseDayMonthYear(to)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid to date")
		}
		payments, err := services.GetPaymentsByDateRange(db.DB, start, end)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch payments")
		}
		return c.JSON(http.StatusOK, payments)
	}

	var payments []models.TherapistPayment
	if therapistID != 0 {
		payments, err = services.GetPaymentsByTherapist(db.DB, therapistID)
	} else {
		payments, err = services.ListPayments(db.DB)
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch payments")
	}
	return c.JSON(http.StatusOK, payments)
}

// GetPaymentHandler returns a single payment
func GetPaymentHandler(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	payment, err := services.GetPaymentByID(db.DB, id)
	if err != nil {
		return serviceError(err, "Failed to fetch payment")
	}
	return c.JSON(http.StatusOK, payment)
}

// CreatePaymentHandler records a manual therapist payment
func CreatePaymentHandler(c echo.Context) error {
	var payment models.TherapistPayment
	if err := c.Bind(&payment); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid payment payload")
	}
	if payment.TherapistID == 0 || payment.InvoiceID == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "therapist_id and invoice_id are required")
	}
	payment.Notes = sanitizeText(payment.Notes)

	if err := services.CreatePayment(db.DB, &payment); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, payment)
}

// UpdatePaymentHandler applies a partial update
func UpdatePaymentHandler(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var updates map[string]interface{}
	if err := c.Bind(&updates); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid update payload")
	}
	sanitizeUpdates(updates, "notes")

	payment, err := services.UpdatePayment(db.DB, id, updates)
	if err != nil {
		if err == services.ErrPaymentNotFound {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, payment)
}

// DeletePaymentHandler removes a payment
func DeletePaymentHandler(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if err := services.DeletePayment(db.DB, id); err != nil {
		return serviceError(err, "Failed to delete payment")
	}
	return c.NoContent(http.StatusNoContent)
}
