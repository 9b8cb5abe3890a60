package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/microcosm-cc/bluemonday"

	"clinic_flow_app_go/services"
)

// notesPolicy strips all markup from free-text fields (XSS protection)
var notesPolicy = bluemonday.StrictPolicy()

// parseID extracts a numeric path parameter
func parseID(c echo.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "Invalid "+name)
	}
	return uint(id), nil
}

// parseQueryID extracts an optional numeric query parameter, 0 when absent
func parseQueryID(c echo.Context, name string) (uint, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return 0, nil
	}
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "Invalid "+name)
	}
	return uint(id), nil
}

func sanitizeText(s *string) *string {
	if s == nil {
		return nil
	}
	clean := notesPolicy.Sanitize(*s)
	return &clean
}

// sanitizeUpdates cleans the named free-text fields of a patch in place
func sanitizeUpdates(updates map[string]interface{}, fields ...string) {
	for _, field := range fields {
		if raw, ok := updates[field]; ok {
			if s, ok := raw.(string); ok {
				updates[field] = notesPolicy.Sanitize(s)
			}
		}
	}
}

// serviceError maps service sentinel errors to HTTP errors
func serviceError(err error, fallback string) error {
	switch err {
	case services.ErrPatientNotFound, services.ErrTherapistNotFound,
		services.ErrAppointmentNotFound, services.ErrInvoiceNotFound,
		services.ErrPaymentNotFound, services.ErrExpenseNotFound,
		services.ErrSignatureNotFound:
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case services.ErrAppointmentSettled, services.ErrInvoiceSettled:
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	}
	return echo.NewHTTPError(http.StatusInternalServerError, fallback)
}
