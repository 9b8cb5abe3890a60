package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"clinic_flow_app_go/db"
	"clinic_flow_app_go/models"
	"clinic_flow_app_go/services"
)

// GetTherapistsHandler returns all therapists
func GetTherapistsHandler(c echo.Context) error {
	therapists, err := services.ListTherapists(db.DB)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch therapists")
	}
	return c.JSON(http.StatusOK, therapists)
}

// GetTherapistHandler returns a single therapist
func GetTherapistHandler(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	therapist, err := services.GetTherapistByID(db.DB, id)
	if err != nil {
		return serviceError(err, "Failed to fetch therapist")
	}
	return c.JSON(http.StatusOK, therapist)
}

// CreateTherapistHandler registers a new therapist
func CreateTherapistHandler(c echo.Context) error {
	var therapist models.Therapist
	if err := c.Bind(&therapist); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid therapist payload")
	}
	if therapist.FirstName == "" || therapist.LastName == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "First and last name are required")
	}
	therapist.Availability = sanitizeText(therapist.Availability)

	if err := services.CreateTherapist(db.DB, &therapist); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create therapist")
	}
	return c.JSON(http.StatusCreated, therapist)
}
