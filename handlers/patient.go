package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"clinic_flow_app_go/db"
	"clinic_flow_app_go/models"
	"clinic_flow_app_go/services"
)

// GetPatientsHandler returns all patients, filtered by ?q= when present
func GetPatientsHandler(c echo.Context) error {
	query := c.QueryParam("q")

	var patients []models.Patient
	var err error
	if query != "" {
		patients, err = services.SearchPatients(db.DB, query)
	} else {
		patients, err = services.ListPatients(db.DB)
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch patients")
	}
	return c.JSON(http.StatusOK, patients)
}

// GetPatientHandler returns a single patient
func GetPatientHandler(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	patient, err := services.GetPatientByID(db.DB, id)
	if err != nil {
		return serviceError(err, "Failed to fetch patient")
	}
	return c.JSON(http.StatusOK, patient)
}

// CreatePatientHandler registers a new patient
func CreatePatientHandler(c echo.Context) error {
	var patient models.Patient
	if err := c.Bind(&patient); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid patient payload")
	}
	if patient.FirstName == "" || patient.LastName == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "First and last name are required")
	}
	patient.Notes = sanitizeText(patient.Notes)

	if err := services.CreatePatient(db.DB, &patient); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create patient")
	}
	return c.JSON(http.StatusCreated, patient)
}
