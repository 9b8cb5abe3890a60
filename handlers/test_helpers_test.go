package handlers

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"clinic_flow_app_go/db"
	"clinic_flow_app_go/models"
	"clinic_flow_app_go/services"
)

func setupTestDB(t *testing.T) *gorm.DB {
	testDB, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	assert.NoError(t, err)

	err = testDB.AutoMigrate(
		&models.Patient{},
		&models.Therapist{},
		&models.Appointment{},
		&models.AppointmentStatusChange{},
		&models.Invoice{},
		&models.TherapistPayment{},
		&models.Expense{},
		&models.Signature{},
	)
	assert.NoError(t, err)

	if services.Storage == nil {
		services.Storage = services.NewLocalStorage(t.TempDir())
	}

	// Set global DB
	db.DB = testDB

	return testDB
}

func setupEcho(method, path string, body io.Reader) (*echo.Echo, echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, path, body)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	return e, c, rec
}

func seedTestPatientAndTherapist(t *testing.T, testDB *gorm.DB) (*models.Patient, *models.Therapist) {
	patient := &models.Patient{FirstName: "Claire", LastName: "Martin"}
	assert.NoError(t, services.CreatePatient(testDB, patient))
	therapist := &models.Therapist{FirstName: "Paul", LastName: "Girard"}
	assert.NoError(t, services.CreateTherapist(testDB, therapist))
	return patient, therapist
}
