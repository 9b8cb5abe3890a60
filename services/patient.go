package services

import (
	"errors"

	"clinic_flow_app_go/models"

	"gorm.io/gorm"
)

// CreatePatient persists a new patient
func CreatePatient(db *gorm.DB, patient *models.Patient) error {
	return db.Create(patient).Error
}

// GetPatientByID fetches a single patient
func GetPatientByID(db *gorm.DB, id uint) (*models.Patient, error) {
	var patient models.Patient
	err := db.First(&patient, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPatientNotFound
	}
	if err != nil {
		return nil, err
	}
	return &patient, nil
}

// ListPatients fetches all patients ordered by name
func ListPatients(db *gorm.DB) ([]models.Patient, error) {
	var patients []models.Patient
	err := db.Order("last_name, first_name").Find(&patients).Error
	return patients, err
}

// SearchPatients finds patients whose name or email contains the query
func SearchPatients(db *gorm.DB, query string) ([]models.Patient, error) {
	var patients []models.Patient
	pattern := "%" + query + "%"
	err := db.Where("first_name LIKE ? OR last_name LIKE ? OR email LIKE ?", pattern, pattern, pattern).
		Order("last_name, first_name").
		Find(&patients).Error
	return patients, err
}
