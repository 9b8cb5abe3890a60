package services

import (
	"errors"

	"clinic_flow_app_go/models"

	"gorm.io/gorm"
)

// CreateTherapist persists a new therapist
func CreateTherapist(db *gorm.DB, therapist *models.Therapist) error {
	return db.Create(therapist).Error
}

// GetTherapistByID fetches a single therapist
func GetTherapistByID(db *gorm.DB, id uint) (*models.Therapist, error) {
	var therapist models.Therapist
	err := db.First(&therapist, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTherapistNotFound
	}
	if err != nil {
		return nil, err
	}
	return &therapist, nil
}

// ListTherapists fetches all therapists ordered by name
func ListTherapists(db *gorm.DB) ([]models.Therapist, error) {
	var therapists []models.Therapist
	err := db.Order("last_name, first_name").Find(&therapists).Error
	return therapists, err
}
