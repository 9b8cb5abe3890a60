package services

import (
	"errors"

	"clinic_flow_app_go/models"

	"gorm.io/gorm"
)

// CheckAvailability looks for an existing appointment occupying the given
// (therapist, date, time) slot. It returns the conflicting appointment with
// its patient preloaded, or nil when the slot is free. Cancelled appointments
// do not block a slot. excludeID, when non-zero, leaves a given appointment
// out of the check (used when rescheduling).
func CheckAvailability(db *gorm.DB, therapistID uint, date, timeOfDay string, excludeID uint) (*models.Appointment, error) {
	var conflict models.Appointment
	query := db.Preload("Patient").
		Where("therapist_id = ? AND date = ? AND time = ?", therapistID, date, timeOfDay).
		Where("status != ?", models.AppointmentStatusCancelled)

	if excludeID != 0 {
		query = query.Where("id != ?", excludeID)
	}

	err := query.First(&conflict).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &conflict, nil
}

// IsSlotFree is a convenience wrapper over CheckAvailability
func IsSlotFree(db *gorm.DB, therapistID uint, date, timeOfDay string) (bool, error) {
	conflict, err := CheckAvailability(db, therapistID, date, timeOfDay, 0)
	if err != nil {
		return false, err
	}
	return conflict == nil, nil
}
