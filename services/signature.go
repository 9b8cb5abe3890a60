package services

import (
	"errors"
	"fmt"

	"clinic_flow_app_go/models"

	"gorm.io/gorm"
)

// signatureUpdatableColumns enumerates the storage columns a partial
// signature update may touch
var signatureUpdatableColumns = map[string]bool{
	"name":                 true,
	"signature_data":       true,
	"paid_stamp_data":      true,
	"permanent_stamp_data": true,
}

// CreateSignature persists a new signature/stamp record
func CreateSignature(db *gorm.DB, signature *models.Signature) error {
	return db.Create(signature).Error
}

// GetSignatureByID fetches a single signature record
func GetSignatureByID(db *gorm.DB, id uint) (*models.Signature, error) {
	var signature models.Signature
	err := db.First(&signature, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSignatureNotFound
	}
	if err != nil {
		return nil, err
	}
	return &signature, nil
}

// GetCurrentSignature fetches the most recently updated signature record,
// the one applied to generated documents. Returns nil when none exists.
func GetCurrentSignature(db *gorm.DB) (*models.Signature, error) {
	var signature models.Signature
	err := db.Order("updated_at desc").First(&signature).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &signature, nil
}

// ListSignatures fetches all signature records
func ListSignatures(db *gorm.DB) ([]models.Signature, error) {
	var signatures []models.Signature
	err := db.Order("updated_at desc").Find(&signatures).Error
	return signatures, err
}

// UpdateSignature applies a partial update to a signature record
func UpdateSignature(db *gorm.DB, id uint, updates map[string]interface{}) (*models.Signature, error) {
	var existing models.Signature
	err := db.First(&existing, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSignatureNotFound
	}
	if err != nil {
		return nil, err
	}

	for column := range updates {
		if !signatureUpdatableColumns[column] {
			return nil, fmt.Errorf("unknown signature field: %s", column)
		}
	}

	if len(updates) > 0 {
		if err := db.Model(&existing).Updates(updates).Error; err != nil {
			return nil, err
		}
	}

	var updated models.Signature
	if err := db.First(&updated, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteSignature removes a signature record
func DeleteSignature(db *gorm.DB, id uint) error {
	result := db.Delete(&models.Signature{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrSignatureNotFound
	}
	return nil
}
