package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Patient represents a person receiving therapy sessions
type Patient struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	FirstName string  `gorm:"size:100;not null" json:"first_name"`
	LastName  string  `gorm:"size:100;not null" json:"last_name"`
	Email     string  `gorm:"size:255;index" json:"email"`
	Phone     *string `gorm:"size:20" json:"phone,omitempty"`
	Address   *string `gorm:"type:text" json:"address,omitempty"`

	// Day-precision, DD/MM/YYYY
	BirthDate *string `gorm:"size:10" json:"birth_date,omitempty"`

	Notes *string `gorm:"type:text" json:"notes,omitempty"`
}

// TableName specifies the table name for Patient model
func (Patient) TableName() string {
	return "patients"
}

// FullName returns the patient's display name
func (p *Patient) FullName() string {
	return fmt.Sprintf("%s %s", p.FirstName, p.LastName)
}
