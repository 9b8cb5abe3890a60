package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Therapist represents a practitioner delivering therapy sessions
type Therapist struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	FirstName string  `gorm:"size:100;not null" json:"first_name"`
	LastName  string  `gorm:"size:100;not null" json:"last_name"`
	Specialty string  `gorm:"size:150" json:"specialty"`
	Email     string  `gorm:"size:255;index" json:"email"`
	Phone     *string `gorm:"size:20" json:"phone,omitempty"`

	// Display color for the agenda view (hex code)
	Color string `gorm:"size:7;default:'#4F46E5'" json:"color"`

	// Free-text availability description (working days, hours)
	Availability *string `gorm:"type:text" json:"availability,omitempty"`
}

// TableName specifies the table name for Therapist model
func (Therapist) TableName() string {
	return "therapists"
}

// FullName returns the therapist's display name
func (t *Therapist) FullName() string {
	return fmt.Sprintf("%s %s", t.FirstName, t.LastName)
}
