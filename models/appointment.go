package models

import (
	"time"

	"gorm.io/gorm"
)

// Appointment status constants (canonical spellings)
const (
	AppointmentStatusConfirmed = "confirmed"
	AppointmentStatusPending   = "pending"
	AppointmentStatusCompleted = "completed"
	AppointmentStatusCancelled = "cancelled"
)

// Recurrence frequency constants
const (
	FrequencyWeekly   = "weekly"
	FrequencyBiweekly = "biweekly"
	FrequencyMonthly  = "monthly"
	FrequencyYearly   = "yearly"
)

// appointmentStatusAliases maps legacy French spellings (still present in
// imported data and older clients) to canonical statuses.
var appointmentStatusAliases = map[string]string{
	"confirmé":   AppointmentStatusConfirmed,
	"en_attente": AppointmentStatusPending,
	"terminé":    AppointmentStatusCompleted,
	"annulé":     AppointmentStatusCancelled,
}

// Appointment represents a single therapy session, standalone or part of a
// recurring series
type Appointment struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Patient relationship
	PatientID uint    `gorm:"index;not null" json:"patient_id"`
	Patient   Patient `gorm:"foreignKey:PatientID" json:"patient,omitempty"`

	// Therapist relationship
	TherapistID uint      `gorm:"index;not null" json:"therapist_id"`
	Therapist   Therapist `gorm:"foreignKey:TherapistID" json:"therapist,omitempty"`

	// Schedule: day-precision date (DD/MM/YYYY) and time of day (HH:MM)
	Date            string `gorm:"size:10;index;not null" json:"date"`
	Time            string `gorm:"size:5;not null" json:"time"`
	DurationMinutes int    `gorm:"default:60" json:"duration_minutes"`

	Type  string  `gorm:"size:50" json:"type"`
	Notes *string `gorm:"type:text" json:"notes,omitempty"`

	// Status
	Status string `gorm:"size:20;default:'pending';index" json:"status"`

	// Recurrence metadata. A recurring parent has IsRecurring=true and no
	// ParentAppointmentID; a generated child carries the parent's id and
	// never holds RecurringCount.
	IsRecurring         bool    `gorm:"default:false" json:"is_recurring"`
	RecurringFrequency  *string `gorm:"size:20" json:"recurring_frequency,omitempty"`
	RecurringCount      *int    `json:"recurring_count,omitempty"`
	ParentAppointmentID *uint   `gorm:"index" json:"parent_appointment_id,omitempty"`
}

// TableName specifies the table name for Appointment model
func (Appointment) TableName() string {
	return "appointments"
}

// IsRecurringParent reports whether this appointment heads a recurring series
func (a *Appointment) IsRecurringParent() bool {
	return a.IsRecurring && a.ParentAppointmentID == nil
}

// IsRecurringChild reports whether this appointment was generated from a series parent
func (a *Appointment) IsRecurringChild() bool {
	return a.ParentAppointmentID != nil
}

// NormalizeAppointmentStatus maps an input status (canonical or legacy French
// spelling) to its canonical value. The second return is false for
// unrecognized input.
func NormalizeAppointmentStatus(status string) (string, bool) {
	if canonical, ok := appointmentStatusAliases[status]; ok {
		return canonical, true
	}
	switch status {
	case AppointmentStatusConfirmed, AppointmentStatusPending,
		AppointmentStatusCompleted, AppointmentStatusCancelled:
		return status, true
	}
	return status, false
}

// IsValidAppointmentStatus checks if the status is valid (canonical or alias)
func IsValidAppointmentStatus(status string) bool {
	_, ok := NormalizeAppointmentStatus(status)
	return ok
}

// IsValidFrequency checks if the recurrence frequency is supported
func IsValidFrequency(frequency string) bool {
	switch frequency {
	case FrequencyWeekly, FrequencyBiweekly, FrequencyMonthly, FrequencyYearly:
		return true
	}
	return false
}

// GetAppointmentStatusDisplayName returns the localized display string
func GetAppointmentStatusDisplayName(status string) string {
	canonical, _ := NormalizeAppointmentStatus(status)
	names := map[string]string{
		AppointmentStatusConfirmed: "Confirmé",
		AppointmentStatusPending:   "En attente",
		AppointmentStatusCompleted: "Terminé",
		AppointmentStatusCancelled: "Annulé",
	}
	if name, ok := names[canonical]; ok {
		return name
	}
	return status
}

// GetFrequencyDisplayName returns the localized display string for a
// recurrence frequency
func GetFrequencyDisplayName(frequency string) string {
	names := map[string]string{
		FrequencyWeekly:   "hebdomadaire",
		FrequencyBiweekly: "bimensuelle",
		FrequencyMonthly:  "mensuelle",
		FrequencyYearly:   "annuelle",
	}
	if name, ok := names[frequency]; ok {
		return name
	}
	return frequency
}

// AppointmentStatusChange is an audit entry recorded when a status transition
// triggers invoice or payment side effects
type AppointmentStatusChange struct {
	ID            uint      `gorm:"primarykey" json:"id"`
	CreatedAt     time.Time `json:"created_at"`
	AppointmentID uint      `gorm:"index;not null" json:"appointment_id"`
	OldStatus     string    `gorm:"size:20" json:"old_status"`
	NewStatus     string    `gorm:"size:20" json:"new_status"`
}

// TableName specifies the table name for AppointmentStatusChange model
func (AppointmentStatusChange) TableName() string {
	return "appointment_status_changes"
}
