package services

import (
	"fmt"
	"time"
)

// dayMonthYearLayout is the fixed textual date pattern used across the
// application (appointments, invoices, expenses, payments).
const dayMonthYearLayout = "02/01/2006"

// ParseDayMonthYear parses a day-precision date in DD/MM/YYYY form.
// It enforces strict checks but centralizes the logic for future format additions
func ParseDayMonthYear(dateStr string) (time.Time, error) {
	parsedTime, err := time.Parse(dayMonthYearLayout, dateStr)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date format: expected DD/MM/YYYY")
	}
	return parsedTime, nil
}

// FormatDayMonthYear renders a date in the DD/MM/YYYY pattern
func FormatDayMonthYear(t time.Time) string {
	return t.Format(dayMonthYearLayout)
}

// ValidateTimeOfDay checks an HH:MM time-of-day string
func ValidateTimeOfDay(timeStr string) error {
	if _, err := time.Parse("15:04", timeStr); err != nil {
		return fmt.Errorf("invalid time format: expected HH:MM")
	}
	return nil
}
