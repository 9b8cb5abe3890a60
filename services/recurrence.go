package services

import (
	"time"

	"clinic_flow_app_go/models"
)

// Occurrence is one scheduled slot of a recurring series
type Occurrence struct {
	Date time.Time
	Time string
}

// RecurrenceDates computes the occurrence slots of a recurring series. The
// first occurrence is always the base itself; count must be >= 1. All
// occurrences share the base time of day.
//
// Monthly and yearly occurrences are snapped to the base date's day of week.
// The monthly snap steps back a week when moving forward would leave the
// target month; the yearly snap moves forward only. Existing series depend on
// the produced dates, so the asymmetry must stay.
func RecurrenceDates(base time.Time, timeOfDay string, frequency string, count int) []Occurrence {
	occurrences := make([]Occurrence, 0, count)

	for i := 0; i < count; i++ {
		var date time.Time
		switch frequency {
		case models.FrequencyWeekly:
			date = base.AddDate(0, 0, 7*i)
		case models.FrequencyBiweekly:
			date = base.AddDate(0, 0, 14*i)
		case models.FrequencyMonthly:
			candidate := base.AddDate(0, i, 0)
			date = snapToWeekday(base.Weekday(), candidate, true)
		case models.FrequencyYearly:
			candidate := base.AddDate(i, 0, 0)
			date = snapToWeekday(base.Weekday(), candidate, false)
		default:
			// Unrecognized frequency: no date advancement. Defensive
			// fallback, not a supported mode.
			date = base
		}

		occurrences = append(occurrences, Occurrence{Date: date, Time: timeOfDay})
	}

	return occurrences
}

// snapToWeekday shifts candidate forward up to 6 days so its weekday matches
// target. With guardMonth set, a shift that crosses into the next calendar
// month steps back 7 days instead, keeping the occurrence in-month.
func snapToWeekday(target time.Weekday, candidate time.Time, guardMonth bool) time.Time {
	delta := (int(target) - int(candidate.Weekday()) + 7) % 7
	snapped := candidate.AddDate(0, 0, delta)
	if guardMonth && snapped.Month() != candidate.Month() {
		snapped = snapped.AddDate(0, 0, -7)
	}
	return snapped
}
