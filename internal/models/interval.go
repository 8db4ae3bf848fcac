package models

import "time"

// RecurringInterval is how often a recurring template fires.
type RecurringInterval string

const (
	IntervalDaily   RecurringInterval = "daily"
	IntervalWeekly  RecurringInterval = "weekly"
	IntervalMonthly RecurringInterval = "monthly"
	IntervalYearly  RecurringInterval = "yearly"
)

func (i RecurringInterval) Valid() bool {
	switch i {
	case IntervalDaily, IntervalWeekly, IntervalMonthly, IntervalYearly:
		return true
	}
	return false
}

// Advance returns the occurrence one interval after d.
//
// Month and year steps keep the day of month when the target month has it and
// otherwise clamp to that month's last day: Jan 31 -> Feb 29 (2024),
// Feb 29 2024 -> Feb 28 2025. The result depends only on d, so a clamped day is
// not restored later (Feb 29 -> Mar 29).
func (i RecurringInterval) Advance(d Date) Date {
	switch i {
	case IntervalDaily:
		return Date{Time: d.AddDate(0, 0, 1)}
	case IntervalWeekly:
		return Date{Time: d.AddDate(0, 0, 7)}
	case IntervalMonthly:
		return addMonthsClamped(d, 1)
	case IntervalYearly:
		return addMonthsClamped(d, 12)
	default:
		return d
	}
}

func addMonthsClamped(d Date, months int) Date {
	first := time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, months, 0)
	last := daysIn(first.Year(), first.Month())
	day := d.Day()
	if day > last {
		day = last
	}
	return NewDate(first.Year(), first.Month(), day)
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
