package core

import (
	"time"
)

// DayKeyLayout is the canonical calendar-day format used to address one
// occurrence of a bill. Keys are always derived from the occurrence's
// original, unmodified due date, truncated in UTC; an override that moves
// the visible due date never moves the key.
const DayKeyLayout = "2006-01-02"

// Date is a calendar day pinned to UTC midnight. All date handling in
// the engine flows through this type so that day-key derivation cannot
// drift with the host timezone.
type Date struct {
	time.Time
}

// NewDate builds a Date from year, month and day in UTC.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates an arbitrary instant to its UTC calendar day.
func DateOf(t time.Time) Date {
	u := t.UTC()
	return NewDate(u.Year(), int(u.Month()), u.Day())
}

// Today returns the current UTC calendar day.
func Today() Date {
	return DateOf(time.Now())
}

// ParseDayKey parses a YYYY-MM-DD string into a Date.
func ParseDayKey(s string) (Date, error) {
	t, err := time.ParseInLocation(DayKeyLayout, s, time.UTC)
	if err != nil {
		return Date{}, err
	}
	return Date{Time: t}, nil
}

// DayKey returns the canonical YYYY-MM-DD form of the date.
func (d Date) DayKey() string {
	return d.Format(DayKeyLayout)
}

// Before and After on the embedded time.Time are day-exact here because
// every Date is UTC midnight.

// Frequency is the recurrence unit of a bill.
type Frequency string

const (
	Once     Frequency = "once"
	Daily    Frequency = "daily"
	Weekly   Frequency = "weekly"
	Biweekly Frequency = "biweekly"
	Monthly  Frequency = "monthly"
	Annually Frequency = "annually"
)

// Valid reports whether f is a known recurrence unit.
func (f Frequency) Valid() bool {
	switch f {
	case Once, Daily, Weekly, Biweekly, Monthly, Annually:
		return true
	}
	return false
}

// Next advances the date by one period of f. Month and year arithmetic
// normalizes overflow (Jan 31 + 1 month = Mar 3 or Mar 2), matching
// time.AddDate semantics.
func (d Date) Next(f Frequency) Date {
	switch f {
	case Daily:
		return Date{Time: d.AddDate(0, 0, 1)}
	case Weekly:
		return Date{Time: d.AddDate(0, 0, 7)}
	case Biweekly:
		return Date{Time: d.AddDate(0, 0, 14)}
	case Monthly:
		return Date{Time: d.AddDate(0, 1, 0)}
	case Annually:
		return Date{Time: d.AddDate(1, 0, 0)}
	}
	// Once has no next occurrence.
	return d
}

// BillStatus classifies one occurrence relative to a reference day.
type BillStatus string

const (
	StatusOverdue  BillStatus = "overdue"
	StatusDue      BillStatus = "due"
	StatusUpcoming BillStatus = "upcoming"
	StatusPaid     BillStatus = "paid"
)

// StatusOn classifies an unpaid due date against the given reference day.
func StatusOn(due, today Date) BillStatus {
	switch {
	case due.Before(today.Time):
		return StatusOverdue
	case due.Equal(today.Time):
		return StatusDue
	default:
		return StatusUpcoming
	}
}
