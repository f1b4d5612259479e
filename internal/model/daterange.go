package model

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidDateRange is returned when a range ends before it starts.
var ErrInvalidDateRange = errors.New("end date is before start date")

const (
	hoursPerDay   = 24
	daysPerWeek   = 7
	daysPerMonth  = 30.44
	dateLayoutISO = "2006-01-02"
)

// DateRange is an inclusive period between two calendar dates.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// NewDateRange normalizes both ends to midnight UTC and validates Start <= End.
func NewDateRange(start, end time.Time) (DateRange, error) {
	s, e := truncateDay(start), truncateDay(end)
	if e.Before(s) {
		return DateRange{}, fmt.Errorf("%w: %s > %s", ErrInvalidDateRange,
			s.Format(dateLayoutISO), e.Format(dateLayoutISO))
	}
	return DateRange{Start: s, End: e}, nil
}

// LastDays returns the range of n days ending on (and including) end.
func LastDays(end time.Time, n int) DateRange {
	if n < 1 {
		n = 1
	}
	e := truncateDay(end)
	return DateRange{Start: e.AddDate(0, 0, -(n - 1)), End: e}
}

// Days returns the inclusive number of days in the range.
func (r DateRange) Days() int {
	return int(r.End.Sub(r.Start).Hours()/hoursPerDay) + 1
}

// Weeks returns the range length in (fractional) weeks.
func (r DateRange) Weeks() float64 {
	return float64(r.Days()) / daysPerWeek
}

// Months returns the range length in (fractional) average months.
func (r DateRange) Months() float64 {
	return float64(r.Days()) / daysPerMonth
}

// Contains reports whether t falls on a day inside the range.
func (r DateRange) Contains(t time.Time) bool {
	d := truncateDay(t)
	return !d.Before(r.Start) && !d.After(r.End)
}

// Previous returns the range of equal length that ends the day before r starts.
func (r DateRange) Previous() DateRange {
	end := r.Start.AddDate(0, 0, -1)
	return DateRange{Start: end.AddDate(0, 0, -(r.Days() - 1)), End: end}
}

func (r DateRange) String() string {
	return r.Start.Format(dateLayoutISO) + ".." + r.End.Format(dateLayoutISO)
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
