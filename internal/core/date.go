package core

import (
	"errors"
	"fmt"
	"time"
)

// Date is a calendar date with no meaningful time component.
// The embedded time.Time is always UTC midnight.
type Date struct {
	time.Time
}

// NewDate creates a new Date from year, month, day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a date string in YYYY-MM-DD format.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return Date{Time: t}, nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return errors.New("date cannot be zero")
	}
	return nil
}

// MonthWindow identifies one calendar month. Transactions belong to the
// window iff date >= Start() and date < NextStart(); the half-open
// interval is the single month-bucketing rule used everywhere.
type MonthWindow struct {
	Year  int
	Month time.Month
}

// MonthOf returns the window containing the given instant.
func MonthOf(t time.Time) MonthWindow {
	return MonthWindow{Year: t.Year(), Month: t.Month()}
}

// Start returns the first instant of the month (UTC midnight of day 1).
func (w MonthWindow) Start() time.Time {
	return time.Date(w.Year, w.Month, 1, 0, 0, 0, 0, time.UTC)
}

// NextStart returns the first instant of the following month.
// December rolls over into January of the next year.
func (w MonthWindow) NextStart() time.Time {
	return w.Start().AddDate(0, 1, 0)
}

// Contains reports whether the date falls inside the window.
func (w MonthWindow) Contains(d Date) bool {
	return !d.Time.Before(w.Start()) && d.Time.Before(w.NextStart())
}

// Prev returns the preceding calendar month.
func (w MonthWindow) Prev() MonthWindow {
	return w.Back(1)
}

// Back returns the window n months before this one, wrapping year
// boundaries as needed.
func (w MonthWindow) Back(n int) MonthWindow {
	return MonthOf(w.Start().AddDate(0, -n, 0))
}

// spanishMonths holds es-ES abbreviated month names, January first.
var spanishMonths = [12]string{
	"ene", "feb", "mar", "abr", "may", "jun",
	"jul", "ago", "sep", "oct", "nov", "dic",
}

// Label formats the window as an abbreviated Spanish month plus
// two-digit year, e.g. "ene 25".
func (w MonthWindow) Label() string {
	return fmt.Sprintf("%s %02d", spanishMonths[w.Month-1], w.Year%100)
}
