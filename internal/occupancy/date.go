// Package occupancy implements the calendar-session engine over the visit
// bindings: per-date aggregates, the caller's registration state, capacity
// warnings, and the bounded add/edit/delete interaction state machine.
package occupancy

import (
	"fmt"
	"time"

	"github.com/mterrades/go-refuge-sync/internal/domain"
)

// Date is a civil calendar date. Comparisons are on the date components
// alone, so "before today" means the same thing regardless of the device's
// timezone or time of day.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// ParseDate decodes a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(domain.DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}, nil
}

// DateOf truncates a timestamp to its civil date in the timestamp's own
// location.
func DateOf(t time.Time) Date {
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

// String renders the canonical YYYY-MM-DD form used on the wire and as the
// visit entity identity.
func (d Date) String() string {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC).Format(domain.DateLayout)
}

// Before reports whether d is strictly earlier than o.
func (d Date) Before(o Date) bool {
	if d.Year != o.Year {
		return d.Year < o.Year
	}
	if d.Month != o.Month {
		return d.Month < o.Month
	}
	return d.Day < o.Day
}

// IsZero reports whether d is the zero date.
func (d Date) IsZero() bool {
	return d == Date{}
}
