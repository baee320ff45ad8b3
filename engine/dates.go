package engine

import (
	"strings"
	"time"
)

// =============================================================================
// DATE - Day-granular UTC calendar date
// =============================================================================

// Date is a calendar day pinned to UTC midnight. All period boundaries,
// entry dates, and due dates in the engine are day-granular; normalizing
// to UTC midnight avoids local-timezone drift when comparing dates that
// originated as strings.
type Date struct {
	Time time.Time
}

// NewDate constructs a Date at UTC midnight.
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates an arbitrary time to its UTC calendar day.
func DateOf(t time.Time) Date {
	u := t.UTC()
	return NewDate(u.Year(), u.Month(), u.Day())
}

// ParseDate parses a date string. Bare "YYYY-MM-DD" strings are completed
// with "T00:00:00Z" before parsing so the result is always UTC midnight.
// Returns ok=false for malformed input; callers filter those records out
// rather than aborting the whole calculation.
func ParseDate(s string) (Date, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, false
	}
	if !strings.Contains(s, "T") {
		s += "T00:00:00Z"
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return Date{}, false
	}
	return DateOf(t), true
}

func (d Date) normalize() time.Time {
	return time.Date(d.Time.Year(), d.Time.Month(), d.Time.Day(), 0, 0, 0, 0, time.UTC)
}

// Comparison
func (d Date) Before(other Date) bool        { return d.normalize().Before(other.normalize()) }
func (d Date) After(other Date) bool         { return d.normalize().After(other.normalize()) }
func (d Date) Equal(other Date) bool         { return d.normalize().Equal(other.normalize()) }
func (d Date) BeforeOrEqual(other Date) bool { return d.Before(other) || d.Equal(other) }
func (d Date) AfterOrEqual(other Date) bool  { return d.After(other) || d.Equal(other) }

// Arithmetic
func (d Date) AddDays(n int) Date   { return DateOf(d.normalize().AddDate(0, 0, n)) }
func (d Date) AddMonths(n int) Date { return DateOf(d.normalize().AddDate(0, n, 0)) }

// Properties
func (d Date) Year() int             { return d.Time.Year() }
func (d Date) Month() time.Month     { return d.Time.Month() }
func (d Date) Day() int              { return d.Time.Day() }
func (d Date) Weekday() time.Weekday { return d.normalize().Weekday() }
func (d Date) IsZero() bool          { return d.Time.IsZero() }

// String returns the calendar-day form, e.g. "2024-03-01".
func (d Date) String() string { return d.normalize().Format("2006-01-02") }

// ISO returns the full RFC3339 form used for period dedup keys.
func (d Date) ISO() string { return d.normalize().Format(time.RFC3339) }

// MonthKey returns "YYYY-MM", used to group entries per calendar month.
func (d Date) MonthKey() string { return d.normalize().Format("2006-01") }

// =============================================================================
// MONTH HELPERS
// =============================================================================

func StartOfMonth(d Date) Date { return NewDate(d.Year(), d.Month(), 1) }

func EndOfMonth(d Date) Date {
	return DateOf(time.Date(d.Year(), d.Month()+1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1))
}

func DaysInMonth(d Date) int { return EndOfMonth(d).Day() }

// ISOWeek returns the Monday-to-Sunday week containing d.
func ISOWeek(d Date) Period {
	offset := (int(d.Weekday()) + 6) % 7 // Monday = 0
	start := d.AddDays(-offset)
	return Period{Start: start, End: start.AddDays(6)}
}
