/*
entry.go - Recorded-activity entries as a tagged union

PURPOSE:
  One unit of recorded activity for a practice. The original data model used
  a bare entryType string with ad-hoc optional fields; here each entry type
  is its own concrete struct carrying only the fields that exist for it:

    DailySummary     - one day's production/collection totals
    Procedure        - a single procedure on a date
    PeriodSummary    - an externally-aggregated block over a date range
    AttendanceRecord - a day worked (full or half), no financials

ENTRY ROLES:
  Financial entries (everything except AttendanceRecord) contribute
  production, collection, and adjustments to pay calculation.

  Attendance-eligible entries (AttendanceRecord and DailySummary) contribute
  to the day count behind the base-pay guarantee. A date appearing via both
  an attendance record and a daily summary counts once, at the maximum day
  weight for that date.

PERIOD MATCHING:
  Dated entries match a period by containment. PeriodSummary entries match
  by interval overlap, never by exact date equality, since external blocks
  rarely line up with generated period boundaries.
*/
package engine

import "github.com/shopspring/decimal"

// =============================================================================
// ENTRY UNION
// =============================================================================

type EntryKind string

const (
	KindDailySummary  EntryKind = "dailySummary"
	KindProcedure     EntryKind = "individualProcedure"
	KindPeriodSummary EntryKind = "periodSummary"
	KindAttendance    EntryKind = "attendanceRecord"
)

// Entry is the closed set of recorded-activity variants. Every entry belongs
// to exactly one practice.
type Entry interface {
	EntryID() string
	ForPractice() PracticeID
	Kind() EntryKind
}

// Adjustment is an amount subtracted from the calculation base before the
// percentage is applied (net-of-adjustments model).
type Adjustment struct {
	Name   string
	Amount decimal.Decimal
}

type DailySummary struct {
	ID          string
	PracticeID  PracticeID
	Date        Date
	Production  decimal.Decimal
	Collection  decimal.Decimal
	Adjustments []Adjustment
}

func (e DailySummary) EntryID() string         { return e.ID }
func (e DailySummary) ForPractice() PracticeID { return e.PracticeID }
func (e DailySummary) Kind() EntryKind         { return KindDailySummary }

type Procedure struct {
	ID          string
	PracticeID  PracticeID
	Date        Date
	Description string
	Production  decimal.Decimal
	Collection  decimal.Decimal
	Adjustments []Adjustment
}

func (e Procedure) EntryID() string         { return e.ID }
func (e Procedure) ForPractice() PracticeID { return e.PracticeID }
func (e Procedure) Kind() EntryKind         { return KindProcedure }

// PeriodSummary represents an externally-aggregated block spanning a date
// range instead of a single date.
type PeriodSummary struct {
	ID          string
	PracticeID  PracticeID
	Start       Date
	End         Date
	Production  decimal.Decimal
	Collection  decimal.Decimal
	Adjustments []Adjustment
}

func (e PeriodSummary) EntryID() string         { return e.ID }
func (e PeriodSummary) ForPractice() PracticeID { return e.PracticeID }
func (e PeriodSummary) Kind() EntryKind         { return KindPeriodSummary }

type AttendanceType string

const (
	FullDay AttendanceType = "full-day"
	HalfDay AttendanceType = "half-day"
)

type AttendanceRecord struct {
	ID         string
	PracticeID PracticeID
	Date       Date

	// Zero value means full-day.
	Attendance AttendanceType
}

func (e AttendanceRecord) EntryID() string         { return e.ID }
func (e AttendanceRecord) ForPractice() PracticeID { return e.PracticeID }
func (e AttendanceRecord) Kind() EntryKind         { return KindAttendance }

// DayWeight returns the day-count contribution of the record.
func (e AttendanceRecord) DayWeight() decimal.Decimal {
	if e.Attendance == HalfDay {
		return half
	}
	return one
}

// =============================================================================
// ENTRY INSPECTION HELPERS
// =============================================================================

// EntryDate returns the single calendar date of a dated entry.
// ok=false for PeriodSummary, which spans an interval.
func EntryDate(e Entry) (Date, bool) {
	switch v := e.(type) {
	case DailySummary:
		return v.Date, true
	case Procedure:
		return v.Date, true
	case AttendanceRecord:
		return v.Date, true
	default:
		return Date{}, false
	}
}

// Financials returns production, collection, and the summed adjustments of a
// financial entry. ok=false for attendance records.
func Financials(e Entry) (production, collection, adjustments decimal.Decimal, ok bool) {
	var adj []Adjustment
	switch v := e.(type) {
	case DailySummary:
		production, collection, adj = v.Production, v.Collection, v.Adjustments
	case Procedure:
		production, collection, adj = v.Production, v.Collection, v.Adjustments
	case PeriodSummary:
		production, collection, adj = v.Production, v.Collection, v.Adjustments
	default:
		return decimal.Zero, decimal.Zero, decimal.Zero, false
	}
	total := decimal.Zero
	for _, a := range adj {
		total = total.Add(a.Amount)
	}
	return production, collection, total, true
}

// dayContribution returns the date and day weight an entry adds to the
// attendance count. Attendance records weigh by full/half day; daily
// summaries always weigh a full day. ok=false for everything else.
func dayContribution(e Entry) (Date, decimal.Decimal, bool) {
	switch v := e.(type) {
	case AttendanceRecord:
		return v.Date, v.DayWeight(), true
	case DailySummary:
		return v.Date, one, true
	default:
		return Date{}, decimal.Zero, false
	}
}

// InPeriod reports whether an entry belongs to a period: dated entries by
// containment, period summaries by interval overlap.
func InPeriod(e Entry, p Period) bool {
	if ps, isBlock := e.(PeriodSummary); isBlock {
		return ps.Start.BeforeOrEqual(p.End) && ps.End.AfterOrEqual(p.Start)
	}
	d, ok := EntryDate(e)
	return ok && p.Contains(d)
}
