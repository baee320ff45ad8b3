/*
duedate.go - Due date estimation from payment-detail hints

PURPOSE:
  Estimates when payment for a completed period is expected. The practice's
  free-text payment detail ("15th of following month", "every second
  friday", ...) wins over billing-cycle defaults when it matches a known
  phrase.

PRECEDENCE (first match wins):
  1. "following month"                      -> day N of the next month,
     N parsed as the leading integer in the text, default 15, clamped to
     the target month's last day
  2. "end of month" / "last business day"   -> last day of periodEnd's month
  3. "every second friday" / "bi-weekly"    -> exactly periodEnd
  4. no text match -> cycle defaults:
     bi-weekly -> periodEnd, monthly -> 15th of following month,
     weekly -> periodEnd + 7 days, unknown -> periodEnd + 15 days

PURITY:
  Called repeatedly inside reconciliation loops; same inputs must always
  produce the same output. No clock reads, no state.
*/
package engine

import "strings"

// EstimateDueDate estimates when payment for a period ending at periodEnd is
// expected. ok=false only when periodEnd is not a valid date.
func EstimateDueDate(periodEnd Date, cycle PayCycle, paymentDetail string) (Date, bool) {
	if periodEnd.IsZero() {
		return Date{}, false
	}

	hint := strings.ToLower(paymentDetail)

	switch {
	case strings.Contains(hint, "following month"):
		day := leadingInt(hint, 15)
		next := StartOfMonth(periodEnd).AddMonths(1)
		if max := DaysInMonth(next); day > max {
			day = max
		}
		return NewDate(next.Year(), next.Month(), day), true

	case strings.Contains(hint, "end of month"), strings.Contains(hint, "last business day"):
		return EndOfMonth(periodEnd), true

	case strings.Contains(hint, "every second friday"), strings.Contains(hint, "bi-weekly"):
		return periodEnd, true
	}

	switch cycle {
	case CycleBiWeekly:
		return periodEnd, true
	case CycleMonthly:
		next := StartOfMonth(periodEnd).AddMonths(1)
		return NewDate(next.Year(), next.Month(), 15), true
	case CycleWeekly:
		return periodEnd.AddDays(7), true
	default:
		return periodEnd.AddDays(15), true
	}
}

// leadingInt returns the first run of digits in s, or fallback when the text
// carries no number.
func leadingInt(s string, fallback int) int {
	n, found := 0, false
	for _, r := range s {
		if r >= '0' && r <= '9' {
			n = n*10 + int(r-'0')
			found = true
			continue
		}
		if found {
			break
		}
	}
	if !found {
		return fallback
	}
	return n
}
