/*
period.go - Pay period generation per billing cycle

PURPOSE:
  Partitions a calendar window into the non-overlapping pay periods a
  practice settles on. This is the interval algebra everything else builds
  on: pay is computed per period, and the historical balance is the sum of
  per-period pay for periods that have fully elapsed.

CYCLE RULES:
  monthly:   one period per calendar month, [1st, lastDay]
  bi-weekly: two periods per month, [1st, 15th] and [16th, lastDay].
             The second half varies 13-16 days with month length; that is
             accepted, not normalized.
  weekly:    successive 7-day windows anchored to the 1st of each month,
             the last window truncated at the month's last day. Weeks do
             not cross month boundaries.
  other:     falls back to the monthly rule.

HISTORICAL vs CURRENT:
  HistoricalPeriods scans from the practice's earliest entry month and keeps
  only periods ending strictly before "today". The in-progress period is
  produced separately by CurrentPeriod and is never counted toward the
  historical balance.

DEDUP:
  Periods are deduplicated by an ISO start|end key so repeated generation
  across years never double-counts a boundary period.
*/
package engine

// =============================================================================
// PERIOD - Inclusive day-granular interval
// =============================================================================

// Period is a derived, non-persistent interval. Start and End are inclusive
// UTC calendar days. Sibling periods of one practice never overlap.
type Period struct {
	Start Date
	End   Date
}

// Contains returns true if the date is within [Start, End].
func (p Period) Contains(d Date) bool {
	return d.AfterOrEqual(p.Start) && d.BeforeOrEqual(p.End)
}

// Overlaps returns true if the two intervals share at least one day.
func (p Period) Overlaps(other Period) bool {
	return p.Start.BeforeOrEqual(other.End) && p.End.AfterOrEqual(other.Start)
}

// Key returns the dedup key for the period.
func (p Period) Key() string { return p.Start.ISO() + "|" + p.End.ISO() }

func (p Period) String() string { return "[" + p.Start.String() + ", " + p.End.String() + "]" }

// =============================================================================
// PERIOD GENERATION
// =============================================================================

// GeneratePeriods returns the ordered pay periods of every month touched by
// [from, to], partitioned per the billing cycle. Unrecognized cycles fall
// back to monthly rather than failing.
func GeneratePeriods(cycle PayCycle, from, to Date) []Period {
	if from.IsZero() || to.IsZero() || to.Before(from) {
		return nil
	}

	var periods []Period
	seen := make(map[string]struct{})
	add := func(p Period) {
		k := p.Key()
		if _, dup := seen[k]; dup {
			return
		}
		seen[k] = struct{}{}
		periods = append(periods, p)
	}

	for cursor := StartOfMonth(from); cursor.BeforeOrEqual(to); cursor = cursor.AddMonths(1) {
		first := StartOfMonth(cursor)
		last := EndOfMonth(cursor)

		switch cycle {
		case CycleBiWeekly:
			mid := NewDate(cursor.Year(), cursor.Month(), 15)
			add(Period{Start: first, End: mid})
			add(Period{Start: mid.AddDays(1), End: last})

		case CycleWeekly:
			for start := first; start.BeforeOrEqual(last); start = start.AddDays(7) {
				end := start.AddDays(6)
				if end.After(last) {
					end = last
				}
				add(Period{Start: start, End: end})
			}

		default: // monthly and anything unrecognized
			add(Period{Start: first, End: last})
		}
	}
	return periods
}

// HistoricalPeriods returns the fully-elapsed pay periods of a practice's
// lifetime: the scan starts at the earliest entry's month and keeps only
// periods whose end is strictly before today. Returns nil when the practice
// has no dated entries.
func HistoricalPeriods(cycle PayCycle, entries []Entry, today Date) []Period {
	earliest, ok := earliestEntryDate(entries)
	if !ok {
		return nil
	}

	all := GeneratePeriods(cycle, StartOfMonth(earliest), today)
	completed := all[:0:0]
	for _, p := range all {
		if p.End.Before(today) {
			completed = append(completed, p)
		}
	}
	return completed
}

// CurrentPeriod returns the in-progress period containing today, via the
// simplified day-of-month/ISO-week rule. It is informational only and never
// counts toward historical balance.
func CurrentPeriod(cycle PayCycle, today Date) Period {
	switch cycle {
	case CycleBiWeekly:
		if today.Day() <= 15 {
			return Period{Start: StartOfMonth(today), End: NewDate(today.Year(), today.Month(), 15)}
		}
		return Period{Start: NewDate(today.Year(), today.Month(), 16), End: EndOfMonth(today)}
	case CycleWeekly:
		return ISOWeek(today)
	default:
		return Period{Start: StartOfMonth(today), End: EndOfMonth(today)}
	}
}

// earliestEntryDate finds the first dated activity; period summaries count
// by their start date.
func earliestEntryDate(entries []Entry) (Date, bool) {
	var earliest Date
	found := false
	for _, e := range entries {
		d, ok := EntryDate(e)
		if !ok {
			if ps, isBlock := e.(PeriodSummary); isBlock {
				d, ok = ps.Start, !ps.Start.IsZero()
			}
		}
		if !ok || d.IsZero() {
			continue
		}
		if !found || d.Before(earliest) {
			earliest = d
			found = true
		}
	}
	return earliest, found
}
