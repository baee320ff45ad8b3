package engine_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/chairside/practice-engine/engine"
)

// =============================================================================
// TEST HELPERS
// =============================================================================
// Shared by all engine tests in this package.

func d(year int, month time.Month, day int) engine.Date {
	return engine.NewDate(year, month, day)
}

func money(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v)
}

func dailySummary(id string, practice engine.PracticeID, date engine.Date, production, collection float64) engine.DailySummary {
	return engine.DailySummary{
		ID:         id,
		PracticeID: practice,
		Date:       date,
		Production: money(production),
		Collection: money(collection),
	}
}

func attendance(id string, practice engine.PracticeID, date engine.Date, kind engine.AttendanceType) engine.AttendanceRecord {
	return engine.AttendanceRecord{ID: id, PracticeID: practice, Date: date, Attendance: kind}
}

func percentagePractice(id string, pct float64) engine.Practice {
	return engine.Practice{
		ID:              engine.PracticeID(id),
		Name:            id,
		Status:          engine.PracticeActive,
		TaxStatus:       engine.TaxContractor,
		PaymentType:     engine.PayByPercentage,
		CalculationBase: engine.BaseProduction,
		Percentage:      money(pct),
		PayCycle:        engine.CycleMonthly,
	}
}

func dailyRatePractice(id string, perDay float64) engine.Practice {
	return engine.Practice{
		ID:          engine.PracticeID(id),
		Name:        id,
		Status:      engine.PracticeActive,
		TaxStatus:   engine.TaxContractor,
		PaymentType: engine.PayByDailyRate,
		BasePay:     money(perDay),
		PayCycle:    engine.CycleMonthly,
	}
}

func assertMoney(t *testing.T, want float64, got decimal.Decimal, label string) {
	t.Helper()
	if !got.Equal(money(want)) {
		t.Errorf("%s: expected %v, got %v", label, want, got)
	}
}

// =============================================================================
// PERIOD GENERATION TESTS
// =============================================================================

func TestGeneratePeriods_Monthly(t *testing.T) {
	periods := engine.GeneratePeriods(engine.CycleMonthly, d(2024, time.January, 1), d(2024, time.March, 31))

	if len(periods) != 3 {
		t.Fatalf("expected 3 periods, got %d", len(periods))
	}
	if !periods[0].Start.Equal(d(2024, time.January, 1)) || !periods[0].End.Equal(d(2024, time.January, 31)) {
		t.Errorf("unexpected first period %s", periods[0])
	}
	if !periods[1].End.Equal(d(2024, time.February, 29)) {
		t.Errorf("expected leap February end, got %s", periods[1].End)
	}
}

func TestGeneratePeriods_BiWeekly_SecondHalfVaries(t *testing.T) {
	// GIVEN: bi-weekly cycle over February 2024 (leap year)
	// THEN: [1,15] and [16,29] - second half length follows month length
	periods := engine.GeneratePeriods(engine.CycleBiWeekly, d(2024, time.February, 1), d(2024, time.February, 29))

	if len(periods) != 2 {
		t.Fatalf("expected 2 periods, got %d", len(periods))
	}
	if !periods[0].End.Equal(d(2024, time.February, 15)) {
		t.Errorf("expected first half to end on the 15th, got %s", periods[0].End)
	}
	if !periods[1].Start.Equal(d(2024, time.February, 16)) || !periods[1].End.Equal(d(2024, time.February, 29)) {
		t.Errorf("unexpected second half %s", periods[1])
	}
}

func TestGeneratePeriods_Weekly_TruncatedAtMonthEnd(t *testing.T) {
	// Weeks anchor to the 1st and never cross a month boundary; the final
	// window of March is 29-31.
	periods := engine.GeneratePeriods(engine.CycleWeekly, d(2024, time.March, 1), d(2024, time.March, 31))

	if len(periods) != 5 {
		t.Fatalf("expected 5 periods, got %d", len(periods))
	}
	last := periods[4]
	if !last.Start.Equal(d(2024, time.March, 29)) || !last.End.Equal(d(2024, time.March, 31)) {
		t.Errorf("expected truncated final window [2024-03-29, 2024-03-31], got %s", last)
	}
}

func TestGeneratePeriods_UnknownCycle_FallsBackToMonthly(t *testing.T) {
	periods := engine.GeneratePeriods(engine.PayCycle("quarterly"), d(2024, time.January, 1), d(2024, time.January, 31))

	if len(periods) != 1 {
		t.Fatalf("expected 1 monthly period, got %d", len(periods))
	}
	if !periods[0].End.Equal(d(2024, time.January, 31)) {
		t.Errorf("expected monthly fallback, got %s", periods[0])
	}
}

func TestGeneratePeriods_CoverageAndNonOverlap(t *testing.T) {
	// PROPERTY: periods are pairwise non-overlapping and cover every day in
	// the range exactly once.
	for _, cycle := range []engine.PayCycle{engine.CycleMonthly, engine.CycleBiWeekly, engine.CycleWeekly} {
		from, to := d(2024, time.January, 1), d(2024, time.June, 30)
		periods := engine.GeneratePeriods(cycle, from, to)

		covered := make(map[string]int)
		for _, p := range periods {
			for day := p.Start; day.BeforeOrEqual(p.End); day = day.AddDays(1) {
				covered[day.String()]++
			}
		}
		for day := from; day.BeforeOrEqual(to); day = day.AddDays(1) {
			if covered[day.String()] != 1 {
				t.Errorf("%s: day %s covered %d times", cycle, day, covered[day.String()])
			}
		}
	}
}

func TestGeneratePeriods_BoundaryPeriodNotDuplicated(t *testing.T) {
	// Windows spanning a year boundary keep one period per month.
	periods := engine.GeneratePeriods(engine.CycleMonthly, d(2023, time.December, 15), d(2024, time.January, 10))

	if len(periods) != 2 {
		t.Fatalf("expected 2 periods across year boundary, got %d", len(periods))
	}
	keys := map[string]bool{}
	for _, p := range periods {
		if keys[p.Key()] {
			t.Errorf("duplicate period key %s", p.Key())
		}
		keys[p.Key()] = true
	}
}

// =============================================================================
// HISTORICAL AND CURRENT PERIOD TESTS
// =============================================================================

func TestHistoricalPeriods_StartsAtEarliestEntryMonth(t *testing.T) {
	// GIVEN: earliest activity on March 10, today May 20
	// THEN: scan covers March and April; May is still in progress
	entries := []engine.Entry{
		dailySummary("e1", "prac-1", d(2024, time.March, 10), 1000, 800),
		dailySummary("e2", "prac-1", d(2024, time.April, 2), 500, 400),
	}

	periods := engine.HistoricalPeriods(engine.CycleMonthly, entries, d(2024, time.May, 20))

	if len(periods) != 2 {
		t.Fatalf("expected 2 completed periods, got %d", len(periods))
	}
	if !periods[0].Start.Equal(d(2024, time.March, 1)) {
		t.Errorf("expected scan to start at March 1, got %s", periods[0].Start)
	}
	for _, p := range periods {
		if !p.End.Before(d(2024, time.May, 20)) {
			t.Errorf("period %s has not fully elapsed", p)
		}
	}
}

func TestHistoricalPeriods_NoEntries_ReturnsNil(t *testing.T) {
	if periods := engine.HistoricalPeriods(engine.CycleMonthly, nil, d(2024, time.May, 20)); periods != nil {
		t.Errorf("expected nil for a practice without entries, got %v", periods)
	}
}

func TestHistoricalPeriods_PeriodSummaryAnchorsEarliest(t *testing.T) {
	entries := []engine.Entry{
		engine.PeriodSummary{
			ID: "blk", PracticeID: "prac-1",
			Start: d(2024, time.January, 20), End: d(2024, time.February, 5),
			Production: money(5000),
		},
	}

	periods := engine.HistoricalPeriods(engine.CycleMonthly, entries, d(2024, time.March, 10))

	if len(periods) != 2 {
		t.Fatalf("expected Jan+Feb, got %d periods", len(periods))
	}
	if !periods[0].Start.Equal(d(2024, time.January, 1)) {
		t.Errorf("expected scan from January, got %s", periods[0].Start)
	}
}

func TestCurrentPeriod_BiWeekly_SecondHalf(t *testing.T) {
	p := engine.CurrentPeriod(engine.CycleBiWeekly, d(2024, time.March, 20))

	if !p.Start.Equal(d(2024, time.March, 16)) || !p.End.Equal(d(2024, time.March, 31)) {
		t.Errorf("expected [2024-03-16, 2024-03-31], got %s", p)
	}
}

func TestCurrentPeriod_Weekly_ISOWeek(t *testing.T) {
	// March 20 2024 is a Wednesday; its ISO week runs Mon 18 - Sun 24.
	p := engine.CurrentPeriod(engine.CycleWeekly, d(2024, time.March, 20))

	if !p.Start.Equal(d(2024, time.March, 18)) || !p.End.Equal(d(2024, time.March, 24)) {
		t.Errorf("expected [2024-03-18, 2024-03-24], got %s", p)
	}
}

func TestCurrentPeriod_Monthly(t *testing.T) {
	p := engine.CurrentPeriod(engine.CycleMonthly, d(2024, time.February, 10))

	if !p.Start.Equal(d(2024, time.February, 1)) || !p.End.Equal(d(2024, time.February, 29)) {
		t.Errorf("expected full February, got %s", p)
	}
}

// =============================================================================
// DATE PARSING TESTS
// =============================================================================

func TestParseDate_BareDateGetsUTCMidnight(t *testing.T) {
	date, ok := engine.ParseDate("2024-03-01")
	if !ok {
		t.Fatal("expected parse to succeed")
	}
	if !date.Equal(d(2024, time.March, 1)) {
		t.Errorf("expected 2024-03-01, got %s", date)
	}
	if date.ISO() != "2024-03-01T00:00:00Z" {
		t.Errorf("expected UTC midnight, got %s", date.ISO())
	}
}

func TestParseDate_MalformedRejected(t *testing.T) {
	for _, s := range []string{"", "not-a-date", "2024-13-40"} {
		if _, ok := engine.ParseDate(s); ok {
			t.Errorf("expected %q to be rejected", s)
		}
	}
}
