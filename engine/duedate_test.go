package engine_test

import (
	"testing"
	"time"

	"github.com/chairside/practice-engine/engine"
)

// =============================================================================
// DUE DATE ESTIMATION TESTS
// =============================================================================

func TestEstimateDueDate_FollowingMonth_ParsesLeadingDay(t *testing.T) {
	due, ok := engine.EstimateDueDate(d(2024, time.January, 31), engine.CycleMonthly, "paid on the 10th of following month")

	if !ok {
		t.Fatal("expected a due date")
	}
	if !due.Equal(d(2024, time.February, 10)) {
		t.Errorf("expected 2024-02-10, got %s", due)
	}
}

func TestEstimateDueDate_FollowingMonth_DefaultsTo15th(t *testing.T) {
	due, _ := engine.EstimateDueDate(d(2024, time.March, 31), engine.CycleMonthly, "following month by cheque")

	if !due.Equal(d(2024, time.April, 15)) {
		t.Errorf("expected 2024-04-15, got %s", due)
	}
}

func TestEstimateDueDate_FollowingMonth_ClampedToMonthEnd(t *testing.T) {
	// Day 31 does not exist in February; clamp to the leap-year 29th.
	due, _ := engine.EstimateDueDate(d(2024, time.January, 31), engine.CycleMonthly, "31st of following month")

	if !due.Equal(d(2024, time.February, 29)) {
		t.Errorf("expected clamp to 2024-02-29, got %s", due)
	}
}

func TestEstimateDueDate_EndOfMonth(t *testing.T) {
	due, _ := engine.EstimateDueDate(d(2024, time.March, 10), engine.CycleWeekly, "paid at end of month")

	if !due.Equal(d(2024, time.March, 31)) {
		t.Errorf("expected 2024-03-31, got %s", due)
	}
}

func TestEstimateDueDate_LastBusinessDay(t *testing.T) {
	due, _ := engine.EstimateDueDate(d(2024, time.April, 5), engine.CycleMonthly, "last business day")

	if !due.Equal(d(2024, time.April, 30)) {
		t.Errorf("expected 2024-04-30, got %s", due)
	}
}

func TestEstimateDueDate_EverySecondFriday_DueOnPeriodEnd(t *testing.T) {
	end := d(2024, time.March, 15)
	due, _ := engine.EstimateDueDate(end, engine.CycleMonthly, "every second friday")

	if !due.Equal(end) {
		t.Errorf("expected due on period end %s, got %s", end, due)
	}
}

func TestEstimateDueDate_CycleDefaults(t *testing.T) {
	end := d(2024, time.March, 15)

	cases := []struct {
		cycle engine.PayCycle
		want  engine.Date
	}{
		{engine.CycleBiWeekly, end},
		{engine.CycleMonthly, d(2024, time.April, 15)},
		{engine.CycleWeekly, d(2024, time.March, 22)},
		{engine.PayCycle("unknown"), d(2024, time.March, 30)},
	}

	for _, tc := range cases {
		due, ok := engine.EstimateDueDate(end, tc.cycle, "")
		if !ok {
			t.Fatalf("%s: expected a due date", tc.cycle)
		}
		if !due.Equal(tc.want) {
			t.Errorf("%s: expected %s, got %s", tc.cycle, tc.want, due)
		}
	}
}

func TestEstimateDueDate_TextBeatsCycleDefault(t *testing.T) {
	// The payment-detail hint wins even when the cycle has its own default.
	due, _ := engine.EstimateDueDate(d(2024, time.March, 15), engine.CycleBiWeekly, "5th of following month")

	if !due.Equal(d(2024, time.April, 5)) {
		t.Errorf("expected hint to win over bi-weekly default, got %s", due)
	}
}

func TestEstimateDueDate_ZeroPeriodEnd_NoDueDate(t *testing.T) {
	if _, ok := engine.EstimateDueDate(engine.Date{}, engine.CycleMonthly, ""); ok {
		t.Error("expected no due date for an invalid period end")
	}
}

func TestEstimateDueDate_Pure(t *testing.T) {
	// Same inputs must always give the same output; the estimator runs
	// inside reconciliation loops.
	end := d(2024, time.May, 31)
	first, _ := engine.EstimateDueDate(end, engine.CycleMonthly, "15th of following month")
	for i := 0; i < 5; i++ {
		again, _ := engine.EstimateDueDate(end, engine.CycleMonthly, "15th of following month")
		if !again.Equal(first) {
			t.Fatalf("estimator not pure: %s vs %s", first, again)
		}
	}
}
