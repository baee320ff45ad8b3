package engine_test

import (
	"reflect"
	"testing"
	"time"

	"github.com/chairside/practice-engine/engine"
)

// =============================================================================
// CONFIRMED PAYMENT FILTER TESTS
// =============================================================================
// Misclassifying an unconfirmed transaction silently understates a balance,
// so the filter is the one strictly-tested allow-list in the engine.

func TestReconcile_PendingChequeContributesNothing(t *testing.T) {
	p := percentagePractice("prac-1", 40)
	entries := []engine.Entry{
		dailySummary("e1", "prac-1", d(2024, time.January, 10), 10000, 8000),
	}
	today := d(2024, time.February, 10)

	cheque := engine.Cheque{ID: "c1", PracticeID: "prac-1", Date: d(2024, time.February, 1), Amount: money(4000), Status: engine.ChequePending}
	pending := engine.Reconcile(&p, entries, []engine.Cheque{cheque}, nil, nil, today)

	cheque.Status = engine.ChequeCleared
	cleared := engine.Reconcile(&p, entries, []engine.Cheque{cheque}, nil, nil, today)

	assertMoney(t, 0, pending.TotalConfirmedPayments, "pending cheque")
	assertMoney(t, 4000, pending.Balance, "balance with pending cheque")
	assertMoney(t, 4000, cleared.TotalConfirmedPayments, "cleared cheque")
	assertMoney(t, 0, cleared.Balance, "balance with cleared cheque")
}

func TestReconcile_ETransferOnlyCountsWhenAccepted(t *testing.T) {
	p := percentagePractice("prac-1", 40)
	entries := []engine.Entry{
		dailySummary("e1", "prac-1", d(2024, time.January, 10), 10000, 8000),
	}
	today := d(2024, time.February, 10)

	transfers := []engine.ETransfer{
		{ID: "t1", PracticeID: "prac-1", Date: d(2024, time.February, 1), Amount: money(1500), Status: engine.ETransferSent},
		{ID: "t2", PracticeID: "prac-1", Date: d(2024, time.February, 2), Amount: money(2500), Status: engine.ETransferAccepted},
		{ID: "t3", PracticeID: "prac-1", Date: d(2024, time.February, 3), Amount: money(100), Status: engine.ETransferDeclined},
	}

	rec := engine.Reconcile(&p, entries, nil, nil, transfers, today)

	assertMoney(t, 2500, rec.TotalConfirmedPayments, "only the accepted e-transfer counts")
}

func TestReconcile_DirectDepositConfirmedUnconditionally(t *testing.T) {
	p := percentagePractice("prac-1", 40)
	entries := []engine.Entry{
		dailySummary("e1", "prac-1", d(2024, time.January, 10), 10000, 8000),
	}

	deposits := []engine.DirectDeposit{
		{ID: "d1", PracticeID: "prac-1", Date: d(2024, time.February, 1), Amount: money(4000)},
	}

	rec := engine.Reconcile(&p, entries, nil, deposits, nil, d(2024, time.February, 10))

	assertMoney(t, 4000, rec.TotalConfirmedPayments, "direct deposit")
	if rec.Status != engine.StatusPaidUp {
		t.Errorf("expected Paid Up, got %s", rec.Status)
	}
}

// =============================================================================
// BALANCE AND STATUS TESTS
// =============================================================================

func TestReconcile_W2Discrepancy(t *testing.T) {
	// GIVEN: employee practice, 10000 historical pay, 8000 confirmed
	// THEN: 2000 shortfall is 20% of pay (<= 30%) -> W2 Discrepancy
	p := percentagePractice("prac-1", 40)
	p.TaxStatus = engine.TaxEmployee

	entries := []engine.Entry{
		dailySummary("e1", "prac-1", d(2024, time.March, 5), 25000, 20000),
	}
	deposits := []engine.DirectDeposit{
		{ID: "d1", PracticeID: "prac-1", Date: d(2024, time.April, 1), Amount: money(8000)},
	}

	rec := engine.Reconcile(&p, entries, nil, deposits, nil, d(2024, time.April, 20))

	assertMoney(t, 10000, rec.TotalHistoricalPay, "historical pay")
	assertMoney(t, 2000, rec.Balance, "balance")
	if rec.Status != engine.StatusW2 {
		t.Errorf("expected W2 Discrepancy, got %s", rec.Status)
	}
	if rec.IsOverdue {
		t.Error("withholding discrepancy must not be framed as overdue")
	}
	if rec.DisplayDueDate == nil {
		t.Error("due date should be kept for context on W2 records")
	}
}

func TestReconcile_OverdueWhenPastEstimatedDueDate(t *testing.T) {
	// Monthly cycle, no hint: January's pay is due February 15; by March 20
	// the practice is overdue.
	p := percentagePractice("prac-1", 40)
	entries := []engine.Entry{
		dailySummary("e1", "prac-1", d(2024, time.January, 10), 10000, 8000),
	}

	rec := engine.Reconcile(&p, entries, nil, nil, nil, d(2024, time.March, 20))

	if rec.Status != engine.StatusOverdue {
		t.Fatalf("expected Overdue, got %s", rec.Status)
	}
	if !rec.IsOverdue {
		t.Error("expected isOverdue")
	}
	if rec.DisplayDueDate == nil || !rec.DisplayDueDate.Equal(d(2024, time.February, 15)) {
		t.Errorf("expected due 2024-02-15, got %v", rec.DisplayDueDate)
	}
}

func TestReconcile_DueSoonBeforeDueDate(t *testing.T) {
	p := percentagePractice("prac-1", 40)
	entries := []engine.Entry{
		dailySummary("e1", "prac-1", d(2024, time.January, 10), 10000, 8000),
	}

	rec := engine.Reconcile(&p, entries, nil, nil, nil, d(2024, time.February, 10))

	if rec.Status != engine.StatusDueSoon {
		t.Errorf("expected Due Soon before the due date, got %s", rec.Status)
	}
}

func TestReconcile_PaidUpClearsDueDateFraming(t *testing.T) {
	p := percentagePractice("prac-1", 40)
	entries := []engine.Entry{
		dailySummary("e1", "prac-1", d(2024, time.January, 10), 10000, 8000),
	}
	deposits := []engine.DirectDeposit{
		{ID: "d1", PracticeID: "prac-1", Date: d(2024, time.February, 1), Amount: money(4000)},
	}

	rec := engine.Reconcile(&p, entries, nil, deposits, nil, d(2024, time.March, 20))

	if rec.Status != engine.StatusPaidUp {
		t.Fatalf("expected Paid Up, got %s", rec.Status)
	}
	if rec.IsOverdue || rec.DisplayDueDate != nil {
		t.Error("paid-up records carry no due-date framing")
	}
}

func TestReconcile_OverpaymentClampsToZero(t *testing.T) {
	p := percentagePractice("prac-1", 40)
	entries := []engine.Entry{
		dailySummary("e1", "prac-1", d(2024, time.January, 10), 10000, 8000),
	}
	deposits := []engine.DirectDeposit{
		{ID: "d1", PracticeID: "prac-1", Date: d(2024, time.February, 1), Amount: money(5000)},
	}

	rec := engine.Reconcile(&p, entries, nil, deposits, nil, d(2024, time.March, 1))

	assertMoney(t, 0, rec.Balance, "overpaid balance clamps to zero")
	if rec.Status != engine.StatusPaidUp {
		t.Errorf("expected Paid Up, got %s", rec.Status)
	}
}

func TestReconcile_CurrentPeriodExcludedFromBalance(t *testing.T) {
	// Activity in the in-progress month shows up as an estimate only.
	p := percentagePractice("prac-1", 40)
	entries := []engine.Entry{
		dailySummary("e1", "prac-1", d(2024, time.January, 10), 10000, 8000),
		dailySummary("e2", "prac-1", d(2024, time.February, 5), 6000, 5000),
	}

	rec := engine.Reconcile(&p, entries, nil, nil, nil, d(2024, time.February, 10))

	assertMoney(t, 4000, rec.TotalHistoricalPay, "only January counts toward balance")
	assertMoney(t, 2400, rec.EstimatedCurrentPeriodPay, "February is an estimate")
}

func TestReconcile_CurrentPeriodIgnoresFutureDatedEntries(t *testing.T) {
	p := percentagePractice("prac-1", 40)
	entries := []engine.Entry{
		dailySummary("e1", "prac-1", d(2024, time.February, 5), 6000, 5000),
		dailySummary("e2", "prac-1", d(2024, time.February, 25), 9000, 7000), // after today
	}

	rec := engine.Reconcile(&p, entries, nil, nil, nil, d(2024, time.February, 10))

	assertMoney(t, 2400, rec.EstimatedCurrentPeriodPay, "future-dated entry excluded")
}

func TestReconcile_PeriodSummaryMatchedByOverlap(t *testing.T) {
	// A block spanning Jan 20 - Feb 5 overlaps both monthly periods and is
	// counted in each; external blocks rarely line up with boundaries.
	p := percentagePractice("prac-1", 50)
	entries := []engine.Entry{
		engine.PeriodSummary{
			ID: "blk", PracticeID: "prac-1",
			Start: d(2024, time.January, 20), End: d(2024, time.February, 5),
			Production: money(4000),
		},
	}

	rec := engine.Reconcile(&p, entries, nil, nil, nil, d(2024, time.March, 10))

	assertMoney(t, 4000, rec.TotalHistoricalPay, "block overlaps January and February")
}

func TestReconcile_NilPractice_ZeroRecord(t *testing.T) {
	rec := engine.Reconcile(nil, nil, nil, nil, nil, d(2024, time.March, 10))

	if rec.Status != engine.StatusPaidUp || !rec.Balance.IsZero() {
		t.Errorf("expected zero paid-up record, got %+v", rec)
	}
}

func TestReconcile_IgnoresOtherPracticesRecords(t *testing.T) {
	p := percentagePractice("prac-1", 40)
	entries := []engine.Entry{
		dailySummary("e1", "prac-1", d(2024, time.January, 10), 10000, 8000),
		dailySummary("e2", "prac-2", d(2024, time.January, 12), 99999, 99999),
	}
	deposits := []engine.DirectDeposit{
		{ID: "d1", PracticeID: "prac-2", Date: d(2024, time.February, 1), Amount: money(4000)},
	}

	rec := engine.Reconcile(&p, entries, nil, deposits, nil, d(2024, time.March, 1))

	assertMoney(t, 4000, rec.TotalHistoricalPay, "foreign entries ignored")
	assertMoney(t, 0, rec.TotalConfirmedPayments, "foreign payments ignored")
}

func TestReconcile_Idempotent(t *testing.T) {
	// PROPERTY: identical inputs and the same today give identical records.
	p := percentagePractice("prac-1", 40)
	p.PaymentDetail = "15th of following month"
	entries := []engine.Entry{
		dailySummary("e1", "prac-1", d(2024, time.January, 10), 10000, 8000),
		attendance("a1", "prac-1", d(2024, time.January, 11), engine.HalfDay),
	}
	cheques := []engine.Cheque{
		{ID: "c1", PracticeID: "prac-1", Date: d(2024, time.February, 1), Amount: money(1000), Status: engine.ChequeCleared},
	}
	today := d(2024, time.March, 20)

	first := engine.Reconcile(&p, entries, cheques, nil, nil, today)
	second := engine.Reconcile(&p, entries, cheques, nil, nil, today)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("reconcile not idempotent:\n%+v\n%+v", first, second)
	}
}

// =============================================================================
// RECONCILE-ALL FILTER AND ORDERING TESTS
// =============================================================================

func TestReconcileAll_FiltersSettledPractices(t *testing.T) {
	owed := percentagePractice("owed", 40)
	settled := percentagePractice("settled", 40)

	entries := []engine.Entry{
		dailySummary("e1", "owed", d(2024, time.January, 10), 10000, 8000),
		dailySummary("e2", "settled", d(2024, time.January, 12), 10000, 8000),
	}
	deposits := []engine.DirectDeposit{
		{ID: "d1", PracticeID: "settled", Date: d(2024, time.February, 1), Amount: money(4000)},
	}

	records := engine.ReconcileAll([]engine.Practice{owed, settled}, entries, nil, deposits, nil, d(2024, time.March, 20))

	if len(records) != 1 {
		t.Fatalf("expected only the owed practice, got %d records", len(records))
	}
	if records[0].PracticeID != "owed" {
		t.Errorf("expected practice 'owed', got %s", records[0].PracticeID)
	}
}

func TestReconcileAll_SortsByUrgency(t *testing.T) {
	// Overdue sorts above Due Soon; within a status, larger balances first.
	overdue := percentagePractice("overdue", 40)
	dueSoonBig := percentagePractice("due-soon-big", 40)
	dueSoonSmall := percentagePractice("due-soon-small", 40)

	entries := []engine.Entry{
		dailySummary("e1", "overdue", d(2024, time.January, 10), 5000, 4000),
		dailySummary("e2", "due-soon-big", d(2024, time.February, 10), 20000, 15000),
		dailySummary("e3", "due-soon-small", d(2024, time.February, 12), 10000, 8000),
	}
	// March 10: January pay (due Feb 15) is overdue; February pay (due
	// Mar 15) is due soon.
	today := d(2024, time.March, 10)

	records := engine.ReconcileAll(
		[]engine.Practice{dueSoonSmall, dueSoonBig, overdue},
		entries, nil, nil, nil, today,
	)

	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
	want := []engine.PracticeID{"overdue", "due-soon-big", "due-soon-small"}
	for i, id := range want {
		if records[i].PracticeID != id {
			t.Errorf("position %d: expected %s, got %s", i, id, records[i].PracticeID)
		}
	}
}

func TestReconcileAll_KeepsW2RecordsEvenWhenSmall(t *testing.T) {
	p := percentagePractice("w2", 40)
	p.TaxStatus = engine.TaxEmployee

	entries := []engine.Entry{
		dailySummary("e1", "w2", d(2024, time.January, 10), 10000, 8000),
	}
	deposits := []engine.DirectDeposit{
		{ID: "d1", PracticeID: "w2", Date: d(2024, time.February, 1), Amount: money(3200)},
	}

	records := engine.ReconcileAll([]engine.Practice{p}, entries, nil, deposits, nil, d(2024, time.March, 20))

	if len(records) != 1 || records[0].Status != engine.StatusW2 {
		t.Fatalf("expected one W2 record, got %+v", records)
	}
}
