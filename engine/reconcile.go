/*
reconcile.go - Balance reconciliation

PURPOSE:
  The orchestrator. Walks a practice's full entry history period by period,
  sums the pay owed for every fully-elapsed period, subtracts confirmed
  payments, and classifies the resulting balance. This answers the question
  the whole engine exists for: "who still owes me, how much, and how late?"

RECONCILIATION STEPS:
  1. Generate historical periods ending strictly before today.
  2. Per period, select matching entries (dated entries by containment,
     period summaries by overlap) and run the pay calculator; accumulate
     calculated pay and track the latest period end that had activity.
  3. Sum confirmed payments under the per-instrument allow-list rule.
  4. balance = round2(historical pay - confirmed payments); the sign is
     kept internally for classification and clamped to zero for reporting.
  5. Estimate the in-progress period's pay (informational, excluded from
     the balance).
  6. Classify via the status state machine, consulting the due-date
     estimator for overdue framing.

DETERMINISM:
  "today" is an explicit parameter on every entry point. Given identical
  inputs and the same today, reconciliation returns identical records;
  callers re-run it freely without drift.
*/
package engine

import (
	"sort"

	"github.com/shopspring/decimal"
)

// =============================================================================
// BALANCE RECORD
// =============================================================================

// BalanceRecord is the derived, non-persistent reconciliation summary for
// one practice. Recomputed from scratch on every call, never mutated
// incrementally.
type BalanceRecord struct {
	PracticeID   PracticeID
	PracticeName string

	Status BalanceStatus

	// Outstanding amount owed, clamped to zero and rounded to cents.
	Balance decimal.Decimal

	IsOverdue bool

	// Estimated due date of the last completed period; nil when paid up or
	// when no period has completed.
	DisplayDueDate *Date

	// Pay accrued so far in the in-progress period. Informational only.
	EstimatedCurrentPeriodPay decimal.Decimal

	TotalHistoricalPay     decimal.Decimal
	TotalConfirmedPayments decimal.Decimal

	LastCompletedPeriodEnd *Date
}

// =============================================================================
// RECONCILER
// =============================================================================

// Reconcile computes the balance record for one practice. Inputs may contain
// records for other practices; anything not belonging to p is ignored.
// A nil practice yields a zero-valued, paid-up record.
func Reconcile(p *Practice, entries []Entry, cheques []Cheque, deposits []DirectDeposit, transfers []ETransfer, today Date) BalanceRecord {
	if p == nil {
		return BalanceRecord{Status: StatusPaidUp}
	}

	own := entries[:0:0]
	for _, e := range entries {
		if e.ForPractice() == p.ID {
			own = append(own, e)
		}
	}

	// 1-2. Historical pay, period by period.
	totalHistorical := decimal.Zero
	var lastCompleted *Date
	for _, period := range HistoricalPeriods(p.PayCycle, own, today) {
		var inPeriod []Entry
		for _, e := range own {
			if InPeriod(e, period) {
				inPeriod = append(inPeriod, e)
			}
		}
		if len(inPeriod) == 0 {
			continue
		}
		totalHistorical = totalHistorical.Add(ComputePeriodPay(p, inPeriod).CalculatedPay)
		end := period.End
		if lastCompleted == nil || end.After(*lastCompleted) {
			lastCompleted = &end
		}
	}

	// 3. Confirmed payments, explicit allow-list per instrument.
	confirmed := sumConfirmedPayments(p.ID, cheques, deposits, transfers)

	// 4. Signed balance for classification; clamped for reporting.
	signed := Round2(totalHistorical.Sub(confirmed))

	// 5. In-progress period estimate, entries dated on/before today only.
	estimate := currentPeriodEstimate(p, own, today)

	// 6. Overdue framing and classification.
	var displayDue *Date
	isOverdue := false
	dueResolved := false
	if lastCompleted != nil {
		if due, ok := EstimateDueDate(*lastCompleted, p.PayCycle, p.PaymentDetail); ok {
			displayDue = &due
			dueResolved = true
			isOverdue = today.After(due)
		}
	}

	status := ClassifyStatus(StatusInput{
		Balance:         signed,
		HistoricalPay:   totalHistorical,
		TaxStatus:       p.TaxStatus,
		IsOverdue:       isOverdue,
		DueDateResolved: dueResolved,
	})

	switch status {
	case StatusPaidUp:
		isOverdue = false
		displayDue = nil
	case StatusW2:
		// Due date kept for context, but a withholding discrepancy is not
		// framed as late payment.
		isOverdue = false
	}

	balance := signed
	if balance.IsNegative() {
		balance = decimal.Zero
	}

	return BalanceRecord{
		PracticeID:                p.ID,
		PracticeName:              p.Name,
		Status:                    status,
		Balance:                   balance,
		IsOverdue:                 isOverdue,
		DisplayDueDate:            displayDue,
		EstimatedCurrentPeriodPay: estimate,
		TotalHistoricalPay:        totalHistorical,
		TotalConfirmedPayments:    confirmed,
		LastCompletedPeriodEnd:    lastCompleted,
	}
}

// ReconcileAll reconciles every practice, drops records with nothing to
// show, and orders the rest by urgency.
func ReconcileAll(practices []Practice, entries []Entry, cheques []Cheque, deposits []DirectDeposit, transfers []ETransfer, today Date) []BalanceRecord {
	var records []BalanceRecord
	for i := range practices {
		rec := Reconcile(&practices[i], entries, cheques, deposits, transfers, today)
		if rec.Balance.GreaterThan(paidUpTolerance) ||
			rec.EstimatedCurrentPeriodPay.GreaterThan(paidUpTolerance) ||
			rec.Status == StatusW2 {
			records = append(records, rec)
		}
	}

	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if pa, pb := statusPriority(a.Status), statusPriority(b.Status); pa != pb {
			return pa < pb
		}
		if a.IsOverdue != b.IsOverdue {
			return a.IsOverdue
		}
		if cmp := a.Balance.Cmp(b.Balance); cmp != 0 {
			return cmp > 0
		}
		return a.EstimatedCurrentPeriodPay.Cmp(b.EstimatedCurrentPeriodPay) > 0
	})
	return records
}

// =============================================================================
// INTERNALS
// =============================================================================

func sumConfirmedPayments(id PracticeID, cheques []Cheque, deposits []DirectDeposit, transfers []ETransfer) decimal.Decimal {
	total := decimal.Zero
	for _, c := range cheques {
		if c.PracticeID == id && c.Confirmed() {
			total = total.Add(c.Amount)
		}
	}
	for _, d := range deposits {
		if d.PracticeID == id && d.Confirmed() {
			total = total.Add(d.Amount)
		}
	}
	for _, t := range transfers {
		if t.PracticeID == id && t.Confirmed() {
			total = total.Add(t.Amount)
		}
	}
	return total
}

func currentPeriodEstimate(p *Practice, entries []Entry, today Date) decimal.Decimal {
	period := CurrentPeriod(p.PayCycle, today)
	var current []Entry
	for _, e := range entries {
		if !InPeriod(e, period) {
			continue
		}
		if d, dated := EntryDate(e); dated && d.After(today) {
			continue
		}
		if ps, isBlock := e.(PeriodSummary); isBlock && ps.Start.After(today) {
			continue
		}
		current = append(current, e)
	}
	if len(current) == 0 {
		return decimal.Zero
	}
	return ComputePeriodPay(p, current).CalculatedPay
}
