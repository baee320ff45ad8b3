/*
status.go - Balance status classification

PURPOSE:
  Classifies a practice's balance state from a handful of scalar facts.
  The original heuristic was a cascade of if/else buried inside the
  reconciliation loop; it lives here as an explicit classifier so the date
  logic and the state machine test independently.

STATES (terminal only, recomputed fresh on every call):
  Paid Up        - balance within a cent of zero (or overpaid)
  W2 Discrepancy - employee practice whose shortfall is within the expected
                   tax-withholding share of historical pay
  Overdue        - owed and past the estimated due date
  Due Soon       - owed with a resolved due date that has not passed
  Owed           - owed with no resolvable due date
*/
package engine

import "github.com/shopspring/decimal"

// =============================================================================
// STATUS
// =============================================================================

type BalanceStatus string

const (
	StatusPaidUp  BalanceStatus = "Paid Up"
	StatusW2      BalanceStatus = "W2 Discrepancy"
	StatusOverdue BalanceStatus = "Overdue"
	StatusDueSoon BalanceStatus = "Due Soon"
	StatusOwed    BalanceStatus = "Owed"
)

// w2WithholdingRatio is the expected employer tax-withholding share of
// historical pay. An employee practice short by no more than this share is
// flagged as a withholding discrepancy, not as overdue.
var w2WithholdingRatio = decimal.NewFromFloat(0.30)

// StatusInput carries the facts the classifier consumes. Balance keeps its
// sign; reporting clamps to zero separately.
type StatusInput struct {
	Balance         decimal.Decimal
	HistoricalPay   decimal.Decimal
	TaxStatus       TaxStatus
	IsOverdue       bool
	DueDateResolved bool
}

// ClassifyStatus maps balance facts to one of the five terminal states.
func ClassifyStatus(in StatusInput) BalanceStatus {
	if in.Balance.LessThanOrEqual(paidUpTolerance) {
		return StatusPaidUp
	}
	if in.TaxStatus == TaxEmployee &&
		in.Balance.LessThanOrEqual(in.HistoricalPay.Mul(w2WithholdingRatio)) {
		return StatusW2
	}
	if in.IsOverdue {
		return StatusOverdue
	}
	if in.DueDateResolved {
		return StatusDueSoon
	}
	return StatusOwed
}

// statusPriority orders balance records for display: most urgent first.
func statusPriority(s BalanceStatus) int {
	switch s {
	case StatusOverdue:
		return 0
	case StatusW2:
		return 1
	case StatusDueSoon:
		return 2
	case StatusOwed:
		return 3
	default: // Paid Up
		return 4
	}
}
