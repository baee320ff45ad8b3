/*
Package engine implements the pay period and balance reconciliation engine
for dental-practice income tracking.

PURPOSE:
  This package contains the pure computation core: partitioning a practice's
  activity into pay periods, computing the pay owed for each period under the
  practice's compensation rules, and reconciling cumulative computed pay
  against confirmed bank transactions to classify the practice's balance
  state.

KEY CONCEPTS IN THIS FILE (types.go):
  - Practice: A compensation contract with a counterparty
  - Deduction: A pre- or post-split subtraction applied during pay calculation
  - Cheque / DirectDeposit / ETransfer: Payment instruments, each with its
    own confirmation rule
  - Payment: A generic confirmed-payment record used by metrics comparison

DESIGN PRINCIPLES:
  1. Purity: Every public function is deterministic given its inputs and an
     explicit "today" reference; there is no hidden clock and no mutation of
     caller-owned collections.
  2. Precision: Uses decimal.Decimal for all money amounts; rounding to two
     decimal places happens only at final balance output.
  3. Defensive degradation: A nil practice yields a zero-valued result,
     malformed dates filter records out, and divide-by-zero yields zero.
     A partially-empty dashboard number beats a crashed caller.
  4. Strict confirmation: The one strict spot is the confirmed-payment
     filter. Each instrument has an explicit allow-list rule; nothing is
     "assumed confirmed".

SEE ALSO:
  - entry.go: The tagged union of recorded-activity entries
  - period.go: Pay period generation per billing cycle
  - pay.go: Per-period pay calculation
  - reconcile.go: Balance reconciliation and status classification
  - metrics.go: Cross-practice comparison rollups
*/
package engine

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// PRACTICE - Compensation contract
// =============================================================================

type PracticeID string

type PracticeStatus string

const (
	PracticeActive   PracticeStatus = "active"
	PracticeArchived PracticeStatus = "archived"
)

type TaxStatus string

const (
	TaxContractor TaxStatus = "contractor"
	TaxEmployee   TaxStatus = "employee"
)

type PaymentType string

const (
	PayByPercentage PaymentType = "percentage"
	PayByDailyRate  PaymentType = "dailyRate"
)

// CalculationBase selects which financial total the percentage applies to.
// Only relevant for percentage-paid practices.
type CalculationBase string

const (
	BaseProduction CalculationBase = "production"
	BaseCollection CalculationBase = "collection"
)

type PayCycle string

const (
	CycleMonthly  PayCycle = "monthly"
	CycleBiWeekly PayCycle = "bi-weekly"
	CycleWeekly   PayCycle = "weekly"
)

// Practice is a compensation contract with a counterparty. It is immutable
// during a reconciliation pass; the engine never writes to it.
type Practice struct {
	ID     PracticeID
	Name   string
	Status PracticeStatus

	// contractor vs employee; employees get W2 withholding treatment
	// during balance classification.
	TaxStatus TaxStatus

	PaymentType     PaymentType
	CalculationBase CalculationBase

	// Percentage of the (net) calculation base owed, 0-100.
	Percentage decimal.Decimal

	// Per-day guarantee floor. BasePay is the primary field; DailyGuarantee
	// is an older alias still present on imported records.
	BasePay        decimal.Decimal
	DailyGuarantee decimal.Decimal

	Deductions []Deduction

	PayCycle PayCycle

	// Free-text hint used only for due-date estimation,
	// e.g. "15th of following month" or "every second friday".
	PaymentDetail string
}

// GuaranteePerDay returns the daily guarantee floor, preferring BasePay.
func (p *Practice) GuaranteePerDay() decimal.Decimal {
	if !p.BasePay.IsZero() {
		return p.BasePay
	}
	return p.DailyGuarantee
}

// =============================================================================
// DEDUCTIONS
// =============================================================================

type DeductionType string

const (
	DeductPercentage DeductionType = "percentage"
	DeductFixed      DeductionType = "fixed"
)

// DeductionSplit is the injection point for a deduction: pre-split deductions
// reduce the percentage calculation base before the guarantee-vs-production
// tie-break; post-split deductions subtract from the final owed amount.
type DeductionSplit string

const (
	SplitPre  DeductionSplit = "pre-split"
	SplitPost DeductionSplit = "post-split"
)

type Deduction struct {
	Name  string
	Type  DeductionType
	Value decimal.Decimal
	Split DeductionSplit
}

// =============================================================================
// PAYMENT INSTRUMENTS - Each with its own confirmation rule
// =============================================================================
// The per-instrument mismatch is intentional business policy: it models
// settlement risk that differs by instrument. A cheque can bounce until it
// clears, an e-transfer can be declined until accepted, a direct deposit is
// settled the moment it is recorded.

type ChequeStatus string

const (
	ChequePending ChequeStatus = "Pending"
	ChequeCleared ChequeStatus = "Cleared"
	ChequeBounced ChequeStatus = "Bounced"
)

type Cheque struct {
	ID         string
	PracticeID PracticeID
	Date       Date
	Amount     decimal.Decimal
	Status     ChequeStatus
	Number     string
}

// Confirmed reports whether the cheque counts toward confirmed payments.
func (c Cheque) Confirmed() bool { return c.Status == ChequeCleared }

type DirectDeposit struct {
	ID         string
	PracticeID PracticeID
	Date       Date
	Amount     decimal.Decimal
	Reference  string
}

// Confirmed is unconditional: a recorded direct deposit is settled money.
func (d DirectDeposit) Confirmed() bool { return true }

type ETransferStatus string

const (
	ETransferSent     ETransferStatus = "Sent"
	ETransferAccepted ETransferStatus = "Accepted"
	ETransferDeclined ETransferStatus = "Declined"
)

type ETransfer struct {
	ID         string
	PracticeID PracticeID
	Date       Date
	Amount     decimal.Decimal
	Status     ETransferStatus
	Reference  string
}

// Confirmed reports whether the e-transfer counts toward confirmed payments.
func (e ETransfer) Confirmed() bool { return e.Status == ETransferAccepted }

// Payment is an instrument-agnostic confirmed payment record. Metrics
// comparison consumes these; reconciliation works from the raw instruments.
type Payment struct {
	ID         string
	PracticeID PracticeID
	Date       Date
	Amount     decimal.Decimal
}

// =============================================================================
// MONEY HELPERS
// =============================================================================

var (
	hundred = decimal.NewFromInt(100)
	half    = decimal.NewFromFloat(0.5)
	one     = decimal.NewFromInt(1)

	// paidUpTolerance absorbs accumulated rounding; balances at or under a
	// cent are treated as settled.
	paidUpTolerance = decimal.NewFromFloat(0.01)
)

// Round2 rounds a currency amount to two decimal places. Applied only at
// final balance output, never at intermediate steps.
func Round2(d decimal.Decimal) decimal.Decimal { return d.Round(2) }

func maxDecimal(a, b decimal.Decimal) decimal.Decimal {
	if a.GreaterThanOrEqual(b) {
		return a
	}
	return b
}

// ratePercent returns numerator/denominator*100, or zero when the
// denominator is zero.
func ratePercent(numerator, denominator decimal.Decimal) decimal.Decimal {
	if denominator.IsZero() {
		return decimal.Zero
	}
	return numerator.Div(denominator).Mul(hundred)
}
