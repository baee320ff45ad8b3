/*
pay.go - Per-period pay calculation

PURPOSE:
  Computes the pay owed for one period from the entries that fall inside it,
  under the practice's compensation rule. This is where the central business
  rule lives: the final owed amount is the GREATER of the attendance-based
  guarantee and the production-based percentage pay.

ALGORITHM:
  1. Split entries into financial (everything but attendance records) and
     attendance-eligible (attendance records + daily summaries).
  2. Count attendance days: distinct dates, max day weight per date
     (half-day = 0.5; a daily summary on the same date lifts it to 1).
  3. basePayOwed = guaranteePerDay * attendanceDays
  4. Sum gross production/collection and adjustments over financial entries.
  5. netBase = calculationBaseValue - adjustments (net-of-adjustments model)
  6. Apply pre-split deductions to netBase.
  7. productionPayComponent = netBase * percentage/100
  8. calculatedPay = max(basePayOwed, productionPayComponent)
     The guarantee floor wins ties; production pay only matters when it
     exceeds the floor.
  9. Apply post-split deductions to calculatedPay.

  Pre-split deductions reduce only the percentage path, never the guarantee
  comparison; post-split deductions subtract after the tie-break.

ERROR POLICY:
  Never panics or errors. A nil practice or empty entry slice yields an
  all-zero result.
*/
package engine

import "github.com/shopspring/decimal"

// =============================================================================
// PAY RESULT
// =============================================================================

// PayResult is the outcome of one period's pay calculation.
type PayResult struct {
	// Final owed amount after the guarantee-vs-production tie-break and
	// post-split deductions.
	CalculatedPay decimal.Decimal

	// Attendance-based guarantee floor.
	BasePayOwed decimal.Decimal

	// Percentage pay on the net calculation base.
	ProductionPayComponent decimal.Decimal

	ProductionTotal decimal.Decimal
	CollectionTotal decimal.Decimal

	// Distinct-day count, half-day aware.
	AttendanceDays decimal.Decimal
}

// =============================================================================
// PAY CALCULATOR
// =============================================================================

// ComputePeriodPay computes the pay owed for the entries of one period.
func ComputePeriodPay(p *Practice, entries []Entry) PayResult {
	if p == nil {
		return PayResult{}
	}

	var (
		production  = decimal.Zero
		collection  = decimal.Zero
		adjustments = decimal.Zero
	)
	dayWeights := make(map[string]decimal.Decimal)

	for _, e := range entries {
		if prod, coll, adj, financial := Financials(e); financial {
			production = production.Add(prod)
			collection = collection.Add(coll)
			adjustments = adjustments.Add(adj)
		}
		if date, weight, eligible := dayContribution(e); eligible {
			k := date.String()
			if weight.GreaterThan(dayWeights[k]) {
				dayWeights[k] = weight
			}
		}
	}

	attendanceDays := decimal.Zero
	for _, w := range dayWeights {
		attendanceDays = attendanceDays.Add(w)
	}

	basePayOwed := p.GuaranteePerDay().Mul(attendanceDays)

	baseValue := production
	if p.CalculationBase == BaseCollection {
		baseValue = collection
	}
	netBase := baseValue.Sub(adjustments)
	netBase = applyDeductions(netBase, p.Deductions, SplitPre)

	productionPay := netBase.Mul(p.Percentage).Div(hundred)

	calculated := maxDecimal(basePayOwed, productionPay)
	calculated = applyDeductions(calculated, p.Deductions, SplitPost)

	return PayResult{
		CalculatedPay:          calculated,
		BasePayOwed:            basePayOwed,
		ProductionPayComponent: productionPay,
		ProductionTotal:        production,
		CollectionTotal:        collection,
		AttendanceDays:         attendanceDays,
	}
}

func applyDeductions(amount decimal.Decimal, deductions []Deduction, split DeductionSplit) decimal.Decimal {
	for _, d := range deductions {
		if d.Split != split {
			continue
		}
		switch d.Type {
		case DeductPercentage:
			amount = amount.Sub(amount.Mul(d.Value).Div(hundred))
		case DeductFixed:
			amount = amount.Sub(d.Value)
		}
	}
	return amount
}
