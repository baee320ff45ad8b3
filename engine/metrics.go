/*
metrics.go - Cross-practice comparison rollups

PURPOSE:
  Builds comparison summaries on top of the pay calculator: per-practice
  averages, contribution percentages, rankings, and "winner" insights.
  Used for reporting and comparison dashboards, never for reconciliation.

MONTH-SCOPED PAY:
  Calculated pay is computed per distinct calendar month present in the
  filtered entries and then summed. The guarantee/percentage tie-break is
  month-scoped, so summing one big window in a single pass would distort
  practices whose guarantee wins some months and loses others.

RATE GUARDS:
  collectionRate and effectiveRate divide by production; zero production
  yields a zero rate, never NaN or infinity.
*/
package engine

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// =============================================================================
// OPTIONS AND RESULT TYPES
// =============================================================================

// CompareOptions narrows the comparison window and practice set. Nil date
// bounds mean unbounded; an empty PracticeIDs list means all practices.
type CompareOptions struct {
	StartDate   *Date
	EndDate     *Date
	PracticeIDs []PracticeID
	ActiveOnly  bool
}

// PracticeMetrics is one practice's rollup inside the comparison window.
type PracticeMetrics struct {
	PracticeID   PracticeID
	PracticeName string

	DaysWorked      decimal.Decimal
	ProductionTotal decimal.Decimal
	CollectionTotal decimal.Decimal

	// Pay summed per distinct calendar month in the window.
	CalculatedPay decimal.Decimal

	PaymentsReceived   decimal.Decimal
	OutstandingBalance decimal.Decimal

	AvgPayPerDay   decimal.Decimal
	CollectionRate decimal.Decimal
	EffectiveRate  decimal.Decimal

	// Share of the window's total production, 0-100.
	ProductionShare decimal.Decimal
}

type ComparisonTotals struct {
	Production         decimal.Decimal
	Collection         decimal.Decimal
	CalculatedPay      decimal.Decimal
	PaymentsReceived   decimal.Decimal
	OutstandingBalance decimal.Decimal
	PracticeCount      int
}

// Rankings are five independently-sorted views, best first.
type Rankings struct {
	ByPay           []PracticeID
	ByDailyRate     []PracticeID
	ByProduction    []PracticeID
	ByEffectiveRate []PracticeID
	ByDaysWorked    []PracticeID
}

// Insight is a single headline fact: the winner of one metric, or an
// aggregate note worth surfacing.
type Insight struct {
	Metric       string
	PracticeID   PracticeID
	PracticeName string
	Value        decimal.Decimal
	Note         string
}

type ComparisonResult struct {
	Metrics  []PracticeMetrics
	Totals   ComparisonTotals
	Rankings Rankings
	Insights []Insight
}

// outstandingReportingThreshold is the aggregate outstanding balance above
// which the comparison flags a note.
var outstandingReportingThreshold = decimal.NewFromInt(100)

// =============================================================================
// METRICS AGGREGATOR
// =============================================================================

// CompareMetrics builds the cross-practice comparison for the given window.
func CompareMetrics(practices []Practice, entries []Entry, payments []Payment, opts CompareOptions) ComparisonResult {
	selected := selectPractices(practices, opts)

	metrics := make([]PracticeMetrics, 0, len(selected))
	totals := ComparisonTotals{
		Production:         decimal.Zero,
		Collection:         decimal.Zero,
		CalculatedPay:      decimal.Zero,
		PaymentsReceived:   decimal.Zero,
		OutstandingBalance: decimal.Zero,
	}

	for i := range selected {
		p := &selected[i]
		m := practiceMetrics(p, entries, payments, opts)
		metrics = append(metrics, m)

		totals.Production = totals.Production.Add(m.ProductionTotal)
		totals.Collection = totals.Collection.Add(m.CollectionTotal)
		totals.CalculatedPay = totals.CalculatedPay.Add(m.CalculatedPay)
		totals.PaymentsReceived = totals.PaymentsReceived.Add(m.PaymentsReceived)
		totals.OutstandingBalance = totals.OutstandingBalance.Add(m.OutstandingBalance)
	}
	totals.PracticeCount = len(metrics)

	for i := range metrics {
		metrics[i].ProductionShare = ratePercent(metrics[i].ProductionTotal, totals.Production)
	}

	rankings := buildRankings(metrics)

	return ComparisonResult{
		Metrics:  metrics,
		Totals:   totals,
		Rankings: rankings,
		Insights: buildInsights(metrics, rankings, totals),
	}
}

func selectPractices(practices []Practice, opts CompareOptions) []Practice {
	wanted := make(map[PracticeID]struct{}, len(opts.PracticeIDs))
	for _, id := range opts.PracticeIDs {
		wanted[id] = struct{}{}
	}

	var out []Practice
	for _, p := range practices {
		if opts.ActiveOnly && p.Status != PracticeActive {
			continue
		}
		if len(wanted) > 0 {
			if _, ok := wanted[p.ID]; !ok {
				continue
			}
		}
		out = append(out, p)
	}
	return out
}

func inWindow(d Date, opts CompareOptions) bool {
	if opts.StartDate != nil && d.Before(*opts.StartDate) {
		return false
	}
	if opts.EndDate != nil && d.After(*opts.EndDate) {
		return false
	}
	return true
}

func practiceMetrics(p *Practice, entries []Entry, payments []Payment, opts CompareOptions) PracticeMetrics {
	// Window-filter this practice's entries, grouped by calendar month.
	byMonth := make(map[string][]Entry)
	dayWeights := make(map[string]decimal.Decimal)
	production, collection := decimal.Zero, decimal.Zero

	for _, e := range entries {
		if e.ForPractice() != p.ID {
			continue
		}
		var anchor Date
		if d, dated := EntryDate(e); dated {
			anchor = d
		} else if ps, isBlock := e.(PeriodSummary); isBlock {
			anchor = ps.Start
		}
		if anchor.IsZero() || !inWindow(anchor, opts) {
			continue
		}

		byMonth[anchor.MonthKey()] = append(byMonth[anchor.MonthKey()], e)

		if prod, coll, _, financial := Financials(e); financial {
			production = production.Add(prod)
			collection = collection.Add(coll)
		}
		if date, weight, eligible := dayContribution(e); eligible {
			k := date.String()
			if weight.GreaterThan(dayWeights[k]) {
				dayWeights[k] = weight
			}
		}
	}

	// Pay is month-scoped: one calculator run per month, then summed.
	pay := decimal.Zero
	for _, monthEntries := range byMonth {
		pay = pay.Add(ComputePeriodPay(p, monthEntries).CalculatedPay)
	}

	days := decimal.Zero
	for _, w := range dayWeights {
		days = days.Add(w)
	}

	received := decimal.Zero
	for _, pay := range payments {
		if pay.PracticeID == p.ID && inWindow(pay.Date, opts) {
			received = received.Add(pay.Amount)
		}
	}

	avgPerDay := decimal.Zero
	if !days.IsZero() {
		avgPerDay = pay.Div(days)
	}

	return PracticeMetrics{
		PracticeID:         p.ID,
		PracticeName:       p.Name,
		DaysWorked:         days,
		ProductionTotal:    production,
		CollectionTotal:    collection,
		CalculatedPay:      pay,
		PaymentsReceived:   received,
		OutstandingBalance: pay.Sub(received),
		AvgPayPerDay:       avgPerDay,
		CollectionRate:     ratePercent(collection, production),
		EffectiveRate:      ratePercent(pay, production),
	}
}

// =============================================================================
// RANKINGS AND INSIGHTS
// =============================================================================

func rankBy(metrics []PracticeMetrics, value func(PracticeMetrics) decimal.Decimal) []PracticeID {
	idx := make([]int, len(metrics))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return value(metrics[idx[a]]).GreaterThan(value(metrics[idx[b]]))
	})
	ids := make([]PracticeID, len(idx))
	for i, j := range idx {
		ids[i] = metrics[j].PracticeID
	}
	return ids
}

func buildRankings(metrics []PracticeMetrics) Rankings {
	return Rankings{
		ByPay:           rankBy(metrics, func(m PracticeMetrics) decimal.Decimal { return m.CalculatedPay }),
		ByDailyRate:     rankBy(metrics, func(m PracticeMetrics) decimal.Decimal { return m.AvgPayPerDay }),
		ByProduction:    rankBy(metrics, func(m PracticeMetrics) decimal.Decimal { return m.ProductionTotal }),
		ByEffectiveRate: rankBy(metrics, func(m PracticeMetrics) decimal.Decimal { return m.EffectiveRate }),
		ByDaysWorked:    rankBy(metrics, func(m PracticeMetrics) decimal.Decimal { return m.DaysWorked }),
	}
}

func buildInsights(metrics []PracticeMetrics, rankings Rankings, totals ComparisonTotals) []Insight {
	byID := make(map[PracticeID]PracticeMetrics, len(metrics))
	for _, m := range metrics {
		byID[m.PracticeID] = m
	}

	var insights []Insight
	winner := func(metric string, ranked []PracticeID, value func(PracticeMetrics) decimal.Decimal) {
		if len(ranked) == 0 {
			return
		}
		top := byID[ranked[0]]
		v := value(top)
		if !v.IsPositive() {
			return
		}
		insights = append(insights, Insight{
			Metric:       metric,
			PracticeID:   top.PracticeID,
			PracticeName: top.PracticeName,
			Value:        v,
		})
	}

	winner("calculatedPay", rankings.ByPay, func(m PracticeMetrics) decimal.Decimal { return m.CalculatedPay })
	winner("avgPayPerDay", rankings.ByDailyRate, func(m PracticeMetrics) decimal.Decimal { return m.AvgPayPerDay })
	winner("production", rankings.ByProduction, func(m PracticeMetrics) decimal.Decimal { return m.ProductionTotal })
	winner("effectiveRate", rankings.ByEffectiveRate, func(m PracticeMetrics) decimal.Decimal { return m.EffectiveRate })
	winner("daysWorked", rankings.ByDaysWorked, func(m PracticeMetrics) decimal.Decimal { return m.DaysWorked })

	// Aggregate note: flag practices still owed money once the total crosses
	// the reporting threshold.
	owed := decimal.Zero
	flagged := 0
	for _, m := range metrics {
		if m.OutstandingBalance.IsPositive() {
			owed = owed.Add(m.OutstandingBalance)
			flagged++
		}
	}
	if owed.GreaterThan(outstandingReportingThreshold) {
		insights = append(insights, Insight{
			Metric: "outstandingBalance",
			Value:  Round2(owed),
			Note:   fmt.Sprintf("%d practice(s) carry a combined outstanding balance of %s", flagged, Round2(owed)),
		})
	}

	return insights
}
