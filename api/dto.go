/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

MONEY ENCODING:
  Internally every amount is a decimal.Decimal. At the API boundary amounts
  are rendered as float64 rounded to cents; the rounding has already happened
  inside the engine, so the float conversion is presentation only.

ENTRY ENCODING:
  The Entry union crosses the wire as a flat object with an entry_type
  discriminator, mirroring the imported spreadsheet rows the system ingests.
  Unknown entry types and malformed dates are rejected at decode time.

SEE ALSO:
  - handlers.go: Uses these types
  - factory/practice.go: PracticeJSON type
*/
package api

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/chairside/practice-engine/engine"
)

// =============================================================================
// PRACTICE TYPES
// =============================================================================

// PracticeDTO represents a practice in API responses.
type PracticeDTO struct {
	ID              string         `json:"id"`
	Name            string         `json:"name"`
	Status          string         `json:"status"`
	TaxStatus       string         `json:"tax_status"`
	PaymentType     string         `json:"payment_type"`
	CalculationBase string         `json:"calculation_base"`
	PayCycle        string         `json:"pay_cycle"`
	Percentage      float64        `json:"percentage"`
	BasePay         float64        `json:"base_pay"`
	DailyGuarantee  float64        `json:"daily_guarantee"`
	PaymentDetail   string         `json:"payment_detail,omitempty"`
	Deductions      []DeductionDTO `json:"deductions,omitempty"`
}

type DeductionDTO struct {
	Name  string  `json:"name"`
	Type  string  `json:"type"`
	Value float64 `json:"value"`
	Split string  `json:"split"`
}

func toPracticeDTO(p engine.Practice) PracticeDTO {
	dto := PracticeDTO{
		ID:              string(p.ID),
		Name:            p.Name,
		Status:          string(p.Status),
		TaxStatus:       string(p.TaxStatus),
		PaymentType:     string(p.PaymentType),
		CalculationBase: string(p.CalculationBase),
		PayCycle:        string(p.PayCycle),
		PaymentDetail:   p.PaymentDetail,
	}
	dto.Percentage = toFloat(p.Percentage)
	dto.BasePay = toFloat(p.BasePay)
	dto.DailyGuarantee = toFloat(p.DailyGuarantee)
	for _, d := range p.Deductions {
		dto.Deductions = append(dto.Deductions, DeductionDTO{
			Name:  d.Name,
			Type:  string(d.Type),
			Value: toFloat(d.Value),
			Split: string(d.Split),
		})
	}
	return dto
}

// =============================================================================
// ENTRY TYPES
// =============================================================================

// EntryJSON is the flat wire form of the Entry union. entry_type selects the
// variant; only the fields that exist for that variant are honored.
type EntryJSON struct {
	ID         string `json:"id,omitempty"`
	PracticeID string `json:"practice_id"`
	EntryType  string `json:"entry_type"`

	Date        string `json:"date,omitempty"`
	PeriodStart string `json:"period_start,omitempty"`
	PeriodEnd   string `json:"period_end,omitempty"`

	Production  float64          `json:"production,omitempty"`
	Collection  float64          `json:"collection,omitempty"`
	Adjustments []AdjustmentJSON `json:"adjustments,omitempty"`

	AttendanceType string `json:"attendance_type,omitempty"`
	Description    string `json:"description,omitempty"`
}

type AdjustmentJSON struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
}

// ToEntry converts the wire form into the typed union.
func (ej EntryJSON) ToEntry() (engine.Entry, error) {
	practiceID := engine.PracticeID(ej.PracticeID)
	if practiceID == "" {
		return nil, fmt.Errorf("practice_id is required")
	}

	var adjustments []engine.Adjustment
	for _, aj := range ej.Adjustments {
		adjustments = append(adjustments, engine.Adjustment{
			Name:   aj.Name,
			Amount: decimal.NewFromFloat(aj.Amount),
		})
	}

	switch engine.EntryKind(ej.EntryType) {
	case engine.KindDailySummary:
		date, ok := engine.ParseDate(ej.Date)
		if !ok {
			return nil, fmt.Errorf("invalid date %q", ej.Date)
		}
		return engine.DailySummary{
			ID: ej.ID, PracticeID: practiceID, Date: date,
			Production:  decimal.NewFromFloat(ej.Production),
			Collection:  decimal.NewFromFloat(ej.Collection),
			Adjustments: adjustments,
		}, nil

	case engine.KindProcedure:
		date, ok := engine.ParseDate(ej.Date)
		if !ok {
			return nil, fmt.Errorf("invalid date %q", ej.Date)
		}
		return engine.Procedure{
			ID: ej.ID, PracticeID: practiceID, Date: date,
			Description: ej.Description,
			Production:  decimal.NewFromFloat(ej.Production),
			Collection:  decimal.NewFromFloat(ej.Collection),
			Adjustments: adjustments,
		}, nil

	case engine.KindPeriodSummary:
		start, okStart := engine.ParseDate(ej.PeriodStart)
		end, okEnd := engine.ParseDate(ej.PeriodEnd)
		if !okStart || !okEnd {
			return nil, fmt.Errorf("invalid period range %q..%q", ej.PeriodStart, ej.PeriodEnd)
		}
		if end.Before(start) {
			return nil, fmt.Errorf("%q..%q: %w", ej.PeriodStart, ej.PeriodEnd, engine.ErrInvalidPeriod)
		}
		return engine.PeriodSummary{
			ID: ej.ID, PracticeID: practiceID, Start: start, End: end,
			Production:  decimal.NewFromFloat(ej.Production),
			Collection:  decimal.NewFromFloat(ej.Collection),
			Adjustments: adjustments,
		}, nil

	case engine.KindAttendance:
		date, ok := engine.ParseDate(ej.Date)
		if !ok {
			return nil, fmt.Errorf("invalid date %q", ej.Date)
		}
		attendance := engine.AttendanceType(ej.AttendanceType)
		switch attendance {
		case "", engine.FullDay, engine.HalfDay:
		default:
			return nil, fmt.Errorf("invalid attendance_type %q", ej.AttendanceType)
		}
		return engine.AttendanceRecord{
			ID: ej.ID, PracticeID: practiceID, Date: date, Attendance: attendance,
		}, nil

	default:
		return nil, fmt.Errorf("unknown entry_type %q", ej.EntryType)
	}
}

// FromEntry converts a typed entry back to the wire form.
func FromEntry(e engine.Entry) EntryJSON {
	ej := EntryJSON{
		ID:         e.EntryID(),
		PracticeID: string(e.ForPractice()),
		EntryType:  string(e.Kind()),
	}

	setFinancials := func(production, collection decimal.Decimal, adjs []engine.Adjustment) {
		ej.Production = toFloat(production)
		ej.Collection = toFloat(collection)
		for _, a := range adjs {
			ej.Adjustments = append(ej.Adjustments, AdjustmentJSON{Name: a.Name, Amount: toFloat(a.Amount)})
		}
	}

	switch v := e.(type) {
	case engine.DailySummary:
		ej.Date = v.Date.String()
		setFinancials(v.Production, v.Collection, v.Adjustments)
	case engine.Procedure:
		ej.Date = v.Date.String()
		ej.Description = v.Description
		setFinancials(v.Production, v.Collection, v.Adjustments)
	case engine.PeriodSummary:
		ej.PeriodStart = v.Start.String()
		ej.PeriodEnd = v.End.String()
		setFinancials(v.Production, v.Collection, v.Adjustments)
	case engine.AttendanceRecord:
		ej.Date = v.Date.String()
		ej.AttendanceType = string(v.Attendance)
	}
	return ej
}

// =============================================================================
// PAYMENT TYPES
// =============================================================================

// PaymentRequest covers all three instruments; status is ignored for
// direct deposits.
type PaymentRequest struct {
	ID         string  `json:"id,omitempty"`
	PracticeID string  `json:"practice_id"`
	Date       string  `json:"date"`
	Amount     float64 `json:"amount"`
	Status     string  `json:"status,omitempty"`
	Reference  string  `json:"reference,omitempty"`
}

// PaymentDTO is the response form of a payment instrument.
type PaymentDTO struct {
	ID         string  `json:"id"`
	PracticeID string  `json:"practice_id"`
	Instrument string  `json:"instrument"`
	Date       string  `json:"date"`
	Amount     float64 `json:"amount"`
	Status     string  `json:"status,omitempty"`
	Reference  string  `json:"reference,omitempty"`
	Confirmed  bool    `json:"confirmed"`
}

// =============================================================================
// BALANCE TYPES
// =============================================================================

// BalanceDTO is one practice's reconciled balance state.
type BalanceDTO struct {
	PracticeID   string `json:"practice_id"`
	PracticeName string `json:"practice_name"`
	Status       string `json:"status"`

	Balance   float64 `json:"balance"`
	IsOverdue bool    `json:"is_overdue"`
	DueDate   *string `json:"due_date,omitempty"`

	EstimatedCurrentPeriodPay float64 `json:"estimated_current_period_pay"`
	TotalHistoricalPay        float64 `json:"total_historical_pay"`
	TotalConfirmedPayments    float64 `json:"total_confirmed_payments"`
	LastCompletedPeriodEnd    *string `json:"last_completed_period_end,omitempty"`
}

func toBalanceDTO(rec engine.BalanceRecord) BalanceDTO {
	dto := BalanceDTO{
		PracticeID:                string(rec.PracticeID),
		PracticeName:              rec.PracticeName,
		Status:                    string(rec.Status),
		Balance:                   toFloat(rec.Balance),
		IsOverdue:                 rec.IsOverdue,
		EstimatedCurrentPeriodPay: toFloat(rec.EstimatedCurrentPeriodPay),
		TotalHistoricalPay:        toFloat(rec.TotalHistoricalPay),
		TotalConfirmedPayments:    toFloat(rec.TotalConfirmedPayments),
	}
	if rec.DisplayDueDate != nil {
		s := rec.DisplayDueDate.String()
		dto.DueDate = &s
	}
	if rec.LastCompletedPeriodEnd != nil {
		s := rec.LastCompletedPeriodEnd.String()
		dto.LastCompletedPeriodEnd = &s
	}
	return dto
}

// PeriodDTO is one pay period in period listings.
type PeriodDTO struct {
	Start   string  `json:"start"`
	End     string  `json:"end"`
	Pay     float64 `json:"pay"`
	Current bool    `json:"current,omitempty"`
}

// =============================================================================
// METRICS TYPES
// =============================================================================

type PracticeMetricsDTO struct {
	PracticeID   string `json:"practice_id"`
	PracticeName string `json:"practice_name"`

	DaysWorked      float64 `json:"days_worked"`
	ProductionTotal float64 `json:"production_total"`
	CollectionTotal float64 `json:"collection_total"`
	CalculatedPay   float64 `json:"calculated_pay"`

	PaymentsReceived   float64 `json:"payments_received"`
	OutstandingBalance float64 `json:"outstanding_balance"`

	AvgPayPerDay    float64 `json:"avg_pay_per_day"`
	CollectionRate  float64 `json:"collection_rate"`
	EffectiveRate   float64 `json:"effective_rate"`
	ProductionShare float64 `json:"production_share"`
}

type ComparisonTotalsDTO struct {
	Production         float64 `json:"production"`
	Collection         float64 `json:"collection"`
	CalculatedPay      float64 `json:"calculated_pay"`
	PaymentsReceived   float64 `json:"payments_received"`
	OutstandingBalance float64 `json:"outstanding_balance"`
	PracticeCount      int     `json:"practice_count"`
}

type RankingsDTO struct {
	ByPay           []string `json:"by_pay"`
	ByDailyRate     []string `json:"by_daily_rate"`
	ByProduction    []string `json:"by_production"`
	ByEffectiveRate []string `json:"by_effective_rate"`
	ByDaysWorked    []string `json:"by_days_worked"`
}

type InsightDTO struct {
	Metric       string  `json:"metric"`
	PracticeID   string  `json:"practice_id,omitempty"`
	PracticeName string  `json:"practice_name,omitempty"`
	Value        float64 `json:"value"`
	Note         string  `json:"note,omitempty"`
}

type ComparisonDTO struct {
	Metrics  []PracticeMetricsDTO `json:"metrics"`
	Totals   ComparisonTotalsDTO  `json:"totals"`
	Rankings RankingsDTO          `json:"rankings"`
	Insights []InsightDTO         `json:"insights"`
}

func toComparisonDTO(result engine.ComparisonResult) ComparisonDTO {
	dto := ComparisonDTO{
		Metrics: make([]PracticeMetricsDTO, len(result.Metrics)),
		Totals: ComparisonTotalsDTO{
			Production:         toFloat(result.Totals.Production),
			Collection:         toFloat(result.Totals.Collection),
			CalculatedPay:      toFloat(result.Totals.CalculatedPay),
			PaymentsReceived:   toFloat(result.Totals.PaymentsReceived),
			OutstandingBalance: toFloat(result.Totals.OutstandingBalance),
			PracticeCount:      result.Totals.PracticeCount,
		},
		Rankings: RankingsDTO{
			ByPay:           idStrings(result.Rankings.ByPay),
			ByDailyRate:     idStrings(result.Rankings.ByDailyRate),
			ByProduction:    idStrings(result.Rankings.ByProduction),
			ByEffectiveRate: idStrings(result.Rankings.ByEffectiveRate),
			ByDaysWorked:    idStrings(result.Rankings.ByDaysWorked),
		},
	}

	for i, m := range result.Metrics {
		dto.Metrics[i] = PracticeMetricsDTO{
			PracticeID:         string(m.PracticeID),
			PracticeName:       m.PracticeName,
			DaysWorked:         toFloat(m.DaysWorked),
			ProductionTotal:    toFloat(m.ProductionTotal),
			CollectionTotal:    toFloat(m.CollectionTotal),
			CalculatedPay:      toFloat(m.CalculatedPay),
			PaymentsReceived:   toFloat(m.PaymentsReceived),
			OutstandingBalance: toFloat(m.OutstandingBalance),
			AvgPayPerDay:       toFloat(m.AvgPayPerDay),
			CollectionRate:     toFloat(m.CollectionRate),
			EffectiveRate:      toFloat(m.EffectiveRate),
			ProductionShare:    toFloat(m.ProductionShare),
		}
	}

	for _, in := range result.Insights {
		dto.Insights = append(dto.Insights, InsightDTO{
			Metric:       in.Metric,
			PracticeID:   string(in.PracticeID),
			PracticeName: in.PracticeName,
			Value:        toFloat(in.Value),
			Note:         in.Note,
		})
	}
	return dto
}

// =============================================================================
// COMMON TYPES
// =============================================================================

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func toFloat(d decimal.Decimal) float64 {
	f, _ := engine.Round2(d).Float64()
	return f
}

func idStrings(ids []engine.PracticeID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = string(id)
	}
	return out
}
