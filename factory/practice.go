/*
Package factory provides JSON to Go practice conversion.

PURPOSE:
  Converts JSON practice definitions into engine.Practice values. This
  enables practice configuration without code changes - an office manager
  can define compensation terms in JSON, and the factory creates the proper
  Go structs with validation and defaults applied.

WHY JSON?
  - Non-developers can modify compensation terms
  - Easy integration with admin UI
  - Version control for practice configs
  - Database storage of practice configs

JSON SCHEMA:
  {
    "id": "lakeside",
    "name": "Lakeside Dental",
    "status": "active",
    "tax_status": "employee",
    "payment_type": "percentage",
    "calculation_base": "production",
    "pay_cycle": "bi-weekly",
    "percentage": 40,
    "base_pay": 700,
    "payment_detail": "15th of following month",
    "deductions": [
      {"name": "lab fees", "type": "percentage", "value": 5, "split": "pre-split"}
    ]
  }

DEFAULTS:
  status           -> active
  tax_status       -> contractor
  calculation_base -> production
  pay_cycle        -> monthly

USAGE:
  f := factory.NewPracticeFactory()
  practice, err := f.ParsePractice(jsonString)

SEE ALSO:
  - engine/types.go: Practice type definition
*/
package factory

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/chairside/practice-engine/engine"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// PracticeJSON is the JSON representation of a practice.
type PracticeJSON struct {
	ID              string          `json:"id,omitempty"`
	Name            string          `json:"name"`
	Status          string          `json:"status,omitempty"`
	TaxStatus       string          `json:"tax_status,omitempty"`
	PaymentType     string          `json:"payment_type"`
	CalculationBase string          `json:"calculation_base,omitempty"`
	PayCycle        string          `json:"pay_cycle,omitempty"`
	Percentage      float64         `json:"percentage,omitempty"`
	BasePay         float64         `json:"base_pay,omitempty"`
	DailyGuarantee  float64         `json:"daily_guarantee,omitempty"`
	PaymentDetail   string          `json:"payment_detail,omitempty"`
	Deductions      []DeductionJSON `json:"deductions,omitempty"`
}

// DeductionJSON represents one deduction line.
type DeductionJSON struct {
	Name  string  `json:"name"`
	Type  string  `json:"type"`            // percentage, fixed
	Value float64 `json:"value"`
	Split string  `json:"split,omitempty"` // pre-split (default), post-split
}

// =============================================================================
// PRACTICE FACTORY
// =============================================================================

// PracticeFactory converts JSON practice configs to engine.Practice.
type PracticeFactory struct{}

// NewPracticeFactory creates a new practice factory.
func NewPracticeFactory() *PracticeFactory {
	return &PracticeFactory{}
}

// ParsePractice parses a JSON string into an engine.Practice.
func (f *PracticeFactory) ParsePractice(jsonStr string) (engine.Practice, error) {
	var pj PracticeJSON
	if err := json.Unmarshal([]byte(jsonStr), &pj); err != nil {
		return engine.Practice{}, fmt.Errorf("failed to parse practice JSON: %w", err)
	}
	return f.FromJSON(pj)
}

// FromJSON converts PracticeJSON to engine.Practice, applying defaults and
// validating the fields the pay calculation depends on.
func (f *PracticeFactory) FromJSON(pj PracticeJSON) (engine.Practice, error) {
	p := engine.Practice{
		ID:              engine.PracticeID(pj.ID),
		Name:            pj.Name,
		Status:          parseStatus(pj.Status),
		TaxStatus:       parseTaxStatus(pj.TaxStatus),
		CalculationBase: parseCalculationBase(pj.CalculationBase),
		PayCycle:        parsePayCycle(pj.PayCycle),
		Percentage:      decimal.NewFromFloat(pj.Percentage),
		BasePay:         decimal.NewFromFloat(pj.BasePay),
		DailyGuarantee:  decimal.NewFromFloat(pj.DailyGuarantee),
		PaymentDetail:   pj.PaymentDetail,
	}

	switch pj.PaymentType {
	case "percentage":
		p.PaymentType = engine.PayByPercentage
	case "dailyRate", "daily_rate":
		p.PaymentType = engine.PayByDailyRate
	default:
		return engine.Practice{}, fmt.Errorf("%w: unknown payment_type %q", engine.ErrInvalidConfig, pj.PaymentType)
	}

	if p.Name == "" {
		return engine.Practice{}, fmt.Errorf("%w: practice name is required", engine.ErrInvalidConfig)
	}
	if p.PaymentType == engine.PayByPercentage {
		if pj.Percentage < 0 || pj.Percentage > 100 {
			return engine.Practice{}, fmt.Errorf("%w: percentage must be 0-100, got %v", engine.ErrInvalidConfig, pj.Percentage)
		}
	}
	if pj.BasePay < 0 || pj.DailyGuarantee < 0 {
		return engine.Practice{}, fmt.Errorf("%w: guarantee amounts cannot be negative", engine.ErrInvalidConfig)
	}

	for _, dj := range pj.Deductions {
		d, err := parseDeduction(dj)
		if err != nil {
			return engine.Practice{}, err
		}
		p.Deductions = append(p.Deductions, d)
	}

	return p, nil
}

// ToJSON converts an engine.Practice back to its JSON form.
func (f *PracticeFactory) ToJSON(p engine.Practice) PracticeJSON {
	pj := PracticeJSON{
		ID:              string(p.ID),
		Name:            p.Name,
		Status:          string(p.Status),
		TaxStatus:       string(p.TaxStatus),
		PaymentType:     string(p.PaymentType),
		CalculationBase: string(p.CalculationBase),
		PayCycle:        string(p.PayCycle),
		PaymentDetail:   p.PaymentDetail,
	}
	pj.Percentage, _ = p.Percentage.Float64()
	pj.BasePay, _ = p.BasePay.Float64()
	pj.DailyGuarantee, _ = p.DailyGuarantee.Float64()

	for _, d := range p.Deductions {
		v, _ := d.Value.Float64()
		pj.Deductions = append(pj.Deductions, DeductionJSON{
			Name:  d.Name,
			Type:  string(d.Type),
			Value: v,
			Split: string(d.Split),
		})
	}
	return pj
}

// =============================================================================
// PARSING HELPERS
// =============================================================================

func parseStatus(s string) engine.PracticeStatus {
	if s == "archived" {
		return engine.PracticeArchived
	}
	return engine.PracticeActive
}

func parseTaxStatus(s string) engine.TaxStatus {
	if s == "employee" {
		return engine.TaxEmployee
	}
	return engine.TaxContractor
}

func parseCalculationBase(s string) engine.CalculationBase {
	if s == "collection" {
		return engine.BaseCollection
	}
	return engine.BaseProduction
}

func parsePayCycle(s string) engine.PayCycle {
	switch s {
	case "bi-weekly", "biweekly":
		return engine.CycleBiWeekly
	case "weekly":
		return engine.CycleWeekly
	default:
		return engine.CycleMonthly
	}
}

func parseDeduction(dj DeductionJSON) (engine.Deduction, error) {
	d := engine.Deduction{
		Name:  dj.Name,
		Value: decimal.NewFromFloat(dj.Value),
	}

	switch dj.Type {
	case "percentage":
		d.Type = engine.DeductPercentage
		if dj.Value < 0 || dj.Value > 100 {
			return d, fmt.Errorf("%w: deduction %q percentage must be 0-100", engine.ErrInvalidConfig, dj.Name)
		}
	case "fixed":
		d.Type = engine.DeductFixed
		if dj.Value < 0 {
			return d, fmt.Errorf("%w: deduction %q amount cannot be negative", engine.ErrInvalidConfig, dj.Name)
		}
	default:
		return d, fmt.Errorf("%w: deduction %q has unknown type %q", engine.ErrInvalidConfig, dj.Name, dj.Type)
	}

	switch dj.Split {
	case "", "pre-split":
		d.Split = engine.SplitPre
	case "post-split":
		d.Split = engine.SplitPost
	default:
		return d, fmt.Errorf("%w: deduction %q has unknown split %q", engine.ErrInvalidConfig, dj.Name, dj.Split)
	}

	return d, nil
}
