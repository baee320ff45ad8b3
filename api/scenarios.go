/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built scenarios that populate the store with realistic
	data for testing and demos. Each scenario creates practices, entries,
	and payment instruments that demonstrate a specific balance state.

AVAILABLE SCENARIOS:

	percentage-practice: Percentage-paid contractor, partially paid
	guarantee-floor:     Daily-rate practice where the guarantee wins
	w2-employee:         Employee with a withholding-sized shortfall
	multi-practice:      Three practices for the comparison dashboard

HOW SCENARIOS WORK:
 1. Reset the store (clear all data)
 2. Create practices via the factory
 3. Record entries across the preceding months
 4. Record payment instruments in various confirmation states

DATE ANCHORING:

	All scenario dates are computed relative to the handler clock, so a
	loaded scenario always shows live-looking balances regardless of when
	it is loaded.

NOTE:

	Scenarios reset the store. Only use in development/demo environments.

SEE ALSO:
  - handlers.go: Shared handler context
  - factory/practice.go: Practice JSON definitions
*/
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/chairside/practice-engine/engine"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

// ScenarioDTO describes one loadable demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

var scenarios = []ScenarioDTO{
	{
		ID:          "percentage-practice",
		Name:        "Percentage Practice",
		Description: "40% of production, cleared and pending cheques, partial balance owed",
	},
	{
		ID:          "guarantee-floor",
		Name:        "Guarantee Floor",
		Description: "Daily-rate practice on a slow month where the per-day guarantee wins",
	},
	{
		ID:          "w2-employee",
		Name:        "W2 Employee",
		Description: "Employee whose shortfall sits inside the withholding share",
	},
	{
		ID:          "multi-practice",
		Name:        "Multi-Practice Dashboard",
		Description: "Three practices in different balance states for the comparison view",
	},
}

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// GetCurrentScenario returns the currently loaded scenario, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	if h.currentScenario == "" {
		writeJSON(w, http.StatusOK, nil)
		return
	}
	for _, s := range scenarios {
		if s.ID == h.currentScenario {
			writeJSON(w, http.StatusOK, s)
			return
		}
	}
	writeJSON(w, http.StatusOK, ScenarioDTO{ID: h.currentScenario, Name: h.currentScenario})
}

// LoadScenario loads a predefined scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ScenarioID string `json:"scenario_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	ctx := r.Context()
	if err := h.Store.Reset(ctx); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset store", err)
		return
	}
	h.currentScenario = ""

	var err error
	switch req.ScenarioID {
	case "percentage-practice":
		err = h.loadPercentageScenario(ctx)
	case "guarantee-floor":
		err = h.loadGuaranteeFloorScenario(ctx)
	case "w2-employee":
		err = h.loadW2Scenario(ctx)
	case "multi-practice":
		err = h.loadMultiPracticeScenario(ctx)
	default:
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Unknown scenario %q", req.ScenarioID), nil)
		return
	}

	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load scenario", err)
		return
	}

	h.currentScenario = req.ScenarioID
	writeJSON(w, http.StatusOK, map[string]string{"status": "loaded", "scenario": req.ScenarioID})
}

// ResetData clears all data.
func (h *Handler) ResetData(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Reset(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset store", err)
		return
	}
	h.currentScenario = ""
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// SCENARIO LOADERS
// =============================================================================

// monthsAgo returns the first day of the month n months before the clock.
func (h *Handler) monthsAgo(n int) engine.Date {
	return engine.StartOfMonth(h.Now().AddMonths(-n))
}

func (h *Handler) loadPercentageScenario(ctx context.Context) error {
	p := engine.Practice{
		ID:              "lakeside",
		Name:            "Lakeside Dental",
		Status:          engine.PracticeActive,
		TaxStatus:       engine.TaxContractor,
		PaymentType:     engine.PayByPercentage,
		CalculationBase: engine.BaseProduction,
		PayCycle:        engine.CycleMonthly,
		Percentage:      decimal.NewFromInt(40),
		PaymentDetail:   "15th of following month",
	}
	if _, err := h.Store.SavePractice(ctx, p); err != nil {
		return err
	}

	// Two completed months of work plus some current-month activity.
	for month := 2; month >= 0; month-- {
		anchor := h.monthsAgo(month)
		for _, day := range []int{3, 10, 17} {
			date := anchor.AddDays(day)
			if month == 0 && date.After(h.Now()) {
				continue
			}
			_, err := h.Store.SaveEntry(ctx, engine.DailySummary{
				PracticeID: p.ID,
				Date:       date,
				Production: decimal.NewFromInt(3500),
				Collection: decimal.NewFromInt(3100),
			})
			if err != nil {
				return err
			}
		}
	}

	// One month fully paid by a cleared cheque, one still pending.
	if _, err := h.Store.SaveCheque(ctx, engine.Cheque{
		PracticeID: p.ID, Date: h.monthsAgo(1).AddDays(14),
		Amount: decimal.NewFromInt(4200), Status: engine.ChequeCleared, Number: "1107",
	}); err != nil {
		return err
	}
	_, err := h.Store.SaveCheque(ctx, engine.Cheque{
		PracticeID: p.ID, Date: h.monthsAgo(0).AddDays(2),
		Amount: decimal.NewFromInt(4200), Status: engine.ChequePending, Number: "1108",
	})
	return err
}

func (h *Handler) loadGuaranteeFloorScenario(ctx context.Context) error {
	p := engine.Practice{
		ID:          "northgate",
		Name:        "Northgate Family Dental",
		Status:      engine.PracticeActive,
		TaxStatus:   engine.TaxContractor,
		PaymentType: engine.PayByDailyRate,
		PayCycle:    engine.CycleMonthly,
		BasePay:     decimal.NewFromInt(700),
	}
	if _, err := h.Store.SavePractice(ctx, p); err != nil {
		return err
	}

	// A slow completed month: attendance but little production, so the
	// per-day guarantee carries the pay.
	anchor := h.monthsAgo(1)
	for _, day := range []int{1, 2, 8, 9, 15} {
		if _, err := h.Store.SaveEntry(ctx, engine.AttendanceRecord{
			PracticeID: p.ID, Date: anchor.AddDays(day),
		}); err != nil {
			return err
		}
	}
	if _, err := h.Store.SaveEntry(ctx, engine.AttendanceRecord{
		PracticeID: p.ID, Date: anchor.AddDays(16), Attendance: engine.HalfDay,
	}); err != nil {
		return err
	}

	_, err := h.Store.SaveETransfer(ctx, engine.ETransfer{
		PracticeID: p.ID, Date: anchor.AddDays(20),
		Amount: decimal.NewFromInt(2000), Status: engine.ETransferAccepted,
	})
	return err
}

func (h *Handler) loadW2Scenario(ctx context.Context) error {
	p := engine.Practice{
		ID:              "riverbend",
		Name:            "Riverbend Orthodontics",
		Status:          engine.PracticeActive,
		TaxStatus:       engine.TaxEmployee,
		PaymentType:     engine.PayByPercentage,
		CalculationBase: engine.BaseProduction,
		PayCycle:        engine.CycleMonthly,
		Percentage:      decimal.NewFromInt(40),
	}
	if _, err := h.Store.SavePractice(ctx, p); err != nil {
		return err
	}

	// 25000 production -> 10000 pay; 8000 deposited. The 2000 shortfall is
	// 20% of pay, inside the withholding share for an employee.
	if _, err := h.Store.SaveEntry(ctx, engine.PeriodSummary{
		PracticeID: p.ID,
		Start:      h.monthsAgo(1),
		End:        engine.EndOfMonth(h.monthsAgo(1)),
		Production: decimal.NewFromInt(25000),
		Collection: decimal.NewFromInt(23000),
	}); err != nil {
		return err
	}

	_, err := h.Store.SaveDirectDeposit(ctx, engine.DirectDeposit{
		PracticeID: p.ID, Date: h.monthsAgo(0).AddDays(1),
		Amount: decimal.NewFromInt(8000), Reference: "PAYROLL",
	})
	return err
}

func (h *Handler) loadMultiPracticeScenario(ctx context.Context) error {
	if err := h.loadPercentageScenario(ctx); err != nil {
		return err
	}
	if err := h.loadGuaranteeFloorScenario(ctx); err != nil {
		return err
	}
	return h.loadW2Scenario(ctx)
}
