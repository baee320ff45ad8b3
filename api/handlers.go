/*
handlers.go - HTTP API handlers for the practice income tracker

PURPOSE:
  Exposes the reconciliation engine via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Practices:
    GET    /api/practices                 List all practices
    POST   /api/practices                 Create practice from JSON config
    GET    /api/practices/{id}            Get practice details
    PUT    /api/practices/{id}            Update practice config
    DELETE /api/practices/{id}            Delete practice
    GET    /api/practices/{id}/entries    Entry history
    GET    /api/practices/{id}/periods    Historical periods with per-period pay
    GET    /api/practices/{id}/balance    Reconciled balance state

  Entries:
    POST   /api/entries                   Record an entry
    DELETE /api/entries/{id}              Remove an entry

  Payments:
    GET    /api/payments                  List all payment instruments
    POST   /api/payments/cheques          Record a cheque
    POST   /api/payments/deposits         Record a direct deposit
    POST   /api/payments/etransfers       Record an e-transfer
    DELETE /api/payments/{id}             Remove a payment instrument

  Dashboard:
    GET    /api/balances                  Reconcile all practices (sorted)
    GET    /api/metrics/compare           Cross-practice comparison

  Scenarios:
    GET    /api/scenarios                 List demo scenarios
    GET    /api/scenarios/current         Currently loaded scenario
    POST   /api/scenarios/load            Load a demo scenario
    POST   /api/scenarios/reset           Clear all data

TIME HANDLING:
  Reconciliation depends on "today". Every read endpoint accepts an optional
  as_of=YYYY-MM-DD query parameter; absent, the server clock is used. The
  Handler's clock is injectable so tests stay deterministic.

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Resource not found
  - 500: Internal errors

SECURITY NOTE:
  Currently NO authentication or authorization. All endpoints are public.

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo scenario loaders
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/chairside/practice-engine/engine"
	"github.com/chairside/practice-engine/factory"
	"github.com/chairside/practice-engine/store"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store   store.Store
	Factory *factory.PracticeFactory

	// Now supplies "today" when no as_of parameter is given.
	Now func() engine.Date

	currentScenario string
}

// NewHandler creates a new handler with the given store.
func NewHandler(st store.Store) *Handler {
	return &Handler{
		Store:   st,
		Factory: factory.NewPracticeFactory(),
		Now:     func() engine.Date { return engine.DateOf(time.Now().UTC()) },
	}
}

// asOf resolves the reference date for a request.
func (h *Handler) asOf(r *http.Request) (engine.Date, bool) {
	raw := r.URL.Query().Get("as_of")
	if raw == "" {
		return h.Now(), true
	}
	return engine.ParseDate(raw)
}

// =============================================================================
// PRACTICE HANDLERS
// =============================================================================

// ListPractices returns all practices.
func (h *Handler) ListPractices(w http.ResponseWriter, r *http.Request) {
	practices, err := h.Store.Practices(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list practices", err)
		return
	}

	dtos := make([]PracticeDTO, len(practices))
	for i, p := range practices {
		dtos[i] = toPracticeDTO(p)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetPractice returns a single practice.
func (h *Handler) GetPractice(w http.ResponseWriter, r *http.Request) {
	id := engine.PracticeID(chi.URLParam(r, "id"))

	p, err := h.Store.Practice(r.Context(), id)
	if engine.IsNotFound(err) {
		writeError(w, http.StatusNotFound, "Practice not found", nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get practice", err)
		return
	}
	writeJSON(w, http.StatusOK, toPracticeDTO(p))
}

// CreatePractice creates a practice from its JSON config.
func (h *Handler) CreatePractice(w http.ResponseWriter, r *http.Request) {
	var pj factory.PracticeJSON
	if err := json.NewDecoder(r.Body).Decode(&pj); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	p, err := h.Factory.FromJSON(pj)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid practice config", err)
		return
	}

	saved, err := h.Store.SavePractice(r.Context(), p)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save practice", err)
		return
	}
	writeJSON(w, http.StatusCreated, toPracticeDTO(saved))
}

// UpdatePractice replaces a practice's config.
func (h *Handler) UpdatePractice(w http.ResponseWriter, r *http.Request) {
	id := engine.PracticeID(chi.URLParam(r, "id"))

	if _, err := h.Store.Practice(r.Context(), id); engine.IsNotFound(err) {
		writeError(w, http.StatusNotFound, "Practice not found", nil)
		return
	} else if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get practice", err)
		return
	}

	var pj factory.PracticeJSON
	if err := json.NewDecoder(r.Body).Decode(&pj); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	pj.ID = string(id) // path wins over body

	p, err := h.Factory.FromJSON(pj)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid practice config", err)
		return
	}

	saved, err := h.Store.SavePractice(r.Context(), p)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save practice", err)
		return
	}
	writeJSON(w, http.StatusOK, toPracticeDTO(saved))
}

// DeletePractice removes a practice.
func (h *Handler) DeletePractice(w http.ResponseWriter, r *http.Request) {
	id := engine.PracticeID(chi.URLParam(r, "id"))

	err := h.Store.DeletePractice(r.Context(), id)
	if engine.IsNotFound(err) {
		writeError(w, http.StatusNotFound, "Practice not found", nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete practice", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// =============================================================================
// ENTRY HANDLERS
// =============================================================================

// ListEntries returns all entries for a practice.
func (h *Handler) ListEntries(w http.ResponseWriter, r *http.Request) {
	id := engine.PracticeID(chi.URLParam(r, "id"))

	entries, err := h.Store.Entries(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list entries", err)
		return
	}

	dtos := make([]EntryJSON, len(entries))
	for i, e := range entries {
		dtos[i] = FromEntry(e)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateEntry records a new entry.
func (h *Handler) CreateEntry(w http.ResponseWriter, r *http.Request) {
	var ej EntryJSON
	if err := json.NewDecoder(r.Body).Decode(&ej); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	entry, err := ej.ToEntry()
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid entry", err)
		return
	}

	saved, err := h.Store.SaveEntry(r.Context(), entry)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save entry", err)
		return
	}
	writeJSON(w, http.StatusCreated, FromEntry(saved))
}

// DeleteEntry removes an entry.
func (h *Handler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	err := h.Store.DeleteEntry(r.Context(), chi.URLParam(r, "id"))
	if engine.IsNotFound(err) {
		writeError(w, http.StatusNotFound, "Entry not found", nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete entry", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// =============================================================================
// PAYMENT HANDLERS
// =============================================================================

// CreateCheque records a cheque.
func (h *Handler) CreateCheque(w http.ResponseWriter, r *http.Request) {
	req, date, ok := h.decodePayment(w, r)
	if !ok {
		return
	}

	status := engine.ChequeStatus(req.Status)
	switch status {
	case "":
		status = engine.ChequePending
	case engine.ChequePending, engine.ChequeCleared, engine.ChequeBounced:
	default:
		writeError(w, http.StatusBadRequest, "Invalid cheque status", nil)
		return
	}

	saved, err := h.Store.SaveCheque(r.Context(), engine.Cheque{
		ID:         req.ID,
		PracticeID: engine.PracticeID(req.PracticeID),
		Date:       date,
		Amount:     decimal.NewFromFloat(req.Amount),
		Status:     status,
		Number:     req.Reference,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save cheque", err)
		return
	}
	writeJSON(w, http.StatusCreated, chequeDTO(saved))
}

// CreateDirectDeposit records a direct deposit.
func (h *Handler) CreateDirectDeposit(w http.ResponseWriter, r *http.Request) {
	req, date, ok := h.decodePayment(w, r)
	if !ok {
		return
	}

	saved, err := h.Store.SaveDirectDeposit(r.Context(), engine.DirectDeposit{
		ID:         req.ID,
		PracticeID: engine.PracticeID(req.PracticeID),
		Date:       date,
		Amount:     decimal.NewFromFloat(req.Amount),
		Reference:  req.Reference,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save deposit", err)
		return
	}
	writeJSON(w, http.StatusCreated, depositDTO(saved))
}

// CreateETransfer records an e-transfer.
func (h *Handler) CreateETransfer(w http.ResponseWriter, r *http.Request) {
	req, date, ok := h.decodePayment(w, r)
	if !ok {
		return
	}

	status := engine.ETransferStatus(req.Status)
	switch status {
	case "":
		status = engine.ETransferSent
	case engine.ETransferSent, engine.ETransferAccepted, engine.ETransferDeclined:
	default:
		writeError(w, http.StatusBadRequest, "Invalid e-transfer status", nil)
		return
	}

	saved, err := h.Store.SaveETransfer(r.Context(), engine.ETransfer{
		ID:         req.ID,
		PracticeID: engine.PracticeID(req.PracticeID),
		Date:       date,
		Amount:     decimal.NewFromFloat(req.Amount),
		Status:     status,
		Reference:  req.Reference,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save e-transfer", err)
		return
	}
	writeJSON(w, http.StatusCreated, etransferDTO(saved))
}

// ListPayments returns all instruments, flattened.
func (h *Handler) ListPayments(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	cheques, err := h.Store.Cheques(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list payments", err)
		return
	}
	deposits, err := h.Store.DirectDeposits(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list payments", err)
		return
	}
	transfers, err := h.Store.ETransfers(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list payments", err)
		return
	}

	dtos := make([]PaymentDTO, 0, len(cheques)+len(deposits)+len(transfers))
	for _, c := range cheques {
		dtos = append(dtos, chequeDTO(c))
	}
	for _, d := range deposits {
		dtos = append(dtos, depositDTO(d))
	}
	for _, t := range transfers {
		dtos = append(dtos, etransferDTO(t))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// DeletePayment removes a payment instrument of any kind.
func (h *Handler) DeletePayment(w http.ResponseWriter, r *http.Request) {
	err := h.Store.DeletePayment(r.Context(), chi.URLParam(r, "id"))
	if engine.IsNotFound(err) {
		writeError(w, http.StatusNotFound, "Payment not found", nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete payment", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *Handler) decodePayment(w http.ResponseWriter, r *http.Request) (PaymentRequest, engine.Date, bool) {
	var req PaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return req, engine.Date{}, false
	}
	if req.PracticeID == "" {
		writeError(w, http.StatusBadRequest, "practice_id is required", nil)
		return req, engine.Date{}, false
	}
	if req.Amount <= 0 {
		writeError(w, http.StatusBadRequest, "amount must be positive", nil)
		return req, engine.Date{}, false
	}
	date, ok := engine.ParseDate(req.Date)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", nil)
		return req, engine.Date{}, false
	}
	return req, date, true
}

func chequeDTO(c engine.Cheque) PaymentDTO {
	return PaymentDTO{
		ID: c.ID, PracticeID: string(c.PracticeID), Instrument: "cheque",
		Date: c.Date.String(), Amount: toFloat(c.Amount),
		Status: string(c.Status), Reference: c.Number, Confirmed: c.Confirmed(),
	}
}

func depositDTO(d engine.DirectDeposit) PaymentDTO {
	return PaymentDTO{
		ID: d.ID, PracticeID: string(d.PracticeID), Instrument: "directDeposit",
		Date: d.Date.String(), Amount: toFloat(d.Amount),
		Reference: d.Reference, Confirmed: d.Confirmed(),
	}
}

func etransferDTO(t engine.ETransfer) PaymentDTO {
	return PaymentDTO{
		ID: t.ID, PracticeID: string(t.PracticeID), Instrument: "eTransfer",
		Date: t.Date.String(), Amount: toFloat(t.Amount),
		Status: string(t.Status), Reference: t.Reference, Confirmed: t.Confirmed(),
	}
}

// =============================================================================
// BALANCE HANDLERS
// =============================================================================

// ListBalances reconciles every practice and returns the sorted dashboard.
func (h *Handler) ListBalances(w http.ResponseWriter, r *http.Request) {
	today, ok := h.asOf(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid as_of date (use YYYY-MM-DD)", nil)
		return
	}

	in, ok := h.loadReconcileInputs(w, r)
	if !ok {
		return
	}

	records := engine.ReconcileAll(in.practices, in.entries, in.cheques, in.deposits, in.transfers, today)
	dtos := make([]BalanceDTO, len(records))
	for i, rec := range records {
		dtos[i] = toBalanceDTO(rec)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetBalance reconciles a single practice.
func (h *Handler) GetBalance(w http.ResponseWriter, r *http.Request) {
	id := engine.PracticeID(chi.URLParam(r, "id"))

	today, ok := h.asOf(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid as_of date (use YYYY-MM-DD)", nil)
		return
	}

	p, err := h.Store.Practice(r.Context(), id)
	if engine.IsNotFound(err) {
		writeError(w, http.StatusNotFound, "Practice not found", nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get practice", err)
		return
	}

	in, ok := h.loadReconcileInputs(w, r)
	if !ok {
		return
	}

	rec := engine.Reconcile(&p, in.entries, in.cheques, in.deposits, in.transfers, today)
	writeJSON(w, http.StatusOK, toBalanceDTO(rec))
}

// ListPeriods returns a practice's completed pay periods with per-period pay,
// plus the in-progress current period.
func (h *Handler) ListPeriods(w http.ResponseWriter, r *http.Request) {
	id := engine.PracticeID(chi.URLParam(r, "id"))

	today, ok := h.asOf(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid as_of date (use YYYY-MM-DD)", nil)
		return
	}

	p, err := h.Store.Practice(r.Context(), id)
	if engine.IsNotFound(err) {
		writeError(w, http.StatusNotFound, "Practice not found", nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get practice", err)
		return
	}

	entries, err := h.Store.Entries(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list entries", err)
		return
	}

	var dtos []PeriodDTO
	for _, period := range engine.HistoricalPeriods(p.PayCycle, entries, today) {
		var inPeriod []engine.Entry
		for _, e := range entries {
			if engine.InPeriod(e, period) {
				inPeriod = append(inPeriod, e)
			}
		}
		pay := engine.ComputePeriodPay(&p, inPeriod)
		dtos = append(dtos, PeriodDTO{
			Start: period.Start.String(),
			End:   period.End.String(),
			Pay:   toFloat(pay.CalculatedPay),
		})
	}

	current := engine.CurrentPeriod(p.PayCycle, today)
	dtos = append(dtos, PeriodDTO{
		Start:   current.Start.String(),
		End:     current.End.String(),
		Current: true,
	})

	writeJSON(w, http.StatusOK, dtos)
}

type reconcileInputs struct {
	practices []engine.Practice
	entries   []engine.Entry
	cheques   []engine.Cheque
	deposits  []engine.DirectDeposit
	transfers []engine.ETransfer
}

func (h *Handler) loadReconcileInputs(w http.ResponseWriter, r *http.Request) (reconcileInputs, bool) {
	ctx := r.Context()
	var in reconcileInputs
	var err error

	if in.practices, err = h.Store.Practices(ctx); err == nil {
		if in.entries, err = h.Store.AllEntries(ctx); err == nil {
			if in.cheques, err = h.Store.Cheques(ctx); err == nil {
				if in.deposits, err = h.Store.DirectDeposits(ctx); err == nil {
					in.transfers, err = h.Store.ETransfers(ctx)
				}
			}
		}
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load reconciliation inputs", err)
		return in, false
	}
	return in, true
}

// =============================================================================
// METRICS HANDLERS
// =============================================================================

// CompareMetrics builds the cross-practice comparison.
// Query parameters: start, end (YYYY-MM-DD), practice_ids (comma separated),
// active_only (true/false).
func (h *Handler) CompareMetrics(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts := engine.CompareOptions{
		ActiveOnly: q.Get("active_only") == "true",
	}

	if raw := q.Get("start"); raw != "" {
		d, ok := engine.ParseDate(raw)
		if !ok {
			writeError(w, http.StatusBadRequest, "Invalid start date (use YYYY-MM-DD)", nil)
			return
		}
		opts.StartDate = &d
	}
	if raw := q.Get("end"); raw != "" {
		d, ok := engine.ParseDate(raw)
		if !ok {
			writeError(w, http.StatusBadRequest, "Invalid end date (use YYYY-MM-DD)", nil)
			return
		}
		opts.EndDate = &d
	}
	if raw := q.Get("practice_ids"); raw != "" {
		for _, id := range strings.Split(raw, ",") {
			if id = strings.TrimSpace(id); id != "" {
				opts.PracticeIDs = append(opts.PracticeIDs, engine.PracticeID(id))
			}
		}
	}

	in, ok := h.loadReconcileInputs(w, r)
	if !ok {
		return
	}

	result := engine.CompareMetrics(in.practices, in.entries, confirmedPayments(in), opts)
	writeJSON(w, http.StatusOK, toComparisonDTO(result))
}

// confirmedPayments flattens the confirmed instruments into the generic
// payment records metrics comparison consumes.
func confirmedPayments(in reconcileInputs) []engine.Payment {
	var payments []engine.Payment
	for _, c := range in.cheques {
		if c.Confirmed() {
			payments = append(payments, engine.Payment{ID: c.ID, PracticeID: c.PracticeID, Date: c.Date, Amount: c.Amount})
		}
	}
	for _, d := range in.deposits {
		payments = append(payments, engine.Payment{ID: d.ID, PracticeID: d.PracticeID, Date: d.Date, Amount: d.Amount})
	}
	for _, t := range in.transfers {
		if t.Confirmed() {
			payments = append(payments, engine.Payment{ID: t.ID, PracticeID: t.PracticeID, Date: t.Date, Amount: t.Amount})
		}
	}
	return payments
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
