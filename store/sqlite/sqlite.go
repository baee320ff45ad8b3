/*
Package sqlite provides a SQLite-backed implementation of store.Store.

PURPOSE:
  Persists practices, production entries, and payment instruments in a single
  SQLite file. In production the same patterns apply to PostgreSQL - only
  minor SQL dialect differences.

KEY TABLES:
  practices: Practice configuration (pay terms, deductions as JSON)
  entries:   Tagged production records (kind column discriminates the union)
  payments:  Payment instruments (instrument column discriminates)

DECIMAL HANDLING:
  All money columns are stored as TEXT and parsed back through
  decimal.NewFromString. Storing money as REAL would reintroduce the float
  drift the engine exists to avoid.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency:
  - Multiple readers don't block
  - Single writer at a time
  - Better crash recovery

USAGE:
  st, err := sqlite.New("./data/practice.db")
  if err != nil {
      log.Fatal(err)
  }
  defer st.Close()

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - store/store.go: Interface definition
  - store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/chairside/practice-engine/engine"
	"github.com/chairside/practice-engine/store"
)

// Store implements store.Store using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

var _ store.Store = (*Store)(nil)

// New opens (or creates) a SQLite store at the given path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Practices (configuration, one row per practice)
	CREATE TABLE IF NOT EXISTS practices (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'active',
		tax_status TEXT NOT NULL DEFAULT 'contractor',
		payment_type TEXT NOT NULL,
		calculation_base TEXT NOT NULL DEFAULT 'production',
		pay_cycle TEXT NOT NULL DEFAULT 'monthly',
		percentage TEXT NOT NULL DEFAULT '0',
		base_pay TEXT NOT NULL DEFAULT '0',
		daily_guarantee TEXT NOT NULL DEFAULT '0',
		payment_detail TEXT,
		deductions_json TEXT
	);

	-- Entries (tagged union: kind column discriminates)
	CREATE TABLE IF NOT EXISTS entries (
		id TEXT PRIMARY KEY,
		practice_id TEXT NOT NULL,
		kind TEXT NOT NULL,
		date TEXT,
		period_start TEXT,
		period_end TEXT,
		production TEXT NOT NULL DEFAULT '0',
		collection TEXT NOT NULL DEFAULT '0',
		adjustments_json TEXT,
		attendance_type TEXT,
		description TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_entries_practice
		ON entries(practice_id);
	CREATE INDEX IF NOT EXISTS idx_entries_practice_date
		ON entries(practice_id, date);

	-- Payment instruments (instrument column discriminates)
	CREATE TABLE IF NOT EXISTS payments (
		id TEXT PRIMARY KEY,
		practice_id TEXT NOT NULL,
		instrument TEXT NOT NULL,
		date TEXT NOT NULL,
		amount TEXT NOT NULL,
		status TEXT,
		reference TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_payments_practice
		ON payments(practice_id);
	CREATE INDEX IF NOT EXISTS idx_payments_instrument
		ON payments(instrument);
	`

	_, err := s.db.Exec(schema)
	return err
}

const (
	instrumentCheque        = "cheque"
	instrumentDirectDeposit = "directDeposit"
	instrumentETransfer     = "eTransfer"
)

// =============================================================================
// PRACTICES
// =============================================================================

func (s *Store) SavePractice(ctx context.Context, p engine.Practice) (engine.Practice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.ID == "" {
		p.ID = engine.PracticeID(store.MintID())
	}

	deductionsJSON, err := json.Marshal(p.Deductions)
	if err != nil {
		return engine.Practice{}, fmt.Errorf("failed to encode deductions: %w", err)
	}

	query := `
		INSERT INTO practices
		(id, name, status, tax_status, payment_type, calculation_base, pay_cycle,
		 percentage, base_pay, daily_guarantee, payment_detail, deductions_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			status = excluded.status,
			tax_status = excluded.tax_status,
			payment_type = excluded.payment_type,
			calculation_base = excluded.calculation_base,
			pay_cycle = excluded.pay_cycle,
			percentage = excluded.percentage,
			base_pay = excluded.base_pay,
			daily_guarantee = excluded.daily_guarantee,
			payment_detail = excluded.payment_detail,
			deductions_json = excluded.deductions_json
	`

	_, err = s.db.ExecContext(ctx, query,
		string(p.ID), p.Name, string(p.Status), string(p.TaxStatus),
		string(p.PaymentType), string(p.CalculationBase), string(p.PayCycle),
		p.Percentage.String(), p.BasePay.String(), p.DailyGuarantee.String(),
		p.PaymentDetail, string(deductionsJSON),
	)
	if err != nil {
		return engine.Practice{}, fmt.Errorf("failed to save practice: %w", err)
	}
	return p, nil
}

func (s *Store) Practice(ctx context.Context, id engine.PracticeID) (engine.Practice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, status, tax_status, payment_type, calculation_base, pay_cycle,
		       percentage, base_pay, daily_guarantee, payment_detail, deductions_json
		FROM practices WHERE id = ?`, string(id))

	p, err := scanPractice(row)
	if err == sql.ErrNoRows {
		return engine.Practice{}, fmt.Errorf("practice %q: %w", id, engine.ErrPracticeNotFound)
	}
	return p, err
}

func (s *Store) Practices(ctx context.Context) ([]engine.Practice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, status, tax_status, payment_type, calculation_base, pay_cycle,
		       percentage, base_pay, daily_guarantee, payment_detail, deductions_json
		FROM practices ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query practices: %w", err)
	}
	defer rows.Close()

	var practices []engine.Practice
	for rows.Next() {
		p, err := scanPractice(rows)
		if err != nil {
			return nil, err
		}
		practices = append(practices, p)
	}
	return practices, rows.Err()
}

func (s *Store) DeletePractice(ctx context.Context, id engine.PracticeID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM practices WHERE id = ?", string(id))
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("practice %q: %w", id, engine.ErrPracticeNotFound)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPractice(row rowScanner) (engine.Practice, error) {
	var (
		p                               engine.Practice
		id, status, taxStatus           string
		paymentType, calcBase, payCycle string
		percentage, basePay, guarantee  string
		paymentDetail, deductionsJSON   sql.NullString
	)

	err := row.Scan(&id, &p.Name, &status, &taxStatus, &paymentType, &calcBase,
		&payCycle, &percentage, &basePay, &guarantee, &paymentDetail, &deductionsJSON)
	if err != nil {
		return p, err
	}

	p.ID = engine.PracticeID(id)
	p.Status = engine.PracticeStatus(status)
	p.TaxStatus = engine.TaxStatus(taxStatus)
	p.PaymentType = engine.PaymentType(paymentType)
	p.CalculationBase = engine.CalculationBase(calcBase)
	p.PayCycle = engine.PayCycle(payCycle)
	p.PaymentDetail = paymentDetail.String
	if p.Percentage, err = decimal.NewFromString(percentage); err != nil {
		return p, fmt.Errorf("practice %s: bad percentage: %w", id, err)
	}
	if p.BasePay, err = decimal.NewFromString(basePay); err != nil {
		return p, fmt.Errorf("practice %s: bad base pay: %w", id, err)
	}
	if p.DailyGuarantee, err = decimal.NewFromString(guarantee); err != nil {
		return p, fmt.Errorf("practice %s: bad daily guarantee: %w", id, err)
	}
	if deductionsJSON.Valid && deductionsJSON.String != "" {
		if err := json.Unmarshal([]byte(deductionsJSON.String), &p.Deductions); err != nil {
			return p, fmt.Errorf("practice %s: bad deductions: %w", id, err)
		}
	}
	return p, nil
}

// =============================================================================
// ENTRIES
// =============================================================================

func (s *Store) SaveEntry(ctx context.Context, e engine.Entry) (engine.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row, err := entryToRow(e)
	if err != nil {
		return nil, err
	}
	if row.id == "" {
		row.id = store.MintID()
	}

	query := `
		INSERT INTO entries
		(id, practice_id, kind, date, period_start, period_end,
		 production, collection, adjustments_json, attendance_type, description)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			practice_id = excluded.practice_id,
			kind = excluded.kind,
			date = excluded.date,
			period_start = excluded.period_start,
			period_end = excluded.period_end,
			production = excluded.production,
			collection = excluded.collection,
			adjustments_json = excluded.adjustments_json,
			attendance_type = excluded.attendance_type,
			description = excluded.description
	`

	_, err = s.db.ExecContext(ctx, query,
		row.id, row.practiceID, row.kind, row.date, row.periodStart, row.periodEnd,
		row.production, row.collection, row.adjustmentsJSON, row.attendanceType, row.description,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to save entry: %w", err)
	}
	return row.toEntry()
}

func (s *Store) Entries(ctx context.Context, practiceID engine.PracticeID) ([]engine.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryEntries(ctx, `
		SELECT id, practice_id, kind, date, period_start, period_end,
		       production, collection, adjustments_json, attendance_type, description
		FROM entries WHERE practice_id = ?
		ORDER BY date, period_start, id`, string(practiceID))
}

func (s *Store) AllEntries(ctx context.Context) ([]engine.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryEntries(ctx, `
		SELECT id, practice_id, kind, date, period_start, period_end,
		       production, collection, adjustments_json, attendance_type, description
		FROM entries
		ORDER BY date, period_start, id`)
}

func (s *Store) DeleteEntry(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM entries WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("entry %q: %w", id, engine.ErrEntryNotFound)
	}
	return nil
}

func (s *Store) queryEntries(ctx context.Context, query string, args ...any) ([]engine.Entry, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries: %w", err)
	}
	defer rows.Close()

	var entries []engine.Entry
	for rows.Next() {
		var row entryRow
		if err := rows.Scan(&row.id, &row.practiceID, &row.kind, &row.date,
			&row.periodStart, &row.periodEnd, &row.production, &row.collection,
			&row.adjustmentsJSON, &row.attendanceType, &row.description); err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		e, err := row.toEntry()
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// entryRow is the flat column form of the Entry union.
type entryRow struct {
	id, practiceID, kind   string
	date                   sql.NullString
	periodStart, periodEnd sql.NullString
	production, collection string
	adjustmentsJSON        sql.NullString
	attendanceType         sql.NullString
	description            sql.NullString
}

func entryToRow(e engine.Entry) (entryRow, error) {
	row := entryRow{
		id:         e.EntryID(),
		practiceID: string(e.ForPractice()),
		kind:       string(e.Kind()),
		production: "0",
		collection: "0",
	}

	setAdjustments := func(adjs []engine.Adjustment) error {
		if len(adjs) == 0 {
			return nil
		}
		b, err := json.Marshal(adjs)
		if err != nil {
			return fmt.Errorf("failed to encode adjustments: %w", err)
		}
		row.adjustmentsJSON = sql.NullString{String: string(b), Valid: true}
		return nil
	}

	switch v := e.(type) {
	case engine.DailySummary:
		row.date = sql.NullString{String: v.Date.String(), Valid: true}
		row.production = v.Production.String()
		row.collection = v.Collection.String()
		return row, setAdjustments(v.Adjustments)
	case engine.Procedure:
		row.date = sql.NullString{String: v.Date.String(), Valid: true}
		row.production = v.Production.String()
		row.collection = v.Collection.String()
		row.description = sql.NullString{String: v.Description, Valid: v.Description != ""}
		return row, setAdjustments(v.Adjustments)
	case engine.PeriodSummary:
		row.periodStart = sql.NullString{String: v.Start.String(), Valid: true}
		row.periodEnd = sql.NullString{String: v.End.String(), Valid: true}
		row.production = v.Production.String()
		row.collection = v.Collection.String()
		return row, setAdjustments(v.Adjustments)
	case engine.AttendanceRecord:
		row.date = sql.NullString{String: v.Date.String(), Valid: true}
		row.attendanceType = sql.NullString{String: string(v.Attendance), Valid: true}
		return row, nil
	default:
		return row, fmt.Errorf("unknown entry kind %T", e)
	}
}

func (r entryRow) toEntry() (engine.Entry, error) {
	production, err := decimal.NewFromString(r.production)
	if err != nil {
		return nil, fmt.Errorf("entry %s: bad production: %w", r.id, err)
	}
	collection, err := decimal.NewFromString(r.collection)
	if err != nil {
		return nil, fmt.Errorf("entry %s: bad collection: %w", r.id, err)
	}

	var adjustments []engine.Adjustment
	if r.adjustmentsJSON.Valid && r.adjustmentsJSON.String != "" {
		if err := json.Unmarshal([]byte(r.adjustmentsJSON.String), &adjustments); err != nil {
			return nil, fmt.Errorf("entry %s: bad adjustments: %w", r.id, err)
		}
	}

	practiceID := engine.PracticeID(r.practiceID)

	switch engine.EntryKind(r.kind) {
	case engine.KindDailySummary:
		date, _ := engine.ParseDate(r.date.String)
		return engine.DailySummary{
			ID: r.id, PracticeID: practiceID, Date: date,
			Production: production, Collection: collection, Adjustments: adjustments,
		}, nil
	case engine.KindProcedure:
		date, _ := engine.ParseDate(r.date.String)
		return engine.Procedure{
			ID: r.id, PracticeID: practiceID, Date: date,
			Production: production, Collection: collection, Adjustments: adjustments,
			Description: r.description.String,
		}, nil
	case engine.KindPeriodSummary:
		start, _ := engine.ParseDate(r.periodStart.String)
		end, _ := engine.ParseDate(r.periodEnd.String)
		return engine.PeriodSummary{
			ID: r.id, PracticeID: practiceID, Start: start, End: end,
			Production: production, Collection: collection, Adjustments: adjustments,
		}, nil
	case engine.KindAttendance:
		date, _ := engine.ParseDate(r.date.String)
		return engine.AttendanceRecord{
			ID: r.id, PracticeID: practiceID, Date: date,
			Attendance: engine.AttendanceType(r.attendanceType.String),
		}, nil
	default:
		return nil, fmt.Errorf("entry %s: unknown kind %q", r.id, r.kind)
	}
}

// =============================================================================
// PAYMENT INSTRUMENTS
// =============================================================================

func (s *Store) SaveCheque(ctx context.Context, c engine.Cheque) (engine.Cheque, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c.ID == "" {
		c.ID = store.MintID()
	}
	err := s.savePayment(ctx, c.ID, string(c.PracticeID), instrumentCheque,
		c.Date.String(), c.Amount.String(), string(c.Status), c.Number)
	return c, err
}

func (s *Store) SaveDirectDeposit(ctx context.Context, d engine.DirectDeposit) (engine.DirectDeposit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if d.ID == "" {
		d.ID = store.MintID()
	}
	err := s.savePayment(ctx, d.ID, string(d.PracticeID), instrumentDirectDeposit,
		d.Date.String(), d.Amount.String(), "", d.Reference)
	return d, err
}

func (s *Store) SaveETransfer(ctx context.Context, t engine.ETransfer) (engine.ETransfer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t.ID == "" {
		t.ID = store.MintID()
	}
	err := s.savePayment(ctx, t.ID, string(t.PracticeID), instrumentETransfer,
		t.Date.String(), t.Amount.String(), string(t.Status), t.Reference)
	return t, err
}

func (s *Store) savePayment(ctx context.Context, id, practiceID, instrument, date, amount, status, reference string) error {
	query := `
		INSERT INTO payments (id, practice_id, instrument, date, amount, status, reference)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			practice_id = excluded.practice_id,
			instrument = excluded.instrument,
			date = excluded.date,
			amount = excluded.amount,
			status = excluded.status,
			reference = excluded.reference
	`
	_, err := s.db.ExecContext(ctx, query, id, practiceID, instrument, date,
		amount, nullString(status), nullString(reference))
	if err != nil {
		return fmt.Errorf("failed to save payment: %w", err)
	}
	return nil
}

func (s *Store) Cheques(ctx context.Context) ([]engine.Cheque, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var cheques []engine.Cheque
	err := s.queryPayments(ctx, instrumentCheque, func(id, practiceID, date string, amount decimal.Decimal, status, reference string) {
		d, _ := engine.ParseDate(date)
		cheques = append(cheques, engine.Cheque{
			ID: id, PracticeID: engine.PracticeID(practiceID), Date: d,
			Amount: amount, Status: engine.ChequeStatus(status), Number: reference,
		})
	})
	return cheques, err
}

func (s *Store) DirectDeposits(ctx context.Context) ([]engine.DirectDeposit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var deposits []engine.DirectDeposit
	err := s.queryPayments(ctx, instrumentDirectDeposit, func(id, practiceID, date string, amount decimal.Decimal, status, reference string) {
		d, _ := engine.ParseDate(date)
		deposits = append(deposits, engine.DirectDeposit{
			ID: id, PracticeID: engine.PracticeID(practiceID), Date: d,
			Amount: amount, Reference: reference,
		})
	})
	return deposits, err
}

func (s *Store) ETransfers(ctx context.Context) ([]engine.ETransfer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var transfers []engine.ETransfer
	err := s.queryPayments(ctx, instrumentETransfer, func(id, practiceID, date string, amount decimal.Decimal, status, reference string) {
		d, _ := engine.ParseDate(date)
		transfers = append(transfers, engine.ETransfer{
			ID: id, PracticeID: engine.PracticeID(practiceID), Date: d,
			Amount: amount, Status: engine.ETransferStatus(status), Reference: reference,
		})
	})
	return transfers, err
}

func (s *Store) DeletePayment(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM payments WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("payment %q: %w", id, engine.ErrPaymentNotFound)
	}
	return nil
}

func (s *Store) queryPayments(ctx context.Context, instrument string, emit func(id, practiceID, date string, amount decimal.Decimal, status, reference string)) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, practice_id, date, amount, status, reference
		FROM payments WHERE instrument = ?
		ORDER BY date, id`, instrument)
	if err != nil {
		return fmt.Errorf("failed to query payments: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id, practiceID, date, amount string
			status, reference            sql.NullString
		)
		if err := rows.Scan(&id, &practiceID, &date, &amount, &status, &reference); err != nil {
			return fmt.Errorf("failed to scan payment: %w", err)
		}
		amt, err := decimal.NewFromString(amount)
		if err != nil {
			return fmt.Errorf("payment %s: bad amount: %w", id, err)
		}
		emit(id, practiceID, date, amt, status.String, reference.String)
	}
	return rows.Err()
}

// =============================================================================
// UTILITIES
// =============================================================================

// Reset clears all data (for testing/demo).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, table := range []string{"payments", "entries", "practices"} {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
