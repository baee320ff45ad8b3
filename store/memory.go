package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/chairside/practice-engine/engine"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu        sync.RWMutex
	practices map[engine.PracticeID]engine.Practice
	entries   map[string]engine.Entry
	cheques   map[string]engine.Cheque
	deposits  map[string]engine.DirectDeposit
	transfers map[string]engine.ETransfer
}

func NewMemory() *Memory {
	return &Memory{
		practices: make(map[engine.PracticeID]engine.Practice),
		entries:   make(map[string]engine.Entry),
		cheques:   make(map[string]engine.Cheque),
		deposits:  make(map[string]engine.DirectDeposit),
		transfers: make(map[string]engine.ETransfer),
	}
}

var _ Store = (*Memory)(nil)

// Reset clears all data.
func (m *Memory) Reset(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.practices = make(map[engine.PracticeID]engine.Practice)
	m.entries = make(map[string]engine.Entry)
	m.cheques = make(map[string]engine.Cheque)
	m.deposits = make(map[string]engine.DirectDeposit)
	m.transfers = make(map[string]engine.ETransfer)
	return nil
}

// -----------------------------------------------------------------------------
// Practices
// -----------------------------------------------------------------------------

func (m *Memory) SavePractice(_ context.Context, p engine.Practice) (engine.Practice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p.ID == "" {
		p.ID = engine.PracticeID(ensureID(""))
	}
	m.practices[p.ID] = p
	return p, nil
}

func (m *Memory) Practice(_ context.Context, id engine.PracticeID) (engine.Practice, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.practices[id]
	if !ok {
		return engine.Practice{}, fmt.Errorf("practice %q: %w", id, engine.ErrPracticeNotFound)
	}
	return p, nil
}

func (m *Memory) Practices(_ context.Context) ([]engine.Practice, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]engine.Practice, 0, len(m.practices))
	for _, p := range m.practices {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) DeletePractice(_ context.Context, id engine.PracticeID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.practices[id]; !ok {
		return fmt.Errorf("practice %q: %w", id, engine.ErrPracticeNotFound)
	}
	delete(m.practices, id)
	return nil
}

// -----------------------------------------------------------------------------
// Entries
// -----------------------------------------------------------------------------

func (m *Memory) SaveEntry(_ context.Context, e engine.Entry) (engine.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e = withEntryID(e, ensureID(e.EntryID()))
	m.entries[e.EntryID()] = e
	return e, nil
}

func (m *Memory) Entries(ctx context.Context, practiceID engine.PracticeID) ([]engine.Entry, error) {
	all, err := m.AllEntries(ctx)
	if err != nil {
		return nil, err
	}
	out := all[:0:0]
	for _, e := range all {
		if e.ForPractice() == practiceID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *Memory) AllEntries(_ context.Context) ([]engine.Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]engine.Entry, 0, len(m.entries))
	for _, e := range m.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EntryID() < out[j].EntryID() })
	return out, nil
}

func (m *Memory) DeleteEntry(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.entries[id]; !ok {
		return fmt.Errorf("entry %q: %w", id, engine.ErrEntryNotFound)
	}
	delete(m.entries, id)
	return nil
}

// withEntryID returns a copy of the entry with the given ID assigned.
func withEntryID(e engine.Entry, id string) engine.Entry {
	switch v := e.(type) {
	case engine.DailySummary:
		v.ID = id
		return v
	case engine.Procedure:
		v.ID = id
		return v
	case engine.PeriodSummary:
		v.ID = id
		return v
	case engine.AttendanceRecord:
		v.ID = id
		return v
	default:
		return e
	}
}

// -----------------------------------------------------------------------------
// Payment instruments
// -----------------------------------------------------------------------------

func (m *Memory) SaveCheque(_ context.Context, c engine.Cheque) (engine.Cheque, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c.ID = ensureID(c.ID)
	m.cheques[c.ID] = c
	return c, nil
}

func (m *Memory) SaveDirectDeposit(_ context.Context, d engine.DirectDeposit) (engine.DirectDeposit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d.ID = ensureID(d.ID)
	m.deposits[d.ID] = d
	return d, nil
}

func (m *Memory) SaveETransfer(_ context.Context, t engine.ETransfer) (engine.ETransfer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t.ID = ensureID(t.ID)
	m.transfers[t.ID] = t
	return t, nil
}

// DeletePayment removes a payment instrument of any kind by ID.
func (m *Memory) DeletePayment(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.cheques[id]; ok {
		delete(m.cheques, id)
		return nil
	}
	if _, ok := m.deposits[id]; ok {
		delete(m.deposits, id)
		return nil
	}
	if _, ok := m.transfers[id]; ok {
		delete(m.transfers, id)
		return nil
	}
	return fmt.Errorf("payment %q: %w", id, engine.ErrPaymentNotFound)
}

func (m *Memory) Cheques(_ context.Context) ([]engine.Cheque, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]engine.Cheque, 0, len(m.cheques))
	for _, c := range m.cheques {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) DirectDeposits(_ context.Context) ([]engine.DirectDeposit, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]engine.DirectDeposit, 0, len(m.deposits))
	for _, d := range m.deposits {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) ETransfers(_ context.Context) ([]engine.ETransfer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]engine.ETransfer, 0, len(m.transfers))
	for _, t := range m.transfers {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
