package payments

import (
	"context"
	"sync"
	"time"

	"github.com/Techgrind-Sharlyne/rentpilot-prod-sub002/internal/ledger"
)

// MemoryStore is an in-memory Store used by tests and local tooling. It
// honors the same contract as the Postgres store: a per-tenant mutex
// serializes units of work, and a failed callback leaves no trace.
type MemoryStore struct {
	mapMu sync.Mutex
	muMap map[string]*sync.Mutex

	mu         sync.RWMutex
	entries    map[string][]ledger.Entry // by tenant id, append order
	payments   map[string]Payment
	monthlyDue map[string]int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		muMap:      make(map[string]*sync.Mutex),
		entries:    make(map[string][]ledger.Entry),
		payments:   make(map[string]Payment),
		monthlyDue: make(map[string]int64),
	}
}

// AddTenant registers a tenant with its rent plan. Tests seed tenants here
// the way migrations seed the tenants table.
func (s *MemoryStore) AddTenant(tenantID string, monthlyDueCents int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.monthlyDue[tenantID] = monthlyDueCents
}

// SeedEntry appends an entry outside any payment, standing in for the
// manual adjustment path.
func (s *MemoryStore) SeedEntry(e ledger.Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	s.entries[e.TenantID] = append(s.entries[e.TenantID], e)
}

func (s *MemoryStore) tenantLock(tenantID string) *sync.Mutex {
	s.mapMu.Lock()
	defer s.mapMu.Unlock()
	if _, ok := s.muMap[tenantID]; !ok {
		s.muMap[tenantID] = &sync.Mutex{}
	}
	return s.muMap[tenantID]
}

func (s *MemoryStore) WithTenantTx(ctx context.Context, tenantID string, fn func(tx Tx) error) error {
	lock := s.tenantLock(tenantID)
	lock.Lock()
	defer lock.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	tx := &memTx{store: s, tenantID: tenantID}
	if err := fn(tx); err != nil {
		// Nothing staged is visible until commit below, so rollback is
		// simply dropping the staged writes.
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range tx.stagedPayments {
		s.payments[p.ID] = p
	}
	for _, e := range tx.stagedEntries {
		s.entries[e.TenantID] = append(s.entries[e.TenantID], e)
	}
	return nil
}

type memTx struct {
	store    *MemoryStore
	tenantID string

	stagedPayments []Payment
	stagedEntries  []ledger.Entry
}

func (t *memTx) MonthlyDue(ctx context.Context, tenantID string) (int64, bool, error) {
	t.store.mu.RLock()
	defer t.store.mu.RUnlock()
	due, ok := t.store.monthlyDue[tenantID]
	return due, ok, nil
}

func (t *memTx) InsertPayment(ctx context.Context, p *Payment) error {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	t.stagedPayments = append(t.stagedPayments, *p)
	return nil
}

func (t *memTx) AppendEntry(ctx context.Context, e *ledger.Entry) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	t.stagedEntries = append(t.stagedEntries, *e)
	return nil
}

func (t *memTx) ListEntries(ctx context.Context, tenantID string) ([]ledger.Entry, error) {
	t.store.mu.RLock()
	committed := t.store.entries[tenantID]
	out := make([]ledger.Entry, len(committed))
	copy(out, committed)
	t.store.mu.RUnlock()

	// Own-transaction reads see staged writes, matching the SQL path.
	for _, e := range t.stagedEntries {
		if e.TenantID == tenantID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *MemoryStore) GetPayment(ctx context.Context, id string) (*Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.payments[id]
	if !ok {
		return nil, ErrPaymentNotFound
	}
	return &p, nil
}

func (s *MemoryStore) SummaryFor(ctx context.Context, tenantID string, now time.Time) (ledger.Summary, error) {
	s.mu.RLock()
	due := s.monthlyDue[tenantID]
	committed := s.entries[tenantID]
	entries := make([]ledger.Entry, len(committed))
	copy(entries, committed)
	s.mu.RUnlock()

	return ledger.ComputeSummary(tenantID, entries, due, now), nil
}

// EntryCount reports committed entries for a tenant; test helper.
func (s *MemoryStore) EntryCount(tenantID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries[tenantID])
}

// PaymentCount reports committed payments across all tenants; test helper.
func (s *MemoryStore) PaymentCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.payments)
}
