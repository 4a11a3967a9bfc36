package payments

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/Techgrind-Sharlyne/rentpilot-prod-sub002/internal/events"
	"github.com/Techgrind-Sharlyne/rentpilot-prod-sub002/internal/ledger"
)

type capturePublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *capturePublisher) Publish(evt events.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evt)
}

func (p *capturePublisher) names() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Name
	}
	return out
}

func newTestRecorder(store Store) (*Recorder, *capturePublisher) {
	pub := &capturePublisher{}
	return NewRecorder(store, pub, zerolog.Nop()), pub
}

func TestRecord_HappyPath(t *testing.T) {
	store := NewMemoryStore()
	store.AddTenant("t1", 1500000)
	rec, pub := newTestRecorder(store)

	res, err := rec.Record(context.Background(), RecordInput{
		TenantID:    "t1",
		AmountCents: 500000,
		Method:      MethodMobileMoney,
		Source:      SourceWebhook,
	})
	if err != nil {
		t.Fatalf("Record: %v", err)
	}

	if res.Payment.ID == "" || res.Payment.Status != StatusApplied {
		t.Errorf("payment = %+v, want applied with id", res.Payment)
	}
	if store.PaymentCount() != 1 || store.EntryCount("t1") != 1 {
		t.Errorf("counts = %d payments / %d entries, want 1/1", store.PaymentCount(), store.EntryCount("t1"))
	}

	// No DEBIT yet, so the payment leaves the tenant prepaid.
	if res.Summary.BalanceCents != -500000 || res.Summary.Status != ledger.StatusPrepaid {
		t.Errorf("summary = %+v, want balance -500000 prepaid", res.Summary)
	}
	if res.Summary.MTDPaidCents != 500000 {
		t.Errorf("MTDPaidCents = %d, want 500000", res.Summary.MTDPaidCents)
	}
	if res.Summary.CurrentMonthDueCents != 1000000 {
		t.Errorf("CurrentMonthDueCents = %d, want 1000000", res.Summary.CurrentMonthDueCents)
	}

	got := pub.names()
	if len(got) != 2 || got[0] != events.PaymentApplied || got[1] != events.SummaryChanged {
		t.Errorf("published events = %v, want [payment.applied summary.changed]", got)
	}
}

func TestRecord_Validation(t *testing.T) {
	store := NewMemoryStore()
	store.AddTenant("t1", 1500000)
	rec, pub := newTestRecorder(store)

	tests := []struct {
		name string
		in   RecordInput
	}{
		{"zero amount", RecordInput{TenantID: "t1", AmountCents: 0}},
		{"negative amount", RecordInput{TenantID: "t1", AmountCents: -100}},
		{"missing tenant", RecordInput{TenantID: "", AmountCents: 100}},
		{"unknown tenant", RecordInput{TenantID: "nobody", AmountCents: 100}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := rec.Record(context.Background(), tt.in)
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("err = %v, want ErrValidation", err)
			}
		})
	}

	if store.PaymentCount() != 0 || store.EntryCount("t1") != 0 {
		t.Errorf("writes happened on validation failure: %d payments / %d entries",
			store.PaymentCount(), store.EntryCount("t1"))
	}
	if len(pub.names()) != 0 {
		t.Errorf("events published on validation failure: %v", pub.names())
	}
}

// failingListStore makes the recompute read fail after the payment insert
// and ledger append succeeded, exercising full rollback.
type failingListStore struct {
	Store
}

type failingListTx struct {
	Tx
}

func (s *failingListStore) WithTenantTx(ctx context.Context, tenantID string, fn func(tx Tx) error) error {
	return s.Store.WithTenantTx(ctx, tenantID, func(tx Tx) error {
		return fn(&failingListTx{Tx: tx})
	})
}

func (t *failingListTx) ListEntries(ctx context.Context, tenantID string) ([]ledger.Entry, error) {
	return nil, errors.New("boom")
}

func TestRecord_AtomicityUnderFailure(t *testing.T) {
	mem := NewMemoryStore()
	mem.AddTenant("t1", 1500000)
	rec, pub := newTestRecorder(&failingListStore{Store: mem})

	_, err := rec.Record(context.Background(), RecordInput{TenantID: "t1", AmountCents: 500000})
	if err == nil {
		t.Fatal("Record succeeded, want recompute failure")
	}

	if mem.PaymentCount() != 0 {
		t.Errorf("payment row survived rollback: count = %d", mem.PaymentCount())
	}
	if mem.EntryCount("t1") != 0 {
		t.Errorf("ledger entry survived rollback: count = %d", mem.EntryCount("t1"))
	}
	if len(pub.names()) != 0 {
		t.Errorf("events published on failed transaction: %v", pub.names())
	}
}

func TestRecord_ConcurrentSameTenant(t *testing.T) {
	store := NewMemoryStore()
	store.AddTenant("t1", 1500000)
	// Start from balance X = 1500000 (one month charged).
	store.SeedEntry(ledger.Entry{
		ID: "charge-1", TenantID: "t1", Type: ledger.TypeDebit,
		AmountCents: 1500000, EntryDate: time.Now().UTC(),
	})
	rec, _ := newTestRecorder(store)

	amounts := []int64{500000, 300000}
	var wg sync.WaitGroup
	errs := make([]error, len(amounts))
	for i, a := range amounts {
		wg.Add(1)
		go func(i int, a int64) {
			defer wg.Done()
			_, errs[i] = rec.Record(context.Background(), RecordInput{TenantID: "t1", AmountCents: a})
		}(i, a)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("concurrent Record %d: %v", i, err)
		}
	}

	s, err := store.SummaryFor(context.Background(), "t1", time.Now())
	if err != nil {
		t.Fatalf("SummaryFor: %v", err)
	}
	want := int64(1500000 - 500000 - 300000)
	if s.BalanceCents != want {
		t.Errorf("final balance = %d, want %d (no lost update)", s.BalanceCents, want)
	}
	if store.EntryCount("t1") != 3 {
		t.Errorf("entry count = %d, want 3", store.EntryCount("t1"))
	}
}

func TestRecord_SummaryObservesEarlierCommit(t *testing.T) {
	// The second recording's recompute must see the first one's entry.
	store := NewMemoryStore()
	store.AddTenant("t1", 1500000)
	rec, _ := newTestRecorder(store)

	if _, err := rec.Record(context.Background(), RecordInput{TenantID: "t1", AmountCents: 100000}); err != nil {
		t.Fatalf("first Record: %v", err)
	}
	res, err := rec.Record(context.Background(), RecordInput{TenantID: "t1", AmountCents: 200000})
	if err != nil {
		t.Fatalf("second Record: %v", err)
	}

	if res.Summary.BalanceCents != -300000 {
		t.Errorf("second summary balance = %d, want -300000", res.Summary.BalanceCents)
	}
}
