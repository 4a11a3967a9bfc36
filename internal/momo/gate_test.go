package momo

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/Techgrind-Sharlyne/rentpilot-prod-sub002/internal/ledger"
	"github.com/Techgrind-Sharlyne/rentpilot-prod-sub002/internal/payments"
)

type memDirectory struct {
	mu      sync.Mutex
	tenants map[string]string // msisdn -> tenant id
}

func (d *memDirectory) FindByMSISDN(ctx context.Context, msisdn string) (string, *string, bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	id, ok := d.tenants[msisdn]
	return id, nil, ok, nil
}

func (d *memDirectory) link(msisdn, tenantID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.tenants[msisdn] = tenantID
}

func newTestGate(t *testing.T) (*Gate, *payments.MemoryStore, *memDirectory) {
	t.Helper()
	store := payments.NewMemoryStore()
	store.AddTenant("t1", 1500000)
	dir := &memDirectory{tenants: map[string]string{"254700000001": "t1"}}
	rec := payments.NewRecorder(store, nil, zerolog.Nop())
	gate := NewGate(NewMemoryClaims(), dir, rec, store, zerolog.Nop())
	return gate, store, dir
}

func delivery(txID string, cents int64) Delivery {
	return Delivery{
		Provider:     "mpesa",
		ProviderTxID: txID,
		AmountCents:  cents,
		MSISDN:       "254700000001",
		PaidAt:       time.Now().UTC(),
	}
}

func TestHandleExternalPayment_AppliesOnce(t *testing.T) {
	gate, store, _ := newTestGate(t)

	res, err := gate.HandleExternalPayment(context.Background(), delivery("TX100", 500000))
	if err != nil {
		t.Fatalf("HandleExternalPayment: %v", err)
	}
	if res.Duplicate {
		t.Error("first delivery flagged duplicate")
	}
	if store.PaymentCount() != 1 || store.EntryCount("t1") != 1 {
		t.Errorf("counts = %d payments / %d entries, want 1/1", store.PaymentCount(), store.EntryCount("t1"))
	}
	if res.Summary.Status != ledger.StatusPrepaid {
		t.Errorf("summary status = %s, want prepaid", res.Summary.Status)
	}
}

func TestHandleExternalPayment_Replay(t *testing.T) {
	gate, store, _ := newTestGate(t)
	ctx := context.Background()

	first, err := gate.HandleExternalPayment(ctx, delivery("TX200", 500000))
	if err != nil {
		t.Fatalf("first delivery: %v", err)
	}
	second, err := gate.HandleExternalPayment(ctx, delivery("TX200", 500000))
	if err != nil {
		t.Fatalf("replayed delivery: %v", err)
	}

	if !second.Duplicate {
		t.Error("replay not flagged duplicate")
	}
	if second.Payment.ID != first.Payment.ID {
		t.Errorf("replay returned payment %s, want %s", second.Payment.ID, first.Payment.ID)
	}
	if store.PaymentCount() != 1 || store.EntryCount("t1") != 1 {
		t.Errorf("replay re-credited: %d payments / %d entries", store.PaymentCount(), store.EntryCount("t1"))
	}
}

func TestHandleExternalPayment_ConcurrentDuplicates(t *testing.T) {
	gate, store, _ := newTestGate(t)

	const n = 8
	results := make([]*Result, n)
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = gate.HandleExternalPayment(context.Background(), delivery("TX300", 500000))
		}(i)
	}
	wg.Wait()

	var applied, duplicates int
	for i := 0; i < n; i++ {
		if errs[i] != nil {
			t.Fatalf("delivery %d: %v", i, errs[i])
		}
		if results[i].Duplicate {
			duplicates++
		} else {
			applied++
		}
	}

	if applied != 1 || duplicates != n-1 {
		t.Errorf("applied = %d, duplicates = %d, want 1 and %d", applied, duplicates, n-1)
	}
	if store.PaymentCount() != 1 || store.EntryCount("t1") != 1 {
		t.Errorf("concurrent deliveries credited %d payments / %d entries, want 1/1",
			store.PaymentCount(), store.EntryCount("t1"))
	}
}

func TestHandleExternalPayment_UnknownPayerDoesNotReserve(t *testing.T) {
	gate, store, dir := newTestGate(t)
	ctx := context.Background()

	d := Delivery{
		Provider:     "mpesa",
		ProviderTxID: "TX400",
		AmountCents:  500000,
		MSISDN:       "254711111111", // not linked yet
		PaidAt:       time.Now().UTC(),
	}

	if _, err := gate.HandleExternalPayment(ctx, d); !errors.Is(err, ErrUnknownPayer) {
		t.Fatalf("err = %v, want ErrUnknownPayer", err)
	}
	if store.PaymentCount() != 0 {
		t.Fatalf("unknown payer produced a payment")
	}

	// Once routing is corrected, the provider's retry with the same tx id
	// must still succeed.
	dir.link("254711111111", "t1")
	res, err := gate.HandleExternalPayment(ctx, d)
	if err != nil {
		t.Fatalf("retry after linking: %v", err)
	}
	if res.Duplicate {
		t.Error("retry flagged duplicate although the key was never reserved")
	}
	if store.PaymentCount() != 1 {
		t.Errorf("payments = %d, want 1", store.PaymentCount())
	}
}

// failingOnceStore fails the first unit of work, then recovers.
type failingOnceStore struct {
	payments.Store
	mu     sync.Mutex
	failed bool
}

func (s *failingOnceStore) WithTenantTx(ctx context.Context, tenantID string, fn func(tx payments.Tx) error) error {
	s.mu.Lock()
	first := !s.failed
	s.failed = true
	s.mu.Unlock()
	if first {
		return errors.New("storage unavailable")
	}
	return s.Store.WithTenantTx(ctx, tenantID, fn)
}

func TestHandleExternalPayment_ReleasesClaimOnFailure(t *testing.T) {
	mem := payments.NewMemoryStore()
	mem.AddTenant("t1", 1500000)
	dir := &memDirectory{tenants: map[string]string{"254700000001": "t1"}}
	flaky := &failingOnceStore{Store: mem}
	rec := payments.NewRecorder(flaky, nil, zerolog.Nop())
	gate := NewGate(NewMemoryClaims(), dir, rec, mem, zerolog.Nop())
	ctx := context.Background()

	if _, err := gate.HandleExternalPayment(ctx, delivery("TX500", 500000)); err == nil {
		t.Fatal("first delivery succeeded, want storage failure")
	}
	if mem.PaymentCount() != 0 {
		t.Fatalf("failed delivery left a payment")
	}

	// Provider retry with the same key succeeds now that the claim was
	// released.
	res, err := gate.HandleExternalPayment(ctx, delivery("TX500", 500000))
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if res.Duplicate {
		t.Error("retry flagged duplicate after released claim")
	}
	if mem.PaymentCount() != 1 || mem.EntryCount("t1") != 1 {
		t.Errorf("retry credited %d payments / %d entries, want 1/1", mem.PaymentCount(), mem.EntryCount("t1"))
	}
}

func TestHandleExternalPayment_Validation(t *testing.T) {
	gate, store, _ := newTestGate(t)
	ctx := context.Background()

	tests := []struct {
		name string
		d    Delivery
	}{
		{"zero amount", delivery("TX600", 0)},
		{"negative amount", delivery("TX601", -100)},
		{"missing tx id", delivery("", 100)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := gate.HandleExternalPayment(ctx, tt.d); !errors.Is(err, payments.ErrValidation) {
				t.Fatalf("err = %v, want ErrValidation", err)
			}
		})
	}
	if store.PaymentCount() != 0 {
		t.Errorf("validation failures produced payments")
	}
}
