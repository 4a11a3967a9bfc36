package ledger

import (
	"testing"
	"time"
)

func entry(typ EntryType, cents int64, date time.Time) Entry {
	return Entry{TenantID: "t1", Type: typ, AmountCents: cents, EntryDate: date}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		balance int64
		want    Status
	}{
		{0, StatusCleared},
		{1, StatusOverdue},
		{-1, StatusPrepaid},
		{1500000, StatusOverdue},
		{-1500000, StatusPrepaid},
	}
	for _, tt := range tests {
		if got := StatusFor(tt.balance); got != tt.want {
			t.Errorf("StatusFor(%d) = %s, want %s", tt.balance, got, tt.want)
		}
	}
}

func TestComputeSummary_FirstMonthPayment(t *testing.T) {
	// Tenant owes 15000/month, no charges yet, pays 5000 in the current month.
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	entries := []Entry{
		entry(TypeCredit, 500000, now.AddDate(0, 0, -1)),
	}

	s := ComputeSummary("t1", entries, 1500000, now)

	if s.MTDPaidCents != 500000 {
		t.Errorf("MTDPaidCents = %d, want 500000", s.MTDPaidCents)
	}
	if s.CurrentMonthDueCents != 1000000 {
		t.Errorf("CurrentMonthDueCents = %d, want 1000000", s.CurrentMonthDueCents)
	}
	if s.BalanceCents != -500000 {
		t.Errorf("BalanceCents = %d, want -500000", s.BalanceCents)
	}
	if s.ArrearsCents != 0 {
		t.Errorf("ArrearsCents = %d, want 0", s.ArrearsCents)
	}
	if s.Status != StatusPrepaid {
		t.Errorf("Status = %s, want %s", s.Status, StatusPrepaid)
	}
}

func TestComputeSummary_ChargeAndFullPayment(t *testing.T) {
	now := time.Date(2025, 3, 31, 23, 0, 0, 0, time.UTC)
	entries := []Entry{
		entry(TypeDebit, 1500000, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)),
		entry(TypeCredit, 1500000, time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC)),
	}

	s := ComputeSummary("t1", entries, 1500000, now)

	if s.BalanceCents != 0 {
		t.Errorf("BalanceCents = %d, want 0", s.BalanceCents)
	}
	if s.Status != StatusCleared {
		t.Errorf("Status = %s, want %s", s.Status, StatusCleared)
	}
	if s.CurrentMonthDueCents != 0 {
		t.Errorf("CurrentMonthDueCents = %d, want 0", s.CurrentMonthDueCents)
	}
}

func TestComputeSummary_MTDWindow(t *testing.T) {
	now := time.Date(2025, 4, 15, 0, 0, 0, 0, time.UTC)
	entries := []Entry{
		// Last month's payment counts toward balance but not MTD.
		entry(TypeCredit, 300000, time.Date(2025, 3, 28, 0, 0, 0, 0, time.UTC)),
		entry(TypeCredit, 200000, time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)),
		// First instant of next month is outside the window.
		entry(TypeCredit, 100000, time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)),
	}

	s := ComputeSummary("t1", entries, 1500000, now)

	if s.MTDPaidCents != 200000 {
		t.Errorf("MTDPaidCents = %d, want 200000", s.MTDPaidCents)
	}
	if s.BalanceCents != -600000 {
		t.Errorf("BalanceCents = %d, want -600000", s.BalanceCents)
	}
}

func TestComputeSummary_ExcludesSoftDeleted(t *testing.T) {
	now := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	deleted := entry(TypeCredit, 999900, now)
	deleted.Deleted = true
	entries := []Entry{
		entry(TypeDebit, 1500000, now),
		deleted,
	}

	s := ComputeSummary("t1", entries, 1500000, now)

	if s.BalanceCents != 1500000 {
		t.Errorf("BalanceCents = %d, want 1500000", s.BalanceCents)
	}
	if s.MTDPaidCents != 0 {
		t.Errorf("MTDPaidCents = %d, want 0", s.MTDPaidCents)
	}
	if s.Status != StatusOverdue {
		t.Errorf("Status = %s, want %s", s.Status, StatusOverdue)
	}
}

func TestComputeSummary_NoPlan(t *testing.T) {
	now := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	s := ComputeSummary("t1", nil, 0, now)

	if s.BalanceCents != 0 || s.CurrentMonthDueCents != 0 || s.Status != StatusCleared {
		t.Errorf("empty ledger summary = %+v, want all-zero cleared", s)
	}
}

func TestComputeSummary_BalanceMatchesManualSum(t *testing.T) {
	// Ledger sum invariant: balance equals debits minus credits over the
	// full non-deleted history.
	now := time.Date(2025, 6, 20, 0, 0, 0, 0, time.UTC)
	entries := []Entry{
		entry(TypeDebit, 1500000, time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)),
		entry(TypeDebit, 1500000, time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)),
		entry(TypeDebit, 1500000, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)),
		entry(TypeCredit, 1500000, time.Date(2025, 4, 3, 0, 0, 0, 0, time.UTC)),
		entry(TypeCredit, 700000, time.Date(2025, 5, 6, 0, 0, 0, 0, time.UTC)),
		entry(TypeCredit, 800000, time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)),
	}

	var manual int64
	for _, e := range entries {
		if e.Type == TypeDebit {
			manual += e.AmountCents
		} else {
			manual -= e.AmountCents
		}
	}

	s := ComputeSummary("t1", entries, 1500000, now)
	if s.BalanceCents != manual {
		t.Errorf("BalanceCents = %d, want manual sum %d", s.BalanceCents, manual)
	}
	if s.ArrearsCents != manual {
		t.Errorf("ArrearsCents = %d, want %d (positive balance)", s.ArrearsCents, manual)
	}
}

func TestComputeSummary_Deterministic(t *testing.T) {
	now := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	entries := []Entry{
		entry(TypeDebit, 1500000, now.AddDate(0, 0, -5)),
		entry(TypeCredit, 400000, now.AddDate(0, 0, -3)),
	}

	first := ComputeSummary("t1", entries, 1500000, now)
	for i := 0; i < 10; i++ {
		if got := ComputeSummary("t1", entries, 1500000, now); got != first {
			t.Fatalf("run %d: summary %+v differs from first %+v", i, got, first)
		}
	}
}
