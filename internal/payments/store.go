package payments

import (
	"context"
	"time"

	"github.com/Techgrind-Sharlyne/rentpilot-prod-sub002/internal/ledger"
)

// Tx is the unit of work visible inside one payment recording. All three
// operations hit the same underlying transaction, so the ListEntries read
// observes the entry appended a line earlier.
type Tx interface {
	MonthlyDue(ctx context.Context, tenantID string) (cents int64, found bool, err error)
	InsertPayment(ctx context.Context, p *Payment) error
	AppendEntry(ctx context.Context, e *ledger.Entry) error
	ListEntries(ctx context.Context, tenantID string) ([]ledger.Entry, error)
}

// Store opens per-tenant serialized units of work. WithTenantTx must
// guarantee that for a given tenant the callback never runs concurrently
// with another, and that the callback's reads observe every previously
// committed entry for that tenant. An error from the callback rolls the
// whole unit back; nothing partial survives.
type Store interface {
	WithTenantTx(ctx context.Context, tenantID string, fn func(tx Tx) error) error

	// Read-side helpers used outside the transaction boundary.
	GetPayment(ctx context.Context, id string) (*Payment, error)
	SummaryFor(ctx context.Context, tenantID string, now time.Time) (ledger.Summary, error)
}
