package ledger

import "time"

type EntryType string

const (
	TypeDebit  EntryType = "DEBIT"
	TypeCredit EntryType = "CREDIT"
)

// Entry is an immutable debit or credit record, the only source of truth for
// money owed and paid. Corrections are new offsetting entries; Deleted only
// hides an entry from recomputation, history is never rewritten.
type Entry struct {
	ID          string         `json:"id"`
	TenantID    string         `json:"tenant_id"`
	UnitID      *string        `json:"unit_id,omitempty"`
	Type        EntryType      `json:"type"`
	AmountCents int64          `json:"amount_cents"`
	EntryDate   time.Time      `json:"entry_date"`
	Description string         `json:"description"`
	Meta        map[string]any `json:"meta,omitempty"`
	Deleted     bool           `json:"deleted"`
	CreatedAt   time.Time      `json:"created_at"`
}

// MetaPaymentID is the meta key linking a CREDIT entry to the payment row
// it was created with.
const MetaPaymentID = "payment_id"
