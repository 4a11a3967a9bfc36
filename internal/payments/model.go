package payments

import (
	"time"

	"github.com/Techgrind-Sharlyne/rentpilot-prod-sub002/internal/ledger"
)

const (
	MethodMobileMoney = "mobile_money"
	MethodBank        = "bank"
	MethodManual      = "manual"

	SourceCounter = "counter"
	SourcePortal  = "portal"
	SourceImport  = "import"
	SourceWebhook = "webhook"

	StatusApplied = "applied"
)

// Payment records a received payment. Every persisted payment has exactly
// one CREDIT ledger entry with the same amount, created in the same
// transaction.
type Payment struct {
	ID          string    `json:"id"`
	TenantID    string    `json:"tenant_id"`
	UnitID      *string   `json:"unit_id,omitempty"`
	InvoiceID   *string   `json:"invoice_id,omitempty"`
	AmountCents int64     `json:"amount_cents"`
	Method      string    `json:"method"`
	Source      string    `json:"source"`
	TxID        *string   `json:"tx_id,omitempty"`
	MSISDN      *string   `json:"msisdn,omitempty"`
	PaidAt      time.Time `json:"paid_at"`
	Status      string    `json:"status"`
	Description *string   `json:"description,omitempty"`
	Notes       *string   `json:"notes,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// RecordInput is everything the recorder needs for one payment.
type RecordInput struct {
	TenantID    string
	UnitID      *string
	InvoiceID   *string
	AmountCents int64
	Method      string
	Source      string
	TxID        *string
	MSISDN      *string
	PaidAt      time.Time
	Description *string
	Notes       *string
}

// Result is what one successful recording returns: the durable payment and
// the summary recomputed from the ledger the payment just changed.
type Result struct {
	Payment Payment        `json:"payment"`
	Summary ledger.Summary `json:"summary"`
}
