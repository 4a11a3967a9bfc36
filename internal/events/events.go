package events

import "time"

const (
	PaymentApplied = "payment.applied"
	SummaryChanged = "summary.changed"
	KeepAlive      = "keepalive"
)

// Event is what the financial core hands to subscribers. Payload shape for
// the two business events is {tenant_id, payment, summary}; keep-alives
// carry no payload.
type Event struct {
	Name       string    `json:"name"`
	TenantID   string    `json:"tenant_id,omitempty"`
	Payload    any       `json:"payload,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Publisher fans an event out to whoever is listening. Implementations must
// be safe for concurrent use and must never block or fail the caller; the
// payment path publishes fire-and-forget.
type Publisher interface {
	Publish(evt Event)
}

// Multi sends each event to every publisher in order.
type Multi []Publisher

func (m Multi) Publish(evt Event) {
	for _, p := range m {
		p.Publish(evt)
	}
}
