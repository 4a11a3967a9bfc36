package audit

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	ActionPaymentRecord   = "payment.record"
	ActionLedgerAdjust    = "ledger.adjust"
	ActionEntrySoftDelete = "ledger.entry.soft_delete"
)

type Entry struct {
	UserID     *string
	Action     string
	EntityType string
	EntityID   *string
	IP         *string
	Metadata   []byte
}

// Write records an audit entry. Failures are returned so callers can decide
// to ignore them; the financial path never depends on audit success.
func Write(ctx context.Context, db *pgxpool.Pool, e Entry) error {
	if db == nil {
		return nil
	}

	var metadata interface{}
	if len(e.Metadata) > 0 {
		raw := json.RawMessage(e.Metadata)
		metadata = raw
	}

	_, err := db.Exec(ctx, `
INSERT INTO audit_logs (user_id, action, entity_type, entity_id, ip, metadata)
VALUES ($1, $2, $3, $4, $5, $6)
`, e.UserID, e.Action, e.EntityType, e.EntityID, e.IP, metadata)

	return err
}
