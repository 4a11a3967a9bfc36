package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("ledger entry not found")

// Store is the read and adjustment side of the ledger. The payment path
// writes entries through its own transactional store; this one serves
// listings, summaries and manual corrections.
type Store struct {
	Pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{Pool: pool}
}

const entryColumns = `id::text, tenant_id::text, unit_id::text, entry_type, amount_cents, entry_date, description, meta, deleted, created_at`

func scanEntry(row pgx.Row) (Entry, error) {
	var (
		e    Entry
		meta []byte
	)
	if err := row.Scan(&e.ID, &e.TenantID, &e.UnitID, &e.Type, &e.AmountCents,
		&e.EntryDate, &e.Description, &meta, &e.Deleted, &e.CreatedAt); err != nil {
		return Entry{}, err
	}
	if len(meta) > 0 {
		_ = json.Unmarshal(meta, &e.Meta)
	}
	return e, nil
}

// Append durably writes one entry. Used by the manual adjustment path only;
// payments append their CREDIT entry inside the payment transaction.
func (s *Store) Append(ctx context.Context, e *Entry) (string, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.EntryDate.IsZero() {
		e.EntryDate = time.Now().UTC()
	}

	var meta []byte
	if e.Meta != nil {
		b, err := json.Marshal(e.Meta)
		if err != nil {
			return "", fmt.Errorf("marshal entry meta: %w", err)
		}
		meta = b
	}

	_, err := s.Pool.Exec(ctx,
		`INSERT INTO ledger_entries (id, tenant_id, unit_id, entry_type, amount_cents, entry_date, description, meta)
		 VALUES ($1::uuid, $2::uuid, $3::uuid, $4, $5, $6, $7, $8)`,
		e.ID, e.TenantID, e.UnitID, e.Type, e.AmountCents, e.EntryDate, e.Description, meta,
	)
	if err != nil {
		return "", err
	}
	return e.ID, nil
}

// ListEntries returns a tenant's entries ordered by entry date then insert
// order. Soft-deleted entries are included; summary computation filters them
// so that correction history stays visible to callers that want it.
func (s *Store) ListEntries(ctx context.Context, tenantID string, from, to *time.Time) ([]Entry, error) {
	q := `SELECT ` + entryColumns + `
	      FROM ledger_entries
	      WHERE tenant_id = $1::uuid`
	args := []any{tenantID}

	if from != nil {
		args = append(args, *from)
		q += fmt.Sprintf(" AND entry_date >= $%d", len(args))
	}
	if to != nil {
		args = append(args, *to)
		q += fmt.Sprintf(" AND entry_date < $%d", len(args))
	}
	q += " ORDER BY entry_date ASC, created_at ASC, id ASC"

	rows, err := s.Pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// SoftDelete marks an entry as excluded from recomputation. The row itself
// is never removed.
func (s *Store) SoftDelete(ctx context.Context, entryID string) error {
	tag, err := s.Pool.Exec(ctx,
		`UPDATE ledger_entries SET deleted = TRUE WHERE id = $1::uuid AND deleted = FALSE`,
		entryID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
