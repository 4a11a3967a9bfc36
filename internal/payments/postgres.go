package payments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Techgrind-Sharlyne/rentpilot-prod-sub002/internal/ledger"
)

var ErrPaymentNotFound = errors.New("payment not found")

// PostgresStore runs the payment unit of work on a single pgx transaction
// guarded by a per-tenant advisory lock. The lock, not the default
// isolation level, is what makes the recompute read see every committed
// entry for the tenant: a second recorder for the same tenant blocks until
// the first commits.
type PostgresStore struct {
	Pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{Pool: pool}
}

func (s *PostgresStore) WithTenantTx(ctx context.Context, tenantID string, fn func(tx Tx) error) error {
	tx, err := s.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	// Held until commit or rollback; scoped to the tenant so unrelated
	// tenants never queue behind each other.
	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, tenantID); err != nil {
		return fmt.Errorf("acquire tenant lock: %w", err)
	}

	if err := fn(&pgTx{tx: tx}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

type pgTx struct {
	tx pgx.Tx
}

func (t *pgTx) MonthlyDue(ctx context.Context, tenantID string) (int64, bool, error) {
	var due int64
	err := t.tx.QueryRow(ctx,
		`SELECT monthly_due_cents FROM tenants WHERE id = $1::uuid AND deleted_at IS NULL`,
		tenantID,
	).Scan(&due)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return due, true, nil
}

func (t *pgTx) InsertPayment(ctx context.Context, p *Payment) error {
	return t.tx.QueryRow(ctx,
		`INSERT INTO payments (id, tenant_id, unit_id, invoice_id, amount_cents, method, source, tx_id, msisdn, paid_at, status, description, notes)
		 VALUES ($1::uuid, $2::uuid, $3::uuid, $4::uuid, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		 RETURNING created_at`,
		p.ID, p.TenantID, p.UnitID, p.InvoiceID, p.AmountCents, p.Method, p.Source,
		p.TxID, p.MSISDN, p.PaidAt, p.Status, p.Description, p.Notes,
	).Scan(&p.CreatedAt)
}

func (t *pgTx) AppendEntry(ctx context.Context, e *ledger.Entry) error {
	var meta []byte
	if e.Meta != nil {
		b, err := json.Marshal(e.Meta)
		if err != nil {
			return fmt.Errorf("marshal entry meta: %w", err)
		}
		meta = b
	}

	return t.tx.QueryRow(ctx,
		`INSERT INTO ledger_entries (id, tenant_id, unit_id, entry_type, amount_cents, entry_date, description, meta)
		 VALUES ($1::uuid, $2::uuid, $3::uuid, $4, $5, $6, $7, $8)
		 RETURNING created_at`,
		e.ID, e.TenantID, e.UnitID, e.Type, e.AmountCents, e.EntryDate, e.Description, meta,
	).Scan(&e.CreatedAt)
}

func (t *pgTx) ListEntries(ctx context.Context, tenantID string) ([]ledger.Entry, error) {
	rows, err := t.tx.Query(ctx,
		`SELECT id::text, tenant_id::text, unit_id::text, entry_type, amount_cents, entry_date, description, meta, deleted, created_at
		 FROM ledger_entries
		 WHERE tenant_id = $1::uuid
		 ORDER BY entry_date ASC, created_at ASC, id ASC`,
		tenantID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ledger.Entry
	for rows.Next() {
		var (
			e    ledger.Entry
			meta []byte
		)
		if err := rows.Scan(&e.ID, &e.TenantID, &e.UnitID, &e.Type, &e.AmountCents,
			&e.EntryDate, &e.Description, &meta, &e.Deleted, &e.CreatedAt); err != nil {
			return nil, err
		}
		if len(meta) > 0 {
			_ = json.Unmarshal(meta, &e.Meta)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *PostgresStore) GetPayment(ctx context.Context, id string) (*Payment, error) {
	var p Payment
	err := s.Pool.QueryRow(ctx,
		`SELECT id::text, tenant_id::text, unit_id::text, invoice_id::text, amount_cents, method, source, tx_id, msisdn, paid_at, status, description, notes, created_at
		 FROM payments WHERE id = $1::uuid`,
		id,
	).Scan(&p.ID, &p.TenantID, &p.UnitID, &p.InvoiceID, &p.AmountCents, &p.Method, &p.Source,
		&p.TxID, &p.MSISDN, &p.PaidAt, &p.Status, &p.Description, &p.Notes, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrPaymentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// SummaryFor recomputes a tenant's snapshot outside any payment
// transaction, e.g. for the duplicate-delivery response.
func (s *PostgresStore) SummaryFor(ctx context.Context, tenantID string, now time.Time) (ledger.Summary, error) {
	var due int64
	err := s.Pool.QueryRow(ctx,
		`SELECT monthly_due_cents FROM tenants WHERE id = $1::uuid AND deleted_at IS NULL`,
		tenantID,
	).Scan(&due)
	if errors.Is(err, pgx.ErrNoRows) {
		due = 0
	} else if err != nil {
		return ledger.Summary{}, err
	}

	store := ledger.Store{Pool: s.Pool}
	entries, err := store.ListEntries(ctx, tenantID, nil, nil)
	if err != nil {
		return ledger.Summary{}, err
	}
	return ledger.ComputeSummary(tenantID, entries, due, now), nil
}
