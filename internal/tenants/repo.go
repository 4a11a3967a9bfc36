package tenants

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("tenant not found")

type Repository struct {
	Pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{Pool: pool}
}

const tenantColumns = `id::text, full_name, email, msisdn, property_id::text, unit_id::text, monthly_due_cents, moved_in_on, created_at, deleted_at`

func scanTenant(row pgx.Row) (Tenant, error) {
	var t Tenant
	err := row.Scan(&t.ID, &t.FullName, &t.Email, &t.MSISDN, &t.PropertyID, &t.UnitID,
		&t.MonthlyDueCents, &t.MovedInOn, &t.CreatedAt, &t.DeletedAt)
	return t, err
}

func (r *Repository) Create(ctx context.Context, t *Tenant) (string, error) {
	var id string
	err := r.Pool.QueryRow(ctx,
		`INSERT INTO tenants (full_name, email, msisdn, property_id, unit_id, monthly_due_cents, moved_in_on)
		 VALUES ($1, $2, $3, $4::uuid, $5::uuid, $6, $7)
		 RETURNING id`,
		t.FullName, t.Email, t.MSISDN, t.PropertyID, t.UnitID, t.MonthlyDueCents, t.MovedInOn,
	).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (r *Repository) Get(ctx context.Context, id string) (*Tenant, error) {
	t, err := scanTenant(r.Pool.QueryRow(ctx,
		`SELECT `+tenantColumns+` FROM tenants WHERE id = $1::uuid AND deleted_at IS NULL`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *Repository) List(ctx context.Context, propertyID string, limit int) ([]Tenant, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	q := `SELECT ` + tenantColumns + ` FROM tenants WHERE deleted_at IS NULL`
	args := []any{}
	if propertyID != "" {
		args = append(args, propertyID)
		q += ` AND property_id = $1::uuid`
	}
	args = append(args, limit)
	if propertyID != "" {
		q += ` ORDER BY full_name ASC LIMIT $2`
	} else {
		q += ` ORDER BY full_name ASC LIMIT $1`
	}

	rows, err := r.Pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Tenant, 0, limit)
	for rows.Next() {
		t, err := scanTenant(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *Repository) Update(ctx context.Context, id string, req UpdateTenantRequest) error {
	tag, err := r.Pool.Exec(ctx,
		`UPDATE tenants SET
			full_name = COALESCE($2, full_name),
			email = COALESCE($3, email),
			msisdn = COALESCE($4, msisdn),
			property_id = COALESCE($5::uuid, property_id),
			unit_id = COALESCE($6::uuid, unit_id),
			monthly_due_cents = COALESCE($7, monthly_due_cents)
		 WHERE id = $1::uuid AND deleted_at IS NULL`,
		id, req.FullName, req.Email, req.MSISDN, req.PropertyID, req.UnitID, req.MonthlyDueCents,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) SoftDelete(ctx context.Context, id string) error {
	tag, err := r.Pool.Exec(ctx,
		`UPDATE tenants SET deleted_at = NOW() WHERE id = $1::uuid AND deleted_at IS NULL`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// MonthlyDue implements ledger.RentPlans.
func (r *Repository) MonthlyDue(ctx context.Context, tenantID string) (int64, bool, error) {
	var due int64
	err := r.Pool.QueryRow(ctx,
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

// FindByMSISDN implements momo.TenantDirectory: routes a mobile-money payer
// to a tenant.
func (r *Repository) FindByMSISDN(ctx context.Context, msisdn string) (string, *string, bool, error) {
	var (
		id     string
		unitID *string
	)
	err := r.Pool.QueryRow(ctx,
		`SELECT id::text, unit_id::text FROM tenants WHERE msisdn = $1 AND deleted_at IS NULL`,
		msisdn,
	).Scan(&id, &unitID)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil, false, nil
	}
	if err != nil {
		return "", nil, false, err
	}
	return id, unitID, true, nil
}
