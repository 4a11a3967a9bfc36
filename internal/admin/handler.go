package admin

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Handler struct {
	Pool *pgxpool.Pool
}

func NewHandler(pool *pgxpool.Pool) *Handler {
	return &Handler{Pool: pool}
}

type latestPayment struct {
	ID          string `json:"id"`
	TenantID    string `json:"tenant_id"`
	AmountCents int64  `json:"amount_cents"`
	Method      string `json:"method"`
	PaidAt      string `json:"paid_at"`
}

type OverviewResponse struct {
	PropertiesTotal    int64           `json:"properties_total"`
	UnitsTotal         int64           `json:"units_total"`
	TenantsTotal       int64           `json:"tenants_total"`
	TenantsInArrears   int64           `json:"tenants_in_arrears"`
	TotalArrearsCents  int64           `json:"total_arrears_cents"`
	CollectedMTDCents  int64           `json:"collected_mtd_cents"`
	LatestPayments     []latestPayment `json:"latest_payments"`
}

// Overview is the portfolio dashboard: counts, arrears across all tenants
// and month-to-date collections. Arrears come straight from the ledger so
// the numbers always agree with per-tenant summaries.
func (h *Handler) Overview(c *fiber.Ctx) error {
	ctx := c.UserContext()

	var resp OverviewResponse

	if err := h.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM properties`).Scan(&resp.PropertiesTotal); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed properties_total: "+err.Error())
	}
	if err := h.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM units`).Scan(&resp.UnitsTotal); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed units_total: "+err.Error())
	}
	if err := h.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM tenants WHERE deleted_at IS NULL`).Scan(&resp.TenantsTotal); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed tenants_total: "+err.Error())
	}

	// Per-tenant balance = debits - credits over non-deleted entries; only
	// positive balances count as arrears.
	if err := h.Pool.QueryRow(ctx, `
		SELECT COUNT(*), COALESCE(SUM(balance), 0)::bigint
		FROM (
			SELECT tenant_id,
			       SUM(CASE WHEN entry_type = 'DEBIT' THEN amount_cents ELSE -amount_cents END) AS balance
			FROM ledger_entries
			WHERE deleted = FALSE
			GROUP BY tenant_id
		) b
		WHERE balance > 0
	`).Scan(&resp.TenantsInArrears, &resp.TotalArrearsCents); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed arrears: "+err.Error())
	}

	if err := h.Pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(amount_cents), 0)::bigint
		FROM ledger_entries
		WHERE entry_type = 'CREDIT'
		  AND deleted = FALSE
		  AND entry_date >= date_trunc('month', NOW() AT TIME ZONE 'UTC')
	`).Scan(&resp.CollectedMTDCents); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed collected_mtd: "+err.Error())
	}

	rows, err := h.Pool.Query(ctx, `
		SELECT id::text, tenant_id::text, amount_cents, method, paid_at::text
		FROM payments
		ORDER BY created_at DESC
		LIMIT 20`)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed latest_payments: "+err.Error())
	}
	defer rows.Close()

	for rows.Next() {
		var p latestPayment
		if err := rows.Scan(&p.ID, &p.TenantID, &p.AmountCents, &p.Method, &p.PaidAt); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "scan latest_payments: "+err.Error())
		}
		resp.LatestPayments = append(resp.LatestPayments, p)
	}
	if err := rows.Err(); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "latest_payments: "+err.Error())
	}

	return c.JSON(resp)
}
