package payments

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Handler struct {
	Recorder *Recorder
	Pool     *pgxpool.Pool
}

func NewHandler(recorder *Recorder, pool *pgxpool.Pool) *Handler {
	return &Handler{Recorder: recorder, Pool: pool}
}

type recordRequest struct {
	TenantID    string  `json:"tenant_id"`
	UnitID      *string `json:"unit_id"`
	InvoiceID   *string `json:"invoice_id"`
	AmountCents int64   `json:"amount_cents"`
	Method      string  `json:"method"`
	TxID        *string `json:"tx_id"`
	MSISDN      *string `json:"msisdn"`
	PaidAt      string  `json:"paid_at"` // RFC3339, optional
	Description *string `json:"description"`
	Notes       *string `json:"notes"`
}

// Record is the counter/portal entry point for manual payments. The caller
// is already authenticated; amount and tenant checks happen in the recorder.
func (h *Handler) Record(c *fiber.Ctx) error {
	var body recordRequest
	if err := c.BodyParser(&body); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}

	var paidAt time.Time
	if strings.TrimSpace(body.PaidAt) != "" {
		t, err := time.Parse(time.RFC3339, body.PaidAt)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "paid_at must be RFC3339")
		}
		paidAt = t
	}

	res, err := h.Recorder.Record(userContext(c), RecordInput{
		TenantID:    strings.TrimSpace(body.TenantID),
		UnitID:      body.UnitID,
		InvoiceID:   body.InvoiceID,
		AmountCents: body.AmountCents,
		Method:      strings.TrimSpace(body.Method),
		Source:      SourceCounter,
		TxID:        body.TxID,
		MSISDN:      body.MSISDN,
		PaidAt:      paidAt,
		Description: body.Description,
		Notes:       body.Notes,
	})
	if err != nil {
		if errors.Is(err, ErrValidation) {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return fiber.NewError(fiber.StatusInternalServerError, "failed to record payment: "+err.Error())
	}

	return c.Status(fiber.StatusCreated).JSON(res)
}

// ListByTenant returns a tenant's payments, newest first.
func (h *Handler) ListByTenant(c *fiber.Ctx) error {
	tenantID := strings.TrimSpace(c.Params("id"))
	if tenantID == "" {
		return fiber.NewError(fiber.StatusBadRequest, "tenant id required")
	}

	limit := c.QueryInt("limit", 50)
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	rows, err := h.Pool.Query(userContext(c),
		`SELECT id::text, tenant_id::text, unit_id::text, invoice_id::text, amount_cents, method, source, tx_id, msisdn, paid_at, status, description, notes, created_at
		 FROM payments
		 WHERE tenant_id = $1::uuid
		 ORDER BY paid_at DESC, created_at DESC
		 LIMIT $2`,
		tenantID, limit,
	)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to load payments: "+err.Error())
	}
	defer rows.Close()

	out := make([]Payment, 0, limit)
	for rows.Next() {
		var p Payment
		if err := rows.Scan(&p.ID, &p.TenantID, &p.UnitID, &p.InvoiceID, &p.AmountCents, &p.Method, &p.Source,
			&p.TxID, &p.MSISDN, &p.PaidAt, &p.Status, &p.Description, &p.Notes, &p.CreatedAt); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "scan payment: "+err.Error())
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "load payments: "+err.Error())
	}

	return c.JSON(fiber.Map{"items": out})
}

func userContext(c *fiber.Ctx) context.Context {
	if ctx := c.UserContext(); ctx != nil {
		return ctx
	}
	return context.Background()
}
