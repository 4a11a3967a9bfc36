package reports

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Techgrind-Sharlyne/rentpilot-prod-sub002/internal/ledger"
	"github.com/Techgrind-Sharlyne/rentpilot-prod-sub002/internal/payments"
)

type Handler struct {
	Pool     *pgxpool.Pool
	Payments payments.Store
	Ledger   *ledger.Store
	Tokens   *TokenStore
}

func NewHandler(pool *pgxpool.Pool, pay payments.Store, led *ledger.Store, tokens *TokenStore) *Handler {
	return &Handler{Pool: pool, Payments: pay, Ledger: led, Tokens: tokens}
}

// IssueReceiptToken creates a shareable download link for one payment's
// receipt. POST /api/payments/:id/receipt-token
func (h *Handler) IssueReceiptToken(c *fiber.Ctx) error {
	ctx := c.UserContext()
	paymentID := c.Params("id")

	if _, err := h.Payments.GetPayment(ctx, paymentID); err != nil {
		if errors.Is(err, payments.ErrPaymentNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "payment not found")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "failed to load payment: "+err.Error())
	}

	token, err := h.Tokens.Issue(ctx, paymentID)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to issue token: "+err.Error())
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"token": token,
		"url":   "/r/" + token,
	})
}

// DownloadReceipt serves the receipt PDF behind a token. GET /r/:token
// Public by design; the token is the credential.
func (h *Handler) DownloadReceipt(c *fiber.Ctx) error {
	ctx := c.UserContext()

	paymentID, err := h.Tokens.Resolve(ctx, c.Params("token"))
	if err != nil {
		if errors.Is(err, ErrTokenNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "link expired or invalid")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "failed to resolve token: "+err.Error())
	}

	payment, err := h.Payments.GetPayment(ctx, paymentID)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to load payment: "+err.Error())
	}

	summary, err := h.Payments.SummaryFor(ctx, payment.TenantID, time.Now().UTC())
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to compute summary: "+err.Error())
	}

	name, unit, err := h.tenantLabel(c, payment.TenantID)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to load tenant: "+err.Error())
	}

	pdfBytes, err := RenderReceiptPDF(ReceiptData{
		Payment:    *payment,
		Summary:    summary,
		TenantName: name,
		UnitLabel:  unit,
	})
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to render receipt: "+err.Error())
	}

	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="receipt-`+shortID(paymentID)+`.pdf"`)
	return c.Send(pdfBytes)
}

// ExportLedgerXLSX downloads a tenant's full ledger as a spreadsheet.
// GET /api/tenants/:id/ledger/export
func (h *Handler) ExportLedgerXLSX(c *fiber.Ctx) error {
	ctx := c.UserContext()
	tenantID := c.Params("id")

	name, _, err := h.tenantLabel(c, tenantID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fiber.NewError(fiber.StatusNotFound, "tenant not found")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "failed to load tenant: "+err.Error())
	}

	entries, err := h.Ledger.ListEntries(ctx, tenantID, nil, nil)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to list entries: "+err.Error())
	}

	xlsxBytes, err := RenderLedgerXLSX(name, entries)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to render export: "+err.Error())
	}

	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="ledger-`+shortID(tenantID)+`.xlsx"`)
	return c.Send(xlsxBytes)
}

func (h *Handler) tenantLabel(c *fiber.Ctx, tenantID string) (name, unit string, err error) {
	err = h.Pool.QueryRow(c.UserContext(), `
		SELECT t.full_name, COALESCE(u.unit_number, '')
		FROM tenants t
		LEFT JOIN units u ON u.id = t.unit_id
		WHERE t.id = $1::uuid`,
		tenantID,
	).Scan(&name, &unit)
	return name, unit, err
}
