package ledger

import (
	"context"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/Techgrind-Sharlyne/rentpilot-prod-sub002/internal/money"
)

// RentPlans resolves a tenant's monthly due. Implemented by the tenants
// repository; zero due with found=false means the tenant does not exist.
type RentPlans interface {
	MonthlyDue(ctx context.Context, tenantID string) (int64, bool, error)
}

type Handler struct {
	Store *Store
	Plans RentPlans
}

func NewHandler(store *Store, plans RentPlans) *Handler {
	return &Handler{Store: store, Plans: plans}
}

func (h *Handler) ListEntries(c *fiber.Ctx) error {
	tenantID := strings.TrimSpace(c.Params("id"))
	if tenantID == "" {
		return fiber.NewError(fiber.StatusBadRequest, "tenant id required")
	}

	var from, to *time.Time
	if v := strings.TrimSpace(c.Query("from")); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "from must be YYYY-MM-DD")
		}
		from = &t
	}
	if v := strings.TrimSpace(c.Query("to")); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "to must be YYYY-MM-DD")
		}
		to = &t
	}

	entries, err := h.Store.ListEntries(userContext(c), tenantID, from, to)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to load ledger: "+err.Error())
	}
	return c.JSON(fiber.Map{"items": entries})
}

func (h *Handler) GetSummary(c *fiber.Ctx) error {
	tenantID := strings.TrimSpace(c.Params("id"))
	if tenantID == "" {
		return fiber.NewError(fiber.StatusBadRequest, "tenant id required")
	}
	ctx := userContext(c)

	due, found, err := h.Plans.MonthlyDue(ctx, tenantID)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to load rent plan: "+err.Error())
	}
	if !found {
		return fiber.NewError(fiber.StatusNotFound, "tenant not found")
	}

	entries, err := h.Store.ListEntries(ctx, tenantID, nil, nil)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to load ledger: "+err.Error())
	}

	return c.JSON(ComputeSummary(tenantID, entries, due, time.Now()))
}

type adjustmentRequest struct {
	Type        string  `json:"type"` // DEBIT | CREDIT
	AmountCents int64   `json:"amount_cents"`
	UnitID      *string `json:"unit_id"`
	EntryDate   string  `json:"entry_date"` // YYYY-MM-DD, optional
	Description string  `json:"description"`
}

// CreateAdjustment is the manual correction path: an explicit DEBIT or
// CREDIT entry outside the payment flow. Monthly rent charges land here too.
func (h *Handler) CreateAdjustment(c *fiber.Ctx) error {
	tenantID := strings.TrimSpace(c.Params("id"))
	if tenantID == "" {
		return fiber.NewError(fiber.StatusBadRequest, "tenant id required")
	}

	var body adjustmentRequest
	if err := c.BodyParser(&body); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}

	typ := EntryType(strings.ToUpper(strings.TrimSpace(body.Type)))
	if typ != TypeDebit && typ != TypeCredit {
		return fiber.NewError(fiber.StatusBadRequest, "type must be DEBIT or CREDIT")
	}
	if err := money.ValidateCents(body.AmountCents); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "amount_cents must be positive")
	}

	ctx := userContext(c)
	if _, found, err := h.Plans.MonthlyDue(ctx, tenantID); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to check tenant: "+err.Error())
	} else if !found {
		return fiber.NewError(fiber.StatusNotFound, "tenant not found")
	}

	entryDate := time.Now().UTC()
	if strings.TrimSpace(body.EntryDate) != "" {
		t, err := time.Parse("2006-01-02", body.EntryDate)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "entry_date must be YYYY-MM-DD")
		}
		entryDate = t
	}

	entry := &Entry{
		TenantID:    tenantID,
		UnitID:      body.UnitID,
		Type:        typ,
		AmountCents: body.AmountCents,
		EntryDate:   entryDate,
		Description: strings.TrimSpace(body.Description),
	}
	id, err := h.Store.Append(ctx, entry)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to append entry: "+err.Error())
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": id})
}

// DeleteEntry soft-deletes an entry so it stops counting toward summaries.
func (h *Handler) DeleteEntry(c *fiber.Ctx) error {
	entryID := strings.TrimSpace(c.Params("entryId"))
	if entryID == "" {
		return fiber.NewError(fiber.StatusBadRequest, "entry id required")
	}

	if err := h.Store.SoftDelete(userContext(c), entryID); err != nil {
		if err == ErrNotFound {
			return fiber.NewError(fiber.StatusNotFound, "entry not found")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "failed to delete entry: "+err.Error())
	}
	return c.JSON(fiber.Map{"ok": true})
}

func userContext(c *fiber.Ctx) context.Context {
	if ctx := c.UserContext(); ctx != nil {
		return ctx
	}
	return context.Background()
}
