package tenants

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

type Handler struct {
	Repo *Repository
}

func NewHandler(repo *Repository) *Handler {
	return &Handler{Repo: repo}
}

func (h *Handler) Create(c *fiber.Ctx) error {
	var body CreateTenantRequest
	if err := c.BodyParser(&body); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}

	body.FullName = strings.TrimSpace(body.FullName)
	body.MSISDN = strings.TrimSpace(body.MSISDN)
	if body.FullName == "" || body.MSISDN == "" {
		return fiber.NewError(fiber.StatusBadRequest, "full_name and msisdn required")
	}
	if body.MonthlyDueCents < 0 {
		return fiber.NewError(fiber.StatusBadRequest, "monthly_due_cents must not be negative")
	}

	t := Tenant{
		FullName:        body.FullName,
		Email:           body.Email,
		MSISDN:          body.MSISDN,
		PropertyID:      body.PropertyID,
		UnitID:          body.UnitID,
		MonthlyDueCents: body.MonthlyDueCents,
	}
	if strings.TrimSpace(body.MovedInOn) != "" {
		d, err := time.Parse("2006-01-02", body.MovedInOn)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "moved_in_on must be YYYY-MM-DD")
		}
		t.MovedInOn = &d
	}

	id, err := h.Repo.Create(userContext(c), &t)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "could not create tenant: "+err.Error())
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": id})
}

func (h *Handler) Get(c *fiber.Ctx) error {
	t, err := h.Repo.Get(userContext(c), c.Params("id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "tenant not found")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "could not load tenant: "+err.Error())
	}
	return c.JSON(t)
}

func (h *Handler) List(c *fiber.Ctx) error {
	items, err := h.Repo.List(userContext(c), strings.TrimSpace(c.Query("property_id")), c.QueryInt("limit", 100))
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "could not list tenants: "+err.Error())
	}
	return c.JSON(fiber.Map{"items": items})
}

func (h *Handler) Update(c *fiber.Ctx) error {
	var body UpdateTenantRequest
	if err := c.BodyParser(&body); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}
	if body.MonthlyDueCents != nil && *body.MonthlyDueCents < 0 {
		return fiber.NewError(fiber.StatusBadRequest, "monthly_due_cents must not be negative")
	}

	if err := h.Repo.Update(userContext(c), c.Params("id"), body); err != nil {
		if errors.Is(err, ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "tenant not found")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "could not update tenant: "+err.Error())
	}
	return c.JSON(fiber.Map{"ok": true})
}

func (h *Handler) Delete(c *fiber.Ctx) error {
	if err := h.Repo.SoftDelete(userContext(c), c.Params("id")); err != nil {
		if errors.Is(err, ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "tenant not found")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "could not delete tenant: "+err.Error())
	}
	return c.JSON(fiber.Map{"ok": true})
}

func userContext(c *fiber.Ctx) context.Context {
	if ctx := c.UserContext(); ctx != nil {
		return ctx
	}
	return context.Background()
}
