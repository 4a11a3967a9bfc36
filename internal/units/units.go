package units

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("unit not found")

const (
	StatusVacant   = "vacant"
	StatusOccupied = "occupied"
)

type Unit struct {
	ID               string    `json:"id"`
	PropertyID       string    `json:"property_id"`
	UnitNumber       string    `json:"unit_number"`
	MonthlyRentCents int64     `json:"monthly_rent_cents"`
	Status           string    `json:"status"`
	TenantID         *string   `json:"tenant_id,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

type Repository struct {
	Pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{Pool: pool}
}

func (r *Repository) Create(ctx context.Context, u *Unit) (string, error) {
	var id string
	err := r.Pool.QueryRow(ctx,
		`INSERT INTO units (property_id, unit_number, monthly_rent_cents, status)
		 VALUES ($1::uuid, $2, $3, $4)
		 RETURNING id`,
		u.PropertyID, u.UnitNumber, u.MonthlyRentCents, u.Status,
	).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (r *Repository) ListByProperty(ctx context.Context, propertyID string) ([]Unit, error) {
	rows, err := r.Pool.Query(ctx,
		`SELECT u.id::text, u.property_id::text, u.unit_number, u.monthly_rent_cents, u.status, t.id::text, u.created_at
		 FROM units u
		 LEFT JOIN tenants t ON t.unit_id = u.id AND t.deleted_at IS NULL
		 WHERE u.property_id = $1::uuid
		 ORDER BY u.unit_number ASC`,
		propertyID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Unit
	for rows.Next() {
		var u Unit
		if err := rows.Scan(&u.ID, &u.PropertyID, &u.UnitNumber, &u.MonthlyRentCents, &u.Status, &u.TenantID, &u.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *Repository) SetStatus(ctx context.Context, id, status string) error {
	tag, err := r.Pool.Exec(ctx,
		`UPDATE units SET status = $2 WHERE id = $1::uuid`, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

type Handler struct {
	Repo *Repository
}

func NewHandler(repo *Repository) *Handler {
	return &Handler{Repo: repo}
}

type createRequest struct {
	PropertyID       string `json:"property_id"`
	UnitNumber       string `json:"unit_number"`
	MonthlyRentCents int64  `json:"monthly_rent_cents"`
}

func (h *Handler) Create(c *fiber.Ctx) error {
	var body createRequest
	if err := c.BodyParser(&body); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}
	body.PropertyID = strings.TrimSpace(body.PropertyID)
	body.UnitNumber = strings.TrimSpace(body.UnitNumber)
	if body.PropertyID == "" || body.UnitNumber == "" {
		return fiber.NewError(fiber.StatusBadRequest, "property_id and unit_number required")
	}
	if body.MonthlyRentCents < 0 {
		return fiber.NewError(fiber.StatusBadRequest, "monthly_rent_cents must not be negative")
	}

	u := Unit{
		PropertyID:       body.PropertyID,
		UnitNumber:       body.UnitNumber,
		MonthlyRentCents: body.MonthlyRentCents,
		Status:           StatusVacant,
	}
	id, err := h.Repo.Create(c.UserContext(), &u)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "could not create unit: "+err.Error())
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": id})
}

func (h *Handler) ListByProperty(c *fiber.Ctx) error {
	propertyID := strings.TrimSpace(c.Query("property_id"))
	if propertyID == "" {
		return fiber.NewError(fiber.StatusBadRequest, "property_id required")
	}
	items, err := h.Repo.ListByProperty(c.UserContext(), propertyID)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "could not list units: "+err.Error())
	}
	return c.JSON(fiber.Map{"items": items})
}

func (h *Handler) SetStatus(c *fiber.Ctx) error {
	var body struct {
		Status string `json:"status"`
	}
	if err := c.BodyParser(&body); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}
	status := strings.ToLower(strings.TrimSpace(body.Status))
	if status != StatusVacant && status != StatusOccupied {
		return fiber.NewError(fiber.StatusBadRequest, "status must be vacant or occupied")
	}

	if err := h.Repo.SetStatus(c.UserContext(), c.Params("id"), status); err != nil {
		if errors.Is(err, ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "unit not found")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "could not update unit: "+err.Error())
	}
	return c.JSON(fiber.Map{"ok": true})
}
