package properties

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("property not found")

type Property struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	City      string    `json:"city"`
	CreatedBy *string   `json:"created_by,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type Repository struct {
	Pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{Pool: pool}
}

func (r *Repository) Create(ctx context.Context, p *Property) (string, error) {
	var id string
	err := r.Pool.QueryRow(ctx,
		`INSERT INTO properties (name, address, city, created_by)
		 VALUES ($1, $2, $3, $4::uuid)
		 RETURNING id`,
		p.Name, p.Address, p.City, p.CreatedBy,
	).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (r *Repository) Get(ctx context.Context, id string) (*Property, error) {
	var p Property
	err := r.Pool.QueryRow(ctx,
		`SELECT id::text, name, address, city, created_by::text, created_at
		 FROM properties WHERE id = $1::uuid`,
		id,
	).Scan(&p.ID, &p.Name, &p.Address, &p.City, &p.CreatedBy, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *Repository) List(ctx context.Context) ([]Property, error) {
	rows, err := r.Pool.Query(ctx,
		`SELECT id::text, name, address, city, created_by::text, created_at
		 FROM properties ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Property
	for rows.Next() {
		var p Property
		if err := rows.Scan(&p.ID, &p.Name, &p.Address, &p.City, &p.CreatedBy, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

type Handler struct {
	Repo *Repository
}

func NewHandler(repo *Repository) *Handler {
	return &Handler{Repo: repo}
}

type createRequest struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	City    string `json:"city"`
}

func (h *Handler) Create(c *fiber.Ctx) error {
	var body createRequest
	if err := c.BodyParser(&body); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}
	body.Name = strings.TrimSpace(body.Name)
	if body.Name == "" {
		return fiber.NewError(fiber.StatusBadRequest, "name required")
	}

	p := Property{Name: body.Name, Address: body.Address, City: body.City}
	if uid, ok := c.Locals("user_id").(string); ok && uid != "" {
		p.CreatedBy = &uid
	}

	id, err := h.Repo.Create(c.UserContext(), &p)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "could not create property: "+err.Error())
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": id})
}

func (h *Handler) Get(c *fiber.Ctx) error {
	p, err := h.Repo.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "property not found")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "could not load property: "+err.Error())
	}
	return c.JSON(p)
}

func (h *Handler) List(c *fiber.Ctx) error {
	items, err := h.Repo.List(c.UserContext())
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "could not list properties: "+err.Error())
	}
	return c.JSON(fiber.Map{"items": items})
}
