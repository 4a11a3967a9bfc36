package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Techgrind-Sharlyne/rentpilot-prod-sub002/internal/admin"
	handlers "github.com/Techgrind-Sharlyne/rentpilot-prod-sub002/internal/http"
	"github.com/Techgrind-Sharlyne/rentpilot-prod-sub002/internal/ledger"
	"github.com/Techgrind-Sharlyne/rentpilot-prod-sub002/internal/payments"
	"github.com/Techgrind-Sharlyne/rentpilot-prod-sub002/internal/properties"
	"github.com/Techgrind-Sharlyne/rentpilot-prod-sub002/internal/reports"
	"github.com/Techgrind-Sharlyne/rentpilot-prod-sub002/internal/tenants"
	"github.com/Techgrind-Sharlyne/rentpilot-prod-sub002/internal/units"
)

type Router struct {
	AuthHandler       *handlers.AuthHandler
	PropertiesHandler *properties.Handler
	UnitsHandler      *units.Handler
	TenantsHandler    *tenants.Handler
	LedgerHandler     *ledger.Handler
	PaymentsHandler   *payments.Handler
	ReportsHandler    *reports.Handler
	AdminHandler      *admin.Handler

	WebhookHandler fiber.Handler
	StreamHandler  fiber.Handler

	AuthMW  fiber.Handler
	AdminMW fiber.Handler
}

func (r *Router) RegisterRoutes(app *fiber.App) {
	if r.AuthHandler != nil {
		app.Post("/api/auth/signup", RateLimitAuth(), r.AuthHandler.Signup)
		app.Post("/api/auth/login", RateLimitAuth(), r.AuthHandler.Login)
		app.Get("/api/me", r.AuthMW, r.AuthHandler.Me)
	}

	if r.PropertiesHandler != nil {
		app.Post("/api/properties", r.AuthMW, r.PropertiesHandler.Create)
		app.Get("/api/properties", r.AuthMW, r.PropertiesHandler.List)
		app.Get("/api/properties/:id", r.AuthMW, r.PropertiesHandler.Get)
	}

	if r.UnitsHandler != nil {
		app.Post("/api/units", r.AuthMW, r.UnitsHandler.Create)
		app.Get("/api/units", r.AuthMW, r.UnitsHandler.ListByProperty)
		app.Patch("/api/units/:id/status", r.AuthMW, r.UnitsHandler.SetStatus)
	}

	if r.TenantsHandler != nil {
		app.Post("/api/tenants", r.AuthMW, r.TenantsHandler.Create)
		app.Get("/api/tenants", r.AuthMW, r.TenantsHandler.List)
		app.Get("/api/tenants/:id", r.AuthMW, r.TenantsHandler.Get)
		app.Patch("/api/tenants/:id", r.AuthMW, r.TenantsHandler.Update)
		app.Delete("/api/tenants/:id", r.AuthMW, r.TenantsHandler.Delete)
	}

	if r.LedgerHandler != nil {
		app.Get("/api/tenants/:id/ledger", r.AuthMW, r.LedgerHandler.ListEntries)
		app.Get("/api/tenants/:id/summary", r.AuthMW, r.LedgerHandler.GetSummary)
		app.Post("/api/tenants/:id/adjustments", r.AuthMW, RateLimitWrite(), r.LedgerHandler.CreateAdjustment)
		app.Delete("/api/tenants/:id/ledger/:entryId", r.AuthMW, r.LedgerHandler.DeleteEntry)
	}

	if r.PaymentsHandler != nil {
		app.Post("/api/payments", r.AuthMW, RateLimitWrite(), r.PaymentsHandler.Record)
		app.Get("/api/tenants/:id/payments", r.AuthMW, r.PaymentsHandler.ListByTenant)
	}

	if r.ReportsHandler != nil {
		app.Post("/api/payments/:id/receipt-token", r.AuthMW, r.ReportsHandler.IssueReceiptToken)
		app.Get("/api/tenants/:id/ledger/export", r.AuthMW, r.ReportsHandler.ExportLedgerXLSX)
		// Tokenized download, shared out of band. No auth by design.
		app.Get("/r/:token", r.ReportsHandler.DownloadReceipt)
	}

	if r.StreamHandler != nil {
		app.Get("/api/events/stream", r.AuthMW, r.StreamHandler)
	}

	if r.WebhookHandler != nil {
		app.Post("/v1/momo/webhook", r.WebhookHandler)
	}

	if r.AdminHandler != nil && r.AdminMW != nil {
		app.Get("/api/admin/overview", r.AdminMW, r.AdminHandler.Overview)
	}
}
