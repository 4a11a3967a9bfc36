package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/Techgrind-Sharlyne/rentpilot-prod-sub002/internal/admin"
	"github.com/Techgrind-Sharlyne/rentpilot-prod-sub002/internal/audit"
	"github.com/Techgrind-Sharlyne/rentpilot-prod-sub002/internal/config"
	"github.com/Techgrind-Sharlyne/rentpilot-prod-sub002/internal/events"
	apphttp "github.com/Techgrind-Sharlyne/rentpilot-prod-sub002/internal/http"
	"github.com/Techgrind-Sharlyne/rentpilot-prod-sub002/internal/ledger"
	"github.com/Techgrind-Sharlyne/rentpilot-prod-sub002/internal/logger"
	"github.com/Techgrind-Sharlyne/rentpilot-prod-sub002/internal/momo"
	"github.com/Techgrind-Sharlyne/rentpilot-prod-sub002/internal/notify"
	"github.com/Techgrind-Sharlyne/rentpilot-prod-sub002/internal/payments"
	"github.com/Techgrind-Sharlyne/rentpilot-prod-sub002/internal/properties"
	"github.com/Techgrind-Sharlyne/rentpilot-prod-sub002/internal/realtime"
	"github.com/Techgrind-Sharlyne/rentpilot-prod-sub002/internal/reports"
	"github.com/Techgrind-Sharlyne/rentpilot-prod-sub002/internal/router"
	"github.com/Techgrind-Sharlyne/rentpilot-prod-sub002/internal/tenants"
	"github.com/Techgrind-Sharlyne/rentpilot-prod-sub002/internal/units"
)

func main() {
	logger.Setup()
	log := logger.For("api")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("configuration invalid")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating pgx pool")
	}
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("error pinging database")
	}

	// Event fan-out: always the in-process hub for SSE, plus Kafka when
	// brokers are configured.
	hub := realtime.NewHub(logger.For("hub"))
	hub.Start()
	defer hub.Close()

	publishers := events.Multi{hub}
	if len(cfg.KafkaBrokers) > 0 {
		kp := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, logger.For("kafka"))
		defer kp.Close()
		publishers = append(publishers, kp)
	}

	payStore := payments.NewPostgresStore(pool)
	recorder := payments.NewRecorder(payStore, publishers, logger.For("recorder"))

	tenantsRepo := tenants.NewRepository(pool)
	gate := momo.NewGate(momo.NewPostgresClaims(pool), tenantsRepo, recorder, payStore, logger.For("momo"))

	ledgerStore := ledger.NewStore(pool)
	tokenStore := reports.NewTokenStore(pool)
	twilio := notify.NewTwilio(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioWhatsAppFrom, logger.For("notify"))

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			message := "internal server error"

			var fiberErr *fiber.Error
			if errors.As(err, &fiberErr) {
				code = fiberErr.Code
				message = fiberErr.Message
			}

			return c.Status(code).JSON(fiber.Map{"error": message})
		},
	})

	app.Use(router.CorsMiddleware(cfg.CORSOrigin))
	app.Use(requestLogger(logger.For("http")))
	app.Use(auditWrites(pool, logger.For("audit")))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"ok": true})
	})
	app.Get("/healthz", func(c *fiber.Ctx) error {
		if err := pool.Ping(c.UserContext()); err != nil {
			return fiber.NewError(fiber.StatusServiceUnavailable, "database unreachable")
		}
		return c.JSON(fiber.Map{"ok": true})
	})

	authMW := buildJWTMiddleware(cfg.JWTSecret)

	onApplied := func(ctx context.Context, res *momo.Result) {
		if !twilio.Enabled() || res.Payment.MSISDN == nil {
			return
		}
		body := fmt.Sprintf("RentPilot: payment of KES %.2f received. Balance: KES %.2f. Thank you.",
			float64(res.Payment.AmountCents)/100, float64(res.Summary.BalanceCents)/100)
		go func(to, body string) {
			sendCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := twilio.SendWhatsApp(sendCtx, to, body); err != nil {
				log.Warn().Err(err).Msg("whatsapp confirmation failed")
			}
		}(*res.Payment.MSISDN, body)
	}

	r := &router.Router{
		AuthHandler:       &apphttp.AuthHandler{DB: pool},
		PropertiesHandler: properties.NewHandler(properties.NewRepository(pool)),
		UnitsHandler:      units.NewHandler(units.NewRepository(pool)),
		TenantsHandler:    tenants.NewHandler(tenantsRepo),
		LedgerHandler:     ledger.NewHandler(ledgerStore, tenantsRepo),
		PaymentsHandler:   payments.NewHandler(recorder, pool),
		ReportsHandler:    reports.NewHandler(pool, payStore, ledgerStore, tokenStore),
		AdminHandler:      admin.NewHandler(pool),
		WebhookHandler:    momo.WebhookHandler(gate, cfg.MomoProvider, cfg.MomoWebhookSecret, logger.For("webhook"), onApplied),
		StreamHandler:     realtime.SSEHandler(hub),
		AuthMW:            authMW,
		AdminMW:           admin.RequireAPIKey(cfg.AdminAPIKey),
	}
	r.RegisterRoutes(app)

	log.Info().Str("port", cfg.Port).Msg("listening")
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func requestLogger(log zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		log.Info().
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", c.Response().StatusCode()).
			Dur("duration", time.Since(start)).
			Msg("request")
		return err
	}
}

// auditWrites records successful financial writes. Best-effort: an audit
// insert failure is logged, never surfaced to the client.
func auditWrites(pool *pgxpool.Pool, log zerolog.Logger) fiber.Handler {
	actionFor := func(method, path string) (string, string) {
		switch {
		case method == fiber.MethodPost && path == "/api/payments":
			return audit.ActionPaymentRecord, "payment"
		case method == fiber.MethodPost && strings.HasSuffix(path, "/adjustments"):
			return audit.ActionLedgerAdjust, "ledger_entry"
		case method == fiber.MethodDelete && strings.Contains(path, "/ledger/"):
			return audit.ActionEntrySoftDelete, "ledger_entry"
		}
		return "", ""
	}

	return func(c *fiber.Ctx) error {
		err := c.Next()

		action, entity := actionFor(c.Method(), c.Path())
		if action == "" || err != nil || c.Response().StatusCode() >= 300 {
			return err
		}

		var userID *string
		if uid, ok := c.Locals("user_id").(string); ok && uid != "" {
			userID = &uid
		}
		ip := c.IP()

		go func(e audit.Entry) {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := audit.Write(ctx, pool, e); err != nil {
				log.Warn().Err(err).Str("action", e.Action).Msg("audit write failed")
			}
		}(audit.Entry{UserID: userID, Action: action, EntityType: entity, IP: &ip})

		return nil
	}
}

func buildJWTMiddleware(secret string) fiber.Handler {
	key := []byte(secret)

	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "missing token")
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid token")
		}

		token, err := jwt.Parse(parts[1], func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fiber.NewError(fiber.StatusUnauthorized, "invalid token")
			}
			return key, nil
		})
		if err != nil || !token.Valid {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid token")
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid token")
		}

		userID, ok := claims["user_id"].(string)
		if !ok || strings.TrimSpace(userID) == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid token")
		}

		c.Locals("user_id", userID)
		if role, ok := claims["role"].(string); ok {
			c.Locals("role", role)
		}

		return c.Next()
	}
}
