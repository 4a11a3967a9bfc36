package momo

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/Techgrind-Sharlyne/rentpilot-prod-sub002/internal/money"
	"github.com/Techgrind-Sharlyne/rentpilot-prod-sub002/internal/payments"
)

// webhookPayload matches the provider's C2B confirmation body after their
// gateway normalizes it.
type webhookPayload struct {
	TransID    string  `json:"trans_id"`
	Amount     float64 `json:"amount"` // decimal shillings as sent by the provider
	MSISDN     string  `json:"msisdn"`
	TransTime  string  `json:"trans_time"` // RFC3339
	AccountRef string  `json:"account_ref"`
}

// VerifySignature checks the HMAC-SHA256 of the raw body against the shared
// webhook secret.
func VerifySignature(rawBody []byte, signature, secret string) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(rawBody)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// WebhookHandler ingests provider payment confirmations. Transport
// authenticity (signature) is checked here; everything after the parse is
// the gate's job.
func WebhookHandler(gate *Gate, provider, secret string, log zerolog.Logger, onApplied func(ctx context.Context, res *Result)) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := c.Body()
		sig := c.Get("X-Momo-Signature")

		if secret == "" || sig == "" || !VerifySignature(raw, sig, secret) {
			return c.Status(fiber.StatusUnauthorized).SendString("invalid signature")
		}

		var payload webhookPayload
		if err := json.Unmarshal(raw, &payload); err != nil {
			return c.Status(fiber.StatusBadRequest).SendString("bad payload")
		}
		if strings.TrimSpace(payload.TransID) == "" || strings.TrimSpace(payload.MSISDN) == "" {
			return c.Status(fiber.StatusBadRequest).SendString("trans_id and msisdn required")
		}

		cents, err := money.ShillingsToCents(payload.Amount)
		if err != nil || cents == 0 {
			return c.Status(fiber.StatusBadRequest).SendString("invalid amount")
		}

		paidAt := time.Now().UTC()
		if strings.TrimSpace(payload.TransTime) != "" {
			if t, err := time.Parse(time.RFC3339, payload.TransTime); err == nil {
				paidAt = t
			}
		}

		res, err := gate.HandleExternalPayment(c.UserContext(), Delivery{
			Provider:     provider,
			ProviderTxID: payload.TransID,
			AmountCents:  cents,
			MSISDN:       payload.MSISDN,
			PaidAt:       paidAt,
			AccountRef:   payload.AccountRef,
		})
		if err != nil {
			switch {
			case errors.Is(err, payments.ErrValidation):
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
			case errors.Is(err, ErrUnknownPayer):
				// The key was not reserved; the provider may retry once the
				// msisdn is linked to a tenant.
				log.Warn().Str("msisdn", payload.MSISDN).Str("trans_id", payload.TransID).Msg("webhook payer not found")
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "payer not found"})
			default:
				log.Error().Err(err).Str("trans_id", payload.TransID).Msg("webhook recording failed")
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "recording failed"})
			}
		}

		if !res.Duplicate && onApplied != nil {
			onApplied(c.UserContext(), res)
		}

		return c.JSON(res)
	}
}
