package momo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/Techgrind-Sharlyne/rentpilot-prod-sub002/internal/payments"
)

var (
	ErrUnknownPayer = errors.New("payer does not resolve to a tenant")
	ErrInFlight     = errors.New("delivery is being processed by a concurrent request")
)

// Delivery is one provider notification after the transport layer verified
// its authenticity and normalized the payload.
type Delivery struct {
	Provider     string
	ProviderTxID string
	AmountCents  int64
	MSISDN       string
	PaidAt       time.Time
	AccountRef   string
}

// IdempotencyKey derives the claim key deterministically from the
// provider's own transaction identifier, so provider retries map to the
// same key.
func (d Delivery) IdempotencyKey() string {
	return d.Provider + "::" + d.ProviderTxID
}

// Result wraps the recording outcome; Duplicate marks a replayed delivery
// answered from the first delivery's state.
type Result struct {
	payments.Result
	Duplicate bool `json:"duplicate"`
}

// ClaimStore is the atomic check-and-reserve on the idempotency key.
// Reserve must be a single compare-and-reserve operation: of two
// concurrent calls with the same key exactly one gets true.
type ClaimStore interface {
	Reserve(ctx context.Context, key string) (bool, error)
	Complete(ctx context.Context, key, paymentID string) error
	Release(ctx context.Context, key string) error
	// FindPayment reports the payment a completed claim produced;
	// found=false with no error means the claim is still pending or gone.
	FindPayment(ctx context.Context, key string) (paymentID string, found bool, err error)
}

// TenantDirectory routes a payer to a tenant. Implemented by the tenants
// repository via msisdn lookup.
type TenantDirectory interface {
	FindByMSISDN(ctx context.Context, msisdn string) (tenantID string, unitID *string, found bool, err error)
}

// Gate sits between possibly-retried provider deliveries and the recorder,
// guaranteeing at most one payment per idempotency key.
type Gate struct {
	Claims   ClaimStore
	Tenants  TenantDirectory
	Recorder *payments.Recorder
	Store    payments.Store
	Log      zerolog.Logger

	// How long a losing concurrent delivery waits for the winner's result.
	waitInterval time.Duration
	waitAttempts int
}

func NewGate(claims ClaimStore, tenants TenantDirectory, recorder *payments.Recorder, store payments.Store, log zerolog.Logger) *Gate {
	return &Gate{
		Claims:       claims,
		Tenants:      tenants,
		Recorder:     recorder,
		Store:        store,
		Log:          log,
		waitInterval: 20 * time.Millisecond,
		waitAttempts: 100,
	}
}

// HandleExternalPayment applies one provider delivery exactly once.
// Resolution failures happen before the key is reserved, so a legitimate
// retry with corrected routing can still succeed. A failed recording
// releases the claim for the same reason.
func (g *Gate) HandleExternalPayment(ctx context.Context, d Delivery) (*Result, error) {
	if strings.TrimSpace(d.ProviderTxID) == "" {
		return nil, fmt.Errorf("%w: provider tx id required", payments.ErrValidation)
	}
	if d.AmountCents <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", payments.ErrValidation)
	}

	tenantID, unitID, found, err := g.Tenants.FindByMSISDN(ctx, d.MSISDN)
	if err != nil {
		return nil, fmt.Errorf("resolve payer: %w", err)
	}
	if !found {
		return nil, ErrUnknownPayer
	}

	key := d.IdempotencyKey()
	for attempt := 0; attempt < g.waitAttempts; attempt++ {
		claimed, err := g.Claims.Reserve(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("reserve idempotency key: %w", err)
		}

		if claimed {
			return g.record(ctx, key, tenantID, unitID, d)
		}

		// Someone else holds the key. If they finished, answer from their
		// payment; if they are mid-flight, wait for them.
		paymentID, done, err := g.Claims.FindPayment(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("look up duplicate: %w", err)
		}
		if done {
			return g.duplicate(ctx, paymentID)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(g.waitInterval):
		}
	}
	return nil, ErrInFlight
}

func (g *Gate) record(ctx context.Context, key, tenantID string, unitID *string, d Delivery) (*Result, error) {
	desc := "mobile money payment " + d.ProviderTxID
	res, err := g.Recorder.Record(ctx, payments.RecordInput{
		TenantID:    tenantID,
		UnitID:      unitID,
		AmountCents: d.AmountCents,
		Method:      payments.MethodMobileMoney,
		Source:      payments.SourceWebhook,
		TxID:        &d.ProviderTxID,
		MSISDN:      &d.MSISDN,
		PaidAt:      d.PaidAt,
		Description: &desc,
	})
	if err != nil {
		// Give the provider's retry a clean slate; the failure already
		// rolled back, so nothing was credited.
		if relErr := g.Claims.Release(ctx, key); relErr != nil {
			g.Log.Error().Err(relErr).Str("key", key).Msg("release claim after failed recording")
		}
		return nil, err
	}

	if err := g.Claims.Complete(ctx, key, res.Payment.ID); err != nil {
		// The payment is committed; a dangling pending claim still blocks
		// re-crediting, so log and return success.
		g.Log.Error().Err(err).Str("key", key).Msg("mark claim complete")
	}

	return &Result{Result: *res}, nil
}

func (g *Gate) duplicate(ctx context.Context, paymentID string) (*Result, error) {
	p, err := g.Store.GetPayment(ctx, paymentID)
	if err != nil {
		return nil, fmt.Errorf("load duplicate payment: %w", err)
	}
	summary, err := g.Store.SummaryFor(ctx, p.TenantID, time.Now())
	if err != nil {
		return nil, fmt.Errorf("summarize duplicate: %w", err)
	}
	return &Result{
		Result:    payments.Result{Payment: *p, Summary: summary},
		Duplicate: true,
	}, nil
}
