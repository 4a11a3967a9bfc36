package payments

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Techgrind-Sharlyne/rentpilot-prod-sub002/internal/events"
	"github.com/Techgrind-Sharlyne/rentpilot-prod-sub002/internal/ledger"
	"github.com/Techgrind-Sharlyne/rentpilot-prod-sub002/internal/money"
)

var (
	ErrValidation     = errors.New("validation failed")
	ErrTenantNotFound = fmt.Errorf("%w: tenant not found", ErrValidation)
)

// Recorder owns the one mutation path for payments: insert the payment row,
// append its CREDIT entry and recompute the summary in a single per-tenant
// unit of work. The broadcast happens after commit and can never delay or
// fail it.
type Recorder struct {
	Store     Store
	Publisher events.Publisher
	Log       zerolog.Logger
}

func NewRecorder(store Store, pub events.Publisher, log zerolog.Logger) *Recorder {
	return &Recorder{Store: store, Publisher: pub, Log: log}
}

func (r *Recorder) Record(ctx context.Context, in RecordInput) (*Result, error) {
	if strings.TrimSpace(in.TenantID) == "" {
		return nil, fmt.Errorf("%w: tenant id required", ErrValidation)
	}
	if err := money.ValidateCents(in.AmountCents); err != nil {
		return nil, fmt.Errorf("%w: amount must be positive", ErrValidation)
	}
	if in.Method == "" {
		in.Method = MethodManual
	}
	if in.Source == "" {
		in.Source = SourceCounter
	}
	if in.PaidAt.IsZero() {
		in.PaidAt = time.Now().UTC()
	}

	payment := Payment{
		ID:          uuid.NewString(),
		TenantID:    in.TenantID,
		UnitID:      in.UnitID,
		InvoiceID:   in.InvoiceID,
		AmountCents: in.AmountCents,
		Method:      in.Method,
		Source:      in.Source,
		TxID:        in.TxID,
		MSISDN:      in.MSISDN,
		PaidAt:      in.PaidAt,
		Status:      StatusApplied,
		Description: in.Description,
		Notes:       in.Notes,
	}

	var summary ledger.Summary
	err := r.Store.WithTenantTx(ctx, in.TenantID, func(tx Tx) error {
		due, found, err := tx.MonthlyDue(ctx, in.TenantID)
		if err != nil {
			return fmt.Errorf("load rent plan: %w", err)
		}
		if !found {
			return ErrTenantNotFound
		}

		if err := tx.InsertPayment(ctx, &payment); err != nil {
			return fmt.Errorf("insert payment: %w", err)
		}

		desc := "rent payment"
		if payment.Description != nil && *payment.Description != "" {
			desc = *payment.Description
		}
		entry := ledger.Entry{
			ID:          uuid.NewString(),
			TenantID:    in.TenantID,
			UnitID:      in.UnitID,
			Type:        ledger.TypeCredit,
			AmountCents: in.AmountCents,
			EntryDate:   in.PaidAt,
			Description: desc,
			Meta:        map[string]any{ledger.MetaPaymentID: payment.ID},
		}
		if err := tx.AppendEntry(ctx, &entry); err != nil {
			return fmt.Errorf("append ledger entry: %w", err)
		}

		entries, err := tx.ListEntries(ctx, in.TenantID)
		if err != nil {
			return fmt.Errorf("recompute summary: %w", err)
		}
		summary = ledger.ComputeSummary(in.TenantID, entries, due, time.Now())
		return nil
	})
	if err != nil {
		return nil, err
	}

	res := &Result{Payment: payment, Summary: summary}
	r.broadcast(res)
	return res, nil
}

func (r *Recorder) broadcast(res *Result) {
	if r.Publisher == nil {
		return
	}
	now := time.Now().UTC()
	payload := eventPayload{TenantID: res.Payment.TenantID, Payment: res.Payment, Summary: res.Summary}

	r.Publisher.Publish(events.Event{
		Name:       events.PaymentApplied,
		TenantID:   res.Payment.TenantID,
		Payload:    payload,
		OccurredAt: now,
	})
	r.Publisher.Publish(events.Event{
		Name:       events.SummaryChanged,
		TenantID:   res.Payment.TenantID,
		Payload:    payload,
		OccurredAt: now,
	})
}

// eventPayload is the wire payload for both business events.
type eventPayload struct {
	TenantID string         `json:"tenant_id"`
	Payment  Payment        `json:"payment"`
	Summary  ledger.Summary `json:"summary"`
}
