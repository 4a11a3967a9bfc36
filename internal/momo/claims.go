package momo

import (
	"context"
	"errors"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	claimPending = "pending"
	claimApplied = "applied"
)

// PostgresClaims backs the idempotency gate with the momo_events table.
// Reserve relies on the unique index on idempotency_key: the INSERT either
// lands or hits the conflict, there is no read-then-write window.
type PostgresClaims struct {
	Pool *pgxpool.Pool
}

func NewPostgresClaims(pool *pgxpool.Pool) *PostgresClaims {
	return &PostgresClaims{Pool: pool}
}

func (c *PostgresClaims) Reserve(ctx context.Context, key string) (bool, error) {
	tag, err := c.Pool.Exec(ctx,
		`INSERT INTO momo_events (idempotency_key, status)
		 VALUES ($1, $2)
		 ON CONFLICT (idempotency_key) DO NOTHING`,
		key, claimPending,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (c *PostgresClaims) Complete(ctx context.Context, key, paymentID string) error {
	_, err := c.Pool.Exec(ctx,
		`UPDATE momo_events SET status = $2, payment_id = $3::uuid, applied_at = NOW()
		 WHERE idempotency_key = $1`,
		key, claimApplied, paymentID,
	)
	return err
}

func (c *PostgresClaims) Release(ctx context.Context, key string) error {
	_, err := c.Pool.Exec(ctx,
		`DELETE FROM momo_events WHERE idempotency_key = $1 AND status = $2`,
		key, claimPending,
	)
	return err
}

func (c *PostgresClaims) FindPayment(ctx context.Context, key string) (string, bool, error) {
	var (
		status    string
		paymentID *string
	)
	err := c.Pool.QueryRow(ctx,
		`SELECT status, payment_id::text FROM momo_events WHERE idempotency_key = $1`,
		key,
	).Scan(&status, &paymentID)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	if status != claimApplied || paymentID == nil {
		return "", false, nil
	}
	return *paymentID, true, nil
}

// MemoryClaims is the in-memory ClaimStore for tests.
type MemoryClaims struct {
	mu     sync.Mutex
	claims map[string]memClaim
}

type memClaim struct {
	status    string
	paymentID string
}

func NewMemoryClaims() *MemoryClaims {
	return &MemoryClaims{claims: make(map[string]memClaim)}
}

func (c *MemoryClaims) Reserve(ctx context.Context, key string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.claims[key]; exists {
		return false, nil
	}
	c.claims[key] = memClaim{status: claimPending}
	return true, nil
}

func (c *MemoryClaims) Complete(ctx context.Context, key, paymentID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.claims[key] = memClaim{status: claimApplied, paymentID: paymentID}
	return nil
}

func (c *MemoryClaims) Release(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if cl, ok := c.claims[key]; ok && cl.status == claimPending {
		delete(c.claims, key)
	}
	return nil
}

func (c *MemoryClaims) FindPayment(ctx context.Context, key string) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	cl, ok := c.claims[key]
	if !ok || cl.status != claimApplied {
		return "", false, nil
	}
	return cl.paymentID, true, nil
}
