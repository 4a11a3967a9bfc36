package reports

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrTokenNotFound = errors.New("receipt token not found or expired")

const tokenTTL = 7 * 24 * time.Hour

// TokenStore issues and resolves short-lived receipt download tokens so a
// receipt link can be shared (e.g. over WhatsApp) without authentication.
type TokenStore struct {
	Pool *pgxpool.Pool
}

func NewTokenStore(pool *pgxpool.Pool) *TokenStore {
	return &TokenStore{Pool: pool}
}

// Issue creates a fresh token for a payment receipt.
func (s *TokenStore) Issue(ctx context.Context, paymentID string) (string, error) {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	token := hex.EncodeToString(buf)

	_, err := s.Pool.Exec(ctx,
		`INSERT INTO receipt_tokens (token, payment_id, expires_at)
		 VALUES ($1, $2::uuid, $3)`,
		token, paymentID, time.Now().UTC().Add(tokenTTL),
	)
	if err != nil {
		return "", err
	}
	return token, nil
}

// Resolve maps a token back to its payment. Expired tokens behave exactly
// like unknown ones.
func (s *TokenStore) Resolve(ctx context.Context, token string) (string, error) {
	var paymentID string
	err := s.Pool.QueryRow(ctx,
		`SELECT payment_id::text FROM receipt_tokens
		 WHERE token = $1 AND expires_at > NOW()`,
		token,
	).Scan(&paymentID)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrTokenNotFound
	}
	if err != nil {
		return "", err
	}
	return paymentID, nil
}
