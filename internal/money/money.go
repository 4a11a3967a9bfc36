package money

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrInvalidAmount = errors.New("invalid money amount")
)

// ShillingsToCents converts a shilling value (like 15000.50) to cents as int64 safely.
// Use ONLY when you must parse a decimal amount from an external payload.
// Internal callers pass cents directly.
func ShillingsToCents(shillings float64) (int64, error) {
	if math.IsNaN(shillings) || math.IsInf(shillings, 0) {
		return 0, ErrInvalidAmount
	}
	if shillings < 0 {
		return 0, ErrInvalidAmount
	}
	// Prevent overflow: int64 max ~9e18 => shillings max ~9e16
	if shillings > 9e16 {
		return 0, fmt.Errorf("%w: too large", ErrInvalidAmount)
	}
	cents := int64(math.Round(shillings * 100.0))
	if cents < 0 {
		return 0, ErrInvalidAmount
	}
	return cents, nil
}

// CentsToShillingsString formats cents as a decimal string without going through floats.
func CentsToShillingsString(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	sh := cents / 100
	ct := cents % 100
	return fmt.Sprintf("%s%d.%02d", sign, sh, ct)
}

// ValidateCents rejects non-positive amounts. Every charge and payment amount
// in the system is strictly positive; direction lives in the ledger entry
// type, never in the sign.
func ValidateCents(cents int64) error {
	if cents <= 0 {
		return fmt.Errorf("%w: must be positive", ErrInvalidAmount)
	}
	return nil
}
