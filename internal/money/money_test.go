package money

import (
	"math"
	"testing"
)

func TestShillingsToCents(t *testing.T) {
	tests := []struct {
		name      string
		shillings float64
		want      int64
		wantErr   bool
	}{
		{"whole", 15000, 1500000, false},
		{"fraction", 12.34, 1234, false},
		{"rounds half up", 0.005, 1, false},
		{"zero", 0, 0, false},
		{"negative", -1, 0, true},
		{"NaN", math.NaN(), 0, true},
		{"Inf", math.Inf(1), 0, true},
		{"too large", 1e17, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ShillingsToCents(tt.shillings)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ShillingsToCents(%v) err = %v, wantErr %v", tt.shillings, err, tt.wantErr)
			}
			if err == nil && got != tt.want {
				t.Errorf("ShillingsToCents(%v) = %d, want %d", tt.shillings, got, tt.want)
			}
		})
	}
}

func TestCentsToShillingsString(t *testing.T) {
	tests := []struct {
		cents int64
		want  string
	}{
		{1500000, "15000.00"},
		{1234, "12.34"},
		{5, "0.05"},
		{0, "0.00"},
		{-1234, "-12.34"},
	}

	for _, tt := range tests {
		if got := CentsToShillingsString(tt.cents); got != tt.want {
			t.Errorf("CentsToShillingsString(%d) = %s, want %s", tt.cents, got, tt.want)
		}
	}
}

func TestValidateCents(t *testing.T) {
	if err := ValidateCents(1); err != nil {
		t.Errorf("ValidateCents(1) = %v, want nil", err)
	}
	if err := ValidateCents(0); err == nil {
		t.Error("ValidateCents(0) = nil, want error")
	}
	if err := ValidateCents(-100); err == nil {
		t.Error("ValidateCents(-100) = nil, want error")
	}
}
