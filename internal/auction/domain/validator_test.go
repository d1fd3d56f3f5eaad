package domain

import (
	"errors"
	"testing"
)

// TestValidateRejectsEqualAmount ensures a bid matching the current price loses.
func TestValidateRejectsEqualAmount(t *testing.T) {
	if err := Validate(100, 100); !errors.Is(err, ErrBidTooLow) {
		t.Fatalf("expected ErrBidTooLow, got %v", err)
	}
}

// TestValidateRejectsLowerAmount ensures a bid below the current price loses.
func TestValidateRejectsLowerAmount(t *testing.T) {
	if err := Validate(99, 100); !errors.Is(err, ErrBidTooLow) {
		t.Fatalf("expected ErrBidTooLow, got %v", err)
	}
	if err := Validate(-5, 0); !errors.Is(err, ErrBidTooLow) {
		t.Fatalf("expected ErrBidTooLow for negative amount, got %v", err)
	}
}

// TestValidateAcceptsAnyStrictlyGreaterAmount ensures there is no increment floor.
func TestValidateAcceptsAnyStrictlyGreaterAmount(t *testing.T) {
	if err := Validate(101, 100); err != nil {
		t.Fatalf("expected accept, got %v", err)
	}
	if err := Validate(1, 0); err != nil {
		t.Fatalf("expected accept, got %v", err)
	}
}
