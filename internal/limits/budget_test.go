package limits

import (
	"errors"
	"testing"
)

func TestBudgetCharge(t *testing.T) {
	b := NewBudget(10)
	if err := b.Charge(4); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := b.Charge(6); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err := b.Charge(1)
	var sl StepLimitError
	if !errors.As(err, &sl) || sl.Limit != 10 {
		t.Fatalf("expected step limit error, got %v", err)
	}
	if b.Used() != 10 {
		t.Fatalf("failed charge must not count, used=%d", b.Used())
	}
	b.Reset()
	if err := b.Charge(10); err != nil {
		t.Fatalf("reset budget should accept a full charge: %v", err)
	}
}

func TestBudgetUnlimited(t *testing.T) {
	b := NewBudget(0)
	if err := b.Charge(1_000_000); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var nilBudget *Budget
	if err := nilBudget.Charge(1); err != nil || nilBudget.Used() != 0 {
		t.Fatalf("nil budget should be unlimited")
	}
}
