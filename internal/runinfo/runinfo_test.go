package runinfo

import (
	"context"
	"testing"
)

func TestChargeExhausts(t *testing.T) {
	r := New(10)
	if err := r.Charge(4); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := r.Charge(4); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := r.Charge(4); err == nil {
		t.Fatal("expected fuel exhaustion")
	}
	var exhausted *ErrFuelExhausted
	if err := r.Charge(1); err == nil {
		t.Fatal("expected continued exhaustion")
	} else if _, ok := err.(*ErrFuelExhausted); !ok {
		t.Fatalf("wrong error type: %v", err)
	}
	_ = exhausted
}

func TestRemaining(t *testing.T) {
	r := New(100)
	r.Charge(30)
	if got := r.Remaining(); got != 70 {
		t.Fatalf("remaining = %d, want 70", got)
	}
}

func TestContextRoundTrip(t *testing.T) {
	r := New(5)
	ctx := WithRun(context.Background(), r)
	got, ok := FromContext(ctx)
	if !ok || got != r {
		t.Fatalf("got %v, %v", got, ok)
	}

	_, ok = FromContext(context.Background())
	if ok {
		t.Fatal("expected no run in a plain context")
	}
}
