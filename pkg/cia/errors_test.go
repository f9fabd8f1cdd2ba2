package cia

import (
	"errors"
	"testing"
)

func TestInvariantViolation_Error(t *testing.T) {
	err := &InvariantViolation{Where: "kernel.extend", Detail: "sigma exceeded cap"}
	want := "cia: internal invariant violated in kernel.extend: sigma exceeded cap"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestPanicInvariant_RecoveredByRun(t *testing.T) {
	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("panicInvariant did not panic")
		}
		iv, ok := r.(*InvariantViolation)
		if !ok {
			t.Fatalf("recovered value is %T, want *InvariantViolation", r)
		}
		if iv.Where != "test" {
			t.Errorf("Where = %q, want test", iv.Where)
		}
	}()
	panicInvariant("test", "detail %d", 7)
}

func TestSentinelErrors_AreDistinct(t *testing.T) {
	sentinels := []error{
		ErrDimensionMismatch,
		ErrInvalidFraction,
		ErrColumnNotNormalized,
		ErrNonPositiveTimeStep,
		ErrInvalidActivePre,
		ErrUnknownStrategy,
		ErrNoInstance,
		ErrInvalidWarmStart,
		ErrEngineNotIdle,
	}
	for i, a := range sentinels {
		for j, b := range sentinels {
			if i == j {
				continue
			}
			if errors.Is(a, b) {
				t.Errorf("sentinel %d unexpectedly matches sentinel %d (%v vs %v)", i, j, a, b)
			}
		}
	}
}
