package cia

import "fmt"

// Sentinel errors for malformed input, the error kind a caller can recover
// from before any search node is ever created. Wrap one of these with
// fmt.Errorf("...: %w", ...) so callers can errors.Is against it.
var (
	ErrDimensionMismatch   = fmt.Errorf("cia: dimension mismatch")
	ErrInvalidFraction     = fmt.Errorf("cia: relaxed fraction out of [0,1]")
	ErrColumnNotNormalized = fmt.Errorf("cia: relaxed column does not sum to 1")
	ErrNonPositiveTimeStep = fmt.Errorf("cia: non-positive time step")
	ErrInvalidActivePre    = fmt.Errorf("cia: b_active_pre out of range")
	ErrUnknownStrategy     = fmt.Errorf("cia: unknown search strategy")
	ErrNoInstance          = fmt.Errorf("cia: engine has no problem instance")
	ErrInvalidWarmStart    = fmt.Errorf("cia: warm start b_bin is not a valid binary assignment")
	ErrEngineNotIdle       = fmt.Errorf("cia: engine is not idle")
)

// InvariantViolation signals a defensive check inside the bounding kernel
// caught a state that should be unreachable if the kernel is correct (for
// example a child whose sigma would exceed its switch cap after admission).
// It is a programmer error, not a user-recoverable one: Engine.Run recovers
// it at the top level and returns it wrapped as a normal error rather than
// letting it crash the host process.
type InvariantViolation struct {
	Where  string
	Detail string
}

func (e *InvariantViolation) Error() string {
	return fmt.Sprintf("cia: internal invariant violated in %s: %s", e.Where, e.Detail)
}

func panicInvariant(where, detail string, args ...interface{}) {
	panic(&InvariantViolation{Where: where, Detail: fmt.Sprintf(detail, args...)})
}
