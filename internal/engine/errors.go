package engine

import "fmt"

// InvariantViolation marks a fatal condition the engine detects: a
// divergence between the id index and the level contents, seen as a
// failed insert, shrink or remove of an order the engine has just looked
// up. These are bugs, not user errors, so they panic rather than return a
// RejectReason. Aggregate level quantity overflow is fatal too, but it
// panics inside book.PriceLevel.Insert with a plain string value, not an
// InvariantViolation.
type InvariantViolation struct {
	msg string
}

func (e *InvariantViolation) Error() string { return "engine: invariant violation: " + e.msg }

func invariantViolation(format string, args ...any) {
	panic(&InvariantViolation{msg: fmt.Sprintf(format, args...)})
}
