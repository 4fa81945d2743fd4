package encoder

import (
	"errors"
	"fmt"
)

var (
	// ErrPrecondition is returned when the target runtime lacks a capability
	// that a derivation depends on. Nothing can be retried against it.
	ErrPrecondition = errors.New("target precondition failed")

	// ErrUnderivable means a character was requested before the rules able to
	// derive it were populated. It points at a derivation-order defect.
	ErrUnderivable = errors.New("character not derivable")
)

// Capability names a primitive the target runtime is assumed to provide.
type Capability string

const (
	CapFunctionFromText Capability = "function-from-text"
	CapRadix            Capability = "radix-conversion"
	CapPercentDecode    Capability = "percent-decode"
	CapPercentEncode    Capability = "percent-encode"
)

// PreconditionError reports the missing capability and the operation that
// needed it. Callers can use errors.As to detect it, or errors.Is against
// ErrPrecondition.
type PreconditionError struct {
	Capability Capability
	Op         string
}

// Error implements the error interface.
func (e *PreconditionError) Error() string {
	return fmt.Sprintf("%s: target lacks %s", e.Op, e.Capability)
}

// Unwrap allows errors.Is(err, ErrPrecondition).
func (e *PreconditionError) Unwrap() error {
	return ErrPrecondition
}

func underivable(r rune, stage string) error {
	return fmt.Errorf("%w: %q during %s", ErrUnderivable, r, stage)
}
