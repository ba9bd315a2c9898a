package gmti

import (
	"errors"
	"fmt"
)

// The chain classifies every failure into one of three kinds. Wrapping with
// Errorf (or fmt.Errorf with %w) preserves the kind for errors.Is checks at
// the bridge and CLI boundaries.
var (
	// ErrBufferExhausted means a pool hit its capacity ceiling. The chain
	// fails fast; exhaustion signals misconfiguration, never load to retry.
	ErrBufferExhausted = errors.New("buffer pool exhausted")

	// ErrInvalidInput covers empty or undersized sample slices and
	// out-of-bounds configuration values.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInternal covers lifecycle violations such as executing a stage
	// that was never initialized.
	ErrInternal = errors.New("internal error")
)

// Errorf wraps kind with formatted context, keeping errors.Is(err, kind) true.
func Errorf(kind error, format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", kind, fmt.Sprintf(format, args...))
}
