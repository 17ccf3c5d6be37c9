package autodiff

import (
	"github.com/pkg/errors"
)

// Error taxonomy. Every error returned by this package wraps exactly one of
// these sentinels, so callers can branch with errors.Is.
var (
	// ErrShape reports operands whose shapes are incompatible with an operation's
	// contract, e.g. a Linear input whose feature count differs from the weight's.
	ErrShape = errors.New("shape error")

	// ErrGraph reports an ineligible backward call: on an untracked tensor, on a
	// leaf, on a non-scalar output without a seed gradient, or through a graph
	// whose saved state was already released.
	ErrGraph = errors.New("graph error")

	// ErrInvalidState reports a tensor or optimizer used in a state that does not
	// allow the requested operation, e.g. stepping with unallocated gradients.
	ErrInvalidState = errors.New("invalid state")
)

func shapeErrorf(format string, args ...any) error {
	return errors.Wrapf(ErrShape, format, args...)
}

func graphErrorf(format string, args ...any) error {
	return errors.Wrapf(ErrGraph, format, args...)
}

func invalidStateErrorf(format string, args ...any) error {
	return errors.Wrapf(ErrInvalidState, format, args...)
}
