package policies

import "github.com/jmgilman/go/errors"

var (
	// ErrIndexOverflow is returned when every order value up to the limit is
	// in use and packing cannot reclaim any of them.
	ErrIndexOverflow = errors.New(errors.CodeInternal, "order counter overflow")
	// ErrWeightOverflow is returned when weights cannot be rebased far enough
	// to fit the next increment.
	ErrWeightOverflow = errors.New(errors.CodeInternal, "weight overflow")
)
