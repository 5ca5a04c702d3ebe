package cache

import (
	"github.com/jmgilman/go/errors"

	"github.com/moeryomenko/weightedcache/internal/policies"
)

var (
	// ErrIndexOverflow means the order counter could not be packed.
	ErrIndexOverflow = policies.ErrIndexOverflow
	// ErrWeightOverflow means entry weights could not be rebased.
	ErrWeightOverflow = policies.ErrWeightOverflow
	// ErrInvalidConfiguration is returned for a non-positive capacity or a
	// negative size.
	ErrInvalidConfiguration = errors.New(errors.CodeInvalidConfig, "invalid cache configuration")
)
