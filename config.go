package cache

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/moeryomenko/weightedcache/internal/policies"
)

type config struct {
	locker sync.Locker
	logger zerolog.Logger
	limits policies.Limits
}

func newConfig(opts ...Option) config {
	cfg := config{
		locker: new(sync.Mutex),
		logger: zerolog.Nop(),
		limits: policies.DefaultLimits(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}
