package repository

import (
	"time"

	"github.com/okian/roster/internal/domain/model"
)

// Option applies a configuration option to the MemoryStore.
type Option func(*MemoryStore)

// WithMetricsUpdateInterval sets the interval for background metrics updates.
func WithMetricsUpdateInterval(interval time.Duration) Option {
	return func(s *MemoryStore) {
		if interval > 0 {
			s.metricsUpdateInterval = interval
		}
	}
}

// WithSeed preloads players. Records keep their ids when positive and the
// id sequence continues after the highest one.
func WithSeed(players ...model.Player) Option {
	return func(s *MemoryStore) {
		s.seed = append(s.seed, players...)
	}
}
