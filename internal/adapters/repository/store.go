// Package repository defines the player store contract and an in-memory
// implementation. SQL and Redis implementations live in sub-packages.
package repository

import (
	"context"

	"github.com/okian/roster/internal/domain/filter"
	"github.com/okian/roster/internal/domain/model"
)

// Store provides read/write access to persisted players.
type Store interface {
	// Find returns the page of players matching q, ordered by q.Order.
	Find(ctx context.Context, q filter.Query) ([]model.Player, error)

	// Count returns how many players match pred.
	Count(ctx context.Context, pred filter.Predicate) (int, error)

	// Get returns the player with id or ErrNotFound.
	Get(ctx context.Context, id int64) (model.Player, error)

	// Insert stores p under a newly assigned id and returns the stored record.
	Insert(ctx context.Context, p model.Player) (model.Player, error)

	// Update replaces the stored record with p.ID. Returns ErrNotFound if absent.
	Update(ctx context.Context, p model.Player) error

	// Delete removes the player with id. Returns ErrNotFound if absent.
	Delete(ctx context.Context, id int64) error

	// Backend names the implementation for logs and metrics.
	Backend() string

	Close() error
}
