// Package service provides the player query and mutation service that
// backs the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/okian/roster/internal/adapters/repository"
	"github.com/okian/roster/internal/domain/filter"
	"github.com/okian/roster/internal/domain/model"
	"github.com/okian/roster/internal/domain/validation"
	"github.com/okian/roster/pkg/logger"
	"github.com/okian/roster/pkg/metrics"
)

// Operation names used in logs and metrics.
const (
	opCount  = "count"
	opList   = "list"
	opGet    = "get"
	opCreate = "create"
	opUpdate = "update"
	opDelete = "delete"
)

// Service answers player queries and applies validated changes to a Store.
// It holds no per-request state.
type Service struct {
	store           repository.Store
	validator       *validation.Validator
	defaultPageSize int
	logger          logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore sets the backing store.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithValidator sets the payload validator.
func WithValidator(v *validation.Validator) Option {
	return func(s *Service) {
		if v != nil {
			s.validator = v
		}
	}
}

// WithDefaultPageSize sets the page size used when a request omits one.
func WithDefaultPageSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.defaultPageSize = size
		}
	}
}

// New constructs a Service. Without WithStore it runs on an in-memory store
// whose lifetime is bound to ctx.
func New(ctx context.Context, opts ...Option) *Service {
	s := &Service{
		defaultPageSize: filter.DefaultPageSize,
		logger:          logger.Get().Named("service"),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.validator == nil {
		s.validator = validation.New()
	}
	if s.store == nil {
		s.store = repository.NewMemoryStore(ctx)
	}
	return s
}

// Count returns how many players match c. A nil c counts every player.
func (s *Service) Count(ctx context.Context, c *filter.Criteria) (int, error) {
	defer s.track(opCount, time.Now())

	var pred filter.Predicate
	if c != nil {
		pred = filter.Build(*c)
	}
	n, err := s.store.Count(ctx, pred)
	if err != nil {
		return 0, s.fail(ctx, opCount, fmt.Errorf("count players: %w", err))
	}
	s.logger.Debug(ctx, "counted players", logger.String("predicate", pred.String()), logger.Int("count", n))
	metrics.RecordPlayerOperation(opCount, "ok")
	return n, nil
}

// List returns the page of players matching c in c.Order.
func (s *Service) List(ctx context.Context, c filter.Criteria) ([]model.Player, error) {
	defer s.track(opList, time.Now())

	page, err := c.Page.Normalize(s.defaultPageSize)
	if err != nil {
		return nil, s.reject(ctx, opList, err)
	}
	c.Page = page
	q := c.Query()

	players, err := s.store.Find(ctx, q)
	if err != nil {
		return nil, s.fail(ctx, opList, fmt.Errorf("find players: %w", err))
	}
	s.logger.Debug(ctx, "listed players",
		logger.String("predicate", q.Predicate.String()),
		logger.String("order", string(q.Order)),
		logger.Int("page", q.Page.Number),
		logger.Int("size", q.Page.Size),
		logger.Int("returned", len(players)),
	)
	metrics.RecordPlayerOperation(opList, "ok")
	return players, nil
}

// Get returns the player with id.
func (s *Service) Get(ctx context.Context, id int64) (model.Player, error) {
	defer s.track(opGet, time.Now())

	if err := s.validator.ValidateID(id); err != nil {
		return model.Player{}, s.reject(ctx, opGet, err)
	}
	p, err := s.load(ctx, opGet, id)
	if err != nil {
		return model.Player{}, err
	}
	metrics.RecordPlayerOperation(opGet, "ok")
	return p, nil
}

// Create validates pl, derives the level fields and stores a new player.
// Banned defaults to false.
func (s *Service) Create(ctx context.Context, pl model.Payload) (model.Player, error) {
	defer s.track(opCreate, time.Now())

	if err := s.validator.ValidateCreate(pl); err != nil {
		return model.Player{}, s.reject(ctx, opCreate, err)
	}
	var p model.Player
	p.Apply(pl)

	stored, err := s.store.Insert(ctx, p)
	if err != nil {
		return model.Player{}, s.fail(ctx, opCreate, fmt.Errorf("insert player: %w", err))
	}
	s.logger.Debug(ctx, "created player", logger.Int64("id", stored.ID), logger.Int("level", stored.Level))
	metrics.RecordPlayerOperation(opCreate, "ok")
	return stored, nil
}

// Update applies the present fields of pl to player id. Level fields are
// recomputed only when experience is supplied. Nothing is persisted when
// validation fails.
func (s *Service) Update(ctx context.Context, id int64, pl model.Payload) (model.Player, error) {
	defer s.track(opUpdate, time.Now())

	if err := s.validator.ValidateID(id); err != nil {
		return model.Player{}, s.reject(ctx, opUpdate, err)
	}
	p, err := s.load(ctx, opUpdate, id)
	if err != nil {
		return model.Player{}, err
	}
	if err := s.validator.ValidateUpdate(pl); err != nil {
		return model.Player{}, s.reject(ctx, opUpdate, err)
	}
	p.Apply(pl)

	if err := s.store.Update(ctx, p); err != nil {
		return model.Player{}, s.fail(ctx, opUpdate, s.translate(id, err))
	}
	s.logger.Debug(ctx, "updated player", logger.Int64("id", id))
	metrics.RecordPlayerOperation(opUpdate, "ok")
	return p, nil
}

// Delete removes player id.
func (s *Service) Delete(ctx context.Context, id int64) error {
	defer s.track(opDelete, time.Now())

	if err := s.validator.ValidateID(id); err != nil {
		return s.reject(ctx, opDelete, err)
	}
	if _, err := s.load(ctx, opDelete, id); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return s.fail(ctx, opDelete, s.translate(id, err))
	}
	s.logger.Debug(ctx, "deleted player", logger.Int64("id", id))
	metrics.RecordPlayerOperation(opDelete, "ok")
	return nil
}

// Stats reports the total player count and the store backend.
func (s *Service) Stats(ctx context.Context) (model.Stats, error) {
	n, err := s.store.Count(ctx, filter.Predicate{})
	if err != nil {
		return model.Stats{}, fmt.Errorf("count players: %w", err)
	}
	return model.Stats{Players: n, Backend: s.store.Backend()}, nil
}

// Close releases the backing store.
func (s *Service) Close() error {
	return s.store.Close()
}

func (s *Service) load(ctx context.Context, op string, id int64) (model.Player, error) {
	p, err := s.store.Get(ctx, id)
	if err != nil {
		err = s.translate(id, err)
		if errors.Is(err, model.ErrNotFound) {
			return model.Player{}, s.reject(ctx, op, err)
		}
		return model.Player{}, s.fail(ctx, op, err)
	}
	return p, nil
}

// translate maps store sentinels onto domain errors.
func (s *Service) translate(id int64, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%w: id %d", model.ErrNotFound, id)
	}
	return err
}

// reject records a caller error: validation, bad id or missing player.
func (s *Service) reject(ctx context.Context, op string, err error) error {
	outcome := "invalid"
	if errors.Is(err, model.ErrNotFound) {
		outcome = "not_found"
	}
	for _, field := range rejectedFields(err) {
		metrics.RecordValidationFailure(field)
	}
	metrics.RecordPlayerOperation(op, outcome)
	s.logger.Debug(ctx, "rejected request", logger.String("op", op), logger.Error(err))
	return err
}

// fail records an unexpected backend error.
func (s *Service) fail(ctx context.Context, op string, err error) error {
	metrics.RecordPlayerOperation(op, "error")
	metrics.RecordErrorByComponent("service", op)
	s.logger.Error(ctx, "player operation failed",
		logger.String("op", op),
		logger.String("backend", s.store.Backend()),
		logger.Error(err),
	)
	return err
}

func (s *Service) track(op string, start time.Time) {
	metrics.RecordOperationLatency(op, float64(time.Since(start).Microseconds())/1000)
}

// rejectedFields collects the field names of every FieldError in err,
// including those joined by errors.Join.
func rejectedFields(err error) []string {
	var out []string
	var walk func(error)
	walk = func(e error) {
		if e == nil {
			return
		}
		if fe, ok := e.(*model.FieldError); ok {
			out = append(out, fe.Field)
			return
		}
		if joined, ok := e.(interface{ Unwrap() []error }); ok {
			for _, inner := range joined.Unwrap() {
				walk(inner)
			}
			return
		}
		walk(errors.Unwrap(e))
	}
	walk(err)
	return out
}
