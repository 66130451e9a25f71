package repository

import (
	"context"
	"sync"
	"time"

	"github.com/okian/roster/internal/domain/filter"
	"github.com/okian/roster/internal/domain/model"
	"github.com/okian/roster/pkg/metrics"
)

const (
	backendMemory                = "memory"
	defaultMetricsUpdateInterval = 5 * time.Second
)

// MemoryStore keeps players in a map guarded by a RWMutex. Queries scan
// a snapshot of the values and evaluate the predicate in-process.
type MemoryStore struct {
	mu     sync.RWMutex
	byID   map[int64]model.Player
	nextID int64
	closed bool
	seed   []model.Player

	metricsUpdateInterval time.Duration

	wg       sync.WaitGroup
	stopChan chan struct{}
	stopOnce sync.Once
}

// NewMemoryStore constructs an in-memory store. The background metrics
// updater stops when ctx is done or Close is called.
func NewMemoryStore(ctx context.Context, opts ...Option) *MemoryStore {
	s := &MemoryStore{
		byID:                  make(map[int64]model.Player),
		metricsUpdateInterval: defaultMetricsUpdateInterval,
		stopChan:              make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.load(s.seed)
	s.seed = nil

	metrics.UpdateStoredPlayers(len(s.byID))
	s.startMetricsUpdater(ctx)
	return s
}

// load stores seeded players. Explicit ids are placed first so that id-less
// records are numbered after the highest of them and never collide.
func (s *MemoryStore) load(seed []model.Player) {
	for _, p := range seed {
		if p.ID > 0 {
			s.byID[p.ID] = p
			s.nextID = max(s.nextID, p.ID)
		}
	}
	for _, p := range seed {
		if p.ID <= 0 {
			s.nextID++
			p.ID = s.nextID
			s.byID[p.ID] = p
		}
	}
}

// Backend implements Store.
func (s *MemoryStore) Backend() string { return backendMemory }

// Find implements Store.
func (s *MemoryStore) Find(ctx context.Context, q filter.Query) ([]model.Player, error) {
	defer observe(metrics.RecordRepositoryQueryLatency, time.Now())

	all, err := s.values()
	if err != nil {
		return nil, err
	}
	return filter.Apply(all, q), nil
}

// Count implements Store.
func (s *MemoryStore) Count(ctx context.Context, pred filter.Predicate) (int, error) {
	defer observe(metrics.RecordRepositoryQueryLatency, time.Now())

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return 0, ErrClosed
	}
	if pred.Empty() {
		return len(s.byID), nil
	}
	n := 0
	for _, p := range s.byID {
		if pred.Match(p) {
			n++
		}
	}
	return n, nil
}

// Get implements Store.
func (s *MemoryStore) Get(ctx context.Context, id int64) (model.Player, error) {
	defer observe(metrics.RecordRepositoryQueryLatency, time.Now())

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return model.Player{}, ErrClosed
	}
	p, ok := s.byID[id]
	if !ok {
		metrics.RecordErrorByComponent("repository", "not_found")
		return model.Player{}, ErrNotFound
	}
	return p, nil
}

// Insert implements Store.
func (s *MemoryStore) Insert(ctx context.Context, p model.Player) (model.Player, error) {
	defer observe(metrics.RecordRepositoryWriteLatency, time.Now())

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return model.Player{}, ErrClosed
	}
	s.nextID++
	p.ID = s.nextID
	s.byID[p.ID] = p
	n := len(s.byID)
	s.mu.Unlock()

	metrics.UpdateStoredPlayers(n)
	return p, nil
}

// Update implements Store.
func (s *MemoryStore) Update(ctx context.Context, p model.Player) error {
	defer observe(metrics.RecordRepositoryWriteLatency, time.Now())

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if _, ok := s.byID[p.ID]; !ok {
		return ErrNotFound
	}
	s.byID[p.ID] = p
	return nil
}

// Delete implements Store.
func (s *MemoryStore) Delete(ctx context.Context, id int64) error {
	defer observe(metrics.RecordRepositoryWriteLatency, time.Now())

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	if _, ok := s.byID[id]; !ok {
		s.mu.Unlock()
		return ErrNotFound
	}
	delete(s.byID, id)
	n := len(s.byID)
	s.mu.Unlock()

	metrics.UpdateStoredPlayers(n)
	return nil
}

// Close stops the metrics updater. Later calls fail with ErrClosed.
func (s *MemoryStore) Close() error {
	s.stopOnce.Do(func() {
		close(s.stopChan)
		s.mu.Lock()
		s.closed = true
		s.mu.Unlock()
	})
	s.wg.Wait()
	return nil
}

func (s *MemoryStore) values() ([]model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}
	out := make([]model.Player, 0, len(s.byID))
	for _, p := range s.byID {
		out = append(out, p)
	}
	return out, nil
}

// startMetricsUpdater periodically publishes the record count.
func (s *MemoryStore) startMetricsUpdater(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.metricsUpdateInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stopChan:
				return
			case <-ticker.C:
				s.mu.RLock()
				n := len(s.byID)
				s.mu.RUnlock()
				metrics.UpdateStoredPlayers(n)
			}
		}
	}()
}

func observe(record func(backend string, ms float64), start time.Time) {
	record(backendMemory, float64(time.Since(start).Microseconds())/1000)
}
