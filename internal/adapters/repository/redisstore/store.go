// Package redisstore persists players in Redis.
//
// Layout:
//   - roster:player:{id} -> JSON document of the player
//   - roster:players     -> set of stored ids
//   - roster:player:seq  -> id sequence, advanced with INCR
//
// Queries load every member and evaluate the predicate in-process.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/okian/roster/internal/adapters/repository"
	"github.com/okian/roster/internal/domain/filter"
	"github.com/okian/roster/internal/domain/model"
	"github.com/okian/roster/pkg/metrics"
)

const (
	backendRedis = "redis"
	membersKey   = "roster:players"
	sequenceKey  = "roster:player:seq"
)

func playerKey(id int64) string {
	return "roster:player:" + strconv.FormatInt(id, 10)
}

// document is the stored JSON form. Birthday is epoch milliseconds.
type document struct {
	ID             int64  `json:"id"`
	Name           string `json:"name"`
	Title          string `json:"title"`
	Race           string `json:"race"`
	Profession     string `json:"profession"`
	Experience     int64  `json:"experience"`
	Level          int    `json:"level"`
	UntilNextLevel int64  `json:"untilNextLevel"`
	Birthday       int64  `json:"birthday"`
	Banned         bool   `json:"banned"`
}

func encode(p model.Player) ([]byte, error) {
	return json.Marshal(document{
		ID:             p.ID,
		Name:           p.Name,
		Title:          p.Title,
		Race:           string(p.Race),
		Profession:     string(p.Profession),
		Experience:     p.Experience,
		Level:          p.Level,
		UntilNextLevel: p.UntilNextLevel,
		Birthday:       p.BirthdayMillis(),
		Banned:         p.Banned,
	})
}

func decode(data []byte) (model.Player, error) {
	var d document
	if err := json.Unmarshal(data, &d); err != nil {
		return model.Player{}, err
	}
	return model.Player{
		ID:             d.ID,
		Name:           d.Name,
		Title:          d.Title,
		Race:           model.Race(d.Race),
		Profession:     model.Profession(d.Profession),
		Experience:     d.Experience,
		Level:          d.Level,
		UntilNextLevel: d.UntilNextLevel,
		Birthday:       time.UnixMilli(d.Birthday),
		Banned:         d.Banned,
	}, nil
}

// Store implements repository.Store on a Redis client.
type Store struct {
	client *redis.Client
}

var _ repository.Store = (*Store)(nil)

// New connects to the server described by url (redis://host:port/db).
func New(ctx context.Context, url string) (*Store, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return &Store{client: client}, nil
}

// NewWithClient creates a Store using an existing client.
func NewWithClient(client *redis.Client) *Store {
	return &Store{client: client}
}

// Backend implements repository.Store.
func (s *Store) Backend() string { return backendRedis }

// Close closes the Redis connection.
func (s *Store) Close() error {
	return s.client.Close()
}

// Find implements repository.Store.
func (s *Store) Find(ctx context.Context, q filter.Query) ([]model.Player, error) {
	defer observe(metrics.RecordRepositoryQueryLatency, time.Now())

	all, err := s.loadAll(ctx)
	if err != nil {
		return nil, err
	}
	return filter.Apply(all, q), nil
}

// Count implements repository.Store.
func (s *Store) Count(ctx context.Context, pred filter.Predicate) (int, error) {
	defer observe(metrics.RecordRepositoryQueryLatency, time.Now())

	if pred.Empty() {
		n, err := s.client.SCard(ctx, membersKey).Result()
		if err != nil {
			return 0, fmt.Errorf("count players: %w", err)
		}
		return int(n), nil
	}
	all, err := s.loadAll(ctx)
	if err != nil {
		return 0, err
	}
	return filter.Count(all, pred), nil
}

// Get implements repository.Store.
func (s *Store) Get(ctx context.Context, id int64) (model.Player, error) {
	defer observe(metrics.RecordRepositoryQueryLatency, time.Now())

	data, err := s.client.Get(ctx, playerKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return model.Player{}, repository.ErrNotFound
		}
		return model.Player{}, fmt.Errorf("get player %d: %w", id, err)
	}
	p, err := decode(data)
	if err != nil {
		return model.Player{}, fmt.Errorf("decode player %d: %w", id, err)
	}
	return p, nil
}

// Insert implements repository.Store.
func (s *Store) Insert(ctx context.Context, p model.Player) (model.Player, error) {
	defer observe(metrics.RecordRepositoryWriteLatency, time.Now())

	id, err := s.client.Incr(ctx, sequenceKey).Result()
	if err != nil {
		return model.Player{}, fmt.Errorf("next player id: %w", err)
	}
	p.ID = id
	data, err := encode(p)
	if err != nil {
		return model.Player{}, err
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, playerKey(id), data, 0)
		pipe.SAdd(ctx, membersKey, id)
		return nil
	})
	if err != nil {
		return model.Player{}, fmt.Errorf("insert player %d: %w", id, err)
	}
	return p, nil
}

// Update implements repository.Store. The write only lands if the key exists.
func (s *Store) Update(ctx context.Context, p model.Player) error {
	defer observe(metrics.RecordRepositoryWriteLatency, time.Now())

	data, err := encode(p)
	if err != nil {
		return err
	}
	ok, err := s.client.SetXX(ctx, playerKey(p.ID), data, 0).Result()
	if err != nil {
		return fmt.Errorf("update player %d: %w", p.ID, err)
	}
	if !ok {
		return repository.ErrNotFound
	}
	return nil
}

// Delete implements repository.Store.
func (s *Store) Delete(ctx context.Context, id int64) error {
	defer observe(metrics.RecordRepositoryWriteLatency, time.Now())

	var del *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		del = pipe.Del(ctx, playerKey(id))
		pipe.SRem(ctx, membersKey, id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete player %d: %w", id, err)
	}
	if del.Val() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// loadAll fetches every member document. Ids whose key vanished between
// SMEMBERS and MGET are skipped.
func (s *Store) loadAll(ctx context.Context) ([]model.Player, error) {
	ids, err := s.client.SMembers(ctx, membersKey).Result()
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = "roster:player:" + id
	}
	vals, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("load players: %w", err)
	}

	out := make([]model.Player, 0, len(vals))
	for i, v := range vals {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		p, err := decode([]byte(raw))
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", keys[i], err)
		}
		out = append(out, p)
	}
	return out, nil
}

func observe(record func(backend string, ms float64), start time.Time) {
	record(backendRedis, float64(time.Since(start).Microseconds())/1000)
}
