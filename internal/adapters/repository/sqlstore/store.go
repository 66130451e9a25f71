// Package sqlstore persists players in a relational database through sqlx.
// PostgreSQL (lib/pq) and SQLite (modernc.org/sqlite) are supported.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"  // postgres driver
	_ "modernc.org/sqlite" // sqlite driver

	"github.com/okian/roster/internal/adapters/repository"
	"github.com/okian/roster/internal/domain/filter"
	"github.com/okian/roster/internal/domain/model"
	"github.com/okian/roster/pkg/metrics"
)

// Supported driver names as registered with database/sql.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

const playerColumns = "id, name, title, race, profession, experience, level, until_next_level, birthday, banned"

// Store implements repository.Store on top of *sqlx.DB.
type Store struct {
	db     *sqlx.DB
	driver string
}

var _ repository.Store = (*Store)(nil)

// New opens a connection for driver, pings it and applies the schema.
func New(ctx context.Context, driver, dsn string) (*Store, error) {
	if driver != DriverPostgres && driver != DriverSQLite {
		return nil, fmt.Errorf("unsupported sql driver %q", driver)
	}
	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if driver == DriverSQLite {
		// single writer; avoids SQLITE_BUSY under concurrent requests
		db.SetMaxOpenConns(1)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}

	s := NewWithDB(db, driver)
	if err := s.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// NewWithDB wraps an existing handle. The schema is not touched.
func NewWithDB(db *sqlx.DB, driver string) *Store {
	return &Store{db: db, driver: driver}
}

// Migrate creates the players table when it does not exist.
func (s *Store) Migrate(ctx context.Context) error {
	idColumn := "id BIGSERIAL PRIMARY KEY"
	if s.driver == DriverSQLite {
		idColumn = "id INTEGER PRIMARY KEY AUTOINCREMENT"
	}
	ddl := `CREATE TABLE IF NOT EXISTS players (
	` + idColumn + `,
	name VARCHAR(12) NOT NULL,
	name_lower TEXT NOT NULL,
	title VARCHAR(30) NOT NULL,
	title_lower TEXT NOT NULL,
	race VARCHAR(16) NOT NULL,
	profession VARCHAR(16) NOT NULL,
	experience BIGINT NOT NULL,
	level INTEGER NOT NULL,
	until_next_level BIGINT NOT NULL,
	birthday BIGINT NOT NULL,
	banned BOOLEAN NOT NULL DEFAULT FALSE
)`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("migrate players: %w", err)
	}
	return nil
}

// Backend implements repository.Store.
func (s *Store) Backend() string { return s.driver }

// Close releases the connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// Find implements repository.Store.
func (s *Store) Find(ctx context.Context, q filter.Query) ([]model.Player, error) {
	defer s.observe(metrics.RecordRepositoryQueryLatency, time.Now())

	if q.Page.Overflows() {
		return []model.Player{}, nil
	}
	where, args := whereClause(q.Predicate)
	var sb strings.Builder
	sb.WriteString("SELECT " + playerColumns + " FROM players")
	sb.WriteString(where)
	fmt.Fprintf(&sb, " ORDER BY %s ASC", filter.Column(q.Order))
	if filter.Column(q.Order) != "id" {
		sb.WriteString(", id ASC")
	}
	if q.Page.Size > 0 {
		sb.WriteString(" LIMIT ? OFFSET ?")
		args = append(args, q.Page.Size, q.Page.Offset())
	}

	var rows []playerRow
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(sb.String()), args...); err != nil {
		return nil, fmt.Errorf("select players: %w", err)
	}
	out := make([]model.Player, len(rows))
	for i, r := range rows {
		out[i] = r.toModel()
	}
	return out, nil
}

// Count implements repository.Store.
func (s *Store) Count(ctx context.Context, pred filter.Predicate) (int, error) {
	defer s.observe(metrics.RecordRepositoryQueryLatency, time.Now())

	where, args := whereClause(pred)
	var n int
	if err := s.db.GetContext(ctx, &n, s.db.Rebind("SELECT COUNT(*) FROM players"+where), args...); err != nil {
		return 0, fmt.Errorf("count players: %w", err)
	}
	return n, nil
}

// Get implements repository.Store.
func (s *Store) Get(ctx context.Context, id int64) (model.Player, error) {
	defer s.observe(metrics.RecordRepositoryQueryLatency, time.Now())

	var r playerRow
	err := s.db.GetContext(ctx, &r, s.db.Rebind("SELECT "+playerColumns+" FROM players WHERE id = ?"), id)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Player{}, repository.ErrNotFound
	}
	if err != nil {
		return model.Player{}, fmt.Errorf("get player %d: %w", id, err)
	}
	return r.toModel(), nil
}

const insertPlayer = `INSERT INTO players
	(name, name_lower, title, title_lower, race, profession, experience, level, until_next_level, birthday, banned)
	VALUES (:name, :name_lower, :title, :title_lower, :race, :profession, :experience, :level, :until_next_level, :birthday, :banned)
	RETURNING id`

// Insert implements repository.Store.
func (s *Store) Insert(ctx context.Context, p model.Player) (model.Player, error) {
	defer s.observe(metrics.RecordRepositoryWriteLatency, time.Now())

	query, args, err := sqlx.Named(insertPlayer, fromModel(p))
	if err != nil {
		return model.Player{}, fmt.Errorf("bind insert: %w", err)
	}
	var id int64
	if err := s.db.QueryRowxContext(ctx, s.db.Rebind(query), args...).Scan(&id); err != nil {
		return model.Player{}, fmt.Errorf("insert player: %w", err)
	}
	p.ID = id
	return p, nil
}

const updatePlayer = `UPDATE players SET
	name = :name, name_lower = :name_lower, title = :title, title_lower = :title_lower, race = :race, profession = :profession,
	experience = :experience, level = :level, until_next_level = :until_next_level,
	birthday = :birthday, banned = :banned
	WHERE id = :id`

// Update implements repository.Store.
func (s *Store) Update(ctx context.Context, p model.Player) error {
	defer s.observe(metrics.RecordRepositoryWriteLatency, time.Now())

	res, err := s.db.NamedExecContext(ctx, updatePlayer, fromModel(p))
	if err != nil {
		return fmt.Errorf("update player %d: %w", p.ID, err)
	}
	return affected(res)
}

// Delete implements repository.Store.
func (s *Store) Delete(ctx context.Context, id int64) error {
	defer s.observe(metrics.RecordRepositoryWriteLatency, time.Now())

	res, err := s.db.ExecContext(ctx, s.db.Rebind("DELETE FROM players WHERE id = ?"), id)
	if err != nil {
		return fmt.Errorf("delete player %d: %w", id, err)
	}
	return affected(res)
}

func affected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (s *Store) observe(record func(backend string, ms float64), start time.Time) {
	record(s.driver, float64(time.Since(start).Microseconds())/1000)
}
