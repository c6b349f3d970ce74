// Package store provides transactional persistence for projects, epics,
// tasks, tests, sessions, quality checks, analyses, proposals and prompt
// versions (spec.md §3). It is grounded in pkg/database/client.go of the
// teacher repo, but talks to Postgres through jackc/pgx/v5's native
// pgxpool instead of wrapping an ent-generated client — see DESIGN.md for
// why ent itself was dropped.
package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib" // register the pgx driver for golang-migrate
)

//go:embed migrations
var migrationsFS embed.FS

// Config holds Postgres connection settings. RawDSN is the libpq/pgx
// connection string rendered by pkg/config from yokeflow.yaml's store
// section (spec.md §6); the pool-tuning fields are optional and left at
// pgxpool's own defaults when zero.
type Config struct {
	RawDSN string

	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// DSN returns the connection string used both by pgxpool and by
// golang-migrate's postgres driver.
func (c Config) DSN() string {
	return c.RawDSN
}

// Store is the transactional persistence layer described in spec.md §4.1.
// It owns one pgx connection pool; every operation acquires and releases a
// connection from it rather than holding a long-lived transaction, per
// spec.md §5.
type Store struct {
	pool *pgxpool.Pool
}

// New connects to Postgres, runs embedded migrations and returns a ready
// Store.
func New(ctx context.Context, cfg Config) (*Store, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parsing pool config: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	if cfg.MaxConnIdleTime > 0 {
		poolCfg.MaxConnIdleTime = cfg.MaxConnIdleTime
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("opening pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	if err := runMigrations(cfg); err != nil {
		pool.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return &Store{pool: pool}, nil
}

// NewFromPool wraps an existing pool directly, without pinging it or
// running migrations.
func NewFromPool(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Close releases the underlying connection pool.
func (s *Store) Close() {
	s.pool.Close()
}

// Pool exposes the underlying pool for health checks.
func (s *Store) Pool() *pgxpool.Pool { return s.pool }

func runMigrations(cfg Config) error {
	entries, err := fs.ReadDir(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("reading embedded migrations: %w", err)
	}
	hasSQL := false
	for _, e := range entries {
		if !e.IsDir() && len(e.Name()) > 4 && e.Name()[len(e.Name())-4:] == ".sql" {
			hasSQL = true
			break
		}
	}
	if !hasSQL {
		return errors.New("no embedded migration files found")
	}

	sourceDriver, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("creating migration source: %w", err)
	}
	defer sourceDriver.Close()

	db, err := sql.Open("pgx", cfg.DSN())
	if err != nil {
		return fmt.Errorf("opening migration connection: %w", err)
	}
	defer db.Close()

	dbDriver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("creating postgres driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "yokeflow", dbDriver)
	if err != nil {
		return fmt.Errorf("creating migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("applying migrations: %w", err)
	}
	return nil
}

// Health reports connectivity and pool statistics, mirroring
// pkg/database/health.go in the teacher repo.
type Health struct {
	Status         string `json:"status"`
	ResponseTimeMS int64  `json:"response_time_ms"`
	TotalConns     int32  `json:"total_conns"`
	IdleConns      int32  `json:"idle_conns"`
	AcquiredConns  int32  `json:"acquired_conns"`
}

// Ping checks connectivity and reports pool statistics.
func (s *Store) Ping(ctx context.Context) (*Health, error) {
	start := time.Now()
	if err := s.pool.Ping(ctx); err != nil {
		return &Health{Status: "unhealthy", ResponseTimeMS: time.Since(start).Milliseconds()}, err
	}
	stat := s.pool.Stat()
	return &Health{
		Status:         "healthy",
		ResponseTimeMS: time.Since(start).Milliseconds(),
		TotalConns:     stat.TotalConns(),
		IdleConns:      stat.IdleConns(),
		AcquiredConns:  stat.AcquiredConns(),
	}, nil
}
