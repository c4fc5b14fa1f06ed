package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as database/sql driver

	"onlyu-media/internal/shared/telemetry"
)

// Role names the process that owns a pool. Each role sizes the pool for its
// own access pattern against content_objects.
type Role string

const (
	// RoleAPI serves content list/create/soft-delete requests.
	RoleAPI Role = "api"
	// RoleWorker purges soft-deleted rows one message at a time per slot.
	RoleWorker Role = "worker"
	// RoleMigrate runs goose in a single session.
	RoleMigrate Role = "migrate"
)

// ErrNoDatabaseURL is returned when no connection string is configured.
var ErrNoDatabaseURL = errors.New("DATABASE_URL is empty")

// Options controls pool sizing for one role.
type Options struct {
	Role            Role
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxIdleTime time.Duration
	PingTimeout     time.Duration
}

// Tuning carries operator overrides from config. Zero values keep the role
// defaults.
type Tuning struct {
	MaxOpenConns int
	PingTimeout  time.Duration
}

// OptionsFor returns pool options for role. Worker pools are sized from the
// worker's concurrency so every in-flight purge can hold a connection.
func OptionsFor(role Role, workerConcurrency int, tuning Tuning) Options {
	opts := Options{Role: role, PingTimeout: 5 * time.Second}
	switch role {
	case RoleWorker:
		opts.MaxOpenConns = max(workerConcurrency, 1)
		opts.MaxIdleConns = 1
		opts.ConnMaxIdleTime = 30 * time.Second
		opts.PingTimeout = 3 * time.Second
	case RoleMigrate:
		opts.MaxOpenConns = 1
		opts.MaxIdleConns = 1
	default:
		opts.Role = RoleAPI
		opts.MaxOpenConns = 10
		opts.MaxIdleConns = 5
		opts.ConnMaxIdleTime = 2 * time.Minute
	}
	if tuning.MaxOpenConns > 0 {
		opts.MaxOpenConns = tuning.MaxOpenConns
		opts.MaxIdleConns = min(opts.MaxIdleConns, tuning.MaxOpenConns)
	}
	if tuning.PingTimeout > 0 {
		opts.PingTimeout = tuning.PingTimeout
	}
	return opts
}

var openDB = sql.Open

// Open opens a pgx-backed pool and pings it within opts.PingTimeout.
func Open(ctx context.Context, databaseURL string, opts Options) (*sql.DB, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return nil, ErrNoDatabaseURL
	}
	sqlDB, err := openDB("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open %s pool: %w", opts.Role, err)
	}
	sqlDB.SetMaxOpenConns(opts.MaxOpenConns)
	sqlDB.SetMaxIdleConns(opts.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Hour)
	if opts.ConnMaxIdleTime > 0 {
		sqlDB.SetConnMaxIdleTime(opts.ConnMaxIdleTime)
	}

	pingCtx, cancel := context.WithTimeout(ctx, opts.PingTimeout)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping %s pool: %w", opts.Role, err)
	}

	telemetry.Info("db.connected", map[string]any{
		"role":     string(opts.Role),
		"max_open": opts.MaxOpenConns,
	})
	return sqlDB, nil
}

var shared struct {
	mu sync.Mutex
	db *sql.DB
}

// Shared returns the process-wide pool, opening it on first use. A failed
// open is not remembered; the next caller tries again. Waiters are bounded by
// the opener's ping timeout.
func Shared(ctx context.Context, databaseURL string, opts Options) (*sql.DB, error) {
	shared.mu.Lock()
	defer shared.mu.Unlock()
	if shared.db != nil {
		return shared.db, nil
	}
	sqlDB, err := Open(ctx, databaseURL, opts)
	if err != nil {
		return nil, err
	}
	shared.db = sqlDB
	return sqlDB, nil
}
