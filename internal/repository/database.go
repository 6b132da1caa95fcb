package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

// DBTX is the part of pgx the repositories use. *pgxpool.Pool, pgx.Tx and
// pgxmock pools all satisfy it.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Database holds the database connection pool and provides access to repositories
type Database struct {
	Pool *pgxpool.Pool
	conn DBTX

	// Repositories
	Teams     *TeamRepository
	Players   *PlayerRepository
	Games     *GameRepository
	BoxScores *BoxScoreRepository
}

// Config holds database configuration
type Config struct {
	Host     string
	Port     string
	User     string
	Password string
	Database string
	SSLMode  string
}

// NewDatabase creates a new database connection pool and initializes repositories
func NewDatabase(ctx context.Context, cfg Config) (*Database, error) {
	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.Database,
		cfg.SSLMode,
	)

	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	// A sync run is sequential; a handful of connections covers it plus the status server
	poolConfig.MaxConns = 5
	poolConfig.MinConns = 1
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info().
		Str("host", cfg.Host).
		Str("port", cfg.Port).
		Str("database", cfg.Database).
		Msg("Successfully connected to database")

	db := NewWithConn(pool)
	db.Pool = pool
	return db, nil
}

// NewWithConn wires the repositories over an existing connection
func NewWithConn(conn DBTX) *Database {
	db := &Database{conn: conn}

	db.Teams = &TeamRepository{db: db}
	db.Players = &PlayerRepository{db: db}
	db.Games = &GameRepository{db: db}
	db.BoxScores = &BoxScoreRepository{db: db}

	return db
}

// Close closes the database connection pool
func (db *Database) Close() {
	if db.Pool != nil {
		db.Pool.Close()
		log.Info().Msg("Database connection pool closed")
	}
}

// Health checks if the database is healthy
func (db *Database) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if _, err := db.conn.Exec(ctx, "SELECT 1"); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}

	return nil
}

// PoolStats is a snapshot of connection pool usage
type PoolStats struct {
	Total    int32
	Acquired int32
	Idle     int32
	Max      int32
}

// PoolStats returns database pool statistics. ok is false when the
// database is not backed by a pgxpool.
func (db *Database) PoolStats() (stats PoolStats, ok bool) {
	if db.Pool == nil {
		return PoolStats{}, false
	}
	stat := db.Pool.Stat()
	return PoolStats{
		Total:    stat.TotalConns(),
		Acquired: stat.AcquiredConns(),
		Idle:     stat.IdleConns(),
		Max:      stat.MaxConns(),
	}, true
}

// Counts is a snapshot of table sizes
type Counts struct {
	Teams     int64 `json:"teams"`
	Players   int64 `json:"players"`
	Games     int64 `json:"games"`
	BoxScores int64 `json:"box_scores"`
}

// NeedsSync reports whether the store has never been populated
func (c Counts) NeedsSync() bool {
	return c.Teams == 0
}

// Counts returns the number of rows in each ingested table
func (db *Database) Counts(ctx context.Context) (Counts, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM teams),
			(SELECT COUNT(*) FROM players),
			(SELECT COUNT(*) FROM games),
			(SELECT COUNT(*) FROM box_scores)
	`

	var c Counts
	if err := db.conn.QueryRow(ctx, query).Scan(&c.Teams, &c.Players, &c.Games, &c.BoxScores); err != nil {
		return Counts{}, fmt.Errorf("failed to count tables: %w", err)
	}
	return c, nil
}

// withTx runs fn in a transaction, committing on success and rolling back on error.
func (db *Database) withTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := db.conn.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			log.Warn().Err(rbErr).Msg("Rollback failed")
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
