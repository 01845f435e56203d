// Package db persists finished workflow outcomes to Postgres.
package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

// Config holds Postgres connection settings.
type Config struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Database        string        `mapstructure:"database"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxConnections  int           `mapstructure:"max_connections"`
	IdleConnections int           `mapstructure:"idle_connections"`
	MaxLifetime     time.Duration `mapstructure:"max_lifetime"`
}

// Outcome is one finished question workflow.
type Outcome struct {
	ID          uuid.UUID      `db:"id"`
	WorkflowID  string         `db:"workflow_id"`
	Question    string         `db:"question"`
	Status      string         `db:"status"`
	FailureKind string         `db:"failure_kind"`
	Answer      string         `db:"answer"`
	Links       pq.StringArray `db:"links"`
	Attempts    int            `db:"attempts"`
	CreatedAt   time.Time      `db:"created_at"`
}

// Store writes outcomes through a sqlx connection pool.
type Store struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewStore opens the pool and verifies connectivity.
func NewStore(cfg Config, logger *zap.Logger) (*Store, error) {
	if cfg.MaxConnections == 0 {
		cfg.MaxConnections = 25
	}
	if cfg.IdleConnections == 0 {
		cfg.IdleConnections = 5
	}
	if cfg.MaxLifetime == 0 {
		cfg.MaxLifetime = 5 * time.Minute
	}
	if cfg.SSLMode == "" {
		cfg.SSLMode = "require"
	}

	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Database, cfg.SSLMode,
	)

	pool, err := sqlx.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	pool.SetMaxOpenConns(cfg.MaxConnections)
	pool.SetMaxIdleConns(cfg.IdleConnections)
	pool.SetConnMaxLifetime(cfg.MaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.PingContext(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	logger.Info("Database store initialized",
		zap.String("host", cfg.Host),
		zap.String("database", cfg.Database),
	)
	return &Store{db: pool, logger: logger}, nil
}

// NewStoreWithDB wraps an existing pool, used by tests.
func NewStoreWithDB(pool *sqlx.DB, logger *zap.Logger) *Store {
	return &Store{db: pool, logger: logger}
}

const insertOutcomeQuery = `
	INSERT INTO question_outcomes
		(id, workflow_id, question, status, failure_kind, answer, links, attempts, created_at)
	VALUES
		(:id, :workflow_id, :question, :status, :failure_kind, :answer, :links, :attempts, :created_at)`

// RecordOutcome inserts one outcome row. IDs and timestamps are filled in
// when the caller leaves them zero.
func (s *Store) RecordOutcome(ctx context.Context, o Outcome) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now().UTC()
	}

	if _, err := s.db.NamedExecContext(ctx, insertOutcomeQuery, o); err != nil {
		return fmt.Errorf("insert outcome: %w", err)
	}

	s.logger.Debug("Outcome recorded",
		zap.String("workflow_id", o.WorkflowID),
		zap.String("status", o.Status),
		zap.Int("attempts", o.Attempts),
	)
	return nil
}

// RecentOutcomes returns the newest n outcomes, newest first.
func (s *Store) RecentOutcomes(ctx context.Context, n int) ([]Outcome, error) {
	if n <= 0 {
		n = 50
	}
	var out []Outcome
	err := s.db.SelectContext(ctx, &out,
		`SELECT id, workflow_id, question, status, failure_kind, answer, links, attempts, created_at
		 FROM question_outcomes ORDER BY created_at DESC LIMIT $1`, n)
	if err != nil {
		return nil, fmt.Errorf("select outcomes: %w", err)
	}
	return out, nil
}

// Close releases the pool.
func (s *Store) Close() error {
	return s.db.Close()
}
