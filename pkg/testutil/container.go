// Package testutil provides testing utilities for the stock services.
// It includes testcontainers for PostgreSQL, unit scope helpers, mock
// factories, and common fixtures.
package testutil

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// PostgresContainer wraps a testcontainers PostgreSQL instance
type PostgresContainer struct {
	*postgres.PostgresContainer
	DSN string
}

// PostgresContainerConfig configures the test PostgreSQL container
type PostgresContainerConfig struct {
	Database string
	Username string
	Password string
	Image    string // Optional: defaults to postgres:15-alpine
}

// DefaultPostgresConfig returns sensible defaults for test containers
func DefaultPostgresConfig() PostgresContainerConfig {
	return PostgresContainerConfig{
		Database: "wiphouse_test",
		Username: "test",
		Password: "test",
		Image:    "postgres:15-alpine",
	}
}

// NewPostgresContainer creates a new PostgreSQL test container
func NewPostgresContainer(ctx context.Context, cfg PostgresContainerConfig) (*PostgresContainer, error) {
	if cfg.Image == "" {
		cfg.Image = "postgres:15-alpine"
	}
	if cfg.Database == "" {
		cfg.Database = "wiphouse_test"
	}
	if cfg.Username == "" {
		cfg.Username = "test"
	}
	if cfg.Password == "" {
		cfg.Password = "test"
	}

	container, err := postgres.RunContainer(ctx,
		testcontainers.WithImage(cfg.Image),
		postgres.WithDatabase(cfg.Database),
		postgres.WithUsername(cfg.Username),
		postgres.WithPassword(cfg.Password),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to start postgres container: %w", err)
	}

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		container.Terminate(ctx)
		return nil, fmt.Errorf("failed to get connection string: %w", err)
	}

	return &PostgresContainer{
		PostgresContainer: container,
		DSN:               dsn,
	}, nil
}

// Connect returns a sqlx.DB connection to the container
func (c *PostgresContainer) Connect(ctx context.Context) (*sqlx.DB, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", c.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to test database: %w", err)
	}
	return db, nil
}

// Terminate stops and removes the container
func (c *PostgresContainer) Terminate(ctx context.Context) error {
	return c.PostgresContainer.Terminate(ctx)
}

// CreateStockSchema creates the stock service tables. Mirrors the
// production migrations closely enough for repository tests.
func (c *PostgresContainer) CreateStockSchema(ctx context.Context, db *sqlx.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS items (
			id UUID PRIMARY KEY,
			unit_code VARCHAR(50) NOT NULL,
			item_code VARCHAR(100) NOT NULL,
			description VARCHAR(500),
			units_per_box INTEGER NOT NULL DEFAULT 1,
			min_stock INTEGER,
			max_stock INTEGER,
			expiry_window_days INTEGER,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			deleted_at TIMESTAMPTZ,
			CONSTRAINT items_item_code_unique UNIQUE (unit_code, item_code)
		);

		CREATE TABLE IF NOT EXISTS stock_entries (
			id UUID PRIMARY KEY,
			unit_code VARCHAR(50) NOT NULL,
			direction VARCHAR(10) NOT NULL,
			item_code VARCHAR(100) NOT NULL,
			full_qr VARCHAR(300) NOT NULL,
			box_count INTEGER NOT NULL,
			unit_count INTEGER,
			occurred_at TIMESTAMPTZ NOT NULL,
			production_date TIMESTAMPTZ,
			ref_entry_id UUID,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			CONSTRAINT direction_valid CHECK (direction IN ('in', 'out')),
			CONSTRAINT box_count_non_negative CHECK (box_count >= 0)
		);

		CREATE INDEX IF NOT EXISTS idx_stock_entries_qr
			ON stock_entries (unit_code, full_qr, direction, created_at DESC);

		CREATE TABLE IF NOT EXISTS stock_snapshots (
			unit_code VARCHAR(50) NOT NULL,
			item_code VARCHAR(100) NOT NULL,
			full_qr VARCHAR(300) NOT NULL,
			current_box_stock INTEGER NOT NULL DEFAULT 0,
			last_updated VARCHAR(50) NOT NULL DEFAULT '',
			expiry_flag VARCHAR(20),
			PRIMARY KEY (unit_code, item_code, full_qr)
		);
	`

	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create stock schema: %w", err)
	}

	return nil
}

// TruncateStockTables wipes all stock tables between tests
func (c *PostgresContainer) TruncateStockTables(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `TRUNCATE items, stock_entries, stock_snapshots`)
	return err
}
