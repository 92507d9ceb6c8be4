package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	_ "modernc.org/sqlite"
)

const expensesSchema = `
CREATE TABLE IF NOT EXISTS expenses (
	id TEXT PRIMARY KEY,
	amount REAL NOT NULL,
	category TEXT NOT NULL,
	vendor TEXT,
	date TEXT NOT NULL,
	description TEXT,
	photo_url TEXT,
	created_at TEXT DEFAULT CURRENT_TIMESTAMP
)`

// Config for the sqlite expense store.
type Config struct {
	Path string // database file path; ":memory:" for tests
}

// Open opens the sqlite database and ensures the schema exists.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (*sql.DB, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("opening expense store", "path", cfg.Path)

	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		logger.Error("failed to open expense store", "error", err)
		return nil, err
	}
	// modernc sqlite allows one writer; a single connection sidesteps
	// SQLITE_BUSY under concurrent requests.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, expensesSchema); err != nil {
		logger.Error("failed to initialize schema", "error", err)
		_ = db.Close()
		return nil, err
	}

	logger.Info("expense store ready")
	return db, nil
}

// Close closes the database gracefully.
func Close(db *sql.DB, logger *slog.Logger) {
	if db == nil {
		return
	}
	if err := db.Close(); err != nil {
		logger.Error("failed to close expense store", "error", err)
		return
	}
	logger.Info("expense store closed")
}

// HealthCheck pings the store to catch path/permission issues early.
func HealthCheck(ctx context.Context, db *sql.DB, timeout time.Duration) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return db.PingContext(ctx)
}
