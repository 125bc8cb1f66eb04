// Package cmdutil holds helpers shared by the smartflex subcommands.
package cmdutil

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	_ "modernc.org/sqlite"

	"smartflex/internal/adapters/storage"
	accountStore "smartflex/internal/adapters/storage/account"
	auditStore "smartflex/internal/adapters/storage/audit"
	branchStore "smartflex/internal/adapters/storage/branch"
	"smartflex/internal/config"
)

// SetupLogging installs the default slog handler: JSON in production, text
// otherwise.
func SetupLogging(env string, level slog.Level) {
	opts := &slog.HandlerOptions{Level: level}
	var h slog.Handler
	if env == "production" {
		h = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		h = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(h))
}

// LoadConfig reads the environment and applies persistent flag overrides
// (--db) set on the command line.
func LoadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if f := cmd.Flags().Lookup("db"); f != nil && f.Changed {
		cfg.DBPath = f.Value.String()
	}
	SetupLogging(cfg.Env, cfg.LogLevel)
	return cfg, nil
}

// Stores bundles the SQLite stores over one connection pool.
type Stores struct {
	DB       *storage.TimedDB
	Accounts *accountStore.SQLiteStore
	Branches *branchStore.SQLiteStore
	Audit    *auditStore.SQLiteStore
}

// Close closes the underlying database.
func (s *Stores) Close() error {
	return s.DB.Close()
}

// OpenStores opens and migrates the database at cfg.DBPath.
// POST: Caller must Close the returned Stores
func OpenStores(ctx context.Context, cfg *config.Config) (*Stores, error) {
	db, err := storage.Open(cfg.DBPath)
	if err != nil {
		return nil, err
	}
	if err := storage.InitDB(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	timed := storage.NewTimedDB(db, cfg.SlowQuery)
	return &Stores{
		DB:       timed,
		Accounts: accountStore.NewSQLiteStore(timed),
		Branches: branchStore.NewSQLiteStore(timed),
		Audit:    auditStore.NewSQLiteStore(timed),
	}, nil
}
