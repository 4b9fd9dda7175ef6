package db

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Supported database drivers
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Options selects and configures the backend
type Options struct {
	Driver string
	// DSN is the postgres connection string
	DSN string
	// Path is the sqlite database file
	Path  string
	Debug bool
}

// Open connects to the configured backend and runs migrations. The memory
// driver needs no connection and returns a Memory adapter.
func Open(opts Options, log *slog.Logger) (Adapter, error) {
	if log == nil {
		log = slog.Default()
	}

	var dialector gorm.Dialector
	switch opts.Driver {
	case DriverMemory:
		return NewMemory(), nil
	case DriverSQLite, "":
		if opts.Path == "" {
			return nil, fmt.Errorf("sqlite driver needs a database path")
		}
		// Ensure the directory exists
		if err := os.MkdirAll(filepath.Dir(opts.Path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		dialector = sqlite.Open(opts.Path)
	case DriverPostgres:
		if opts.DSN == "" {
			return nil, fmt.Errorf("postgres driver needs a dsn")
		}
		dialector = postgres.Open(opts.DSN)
	default:
		return nil, fmt.Errorf("unknown database driver %q", opts.Driver)
	}

	mode := logger.Silent // Quiet by default
	if opts.Debug {
		mode = logger.Info
	}
	conn, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(mode),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if dialector.Name() == DriverSQLite {
		// sqlite takes one writer at a time; concurrent upserts queue on the pool
		sqlDB, err := conn.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to configure database: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
	}

	if err := runMigrations(conn); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Debug("database opened", "driver", dialector.Name())
	return &Gorm{db: conn, path: opts.Path, log: log}, nil
}

// runMigrations creates/updates the database schema
func runMigrations(conn *gorm.DB) error {
	return conn.AutoMigrate(
		&universityRecord{},
		&subjectRecord{},
		&itemRecord{},
	)
}

// Close releases the adapter's resources when it holds any
func Close(adapter Adapter) error {
	g, ok := adapter.(*Gorm)
	if !ok || g.db == nil {
		return nil
	}
	sqlDB, err := g.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
