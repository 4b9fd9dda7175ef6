package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/balkashynov/fiches/internal/db"
)

// Config holds the resolved settings of a fiches run
type Config struct {
	Database    db.Options
	Snapshot    string
	LogLevel    string
	LogFile     string
	Concurrency int
}

// Dir returns ~/.fiches, where every default file lives
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".fiches"), nil
}

// New builds a viper instance with defaults, FICHES_* env vars and an
// optional .fiches.yaml from the working directory or $HOME.
// A .env file in the working directory is loaded first when present.
func New() (*viper.Viper, error) {
	dir, err := Dir()
	if err != nil {
		return nil, err
	}

	// load .env if it exists (ignore if it does not)
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	v.SetTypeByDefaultValue(true)
	v.SetDefault("database.driver", db.DriverSQLite)
	v.SetDefault("database.dsn", "")
	v.SetDefault("database.path", filepath.Join(dir, "fiches.db"))
	v.SetDefault("database.debug", false)
	v.SetDefault("snapshot.path", filepath.Join(dir, "snapshot.json"))
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.file", filepath.Join(dir, "fiches.log"))
	v.SetDefault("sync.concurrency", 8)

	v.SetEnvPrefix("FICHES")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigName(".fiches") // .yaml is implicit
	if override := os.Getenv("FICHES_CONFIG_PATH"); override != "" {
		v.AddConfigPath(override)
	}
	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(home)
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}
	return v, nil
}

// FromViper extracts and checks the settings
func FromViper(v *viper.Viper) (Config, error) {
	cfg := Config{
		Database: db.Options{
			Driver: strings.ToLower(strings.TrimSpace(v.GetString("database.driver"))),
			DSN:    v.GetString("database.dsn"),
			Path:   expand(v.GetString("database.path")),
			Debug:  v.GetBool("database.debug"),
		},
		Snapshot:    expand(v.GetString("snapshot.path")),
		LogLevel:    strings.ToLower(v.GetString("log.level")),
		LogFile:     expand(v.GetString("log.file")),
		Concurrency: v.GetInt("sync.concurrency"),
	}

	switch cfg.Database.Driver {
	case db.DriverSQLite, db.DriverPostgres, db.DriverMemory:
	default:
		return Config{}, fmt.Errorf("unknown database driver %q. Use: sqlite, postgres or memory", cfg.Database.Driver)
	}
	if cfg.Database.Driver == db.DriverPostgres && cfg.Database.DSN == "" {
		return Config{}, fmt.Errorf("database.dsn is required for postgres")
	}
	if cfg.Concurrency < 1 {
		return Config{}, fmt.Errorf("sync.concurrency must be at least 1, got %d", cfg.Concurrency)
	}
	return cfg, nil
}

// Load is New followed by FromViper
func Load() (Config, error) {
	v, err := New()
	if err != nil {
		return Config{}, err
	}
	return FromViper(v)
}

// expand resolves a leading ~ to the home directory
func expand(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
