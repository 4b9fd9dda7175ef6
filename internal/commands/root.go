package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/balkashynov/fiches/internal/actions"
	"github.com/balkashynov/fiches/internal/config"
	"github.com/balkashynov/fiches/internal/db"
	"github.com/balkashynov/fiches/internal/ids"
	"github.com/balkashynov/fiches/internal/logging"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// openService loads the store behind every command; tests replace it
var openService = initService

// New builds the fiches command tree
func New() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fiches",
		Short: "Track the production of course sheets",
		Long: `fiches tracks the production of course sheets (fiches) across universities
and subjects: status, priority, progress and deadlines, with spreadsheet import,
JSON backups and an interactive board.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.PersistentFlags()
	flags.String("driver", "", "Database driver: sqlite, postgres or memory")
	flags.String("db", "", "SQLite database file")
	flags.String("dsn", "", "Postgres connection string")
	flags.Bool("verbose", false, "Also log to stderr")

	addList(cmd)
	addKPI(cmd)
	addBoard(cmd)
	addUpdate(cmd)
	addMove(cmd)
	addRemove(cmd)
	addSubject(cmd)
	addUniversity(cmd)
	addFilter(cmd)
	addView(cmd)
	addImport(cmd)
	addExport(cmd)
	addRestore(cmd)
	addPurge(cmd)
	addHelp(cmd)
	addVersion(cmd)
	return cmd
}

// SetVersion sets the version information
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

// Execute runs the root command
func Execute() error {
	return New().ExecuteContext(context.Background())
}

// initService reads the configuration, opens the backend and loads the store
func initService(cmd *cobra.Command) (*actions.Service, func(), error) {
	v, err := config.New()
	if err != nil {
		return nil, nil, err
	}
	if err := bindFlags(cmd, v); err != nil {
		return nil, nil, err
	}
	cfg, err := config.FromViper(v)
	if err != nil {
		return nil, nil, err
	}

	verbose, _ := cmd.Flags().GetBool("verbose")
	log, closeLog, err := logging.New(logging.Options{Level: cfg.LogLevel, File: cfg.LogFile, Verbose: verbose})
	if err != nil {
		return nil, nil, err
	}

	adapter, err := db.Open(cfg.Database, log)
	if err != nil {
		_ = closeLog()
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}
	cleanup := func() {
		if err := db.Close(adapter); err != nil {
			log.Warn("failed to close database", "error", err)
		}
		_ = closeLog()
	}

	svc, source, err := actions.Open(contextOf(cmd), actions.Options{
		Adapter:     adapter,
		Snapshot:    db.NewSnapshot(cfg.Snapshot),
		IDs:         ids.UUID{},
		Log:         log,
		Concurrency: cfg.Concurrency,
	})
	if err != nil && !actions.IsSyncWarning(err) {
		cleanup()
		return nil, nil, err
	}
	if err != nil {
		warn(cmd, err)
	}
	if source == db.SourceDefaults {
		fmt.Fprintln(cmd.ErrOrStderr(), "ℹ️  No data found, starting with demo data.")
	}
	return svc, cleanup, nil
}

// bindFlags lets the persistent flags override config and env
func bindFlags(cmd *cobra.Command, v *viper.Viper) error {
	for key, name := range map[string]string{
		"database.driver": "driver",
		"database.path":   "db",
		"database.dsn":    "dsn",
	} {
		if f := cmd.Flags().Lookup(name); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return err
			}
		}
	}
	return nil
}

// runFunc is a command body that works on a loaded service
type runFunc func(ctx context.Context, cmd *cobra.Command, args []string, svc *actions.Service) error

// withService wraps a command function to load the store first.
// Sync failures are shown as warnings: the change was kept locally.
func withService(fn runFunc) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		svc, cleanup, err := openService(cmd)
		if err != nil {
			return err
		}
		defer cleanup()

		err = fn(contextOf(cmd), cmd, args, svc)
		if actions.IsSyncWarning(err) {
			warn(cmd, err)
			return nil
		}
		return err
	}
}

func warn(cmd *cobra.Command, err error) {
	fmt.Fprintf(cmd.ErrOrStderr(), "⚠️  Saved locally, but %v\n", err)
}

func out(cmd *cobra.Command) io.Writer {
	return cmd.OutOrStdout()
}

func contextOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
