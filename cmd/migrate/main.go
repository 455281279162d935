package main

import (
	"database/sql"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	_ "github.com/lib/pq"
	"github.com/propcore/backend/internal/infrastructure/config"
	"github.com/propcore/backend/internal/infrastructure/logger"
	"github.com/propcore/backend/internal/infrastructure/migration"
	"github.com/propcore/backend/migrations"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type cliOptions struct {
	dir      string
	logLevel string
}

func main() {
	opts := &cliOptions{}

	rootCmd := &cobra.Command{
		Use:           "migrate",
		Short:         "PropCore database migration tool",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&opts.dir, "dir", "", "read migrations from this directory instead of the embedded set")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "info", "log level: debug, info, warn, error")

	rootCmd.AddCommand(
		upCmd(opts),
		downCmd(opts),
		stepCmd(opts),
		gotoCmd(opts),
		versionCmd(opts),
		forceCmd(opts),
		createCmd(opts),
		listCmd(opts),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// withMigrator opens the database and runs fn against a migrator
func withMigrator(opts *cliOptions, fn func(m *migration.Migrator, log *zap.Logger) error) error {
	log, err := logger.New(&logger.Config{Level: opts.logLevel, Format: "console", Output: "stdout"})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	var source fs.FS = migrations.FS
	if opts.dir != "" {
		source = os.DirFS(opts.dir)
	}
	m, err := migration.New(db, source, log)
	if err != nil {
		return err
	}
	defer m.Close()

	return fn(m, log)
}

func upCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(opts, func(m *migration.Migrator, _ *zap.Logger) error {
				return m.Up()
			})
		},
	}
}

func downCmd(opts *cliOptions) *cobra.Command {
	var confirm bool
	cmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back every migration (drops all tables)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !confirm {
				return fmt.Errorf("refusing to roll back everything without --confirm; use 'migrate step -1' for the last migration")
			}
			return withMigrator(opts, func(m *migration.Migrator, _ *zap.Logger) error {
				return m.Down()
			})
		},
	}
	cmd.Flags().BoolVar(&confirm, "confirm", false, "confirm rolling back all migrations")
	return cmd
}

func stepCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "step <n>",
		Short: "Apply n migrations (negative n rolls back)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.Atoi(args[0])
			if err != nil || n == 0 {
				return fmt.Errorf("invalid step count %q", args[0])
			}
			return withMigrator(opts, func(m *migration.Migrator, _ *zap.Logger) error {
				return m.Steps(n)
			})
		},
	}
}

func gotoCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "goto <version>",
		Short: "Migrate up or down to a specific version",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			version, err := strconv.ParseUint(args[0], 10, 32)
			if err != nil {
				return fmt.Errorf("invalid version %q", args[0])
			}
			return withMigrator(opts, func(m *migration.Migrator, _ *zap.Logger) error {
				return m.GoTo(uint(version))
			})
		},
	}
}

func versionCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show the applied version and pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(opts, func(m *migration.Migrator, log *zap.Logger) error {
				st, err := m.Status()
				if err != nil {
					return err
				}
				log.Info("Migration status",
					zap.Uint("version", st.Version),
					zap.Uint("latest", st.Latest),
					zap.Int("pending", st.Pending),
					zap.Bool("dirty", st.Dirty),
				)
				return nil
			})
		},
	}
}

func forceCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "force <version>",
		Short: "Record a version without running it (clears the dirty flag)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			version, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid version %q", args[0])
			}
			return withMigrator(opts, func(m *migration.Migrator, _ *zap.Logger) error {
				return m.Force(version)
			})
		},
	}
}

func createCmd(opts *cliOptions) *cobra.Command {
	var description string
	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create the next numbered up/down migration pair",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := opts.dir
			if dir == "" {
				dir = "migrations"
			}
			mf, err := migration.CreateMigration(dir, args[0], description)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n  %s\n  %s\n", mf.BaseName(), mf.UpPath, mf.DownPath)
			return nil
		},
	}
	cmd.Flags().StringVarP(&description, "description", "d", "", "description written into the migration header")
	return cmd
}

func listCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List migrations found on disk",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := opts.dir
			if dir == "" {
				dir = "migrations"
			}
			files, err := migration.ListMigrations(dir)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(files) == 0 {
				fmt.Fprintln(out, "No migrations found")
				return nil
			}
			for _, f := range files {
				down := ""
				if !f.HasDown {
					down = " (no down migration)"
				}
				fmt.Fprintf(out, "  %s%s\n", f.BaseName(), down)
			}
			return nil
		},
	}
}
