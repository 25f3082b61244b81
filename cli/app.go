// Package cli is the command-line shell over the records, report and
// exchange packages. Each command runs inside exactly one store session.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"clientbook/config"
	"clientbook/db"
	"clientbook/logger"
	"clientbook/records"
	"clientbook/store"
)

// App carries what commands share once configuration is loaded.
type App struct {
	cfg    *config.Config
	log    *logger.Logger
	store  store.Store
	policy records.DeletePolicy
}

// scope is what a command sees inside its session.
type scope struct {
	repo   *records.Repository
	search *records.Search
}

// Execute runs the command line and returns the process exit code.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	app := &App{}
	root := app.rootCmd(stdout, stderr)
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	// the store is released whether or not the command failed
	if cerr := app.teardown(); err == nil {
		err = cerr
	}
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	return 0
}

func (a *App) rootCmd(stdout, stderr io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:           "clientbook",
		Short:         "Keep customer and order records",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd, stderr)
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	config.RegisterFlags(root.PersistentFlags())

	root.AddCommand(
		a.customerCmd(),
		a.orderCmd(),
		a.reportCmd(),
		a.exportCmd(),
		a.importCmd(),
	)
	return root
}

func (a *App) setup(cmd *cobra.Command, stderr io.Writer) error {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.log = logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, Out: stderr})
	if a.policy, err = records.ParseDeletePolicy(cfg.Store.OnCustomerDelete); err != nil {
		return err
	}
	if a.store, err = openStore(cfg, a.log); err != nil {
		return err
	}
	a.log.Debug().
		Str("backend", cfg.Store.Backend).
		Str("command", cmd.CommandPath()).
		Msg("store opened")
	return nil
}

func (a *App) teardown() error {
	if a.store == nil {
		return nil
	}
	err := a.store.Close()
	a.store = nil
	return err
}

func openStore(cfg *config.Config, log *logger.Logger) (store.Store, error) {
	if cfg.Store.Backend == config.BackendCSV {
		return store.NewFileStore(cfg.Store.DataDir, log.Zerolog()), nil
	}
	gdb, err := db.Open(db.Config{
		Driver:      cfg.Store.Backend,
		SQLitePath:  cfg.Store.SQLitePath,
		DatabaseURL: cfg.Store.DatabaseURL,
		Verbose:     cfg.App.LogLevel == "trace",
	})
	if err != nil {
		return nil, err
	}
	return store.NewSQLStore(gdb, log.Zerolog()), nil
}

// within runs fn inside one session.
func (a *App) within(ctx context.Context, fn func(scope) error) error {
	if a.store == nil {
		return errors.New("store is not open")
	}
	return store.Within(ctx, a.store, func(s store.Session) error {
		return fn(scope{
			repo: records.NewRepository(s,
				records.WithDeletePolicy(a.policy),
				records.WithLogger(a.log.Zerolog()),
			),
			search: records.NewSearch(s),
		})
	})
}
