// Package councilctl implements the operator CLI: it convenes councils from
// action files and inspects favor and effects in a council store.
package councilctl

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	entrypoint "github.com/louisbranch/arcane-codex/internal/platform/cmd"
	"github.com/louisbranch/arcane-codex/internal/services/council/app"
	"github.com/louisbranch/arcane-codex/internal/services/council/service"
)

const programName = "councilctl"

// Config holds councilctl defaults loaded from the environment.
type Config struct {
	Store       string `env:"COUNCIL_STORE"        envDefault:"sqlite"`
	SQLitePath  string `env:"COUNCIL_SQLITE_PATH"  envDefault:"data/council.db"`
	PostgresDSN string `env:"COUNCIL_POSTGRES_DSN"`
	Seed        int64  `env:"COUNCIL_SEED"`
	Output      string `env:"COUNCILCTL_OUTPUT"    envDefault:"yaml"`
	LogLevel    string `env:"LOG_LEVEL"            envDefault:"warn"`
}

type rootOptions struct {
	cfg    Config
	out    io.Writer
	errOut io.Writer
}

// NewRootCommand builds the councilctl command tree. Env defaults are read
// once; flags override them.
func NewRootCommand(out, errOut io.Writer) (*cobra.Command, error) {
	opts := &rootOptions{out: out, errOut: errOut}
	if err := entrypoint.ParseConfig(&opts.cfg); err != nil {
		return nil, err
	}

	rootCmd := &cobra.Command{
		Use:           programName,
		Short:         "Convene the Divine Council and inspect divine favor",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.cfg.Store, "store", opts.cfg.Store, "store backend: sqlite, postgres or memory")
	flags.StringVar(&opts.cfg.SQLitePath, "sqlite-path", opts.cfg.SQLitePath, "SQLite database path")
	flags.StringVar(&opts.cfg.PostgresDSN, "postgres-dsn", opts.cfg.PostgresDSN, "Postgres connection string")
	flags.Int64Var(&opts.cfg.Seed, "seed", opts.cfg.Seed, "vote random seed (0 draws a random seed)")
	flags.StringVarP(&opts.cfg.Output, "output", "o", opts.cfg.Output, "output format: yaml or json")
	flags.StringVar(&opts.cfg.LogLevel, "log-level", opts.cfg.LogLevel, "log level: debug, info, warn or error")

	rootCmd.AddCommand(
		votersCommand(opts),
		conveneCommand(opts),
		favorCommand(opts),
		historyCommand(opts),
		effectsCommand(opts),
		tickCommand(opts),
	)
	return rootCmd, nil
}

// Execute runs councilctl with args under the process tracer provider.
func Execute(ctx context.Context, args []string, out, errOut io.Writer) error {
	rootCmd, err := NewRootCommand(out, errOut)
	if err != nil {
		return err
	}
	rootCmd.SetArgs(args)
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceCouncilCtl, rootCmd.ExecuteContext)
}

func (o *rootOptions) logger() *slog.Logger {
	return entrypoint.NewLogger(o.errOut, entrypoint.ServiceCouncilCtl, o.cfg.LogLevel)
}

// openService opens the configured store and wraps it in a council service.
// The returned func closes the store.
func (o *rootOptions) openService(ctx context.Context) (*app.Service, func(), error) {
	store, err := service.OpenStore(ctx, service.Config{
		Store:       o.cfg.Store,
		SQLitePath:  o.cfg.SQLitePath,
		PostgresDSN: o.cfg.PostgresDSN,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("open council store: %w", err)
	}
	svc, err := app.NewService(store, app.Options{Logger: o.logger(), Seed: o.cfg.Seed})
	if err != nil {
		_ = store.Close()
		return nil, nil, err
	}
	return svc, func() { _ = store.Close() }, nil
}

func (o *rootOptions) render(v any) error {
	return render(o.out, o.cfg.Output, v)
}
