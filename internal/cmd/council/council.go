// Package council parses council command flags and starts the MCP server.
package council

import (
	"context"
	"flag"
	"os"

	entrypoint "github.com/louisbranch/arcane-codex/internal/platform/cmd"
	"github.com/louisbranch/arcane-codex/internal/services/council/service"
)

// Config holds council command configuration.
type Config struct {
	Transport    string `env:"COUNCIL_TRANSPORT"     envDefault:"stdio"`
	HTTPAddr     string `env:"COUNCIL_HTTP_ADDR"     envDefault:"localhost:8086"`
	Store        string `env:"COUNCIL_STORE"         envDefault:"sqlite"`
	SQLitePath   string `env:"COUNCIL_SQLITE_PATH"   envDefault:"data/council.db"`
	PostgresDSN  string `env:"COUNCIL_POSTGRES_DSN"`
	Seed         int64  `env:"COUNCIL_SEED"`
	PendingLimit int    `env:"COUNCIL_PENDING_LIMIT" envDefault:"1024"`
	LogLevel     string `env:"LOG_LEVEL"             envDefault:"info"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.Transport, "transport", cfg.Transport, "Transport type: stdio or http")
	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "HTTP server address (for HTTP transport)")
	fs.StringVar(&cfg.Store, "store", cfg.Store, "Store backend: sqlite, postgres or memory")
	fs.StringVar(&cfg.SQLitePath, "sqlite-path", cfg.SQLitePath, "SQLite database path")
	fs.StringVar(&cfg.PostgresDSN, "postgres-dsn", cfg.PostgresDSN, "Postgres connection string")
	fs.Int64Var(&cfg.Seed, "seed", cfg.Seed, "Vote random seed (0 draws a random seed)")
	fs.IntVar(&cfg.PendingLimit, "pending-limit", cfg.PendingLimit, "Maximum convened councils awaiting apply")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level: debug, info, warn or error")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the council MCP server.
func Run(ctx context.Context, cfg Config) error {
	logger := entrypoint.NewLogger(os.Stderr, entrypoint.ServiceCouncil, cfg.LogLevel)
	return entrypoint.RunWithTelemetryAndOptions(ctx, entrypoint.ServiceCouncil, entrypoint.RunOptions{Logger: logger}, func(ctx context.Context) error {
		return service.Run(ctx, cfg.serviceConfig(logger))
	})
}
