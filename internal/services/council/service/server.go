package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/louisbranch/arcane-codex/internal/platform/timeouts"
	"github.com/louisbranch/arcane-codex/internal/services/council/api/mcptools"
	"github.com/louisbranch/arcane-codex/internal/services/council/app"
	"github.com/louisbranch/arcane-codex/internal/services/council/observability/metrics"
	"github.com/louisbranch/arcane-codex/internal/services/council/storage"
	"github.com/louisbranch/arcane-codex/internal/services/council/storage/memory"
	"github.com/louisbranch/arcane-codex/internal/services/council/storage/sqlstore"
)

// Transport selects how the MCP server talks to clients.
type Transport string

const (
	TransportStdio Transport = "stdio"
	TransportHTTP  Transport = "http"
)

// Store backends.
const (
	StoreMemory   = "memory"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
)

const defaultHTTPAddr = "localhost:8086"

// Config holds runtime settings for the council server.
type Config struct {
	Transport   Transport
	HTTPAddr    string
	Store       string
	SQLitePath  string
	PostgresDSN string
	// Seed fixes the vote random source; 0 draws a crypto seed.
	Seed         int64
	PendingLimit int
	Logger       *slog.Logger
}

// Server bundles the MCP server with the resources it owns.
type Server struct {
	mcpServer *mcp.Server
	service   *app.Service
	store     storage.Store
	registry  *prometheus.Registry
	logger    *slog.Logger
}

// OpenStore opens the backend named by cfg.Store.
func OpenStore(ctx context.Context, cfg Config) (storage.Store, error) {
	openCtx, cancel := context.WithTimeout(ctx, timeouts.StorageOpen)
	defer cancel()

	var (
		store *sqlstore.Store
		err   error
	)
	switch strings.ToLower(strings.TrimSpace(cfg.Store)) {
	case "", StoreSQLite:
		path := strings.TrimSpace(cfg.SQLitePath)
		if path == "" {
			return nil, fmt.Errorf("sqlite path is required")
		}
		store, err = sqlstore.OpenSQLite(openCtx, path)
	case StorePostgres:
		dsn := strings.TrimSpace(cfg.PostgresDSN)
		if dsn == "" {
			return nil, fmt.Errorf("postgres dsn is required")
		}
		store, err = sqlstore.OpenPostgres(openCtx, dsn)
	case StoreMemory:
		return memory.NewStore(), nil
	default:
		return nil, fmt.Errorf("store %q is not supported", cfg.Store)
	}
	if err != nil {
		return nil, err
	}
	return store, nil
}

// NewServer opens the store and registers the council tools.
func NewServer(ctx context.Context, cfg Config) (*Server, error) {
	logger := app.ResolveLogger(cfg.Logger)
	store, err := OpenStore(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open council store: %w", err)
	}
	server, err := newServerWithStore(store, cfg)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	logger.Info("council server ready",
		"event", "council_server_ready",
		"module", "council/service",
		"store", cfg.Store,
		"seed", server.service.Seed(),
	)
	return server, nil
}

func newServerWithStore(store storage.Store, cfg Config) (*Server, error) {
	logger := app.ResolveLogger(cfg.Logger)
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	svc, err := app.NewService(store, app.Options{
		Logger:  logger,
		Metrics: metrics.New(registry),
		Seed:    cfg.Seed,
	})
	if err != nil {
		return nil, fmt.Errorf("build council service: %w", err)
	}

	return &Server{
		mcpServer: mcptools.NewServer(svc, mcptools.NewPending(cfg.PendingLimit)),
		service:   svc,
		store:     store,
		registry:  registry,
		logger:    logger,
	}, nil
}

// Close releases the store held by the server.
func (s *Server) Close() error {
	if s == nil || s.store == nil {
		return nil
	}
	if err := s.store.Close(); err != nil {
		return err
	}
	s.store = nil
	return nil
}
