package council

import (
	"log/slog"

	"github.com/louisbranch/arcane-codex/internal/services/council/service"
)

func (c Config) serviceConfig(logger *slog.Logger) service.Config {
	return service.Config{
		Transport:    service.Transport(c.Transport),
		HTTPAddr:     c.HTTPAddr,
		Store:        c.Store,
		SQLitePath:   c.SQLitePath,
		PostgresDSN:  c.PostgresDSN,
		Seed:         c.Seed,
		PendingLimit: c.PendingLimit,
		Logger:       logger,
	}
}
