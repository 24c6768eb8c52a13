package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/louisbranch/arcane-codex/internal/cmd/councilctl"
	entrypoint "github.com/louisbranch/arcane-codex/internal/platform/cmd"
	"github.com/louisbranch/arcane-codex/internal/platform/config"
)

func main() {
	if err := run(); err != nil {
		config.Exit(entrypoint.ServiceCouncilCtl, err)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return councilctl.Execute(ctx, os.Args[1:], os.Stdout, os.Stderr)
}
