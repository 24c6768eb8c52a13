package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	councilcmd "github.com/louisbranch/arcane-codex/internal/cmd/council"
	entrypoint "github.com/louisbranch/arcane-codex/internal/platform/cmd"
	"github.com/louisbranch/arcane-codex/internal/platform/config"
)

// main starts the council MCP server on stdio or HTTP.
func main() {
	cfg, err := councilcmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exit(entrypoint.ServiceCouncil, fmt.Errorf("parse flags: %w", err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := councilcmd.Run(ctx, cfg); err != nil {
		stop()
		config.Exit(entrypoint.ServiceCouncil, fmt.Errorf("serve council: %w", err))
	}
}
