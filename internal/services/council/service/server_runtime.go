package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Run serves the council until ctx ends.
func Run(ctx context.Context, cfg Config) error {
	if cfg.Transport == "" {
		cfg.Transport = TransportStdio
	}
	if cfg.Transport != TransportStdio && cfg.Transport != TransportHTTP {
		return fmt.Errorf("transport %q is not supported", cfg.Transport)
	}

	server, err := NewServer(ctx, cfg)
	if err != nil {
		return err
	}

	switch cfg.Transport {
	case TransportHTTP:
		addr := cfg.HTTPAddr
		if addr == "" {
			addr = defaultHTTPAddr
		}
		return server.serveHTTP(ctx, addr)
	default:
		return server.serveWithTransport(ctx, &mcp.StdioTransport{})
	}
}

func (s *Server) serveWithTransport(ctx context.Context, transport mcp.Transport) error {
	if s == nil || s.mcpServer == nil {
		return fmt.Errorf("MCP server is not configured")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	err := s.mcpServer.Run(ctx, transport)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		err = nil
	}
	closeErr := s.Close()
	if closeErr != nil {
		if err == nil {
			return fmt.Errorf("close council store: %w", closeErr)
		}
		return fmt.Errorf("serve MCP: %v; close council store: %w", err, closeErr)
	}
	if err != nil {
		return fmt.Errorf("serve MCP: %w", err)
	}
	return nil
}
