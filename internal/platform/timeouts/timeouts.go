// Package timeouts defines shared timeout constants used across binaries.
package timeouts

import "time"

// ReadHeader limits how long the MCP HTTP server waits for request headers.
const ReadHeader = 5 * time.Second

// Shutdown limits how long the MCP HTTP server waits for in-flight requests
// during graceful shutdown.
const Shutdown = 5 * time.Second

// StorageOpen caps the time allowed to connect to and migrate a council store.
const StorageOpen = 10 * time.Second
