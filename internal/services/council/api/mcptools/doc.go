// Package mcptools exposes the council service as MCP tools.
//
// council_convene holds its result in process until council_apply commits it,
// so a client can narrate the verdict before any favor changes.
package mcptools
