// Package service boots the council: it opens the configured store, builds
// the app service and serves the MCP tools over stdio or streamable HTTP.
package service
