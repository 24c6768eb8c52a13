package app

import "log/slog"

const logModule = "council/app"

// ResolveLogger guarantees a non-nil logger for service code paths.
func ResolveLogger(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}
