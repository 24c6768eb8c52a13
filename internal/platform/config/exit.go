package config

import (
	"fmt"
	"os"

	apperrors "github.com/louisbranch/arcane-codex/internal/platform/errors"
)

// ExitMessage formats a fatal startup error for an arcane-codex binary as
// "arcane-codex <service>: <err>", tagged with the council error code when
// err carries one.
func ExitMessage(service string, err error) string {
	if err == nil {
		return fmt.Sprintf("arcane-codex %s: exited without an error", service)
	}
	if code := apperrors.CodeOf(err); code != apperrors.CodeUnknown {
		return fmt.Sprintf("arcane-codex %s: [%s] %v", service, code, err)
	}
	return fmt.Sprintf("arcane-codex %s: %v", service, err)
}

// Exit writes ExitMessage to stderr and terminates with status 1.
func Exit(service string, err error) {
	fmt.Fprintln(os.Stderr, ExitMessage(service, err))
	os.Exit(1)
}
