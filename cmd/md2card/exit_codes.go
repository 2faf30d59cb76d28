package main

import (
	"errors"
	"os"

	md2card "github.com/alnah/go-md2card"
	"github.com/alnah/go-md2card/internal/cards"
	"github.com/alnah/go-md2card/internal/config"
	"github.com/alnah/go-md2card/internal/sink"
	"github.com/alnah/go-md2card/internal/vault"
)

// Exit codes for the md2card CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Command completed
	ExitGeneral = 1 // General/unexpected error, incomplete batch
	ExitUsage   = 2 // Invalid flags, config, or arguments
	ExitIO      = 3 // File not found, permission denied, write failed
	ExitBrowser = 4 // Browser/Chrome errors
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Browser errors (exit 4)
	if errors.Is(err, md2card.ErrBrowserConnect) ||
		errors.Is(err, md2card.ErrPageCreate) ||
		errors.Is(err, md2card.ErrPageLoad) ||
		errors.Is(err, md2card.ErrRenderFailure) {
		return ExitBrowser
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, errUsage) ||
		errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrInvalidConfig) ||
		errors.Is(err, md2card.ErrInvalidDensity) ||
		errors.Is(err, md2card.ErrStyleNotFound) ||
		errors.Is(err, md2card.ErrTemplateNotFound) ||
		errors.Is(err, md2card.ErrInvalidAssetPath) ||
		errors.Is(err, cards.ErrNoActiveDocument) ||
		errors.Is(err, cards.ErrUnknownCommand) ||
		errors.Is(err, cards.ErrInvalidPattern) ||
		errors.Is(err, vault.ErrOutsideVault) ||
		errors.Is(err, vault.ErrAbsolutePath) {
		return ExitUsage
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, vault.ErrNotADir) ||
		errors.Is(err, cards.ErrPersistenceFailure) ||
		errors.Is(err, sink.ErrClipboardUnavailable) {
		return ExitIO
	}

	return ExitGeneral
}
