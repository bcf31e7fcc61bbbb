package main

import (
	"errors"
	"os"

	rabpdf "github.com/Chandler-Lu/rabpdf"
)

// Exit codes for the rabpdf CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // All files processed successfully
	ExitGeneral = 1 // General/unexpected error, or some files failed
	ExitUsage   = 2 // Invalid flags or watermark parameters
	ExitIO      = 3 // File not found, permission denied
	ExitEngine  = 4 // Conversion engine missing or failed to install
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Engine errors (exit 4)
	if errors.Is(err, rabpdf.ErrEngineNotFound) ||
		errors.Is(err, rabpdf.ErrBackendUnavailable) ||
		errors.Is(err, rabpdf.ErrInstallFailed) ||
		errors.Is(err, rabpdf.ErrDownloadFailed) ||
		errors.Is(err, rabpdf.ErrUnsupportedPlatform) {
		return ExitEngine
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, rabpdf.ErrNoInputFiles) ||
		errors.Is(err, ErrNoInput) {
		return ExitIO
	}

	// Usage/validation errors (exit 2)
	if errors.Is(err, rabpdf.ErrUnknownMethod) ||
		errors.Is(err, rabpdf.ErrNoOutputDir) ||
		errors.Is(err, rabpdf.ErrEmptyWatermarkText) ||
		errors.Is(err, rabpdf.ErrInvalidOpacity) ||
		errors.Is(err, rabpdf.ErrInvalidFontSize) ||
		errors.Is(err, rabpdf.ErrFontNotFound) ||
		errors.Is(err, rabpdf.ErrTextNotEncodable) {
		return ExitUsage
	}

	return ExitGeneral
}
