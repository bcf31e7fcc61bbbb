package rabpdf

import (
	"context"
	"fmt"
)

// Backend is a strategy for converting one document to PDF. Implementations
// write <stem>.pdf into outputDir and return an error describing why the
// attempt failed; they never terminate the process.
type Backend interface {
	// Name identifies the backend in diagnostics.
	Name() string
	// Available reports whether the backend can run on this platform.
	Available() bool
	// Convert converts inputPath to PDF inside outputDir.
	Convert(ctx context.Context, inputPath, outputDir string) error
}

// backendsFor resolves the ordered list of backends to try for a requested
// method on the given platform.
//
// Under MethodAuto the native automation backend is tried first where it
// exists (Windows), with the headless engine as the single fallback. On
// every other platform auto goes directly to the headless engine with no
// fallback target; that asymmetry is deliberate and mirrors how the
// fallback has always behaved.
func backendsFor(method Method, goos string, native, headless Backend) ([]Backend, error) {
	switch method {
	case MethodNative:
		return []Backend{native}, nil
	case MethodHeadless:
		return []Backend{headless}, nil
	case MethodAuto, "":
		if goos == "windows" {
			return []Backend{native, headless}, nil
		}
		return []Backend{headless}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownMethod, method)
}
