//go:build !windows

package rabpdf

import "context"

// AutomationBackend is the native Office automation backend. Office
// automation only exists on Windows; this stub reports unavailability
// everywhere else so the orchestrator can select the headless engine.
type AutomationBackend struct {
	Log Logger
}

var _ Backend = (*AutomationBackend)(nil)

// NewAutomationBackend creates the native Office automation backend.
func NewAutomationBackend(log Logger) *AutomationBackend {
	return &AutomationBackend{Log: log}
}

// Name implements Backend.
func (b *AutomationBackend) Name() string { return "office-automation" }

// Available implements Backend.
func (b *AutomationBackend) Available() bool { return false }

// Convert implements Backend.
func (b *AutomationBackend) Convert(ctx context.Context, inputPath, outputDir string) error {
	return ErrBackendUnavailable
}
