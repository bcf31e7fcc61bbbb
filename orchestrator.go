package rabpdf

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"

	"github.com/Chandler-Lu/rabpdf/internal/fileutil"
	"github.com/Chandler-Lu/rabpdf/internal/pdfinfo"
)

// Orchestrator selects a conversion backend per policy, executes it with
// the single auto fallback, and reports a per-file outcome. Failures are
// always captured in the Outcome; Convert never aborts the batch.
type Orchestrator struct {
	log      Logger
	goos     string
	native   Backend
	headless Backend
	probe    func(path string) (int, error)
}

// OrchestratorOption configures an Orchestrator.
type OrchestratorOption func(*Orchestrator)

// WithBackends injects custom backends (used by tests).
func WithBackends(native, headless Backend) OrchestratorOption {
	return func(o *Orchestrator) {
		o.native = native
		o.headless = headless
	}
}

// WithPlatform overrides the platform used for policy resolution.
func WithPlatform(goos string) OrchestratorOption {
	return func(o *Orchestrator) { o.goos = goos }
}

// WithOutputProbe overrides the produced-PDF validation probe.
func WithOutputProbe(probe func(path string) (int, error)) OrchestratorOption {
	return func(o *Orchestrator) { o.probe = probe }
}

// NewOrchestrator creates an Orchestrator with platform-default backends.
func NewOrchestrator(log Logger, opts ...OrchestratorOption) *Orchestrator {
	o := &Orchestrator{
		log:   log,
		goos:  runtime.GOOS,
		probe: pdfinfo.PageCount,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.native == nil {
		o.native = NewAutomationBackend(log)
	}
	if o.headless == nil {
		o.headless = NewSofficeBackend(log)
	}
	return o
}

// Convert executes one conversion job. Success requires a clean backend
// exit, the expected output file on disk, and that file parsing as a PDF
// with at least one page. Engines may exit 0 while silently failing.
func (o *Orchestrator) Convert(ctx context.Context, job Job) Outcome {
	backends, err := backendsFor(job.Method, o.goos, o.native, o.headless)
	if err != nil {
		return failure(job, "", err.Error())
	}

	producedPath := filepath.Join(job.OutputDir, ConvertedName(job.InputPath))

	var lastDiag string
	var failedName string
	for _, b := range backends {
		// Announce a fallback only after a backend actually ran and
		// failed; skipping an unavailable backend is not an attempt.
		if failedName != "" {
			o.log.printf("%s failed, falling back to %s...", failedName, b.Name())
		}
		if !b.Available() {
			lastDiag = fmt.Sprintf("%s: %v", b.Name(), ErrBackendUnavailable)
			o.log.printf("%s", lastDiag)
			continue
		}
		if err := b.Convert(ctx, job.InputPath, job.OutputDir); err != nil {
			lastDiag = fmt.Sprintf("%s: %v", b.Name(), err)
			o.log.printf("%s", lastDiag)
			failedName = b.Name()
			continue
		}
		if err := o.verify(producedPath); err != nil {
			lastDiag = fmt.Sprintf("%s: %v", b.Name(), err)
			o.log.printf("%s", lastDiag)
			failedName = b.Name()
			continue
		}
		o.log.printf("Converted: %s", filepath.Base(producedPath))
		return Outcome{Job: job, Success: true, ProducedPath: producedPath, BackendUsed: b.Name()}
	}

	return failure(job, "", lastDiag)
}

// verify checks that the backend actually produced a readable PDF.
func (o *Orchestrator) verify(path string) error {
	if !fileutil.FileExists(path) {
		return ErrOutputMissing
	}
	pages, err := o.probe(path)
	if err != nil {
		return fmt.Errorf("%w: unreadable output: %v", ErrConversionFailed, err)
	}
	if pages == 0 {
		return fmt.Errorf("%w: output has no pages", ErrConversionFailed)
	}
	return nil
}

func failure(job Job, backend, diag string) Outcome {
	return Outcome{Job: job, BackendUsed: backend, Diagnostic: diag}
}
