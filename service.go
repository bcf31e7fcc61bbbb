package rabpdf

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/Chandler-Lu/rabpdf/internal/events"
	"github.com/Chandler-Lu/rabpdf/internal/fileutil"
)

// converter turns one office document into a PDF.
type converter interface {
	Convert(ctx context.Context, job Job) Outcome
}

// stamper applies a watermark to a PDF and returns the produced path.
type stamper interface {
	Apply(ctx context.Context, srcPDF string, spec WatermarkSpec, outputDir string) (string, error)
}

// RunRequest describes one batch run.
type RunRequest struct {
	// Inputs are files or directories. Directories are expanded one
	// level deep; entries that are not admitted document types are
	// silently ignored.
	Inputs []string

	// OutputDir receives all produced files. Created if missing.
	OutputDir string

	// Method selects the conversion backend. Empty means MethodAuto.
	Method Method

	// Watermark, when non-nil, is applied to every produced PDF.
	Watermark *WatermarkSpec
}

// RunSummary reports the aggregate result of a batch run.
type RunSummary struct {
	Total     int
	Succeeded int
	Failed    int
	Outcomes  []Outcome
}

// Service is the batch pipeline: it admits inputs, converts office
// documents to PDF, and optionally watermarks the results. A Service
// processes one run at a time.
type Service struct {
	log      Logger
	bus      *events.Bus
	conv     converter
	stamp    stamper
	fontPath string
	running  atomic.Bool
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the diagnostic sink for the Service and the
// components it constructs.
func WithLogger(log Logger) Option {
	return func(s *Service) { s.log = log }
}

// WithEvents sets the event bus progress and stage events are
// published to.
func WithEvents(bus *events.Bus) Option {
	return func(s *Service) { s.bus = bus }
}

// WithConverter substitutes the document converter (used by tests).
func WithConverter(c converter) Option {
	return func(s *Service) { s.conv = c }
}

// WithStamper substitutes the watermark engine (used by tests).
func WithStamper(st stamper) Option {
	return func(s *Service) { s.stamp = st }
}

// WithWatermarkFont sets a TrueType font file used for watermark text.
// When unset, the built-in Helvetica metrics are used.
func WithWatermarkFont(path string) Option {
	return func(s *Service) { s.fontPath = path }
}

// NewService creates a Service with production components.
func NewService(opts ...Option) (*Service, error) {
	s := &Service{}
	for _, opt := range opts {
		opt(s)
	}
	if s.conv == nil {
		s.conv = NewOrchestrator(s.log)
	}
	if s.stamp == nil {
		engine, err := NewEngine(s.log, s.fontPath)
		if err != nil {
			return nil, err
		}
		s.stamp = engine
	}
	return s, nil
}

// Run executes one batch run. Per-file failures are isolated: a failing
// file is recorded in the summary and processing continues with the
// next one. Run returns an error only for pre-flight conditions that
// prevent the run from starting at all.
func (s *Service) Run(ctx context.Context, req RunRequest) (RunSummary, error) {
	if !s.running.CompareAndSwap(false, true) {
		return RunSummary{}, ErrRunInProgress
	}
	defer s.running.Store(false)

	if strings.TrimSpace(req.OutputDir) == "" {
		return RunSummary{}, ErrNoOutputDir
	}
	if req.Watermark != nil {
		if err := req.Watermark.Validate(); err != nil {
			return RunSummary{}, err
		}
	}
	method := req.Method
	if method == "" {
		method = MethodAuto
	}
	if _, err := ParseMethod(string(method)); err != nil {
		return RunSummary{}, err
	}

	inputs, err := fileutil.CollectInputs(req.Inputs, Admitted)
	if err != nil {
		return RunSummary{}, fmt.Errorf("collecting inputs: %w", err)
	}
	if len(inputs) == 0 {
		return RunSummary{}, ErrNoInputFiles
	}
	if err := fileutil.EnsureDir(req.OutputDir); err != nil {
		return RunSummary{}, fmt.Errorf("preparing output directory: %w", err)
	}

	summary := RunSummary{Total: len(inputs)}
	for i, input := range inputs {
		s.log.printf("[%d/%d] processing %s", i+1, len(inputs), filepath.Base(input))
		if s.bus != nil {
			s.bus.Stage(fmt.Sprintf("processing %s", filepath.Base(input)))
		}
		outcome := s.processOne(ctx, input, req.OutputDir, method, req.Watermark)
		summary.Outcomes = append(summary.Outcomes, outcome)
		if outcome.Success {
			summary.Succeeded++
		} else {
			summary.Failed++
			s.log.printf("[%d/%d] failed: %s", i+1, len(inputs), outcome.Diagnostic)
		}
		if s.bus != nil {
			s.bus.Progress((i + 1) * 100 / len(inputs))
		}
		if err := ctx.Err(); err != nil {
			return summary, err
		}
	}

	s.log.printf("done: %d/%d succeeded", summary.Succeeded, summary.Total)
	if s.bus != nil {
		s.bus.Done(fmt.Sprintf("done: %d/%d succeeded", summary.Succeeded, summary.Total))
	}
	return summary, nil
}

// processOne runs the conversion and watermark stages for a single
// input file. A panic in either stage is converted into a failed
// outcome so one bad document cannot take down the batch.
func (s *Service) processOne(ctx context.Context, input, outputDir string, method Method, wm *WatermarkSpec) (outcome Outcome) {
	job := Job{InputPath: input, OutputDir: outputDir, Method: method}
	outcome = Outcome{Job: job}
	defer func() {
		if r := recover(); r != nil {
			outcome.Success = false
			outcome.Diagnostic = fmt.Sprintf("internal error: %v", r)
		}
	}()

	pdfPath := input
	if IsOfficeDocument(input) {
		converted := s.conv.Convert(ctx, job)
		if !converted.Success {
			return converted
		}
		outcome = converted
		pdfPath = converted.ProducedPath
	}

	if wm == nil {
		return s.finishPlain(input, pdfPath, outputDir, outcome)
	}

	produced, err := s.stamp.Apply(ctx, pdfPath, *wm, outputDir)
	if err != nil {
		outcome.Success = false
		outcome.Diagnostic = err.Error()
		return outcome
	}
	outcome.Success = true
	outcome.ProducedPath = produced
	return outcome
}

// finishPlain completes a run stage with no watermark. A PDF input that
// needed no conversion is copied into the output directory unless it
// already lives there.
func (s *Service) finishPlain(input, pdfPath, outputDir string, outcome Outcome) Outcome {
	if IsOfficeDocument(input) {
		// Conversion already wrote into the output directory.
		return outcome
	}
	dest := filepath.Join(outputDir, filepath.Base(pdfPath))
	if fileutil.SameFile(pdfPath, dest) {
		outcome.Success = true
		outcome.ProducedPath = pdfPath
		return outcome
	}
	if err := fileutil.CopyFile(pdfPath, dest); err != nil {
		outcome.Success = false
		outcome.Diagnostic = fmt.Sprintf("copying %s: %v", filepath.Base(pdfPath), err)
		return outcome
	}
	outcome.Success = true
	outcome.ProducedPath = dest
	return outcome
}
