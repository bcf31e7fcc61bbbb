package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"

	rabpdf "github.com/Chandler-Lu/rabpdf"
	"github.com/Chandler-Lu/rabpdf/internal/events"
	"github.com/Chandler-Lu/rabpdf/internal/settings"
)

// Sentinel errors for CLI operations.
var (
	ErrNoInput    = errors.New("no input specified")
	ErrSomeFailed = errors.New("some files failed")
)

// run dispatches to dependency management or batch conversion based on
// the parsed flags.
func run(flags *cliFlags, inputs []string, stderr io.Writer) error {
	log := newLogger(flags.common.quiet, stderr)

	if flags.deps.check || flags.deps.install {
		return runDeps(flags, log, stderr)
	}
	if len(inputs) == 0 {
		return fmt.Errorf("%w: pass one or more files or directories", ErrNoInput)
	}
	return runConvert(flags, inputs, log, stderr)
}

// runDeps handles --check-deps and --install-deps.
func runDeps(flags *cliFlags, log rabpdf.Logger, stderr io.Writer) error {
	prov := rabpdf.NewProvisioner(rabpdf.WithProvisionerLogger(log))

	if flags.deps.check {
		if prov.Status().Installed {
			fmt.Fprintln(stderr, "LibreOffice: installed")
			return nil
		}
		fmt.Fprintln(stderr, "LibreOffice: not installed (run with --install-deps)")
		return rabpdf.ErrEngineNotFound
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if prov.Status().Installed {
		fmt.Fprintln(stderr, "LibreOffice is already installed.")
		return nil
	}
	if !prov.Install(ctx) {
		return rabpdf.ErrInstallFailed
	}
	return nil
}

// runConvert executes one batch run. Settings supply defaults for
// watermark flags the user did not pass, and the watermark text is
// remembered for the next run when the batch succeeds.
func runConvert(flags *cliFlags, inputs []string, log rabpdf.Logger, stderr io.Writer) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	method, err := rabpdf.ParseMethod(flags.convert.method)
	if err != nil {
		return err
	}

	store, storeErr := settings.NewStore()
	saved := settings.Default()
	if storeErr == nil {
		if loaded, err := store.Load(); err == nil {
			saved = loaded
		}
	}

	var spec *rabpdf.WatermarkSpec
	if flags.watermark.enabled {
		spec = buildWatermarkSpec(&flags.watermark, saved)
		if err := spec.Validate(); err != nil {
			return err
		}
	}

	outputDir := flags.convert.outputDir
	if outputDir == "" {
		outputDir = "."
	}

	bus := events.NewBus()
	svc, err := rabpdf.NewService(
		rabpdf.WithLogger(log),
		rabpdf.WithEvents(bus),
		rabpdf.WithWatermarkFont(flags.watermark.fontPath),
	)
	if err != nil {
		return err
	}

	var drain sync.WaitGroup
	drain.Add(1)
	go func() {
		defer drain.Done()
		drainEvents(bus, flags.common.verbose, stderr)
	}()

	summary, runErr := svc.Run(ctx, rabpdf.RunRequest{
		Inputs:    inputs,
		OutputDir: outputDir,
		Method:    method,
		Watermark: spec,
	})
	bus.Close()
	drain.Wait()

	if runErr != nil {
		return runErr
	}

	if spec != nil && summary.Succeeded > 0 && storeErr == nil {
		saved.Remember(spec.Text)
		saved.Opacity = spec.Opacity
		saved.FontSize = spec.FontSize
		saved.RotationDegrees = spec.Rotation
		if err := store.Save(saved); err != nil {
			log("saving settings: " + err.Error())
		}
	}

	if summary.Failed > 0 {
		return fmt.Errorf("%w: %d of %d", ErrSomeFailed, summary.Failed, summary.Total)
	}
	return nil
}

// buildWatermarkSpec merges explicit watermark flags over saved
// settings. The sentinel marks numeric flags the user did not pass.
func buildWatermarkSpec(f *watermarkCLIFlags, saved *settings.Settings) *rabpdf.WatermarkSpec {
	spec := &rabpdf.WatermarkSpec{
		Text:     f.text,
		Opacity:  saved.Opacity,
		FontSize: saved.FontSize,
		Rotation: saved.RotationDegrees,
	}
	if spec.Text == "" {
		spec.Text = saved.LastWatermarkText
	}
	if f.opacity != valueSentinel {
		spec.Opacity = f.opacity
	}
	if f.fontSize != valueSentinel {
		spec.FontSize = f.fontSize
	}
	if f.rotation != valueSentinel {
		spec.Rotation = f.rotation
	}
	return spec
}

// newLogger returns the diagnostic sink. Quiet mode drops everything;
// errors still reach stderr through main.
func newLogger(quiet bool, stderr io.Writer) rabpdf.Logger {
	if quiet {
		return func(string) {}
	}
	return func(message string) {
		fmt.Fprintln(stderr, message)
	}
}

// drainEvents prints events from the bus until it is closed. Stage and
// progress events are shown only in verbose mode since the logger
// already narrates the run.
func drainEvents(bus *events.Bus, verbose bool, stderr io.Writer) {
	for e := range bus.Events() {
		if !verbose {
			continue
		}
		switch e.Kind {
		case events.KindStage:
			fmt.Fprintf(stderr, "stage: %s\n", e.Message)
		case events.KindProgress:
			fmt.Fprintf(stderr, "progress: %d%%\n", e.Progress)
		case events.KindLog, events.KindDone:
			fmt.Fprintln(stderr, e.Message)
		}
	}
}
