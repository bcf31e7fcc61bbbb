package main

import (
	"testing"

	rabpdf "github.com/Chandler-Lu/rabpdf"
	"github.com/Chandler-Lu/rabpdf/internal/settings"
)

func TestParseFlags(t *testing.T) {
	flags, inputs, err := parseFlags([]string{
		"rabpdf",
		"--outdir", "/tmp/out",
		"--method", "headless",
		"--watermark",
		"--text", "CONFIDENTIAL",
		"--opacity", "0.4",
		"report.docx", "slides.pptx",
	})
	if err != nil {
		t.Fatalf("parseFlags: %v", err)
	}
	if flags.convert.outputDir != "/tmp/out" {
		t.Errorf("outputDir = %q, want /tmp/out", flags.convert.outputDir)
	}
	if flags.convert.method != "headless" {
		t.Errorf("method = %q, want headless", flags.convert.method)
	}
	if !flags.watermark.enabled {
		t.Error("watermark not enabled")
	}
	if flags.watermark.text != "CONFIDENTIAL" {
		t.Errorf("text = %q", flags.watermark.text)
	}
	if flags.watermark.opacity != 0.4 {
		t.Errorf("opacity = %g, want 0.4", flags.watermark.opacity)
	}
	if len(inputs) != 2 || inputs[0] != "report.docx" {
		t.Errorf("inputs = %v", inputs)
	}
}

func TestParseFlagsDefaults(t *testing.T) {
	flags, inputs, err := parseFlags([]string{"rabpdf", "a.docx"})
	if err != nil {
		t.Fatalf("parseFlags: %v", err)
	}
	if flags.convert.method != "auto" {
		t.Errorf("default method = %q, want auto", flags.convert.method)
	}
	if flags.watermark.opacity != valueSentinel {
		t.Errorf("opacity = %g, want sentinel", flags.watermark.opacity)
	}
	if len(inputs) != 1 {
		t.Errorf("inputs = %v", inputs)
	}
}

func TestParseFlagsUnknownFlag(t *testing.T) {
	if _, _, err := parseFlags([]string{"rabpdf", "--bogus"}); err == nil {
		t.Fatal("parseFlags accepted unknown flag")
	}
}

func TestBuildWatermarkSpec(t *testing.T) {
	saved := settings.Default()
	saved.Remember("INTERNAL")
	saved.Opacity = 0.3
	saved.FontSize = 25
	saved.RotationDegrees = 30

	t.Run("settings fill unset flags", func(t *testing.T) {
		f := &watermarkCLIFlags{
			enabled:  true,
			opacity:  valueSentinel,
			fontSize: valueSentinel,
			rotation: valueSentinel,
		}
		spec := buildWatermarkSpec(f, saved)
		want := rabpdf.WatermarkSpec{Text: "INTERNAL", Opacity: 0.3, FontSize: 25, Rotation: 30}
		if *spec != want {
			t.Errorf("spec = %+v, want %+v", *spec, want)
		}
	})

	t.Run("explicit flags win", func(t *testing.T) {
		f := &watermarkCLIFlags{
			enabled:  true,
			text:     "SECRET",
			opacity:  0.8,
			fontSize: 48,
			rotation: 0,
		}
		spec := buildWatermarkSpec(f, saved)
		want := rabpdf.WatermarkSpec{Text: "SECRET", Opacity: 0.8, FontSize: 48, Rotation: 0}
		if *spec != want {
			t.Errorf("spec = %+v, want %+v", *spec, want)
		}
	})
}
