package rabpdf

import (
	"errors"
	"testing"
)

func TestParseMethod(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Method
		wantErr error
	}{
		{name: "auto", input: "auto", want: MethodAuto},
		{name: "native", input: "native", want: MethodNative},
		{name: "headless", input: "headless", want: MethodHeadless},
		{name: "mixed case", input: "Native", want: MethodNative},
		{name: "unknown", input: "fastest", wantErr: ErrUnknownMethod},
		{name: "empty", input: "", wantErr: ErrUnknownMethod},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseMethod(tt.input)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ParseMethod(%q) error = %v, want %v", tt.input, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseMethod(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseMethod(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestWatermarkSpecValidate(t *testing.T) {
	valid := WatermarkSpec{Text: "CONFIDENTIAL", Opacity: 0.2, FontSize: 30}

	tests := []struct {
		name    string
		mutate  func(*WatermarkSpec)
		wantErr error
	}{
		{name: "valid", mutate: func(*WatermarkSpec) {}},
		{name: "empty text", mutate: func(w *WatermarkSpec) { w.Text = "" }, wantErr: ErrEmptyWatermarkText},
		{name: "whitespace text", mutate: func(w *WatermarkSpec) { w.Text = "   " }, wantErr: ErrEmptyWatermarkText},
		{name: "zero opacity", mutate: func(w *WatermarkSpec) { w.Opacity = 0 }, wantErr: ErrInvalidOpacity},
		{name: "opacity above one", mutate: func(w *WatermarkSpec) { w.Opacity = 1.5 }, wantErr: ErrInvalidOpacity},
		{name: "full opacity is valid", mutate: func(w *WatermarkSpec) { w.Opacity = 1 }},
		{name: "zero font size", mutate: func(w *WatermarkSpec) { w.FontSize = 0 }, wantErr: ErrInvalidFontSize},
		{name: "negative font size", mutate: func(w *WatermarkSpec) { w.FontSize = -4 }, wantErr: ErrInvalidFontSize},
		{name: "negative rotation is valid", mutate: func(w *WatermarkSpec) { w.Rotation = -45 }},
		{name: "large rotation is valid", mutate: func(w *WatermarkSpec) { w.Rotation = 720 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := valid
			tt.mutate(&spec)
			err := spec.Validate()
			if tt.wantErr == nil && err != nil {
				t.Fatalf("Validate() unexpected error: %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestAdmitted(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"report.docx", true},
		{"slides.pptx", true},
		{"old.doc", true},
		{"old.ppt", true},
		{"scan.pdf", true},
		{"REPORT.DOCX", true},
		{"notes.txt", false},
		{"archive.zip", false},
		{"noext", false},
		{"sheet.xlsx", false},
	}

	for _, tt := range tests {
		if got := Admitted(tt.path); got != tt.want {
			t.Errorf("Admitted(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestIsOfficeDocument(t *testing.T) {
	if !IsOfficeDocument("a.docx") {
		t.Error("IsOfficeDocument(a.docx) = false, want true")
	}
	if IsOfficeDocument("a.pdf") {
		t.Error("IsOfficeDocument(a.pdf) = true, want false")
	}
	if IsOfficeDocument("a.txt") {
		t.Error("IsOfficeDocument(a.txt) = true, want false")
	}
}

func TestIsWordDocument(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"a.doc", true},
		{"a.DOCX", true},
		{"a.ppt", false},
		{"a.pptx", false},
		{"a.pdf", false},
	}

	for _, tt := range tests {
		if got := IsWordDocument(tt.path); got != tt.want {
			t.Errorf("IsWordDocument(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestOutputNames(t *testing.T) {
	if got := ConvertedName("/tmp/in/Quarterly Report.docx"); got != "Quarterly Report.pdf" {
		t.Errorf("ConvertedName = %q, want %q", got, "Quarterly Report.pdf")
	}
	if got := WatermarkedName("/tmp/out/scan.pdf"); got != "scan_watermarked.pdf" {
		t.Errorf("WatermarkedName = %q, want %q", got, "scan_watermarked.pdf")
	}
	if got := WatermarkedName("archive.v2.pdf"); got != "archive.v2_watermarked.pdf" {
		t.Errorf("WatermarkedName = %q, want %q", got, "archive.v2_watermarked.pdf")
	}
}

func TestLoggerNilSafe(t *testing.T) {
	var log Logger
	log.printf("must not panic: %d", 1)

	var got string
	log = func(m string) { got = m }
	log.printf("value=%d", 7)
	if got != "value=7" {
		t.Errorf("printf produced %q, want %q", got, "value=7")
	}
}
