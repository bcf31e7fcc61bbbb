package rabpdf

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Method selects the conversion backend policy.
type Method string

// Conversion method constants.
const (
	MethodAuto     Method = "auto"
	MethodNative   Method = "native"
	MethodHeadless Method = "headless"
)

// ParseMethod converts a string to a Method (case-insensitive).
func ParseMethod(s string) (Method, error) {
	switch Method(strings.ToLower(s)) {
	case MethodAuto:
		return MethodAuto, nil
	case MethodNative:
		return MethodNative, nil
	case MethodHeadless:
		return MethodHeadless, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMethod, s)
}

// Job describes one document conversion. Jobs are immutable; one is created
// per input file at the start of a batch run and discarded after its outcome
// is recorded.
type Job struct {
	InputPath string
	OutputDir string
	Method    Method
}

// Outcome records the result of one conversion job.
type Outcome struct {
	Job          Job
	Success      bool
	ProducedPath string // path of the converted PDF, empty on failure
	BackendUsed  string
	Diagnostic   string
}

// WatermarkSpec describes the text watermark overlaid on every PDF page.
// Rotation is in degrees, counter-clockwise, about the page center; it is
// unconstrained and wraps modulo 360 visually.
type WatermarkSpec struct {
	Text     string
	Opacity  float64 // fractional alpha in (0, 1]
	FontSize float64 // in PDF points
	Rotation float64 // degrees
}

// Validate checks that the watermark parameters are usable.
func (w WatermarkSpec) Validate() error {
	if strings.TrimSpace(w.Text) == "" {
		return ErrEmptyWatermarkText
	}
	if w.Opacity <= 0 || w.Opacity > 1 {
		return fmt.Errorf("%w: got %g", ErrInvalidOpacity, w.Opacity)
	}
	if w.FontSize <= 0 {
		return fmt.Errorf("%w: got %g", ErrInvalidFontSize, w.FontSize)
	}
	return nil
}

// PageGeometry holds the dimensions of a single PDF page in points.
// Pages within one document may have distinct geometries.
type PageGeometry struct {
	Width  float64
	Height float64
}

// DependencyStatus reports whether the headless conversion engine is
// installed. It is recomputed on demand and never cached.
type DependencyStatus struct {
	Installed bool
}

// Logger is the diagnostic sink consumed by the core. The zero value (nil)
// discards messages.
type Logger func(message string)

func (l Logger) printf(format string, args ...any) {
	if l != nil {
		l(fmt.Sprintf(format, args...))
	}
}

// Extensions admitted into a processing batch. Anything else is silently
// ignored.
var admittedExtensions = map[string]bool{
	".pptx": true,
	".ppt":  true,
	".pdf":  true,
	".docx": true,
	".doc":  true,
}

// Admitted reports whether the file's extension is accepted for processing.
func Admitted(path string) bool {
	return admittedExtensions[strings.ToLower(filepath.Ext(path))]
}

// IsOfficeDocument reports whether the file needs conversion before
// watermarking. PDF inputs skip the conversion stage.
func IsOfficeDocument(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return admittedExtensions[ext] && ext != ".pdf"
}

// IsWordDocument distinguishes word-processing from presentation files for
// the native automation backend.
func IsWordDocument(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".doc", ".docx":
		return true
	}
	return false
}

// stem returns the file name without its extension.
func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// ConvertedName returns the output file name for a converted document.
func ConvertedName(inputPath string) string {
	return stem(inputPath) + ".pdf"
}

// WatermarkedName returns the output file name for a watermarked PDF.
func WatermarkedName(pdfPath string) string {
	return stem(pdfPath) + "_watermarked.pdf"
}
