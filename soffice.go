package rabpdf

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/Chandler-Lu/rabpdf/internal/fileutil"
)

// Fixed install locations probed before falling back to a PATH lookup.
var (
	sofficeDarwinPath   = "/Applications/LibreOffice.app/Contents/MacOS/soffice"
	sofficeWindowsPaths = []string{
		`C:\Program Files\LibreOffice\program\soffice.exe`,
		`C:\Program Files (x86)\LibreOffice\program\soffice.exe`,
	}
)

// SofficeBackend converts documents by invoking the headless LibreOffice
// engine as a subprocess. LibreOffice may exit 0 while silently failing, so
// success additionally requires the expected output file to exist.
type SofficeBackend struct {
	Log Logger

	// goos and lookPath are overridable for tests.
	goos     string
	lookPath func(string) (string, error)
}

var _ Backend = (*SofficeBackend)(nil)

// NewSofficeBackend creates the headless LibreOffice backend.
func NewSofficeBackend(log Logger) *SofficeBackend {
	return &SofficeBackend{Log: log, goos: runtime.GOOS, lookPath: exec.LookPath}
}

// Name implements Backend.
func (b *SofficeBackend) Name() string { return "libreoffice" }

// Available reports whether the soffice executable can be located.
func (b *SofficeBackend) Available() bool { return b.executable() != "" }

// executable locates the soffice binary: fixed install paths on macOS and
// Windows, PATH lookup everywhere else.
func (b *SofficeBackend) executable() string {
	switch b.goos {
	case "darwin":
		if fileutil.FileExists(sofficeDarwinPath) {
			return sofficeDarwinPath
		}
	case "windows":
		for _, p := range sofficeWindowsPaths {
			if fileutil.FileExists(p) {
				return p
			}
		}
	}
	for _, name := range []string{"libreoffice", "soffice"} {
		if p, err := b.lookPath(name); err == nil {
			return p
		}
	}
	return ""
}

// Convert implements Backend. It runs
//
//	soffice --headless --convert-to pdf --outdir <dir> <input>
//
// and treats a non-zero exit, a missing output file, or a context timeout
// as failure. Arguments are passed as a direct argv, so paths containing
// spaces need no quoting.
func (b *SofficeBackend) Convert(ctx context.Context, inputPath, outputDir string) error {
	bin := b.executable()
	if bin == "" {
		return ErrEngineNotFound
	}

	b.Log.printf("Converting %s with LibreOffice...", filepath.Base(inputPath))

	cmd := exec.CommandContext(ctx, bin,
		"--headless", "--convert-to", "pdf", "--outdir", outputDir, inputPath)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w: %v: %s", ErrConversionFailed, err, firstLine(out))
	}

	produced := filepath.Join(outputDir, ConvertedName(inputPath))
	if !fileutil.FileExists(produced) {
		return fmt.Errorf("%w: %s", ErrOutputMissing, firstLine(out))
	}
	return nil
}

// firstLine trims engine output to a single diagnostic line.
func firstLine(out []byte) string {
	s := strings.TrimSpace(string(out))
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return s
}
