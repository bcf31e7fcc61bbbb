package pdfgen

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ledongthuc/pdf"
	"golang.org/x/image/font/gofont/goregular"
)

// parsePages opens data with an independent PDF reader and returns the
// page count, verifying the writer produces documents other tools accept.
func parsePages(t *testing.T, data []byte) int {
	t.Helper()
	path := filepath.Join(t.TempDir(), "doc.pdf")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	f, r, err := pdf.Open(path)
	if err != nil {
		t.Fatalf("generated PDF does not parse: %v", err)
	}
	defer func() { _ = f.Close() }()
	return r.NumPage()
}

func TestBlankPage(t *testing.T) {
	data, err := BlankPage(595, 842)
	if err != nil {
		t.Fatalf("BlankPage: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF-1.4")) {
		t.Error("missing PDF header")
	}
	if got := parsePages(t, data); got != 1 {
		t.Errorf("page count = %d, want 1", got)
	}
}

func TestBlankPageBadDimensions(t *testing.T) {
	if _, err := BlankPage(0, 842); !errors.Is(err, ErrBadDimensions) {
		t.Errorf("BlankPage(0, 842) error = %v, want %v", err, ErrBadDimensions)
	}
	if _, err := BlankPage(595, -1); !errors.Is(err, ErrBadDimensions) {
		t.Errorf("BlankPage(595, -1) error = %v, want %v", err, ErrBadDimensions)
	}
}

func TestOverlayBytes(t *testing.T) {
	o := &Overlay{
		Width:    595,
		Height:   842,
		Text:     "CONFIDENTIAL",
		FontSize: 30,
		Opacity:  0.2,
		Rotation: 30,
		Anchors:  []Point{{X: -100, Y: -100}, {X: 0, Y: 0}, {X: 100, Y: 100}},
	}
	data, err := o.Bytes()
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}
	if got := parsePages(t, data); got != 1 {
		t.Errorf("page count = %d, want 1", got)
	}

	// Content stream carries the tiled text and the alpha state.
	if !bytes.Contains(data, []byte("(CONFIDENTIAL) Tj")) {
		t.Error("text draw operator missing")
	}
	if !bytes.Contains(data, []byte("/ca 0.2")) {
		t.Error("alpha graphics state missing")
	}
	if !bytes.Contains(data, []byte("/Helvetica")) {
		t.Error("font dictionary missing")
	}
}

func TestOverlayValidation(t *testing.T) {
	tests := []struct {
		name    string
		overlay Overlay
		wantErr error
	}{
		{
			name:    "empty text",
			overlay: Overlay{Width: 595, Height: 842, FontSize: 30, Opacity: 0.2},
			wantErr: ErrNoText,
		},
		{
			name:    "zero width",
			overlay: Overlay{Height: 842, Text: "X", FontSize: 30, Opacity: 0.2},
			wantErr: ErrBadDimensions,
		},
		{
			name:    "unencodable text",
			overlay: Overlay{Width: 595, Height: 842, Text: "机密", FontSize: 30, Opacity: 0.2},
			wantErr: ErrNotEncodable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.overlay.Bytes(); !errors.Is(err, tt.wantErr) {
				t.Errorf("Bytes() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestOverlayEscapesDelimiters(t *testing.T) {
	o := &Overlay{
		Width:    595,
		Height:   842,
		Text:     `a(b)c\d`,
		FontSize: 20,
		Opacity:  0.5,
		Anchors:  []Point{{}},
	}
	data, err := o.Bytes()
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}
	if !bytes.Contains(data, []byte(`(a\(b\)c\\d) Tj`)) {
		t.Error("string delimiters not escaped in content stream")
	}
	if got := parsePages(t, data); got != 1 {
		t.Errorf("page count = %d, want 1", got)
	}
}

func TestHelveticaTextWidth(t *testing.T) {
	font := Helvetica()

	wide, err := font.TextWidth("WWWW", 10)
	if err != nil {
		t.Fatalf("TextWidth: %v", err)
	}
	narrow, err := font.TextWidth("iiii", 10)
	if err != nil {
		t.Fatalf("TextWidth: %v", err)
	}
	if wide <= narrow {
		t.Errorf("W-run width %g not greater than i-run width %g", wide, narrow)
	}

	// Width scales linearly with size.
	atTen, _ := font.TextWidth("Confidential", 10)
	atTwenty, _ := font.TextWidth("Confidential", 20)
	if diff := atTwenty - 2*atTen; diff > 0.001 || diff < -0.001 {
		t.Errorf("widths do not scale: %g at 10pt, %g at 20pt", atTen, atTwenty)
	}
}

func TestHelveticaRejectsNonLatin1(t *testing.T) {
	if _, err := Helvetica().TextWidth("水印", 10); !errors.Is(err, ErrNotEncodable) {
		t.Errorf("TextWidth error = %v, want %v", err, ErrNotEncodable)
	}
}

// loadTestFont writes the bundled Go Regular font to disk and loads it,
// standing in for a user-supplied TrueType file.
func loadTestFont(t *testing.T) *TrueTypeFont {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.ttf")
	if err := os.WriteFile(path, goregular.TTF, 0o644); err != nil {
		t.Fatal(err)
	}
	f, err := LoadTrueType(path)
	if err != nil {
		t.Fatalf("LoadTrueType: %v", err)
	}
	return f
}

func TestTrueTypeEncodesFontCoveredText(t *testing.T) {
	f := loadTestFont(t)

	// Greek sits outside Latin-1 but inside Go Regular's glyph set, so it
	// must both measure and render.
	const text = "Δοκιμή"
	width, err := f.TextWidth(text, 24)
	if err != nil {
		t.Fatalf("TextWidth: %v", err)
	}
	if width <= 0 {
		t.Fatalf("TextWidth = %g, want > 0", width)
	}
	encoded, err := f.encode(text)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	// Identity-H writes one 2-byte glyph index per rune.
	if want := 2 * len([]rune(text)); len(encoded) != want {
		t.Errorf("encoded length = %d, want %d", len(encoded), want)
	}

	o := &Overlay{
		Width:    595,
		Height:   842,
		Text:     text,
		FontSize: 24,
		Opacity:  0.3,
		Anchors:  []Point{{}},
		Font:     f,
	}
	data, err := o.Bytes()
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}
	if got := parsePages(t, data); got != 1 {
		t.Errorf("page count = %d, want 1", got)
	}
	if !bytes.Contains(data, []byte("/Identity-H")) {
		t.Error("composite font encoding missing")
	}
	if !bytes.Contains(data, []byte("/CIDFontType2")) {
		t.Error("descendant font dictionary missing")
	}
	if !bytes.Contains(data, []byte("/FontFile2")) {
		t.Error("embedded font program missing")
	}
}

func TestTrueTypeRejectsUncoveredText(t *testing.T) {
	f := loadTestFont(t)

	// Go Regular carries no CJK glyphs.
	if _, err := f.TextWidth("深势", 24); !errors.Is(err, ErrNotEncodable) {
		t.Errorf("TextWidth error = %v, want %v", err, ErrNotEncodable)
	}
	if _, err := f.encode("深势"); !errors.Is(err, ErrNotEncodable) {
		t.Errorf("encode error = %v, want %v", err, ErrNotEncodable)
	}
}

func TestLoadTrueTypeMissingFile(t *testing.T) {
	if _, err := LoadTrueType(filepath.Join(t.TempDir(), "missing.ttf")); err == nil {
		t.Fatal("LoadTrueType succeeded on missing file")
	}
}

func TestLoadTrueTypeGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.ttf")
	if err := os.WriteFile(path, []byte("not a font"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadTrueType(path); !errors.Is(err, ErrFontUnreadable) {
		t.Errorf("LoadTrueType error = %v, want %v", err, ErrFontUnreadable)
	}
}
