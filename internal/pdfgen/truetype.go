package pdfgen

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
)

// glyphSpaceUnits is the ppem used when extracting metrics, matching the
// 1/1000 glyph space PDF font dictionaries expect.
const glyphSpaceUnits = 1000

// TrueTypeFont is a user-supplied TrueType font, measured via sfnt and
// embedded whole as a Type0 composite font. Text is written as 2-byte
// glyph indices under Identity-H, so any rune the font carries a glyph
// for is renderable, CJK included.
type TrueTypeFont struct {
	data   []byte
	parsed *sfnt.Font
	psName string

	// used collects the glyph indices of the last encoded text, in
	// first-appearance order, for the /W widths array.
	used []sfnt.GlyphIndex
}

var _ Font = (*TrueTypeFont)(nil)

// LoadTrueType reads and parses a TrueType font file.
func LoadTrueType(path string) (*TrueTypeFont, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- user-provided font path
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFontUnreadable, err)
	}
	parsed, err := sfnt.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFontUnreadable, err)
	}

	var buf sfnt.Buffer
	name, err := parsed.Name(&buf, sfnt.NameIDPostScript)
	if err != nil || name == "" {
		name = "Embedded"
	}
	// PostScript names must not contain spaces.
	name = strings.ReplaceAll(name, " ", "")

	return &TrueTypeFont{data: data, parsed: parsed, psName: name}, nil
}

// Name returns the font's PostScript name.
func (f *TrueTypeFont) Name() string { return f.psName }

// TextWidth measures text at the given size in PDF points.
func (f *TrueTypeFont) TextWidth(text string, size float64) (float64, error) {
	var buf sfnt.Buffer
	var units float64
	for _, r := range text {
		adv, err := f.glyphAdvance(&buf, r)
		if err != nil {
			return 0, err
		}
		units += adv
	}
	return units / glyphSpaceUnits * size, nil
}

// encode maps text to big-endian 2-byte glyph indices for Identity-H.
// Only runes the font has no glyph for are unencodable; index 0 is
// .notdef.
func (f *TrueTypeFont) encode(text string) ([]byte, error) {
	var buf sfnt.Buffer
	out := make([]byte, 0, len(text)*2)
	seen := make(map[sfnt.GlyphIndex]bool)
	f.used = f.used[:0]
	for _, r := range text {
		idx, err := f.parsed.GlyphIndex(&buf, r)
		if err != nil || idx == 0 {
			return nil, ErrNotEncodable
		}
		out = append(out, byte(idx>>8), byte(idx))
		if !seen[idx] {
			seen[idx] = true
			f.used = append(f.used, idx)
		}
	}
	return out, nil
}

// glyphAdvance returns the advance width of r in glyph space units.
func (f *TrueTypeFont) glyphAdvance(buf *sfnt.Buffer, r rune) (float64, error) {
	idx, err := f.parsed.GlyphIndex(buf, r)
	if err != nil || idx == 0 {
		return 0, ErrNotEncodable
	}
	adv, err := f.parsed.GlyphAdvance(buf, idx, fixed.I(glyphSpaceUnits), font.HintingNone)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrFontUnreadable, err)
	}
	return fixedToFloat(adv), nil
}

// writeObjects emits the Type0 font, its CIDFontType2 descendant carrying
// the widths of the glyphs the overlay uses, the descriptor and the
// embedded font program.
func (f *TrueTypeFont) writeObjects(d *doc) error {
	fontNum := len(d.offsets) + 1
	cidNum := fontNum + 1
	descNum := fontNum + 2
	fileNum := fontNum + 3

	d.add(fmt.Sprintf("<< /Type /Font /Subtype /Type0 /BaseFont /%s "+
		"/Encoding /Identity-H /DescendantFonts [%d 0 R] >>", f.psName, cidNum))

	var buf sfnt.Buffer
	var w strings.Builder
	w.WriteString("[")
	for _, gid := range f.used {
		adv, err := f.parsed.GlyphAdvance(&buf, gid, fixed.I(glyphSpaceUnits), font.HintingNone)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrFontUnreadable, err)
		}
		fmt.Fprintf(&w, " %d [%d]", gid, int(fixedToFloat(adv)+0.5))
	}
	w.WriteString(" ]")

	d.add(fmt.Sprintf("<< /Type /Font /Subtype /CIDFontType2 /BaseFont /%s "+
		"/CIDSystemInfo << /Registry (Adobe) /Ordering (Identity) /Supplement 0 >> "+
		"/FontDescriptor %d 0 R /DW 1000 /W %s /CIDToGIDMap /Identity >>",
		f.psName, descNum, w.String()))

	bounds, err := f.parsed.Bounds(&buf, fixed.I(glyphSpaceUnits), font.HintingNone)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrFontUnreadable, err)
	}
	metrics, err := f.parsed.Metrics(&buf, fixed.I(glyphSpaceUnits), font.HintingNone)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrFontUnreadable, err)
	}
	// Flags bit 6 (value 32) marks a nonsymbolic font.
	d.add(fmt.Sprintf("<< /Type /FontDescriptor /FontName /%s /Flags 32 "+
		"/FontBBox [%d %d %d %d] /ItalicAngle 0 /Ascent %d /Descent %d /CapHeight %d /StemV 80 /FontFile2 %d 0 R >>",
		f.psName,
		int(fixedToFloat(bounds.Min.X)), int(-fixedToFloat(bounds.Max.Y)),
		int(fixedToFloat(bounds.Max.X)), int(-fixedToFloat(bounds.Min.Y)),
		int(fixedToFloat(metrics.Ascent)), -int(fixedToFloat(metrics.Descent)),
		int(fixedToFloat(metrics.CapHeight)), fileNum))

	d.addStream(fmt.Sprintf("/Length1 %d ", len(f.data)), f.data)
	return nil
}

func fixedToFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64
}
