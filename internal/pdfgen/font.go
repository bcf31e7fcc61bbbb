package pdfgen

// Font provides text metrics and PDF font resources for the overlay
// writer. The two implementations are the built-in Helvetica core font,
// limited to single-byte Latin-1 text, and embedded TrueType fonts loaded
// from disk, which address their full glyph set through Identity-H.
type Font interface {
	// Name returns the PostScript name of the font.
	Name() string

	// TextWidth measures text at the given size in PDF points.
	TextWidth(text string, size float64) (float64, error)

	// encode converts text to the byte string written into the content
	// stream, in whatever encoding the font dictionary declares.
	encode(text string) ([]byte, error)

	// writeObjects appends the font's PDF objects to d. The first object
	// written must be the font dictionary; overlay layouts reference it by
	// its fixed position.
	writeObjects(d *doc) error
}

// encodeLatin1 maps text to Latin-1 bytes, the subset the built-in core
// font can address with a single-byte encoding.
func encodeLatin1(text string) ([]byte, error) {
	out := make([]byte, 0, len(text))
	for _, r := range text {
		if r > 0xff {
			return nil, ErrNotEncodable
		}
		out = append(out, byte(r))
	}
	return out, nil
}
