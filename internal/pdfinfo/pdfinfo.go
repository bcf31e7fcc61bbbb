// Package pdfinfo probes produced PDF files independently of the library
// that wrote them. Conversion engines may exit cleanly while emitting a
// truncated or empty document, so outputs are re-opened and page-counted
// before a job is declared successful.
package pdfinfo

import (
	"fmt"

	"github.com/ledongthuc/pdf"
)

// PageCount opens the file and returns its page count.
func PageCount(path string) (int, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return 0, fmt.Errorf("pdfinfo: opening %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()
	return r.NumPage(), nil
}
