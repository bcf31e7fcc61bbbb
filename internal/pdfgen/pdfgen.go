// Package pdfgen writes minimal single-page PDF documents: blank pages and
// tiled text overlays. It covers exactly what the watermark compositor
// needs to produce an overlay page; parsing, merging and validation of real
// documents stay with pdfcpu.
package pdfgen

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"os"
)

// Sentinel errors for overlay generation.
var (
	ErrNoText         = errors.New("pdfgen: overlay text cannot be empty")
	ErrBadDimensions  = errors.New("pdfgen: page dimensions must be positive")
	ErrNotEncodable   = errors.New("pdfgen: text contains characters outside the font encoding")
	ErrFontUnreadable = errors.New("pdfgen: font file cannot be parsed")
)

// Point is a text anchor relative to the page center, in PDF points.
type Point struct {
	X float64
	Y float64
}

// Overlay describes a single-page tiled text overlay. Width and Height are
// in PDF points. Anchors are interpreted in the coordinate space obtained
// by translating the origin to the page center and rotating
// counter-clockwise by Rotation degrees.
type Overlay struct {
	Width    float64
	Height   float64
	Text     string
	FontSize float64
	Opacity  float64
	Rotation float64
	Anchors  []Point
	Font     Font // nil selects the built-in Helvetica
}

// Gray level of the watermark text fill.
const fillGray = 0.5

// Bytes renders the overlay as a complete one-page PDF document.
func (o *Overlay) Bytes() ([]byte, error) {
	if o.Width <= 0 || o.Height <= 0 {
		return nil, fmt.Errorf("%w: %gx%g", ErrBadDimensions, o.Width, o.Height)
	}
	if o.Text == "" {
		return nil, ErrNoText
	}
	font := o.Font
	if font == nil {
		font = Helvetica()
	}
	encoded, err := font.encode(o.Text)
	if err != nil {
		return nil, err
	}

	var content bytes.Buffer
	content.WriteString("q\n/GS0 gs\n")
	fmt.Fprintf(&content, "%s g\n", num(fillGray))

	// Translate to the page center and rotate, combined into one matrix.
	rad := o.Rotation * math.Pi / 180
	cos, sin := math.Cos(rad), math.Sin(rad)
	fmt.Fprintf(&content, "%s %s %s %s %s %s cm\n",
		num(cos), num(sin), num(-sin), num(cos), num(o.Width/2), num(o.Height/2))

	content.WriteString("BT\n")
	fmt.Fprintf(&content, "/F1 %s Tf\n", num(o.FontSize))
	for _, p := range o.Anchors {
		fmt.Fprintf(&content, "1 0 0 1 %s %s Tm (%s) Tj\n", num(p.X), num(p.Y), escapeString(encoded))
	}
	content.WriteString("ET\nQ\n")

	d := newDoc()
	d.add("<< /Type /Catalog /Pages 2 0 R >>")
	d.add("<< /Type /Pages /Kids [3 0 R] /Count 1 >>")
	d.add(fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 %s %s] "+
		"/Resources << /Font << /F1 6 0 R >> /ExtGState << /GS0 5 0 R >> >> /Contents 4 0 R >>",
		num(o.Width), num(o.Height)))
	d.addStream("", content.Bytes())
	d.add(fmt.Sprintf("<< /Type /ExtGState /ca %s /CA %s >>", num(o.Opacity), num(o.Opacity)))
	if err := font.writeObjects(d); err != nil {
		return nil, err
	}
	return d.bytes(), nil
}

// WriteFile renders the overlay into path.
func (o *Overlay) WriteFile(path string) error {
	data, err := o.Bytes()
	if err != nil {
		return err
	}
	// #nosec G306 -- overlay files are transient, non-sensitive artifacts
	return os.WriteFile(path, data, 0o644)
}

// BlankPage returns a complete one-page PDF with no content, used to build
// test fixtures and placeholder documents.
func BlankPage(width, height float64) ([]byte, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %gx%g", ErrBadDimensions, width, height)
	}
	d := newDoc()
	d.add("<< /Type /Catalog /Pages 2 0 R >>")
	d.add("<< /Type /Pages /Kids [3 0 R] /Count 1 >>")
	d.add(fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 %s %s] /Resources << >> /Contents 4 0 R >>",
		num(width), num(height)))
	d.addStream("", nil)
	return d.bytes(), nil
}

// doc accumulates numbered PDF objects and serializes the cross-reference
// table. Object numbers are assigned sequentially from 1; layouts with
// forward references rely on fixed numbering.
type doc struct {
	buf     bytes.Buffer
	offsets []int
}

func newDoc() *doc {
	d := &doc{}
	d.buf.WriteString("%PDF-1.4\n%")
	// Binary marker comment so transfer tools treat the file as binary.
	d.buf.Write([]byte{0xe2, 0xe3, 0xcf, 0xd3})
	d.buf.WriteString("\n")
	return d
}

// add appends one object body and returns its object number.
func (d *doc) add(body string) int {
	n := len(d.offsets) + 1
	d.offsets = append(d.offsets, d.buf.Len())
	fmt.Fprintf(&d.buf, "%d 0 obj\n%s\nendobj\n", n, body)
	return n
}

// addStream appends a stream object. extra holds additional dictionary
// entries beyond /Length.
func (d *doc) addStream(extra string, data []byte) int {
	n := len(d.offsets) + 1
	d.offsets = append(d.offsets, d.buf.Len())
	fmt.Fprintf(&d.buf, "%d 0 obj\n<< /Length %d %s>>\nstream\n", n, len(data), extra)
	d.buf.Write(data)
	d.buf.WriteString("\nendstream\nendobj\n")
	return n
}

// bytes finalizes the document with xref table and trailer.
func (d *doc) bytes() []byte {
	xrefOffset := d.buf.Len()
	fmt.Fprintf(&d.buf, "xref\n0 %d\n", len(d.offsets)+1)
	d.buf.WriteString("0000000000 65535 f \n")
	for _, off := range d.offsets {
		fmt.Fprintf(&d.buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&d.buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n",
		len(d.offsets)+1, xrefOffset)
	return d.buf.Bytes()
}

// num formats a float for a PDF content stream or dictionary: fixed
// precision, trailing zeros trimmed.
func num(f float64) string {
	s := fmt.Sprintf("%.4f", f)
	s = trimRight(s, '0')
	s = trimRight(s, '.')
	return s
}

func trimRight(s string, c byte) string {
	for len(s) > 0 && s[len(s)-1] == c {
		s = s[:len(s)-1]
	}
	return s
}

// escapeString escapes the characters with special meaning inside PDF
// literal strings.
func escapeString(b []byte) string {
	var out bytes.Buffer
	for _, c := range b {
		switch c {
		case '(', ')', '\\':
			out.WriteByte('\\')
			out.WriteByte(c)
		case '\n':
			out.WriteString(`\n`)
		case '\r':
			out.WriteString(`\r`)
		default:
			out.WriteByte(c)
		}
	}
	return out.String()
}
