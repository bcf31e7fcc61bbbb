package rabpdf

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/Chandler-Lu/rabpdf/internal/fileutil"
	"github.com/Chandler-Lu/rabpdf/internal/pdfgen"
)

// stampDesc merges an overlay page onto a source page unchanged: same
// size, centered, fully opaque (the overlay itself carries the requested
// alpha), no additional rotation.
const stampDesc = "scalefactor:1 abs, opacity:1, rotation:0, position:c"

// Engine composites tiled text watermarks onto PDF documents. The font is
// resolved once at construction and reused for every document in a run.
type Engine struct {
	log  Logger
	font pdfgen.Font
	conf *model.Configuration
}

// NewEngine creates a watermark Engine. fontPath selects a TrueType font
// file; the empty string selects the built-in Helvetica. A missing or
// unparseable font file fails here, before any document is touched.
func NewEngine(log Logger, fontPath string) (*Engine, error) {
	e := &Engine{
		log:  log,
		font: pdfgen.Helvetica(),
		conf: model.NewDefaultConfiguration(),
	}
	if fontPath != "" {
		font, err := pdfgen.LoadTrueType(fontPath)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrFontNotFound, err)
		}
		e.font = font
	}
	return e, nil
}

// Apply overlays the watermark on every page of srcPDF and writes
// <stem>_watermarked.pdf into outputDir. The source file is never
// modified; on any failure the partial output is removed.
func (e *Engine) Apply(ctx context.Context, srcPDF string, spec WatermarkSpec, outputDir string) (string, error) {
	if err := spec.Validate(); err != nil {
		return "", err
	}

	// Measure up front so unencodable text fails before any page work.
	textWidth, err := e.font.TextWidth(spec.Text, spec.FontSize)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrTextNotEncodable, spec.Text)
	}

	pageCount, err := api.PageCountFile(srcPDF)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", filepath.Base(srcPDF), err)
	}
	if pageCount == 0 {
		return "", fmt.Errorf("%w: %s", ErrEmptyDocument, filepath.Base(srcPDF))
	}

	dims, err := api.PageDimsFile(srcPDF)
	if err != nil {
		return "", fmt.Errorf("reading page dimensions of %s: %w", filepath.Base(srcPDF), err)
	}

	outPath := filepath.Join(outputDir, WatermarkedName(srcPDF))
	if err := fileutil.CopyFile(srcPDF, outPath); err != nil {
		return "", err
	}

	if err := e.stamp(ctx, outPath, spec, textWidth, groupByGeometry(dims)); err != nil {
		_ = os.Remove(outPath)
		return "", err
	}

	// The output must carry exactly one page per source page.
	outCount, err := api.PageCountFile(outPath)
	if err != nil || outCount != pageCount {
		_ = os.Remove(outPath)
		if err == nil {
			err = fmt.Errorf("page count changed: %d != %d", outCount, pageCount)
		}
		return "", fmt.Errorf("verifying %s: %w", filepath.Base(outPath), err)
	}

	e.log.printf("Watermark added: %s", filepath.Base(outPath))
	return outPath, nil
}

// stamp builds one overlay per distinct page geometry and merges it onto
// the pages of that geometry, in place. Overlay files are scoped
// resources, removed on every exit path.
func (e *Engine) stamp(ctx context.Context, pdfPath string, spec WatermarkSpec, textWidth float64, groups []geometryGroup) error {
	single := len(groups) == 1

	for _, g := range groups {
		if err := ctx.Err(); err != nil {
			return err
		}

		overlayPath, cleanup, err := fileutil.TempFile("pdf")
		if err != nil {
			return err
		}
		err = func() error {
			defer cleanup()

			overlay := &pdfgen.Overlay{
				Width:    g.geom.Width,
				Height:   g.geom.Height,
				Text:     spec.Text,
				FontSize: spec.FontSize,
				Opacity:  spec.Opacity,
				Rotation: spec.Rotation,
				Anchors:  anchorsFor(g.geom, spec, textWidth),
				Font:     e.font,
			}
			if err := overlay.WriteFile(overlayPath); err != nil {
				return fmt.Errorf("building overlay: %w", err)
			}

			wm, err := api.PDFWatermark(overlayPath, stampDesc, true, false, types.POINTS)
			if err != nil {
				return fmt.Errorf("preparing overlay stamp: %w", err)
			}

			var selection []string
			if !single {
				selection = pageSelection(g.pages)
			}
			if err := api.AddWatermarksFile(pdfPath, pdfPath, selection, wm, e.conf); err != nil {
				return fmt.Errorf("merging overlay: %w", err)
			}
			return nil
		}()
		if err != nil {
			return err
		}
	}
	return nil
}

// anchorsFor converts the tile layout to overlay anchor points.
func anchorsFor(geom PageGeometry, spec WatermarkSpec, textWidth float64) []pdfgen.Point {
	layout := TileLayout(geom, spec, textWidth)
	points := make([]pdfgen.Point, len(layout))
	for i, p := range layout {
		points[i] = pdfgen.Point{X: p.X, Y: p.Y}
	}
	return points
}

// geometryGroup collects the 1-based page numbers sharing one geometry.
type geometryGroup struct {
	geom  PageGeometry
	pages []int
}

// groupByGeometry buckets pages by their dimensions, rounded to a tenth of
// a point. Order follows first appearance.
func groupByGeometry(dims []types.Dim) []geometryGroup {
	type key struct{ w, h int }
	index := make(map[key]int)
	var groups []geometryGroup

	for i, d := range dims {
		k := key{w: int(d.Width*10 + 0.5), h: int(d.Height*10 + 0.5)}
		gi, ok := index[k]
		if !ok {
			gi = len(groups)
			index[k] = gi
			groups = append(groups, geometryGroup{geom: PageGeometry{Width: d.Width, Height: d.Height}})
		}
		groups[gi].pages = append(groups[gi].pages, i+1)
	}
	return groups
}

// pageSelection renders 1-based page numbers in pdfcpu's selection syntax.
func pageSelection(pages []int) []string {
	sel := make([]string, len(pages))
	for i, p := range pages {
		sel[i] = strconv.Itoa(p)
	}
	return sel
}
