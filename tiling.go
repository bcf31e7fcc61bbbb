package rabpdf

// TilePoint is one watermark anchor, expressed relative to the page center
// in the rotated overlay coordinate space.
type TilePoint struct {
	X float64
	Y float64
}

// Tile strides relative to the measured text width and the font size.
const (
	tileHorizontalFactor = 1.5
	tileVerticalFactor   = 5.0
)

// TileLayout computes the anchor points at which the watermark text is
// drawn. The text is tiled across a region twice the page's width and twice
// its height in each direction, which guarantees full coverage after the
// overlay is rotated about the page center. Strides use integer
// pixel-equivalent units consistent with PDF points.
func TileLayout(geom PageGeometry, spec WatermarkSpec, textWidth float64) []TilePoint {
	xBound := int(geom.Width * 2)
	yBound := int(geom.Height * 2)
	xStride := int(textWidth * tileHorizontalFactor)
	yStride := int(spec.FontSize * tileVerticalFactor)
	if xStride < 1 {
		xStride = 1
	}
	if yStride < 1 {
		yStride = 1
	}

	var points []TilePoint
	for x := -xBound; x < xBound; x += xStride {
		for y := -yBound; y < yBound; y += yStride {
			points = append(points, TilePoint{X: float64(x), Y: float64(y)})
		}
	}
	return points
}
