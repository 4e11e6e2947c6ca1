package omr

import (
	"image"
	"testing"

	"omr-decoder/pkg/geometry"

	"github.com/stretchr/testify/assert"
	"gocv.io/x/gocv"
)

func circularContour(diameter int) Contour {
	// A bounding box sized after a circle of the given diameter, with
	// area/perimeter set to match a perfect circle so Circularity() == 1.
	// Points trace an actual circle so the centroid-containment check in
	// isValidBubbleShape passes.
	r := float64(diameter) / 2
	area := 3.14159265 * r * r
	perimeter := 2 * 3.14159265 * r
	pts2D := geometry.GenerateCirclePoints(r, r, r, 16)
	pts := make([]image.Point, len(pts2D))
	for i, p := range pts2D {
		pts[i] = image.Point{X: int(p.X), Y: int(p.Y)}
	}
	return Contour{
		Box:         geometry.RectInt{X: 0, Y: 0, Width: diameter, Height: diameter},
		Centroid:    geometry.Centroid(pts2D),
		Area:        area,
		Perimeter:   perimeter,
		HasEllipse:  true,
		EllipseArea: area,
		Points:      pts,
	}
}

func TestIsShapeAcceptableAcceptsCircle(t *testing.T) {
	p := DefaultParams()
	c := circularContour(24)
	assert.True(t, isShapeAcceptable(c, p))
}

func TestIsShapeAcceptableRejectsElongatedShape(t *testing.T) {
	p := DefaultParams()
	c := circularContour(24)
	c.Box.Width = 60 // aspect ratio now 60/24 = 2.5, outside AspectRatioMax
	assert.False(t, isShapeAcceptable(c, p))
}

func TestIsShapeAcceptableRejectsLowCircularity(t *testing.T) {
	p := DefaultParams()
	c := circularContour(24)
	c.Perimeter *= 3 // inflate perimeter to tank circularity
	assert.False(t, isShapeAcceptable(c, p))
}

func TestIsValidBubbleShapeRejectsSparseContour(t *testing.T) {
	p := DefaultParams()
	c := circularContour(24)
	c.Points = make([]image.Point, 2) // below MinContourPoints
	assert.False(t, isValidBubbleShape(c, p))
}

func TestIsValidBubbleShapeEllipseRatio(t *testing.T) {
	p := DefaultParams()
	c := circularContour(24)
	c.EllipseArea = c.Area * 3 // ratio 0.33, below the 0.4 floor
	assert.False(t, isValidBubbleShape(c, p))
}

func TestOverlapFractionNoOverlap(t *testing.T) {
	a := geometry.RectInt{X: 0, Y: 0, Width: 10, Height: 10}
	b := geometry.RectInt{X: 100, Y: 100, Width: 10, Height: 10}
	assert.Equal(t, 0.0, overlapFraction(a, b))
}

func TestOverlapFractionFullyContained(t *testing.T) {
	outer := geometry.RectInt{X: 0, Y: 0, Width: 20, Height: 20}
	inner := geometry.RectInt{X: 5, Y: 5, Width: 10, Height: 10}
	assert.InDelta(t, 1.0, overlapFraction(outer, inner), 1e-9)
}

func TestIsTextOrLineRejectsThinSliver(t *testing.T) {
	gray := gocv.NewMatWithSize(200, 200, gocv.MatTypeCV8U)
	defer gray.Close()

	c := Contour{Box: geometry.RectInt{X: 10, Y: 10, Width: 2, Height: 20}}
	assert.True(t, isTextOrLine(c, gray, 200))
}

func TestIsTextOrLineAcceptsSquareInBubbleBand(t *testing.T) {
	gray := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(255, 0, 0, 0), 2000, 200, gocv.MatTypeCV8U)
	defer gray.Close()

	c := Contour{Box: geometry.RectInt{X: 10, Y: 1200, Width: 20, Height: 20}}
	assert.False(t, isTextOrLine(c, gray, 2000))
}
