package omr

import (
	"image"
	"math"

	"omr-decoder/pkg/geometry"

	"gocv.io/x/gocv"
)

// Contour is an ordered sequence of points tracing a closed region on a
// binary mask, plus the derived attributes the rest of the pipeline
// needs. Once built it holds no gocv handles, so it can outlive the
// gocv.PointVector it was extracted from.
type Contour struct {
	Points      []image.Point
	Box         geometry.RectInt
	Centroid    geometry.Point2D
	Area        float64
	Perimeter   float64
	HullArea    float64
	HasEllipse  bool
	EllipseArea float64
}

// newContour extracts a Contour's derived attributes from a gocv
// contour (a single entry of a gocv.PointsVector).
func newContour(pv gocv.PointVector) Contour {
	pts := pv.ToPoints()
	pts2D := toPoints2D(pts)
	box := gocv.BoundingRect(pv)
	c := Contour{
		Points:    pts,
		Box:       geometry.RectInt{X: box.Min.X, Y: box.Min.Y, Width: box.Dx(), Height: box.Dy()},
		Centroid:  geometry.Centroid(pts2D),
		Area:      gocv.ContourArea(pv),
		Perimeter: gocv.ArcLength(pv, true),
	}

	if len(pts) >= 5 {
		ellipse := gocv.FitEllipse(pv)
		// RotatedRect.Width/Height are the full axis lengths.
		c.EllipseArea = math.Pi * (float64(ellipse.Width) / 2) * (float64(ellipse.Height) / 2)
		c.HasEllipse = true
	} else {
		hull := geometry.ConvexHull(pts2D)
		c.HullArea = math.Abs(geometry.PolygonArea(hull))
	}

	return c
}

// AspectRatio returns the bounding box's width/height ratio.
func (c Contour) AspectRatio() float64 {
	if c.Box.Height == 0 {
		return 0
	}
	return float64(c.Box.Width) / float64(c.Box.Height)
}

// Circularity is 4*pi*area/perimeter^2; 1 for a perfect circle.
func (c Contour) Circularity() float64 {
	if c.Perimeter == 0 {
		return 0
	}
	return 4 * math.Pi * c.Area / (c.Perimeter * c.Perimeter)
}

// toMask builds a gocv PointVector from the stored points, for the
// occasional operation (drawing a fill mask) that needs one back.
func (c Contour) toMask(target *gocv.Mat) {
	pvs := gocv.NewPointsVectorFromPoints([][]image.Point{c.Points})
	defer pvs.Close()
	gocv.DrawContours(target, pvs, 0, whiteColor, -1)
}

func toPoints2D(pts []image.Point) []geometry.Point2D {
	out := make([]geometry.Point2D, len(pts))
	for i, p := range pts {
		out[i] = geometry.Point2D{X: float64(p.X), Y: float64(p.Y)}
	}
	return out
}
