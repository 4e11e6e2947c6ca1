package omr

import (
	"image"
	"math"

	"omr-decoder/internal/omrlog"
	"omr-decoder/pkg/geometry"

	"gocv.io/x/gocv"
)

// detectBubbles extracts candidate bubble contours from the binary
// mask, filtering by size, position, shape, and text/line rejection,
// per §4.2. It returns an empty (not nil-erroring) slice when nothing
// survives; the caller decides whether that is a hard error.
func detectBubbles(mask, gray gocv.Mat, p Params, log omrlog.Logger) []Candidate {
	w, h := mask.Cols(), mask.Rows()

	contours := gocv.FindContours(mask, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	minArea := math.Max(p.MinBubbleArea, float64(w*h)*5e-5)
	maxArea := math.Min(p.MaxBubbleArea, float64(w*h)*2e-3)

	headerBoundary := 0.40 * float64(h)
	footerBoundary := 0.95 * float64(h)

	var candidates []Candidate
	for i := 0; i < contours.Size(); i++ {
		pv := contours.At(i)
		area := gocv.ContourArea(pv)
		if area < minArea || area > maxArea {
			continue
		}

		c := newContour(pv)
		if float64(c.Box.Y) < headerBoundary || float64(c.Box.Y) > footerBoundary {
			continue
		}

		if !isShapeAcceptable(c, p) {
			continue
		}
		if isTextOrLine(c, gray, h) {
			continue
		}

		candidates = append(candidates, Candidate{Contour: c, Box: c.Box})
	}

	log.Info("bubbles", "bubble detection complete", omrlog.Fields{
		"candidates": len(candidates),
		"min_area":   minArea,
		"max_area":   maxArea,
	})

	return candidates
}

// isShapeAcceptable runs the aspect-ratio, circularity, and
// shape-validation checks of §4.2 steps 1-4.
func isShapeAcceptable(c Contour, p Params) bool {
	ar := c.AspectRatio()
	if ar <= p.AspectRatioMin || ar >= p.AspectRatioMax {
		return false
	}

	if c.Perimeter == 0 {
		return false
	}

	if c.Circularity() <= p.CircularityThreshold {
		return false
	}

	return isValidBubbleShape(c, p)
}

// isValidBubbleShape is is_valid_bubble: ellipse-fit ratio for
// well-sampled contours (at least MinContourPoints points), convex-hull
// solidity otherwise. A contour whose own centroid falls outside its
// point ring is degenerate (self-intersecting or a sliver) and is
// rejected outright.
func isValidBubbleShape(c Contour, p Params) bool {
	if !geometry.PointInPolygon(c.Centroid, toPoints2D(c.Points)) {
		return false
	}

	if len(c.Points) >= p.MinContourPoints && c.HasEllipse && c.EllipseArea > 0 {
		ratio := c.Area / c.EllipseArea
		return ratio > 0.4 && ratio < 1.6
	}

	if c.HullArea > 0 {
		solidity := c.Area / c.HullArea
		return solidity > 0.6
	}

	return false
}

// isTextOrLine is is_text_or_line: rejects contours too thin, too
// elongated, too edge-dense, or outside the tighter vertical band that
// characterizes question-sheet bubbles rather than header/footer text.
func isTextOrLine(c Contour, gray gocv.Mat, imgHeight int) bool {
	w, h := c.Box.Width, c.Box.Height
	if w < 10 || h < 10 {
		return true
	}
	if float64(w) > 3*float64(h) || float64(h) > 3*float64(w) {
		return true
	}

	region := gray.Region(image.Rect(c.Box.X, c.Box.Y, c.Box.X+w, c.Box.Y+h))
	defer region.Close()
	if region.Empty() {
		return true
	}

	edges := gocv.NewMat()
	defer edges.Close()
	gocv.Canny(region, &edges, 50, 150)

	edgeRatio := float64(gocv.CountNonZero(edges)) / float64(w*h)
	if edgeRatio > 0.3 {
		return true
	}

	relativeY := float64(c.Box.Y) / float64(imgHeight)
	if relativeY < 0.35 || relativeY > 0.95 {
		return true
	}

	return false
}

// overlapFraction is the area of the intersection of two boxes over
// the area of the smaller box, used by the Grouper's overflow filter.
func overlapFraction(a, b geometry.RectInt) float64 {
	af, bf := a.ToFloat(), b.ToFloat()
	if !af.Intersects(bf) {
		return 0
	}

	overlapX := math.Max(0, math.Min(af.X+af.Width, bf.X+bf.Width)-math.Max(af.X, bf.X))
	overlapY := math.Max(0, math.Min(af.Y+af.Height, bf.Y+bf.Height)-math.Max(af.Y, bf.Y))
	overlapArea := overlapX * overlapY

	smaller := math.Min(af.Width*af.Height, bf.Width*bf.Height)
	if smaller == 0 {
		return 0
	}
	return overlapArea / smaller
}
