package omr

import (
	"image"
	"math"
	"sort"

	"gocv.io/x/gocv"
)

// analyzeFill classifies a single bubble's fill state from the
// grayscale raster and its contour, per §4.4.
func analyzeFill(gray gocv.Mat, c Contour, p Params) FillResult {
	// Clip to the raster so a box partly or wholly outside it yields a
	// smaller or empty crop rather than an out-of-range region.
	box := image.Rect(c.Box.X, c.Box.Y, c.Box.X+c.Box.Width, c.Box.Y+c.Box.Height).
		Intersect(image.Rect(0, 0, gray.Cols(), gray.Rows()))
	if box.Empty() {
		return FillResult{State: BubbleInvalid, FillRatio: 0}
	}

	mask := gocv.NewMatWithSize(gray.Rows(), gray.Cols(), gocv.MatTypeCV8U)
	defer mask.Close()
	c.toMask(&mask)

	bubbleRegion := gray.Region(box)
	defer bubbleRegion.Close()
	maskRegion := mask.Region(box)
	defer maskRegion.Close()

	if bubbleRegion.Empty() || maskRegion.Empty() {
		return FillResult{State: BubbleInvalid, FillRatio: 0}
	}

	inside, outside := splitPixels(bubbleRegion, maskRegion)
	if len(inside) == 0 {
		return FillResult{State: BubbleInvalid, FillRatio: 0}
	}

	ratio := fillRatio(bubbleRegion, maskRegion, inside, outside)

	if !isValidFillPattern(bubbleRegion, maskRegion) {
		return FillResult{State: BubbleInvalid, FillRatio: ratio}
	}

	switch {
	case ratio > p.FillThreshold:
		return FillResult{State: BubbleFilled, FillRatio: ratio}
	case ratio > p.PartialFillThreshold:
		return FillResult{State: BubblePartial, FillRatio: ratio}
	default:
		return FillResult{State: BubbleBlank, FillRatio: ratio}
	}
}

// splitPixels partitions a bounding-box crop's grayscale values into
// pixels inside the contour mask and pixels outside it.
func splitPixels(region, maskRegion gocv.Mat) (inside, outside []float64) {
	rows, cols := region.Rows(), region.Cols()
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			v := float64(region.GetUCharAt(y, x))
			if maskRegion.GetUCharAt(y, x) > 0 {
				inside = append(inside, v)
			} else {
				outside = append(outside, v)
			}
		}
	}
	return inside, outside
}

// fillRatio combines the intensity, threshold, and Otsu estimators
// described in §4.4 into a single ratio in [0,1].
func fillRatio(region, maskRegion gocv.Mat, inside, outside []float64) float64 {
	intensityRatio := intensityEstimator(inside, outside)
	thresholdRatio := thresholdEstimator(inside)
	otsuRatio := otsuEstimator(region, maskRegion)

	final := 0.4*intensityRatio + 0.3*thresholdRatio + 0.3*otsuRatio
	return clamp01(final)
}

func intensityEstimator(inside, outside []float64) float64 {
	meanInside := mean(inside)
	meanOutside := 255.0
	if len(outside) > 0 {
		meanOutside = mean(outside)
	}
	ratio := 1.0 - meanInside/math.Max(meanOutside, 1)
	return clamp01(ratio)
}

func thresholdEstimator(inside []float64) float64 {
	m := mean(inside)
	s := stddev(inside, m)
	tau := math.Max(m-s, percentile(inside, 25))

	dark := 0
	for _, v := range inside {
		if v < tau {
			dark++
		}
	}
	return float64(dark) / float64(len(inside))
}

// otsuEstimator whitens pixels outside the contour mask, runs Otsu on
// the result, and returns the fraction of (inside ∩ Otsu-dark) pixels.
func otsuEstimator(region, maskRegion gocv.Mat) float64 {
	masked := region.Clone()
	defer masked.Close()
	for y := 0; y < masked.Rows(); y++ {
		for x := 0; x < masked.Cols(); x++ {
			if maskRegion.GetUCharAt(y, x) == 0 {
				masked.SetUCharAt(y, x, 255)
			}
		}
	}

	otsuOut := gocv.NewMat()
	defer otsuOut.Close()
	gocv.Threshold(masked, &otsuOut, 0, 255, gocv.ThresholdBinary+gocv.ThresholdOtsu)

	darkCount, maskCount := 0, 0
	for y := 0; y < maskRegion.Rows(); y++ {
		for x := 0; x < maskRegion.Cols(); x++ {
			if maskRegion.GetUCharAt(y, x) == 0 {
				continue
			}
			maskCount++
			if otsuOut.GetUCharAt(y, x) < 127 {
				darkCount++
			}
		}
	}
	if maskCount == 0 {
		return 0
	}
	return float64(darkCount) / float64(maskCount)
}

// isValidFillPattern is is_valid_fill_pattern: rejects a bubble whose
// interior looks like text or a strikethrough rather than a solid fill.
func isValidFillPattern(region, maskRegion gocv.Mat) bool {
	if region.Empty() {
		return false
	}

	edges := gocv.NewMat()
	defer edges.Close()
	gocv.Canny(region, &edges, 30, 100)

	edgeCount, maskCount := 0, 0
	for y := 0; y < maskRegion.Rows(); y++ {
		for x := 0; x < maskRegion.Cols(); x++ {
			if maskRegion.GetUCharAt(y, x) == 0 {
				continue
			}
			maskCount++
			if edges.GetUCharAt(y, x) > 0 {
				edgeCount++
			}
		}
	}
	if maskCount == 0 {
		return true
	}

	edgeRatio := float64(edgeCount) / float64(maskCount)
	if edgeRatio <= 0.4 {
		return true
	}

	lines := gocv.NewMat()
	defer lines.Close()
	gocv.HoughLinesPWithParams(edges, &lines, 1, math.Pi/180, 5, 3, 2)
	return lines.Rows() <= 3
}

func mean(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	var sum float64
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

func stddev(vals []float64, m float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	var sumSq float64
	for _, v := range vals {
		d := v - m
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(vals)))
}

// percentile computes the pth percentile (0-100) of vals using linear
// interpolation between closest ranks, matching numpy's default.
func percentile(vals []float64, p float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)

	if len(sorted) == 1 {
		return sorted[0]
	}

	rank := p / 100 * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo]
	}
	frac := rank - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
