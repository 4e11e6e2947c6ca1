package omr

import (
	"image"

	"omr-decoder/internal/omrlog"

	"gocv.io/x/gocv"
)

// preprocessResult holds the three rasters later stages need. The
// caller owns all three Mats and must Close them.
type preprocessResult struct {
	Gray    gocv.Mat
	Mask    gocv.Mat
	Blurred gocv.Mat
}

// Close releases the underlying Mats.
func (r preprocessResult) Close() {
	r.Gray.Close()
	r.Mask.Close()
	r.Blurred.Close()
}

// preprocess converts a color raster into a grayscale image, a blurred
// grayscale image, and a binary foreground mask, per §4.1.
func preprocess(color gocv.Mat, p Params, log omrlog.Logger) (preprocessResult, error) {
	gray := gocv.NewMat()
	gocv.CvtColor(color, &gray, gocv.ColorBGRToGray)

	clahe := gocv.NewCLAHEWithParams(3.0, image.Pt(8, 8))
	defer clahe.Close()
	equalized := gocv.NewMat()
	clahe.Apply(gray, &equalized)

	denoised := gocv.NewMat()
	gocv.BilateralFilter(equalized, &denoised, 9, 75, 75)
	equalized.Close()

	blurred := gocv.NewMat()
	k := odd(p.GaussianBlurSize)
	gocv.GaussianBlur(denoised, &blurred, image.Pt(k, k), 0, 0, gocv.BorderDefault)
	denoised.Close()

	mask, err := combinedThreshold(blurred, p)
	if err != nil {
		gray.Close()
		blurred.Close()
		return preprocessResult{}, internalErr("preprocessing failed", err)
	}

	log.Info("preprocess", "preprocessing complete", omrlog.Fields{
		"width":  color.Cols(),
		"height": color.Rows(),
	})

	return preprocessResult{Gray: gray, Mask: mask, Blurred: blurred}, nil
}

// combinedThreshold produces the OR of three independent threshold
// strategies, then cleans the result up with morphology, per §4.1.
func combinedThreshold(blurred gocv.Mat, p Params) (gocv.Mat, error) {
	adaptive := gocv.NewMat()
	gocv.AdaptiveThreshold(blurred, &adaptive, 255,
		gocv.AdaptiveThresholdGaussian, gocv.ThresholdBinaryInv, 15, 3)
	defer adaptive.Close()

	otsu := gocv.NewMat()
	gocv.Threshold(blurred, &otsu, 0, 255, gocv.ThresholdBinaryInv+gocv.ThresholdOtsu)
	defer otsu.Close()

	manual := gocv.NewMat()
	gocv.Threshold(blurred, &manual, 180, 255, gocv.ThresholdBinaryInv)
	defer manual.Close()

	combined := gocv.NewMat()
	gocv.BitwiseOr(adaptive, otsu, &combined)
	gocv.BitwiseOr(combined, manual, &combined)

	ellipse3 := gocv.GetStructuringElement(gocv.MorphEllipse, image.Pt(p.MorphKernelSize, p.MorphKernelSize))
	defer ellipse3.Close()
	gocv.MorphologyEx(combined, &combined, gocv.MorphClose, ellipse3)
	gocv.MorphologyEx(combined, &combined, gocv.MorphOpen, ellipse3)

	ellipse2 := gocv.GetStructuringElement(gocv.MorphEllipse, image.Pt(2, 2))
	defer ellipse2.Close()
	gocv.MorphologyEx(combined, &combined, gocv.MorphClose, ellipse2)

	return combined, nil
}

// odd rounds n up to the nearest odd value, since blur kernels must be odd.
func odd(n int) int {
	if n%2 == 0 {
		return n + 1
	}
	return n
}

// imageQuality grades the scan's global contrast into the coarse
// bucket the external report exposes. Low contrast means the adaptive
// threshold in combinedThreshold had little to work with, so the
// fill-ratio estimates downstream are less trustworthy.
func imageQuality(gray gocv.Mat) string {
	mean := gocv.NewMat()
	defer mean.Close()
	stddev := gocv.NewMat()
	defer stddev.Close()
	gocv.MeanStdDev(gray, &mean, &stddev)

	if stddev.Empty() {
		return "poor"
	}

	contrast := stddev.GetDoubleAt(0, 0)
	switch {
	case contrast >= 40:
		return "good"
	case contrast >= 20:
		return "fair"
	default:
		return "poor"
	}
}
