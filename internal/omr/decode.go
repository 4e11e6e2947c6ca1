package omr

import (
	"bytes"
	stdimage "image"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"

	"gocv.io/x/gocv"
)

// decodeImage turns raw bytes into a color gocv.Mat. It decodes through
// Go's image package (PNG/JPEG built in, BMP/TIFF registered via blank
// import) rather than gocv.IMDecode directly, so any format the stdlib
// or golang.org/x/image understands is accepted uniformly. The caller
// owns the returned Mat and must Close it.
func decodeImage(data []byte) (gocv.Mat, error) {
	img, _, err := stdimage.Decode(bytes.NewReader(data))
	if err != nil {
		return gocv.NewMat(), invalidImageErr("could not decode image bytes", err)
	}

	mat, err := imageToMat(img)
	if err != nil {
		return gocv.NewMat(), invalidImageErr("could not convert decoded image to raster", err)
	}
	if mat.Empty() {
		mat.Close()
		return gocv.NewMat(), invalidImageErr("decoded image has no pixels", nil)
	}
	return mat, nil
}

// imageToMat converts a decoded Go image into a 3-channel BGR gocv.Mat.
func imageToMat(srcImg stdimage.Image) (gocv.Mat, error) {
	bounds := srcImg.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w == 0 || h == 0 {
		return gocv.NewMat(), nil
	}

	mat := gocv.NewMatWithSize(h, w, gocv.MatTypeCV8UC3)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, b, _ := srcImg.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			mat.SetUCharAt(y, x*3+0, uint8(b>>8))
			mat.SetUCharAt(y, x*3+1, uint8(g>>8))
			mat.SetUCharAt(y, x*3+2, uint8(r>>8))
		}
	}
	return mat, nil
}
