package omr

import "image/color"

var whiteColor = color.RGBA{R: 255, G: 255, B: 255, A: 255}
