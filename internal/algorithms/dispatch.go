package algorithms

import (
	"fmt"

	"gocv.io/x/gocv"
)

// Process applies the selected edge detector to an RGB image.
//
// The input is read-only; the returned single-channel Mat has the input's
// size and is owned by the caller. Parameters are expected to be range-checked
// already; keys the selected algorithm needs but params lacks take defaults.
func Process(img gocv.Mat, selector Selector, params Params) (gocv.Mat, error) {
	return Apply(selector, img, params)
}

// ToDisplayable returns a three-channel copy of img, replicating a single
// channel across RGB when needed.
func ToDisplayable(img gocv.Mat) (gocv.Mat, error) {
	if img.Empty() {
		return gocv.NewMat(), fmt.Errorf("cannot display empty image")
	}

	switch img.Channels() {
	case 3:
		return img.Clone(), nil
	case 1:
		rgb := gocv.NewMat()
		gocv.CvtColor(img, &rgb, gocv.ColorGrayToRGB)
		if rgb.Empty() {
			rgb.Close()
			return gocv.NewMat(), fmt.Errorf("gray to RGB conversion produced no output")
		}
		return rgb, nil
	default:
		return gocv.NewMat(), fmt.Errorf("unsupported channel count: %d", img.Channels())
	}
}
