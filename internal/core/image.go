// Image helpers shared by the request handler and the front ends
package core

import (
	"fmt"
	"image/color"

	"gocv.io/x/gocv"
)

// Placeholder dimensions and fills shown when no input is available
const (
	PlaceholderWidth  = 512
	PlaceholderHeight = 384
)

var (
	PlaceholderInputFill  = color.RGBA{R: 240, G: 240, B: 245, A: 255}
	PlaceholderOutputFill = color.RGBA{R: 250, G: 250, B: 250, A: 255}
)

// ImageMetadata contains image information
type ImageMetadata struct {
	Width    int
	Height   int
	Channels int
}

// MetadataOf describes a Mat
func MetadataOf(mat gocv.Mat) ImageMetadata {
	return ImageMetadata{
		Width:    mat.Cols(),
		Height:   mat.Rows(),
		Channels: mat.Channels(),
	}
}

func (m ImageMetadata) String() string {
	return fmt.Sprintf("%dx%d×%d", m.Width, m.Height, m.Channels)
}

// NewSolidImage creates an RGB image of the given size filled with c
func NewSolidImage(width, height int, c color.RGBA) (gocv.Mat, error) {
	if width <= 0 || height <= 0 {
		return gocv.NewMat(), fmt.Errorf("invalid dimensions: %dx%d", width, height)
	}

	fill := gocv.NewScalar(float64(c.R), float64(c.G), float64(c.B), 0)
	mat := gocv.NewMatWithSizeFromScalar(fill, height, width, gocv.MatTypeCV8UC3)
	if mat.Empty() {
		mat.Close()
		return gocv.NewMat(), fmt.Errorf("failed to allocate %dx%d image", width, height)
	}
	return mat, nil
}

// ValidateImage checks that a Mat can be handed to the dispatcher
func ValidateImage(mat gocv.Mat) error {
	if mat.Empty() {
		return fmt.Errorf("image is empty")
	}

	if mat.Cols() <= 0 || mat.Rows() <= 0 {
		return fmt.Errorf("invalid dimensions: %dx%d", mat.Cols(), mat.Rows())
	}

	if mat.Channels() != 3 {
		return fmt.Errorf("expected 3 channels, got %d", mat.Channels())
	}

	return nil
}
