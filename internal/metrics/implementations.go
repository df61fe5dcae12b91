package metrics

import (
	"fmt"
	"math"

	"gocv.io/x/gocv"
)

// EdgeDensity is the fraction of output pixels with a non-zero response
type EdgeDensity struct{}

// NewEdgeDensity creates a new edge density metric
func NewEdgeDensity() *EdgeDensity {
	return &EdgeDensity{}
}

func (d *EdgeDensity) Calculate(original, processed gocv.Mat) (float64, error) {
	if processed.Empty() {
		return 0, fmt.Errorf("empty output image")
	}
	if processed.Channels() != 1 {
		return 0, fmt.Errorf("edge density requires a single channel, got %d", processed.Channels())
	}

	total := processed.Rows() * processed.Cols()
	return float64(gocv.CountNonZero(processed)) / float64(total), nil
}

func (d *EdgeDensity) Name() string {
	return "Edge density"
}

func (d *EdgeDensity) Description() string {
	return "Fraction of pixels with a non-zero response"
}

func (d *EdgeDensity) Range() (float64, float64) {
	return 0, 1
}

func (d *EdgeDensity) IsHigherBetter() bool {
	return true
}

// MeanResponse is the average output intensity
type MeanResponse struct{}

// NewMeanResponse creates a new mean response metric
func NewMeanResponse() *MeanResponse {
	return &MeanResponse{}
}

func (m *MeanResponse) Calculate(original, processed gocv.Mat) (float64, error) {
	if processed.Empty() {
		return 0, fmt.Errorf("empty output image")
	}

	return processed.Mean().Val1, nil
}

func (m *MeanResponse) Name() string {
	return "Mean response"
}

func (m *MeanResponse) Description() string {
	return "Average edge strength over the image"
}

func (m *MeanResponse) Range() (float64, float64) {
	return 0, 255
}

func (m *MeanResponse) IsHigherBetter() bool {
	return true
}

// Sharpness is the variance of the Laplacian of the input luminance
type Sharpness struct{}

// NewSharpness creates a new sharpness metric
func NewSharpness() *Sharpness {
	return &Sharpness{}
}

func (s *Sharpness) Calculate(original, processed gocv.Mat) (float64, error) {
	if original.Empty() {
		return 0, fmt.Errorf("empty input image")
	}

	gray := ensureGrayscale(original)
	defer func() {
		if gray.Ptr() != original.Ptr() {
			gray.Close()
		}
	}()

	laplacian := gocv.NewMat()
	defer laplacian.Close()
	gocv.Laplacian(gray, &laplacian, gocv.MatTypeCV64F, 1, 1, 0, gocv.BorderDefault)

	mean := gocv.NewMat()
	defer mean.Close()
	stdDev := gocv.NewMat()
	defer stdDev.Close()
	gocv.MeanStdDev(laplacian, &mean, &stdDev)

	if stdDev.Empty() {
		return 0, fmt.Errorf("standard deviation unavailable")
	}

	sd := stdDev.GetDoubleAt(0, 0)
	if math.IsNaN(sd) {
		return 0, fmt.Errorf("standard deviation is NaN")
	}
	return sd * sd, nil
}

func (s *Sharpness) Name() string {
	return "Input sharpness"
}

func (s *Sharpness) Description() string {
	return "Variance of the Laplacian of the input"
}

func (s *Sharpness) Range() (float64, float64) {
	return 0, math.Inf(1)
}

func (s *Sharpness) IsHigherBetter() bool {
	return true
}

// ensureGrayscale returns input itself when already single channel
func ensureGrayscale(input gocv.Mat) gocv.Mat {
	if input.Channels() == 1 {
		return input
	}

	gray := gocv.NewMat()
	gocv.CvtColor(input, &gray, gocv.ColorRGBToGray)
	return gray
}
