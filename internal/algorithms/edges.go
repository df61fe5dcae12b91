// Edge detection operators backed by OpenCV
package algorithms

import (
	"fmt"

	"gocv.io/x/gocv"
)

// SobelFilter implements the directional first-derivative operator
type SobelFilter struct{}

// NewSobel creates a new Sobel edge detector
func NewSobel() *SobelFilter {
	return &SobelFilter{}
}

func (s *SobelFilter) Apply(input gocv.Mat, params Params) (gocv.Mat, error) {
	gray, err := toLuminance(input)
	if err != nil {
		return gocv.NewMat(), err
	}
	defer gray.Close()

	ksize := params.Int(ParamKernelSize, 3)
	dx := params.Int(ParamDX, 1)
	dy := params.Int(ParamDY, 0)

	// A zero-order request would yield a blank image
	if dx == 0 && dy == 0 {
		dx = 1
	}

	grad := gocv.NewMat()
	defer grad.Close()
	gocv.Sobel(gray, &grad, gocv.MatTypeCV64F, dx, dy, ksize, 1, 0, gocv.BorderDefault)

	return absTo8U(grad, "sobel")
}

func (s *SobelFilter) DefaultParams() Params {
	return Params{
		ParamKernelSize: 3,
		ParamDX:         1,
		ParamDY:         0,
	}
}

func (s *SobelFilter) Selector() Selector {
	return Sobel
}

func (s *SobelFilter) Description() string {
	return "Directional first derivative of luminance"
}

func (s *SobelFilter) Validate(params Params) error {
	return validateAgainst(s.ParameterInfo(), params)
}

func (s *SobelFilter) ParameterInfo() []ParameterInfo {
	return []ParameterInfo{
		kernelSizeInfo(),
		{
			Name:        ParamDX,
			Label:       "dx",
			Type:        "enum",
			Min:         0,
			Max:         2,
			Default:     1,
			Options:     []int{0, 1, 2},
			Description: "Derivative order in x",
		},
		{
			Name:        ParamDY,
			Label:       "dy",
			Type:        "enum",
			Min:         0,
			Max:         2,
			Default:     0,
			Options:     []int{0, 1, 2},
			Description: "Derivative order in y",
		},
	}
}

// LaplacianFilter implements the isotropic second-derivative operator
type LaplacianFilter struct{}

// NewLaplacian creates a new Laplacian edge detector
func NewLaplacian() *LaplacianFilter {
	return &LaplacianFilter{}
}

func (l *LaplacianFilter) Apply(input gocv.Mat, params Params) (gocv.Mat, error) {
	gray, err := toLuminance(input)
	if err != nil {
		return gocv.NewMat(), err
	}
	defer gray.Close()

	ksize := params.Int(ParamKernelSize, 3)

	lap := gocv.NewMat()
	defer lap.Close()
	gocv.Laplacian(gray, &lap, gocv.MatTypeCV64F, ksize, 1, 0, gocv.BorderDefault)

	return absTo8U(lap, "laplacian")
}

func (l *LaplacianFilter) DefaultParams() Params {
	return Params{
		ParamKernelSize: 3,
	}
}

func (l *LaplacianFilter) Selector() Selector {
	return Laplacian
}

func (l *LaplacianFilter) Description() string {
	return "Second derivative of luminance in all directions"
}

func (l *LaplacianFilter) Validate(params Params) error {
	return validateAgainst(l.ParameterInfo(), params)
}

func (l *LaplacianFilter) ParameterInfo() []ParameterInfo {
	return []ParameterInfo{kernelSizeInfo()}
}

// CannyFilter implements multi-stage edge detection with hysteresis thresholds
type CannyFilter struct{}

// NewCanny creates a new Canny edge detector
func NewCanny() *CannyFilter {
	return &CannyFilter{}
}

func (c *CannyFilter) Apply(input gocv.Mat, params Params) (gocv.Mat, error) {
	gray, err := toLuminance(input)
	if err != nil {
		return gocv.NewMat(), err
	}
	defer gray.Close()

	t1 := params.Int(ParamThreshold1, 100)
	t2 := params.Int(ParamThreshold2, 200)
	aperture := params.Int(ParamApertureSize, 3)

	if aperture == 3 {
		edges := gocv.NewMat()
		gocv.Canny(gray, &edges, float32(t1), float32(t2))
		if edges.Empty() {
			edges.Close()
			return gocv.NewMat(), fmt.Errorf("canny produced no output")
		}
		return edges, nil
	}

	return cannyWithAperture(gray, float64(t1), float64(t2), aperture)
}

func (c *CannyFilter) DefaultParams() Params {
	return Params{
		ParamThreshold1:   100,
		ParamThreshold2:   200,
		ParamApertureSize: 3,
	}
}

func (c *CannyFilter) Selector() Selector {
	return Canny
}

func (c *CannyFilter) Description() string {
	return "Binary edge mask from gradient, non-maximum suppression and hysteresis"
}

func (c *CannyFilter) Validate(params Params) error {
	return validateAgainst(c.ParameterInfo(), params)
}

func (c *CannyFilter) ParameterInfo() []ParameterInfo {
	return []ParameterInfo{
		{
			Name:        ParamThreshold1,
			Label:       "Lower threshold",
			Type:        "slider",
			Min:         0,
			Max:         255,
			Step:        1,
			Default:     100,
			Description: "Weak edge threshold for hysteresis",
		},
		{
			Name:        ParamThreshold2,
			Label:       "Upper threshold",
			Type:        "slider",
			Min:         0,
			Max:         255,
			Step:        1,
			Default:     200,
			Description: "Strong edge threshold for hysteresis",
		},
		{
			Name:        ParamApertureSize,
			Label:       "Aperture size",
			Type:        "slider",
			Min:         3,
			Max:         7,
			Step:        2,
			Default:     3,
			Description: "Sobel aperture used for the gradient",
		},
	}
}

// toLuminance converts an RGB image to a single brightness channel
func toLuminance(input gocv.Mat) (gocv.Mat, error) {
	if input.Empty() {
		return gocv.NewMat(), fmt.Errorf("input image is empty")
	}

	switch input.Channels() {
	case 1:
		return input.Clone(), nil
	case 3:
		gray := gocv.NewMat()
		gocv.CvtColor(input, &gray, gocv.ColorRGBToGray)
		if gray.Empty() {
			gray.Close()
			return gocv.NewMat(), fmt.Errorf("luminance conversion produced no output")
		}
		return gray, nil
	default:
		return gocv.NewMat(), fmt.Errorf("unsupported channel count: %d", input.Channels())
	}
}

// absTo8U takes the absolute value of a float response and saturates it to 8 bits
func absTo8U(response gocv.Mat, op string) (gocv.Mat, error) {
	if response.Empty() {
		return gocv.NewMat(), fmt.Errorf("%s produced no output", op)
	}

	out := gocv.NewMat()
	gocv.ConvertScaleAbs(response, &out, 1, 0)
	if out.Empty() {
		out.Close()
		return gocv.NewMat(), fmt.Errorf("%s scaling produced no output", op)
	}
	return out, nil
}
