// Edge detection algorithm registry
package algorithms

import (
	"fmt"
	"strings"

	"gocv.io/x/gocv"
)

// Selector names one of the supported edge detectors
type Selector string

const (
	Sobel     Selector = "Sobel"
	Laplacian Selector = "Laplacian"
	Canny     Selector = "Canny"
)

// Lower returns the selector name in lowercase, used for download filenames
func (s Selector) Lower() string {
	return strings.ToLower(string(s))
}

func (s Selector) String() string {
	return string(s)
}

// ParseSelector resolves a case-insensitive algorithm name
func ParseSelector(name string) (Selector, error) {
	for _, s := range Selectors() {
		if strings.EqualFold(string(s), strings.TrimSpace(name)) {
			return s, nil
		}
	}
	return "", fmt.Errorf("unknown algorithm: %q", name)
}

// Selectors returns all selectors in display order
func Selectors() []Selector {
	return []Selector{Sobel, Laplacian, Canny}
}

// Algorithm defines the interface for edge detection operators
type Algorithm interface {
	Apply(input gocv.Mat, params Params) (gocv.Mat, error)
	DefaultParams() Params
	Selector() Selector
	Description() string
	Validate(params Params) error
	ParameterInfo() []ParameterInfo
}

// ParameterInfo describes a parameter for UI generation
type ParameterInfo struct {
	Name        string `json:"name"`
	Label       string `json:"label"`
	Type        string `json:"type"` // "slider" or "enum"
	Min         int    `json:"min"`
	Max         int    `json:"max"`
	Step        int    `json:"step"`
	Default     int    `json:"default"`
	Options     []int  `json:"options,omitempty"` // For enum type
	Description string `json:"description"`
}

// Check validates a single value against the parameter's range, step and options
func (pi ParameterInfo) Check(value int) error {
	if len(pi.Options) > 0 {
		for _, opt := range pi.Options {
			if opt == value {
				return nil
			}
		}
		return fmt.Errorf("%s must be one of %v, got %d", pi.Name, pi.Options, value)
	}

	if value < pi.Min || value > pi.Max {
		return fmt.Errorf("%s must be between %d and %d, got %d", pi.Name, pi.Min, pi.Max, value)
	}

	if pi.Step > 1 && (value-pi.Min)%pi.Step != 0 {
		return fmt.Errorf("%s must be %d plus a multiple of %d, got %d", pi.Name, pi.Min, pi.Step, value)
	}

	return nil
}

var registry = make(map[Selector]Algorithm)

func Register(algorithm Algorithm) {
	registry[algorithm.Selector()] = algorithm
}

func Get(selector Selector) (Algorithm, bool) {
	algorithm, exists := registry[selector]
	return algorithm, exists
}

// Apply runs the registered algorithm, filling missing parameters from its defaults
func Apply(selector Selector, input gocv.Mat, params Params) (gocv.Mat, error) {
	algorithm, exists := registry[selector]
	if !exists {
		return gocv.NewMat(), fmt.Errorf("algorithm not found: %s", selector)
	}

	return algorithm.Apply(input, params.With(algorithm.DefaultParams()))
}

func ValidateParameters(selector Selector, params Params) error {
	algorithm, exists := registry[selector]
	if !exists {
		return fmt.Errorf("algorithm not found: %s", selector)
	}

	return algorithm.Validate(params.With(algorithm.DefaultParams()))
}

// All returns the registered algorithms in display order
func All() []Algorithm {
	result := make([]Algorithm, 0, len(registry))
	for _, s := range Selectors() {
		if algorithm, exists := registry[s]; exists {
			result = append(result, algorithm)
		}
	}
	return result
}

func init() {
	Register(NewSobel())
	Register(NewLaplacian())
	Register(NewCanny())
}
