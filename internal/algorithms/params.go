package algorithms

import (
	"fmt"
	"sort"
	"strings"
)

// Parameter keys shared between the dispatcher and the front ends
const (
	ParamKernelSize   = "ksize"
	ParamDX           = "dx"
	ParamDY           = "dy"
	ParamThreshold1   = "threshold1"
	ParamThreshold2   = "threshold2"
	ParamApertureSize = "apertureSize"
)

// Params maps parameter names to values. Only the keys of the selected
// algorithm are meaningful; others are ignored.
type Params map[string]int

// With returns a copy of p where keys missing from p are taken from defaults
func (p Params) With(defaults Params) Params {
	merged := make(Params, len(p)+len(defaults))
	for k, v := range defaults {
		merged[k] = v
	}
	for k, v := range p {
		merged[k] = v
	}
	return merged
}

// Clone returns an independent copy
func (p Params) Clone() Params {
	return p.With(nil)
}

// Int returns the value for key, or def when absent
func (p Params) Int(key string, def int) int {
	if v, ok := p[key]; ok {
		return v
	}
	return def
}

func (p Params) String() string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%d", k, p[k]))
	}
	return strings.Join(parts, " ")
}

// validateAgainst checks every described parameter present in params
func validateAgainst(infos []ParameterInfo, params Params) error {
	for _, info := range infos {
		value, ok := params[info.Name]
		if !ok {
			return fmt.Errorf("missing parameter: %s", info.Name)
		}
		if err := info.Check(value); err != nil {
			return err
		}
	}
	return nil
}

// kernelSizeInfo is shared by Sobel and Laplacian
func kernelSizeInfo() ParameterInfo {
	return ParameterInfo{
		Name:        ParamKernelSize,
		Label:       "Kernel size",
		Type:        "slider",
		Min:         1,
		Max:         9,
		Step:        2,
		Default:     3,
		Description: "Odd aperture of the derivative kernel",
	}
}
