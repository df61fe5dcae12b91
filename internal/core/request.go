package core

import (
	"github.com/pkg/errors"

	"edgevision-studio/internal/algorithms"
)

// Source identifies where the input image came from
type Source int

const (
	SourceUpload Source = iota
	SourceCamera
)

func (s Source) String() string {
	if s == SourceCamera {
		return "camera"
	}
	return "upload"
}

// Request is the immutable per-interaction configuration: selected algorithm,
// its parameters and the comparison toggle. Build it with NewRequest or
// DefaultRequest and derive variants with the With* methods.
type Request struct {
	source    Source
	algorithm algorithms.Selector
	params    algorithms.Params
	compare   bool
	secondary algorithms.Selector
}

// NewRequest creates a request. params is copied.
func NewRequest(source Source, algorithm algorithms.Selector, params algorithms.Params, compare bool, secondary algorithms.Selector) Request {
	return Request{
		source:    source,
		algorithm: algorithm,
		params:    params.Clone(),
		compare:   compare,
		secondary: secondary,
	}
}

// DefaultRequest matches the initial state of the controls
func DefaultRequest() Request {
	sobel, _ := algorithms.Get(algorithms.Sobel)
	return NewRequest(SourceUpload, algorithms.Sobel, sobel.DefaultParams(), false, algorithms.Sobel)
}

func (r Request) Source() Source                 { return r.source }
func (r Request) Algorithm() algorithms.Selector { return r.algorithm }
func (r Request) Compare() bool                  { return r.compare }
func (r Request) Secondary() algorithms.Selector { return r.secondary }

// Params returns a copy of the parameter set
func (r Request) Params() algorithms.Params {
	return r.params.Clone()
}

// Comparing reports whether a comparison will actually be rendered;
// comparison is only offered for uploaded images.
func (r Request) Comparing() bool {
	return r.compare && r.source == SourceUpload
}

func (r Request) WithSource(s Source) Request {
	r.params = r.params.Clone()
	r.source = s
	return r
}

func (r Request) WithAlgorithm(sel algorithms.Selector, params algorithms.Params) Request {
	r.algorithm = sel
	r.params = params.Clone()
	return r
}

func (r Request) WithCompare(compare bool, secondary algorithms.Selector) Request {
	r.params = r.params.Clone()
	r.compare = compare
	r.secondary = secondary
	return r
}

// Validate checks the primary parameters against the selected algorithm's ranges
func (r Request) Validate() error {
	if err := algorithms.ValidateParameters(r.algorithm, r.params); err != nil {
		return err
	}
	if r.compare {
		if _, ok := algorithms.Get(r.secondary); !ok {
			return errors.Errorf("unknown comparison algorithm: %q", r.secondary)
		}
	}
	return nil
}
