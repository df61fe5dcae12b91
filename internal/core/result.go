package core

import (
	"fmt"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"

	"edgevision-studio/internal/algorithms"
)

// ErrNoDownload is returned when a result has no processed image to offer
var ErrNoDownload = errors.New("no processed image to download")

// Encoder turns a displayable Mat into PNG bytes
type Encoder interface {
	EncodePNG(mat gocv.Mat) ([]byte, error)
}

// Panel is one titled image column of a rendered result
type Panel struct {
	Title string
	Image gocv.Mat
	Stats map[string]float64
}

// Download is the processed image offered to the user
type Download struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Result is what a request renders to. It is one of SingleResult,
// ComparisonResult or PlaceholderResult. The result owns its Mats.
type Result interface {
	Panels() []Panel
	Download(enc Encoder) (Download, error)
	Close()
	isResult()
}

// SingleResult shows the input next to one operator output
type SingleResult struct {
	Algorithm algorithms.Selector
	Input     Panel
	Output    Panel
}

func (r *SingleResult) Panels() []Panel { return []Panel{r.Input, r.Output} }

func (r *SingleResult) Download(enc Encoder) (Download, error) {
	return encodeDownload(enc, r.Algorithm, r.Output.Image)
}

func (r *SingleResult) Close() {
	r.Input.Image.Close()
	r.Output.Image.Close()
}

func (r *SingleResult) isResult() {}

// ComparisonResult shows the input next to two operator outputs
type ComparisonResult struct {
	Primary   algorithms.Selector
	Secondary algorithms.Selector
	Original  Panel
	First     Panel
	Second    Panel
}

func (r *ComparisonResult) Panels() []Panel { return []Panel{r.Original, r.First, r.Second} }

// Download offers the primary operator's output
func (r *ComparisonResult) Download(enc Encoder) (Download, error) {
	return encodeDownload(enc, r.Primary, r.First.Image)
}

func (r *ComparisonResult) Close() {
	r.Original.Image.Close()
	r.First.Image.Close()
	r.Second.Image.Close()
}

func (r *ComparisonResult) isResult() {}

// PlaceholderResult is shown while no image has been provided
type PlaceholderResult struct {
	Left  Panel
	Right Panel
}

func (r *PlaceholderResult) Panels() []Panel { return []Panel{r.Left, r.Right} }

func (r *PlaceholderResult) Download(Encoder) (Download, error) {
	return Download{}, ErrNoDownload
}

func (r *PlaceholderResult) Close() {
	r.Left.Image.Close()
	r.Right.Image.Close()
}

func (r *PlaceholderResult) isResult() {}

// NewPlaceholderResult builds the neutral pair of blank images
func NewPlaceholderResult() (*PlaceholderResult, error) {
	left, err := NewSolidImage(PlaceholderWidth, PlaceholderHeight, PlaceholderInputFill)
	if err != nil {
		return nil, errors.Wrap(err, "input placeholder")
	}

	right, err := NewSolidImage(PlaceholderWidth, PlaceholderHeight, PlaceholderOutputFill)
	if err != nil {
		left.Close()
		return nil, errors.Wrap(err, "output placeholder")
	}

	return &PlaceholderResult{
		Left:  Panel{Title: "Original", Image: left},
		Right: Panel{Title: "Processed", Image: right},
	}, nil
}

// DownloadName is the attachment filename for an algorithm's output
func DownloadName(sel algorithms.Selector) string {
	return fmt.Sprintf("edge_%s.png", sel.Lower())
}

// OutputTitle is the panel title for an algorithm's output
func OutputTitle(sel algorithms.Selector) string {
	return fmt.Sprintf("%s Output", sel)
}

func encodeDownload(enc Encoder, sel algorithms.Selector, output gocv.Mat) (Download, error) {
	rgb, err := algorithms.ToDisplayable(output)
	if err != nil {
		return Download{}, errors.Wrap(err, "download conversion failed")
	}
	defer rgb.Close()

	data, err := enc.EncodePNG(rgb)
	if err != nil {
		return Download{}, errors.Wrap(err, "download encoding failed")
	}

	return Download{
		Filename:    DownloadName(sel),
		ContentType: "image/png",
		Data:        data,
	}, nil
}
