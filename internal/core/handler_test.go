package core

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"

	"edgevision-studio/internal/algorithms"
	"edgevision-studio/internal/metrics"
)

// fakeEncoder records what it was asked to encode
type fakeEncoder struct {
	channels int
	rows     int
	cols     int
	err      error
}

func (f *fakeEncoder) EncodePNG(mat gocv.Mat) ([]byte, error) {
	f.channels, f.rows, f.cols = mat.Channels(), mat.Rows(), mat.Cols()
	if f.err != nil {
		return nil, f.err
	}
	return []byte{0x89, 'P', 'N', 'G'}, nil
}

func newHandler(t *testing.T) (*Handler, *test.Hook) {
	t.Helper()
	logger, hook := test.NewNullLogger()
	return NewHandler(logger, metrics.NewEvaluator()), hook
}

func stepImage(t *testing.T, rows, cols int) gocv.Mat {
	t.Helper()
	data := make([]byte, rows*cols*3)
	for r := 0; r < rows; r++ {
		for c := cols / 2; c < cols; c++ {
			i := (r*cols + c) * 3
			data[i], data[i+1], data[i+2] = 255, 255, 255
		}
	}
	view, err := gocv.NewMatFromBytes(rows, cols, gocv.MatTypeCV8UC3, data)
	require.NoError(t, err)
	defer view.Close()
	return view.Clone()
}

func requestFor(t *testing.T, sel algorithms.Selector) Request {
	t.Helper()
	algo, ok := algorithms.Get(sel)
	require.True(t, ok)
	return NewRequest(SourceUpload, sel, algo.DefaultParams(), false, algorithms.Sobel)
}

func TestHandlePlaceholderWithoutInput(t *testing.T) {
	h, _ := newHandler(t)
	empty := gocv.NewMat()
	defer empty.Close()

	for _, req := range []Request{
		DefaultRequest(),
		DefaultRequest().WithCompare(true, algorithms.Canny),
		DefaultRequest().WithSource(SourceCamera),
	} {
		res, err := h.Handle(req, empty)
		require.NoError(t, err)

		placeholder, ok := res.(*PlaceholderResult)
		require.True(t, ok, "expected placeholder result, got %T", res)

		panels := placeholder.Panels()
		require.Len(t, panels, 2)
		assert.Equal(t, "Original", panels[0].Title)
		assert.Equal(t, "Processed", panels[1].Title)

		for i, want := range []uint8{PlaceholderInputFill.R, PlaceholderOutputFill.R} {
			img := panels[i].Image
			assert.Equal(t, PlaceholderWidth, img.Cols())
			assert.Equal(t, PlaceholderHeight, img.Rows())
			assert.Equal(t, 3, img.Channels())
			assert.Equal(t, want, img.GetUCharAt(0, 0))
		}

		_, err = res.Download(&fakeEncoder{})
		assert.ErrorIs(t, err, ErrNoDownload)
		res.Close()
	}
}

func TestPlaceholderFills(t *testing.T) {
	res, err := NewPlaceholderResult()
	require.NoError(t, err)
	defer res.Close()

	left := res.Left.Image.ToBytes()
	assert.Equal(t, []byte{240, 240, 245}, left[:3])
	right := res.Right.Image.ToBytes()
	assert.Equal(t, []byte{250, 250, 250}, right[len(right)-3:])
}

func TestHandleSingle(t *testing.T) {
	h, hook := newHandler(t)
	input := stepImage(t, 16, 16)
	defer input.Close()

	for _, sel := range algorithms.Selectors() {
		t.Run(sel.String(), func(t *testing.T) {
			res, err := h.Handle(requestFor(t, sel), input)
			require.NoError(t, err)
			defer res.Close()

			single, ok := res.(*SingleResult)
			require.True(t, ok)

			panels := single.Panels()
			require.Len(t, panels, 2)
			assert.Equal(t, "Input", panels[0].Title)
			assert.Equal(t, sel.String()+" Output", panels[1].Title)
			assert.Equal(t, 16, panels[1].Image.Rows())
			assert.Equal(t, 1, panels[1].Image.Channels())
			assert.Contains(t, panels[1].Stats, "edge_density")
			assert.Greater(t, panels[1].Stats["edge_density"], 0.0)

			assert.Equal(t, "Image processed", hook.LastEntry().Message)
			assert.Equal(t, sel.String(), hook.LastEntry().Data["algorithm"])
		})
	}
}

func TestHandleKeepsInputOwnership(t *testing.T) {
	h, _ := newHandler(t)
	input := stepImage(t, 8, 8)
	defer input.Close()
	before := input.ToBytes()

	res, err := h.Handle(DefaultRequest(), input)
	require.NoError(t, err)
	res.Close()

	assert.False(t, input.Empty())
	assert.Equal(t, before, input.ToBytes())
}

func TestHandleCameraTitle(t *testing.T) {
	h, _ := newHandler(t)
	input := stepImage(t, 8, 8)
	defer input.Close()

	req := DefaultRequest().WithSource(SourceCamera).WithCompare(true, algorithms.Canny)
	res, err := h.Handle(req, input)
	require.NoError(t, err)
	defer res.Close()

	single, ok := res.(*SingleResult)
	require.True(t, ok, "camera captures are never compared")
	assert.Equal(t, "Captured", single.Input.Title)
}

func TestHandleComparison(t *testing.T) {
	h, hook := newHandler(t)
	input := stepImage(t, 16, 16)
	defer input.Close()

	req := requestFor(t, algorithms.Canny).WithCompare(true, algorithms.Laplacian)
	res, err := h.Handle(req, input)
	require.NoError(t, err)
	defer res.Close()

	cmp, ok := res.(*ComparisonResult)
	require.True(t, ok)

	panels := cmp.Panels()
	require.Len(t, panels, 3)
	assert.Equal(t, "Original", panels[0].Title)
	assert.Equal(t, "Canny Output", panels[1].Title)
	assert.Equal(t, "Laplacian Output", panels[2].Title)
	assert.Equal(t, "Laplacian", hook.LastEntry().Data["secondary"])

	enc := &fakeEncoder{}
	dl, err := res.Download(enc)
	require.NoError(t, err)
	assert.Equal(t, "edge_canny.png", dl.Filename)
	assert.Equal(t, "image/png", dl.ContentType)
	assert.Equal(t, 3, enc.channels, "downloads are encoded as RGB")
}

func TestHandleComparisonSecondaryUsesDefaultsForMissingKeys(t *testing.T) {
	h, _ := newHandler(t)
	input := stepImage(t, 16, 16)
	defer input.Close()

	// Laplacian params carry no thresholds; Canny falls back to its defaults
	req := requestFor(t, algorithms.Laplacian).WithCompare(true, algorithms.Canny)
	res, err := h.Handle(req, input)
	require.NoError(t, err)
	res.Close()
}

func TestHandleInvalidInput(t *testing.T) {
	h, _ := newHandler(t)
	gray := gocv.NewMatWithSize(4, 4, gocv.MatTypeCV8UC1)
	defer gray.Close()

	_, err := h.Handle(DefaultRequest(), gray)
	assert.Error(t, err)
}

func TestDownload(t *testing.T) {
	h, _ := newHandler(t)
	input := stepImage(t, 10, 12)
	defer input.Close()

	for _, sel := range algorithms.Selectors() {
		res, err := h.Handle(requestFor(t, sel), input)
		require.NoError(t, err)

		enc := &fakeEncoder{}
		dl, err := res.Download(enc)
		require.NoError(t, err)
		assert.Equal(t, "edge_"+sel.Lower()+".png", dl.Filename)
		assert.Equal(t, "image/png", dl.ContentType)
		assert.NotEmpty(t, dl.Data)
		assert.Equal(t, 10, enc.rows)
		assert.Equal(t, 12, enc.cols)
		res.Close()
	}

	res, err := h.Handle(DefaultRequest(), input)
	require.NoError(t, err)
	defer res.Close()
	_, err = res.Download(&fakeEncoder{err: errors.New("disk full")})
	assert.Error(t, err)
}

func TestDownloadName(t *testing.T) {
	assert.Equal(t, "edge_sobel.png", DownloadName(algorithms.Sobel))
	assert.Equal(t, "edge_laplacian.png", DownloadName(algorithms.Laplacian))
	assert.Equal(t, "edge_canny.png", DownloadName(algorithms.Canny))
}
