package gui

import (
	"testing"

	"fyne.io/fyne/v2/test"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"edgevision-studio/internal/algorithms"
	"edgevision-studio/internal/core"
)

func newTestControlPanel(t *testing.T) (*ControlPanel, *[]core.Request) {
	t.Helper()
	test.NewApp()

	logger, _ := logtest.NewNullLogger()
	cp := NewControlPanel(logger)

	var emitted []core.Request
	cp.SetCallbacks(func(req core.Request) { emitted = append(emitted, req) }, nil, nil)
	return cp, &emitted
}

func TestControlPanelStartsWithDefaults(t *testing.T) {
	cp, emitted := newTestControlPanel(t)

	req := cp.Request()
	def := core.DefaultRequest()
	assert.Equal(t, def.Algorithm(), req.Algorithm())
	assert.Equal(t, def.Params(), req.Params())
	assert.Equal(t, def.Source(), req.Source())
	assert.False(t, req.Compare())
	assert.Empty(t, *emitted, "construction emits nothing")
}

func TestControlPanelAlgorithmChange(t *testing.T) {
	cp, emitted := newTestControlPanel(t)

	cp.algorithmSelect.SetSelected("Canny")
	require.NotEmpty(t, *emitted)

	last := (*emitted)[len(*emitted)-1]
	assert.Equal(t, algorithms.Canny, last.Algorithm())
	assert.Equal(t, 100, last.Params()[algorithms.ParamThreshold1])
	assert.Equal(t, 200, last.Params()[algorithms.ParamThreshold2])
	assert.Equal(t, 3, last.Params()[algorithms.ParamApertureSize])
}

func TestControlPanelCompare(t *testing.T) {
	cp, emitted := newTestControlPanel(t)

	assert.True(t, cp.secondarySelect.Disabled())
	cp.compareCheck.SetChecked(true)
	assert.False(t, cp.secondarySelect.Disabled())
	cp.secondarySelect.SetSelected("Laplacian")

	last := (*emitted)[len(*emitted)-1]
	assert.True(t, last.Comparing())
	assert.Equal(t, algorithms.Laplacian, last.Secondary())
}

func TestControlPanelCameraHidesCompare(t *testing.T) {
	cp, emitted := newTestControlPanel(t)

	cp.compareCheck.SetChecked(true)
	cp.sourceRadio.SetSelected(sourceCameraLabel)

	last := (*emitted)[len(*emitted)-1]
	assert.Equal(t, core.SourceCamera, last.Source())
	assert.False(t, last.Comparing())
	assert.False(t, cp.compareCard.Visible())

	count := len(*emitted)
	cp.SetSource(core.SourceUpload)
	assert.Len(t, *emitted, count, "programmatic source changes are silent")
	assert.True(t, cp.compareCard.Visible())
}

func TestControlPanelReset(t *testing.T) {
	cp, emitted := newTestControlPanel(t)

	cp.algorithmSelect.SetSelected("Laplacian")
	cp.params[algorithms.Laplacian][algorithms.ParamKernelSize] = 7
	cp.compareCheck.SetChecked(true)

	cp.Reset()

	last := (*emitted)[len(*emitted)-1]
	assert.Equal(t, algorithms.Sobel, last.Algorithm())
	assert.False(t, last.Compare())
	assert.Equal(t, 3, cp.params[algorithms.Laplacian][algorithms.ParamKernelSize])
}

func TestSnap(t *testing.T) {
	kernel := algorithms.ParameterInfo{Min: 1, Max: 9, Step: 2}
	aperture := algorithms.ParameterInfo{Min: 3, Max: 7, Step: 2}
	threshold := algorithms.ParameterInfo{Min: 0, Max: 255, Step: 1}

	tests := []struct {
		name  string
		info  algorithms.ParameterInfo
		value float64
		want  int
	}{
		{"kernel exact", kernel, 5, 5},
		{"kernel even rounds up", kernel, 4, 5},
		{"kernel near lower", kernel, 2.4, 3},
		{"kernel below min", kernel, 0, 1},
		{"kernel above max", kernel, 10, 9},
		{"aperture", aperture, 6, 7},
		{"threshold", threshold, 99.6, 100},
		{"zero step", algorithms.ParameterInfo{Min: 0, Max: 10}, 4.2, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, snap(tt.info, tt.value))
		})
	}
}
