package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

func grayOf(t *testing.T, rows, cols int, value float64) gocv.Mat {
	t.Helper()
	m := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(value, 0, 0, 0), rows, cols, gocv.MatTypeCV8UC1)
	require.False(t, m.Empty())
	return m
}

func rgbOf(t *testing.T, rows, cols int, value float64) gocv.Mat {
	t.Helper()
	m := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(value, value, value, 0), rows, cols, gocv.MatTypeCV8UC3)
	require.False(t, m.Empty())
	return m
}

func TestEdgeDensity(t *testing.T) {
	original := rgbOf(t, 4, 4, 0)
	defer original.Close()
	edges := grayOf(t, 4, 4, 0)
	defer edges.Close()

	for col := 0; col < 4; col++ {
		edges.SetUCharAt(1, col, 255)
	}

	value, err := NewEdgeDensity().Calculate(original, edges)
	require.NoError(t, err)
	assert.InDelta(t, 0.25, value, 1e-9)
}

func TestEdgeDensityRejectsColorOutput(t *testing.T) {
	original := rgbOf(t, 4, 4, 0)
	defer original.Close()

	_, err := NewEdgeDensity().Calculate(original, original)
	assert.Error(t, err)
}

func TestMeanResponse(t *testing.T) {
	original := rgbOf(t, 4, 4, 0)
	defer original.Close()
	edges := grayOf(t, 4, 4, 100)
	defer edges.Close()

	value, err := NewMeanResponse().Calculate(original, edges)
	require.NoError(t, err)
	assert.InDelta(t, 100.0, value, 1e-9)
}

func TestSharpness(t *testing.T) {
	flat := rgbOf(t, 8, 8, 128)
	defer flat.Close()

	value, err := NewSharpness().Calculate(flat, gocv.NewMat())
	require.NoError(t, err)
	assert.InDelta(t, 0.0, value, 1e-9)

	checker := grayOf(t, 8, 8, 0)
	defer checker.Close()
	for row := 0; row < 8; row++ {
		for col := 0; col < 8; col++ {
			if (row+col)%2 == 0 {
				checker.SetUCharAt(row, col, 255)
			}
		}
	}

	value, err = NewSharpness().Calculate(checker, gocv.NewMat())
	require.NoError(t, err)
	assert.Greater(t, value, 0.0)
}

func TestSharpnessEmptyInput(t *testing.T) {
	_, err := NewSharpness().Calculate(gocv.NewMat(), gocv.NewMat())
	assert.Error(t, err)
}

func TestEvaluator(t *testing.T) {
	e := NewEvaluator()
	assert.Equal(t, []string{"edge_density", "mean_response", "sharpness"}, e.Names())

	original := rgbOf(t, 4, 4, 10)
	defer original.Close()
	edges := grayOf(t, 4, 4, 0)
	defer edges.Close()

	all := e.CalculateAll(original, edges)
	assert.Len(t, all, 3)
	assert.Equal(t, 0.0, all["edge_density"])

	_, err := e.Calculate("psnr", original, edges)
	assert.Error(t, err)

	info := e.Info()
	assert.Equal(t, "Edge density", info["edge_density"].Name)
	assert.Equal(t, [2]float64{0, 1}, info["edge_density"].Range)
}
