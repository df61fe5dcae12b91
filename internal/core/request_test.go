package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"edgevision-studio/internal/algorithms"
)

func TestDefaultRequest(t *testing.T) {
	req := DefaultRequest()

	assert.Equal(t, SourceUpload, req.Source())
	assert.Equal(t, algorithms.Sobel, req.Algorithm())
	assert.False(t, req.Compare())
	assert.False(t, req.Comparing())
	assert.Equal(t, algorithms.Params{"ksize": 3, "dx": 1, "dy": 0}, req.Params())
	assert.NoError(t, req.Validate())
}

func TestRequestIsImmutable(t *testing.T) {
	params := algorithms.Params{"ksize": 5}
	req := NewRequest(SourceUpload, algorithms.Laplacian, params, false, algorithms.Sobel)

	params["ksize"] = 9
	assert.Equal(t, 5, req.Params()["ksize"], "constructor copies params")

	got := req.Params()
	got["ksize"] = 7
	assert.Equal(t, 5, req.Params()["ksize"], "getter returns a copy")

	cmp := req.WithCompare(true, algorithms.Canny)
	assert.False(t, req.Compare())
	assert.True(t, cmp.Compare())
	assert.Equal(t, algorithms.Canny, cmp.Secondary())

	cam := cmp.WithSource(SourceCamera)
	assert.Equal(t, SourceUpload, cmp.Source())
	assert.False(t, cam.Comparing(), "comparison only applies to uploads")
	assert.True(t, cmp.Comparing())
}

func TestRequestValidate(t *testing.T) {
	tests := []struct {
		name    string
		req     Request
		wantErr bool
	}{
		{"default", DefaultRequest(), false},
		{"even kernel", DefaultRequest().WithAlgorithm(algorithms.Laplacian, algorithms.Params{"ksize": 4}), true},
		{"threshold out of range", DefaultRequest().WithAlgorithm(algorithms.Canny, algorithms.Params{"threshold1": 600}), true},
		{"unknown secondary", DefaultRequest().WithCompare(true, algorithms.Selector("Prewitt")), true},
		{"unregistered secondary spelling", DefaultRequest().WithCompare(true, algorithms.Selector("canny")), true},
		{"unknown secondary ignored when not comparing", DefaultRequest().WithCompare(false, algorithms.Selector("Prewitt")), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestSourceString(t *testing.T) {
	assert.Equal(t, "upload", SourceUpload.String())
	assert.Equal(t, "camera", SourceCamera.String())
}
