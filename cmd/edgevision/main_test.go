package main

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"edgevision-studio/internal/config"
)

func writeStepPNG(t *testing.T, dir string, w, h int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := uint8(0)
			if x >= w/2 {
				v = 255
			}
			img.Set(x, y, color.RGBA{R: v, G: v, B: v, A: 255})
		}
	}

	path := filepath.Join(dir, "step.png")
	file, err := os.Create(path)
	require.NoError(t, err)
	defer file.Close()
	require.NoError(t, png.Encode(file, img))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root := newRootCmd()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), err
}

func pngSize(t *testing.T, path string) (int, int) {
	t.Helper()
	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()
	cfg, err := png.DecodeConfig(file)
	require.NoError(t, err)
	return cfg.Width, cfg.Height
}

func TestProcessWritesDownload(t *testing.T) {
	dir := t.TempDir()
	input := writeStepPNG(t, dir, 24, 16)
	out := filepath.Join(dir, "out")

	stdout, err := run(t, "process", "-i", input, "-a", "canny", "-p", "threshold1=50", "-o", out)
	require.NoError(t, err)

	want := filepath.Join(out, "edge_canny.png")
	assert.Equal(t, want, strings.TrimSpace(stdout))
	w, h := pngSize(t, want)
	assert.Equal(t, 24, w)
	assert.Equal(t, 16, h)
}

func TestProcessComparisonWritesBothOutputs(t *testing.T) {
	dir := t.TempDir()
	input := writeStepPNG(t, dir, 16, 16)

	stdout, err := run(t, "process", "-i", input, "-a", "Sobel", "--compare", "laplacian", "-o", dir)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	assert.Equal(t, []string{
		filepath.Join(dir, "edge_sobel.png"),
		filepath.Join(dir, "edge_laplacian.png"),
	}, lines)
}

func TestProcessErrors(t *testing.T) {
	dir := t.TempDir()
	input := writeStepPNG(t, dir, 8, 8)

	tests := []struct {
		name string
		args []string
	}{
		{"no input", []string{"process"}},
		{"unknown algorithm", []string{"process", "-i", input, "-a", "prewitt"}},
		{"unknown parameter", []string{"process", "-i", input, "-a", "laplacian", "-p", "threshold1=5"}},
		{"even kernel", []string{"process", "-i", input, "-p", "ksize=4"}},
		{"unknown secondary", []string{"process", "-i", input, "--compare", "roberts"}},
		{"missing file", []string{"process", "-i", filepath.Join(dir, "absent.png")}},
		{"input and camera", []string{"process", "-i", input, "--camera"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, append(tt.args, "-o", dir)...)
			assert.Error(t, err)
		})
	}
}

func TestConfigFileIsValidated(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  addr: \"\"\n"), 0o600))

	_, err := run(t, "--config", path, "process", "-i", writeStepPNG(t, dir, 8, 8), "-o", dir)
	assert.Error(t, err)
}

func TestServeFlagsOverrideOnlyWhenSet(t *testing.T) {
	f := &serveFlags{}
	flags := pflag.NewFlagSet("serve", pflag.ContinueOnError)
	flags.StringVar(&f.addr, "addr", ":8501", "")
	flags.IntVar(&f.maxUploadMB, "max-upload-mb", 20, "")
	flags.DurationVar(&f.readTimeout, "read-timeout", time.Second, "")
	flags.DurationVar(&f.writeTimeout, "write-timeout", time.Second, "")
	require.NoError(t, flags.Parse([]string{"--addr", "127.0.0.1:9999"}))

	server := config.ServerConfig{Addr: ":1", MaxUploadMB: 5, ReadTimeout: time.Minute, WriteTimeout: time.Minute}
	f.apply(flags, &server)

	assert.Equal(t, "127.0.0.1:9999", server.Addr)
	assert.Equal(t, 5, server.MaxUploadMB, "unset flags keep config values")
	assert.Equal(t, time.Minute, server.ReadTimeout)
}

func TestInitLogger(t *testing.T) {
	var buf bytes.Buffer

	debug := initLogger(true, &buf)
	assert.Equal(t, logrus.DebugLevel, debug.GetLevel())
	assert.IsType(t, &logrus.TextFormatter{}, debug.Formatter)

	prod := initLogger(false, &buf)
	assert.Equal(t, logrus.InfoLevel, prod.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, prod.Formatter)
}
