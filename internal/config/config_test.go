package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "edgevision.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, int64(20<<20), cfg.MaxUploadBytes())
}

func TestLoadEmptyPath(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
server:
  addr: "127.0.0.1:9000"
  read_timeout: 5s
display:
  preview_width: 640
camera:
  device_id: 2
debug: true
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, Default().Server.WriteTimeout, cfg.Server.WriteTimeout, "unset keys keep defaults")
	assert.Equal(t, Default().Server.MaxUploadMB, cfg.Server.MaxUploadMB)
	assert.Equal(t, 640, cfg.Display.PreviewWidth)
	assert.Equal(t, 768, cfg.Display.PreviewHeight)
	assert.Equal(t, 2, cfg.Camera.DeviceID)
	assert.True(t, cfg.Debug)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		path string
	}{
		{"missing file", filepath.Join(t.TempDir(), "absent.yaml")},
		{"malformed yaml", writeConfig(t, "server: [unclosed")},
		{"invalid value", writeConfig(t, "server:\n  max_upload_mb: 0\n")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.path)
			assert.Error(t, err)
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty addr", func(c *Config) { c.Server.Addr = "" }},
		{"upload too large", func(c *Config) { c.Server.MaxUploadMB = 1024 }},
		{"zero timeout", func(c *Config) { c.Server.ReadTimeout = 0 }},
		{"tiny preview", func(c *Config) { c.Display.PreviewHeight = 10 }},
		{"negative device", func(c *Config) { c.Camera.DeviceID = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
