// Application settings loaded from YAML and overridden from the command line
package config

import (
	"os"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	AppName    = "EdgeVision Studio"
	AppID      = "com.edgevision.studio"
	AppVersion = "1.0.0"
)

// Config holds settings shared by all front ends
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Display DisplayConfig `yaml:"display"`
	Camera  CameraConfig  `yaml:"camera"`
	Debug   bool          `yaml:"debug"`
}

// ServerConfig controls the HTTP front end
type ServerConfig struct {
	Addr         string        `yaml:"addr"`
	MaxUploadMB  int           `yaml:"max_upload_mb"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// DisplayConfig bounds the size of rendered previews
type DisplayConfig struct {
	PreviewWidth  int `yaml:"preview_width"`
	PreviewHeight int `yaml:"preview_height"`
}

// CameraConfig selects the capture device used by the desktop front end
type CameraConfig struct {
	DeviceID int `yaml:"device_id"`
}

// Default returns the built-in settings
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:         ":8501",
			MaxUploadMB:  20,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 60 * time.Second,
		},
		Display: DisplayConfig{
			PreviewWidth:  1024,
			PreviewHeight: 768,
		},
		Camera: CameraConfig{
			DeviceID: 0,
		},
	}
}

// Load reads path over the defaults. An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrapf(err, "failed to read config %s", path)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "failed to parse config %s", path)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, errors.Wrapf(err, "invalid config %s", path)
	}

	return cfg, nil
}

// MaxUploadBytes is the request body limit for uploads
func (c Config) MaxUploadBytes() int64 {
	return int64(c.Server.MaxUploadMB) << 20
}

// Validate checks ranges
func (c Config) Validate() error {
	if c.Server.Addr == "" {
		return errors.New("server.addr must not be empty")
	}
	if c.Server.MaxUploadMB < 1 || c.Server.MaxUploadMB > 512 {
		return errors.Errorf("server.max_upload_mb must be between 1 and 512, got %d", c.Server.MaxUploadMB)
	}
	if c.Server.ReadTimeout <= 0 || c.Server.WriteTimeout <= 0 {
		return errors.New("server timeouts must be positive")
	}
	if c.Display.PreviewWidth < 64 || c.Display.PreviewHeight < 64 {
		return errors.Errorf("display preview must be at least 64x64, got %dx%d",
			c.Display.PreviewWidth, c.Display.PreviewHeight)
	}
	if c.Camera.DeviceID < 0 {
		return errors.Errorf("camera.device_id must not be negative, got %d", c.Camera.DeviceID)
	}
	return nil
}
