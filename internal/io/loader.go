// Image decoding and encoding for uploads, captures and files
package io

import (
	"bytes"
	"image"
	_ "image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/nfnt/resize"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"
	_ "golang.org/x/image/bmp"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported image format")
	ErrEmptyImage        = errors.New("image is empty")
)

// supportedFormats maps image.DecodeConfig format names to accepted extensions
var supportedFormats = map[string][]string{
	"jpeg": {".jpg", ".jpeg"},
	"png":  {".png"},
	"bmp":  {".bmp"},
}

// ImageLoader handles image decoding and encoding
type ImageLoader struct {
	logger       logrus.FieldLogger
	maxDimension int
}

func NewImageLoader(logger logrus.FieldLogger) *ImageLoader {
	return &ImageLoader{
		logger:       logger,
		maxDimension: 16384,
	}
}

// Decode turns encoded jpeg, png or bmp bytes into an RGB Mat
func (il *ImageLoader) Decode(data []byte) (gocv.Mat, error) {
	if len(data) == 0 {
		return gocv.NewMat(), ErrEmptyImage
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return gocv.NewMat(), errors.Wrap(ErrUnsupportedFormat, err.Error())
	}
	if _, ok := supportedFormats[format]; !ok {
		return gocv.NewMat(), errors.Wrapf(ErrUnsupportedFormat, "format %s", format)
	}
	if cfg.Width > il.maxDimension || cfg.Height > il.maxDimension {
		return gocv.NewMat(), errors.Errorf("image too large: %dx%d (max: %d)", cfg.Width, cfg.Height, il.maxDimension)
	}

	bgr, err := gocv.IMDecode(data, gocv.IMReadColor)
	if err != nil {
		return gocv.NewMat(), errors.Wrap(err, "image decoding failed")
	}
	defer bgr.Close()

	if bgr.Empty() {
		return gocv.NewMat(), errors.Wrapf(ErrEmptyImage, "decoding %s", format)
	}

	rgb := gocv.NewMat()
	gocv.CvtColor(bgr, &rgb, gocv.ColorBGRToRGB)

	il.logger.WithFields(logrus.Fields{
		"format":   format,
		"width":    rgb.Cols(),
		"height":   rgb.Rows(),
		"channels": rgb.Channels(),
	}).Debug("Image decoded")

	return rgb, nil
}

// LoadImage reads and decodes an image file into an RGB Mat
func (il *ImageLoader) LoadImage(path string) (gocv.Mat, error) {
	il.logger.WithField("filepath", path).Debug("Loading image")

	if !IsSupported(path) {
		return gocv.NewMat(), errors.Wrapf(ErrUnsupportedFormat, "%s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return gocv.NewMat(), errors.Wrapf(err, "failed to read image %s", path)
	}

	mat, err := il.Decode(data)
	if err != nil {
		return gocv.NewMat(), errors.Wrapf(err, "failed to load image %s", path)
	}

	il.logger.WithFields(logrus.Fields{
		"filepath": path,
		"width":    mat.Cols(),
		"height":   mat.Rows(),
	}).Info("Image loaded successfully")

	return mat, nil
}

// EncodePNG encodes an RGB or single-channel Mat as PNG
func (il *ImageLoader) EncodePNG(mat gocv.Mat) ([]byte, error) {
	if mat.Empty() {
		return nil, ErrEmptyImage
	}

	src := mat
	if mat.Channels() == 3 {
		bgr := gocv.NewMat()
		defer bgr.Close()
		gocv.CvtColor(mat, &bgr, gocv.ColorRGBToBGR)
		src = bgr
	}

	buf, err := gocv.IMEncode(gocv.PNGFileExt, src)
	if err != nil {
		return nil, errors.Wrap(err, "png encoding failed")
	}
	defer buf.Close()

	out := make([]byte, buf.Len())
	copy(out, buf.GetBytes())
	return out, nil
}

// SaveImage writes a Mat as PNG to path
func (il *ImageLoader) SaveImage(path string, mat gocv.Mat) error {
	data, err := il.EncodePNG(mat)
	if err != nil {
		return errors.Wrapf(err, "cannot save %s", path)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrapf(err, "failed to save image %s", path)
	}

	il.logger.WithFields(logrus.Fields{
		"filepath": path,
		"width":    mat.Cols(),
		"height":   mat.Rows(),
		"channels": mat.Channels(),
	}).Info("Image saved successfully")

	return nil
}

// ToImage converts an RGB or single-channel Mat to a Go image
func ToImage(mat gocv.Mat) (image.Image, error) {
	if mat.Empty() {
		return nil, ErrEmptyImage
	}

	switch mat.Channels() {
	case 1:
		img, err := mat.ToImage()
		if err != nil {
			return nil, errors.Wrap(err, "gray conversion failed")
		}
		return img, nil
	case 3:
		// Mat.ToImage assumes BGR ordering
		bgr := gocv.NewMat()
		defer bgr.Close()
		gocv.CvtColor(mat, &bgr, gocv.ColorRGBToBGR)
		img, err := bgr.ToImage()
		if err != nil {
			return nil, errors.Wrap(err, "color conversion failed")
		}
		return img, nil
	default:
		return nil, errors.Errorf("unsupported channel count: %d", mat.Channels())
	}
}

// PreviewImage converts a Mat to a Go image downscaled to fit within
// maxWidth x maxHeight. Images that already fit keep their size.
func PreviewImage(mat gocv.Mat, maxWidth, maxHeight int) (image.Image, error) {
	img, err := ToImage(mat)
	if err != nil {
		return nil, err
	}

	if maxWidth > 0 && maxHeight > 0 {
		img = resize.Thumbnail(uint(maxWidth), uint(maxHeight), img, resize.Lanczos3)
	}
	return img, nil
}

// EncodePreview is PreviewImage encoded as PNG
func (il *ImageLoader) EncodePreview(mat gocv.Mat, maxWidth, maxHeight int) ([]byte, error) {
	img, err := PreviewImage(mat, maxWidth, maxHeight)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, errors.Wrap(err, "preview encoding failed")
	}
	return buf.Bytes(), nil
}

// IsSupported reports whether the file name has an accepted image extension
func IsSupported(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, exts := range supportedFormats {
		for _, e := range exts {
			if ext == e {
				return true
			}
		}
	}
	return false
}

// SupportedExtensions returns accepted extensions in a stable order
func SupportedExtensions() []string {
	return []string{".jpg", ".jpeg", ".png", ".bmp"}
}
