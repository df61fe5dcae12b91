package web

import (
	"encoding/base64"
	"io"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"gocv.io/x/gocv"

	"edgevision-studio/internal/algorithms"
	"edgevision-studio/internal/core"
	imageio "edgevision-studio/internal/io"
)

// Form field names shared with the page template
const (
	fieldAlgorithm = "algorithm"
	fieldSecondary = "secondary"
	fieldCompare   = "compare"
	fieldUseCamera = "use_camera"
	fieldImage     = "image"
	fieldCapture   = "capture"

	fieldOriginal       = "original"
	fieldOriginalSource = "original_source"
)

// controlsForm is the raw, unvalidated state of the control panel
type controlsForm struct {
	Algorithm string `validate:"required,selector"`
	Secondary string `validate:"omitempty,selector"`
	Compare   bool
	UseCamera bool
}

func newValidator() (*validator.Validate, error) {
	v := validator.New()
	// Selector names are matched case-insensitively
	err := v.RegisterValidation("selector", func(fl validator.FieldLevel) bool {
		_, err := algorithms.ParseSelector(fl.Field().String())
		return err == nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to register selector validation")
	}
	return v, nil
}

// paramField is the form field carrying one parameter of an algorithm
func paramField(sel algorithms.Selector, name string) string {
	return sel.Lower() + "_" + name
}

// parseForm reads a multipart or urlencoded body within the upload limit
func (s *Server) parseForm(r *http.Request) error {
	err := r.ParseMultipartForm(s.bodyLimit())
	if errors.Is(err, http.ErrNotMultipart) {
		err = r.ParseForm()
	}
	if err != nil {
		return errors.Wrap(err, "failed to parse form")
	}
	return nil
}

// parseControls builds a request from the submitted control values
func (s *Server) parseControls(r *http.Request) (core.Request, error) {
	form := controlsForm{
		Algorithm: r.FormValue(fieldAlgorithm),
		Secondary: r.FormValue(fieldSecondary),
		Compare:   r.FormValue(fieldCompare) != "",
		UseCamera: r.FormValue(fieldUseCamera) != "",
	}
	if form.Algorithm == "" {
		form.Algorithm = string(algorithms.Sobel)
	}
	if form.Secondary == "" {
		form.Secondary = string(algorithms.Sobel)
	}

	if err := s.validate.Struct(form); err != nil {
		return core.DefaultRequest(), errors.Wrap(err, "invalid controls")
	}

	primary, _ := algorithms.ParseSelector(form.Algorithm)
	secondary, _ := algorithms.ParseSelector(form.Secondary)

	algo, ok := algorithms.Get(primary)
	if !ok {
		return core.DefaultRequest(), errors.Errorf("algorithm not registered: %s", primary)
	}

	params := algo.DefaultParams()
	for _, info := range algo.ParameterInfo() {
		raw := r.FormValue(paramField(primary, info.Name))
		if raw == "" {
			continue
		}
		value, err := strconv.Atoi(raw)
		if err != nil {
			return core.DefaultRequest(), errors.Errorf("%s must be an integer, got %q", info.Label, raw)
		}
		params[info.Name] = value
	}

	source := core.SourceUpload
	if form.UseCamera {
		source = core.SourceCamera
	}

	req := core.NewRequest(source, primary, params, form.Compare, secondary)
	if err := req.Validate(); err != nil {
		return req, errors.Wrap(err, "invalid parameters")
	}
	return req, nil
}

// readImage decodes the newly submitted file, or else the image carried over
// from the previous render for the same source. It also returns the encoded
// bytes so the next render can carry them again. No image yields an empty Mat.
func (s *Server) readImage(r *http.Request, source core.Source) (gocv.Mat, []byte, error) {
	data, err := s.readUpload(r, source)
	if err != nil {
		return gocv.NewMat(), nil, err
	}
	if len(data) == 0 {
		if data, err = s.readCarried(r, source); err != nil {
			return gocv.NewMat(), nil, err
		}
	}
	if len(data) == 0 {
		return gocv.NewMat(), nil, nil
	}

	mat, err := s.loader.Decode(data)
	if err != nil {
		return gocv.NewMat(), nil, err
	}
	return mat, data, nil
}

func (s *Server) readUpload(r *http.Request, source core.Source) ([]byte, error) {
	if r.MultipartForm == nil {
		return nil, nil
	}

	field := fieldImage
	if source == core.SourceCamera {
		field = fieldCapture
	}

	file, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to read upload")
	}
	defer file.Close()

	if header.Size > s.cfg.MaxUploadBytes() {
		return nil, errors.Wrapf(&http.MaxBytesError{Limit: s.cfg.MaxUploadBytes()}, "file %s", header.Filename)
	}

	// Browser captures are not always named with an extension
	if source == core.SourceUpload && !imageio.IsSupported(header.Filename) {
		return nil, errors.Wrapf(imageio.ErrUnsupportedFormat, "file %s", header.Filename)
	}

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read upload")
	}
	return data, nil
}

// readCarried decodes the base64 image field rendered into the previous page
func (s *Server) readCarried(r *http.Request, source core.Source) ([]byte, error) {
	raw := r.FormValue(fieldOriginal)
	if raw == "" || r.FormValue(fieldOriginalSource) != source.String() {
		return nil, nil
	}

	limit := s.cfg.MaxUploadBytes()
	if int64(len(raw)) > int64(base64.StdEncoding.EncodedLen(int(limit))) {
		return nil, errors.Wrap(&http.MaxBytesError{Limit: limit}, "carried image")
	}

	data, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return nil, errors.Wrap(err, "invalid carried image")
	}
	return data, nil
}
