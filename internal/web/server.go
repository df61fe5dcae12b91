// Browser front end: control form, rendered panels and PNG download
package web

import (
	"bytes"
	"context"
	"embed"
	"encoding/base64"
	"encoding/json"
	"html/template"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"edgevision-studio/internal/algorithms"
	"edgevision-studio/internal/config"
	"edgevision-studio/internal/core"
	imageio "edgevision-studio/internal/io"
	"edgevision-studio/internal/metrics"
)

//go:embed templates/index.html
var templateFS embed.FS

// Server serves the edge detection page
type Server struct {
	cfg        config.Config
	logger     logrus.FieldLogger
	handler    *core.Handler
	loader     *imageio.ImageLoader
	validate   *validator.Validate
	tmpl       *template.Template
	metricInfo map[string]metrics.MetricInfo
}

func NewServer(cfg config.Config, logger logrus.FieldLogger, handler *core.Handler, loader *imageio.ImageLoader) (*Server, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/index.html")
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse page template")
	}

	validate, err := newValidator()
	if err != nil {
		return nil, err
	}

	return &Server{
		cfg:        cfg,
		logger:     logger,
		handler:    handler,
		loader:     loader,
		validate:   validate,
		tmpl:       tmpl,
		metricInfo: metrics.NewEvaluator().Info(),
	}, nil
}

// Routes returns the HTTP handler for all endpoints
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("POST /{$}", s.handleProcess)
	mux.HandleFunc("POST /download", s.handleDownload)
	mux.HandleFunc("GET /api/algorithms", s.handleAlgorithms)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	return s.logRequests(mux)
}

// ListenAndServe runs until ctx is cancelled, then shuts down gracefully
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Server.Addr,
		Handler:      s.Routes(),
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.WithField("addr", srv.Addr).Info("HTTP server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errors.Wrap(err, "http server failed")
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "http server shutdown failed")
	}
	return nil
}

// bodyLimit bounds a form post: a new file plus the base64 image carried
// from the previous render, each at most MaxUploadBytes once decoded
func (s *Server) bodyLimit() int64 {
	limit := s.cfg.MaxUploadBytes()
	return limit + int64(base64.StdEncoding.EncodedLen(int(limit))) + 1<<20
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.respond(w, http.StatusOK, core.DefaultRequest(), gocv.NewMat(), nil, nil)
}

func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.bodyLimit())

	if err := s.parseForm(r); err != nil {
		s.respond(w, statusFor(err), core.DefaultRequest(), gocv.NewMat(), nil, err)
		return
	}

	req, err := s.parseControls(r)
	if err != nil {
		s.respond(w, http.StatusBadRequest, req, gocv.NewMat(), nil, err)
		return
	}

	input, encoded, err := s.readImage(r, req.Source())
	if err != nil {
		input.Close()
		s.respond(w, statusFor(err), req, gocv.NewMat(), nil, err)
		return
	}

	s.respond(w, http.StatusOK, req, input, encoded, nil)
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.bodyLimit())

	if err := s.parseForm(r); err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}

	req, err := s.parseControls(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	input, _, err := s.readImage(r, req.Source())
	defer input.Close()
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}

	res, err := s.handler.Handle(req, input)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	defer res.Close()

	dl, err := res.Download(s.loader)
	if errors.Is(err, core.ErrNoDownload) {
		http.Error(w, "no image provided", http.StatusBadRequest)
		return
	}
	if err != nil {
		s.logger.WithError(err).Error("Download encoding failed")
		http.Error(w, "failed to encode image", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", dl.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+dl.Filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(dl.Data)))
	_, _ = w.Write(dl.Data)
}

type algorithmInfo struct {
	Name        string                     `json:"name"`
	Description string                     `json:"description"`
	Download    string                     `json:"download"`
	Parameters  []algorithms.ParameterInfo `json:"parameters"`
}

func (s *Server) handleAlgorithms(w http.ResponseWriter, r *http.Request) {
	all := algorithms.All()
	infos := make([]algorithmInfo, 0, len(all))
	for _, algo := range all {
		infos = append(infos, algorithmInfo{
			Name:        string(algo.Selector()),
			Description: algo.Description(),
			Download:    core.DownloadName(algo.Selector()),
			Parameters:  algo.ParameterInfo(),
		})
	}
	s.writeJSON(w, http.StatusOK, infos)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": config.AppVersion,
	})
}

// respond processes input (possibly empty) and renders the page. input is
// closed here. encoded is the input as submitted; a successful render embeds
// it so the next post can reuse it. A non-nil cause is shown inline next to
// placeholders.
func (s *Server) respond(w http.ResponseWriter, status int, req core.Request, input gocv.Mat, encoded []byte, cause error) {
	defer input.Close()

	page := newPage(req)
	if cause != nil {
		s.logger.WithError(cause).Warn("Request rejected")
		page.Error = cause.Error()
	}

	res, err := s.handler.Handle(req, input)
	if err != nil {
		s.logger.WithError(err).Warn("Processing failed")
		page.Error = err.Error()
		status = http.StatusUnprocessableEntity

		empty := gocv.NewMat()
		defer empty.Close()
		if res, err = s.handler.Handle(req, empty); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		encoded = nil
	}
	defer res.Close()

	if len(encoded) > 0 {
		page.Original = base64.StdEncoding.EncodeToString(encoded)
		page.OriginalSource = req.Source().String()
	}

	if err := s.addResult(&page, res); err != nil {
		s.logger.WithError(err).Error("Rendering failed")
		http.Error(w, "failed to render result", http.StatusInternalServerError)
		return
	}

	s.render(w, status, page)
}

func (s *Server) render(w http.ResponseWriter, status int, page pageData) {
	var buf bytes.Buffer
	if err := s.tmpl.Execute(&buf, page); err != nil {
		s.logger.WithError(err).Error("Template execution failed")
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.WithError(err).Error("JSON encoding failed")
	}
}

// statusFor maps form parsing failures to a response status
func statusFor(err error) int {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusBadRequest
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		s.logger.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   rec.status,
			"duration": time.Since(start).String(),
		}).Debug("HTTP request")
	})
}
