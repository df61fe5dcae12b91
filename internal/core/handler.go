package core

import (
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"edgevision-studio/internal/algorithms"
	"edgevision-studio/internal/metrics"
)

// Handler turns a request and an optional input image into a Result.
// It holds no per-request state and is safe for concurrent use.
type Handler struct {
	logger    logrus.FieldLogger
	evaluator *metrics.Evaluator
}

func NewHandler(logger logrus.FieldLogger, evaluator *metrics.Evaluator) *Handler {
	return &Handler{
		logger:    logger,
		evaluator: evaluator,
	}
}

// Handle processes input according to req. An empty input yields the
// placeholder pair. The caller keeps ownership of input and must Close the
// returned Result.
func (h *Handler) Handle(req Request, input gocv.Mat) (Result, error) {
	if input.Empty() {
		h.logger.Debug("No input image, rendering placeholders")
		placeholder, err := NewPlaceholderResult()
		if err != nil {
			return nil, err
		}
		return placeholder, nil
	}

	if err := ValidateImage(input); err != nil {
		return nil, errors.Wrap(err, "invalid input image")
	}

	start := time.Now()
	params := req.Params()

	primary, err := algorithms.Process(input, req.Algorithm(), params)
	if err != nil {
		return nil, errors.Wrapf(err, "%s failed", req.Algorithm())
	}

	fields := logrus.Fields{
		"algorithm": req.Algorithm().String(),
		"params":    params.String(),
		"source":    req.Source().String(),
		"size":      MetadataOf(input).String(),
	}

	if req.Comparing() {
		// The secondary operator reuses the primary parameter set
		secondary, err := algorithms.Process(input, req.Secondary(), params)
		if err != nil {
			primary.Close()
			return nil, errors.Wrapf(err, "%s failed", req.Secondary())
		}

		fields["secondary"] = req.Secondary().String()
		fields["duration"] = time.Since(start).String()
		h.logger.WithFields(fields).Info("Comparison processed")

		return &ComparisonResult{
			Primary:   req.Algorithm(),
			Secondary: req.Secondary(),
			Original:  Panel{Title: "Original", Image: input.Clone()},
			First:     Panel{Title: OutputTitle(req.Algorithm()), Image: primary, Stats: h.stats(input, primary)},
			Second:    Panel{Title: OutputTitle(req.Secondary()), Image: secondary, Stats: h.stats(input, secondary)},
		}, nil
	}

	inputTitle := "Input"
	if req.Source() == SourceCamera {
		inputTitle = "Captured"
	}

	fields["duration"] = time.Since(start).String()
	h.logger.WithFields(fields).Info("Image processed")

	return &SingleResult{
		Algorithm: req.Algorithm(),
		Input:     Panel{Title: inputTitle, Image: input.Clone()},
		Output:    Panel{Title: OutputTitle(req.Algorithm()), Image: primary, Stats: h.stats(input, primary)},
	}, nil
}

func (h *Handler) stats(original, processed gocv.Mat) map[string]float64 {
	if h.evaluator == nil {
		return nil
	}
	return h.evaluator.CalculateAll(original, processed)
}
