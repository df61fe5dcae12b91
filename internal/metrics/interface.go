// Edge statistics displayed alongside each operator output
package metrics

import (
	"fmt"
	"sort"

	"gocv.io/x/gocv"
)

// Metric summarizes an operator output. original is the RGB input the
// output was computed from.
type Metric interface {
	Calculate(original, processed gocv.Mat) (float64, error)
	Name() string
	Description() string
	// Range is the (min, max) a value can take
	Range() (float64, float64)
	// IsHigherBetter reports whether larger values mean stronger edges
	IsHigherBetter() bool
}

// Evaluator computes a keyed set of metrics
type Evaluator struct {
	metrics map[string]Metric
}

// NewEvaluator returns an evaluator with edge_density, mean_response and sharpness
func NewEvaluator() *Evaluator {
	e := &Evaluator{metrics: make(map[string]Metric)}
	e.Register("edge_density", NewEdgeDensity())
	e.Register("mean_response", NewMeanResponse())
	e.Register("sharpness", NewSharpness())
	return e
}

// Register adds or replaces the metric stored under key. It must not run
// concurrently with Calculate or CalculateAll.
func (e *Evaluator) Register(key string, metric Metric) {
	e.metrics[key] = metric
}

func (e *Evaluator) Calculate(key string, original, processed gocv.Mat) (float64, error) {
	metric, ok := e.metrics[key]
	if !ok {
		return 0, fmt.Errorf("metric not found: %s", key)
	}
	return metric.Calculate(original, processed)
}

// CalculateAll returns every metric that could be computed; failures are left out
func (e *Evaluator) CalculateAll(original, processed gocv.Mat) map[string]float64 {
	values := make(map[string]float64, len(e.metrics))
	for key, metric := range e.metrics {
		value, err := metric.Calculate(original, processed)
		if err != nil {
			continue
		}
		values[key] = value
	}
	return values
}

// Names returns the registered keys in sorted order
func (e *Evaluator) Names() []string {
	keys := make([]string, 0, len(e.metrics))
	for key := range e.metrics {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Info describes every registered metric by key
func (e *Evaluator) Info() map[string]MetricInfo {
	info := make(map[string]MetricInfo, len(e.metrics))
	for key, metric := range e.metrics {
		lo, hi := metric.Range()
		info[key] = MetricInfo{
			Name:         metric.Name(),
			Description:  metric.Description(),
			Range:        [2]float64{lo, hi},
			HigherBetter: metric.IsHigherBetter(),
		}
	}
	return info
}

// MetricInfo is the display metadata of a metric
type MetricInfo struct {
	Name         string     `json:"name"`
	Description  string     `json:"description"`
	Range        [2]float64 `json:"range"`
	HigherBetter bool       `json:"higher_better"`
}
