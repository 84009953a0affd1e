package monitor

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Prediction outcomes.
const (
	OutcomeOK          = "ok"
	OutcomeInvalid     = "invalid"
	OutcomeUnavailable = "unavailable"
	OutcomeError       = "error"
)

// Stats holds the service's Prometheus collectors. Each Stats owns its
// registry so tests can build independent instances.
type Stats struct {
	Registry *prometheus.Registry

	predictions       *prometheus.CounterVec
	predictionLatency prometheus.Histogram
	httpRequests      *prometheus.CounterVec
	modelLoaded       prometheus.Gauge
	datasetRows       prometheus.Gauge
}

func NewStats() *Stats {
	reg := prometheus.NewRegistry()
	s := &Stats{
		Registry: reg,
		predictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "diamond_predictions_total",
			Help: "Prediction requests by outcome",
		}, []string{"outcome"}),
		predictionLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "diamond_prediction_duration_seconds",
			Help:    "Time spent in the prediction pipeline",
			Buckets: []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005},
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "diamond_http_requests_total",
			Help: "HTTP requests by route and status code",
		}, []string{"method", "route", "status"}),
		modelLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "diamond_model_loaded",
			Help: "1 when the price model artifact is loaded",
		}),
		datasetRows: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "diamond_dataset_rows",
			Help: "Rows in the insights dataset",
		}),
	}
	reg.MustRegister(
		s.predictions,
		s.predictionLatency,
		s.httpRequests,
		s.modelLoaded,
		s.datasetRows,
		collectors.NewGoCollector(),
	)
	return s
}

func (s *Stats) RecordPrediction(outcome string, d time.Duration) {
	s.predictions.WithLabelValues(outcome).Inc()
	s.predictionLatency.Observe(d.Seconds())
}

func (s *Stats) RecordRequest(method, route, status string) {
	s.httpRequests.WithLabelValues(method, route, status).Inc()
}

func (s *Stats) SetModelLoaded(loaded bool) {
	if loaded {
		s.modelLoaded.Set(1)
		return
	}
	s.modelLoaded.Set(0)
}

func (s *Stats) SetDatasetRows(n int) {
	s.datasetRows.Set(float64(n))
}

// Predictions exposes the outcome counter for assertions.
func (s *Stats) Predictions() *prometheus.CounterVec { return s.predictions }
