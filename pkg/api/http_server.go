package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"

	"github.com/lad94220/ML-Lab1/pkg/insights"
	"github.com/lad94220/ML-Lab1/pkg/logging"
	"github.com/lad94220/ML-Lab1/pkg/monitor"
	"github.com/lad94220/ML-Lab1/pkg/pricing"
)

const (
	APIName    = "Diamond Price Predictor API"
	ModelName  = "Model 5: log(carat) + cut + color + clarity"
	APIVersion = "1.0.0"

	pricePlaces = 2
)

// InsightsSource supplies the dashboard aggregates; insights.Service is the
// production implementation.
type InsightsSource interface {
	Get() (*insights.Insights, error)
}

// Options tune the router's middleware. The zero value disables rate limiting
// and allows any origin.
type Options struct {
	CORSOrigins       []string
	RateLimitRequests int
	RateLimitWindow   time.Duration
}

type Server struct {
	pipeline *pricing.Pipeline
	insights InsightsSource
	stats    *monitor.Stats
	opts     Options
}

func NewServer(p *pricing.Pipeline, src InsightsSource, stats *monitor.Stats, opts Options) *Server {
	if stats == nil {
		stats = monitor.NewStats()
	}
	if len(opts.CORSOrigins) == 0 {
		opts.CORSOrigins = []string{"*"}
	}
	stats.SetModelLoaded(p.Loaded())
	return &Server{pipeline: p, insights: src, stats: stats, opts: opts}
}

// Handler builds the chi router with all routes and middleware.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(requestID)
	r.Use(s.observe)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.opts.CORSOrigins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{requestIDHeader},
	}))

	r.Get("/", s.handleRoot)
	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.HandlerFor(s.stats.Registry, promhttp.HandlerOpts{}))

	r.Route("/api", func(r chi.Router) {
		if s.opts.RateLimitRequests > 0 {
			r.Use(httprate.Limit(
				s.opts.RateLimitRequests,
				s.opts.RateLimitWindow,
				httprate.WithKeyFuncs(httprate.KeyByIP),
				httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
					writeDetail(w, http.StatusTooManyRequests, "Too many requests")
				}),
			))
		}
		r.Get("/predict", s.handlePredict)
		r.Get("/insights", s.handleInsights)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeDetail(w, http.StatusNotFound, "Not Found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeDetail(w, http.StatusMethodNotAllowed, "Method Not Allowed")
	})
	return r
}

type rootResponse struct {
	Message string `json:"message"`
	Model   string `json:"model"`
	Version string `json:"version"`
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, rootResponse{
		Message: APIName,
		Model:   ModelName,
		Version: APIVersion,
	})
}

type healthResponse struct {
	Status      string `json:"status"`
	ModelLoaded bool   `json:"model_loaded"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", ModelLoaded: s.pipeline.Loaded()})
}

type predictResponse struct {
	PredictedPrice float64 `json:"predicted_price"`
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	carat, err := strconv.ParseFloat(q.Get("carat"), 64)
	if err != nil {
		s.stats.RecordPrediction(monitor.OutcomeInvalid, 0)
		writeDetail(w, http.StatusBadRequest, "carat must be a number")
		return
	}
	req := pricing.Request{
		Carat:   carat,
		Cut:     q.Get("cut"),
		Color:   q.Get("color"),
		Clarity: q.Get("clarity"),
	}

	start := time.Now()
	price, err := s.pipeline.Predict(req)
	elapsed := time.Since(start)

	var verr *pricing.ValidationError
	switch {
	case err == nil:
		s.stats.RecordPrediction(monitor.OutcomeOK, elapsed)
	case errors.As(err, &verr):
		s.stats.RecordPrediction(monitor.OutcomeInvalid, elapsed)
		writeDetail(w, http.StatusBadRequest, verr.Reason)
		return
	case errors.Is(err, pricing.ErrModelUnavailable):
		s.stats.RecordPrediction(monitor.OutcomeUnavailable, elapsed)
		logging.Ctx(r.Context()).Warn().Err(err).Msg("prediction without model")
		writeDetail(w, http.StatusInternalServerError, "Prediction error: "+err.Error())
		return
	default:
		s.stats.RecordPrediction(monitor.OutcomeError, elapsed)
		logging.Ctx(r.Context()).Error().Err(err).Interface("request", req).Msg("prediction failed")
		writeDetail(w, http.StatusInternalServerError, "Prediction error: "+err.Error())
		return
	}

	rounded := decimal.NewFromFloat(price).Round(pricePlaces).InexactFloat64()
	logging.Ctx(r.Context()).Debug().
		Float64("carat", req.Carat).
		Str("cut", req.Cut).
		Str("color", req.Color).
		Str("clarity", req.Clarity).
		Float64("price", rounded).
		Msg("predicted")
	writeJSON(w, http.StatusOK, predictResponse{PredictedPrice: rounded})
}

func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	if s.insights == nil {
		writeDetail(w, http.StatusInternalServerError, "Insights error: no dataset configured")
		return
	}
	res, err := s.insights.Get()
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("insights failed")
		writeDetail(w, http.StatusInternalServerError, "Insights error: "+err.Error())
		return
	}
	s.stats.SetDatasetRows(res.Rows)
	writeJSON(w, http.StatusOK, res)
}

type errorResponse struct {
	Detail string `json:"detail"`
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, errorResponse{Detail: detail})
}

// writeJSON encodes v before committing status so an encoding failure can
// still be reported as a 500.
func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		logging.Error().Err(err).Int("status", status).Msg("encode response")
		status = http.StatusInternalServerError
		body, _ = json.Marshal(errorResponse{Detail: "Response encoding error: " + err.Error()})
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(append(body, '\n')); err != nil {
		logging.Warn().Err(err).Msg("write response")
	}
}
