package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/saadjs/kcal-trends/internal/logger"
	"github.com/saadjs/kcal-trends/internal/metrics"
	"github.com/saadjs/kcal-trends/internal/pipeline"
	"github.com/saadjs/kcal-trends/internal/service"
)

type errorResponse struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type dataResponse struct {
	Data any `json:"data"`
}

const (
	errCodeBadRequest    = "BAD_REQUEST"
	errCodeNotFound      = "NOT_FOUND"
	errCodeTimeout       = "TIMEOUT"
	errCodeInternalError = "INTERNAL_ERROR"
)

func jsonError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(errorResponse{Error: errorBody{Code: code, Message: message}})
}

func jsonStatus(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(dataResponse{Data: data})
}

func jsonOK(w http.ResponseWriter, data any) {
	jsonStatus(w, http.StatusOK, data)
}

// TrendResponse is the consumer view of a snapshot.
type TrendResponse struct {
	*pipeline.Snapshot
	Committed bool `json:"committed"`
	IsLoading bool `json:"is_loading"`
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestMetrics)

	r.Get("/v1/trends", s.getTrends)
	r.Get("/v1/trends/latest", s.getLatest)
	r.Get("/healthz", s.getHealth)
	r.Handle("/metrics", metrics.Handler())
	return r
}

// getTrends runs one request. range and metric default to this_week and
// calories.
func (s *Server) getTrends(w http.ResponseWriter, r *http.Request) {
	req := pipeline.Request{Range: service.RangeThisWeek, Metric: service.MetricCalories}
	if v := strings.TrimSpace(r.URL.Query().Get("range")); v != "" {
		key, err := service.ParseRangeKey(v)
		if err != nil {
			jsonError(w, http.StatusBadRequest, errCodeBadRequest, err.Error())
			return
		}
		req.Range = key
	}
	if v := strings.TrimSpace(r.URL.Query().Get("metric")); v != "" {
		m, err := service.ParseMetric(v)
		if err != nil {
			jsonError(w, http.StatusBadRequest, errCodeBadRequest, err.Error())
			return
		}
		req.Metric = m
	}

	ctx := r.Context()
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	snap, committed, err := s.pipe.Run(ctx, req)
	if err != nil {
		var rerr *service.RangeResolutionError
		if errors.As(err, &rerr) || errors.Is(err, service.ErrUnknownMetric) {
			jsonError(w, http.StatusBadRequest, errCodeBadRequest, err.Error())
			return
		}
		if errors.Is(err, context.DeadlineExceeded) {
			jsonError(w, http.StatusGatewayTimeout, errCodeTimeout, "log sources did not answer in time")
			return
		}
		logger.Error("trend request failed", "range", req.Range, "metric", req.Metric, "error", err)
		jsonError(w, http.StatusInternalServerError, errCodeInternalError, "failed to build trends")
		return
	}
	jsonOK(w, TrendResponse{Snapshot: snap, Committed: committed, IsLoading: s.pipe.IsLoading()})
}

func (s *Server) getLatest(w http.ResponseWriter, r *http.Request) {
	snap := s.pipe.Latest()
	if snap == nil {
		jsonError(w, http.StatusNotFound, errCodeNotFound, "no trends have been computed yet")
		return
	}
	jsonOK(w, TrendResponse{Snapshot: snap, Committed: true, IsLoading: s.pipe.IsLoading()})
}

func (s *Server) getHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	resp := healthResponse{Status: "ok"}
	if len(s.checks) > 0 {
		resp.Checks = make(map[string]string, len(s.checks))
	}
	for _, c := range s.checks {
		if err := c.Check(ctx); err != nil {
			resp.Status = "degraded"
			resp.Checks[c.Name] = err.Error()
			continue
		}
		resp.Checks[c.Name] = "ok"
	}
	status := http.StatusOK
	if resp.Status != "ok" {
		status = http.StatusServiceUnavailable
	}
	jsonStatus(w, status, resp)
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func requestMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		path := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			path = rctx.RoutePattern()
		}
		metrics.HTTPRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(wrapped.status)).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}
