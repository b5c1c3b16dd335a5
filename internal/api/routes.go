// Package api exposes the worker's HTTP surface: the render trigger,
// job enqueue and lookup, health, and metrics.
package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/atlastrail/render/internal/health"
	"github.com/atlastrail/render/internal/metrics"
	"github.com/atlastrail/render/internal/worker"
)

// Runner triggers a render pass: claim up to limit queued jobs and
// process them to a terminal state.
type Runner interface {
	Run(ctx context.Context, limit int) ([]worker.Result, error)
}

type Server struct {
	runner  Runner
	store   JobStore
	checker *health.Checker
	limiter *RedisRateLimiter
}

func NewServer(runner Runner, store JobStore, checker *health.Checker, limiter *RedisRateLimiter) *Server {
	return &Server{
		runner:  runner,
		store:   store,
		checker: checker,
		limiter: limiter,
	}
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.Recoverer)
	r.Use(RequestID)
	r.Use(SecurityHeaders)
	r.Use(metrics.HTTPMetricsMiddleware)

	r.With(RateLimit(s.limiter)).Post("/render", s.handleRender)
	r.Post("/jobs", s.handleEnqueue)
	r.Get("/jobs/{id}", s.handleGetJob)
	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	report := s.checker.Check(r.Context())
	status := http.StatusOK
	if report.Status == health.StatusUnhealthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, report)
}
