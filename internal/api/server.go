package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/rs/zerolog"

	"github.com/TimurManjosov/flagdemo/internal/correlation"
	"github.com/TimurManjosov/flagdemo/internal/features"
	"github.com/TimurManjosov/flagdemo/internal/telemetry"
)

// Server holds the handler dependencies: the feature toggle service and the
// base logger the correlation middleware derives request loggers from.
type Server struct {
	features       *features.Service
	logger         zerolog.Logger
	rateLimitPerIP int
}

func NewServer(svc *features.Service, logger zerolog.Logger, rateLimitPerIP int) *Server {
	return &Server{features: svc, logger: logger, rateLimitPerIP: rateLimitPerIP}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(correlation.Middleware(s.logger))
	r.Use(telemetry.Middleware)
	r.Use(telemetry.TraceMiddleware)
	r.Use(middleware.Recoverer)
	if s.rateLimitPerIP > 0 {
		r.Use(httprate.LimitByIP(s.rateLimitPerIP, time.Minute))
	}
	r.Use(middleware.Timeout(5 * time.Second))

	// health
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/api/users/{id}", s.handleGetUser)
	r.Post("/api/payments/process", s.handleProcessPayment)

	return r
}
