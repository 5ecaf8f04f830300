// Package http exposes the prediction service over HTTP.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/flood-risk-service/internal/domain"
	"github.com/couchcryptid/flood-risk-service/internal/observability"
	"github.com/couchcryptid/flood-risk-service/internal/predictor"
)

// PredictionService is the core the handlers delegate to.
type PredictionService interface {
	sharedobs.ReadinessChecker
	Predict(ctx context.Context, req domain.PredictionRequest) (domain.Prediction, error)
	PredictLive(ctx context.Context, req predictor.LiveRequest) (predictor.LivePrediction, error)
}

// Server exposes the prediction, ward, health, readiness, and metrics routes.
type Server struct {
	httpServer *http.Server
	svc        PredictionService
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// NewServer wires routes and middleware. allowedOrigins configures CORS; a
// single "*" permits every origin.
func NewServer(addr string, svc PredictionService, allowedOrigins []string, logger *slog.Logger, metrics *observability.Metrics) *Server {
	mux := http.NewServeMux()

	s := &Server{
		svc:     svc,
		logger:  logger,
		metrics: metrics,
	}

	mux.HandleFunc("POST /predict", s.handlePredict)
	mux.HandleFunc("POST /predict/live", s.handlePredictLive)
	mux.HandleFunc("GET /wards", s.handleWards)
	mux.HandleFunc("GET /openapi.json", s.handleOpenAPI)
	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(svc))
	mux.Handle("GET /metrics", promhttp.Handler())

	var handler http.Handler = mux
	handler = corsMiddleware(allowedOrigins)(handler)
	handler = loggingMiddleware(logger)(handler)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleWards(w http.ResponseWriter, _ *http.Request) {
	sharedobs.WriteJSON(w, http.StatusOK, domain.Wards())
}

// errorResponse is the body of every non-2xx prediction response.
type errorResponse struct {
	Error  string   `json:"error"`
	Fields []string `json:"fields,omitempty"`
}
