// Package predictor serves flood-risk predictions from a loaded regressor.
package predictor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/flood-risk-service/internal/domain"
	"github.com/couchcryptid/flood-risk-service/internal/observability"
)

var (
	// ErrSchemaMismatch means the model was fit on a different feature layout.
	ErrSchemaMismatch = errors.New("model feature schema mismatch")
	// ErrUnknownWard means a live request named a ward outside the registry.
	ErrUnknownWard = errors.New("unknown ward")
	// ErrLiveWeatherDisabled means no weather provider is configured.
	ErrLiveWeatherDisabled = errors.New("live weather is disabled")
	// ErrWeatherUnavailable wraps weather provider failures.
	ErrWeatherUnavailable = errors.New("weather unavailable")
)

// Prediction sources recorded on events and metrics.
const (
	SourceRequest = "request"
	SourceLive    = "live"
)

// Model is a fitted regressor over the domain feature schema.
type Model interface {
	Predict(x []float64) (float64, error)
	Features() []string
	Version() string
}

// Publisher emits served predictions to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, event domain.PredictionEvent) error
}

// Service maps requests onto the model and derives display fields. The model
// is read-only after construction, so a Service is safe for concurrent use.
type Service struct {
	model     Model
	weather   domain.WeatherProvider
	publisher Publisher
	logger    *slog.Logger
	metrics   *observability.Metrics
}

// New creates a Service. The model's feature names must match the domain
// schema exactly. Pass a nil weather provider to disable live predictions and
// a nil publisher to disable event publishing.
func New(model Model, weather domain.WeatherProvider, publisher Publisher, logger *slog.Logger, metrics *observability.Metrics) (*Service, error) {
	if model == nil {
		return nil, errors.New("predictor: nil model")
	}
	if err := domain.CheckFeatureNames(model.Features()); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSchemaMismatch, err)
	}

	metrics.ModelLoaded.Set(1)
	metrics.ModelInfo.WithLabelValues(model.Version()).Set(1)

	return &Service{
		model:     model,
		weather:   weather,
		publisher: publisher,
		logger:    logger,
		metrics:   metrics,
	}, nil
}

// CheckReadiness returns nil once a model is loaded.
func (s *Service) CheckReadiness(_ context.Context) error {
	if s.model == nil {
		return errors.New("no model loaded")
	}
	return nil
}

// LiveEnabled reports whether PredictLive can be served.
func (s *Service) LiveEnabled() bool {
	return s.weather != nil
}

// Predict scores a fully specified request. Inputs are not range checked;
// out-of-distribution values still produce a probability in [0,100].
func (s *Service) Predict(ctx context.Context, req domain.PredictionRequest) (domain.Prediction, error) {
	return s.predict(ctx, req, SourceRequest)
}

func (s *Service) predict(ctx context.Context, req domain.PredictionRequest, source string) (domain.Prediction, error) {
	v := req.Vector()

	start := time.Now()
	raw, err := s.model.Predict(v[:])
	s.metrics.InferenceDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return domain.Prediction{}, fmt.Errorf("model predict: %w", err)
	}

	pred := domain.Assess(req.WardName, raw, req.Conditions)

	s.metrics.PredictionsServed.WithLabelValues(source, string(pred.Trend)).Inc()
	s.metrics.PredictionScore.Observe(float64(pred.Probability))
	s.logger.Debug("prediction served",
		"ward", req.WardName,
		"source", source,
		"raw_score", raw,
		"probability", pred.Probability,
		"trend", pred.Trend,
	)

	s.publish(ctx, domain.PredictionEvent{
		Request:      req,
		Prediction:   pred,
		RawScore:     raw,
		ModelVersion: s.model.Version(),
		Source:       source,
		PredictedAt:  domain.Now().UTC(),
	})
	return pred, nil
}

// publish hands the event to the publisher. Failures are logged and counted;
// they never fail the request.
func (s *Service) publish(ctx context.Context, event domain.PredictionEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.metrics.PublishErrors.Inc()
		s.logger.Warn("publish prediction event failed", "error", err, "ward", event.Request.WardName)
	}
}
