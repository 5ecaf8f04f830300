package predictor

import (
	"context"
	"fmt"

	"github.com/couchcryptid/flood-risk-service/internal/domain"
)

// LiveRequest carries the terrain inputs for a ward; weather and month are
// filled in from the provider and the clock.
type LiveRequest struct {
	WardName         string  `json:"ward_name"`
	Elevation        float64 `json:"elevation"`
	Siltation        float64 `json:"siltation"`
	DrainageCapacity float64 `json:"drainage_capacity"`
}

// LivePrediction is a prediction plus the inputs that were assembled for it.
type LivePrediction struct {
	domain.Prediction
	Conditions domain.Conditions `json:"conditions"`
	Weather    domain.Weather    `json:"weather"`
}

// PredictLive resolves the ward, fetches its current weather, and scores the
// combined conditions through the same path as Predict.
func (s *Service) PredictLive(ctx context.Context, req LiveRequest) (LivePrediction, error) {
	if s.weather == nil {
		return LivePrediction{}, ErrLiveWeatherDisabled
	}

	ward, ok := domain.LookupWard(req.WardName)
	if !ok {
		return LivePrediction{}, fmt.Errorf("%w: %q", ErrUnknownWard, req.WardName)
	}

	w, err := s.weather.CurrentWeather(ctx, ward.Lat, ward.Lon)
	if err != nil {
		return LivePrediction{}, fmt.Errorf("%w: %w", ErrWeatherUnavailable, err)
	}

	cond := domain.Conditions{
		Month:            int(domain.Now().UTC().Month()),
		Temperature:      w.Temperature,
		Humidity:         w.Humidity,
		Pressure:         w.Pressure,
		CloudCover:       w.CloudCover,
		Elevation:        req.Elevation,
		Siltation:        req.Siltation,
		DrainageCapacity: req.DrainageCapacity,
	}

	pred, err := s.predict(ctx, domain.PredictionRequest{WardName: ward.Name, Conditions: cond}, SourceLive)
	if err != nil {
		return LivePrediction{}, err
	}
	return LivePrediction{Prediction: pred, Conditions: cond, Weather: w}, nil
}
