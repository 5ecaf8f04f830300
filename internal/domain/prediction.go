package domain

import (
	"time"
)

// Sample is one labeled synthetic training record.
type Sample struct {
	Conditions
	FloodProb float64 `json:"flood_prob"`
}

// PredictionRequest is a scoring request for a single ward.
type PredictionRequest struct {
	WardName string `json:"ward_name"`
	Conditions
}

// Trend is a coarse directional hint derived from fixed thresholds.
type Trend string

const (
	TrendStable  Trend = "stable"
	TrendRising  Trend = "rising"
	TrendFalling Trend = "falling"
)

// Confidence tiers reported alongside a probability.
const (
	ConfidenceLowRisk = 92
	ConfidenceDefault = 85
)

// Timeframe is the horizon every prediction refers to.
const Timeframe = "10-30 min"

// Prediction is the response returned for a PredictionRequest.
type Prediction struct {
	Ward        string `json:"ward"`
	Probability int    `json:"probability"`
	Confidence  int    `json:"confidence"`
	Trend       Trend  `json:"trend"`
	Timeframe   string `json:"timeframe"`
}

// Assess turns a raw model output into the display fields for ward.
// The output is clamped to [0,100] before truncation to an integer.
func Assess(ward string, raw float64, c Conditions) Prediction {
	p := ClampPercent(raw)

	confidence := ConfidenceDefault
	if p < 20 {
		confidence = ConfidenceLowRisk
	}

	trend := TrendStable
	switch {
	case c.DrainageCapacity < 40 && c.CloudCover > 50:
		trend = TrendRising
	case p < 10:
		trend = TrendFalling
	}

	return Prediction{
		Ward:        ward,
		Probability: int(p),
		Confidence:  confidence,
		Trend:       trend,
		Timeframe:   Timeframe,
	}
}

// PredictionEvent records a served prediction for downstream consumers.
type PredictionEvent struct {
	Request      PredictionRequest `json:"request"`
	Prediction   Prediction        `json:"prediction"`
	RawScore     float64           `json:"raw_score"`
	ModelVersion string            `json:"model_version"`
	Source       string            `json:"source"` // "request" or "live"
	PredictedAt  time.Time         `json:"predicted_at"`
}
