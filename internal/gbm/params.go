// Package gbm implements gradient-boosted regression trees with a
// squared-error objective, exact greedy split search, and a JSON artifact
// format that records the feature names the model was fit with.
package gbm

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Params controls tree growth and boosting. Defaults mirror the XGBoost
// regressor defaults.
type Params struct {
	NEstimators    int     `json:"n_estimators" yaml:"n_estimators"`
	MaxDepth       int     `json:"max_depth" yaml:"max_depth"`
	LearningRate   float64 `json:"learning_rate" yaml:"learning_rate"`
	Lambda         float64 `json:"lambda" yaml:"lambda"`
	Gamma          float64 `json:"gamma" yaml:"gamma"`
	MinChildWeight float64 `json:"min_child_weight" yaml:"min_child_weight"`
}

// DefaultParams returns the parameters used by the trainer when no flags
// override them.
func DefaultParams() Params {
	return Params{
		NEstimators:    100,
		MaxDepth:       6,
		LearningRate:   0.3,
		Lambda:         1,
		Gamma:          0,
		MinChildWeight: 1,
	}
}

// Validate reports the first out-of-range parameter.
func (p Params) Validate() error {
	switch {
	case p.NEstimators <= 0:
		return fmt.Errorf("n_estimators must be positive, got %d", p.NEstimators)
	case p.MaxDepth <= 0:
		return fmt.Errorf("max_depth must be positive, got %d", p.MaxDepth)
	case p.LearningRate <= 0 || p.LearningRate > 1:
		return fmt.Errorf("learning_rate must be in (0, 1], got %g", p.LearningRate)
	case p.Lambda < 0:
		return errors.New("lambda must not be negative")
	case p.Gamma < 0:
		return errors.New("gamma must not be negative")
	case p.MinChildWeight < 0:
		return errors.New("min_child_weight must not be negative")
	}
	return nil
}

// LoadParams reads a YAML parameter file. Keys left out keep their
// DefaultParams value; unknown keys are rejected.
func LoadParams(path string) (Params, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Params{}, fmt.Errorf("read params: %w", err)
	}
	return ParseParams(data)
}

// ParseParams decodes YAML parameters over DefaultParams and validates them.
func ParseParams(data []byte) (Params, error) {
	p := DefaultParams()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil && !errors.Is(err, io.EOF) {
		return Params{}, fmt.Errorf("parse params: %w", err)
	}
	if err := p.Validate(); err != nil {
		return Params{}, fmt.Errorf("invalid params: %w", err)
	}
	return p, nil
}
