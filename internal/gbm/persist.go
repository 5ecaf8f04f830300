package gbm

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"
)

// FormatVersion identifies the artifact layout written by Save.
const FormatVersion = 1

// ErrInvalidModel is returned by Load when the artifact parses but cannot be
// used for prediction.
var ErrInvalidModel = errors.New("invalid model artifact")

type artifact struct {
	Format    int       `json:"format"`
	Version   string    `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	Objective string    `json:"objective"`
	Features  []string  `json:"features"`
	Params    Params    `json:"params"`
	BaseScore float64   `json:"base_score"`
	Trees     []tree    `json:"trees"`
}

const objective = "reg:squarederror"

// Save writes the model as JSON. The file is written to a temporary sibling
// and renamed so readers never observe a partial artifact.
func (m *Booster) Save(path string) error {
	data, err := json.Marshal(artifact{
		Format:    FormatVersion,
		Version:   m.version,
		CreatedAt: m.createdAt,
		Objective: objective,
		Features:  m.features,
		Params:    m.params,
		BaseScore: m.baseScore,
		Trees:     m.trees,
	})
	if err != nil {
		return fmt.Errorf("encode model: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create model dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".model-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write model: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close model: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename model: %w", err)
	}
	return nil
}

// Load reads a model written by Save.
func Load(path string) (*Booster, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model: %w", err)
	}
	return Decode(data)
}

// Decode parses and validates a JSON model artifact.
func Decode(data []byte) (*Booster, error) {
	var a artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("decode model: %w", err)
	}
	if err := a.validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidModel, err)
	}
	return &Booster{
		version:   a.Version,
		createdAt: a.CreatedAt,
		features:  a.Features,
		params:    a.Params,
		baseScore: a.BaseScore,
		trees:     a.Trees,
	}, nil
}

func (a artifact) validate() error {
	if a.Format != FormatVersion {
		return fmt.Errorf("unsupported format %d", a.Format)
	}
	if a.Objective != objective {
		return fmt.Errorf("unsupported objective %q", a.Objective)
	}
	if len(a.Features) == 0 {
		return errors.New("no features")
	}
	if len(a.Trees) == 0 {
		return errors.New("no trees")
	}
	if math.IsNaN(a.BaseScore) || math.IsInf(a.BaseScore, 0) {
		return errors.New("non-finite base score")
	}
	for i, t := range a.Trees {
		if err := t.validate(len(a.Features)); err != nil {
			return fmt.Errorf("tree %d: %w", i, err)
		}
	}
	return nil
}
