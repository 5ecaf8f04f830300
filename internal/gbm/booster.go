package gbm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
)

// Booster is a fitted ensemble. It is immutable after Fit or Load and safe
// for concurrent Predict calls.
type Booster struct {
	version   string
	createdAt time.Time
	features  []string
	params    Params
	baseScore float64
	trees     []tree
}

// Fit trains a booster on the row-major matrix x with targets y. features
// names the columns of x in order and is stored with the model.
func Fit(ctx context.Context, features []string, x [][]float64, y []float64, params Params, logger *slog.Logger) (*Booster, error) {
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("invalid params: %w", err)
	}
	if err := checkTrainingData(features, x, y); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	n := len(y)
	base := mean(y)
	pred := make([]float64, n)
	for i := range pred {
		pred[i] = base
	}

	b := &treeBuilder{
		params:  params,
		x:       x,
		sorted:  presort(x, len(features)),
		grad:    make([]float64, n),
		hess:    make([]float64, n),
		rowNode: make([]int, n),
	}

	trees := make([]tree, 0, params.NEstimators)
	for round := range params.NEstimators {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("fit cancelled after %d rounds: %w", round, err)
		}

		// Squared error: gradient is the residual, hessian is constant.
		for i := range y {
			b.grad[i] = pred[i] - y[i]
			b.hess[i] = 1
		}

		t := b.build()
		for i := range pred {
			pred[i] += b.leafValue(i)
		}
		trees = append(trees, t)

		if (round+1)%10 == 0 || round+1 == params.NEstimators {
			logger.Debug("boosting round complete",
				"round", round+1,
				"nodes", len(t.Nodes),
				"train_rmse", rmse(pred, y),
			)
		}
	}

	return &Booster{
		version:   uuid.NewString(),
		createdAt: time.Now().UTC(),
		features:  append([]string(nil), features...),
		params:    params,
		baseScore: base,
		trees:     trees,
	}, nil
}

// Predict scores one row laid out in the model's feature order.
func (m *Booster) Predict(x []float64) (float64, error) {
	if len(x) != len(m.features) {
		return 0, fmt.Errorf("expected %d features, got %d", len(m.features), len(x))
	}
	out := m.baseScore
	for _, t := range m.trees {
		out += t.predict(x)
	}
	return out, nil
}

// Features returns the column names the model was fit with, in order.
func (m *Booster) Features() []string {
	return append([]string(nil), m.features...)
}

// Version is the unique identifier assigned when the model was fit.
func (m *Booster) Version() string { return m.version }

// CreatedAt is when the model was fit.
func (m *Booster) CreatedAt() time.Time { return m.createdAt }

// Params returns the parameters the model was fit with.
func (m *Booster) Params() Params { return m.params }

// NumTrees returns the ensemble size.
func (m *Booster) NumTrees() int { return len(m.trees) }

// SplitCounts returns how often each feature is used as a split across all
// trees, a rough importance measure.
func (m *Booster) SplitCounts() map[string]int {
	counts := make(map[string]int, len(m.features))
	for _, name := range m.features {
		counts[name] = 0
	}
	for _, t := range m.trees {
		for _, n := range t.Nodes {
			if !n.isLeaf() {
				counts[m.features[n.Feature]]++
			}
		}
	}
	return counts
}

func checkTrainingData(features []string, x [][]float64, y []float64) error {
	if len(features) == 0 {
		return errors.New("no feature names")
	}
	if len(x) == 0 {
		return errors.New("no training rows")
	}
	if len(x) != len(y) {
		return fmt.Errorf("%d rows but %d targets", len(x), len(y))
	}
	for i, row := range x {
		if len(row) != len(features) {
			return fmt.Errorf("row %d: expected %d features, got %d", i, len(features), len(row))
		}
		for j, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("row %d: non-finite %s", i, features[j])
			}
		}
		if math.IsNaN(y[i]) || math.IsInf(y[i], 0) {
			return fmt.Errorf("row %d: non-finite target", i)
		}
	}
	return nil
}

// presort returns, per feature, row indices ordered by value with ties broken
// by row index so training is deterministic.
func presort(x [][]float64, numFeatures int) [][]int {
	sorted := make([][]int, numFeatures)
	for f := range sorted {
		idx := make([]int, len(x))
		for i := range idx {
			idx[i] = i
		}
		sort.SliceStable(idx, func(a, b int) bool {
			return x[idx[a]][f] < x[idx[b]][f]
		})
		sorted[f] = idx
	}
	return sorted
}

func mean(v []float64) float64 {
	var sum float64
	for _, x := range v {
		sum += x
	}
	return sum / float64(len(v))
}

func rmse(pred, y []float64) float64 {
	var sum float64
	for i := range y {
		d := pred[i] - y[i]
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(y)))
}
