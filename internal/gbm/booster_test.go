package gbm_test

import (
	"context"
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/flood-risk-service/internal/domain"
	"github.com/couchcryptid/flood-risk-service/internal/gbm"
	"github.com/couchcryptid/flood-risk-service/internal/synth"
)

// stepData is y = 10 for x < 5 and 20 otherwise, over x = 0..9.
func stepData() ([][]float64, []float64) {
	var x [][]float64
	var y []float64
	for i := range 10 {
		x = append(x, []float64{float64(i)})
		if i < 5 {
			y = append(y, 10)
		} else {
			y = append(y, 20)
		}
	}
	return x, y
}

func fitStep(t *testing.T) *gbm.Booster {
	t.Helper()
	x, y := stepData()
	m, err := gbm.Fit(context.Background(), []string{"x"}, x, y, gbm.DefaultParams(), nil)
	require.NoError(t, err)
	return m
}

func TestFit_StepFunction(t *testing.T) {
	m := fitStep(t)

	for _, tt := range []struct {
		x, want float64
	}{
		{0, 10}, {4, 10}, {4.4, 10}, {4.6, 20}, {5, 20}, {9, 20}, {-100, 10}, {100, 20},
	} {
		got, err := m.Predict([]float64{tt.x})
		require.NoError(t, err)
		assert.InDelta(t, tt.want, got, 1e-6, "x=%v", tt.x)
	}

	assert.Equal(t, 100, m.NumTrees())
	assert.Equal(t, []string{"x"}, m.Features())
	assert.NotEmpty(t, m.Version())
	assert.False(t, m.CreatedAt().IsZero())
	assert.Positive(t, m.SplitCounts()["x"])
}

func TestFit_LearnsRiskRules(t *testing.T) {
	train := synth.New(7).Generate(3000)
	test := synth.New(8).Generate(1000)

	x, y := synth.Design(train)
	m, err := gbm.Fit(context.Background(), domain.FeatureNames(), x, y, gbm.DefaultParams(), nil)
	require.NoError(t, err)

	tx, ty := synth.Design(test)
	score, err := gbm.Evaluate(m, tx, ty)
	require.NoError(t, err)
	assert.Greater(t, score.R2, 0.95)
	assert.Less(t, score.RMSE, 6.0)

	counts := m.SplitCounts()
	for _, name := range []string{"month", "cloud_cover", "siltation", "drainage_capacity", "elevation"} {
		assert.Positive(t, counts[name], name)
	}
}

func TestFit_Deterministic(t *testing.T) {
	x, y := synth.Design(synth.New(11).Generate(400))
	params := gbm.DefaultParams()
	params.NEstimators = 20

	a, err := gbm.Fit(context.Background(), domain.FeatureNames(), x, y, params, nil)
	require.NoError(t, err)
	b, err := gbm.Fit(context.Background(), domain.FeatureNames(), x, y, params, nil)
	require.NoError(t, err)

	for _, row := range x[:50] {
		pa, err := a.Predict(row)
		require.NoError(t, err)
		pb, err := b.Predict(row)
		require.NoError(t, err)
		assert.Equal(t, pa, pb)
	}
	assert.NotEqual(t, a.Version(), b.Version())
}

func TestFit_MaxDepthOneIsStumps(t *testing.T) {
	x, y := synth.Design(synth.New(3).Generate(300))
	params := gbm.DefaultParams()
	params.MaxDepth = 1
	params.NEstimators = 5

	m, err := gbm.Fit(context.Background(), domain.FeatureNames(), x, y, params, nil)
	require.NoError(t, err)

	total := 0
	for _, c := range m.SplitCounts() {
		total += c
	}
	assert.LessOrEqual(t, total, 5)
}

func TestFit_InputErrors(t *testing.T) {
	x, y := stepData()
	ctx := context.Background()

	tests := []struct {
		name     string
		features []string
		x        [][]float64
		y        []float64
		params   gbm.Params
		wantErr  string
	}{
		{name: "no features", features: nil, x: x, y: y, params: gbm.DefaultParams(), wantErr: "no feature names"},
		{name: "no rows", features: []string{"x"}, x: nil, y: nil, params: gbm.DefaultParams(), wantErr: "no training rows"},
		{name: "length mismatch", features: []string{"x"}, x: x, y: y[:3], params: gbm.DefaultParams(), wantErr: "10 rows but 3 targets"},
		{name: "ragged row", features: []string{"x", "z"}, x: x, y: y, params: gbm.DefaultParams(), wantErr: "row 0: expected 2 features"},
		{name: "NaN feature", features: []string{"x"}, x: [][]float64{{math.NaN()}}, y: []float64{1}, params: gbm.DefaultParams(), wantErr: "non-finite x"},
		{name: "NaN target", features: []string{"x"}, x: [][]float64{{1}}, y: []float64{math.NaN()}, params: gbm.DefaultParams(), wantErr: "non-finite target"},
		{name: "bad params", features: []string{"x"}, x: x, y: y, params: gbm.Params{}, wantErr: "invalid params"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := gbm.Fit(ctx, tt.features, tt.x, tt.y, tt.params, nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestFit_Cancelled(t *testing.T) {
	x, y := stepData()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := gbm.Fit(ctx, []string{"x"}, x, y, gbm.DefaultParams(), nil)
	require.ErrorIs(t, err, context.Canceled)
}

func TestPredict_WrongWidth(t *testing.T) {
	m := fitStep(t)
	_, err := m.Predict([]float64{1, 2})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected 1 features, got 2")
}

func TestSaveLoadRoundTrip(t *testing.T) {
	x, y := synth.Design(synth.New(5).Generate(300))
	params := gbm.DefaultParams()
	params.NEstimators = 15
	m, err := gbm.Fit(context.Background(), domain.FeatureNames(), x, y, params, nil)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "models", "flood.json")
	require.NoError(t, m.Save(path))

	loaded, err := gbm.Load(path)
	require.NoError(t, err)

	assert.Equal(t, m.Version(), loaded.Version())
	assert.True(t, m.CreatedAt().Equal(loaded.CreatedAt()))
	assert.Equal(t, m.Features(), loaded.Features())
	assert.Equal(t, m.Params(), loaded.Params())
	assert.Equal(t, m.NumTrees(), loaded.NumTrees())

	for _, row := range x {
		want, err := m.Predict(row)
		require.NoError(t, err)
		got, err := loaded.Predict(row)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestEvaluate(t *testing.T) {
	m := fitStep(t)
	x, y := stepData()

	score, err := gbm.Evaluate(m, x, y)
	require.NoError(t, err)
	assert.InDelta(t, 0, score.RMSE, 1e-6)
	assert.InDelta(t, 0, score.MAE, 1e-6)
	assert.InDelta(t, 1, score.R2, 1e-9)

	_, err = gbm.Evaluate(m, x, y[:2])
	require.Error(t, err)
}
