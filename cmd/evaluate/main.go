// Command evaluate checks a trained model artifact before it is deployed: the
// feature schema, accuracy on a fresh seeded holdout, and the output
// invariants of the prediction path.
//
// Usage:
//
//	go run ./cmd/evaluate -model models/flood_prediction_model.json -seed 7
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"

	"github.com/couchcryptid/flood-risk-service/internal/domain"
	"github.com/couchcryptid/flood-risk-service/internal/gbm"
	"github.com/couchcryptid/flood-risk-service/internal/observability"
	"github.com/couchcryptid/flood-risk-service/internal/predictor"
	"github.com/couchcryptid/flood-risk-service/internal/synth"
)

// phase tracks pass/fail for an evaluation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

type thresholds struct {
	maxRMSE float64
	minR2   float64
}

func main() {
	modelPath := flag.String("model", "models/flood_prediction_model.json", "model artifact to evaluate")
	samples := flag.Int("samples", 2000, "holdout size")
	seed := flag.Uint64("seed", 7, "holdout generator seed (0 picks a random seed)")
	maxRMSE := flag.Float64("max-rmse", 5, "fail when holdout RMSE exceeds this")
	minR2 := flag.Float64("min-r2", 0.9, "fail when holdout R² is below this")
	flag.Parse()

	if *samples <= 0 {
		flag.Usage()
		os.Exit(1)
	}

	os.Exit(run(*modelPath, *samples, *seed, thresholds{maxRMSE: *maxRMSE, minR2: *minR2}))
}

func run(modelPath string, n int, seed uint64, limits thresholds) int {
	fmt.Println("=== Flood Model Evaluation ===")
	fmt.Println()

	model, err := gbm.Load(modelPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
		return 1
	}
	fmt.Printf("Model %s: %d trees, created %s\n", model.Version(), model.NumTrees(), model.CreatedAt().Format("2006-01-02 15:04:05Z07:00"))

	gen := synth.New(seed)
	holdout := gen.Generate(n)
	fmt.Printf("Holdout: %d samples, seed %d\n", len(holdout), gen.Seed())

	schema := validateSchema(model)
	if !schema.passed() {
		// Nothing downstream is meaningful with a mismatched layout.
		report([]*phase{schema})
		return 1
	}

	svc, err := predictor.New(model, nil, nil, slog.New(slog.NewTextHandler(io.Discard, nil)), observability.NewMetricsForTesting())
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
		return 1
	}

	phases := []*phase{
		schema,
		validateAccuracy(model, holdout, limits),
		validateDerivedFields(svc, holdout),
		validateOutOfRange(svc),
	}
	if report(phases) {
		return 0
	}
	return 1
}

func report(phases []*phase) bool {
	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			if i == 20 {
				fmt.Printf("  ... %d more\n", len(p.errors)-i)
				break
			}
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll checks passed.")
	} else {
		fmt.Println("\nEvaluation FAILED.")
	}
	return allPassed
}

func validateSchema(model *gbm.Booster) *phase {
	p := &phase{name: "Phase 1: Feature schema"}
	if err := domain.CheckFeatureNames(model.Features()); err != nil {
		p.errorf("%v", err)
	}
	return p
}

func validateAccuracy(model *gbm.Booster, holdout []domain.Sample, limits thresholds) *phase {
	p := &phase{name: "Phase 2: Holdout accuracy"}
	x, y := synth.Design(holdout)
	score, err := gbm.Evaluate(model, x, y)
	if err != nil {
		p.errorf("evaluate: %v", err)
		return p
	}
	fmt.Printf("Holdout RMSE %.3f, MAE %.3f, R² %.4f\n", score.RMSE, score.MAE, score.R2)

	if score.RMSE > limits.maxRMSE {
		p.errorf("RMSE %.3f exceeds %.3f", score.RMSE, limits.maxRMSE)
	}
	if score.R2 < limits.minR2 {
		p.errorf("R² %.4f below %.4f", score.R2, limits.minR2)
	}
	return p
}

// validateDerivedFields runs every holdout row through the serving path and
// checks the response invariants.
func validateDerivedFields(svc *predictor.Service, holdout []domain.Sample) *phase {
	p := &phase{name: "Phase 3: Prediction invariants"}
	ctx := context.Background()

	for i, s := range holdout {
		req := domain.PredictionRequest{WardName: fmt.Sprintf("holdout-%d", i), Conditions: s.Conditions}
		pred, err := svc.Predict(ctx, req)
		if err != nil {
			p.errorf("row %d: %v", i, err)
			continue
		}
		checkPrediction(p, fmt.Sprintf("row %d", i), req, pred)

		again, err := svc.Predict(ctx, req)
		if err != nil || again != pred {
			p.errorf("row %d: repeated prediction differs (%+v vs %+v)", i, pred, again)
		}
	}
	return p
}

// validateOutOfRange feeds inputs far outside the training distribution;
// the probability must still be clamped.
func validateOutOfRange(svc *predictor.Service) *phase {
	p := &phase{name: "Phase 4: Out-of-range inputs"}
	cases := map[string]domain.Conditions{
		"month 15":         {Month: 15, Temperature: 25, Humidity: 50, Pressure: 1012, CloudCover: 50, Elevation: 220, Siltation: 50, DrainageCapacity: 50},
		"negative terrain": {Month: 8, Temperature: 25, Humidity: 50, Pressure: 1012, CloudCover: 95, Elevation: -50, Siltation: -10, DrainageCapacity: -20},
		"extreme weather":  {Month: 7, Temperature: 1e6, Humidity: -1e6, Pressure: 0, CloudCover: 1e9, Elevation: 1e9, Siltation: 1e9, DrainageCapacity: 1e9},
		"all zero":         {},
		"max float":        {Month: math.MaxInt32, Temperature: math.MaxFloat64, Humidity: math.MaxFloat64, Pressure: math.MaxFloat64, CloudCover: math.MaxFloat64, Elevation: math.MaxFloat64, Siltation: math.MaxFloat64, DrainageCapacity: math.MaxFloat64},
	}
	for name, cond := range cases {
		req := domain.PredictionRequest{WardName: name, Conditions: cond}
		pred, err := svc.Predict(context.Background(), req)
		if err != nil {
			p.errorf("%s: %v", name, err)
			continue
		}
		checkPrediction(p, name, req, pred)
	}
	return p
}

func checkPrediction(p *phase, label string, req domain.PredictionRequest, pred domain.Prediction) {
	if pred.Probability < 0 || pred.Probability > 100 {
		p.errorf("%s: probability %d out of [0,100]", label, pred.Probability)
	}

	wantConfidence := domain.ConfidenceDefault
	if pred.Probability < 20 {
		wantConfidence = domain.ConfidenceLowRisk
	}
	if pred.Confidence != wantConfidence {
		p.errorf("%s: confidence %d with probability %d", label, pred.Confidence, pred.Probability)
	}

	rising := req.DrainageCapacity < 40 && req.CloudCover > 50
	switch {
	case rising && pred.Trend != domain.TrendRising:
		p.errorf("%s: trend %s, want rising", label, pred.Trend)
	case !rising && pred.Probability < 10 && pred.Trend != domain.TrendFalling:
		p.errorf("%s: trend %s, want falling", label, pred.Trend)
	case !rising && pred.Probability >= 10 && pred.Trend != domain.TrendStable:
		p.errorf("%s: trend %s, want stable", label, pred.Trend)
	}

	if pred.Timeframe != domain.Timeframe {
		p.errorf("%s: timeframe %q", label, pred.Timeframe)
	}
	if pred.Ward != req.WardName {
		p.errorf("%s: ward %q echoed as %q", label, req.WardName, pred.Ward)
	}
}
