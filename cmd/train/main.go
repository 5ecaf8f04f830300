// Command train fits the flood-risk regressor and writes the model artifact
// the server loads at startup.
//
// Usage:
//
//	go run ./cmd/train -samples 5000 -seed 42 -out models/flood_prediction_model.json
//
// With -data the samples are read from a CSV produced by cmd/gendata instead
// of being generated. -params reads boosting parameters from a YAML file:
//
//	n_estimators: 200
//	max_depth: 4
//	learning_rate: 0.1
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/couchcryptid/flood-risk-service/internal/domain"
	"github.com/couchcryptid/flood-risk-service/internal/gbm"
	"github.com/couchcryptid/flood-risk-service/internal/synth"
)

type options struct {
	paramsFile string
	samples    int
	seed       uint64
	data       string
	out        string
	params     gbm.Params
	verbose    bool
}

func main() {
	opts := options{params: gbm.DefaultParams()}
	flag.StringVar(&opts.paramsFile, "params", "", "YAML file of boosting parameters; explicit flags take precedence")
	flag.IntVar(&opts.samples, "samples", 5000, "number of synthetic samples to generate")
	flag.Uint64Var(&opts.seed, "seed", 0, "generator seed (0 picks a random seed)")
	flag.StringVar(&opts.data, "data", "", "train on this CSV instead of generating samples")
	flag.StringVar(&opts.out, "out", "models/flood_prediction_model.json", "output path for the model artifact")
	flag.IntVar(&opts.params.NEstimators, "estimators", opts.params.NEstimators, "number of boosting rounds")
	flag.IntVar(&opts.params.MaxDepth, "max-depth", opts.params.MaxDepth, "maximum tree depth")
	flag.Float64Var(&opts.params.LearningRate, "learning-rate", opts.params.LearningRate, "shrinkage applied to each tree")
	flag.BoolVar(&opts.verbose, "v", false, "log every tenth boosting round")
	flag.Parse()

	level := slog.LevelInfo
	if opts.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if opts.paramsFile != "" {
		if err := applyParamsFile(&opts); err != nil {
			logger.Error("load params", "path", opts.paramsFile, "error", err)
			os.Exit(1)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts, logger); err != nil {
		logger.Error("training failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options, logger *slog.Logger) error {
	samples, err := loadSamples(opts, logger)
	if err != nil {
		return err
	}
	x, y := synth.Design(samples)

	start := time.Now()
	model, err := gbm.Fit(ctx, domain.FeatureNames(), x, y, opts.params, logger)
	if err != nil {
		return err
	}

	score, err := gbm.Evaluate(model, x, y)
	if err != nil {
		return fmt.Errorf("score training set: %w", err)
	}
	logger.Info("model fit",
		"version", model.Version(),
		"trees", model.NumTrees(),
		"duration", time.Since(start).Round(time.Millisecond),
		"train_rmse", score.RMSE,
		"train_mae", score.MAE,
		"train_r2", score.R2,
	)
	logSplitCounts(logger, model.SplitCounts())

	if err := model.Save(opts.out); err != nil {
		return err
	}
	logger.Info("model saved", "path", opts.out)
	return nil
}

func loadSamples(opts options, logger *slog.Logger) ([]domain.Sample, error) {
	if opts.data != "" {
		f, err := os.Open(opts.data)
		if err != nil {
			return nil, fmt.Errorf("open dataset: %w", err)
		}
		defer f.Close()

		samples, err := synth.ReadCSV(f)
		if err != nil {
			return nil, fmt.Errorf("read dataset %s: %w", opts.data, err)
		}
		logger.Info("dataset loaded", "path", opts.data, "samples", len(samples))
		return samples, nil
	}

	if opts.samples <= 0 {
		return nil, fmt.Errorf("-samples must be positive, got %d", opts.samples)
	}
	gen := synth.New(opts.seed)
	logger.Info("generating samples", "samples", opts.samples, "seed", gen.Seed())
	return gen.Generate(opts.samples), nil
}

// applyParamsFile loads the parameter file and re-applies any boosting flags
// given on the command line on top of it.
func applyParamsFile(opts *options) error {
	fromFlags := opts.params
	p, err := gbm.LoadParams(opts.paramsFile)
	if err != nil {
		return err
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "estimators":
			p.NEstimators = fromFlags.NEstimators
		case "max-depth":
			p.MaxDepth = fromFlags.MaxDepth
		case "learning-rate":
			p.LearningRate = fromFlags.LearningRate
		}
	})
	opts.params = p
	return nil
}

// logSplitCounts reports features by how often the ensemble splits on them.
func logSplitCounts(logger *slog.Logger, counts map[string]int) {
	names := domain.FeatureNames()
	slices.SortStableFunc(names, func(a, b string) int { return counts[b] - counts[a] })

	attrs := make([]any, 0, 2*len(names))
	for _, name := range names {
		attrs = append(attrs, name, counts[name])
	}
	logger.Info("split counts", attrs...)
}
