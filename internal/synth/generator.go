// Package synth generates labeled synthetic flood-risk samples for offline
// training.
package synth

import (
	"math/rand/v2"

	"github.com/couchcryptid/flood-risk-service/internal/domain"
)

// Generator draws independent samples from the weather/terrain distributions
// and labels them with the domain risk rules plus unit Gaussian noise.
// A Generator is not safe for concurrent use.
type Generator struct {
	seed uint64
	rng  *rand.Rand
}

// New creates a Generator. A zero seed picks a random one; read it back with Seed
// to reproduce the run.
func New(seed uint64) *Generator {
	for seed == 0 {
		seed = rand.Uint64()
	}
	return &Generator{
		seed: seed,
		rng:  rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

// Seed returns the seed the generator was built with.
func (g *Generator) Seed() uint64 {
	return g.seed
}

// Generate returns n labeled samples.
func (g *Generator) Generate(n int) []domain.Sample {
	if n <= 0 {
		return nil
	}
	samples := make([]domain.Sample, n)
	for i := range samples {
		samples[i] = g.sample()
	}
	return samples
}

func (g *Generator) sample() domain.Sample {
	month := g.intRange(1, 13)

	c := domain.Conditions{
		Month:       month,
		Temperature: g.normal(25, 10),
		Humidity:    g.normal(50, 15),
		Pressure:    g.normal(1012, 5),
		CloudCover:  float64(g.intRange(0, 100)),
		Elevation:   float64(g.intRange(200, 250)),
		Siltation:   float64(g.intRange(0, 100)),
	}
	drainage := 100 - c.Siltation + float64(g.intRange(-5, 5))
	c.DrainageCapacity = domain.ClampPercent(drainage)

	label := domain.RuleRisk(c) + g.normal(0, 1)

	return domain.Sample{
		Conditions: c,
		FloodProb:  domain.ClampPercent(label),
	}
}

// intRange draws uniformly from [lo, hi).
func (g *Generator) intRange(lo, hi int) int {
	return lo + g.rng.IntN(hi-lo)
}

func (g *Generator) normal(mean, stddev float64) float64 {
	return mean + stddev*g.rng.NormFloat64()
}

// Design splits samples into a row-major feature matrix in schema order and
// the target vector.
func Design(samples []domain.Sample) ([][]float64, []float64) {
	x := make([][]float64, len(samples))
	y := make([]float64, len(samples))
	for i, s := range samples {
		v := s.Vector()
		x[i] = v[:]
		y[i] = s.FloodProb
	}
	return x, y
}
