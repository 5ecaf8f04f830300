// Command gendata writes a synthetic flood-risk dataset as CSV.
//
// Usage:
//
//	go run ./cmd/gendata -samples 5000 -seed 42 -out data/flood_samples.csv
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/couchcryptid/flood-risk-service/internal/domain"
	"github.com/couchcryptid/flood-risk-service/internal/synth"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	samples := flag.Int("samples", 5000, "number of samples to generate")
	seed := flag.Uint64("seed", 0, "generator seed (0 picks a random seed)")
	out := flag.String("out", "data/flood_samples.csv", "output CSV path")
	flag.Parse()

	if *samples <= 0 {
		flag.Usage()
		return fmt.Errorf("-samples must be positive, got %d", *samples)
	}

	gen := synth.New(*seed)
	data := gen.Generate(*samples)

	if err := os.MkdirAll(filepath.Dir(*out), 0o755); err != nil {
		return err
	}
	f, err := os.Create(*out)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if err := synth.WriteCSV(w, data); err != nil {
		return fmt.Errorf("write %s: %w", *out, err)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("write %s: %w", *out, err)
	}

	log.Printf("wrote %d samples to %s (seed %d)", len(data), *out, gen.Seed())
	printStats(data)
	return f.Close()
}

// printStats summarizes the label distribution per season so a dataset can be
// sanity checked at a glance.
func printStats(data []domain.Sample) {
	type bucket struct {
		n    int
		sum  float64
		high int
	}
	seasons := make(map[domain.Season]*bucket, len(domain.Seasons))
	for _, season := range domain.Seasons {
		seasons[season] = &bucket{}
	}

	for _, s := range data {
		b := seasons[domain.SeasonOf(s.Month)]
		b.n++
		b.sum += s.FloodProb
		if s.FloodProb >= 50 {
			b.high++
		}
	}

	fmt.Println("\n=== Label distribution ===")
	for _, name := range domain.Seasons {
		b := seasons[name]
		if b.n == 0 {
			fmt.Printf("  %-8s n=0\n", name)
			continue
		}
		fmt.Printf("  %-8s n=%-6d mean=%6.2f  >=50: %d\n", name, b.n, b.sum/float64(b.n), b.high)
	}
}
