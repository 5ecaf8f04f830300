package synth

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/couchcryptid/flood-risk-service/internal/domain"
)

// Header returns the dataset column names: the feature schema followed by the target.
func Header() []string {
	return append(domain.FeatureNames(), domain.TargetName)
}

// WriteCSV writes samples with a header row. Integer-kind features are written
// without a fractional part.
func WriteCSV(w io.Writer, samples []domain.Sample) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header()); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	row := make([]string, domain.FeatureCount+1)
	for i, s := range samples {
		v := s.Vector()
		for j, f := range domain.Features {
			row[j] = formatValue(v[j], f.Kind)
		}
		row[domain.FeatureCount] = strconv.FormatFloat(s.FloodProb, 'f', -1, 64)
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// ReadCSV parses a dataset written by WriteCSV. The header must match the
// schema exactly so columns cannot be silently reordered, and integer-kind
// columns must hold whole numbers.
func ReadCSV(r io.Reader) ([]domain.Sample, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = domain.FeatureCount + 1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("empty dataset")
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if err := domain.CheckFeatureNames(header[:domain.FeatureCount]); err != nil {
		return nil, fmt.Errorf("dataset header: %w", err)
	}
	if header[domain.FeatureCount] != domain.TargetName {
		return nil, fmt.Errorf("dataset header: expected target %q, got %q", domain.TargetName, header[domain.FeatureCount])
	}

	var samples []domain.Sample
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		var v domain.FeatureVector
		for j := range v {
			v[j], err = strconv.ParseFloat(rec[j], 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: column %s: %w", line, header[j], err)
			}
			if domain.Features[j].Kind == domain.KindInt && v[j] != math.Trunc(v[j]) {
				return nil, fmt.Errorf("line %d: column %s: %q is not an integer", line, header[j], rec[j])
			}
		}
		target, err := strconv.ParseFloat(rec[domain.FeatureCount], 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: column %s: %w", line, domain.TargetName, err)
		}

		samples = append(samples, domain.Sample{
			Conditions: domain.ConditionsFromVector(v),
			FloodProb:  target,
		})
	}
	return samples, nil
}

func formatValue(v float64, kind domain.FeatureKind) string {
	if kind == domain.KindInt {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
