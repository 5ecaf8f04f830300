package gbm

import (
	"fmt"
	"math"
)

// Score summarizes regression quality on a labeled set.
type Score struct {
	RMSE float64 `json:"rmse"`
	MAE  float64 `json:"mae"`
	R2   float64 `json:"r2"`
}

// Evaluate scores m on rows x with targets y.
func Evaluate(m *Booster, x [][]float64, y []float64) (Score, error) {
	if len(x) == 0 || len(x) != len(y) {
		return Score{}, fmt.Errorf("evaluate: %d rows, %d targets", len(x), len(y))
	}

	pred := make([]float64, len(x))
	for i, row := range x {
		p, err := m.Predict(row)
		if err != nil {
			return Score{}, fmt.Errorf("row %d: %w", i, err)
		}
		pred[i] = p
	}

	var absSum, resSum, totSum float64
	avg := mean(y)
	for i := range y {
		d := pred[i] - y[i]
		absSum += math.Abs(d)
		resSum += d * d
		totSum += (y[i] - avg) * (y[i] - avg)
	}

	n := float64(len(y))
	s := Score{
		RMSE: math.Sqrt(resSum / n),
		MAE:  absSum / n,
	}
	if totSum > 0 {
		s.R2 = 1 - resSum/totSum
	}
	return s, nil
}
