package domain

import "math"

// Seasonal base risk, in percent.
const (
	dryBaseRisk     = 2
	monsoonBaseRisk = 50
	defaultBaseRisk = 15
)

// Season groups calendar months by their flood exposure.
type Season string

const (
	SeasonDry     Season = "dry"
	SeasonMonsoon Season = "monsoon"
	SeasonOther   Season = "other"
)

// Seasons lists every season in reporting order.
var Seasons = []Season{SeasonDry, SeasonMonsoon, SeasonOther}

// SeasonOf classifies a calendar month. Months outside 1-12 fall in SeasonOther.
func SeasonOf(month int) Season {
	switch month {
	case 11, 12, 1, 2:
		return SeasonDry
	case 7, 8, 9:
		return SeasonMonsoon
	default:
		return SeasonOther
	}
}

// SeasonalBaseRisk returns the starting risk score for a calendar month.
func SeasonalBaseRisk(month int) float64 {
	switch SeasonOf(month) {
	case SeasonDry:
		return dryBaseRisk
	case SeasonMonsoon:
		return monsoonBaseRisk
	default:
		return defaultBaseRisk
	}
}

// AccumulatedRisk returns the rule-based additions for the active-rain and
// passive-maintenance regimes. The regimes are mutually exclusive and selected
// by cloud cover; additions within a regime stack.
func AccumulatedRisk(cloudCover, siltation, drainageCapacity, elevation float64) float64 {
	var risk float64
	switch {
	case cloudCover > 40:
		if drainageCapacity < 40 {
			risk += 45
		}
		if siltation > 60 {
			risk += 25
		}
		if elevation < 210 {
			risk += 15
		}
	case cloudCover > 5:
		if siltation > 20 {
			risk += 4
		}
		if drainageCapacity < 85 {
			risk += 2
		}
	}
	return risk
}

// RuleRisk is the noiseless label for a set of conditions.
func RuleRisk(c Conditions) float64 {
	return SeasonalBaseRisk(c.Month) + AccumulatedRisk(c.CloudCover, c.Siltation, c.DrainageCapacity, c.Elevation)
}

// ClampPercent limits v to [0,100]. NaN maps to 0.
func ClampPercent(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(100, v))
}
