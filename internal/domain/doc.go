// Package domain models flood-risk inputs, the synthetic risk rules used to
// label training data, and the display fields derived from a model output.
//
// # Feature Schema
//
// The regressor consumes eight features in a fixed column order:
//
//	month, temperature, humidity, pressure, cloud_cover,
//	elevation, siltation, drainage_capacity
//
// The order is declared once in [Features]. Both the trainer (via [Sample])
// and the server (via [PredictionRequest]) build vectors through
// [Conditions.Vector], and the persisted model records the names it was fit
// with so a reordered schema is rejected at load time instead of silently
// producing wrong predictions.
//
// # Risk Rules
//
// Labels are a seasonal base risk plus rule-based additions:
//
//	Base:    2 for Nov–Feb (winter) | 50 for Jul–Sep (monsoon) | 15 otherwise
//
// Two mutually exclusive regimes are selected by cloud cover:
//
//	Active rain (cloud_cover > 40):
//	  +45 drainage_capacity < 40
//	  +25 siltation > 60
//	  +15 elevation < 210
//	Passive maintenance (5 < cloud_cover <= 40):
//	  +4  siltation > 20
//	  +2  drainage_capacity < 85
//	Clear (cloud_cover <= 5): no additions
//
// The thresholds are asymmetric on purpose; a retrained model only matches
// expected behavior if they are reproduced exactly. See [SeasonalBaseRisk]
// and [AccumulatedRisk].
//
// # Derived Fields
//
// The raw model output is clamped to [0,100] and truncated to an integer
// probability. Confidence is a two-tier heuristic (92 below 20%, else 85), not
// a calibrated statistic. Trend is a coarse hint evaluated in order:
//
//	rising   drainage_capacity < 40 and cloud_cover > 50
//	falling  probability < 10
//	stable   otherwise
//
// # Wards
//
// A ward is a named subdivision of Delhi. Prediction requests carry the ward
// name as an opaque label; the live prediction path also resolves it against
// the registry in [LookupWard] to find coordinates for a weather lookup.
package domain
