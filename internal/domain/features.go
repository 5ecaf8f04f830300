package domain

import "fmt"

// FeatureKind describes how a feature value is encoded.
type FeatureKind string

const (
	KindInt   FeatureKind = "int"
	KindFloat FeatureKind = "float"
)

// Feature is one named column of the model input.
type Feature struct {
	Name string
	Kind FeatureKind
}

// FeatureCount is the number of model input columns.
const FeatureCount = 8

// Features is the ordered input schema shared by the trainer and the server.
// Changing the order invalidates every persisted model.
var Features = [FeatureCount]Feature{
	{Name: "month", Kind: KindInt},
	{Name: "temperature", Kind: KindFloat},
	{Name: "humidity", Kind: KindFloat},
	{Name: "pressure", Kind: KindFloat},
	{Name: "cloud_cover", Kind: KindFloat},
	{Name: "elevation", Kind: KindFloat},
	{Name: "siltation", Kind: KindFloat},
	{Name: "drainage_capacity", Kind: KindFloat},
}

// TargetName is the column name of the regression target.
const TargetName = "flood_prob"

// FeatureVector is a model input in schema order.
type FeatureVector [FeatureCount]float64

// FeatureNames returns the schema column names in order.
func FeatureNames() []string {
	names := make([]string, FeatureCount)
	for i, f := range Features {
		names[i] = f.Name
	}
	return names
}

// CheckFeatureNames returns an error unless names matches the schema exactly,
// including order.
func CheckFeatureNames(names []string) error {
	if len(names) != FeatureCount {
		return fmt.Errorf("expected %d features, got %d", FeatureCount, len(names))
	}
	for i, f := range Features {
		if names[i] != f.Name {
			return fmt.Errorf("feature %d: expected %q, got %q", i, f.Name, names[i])
		}
	}
	return nil
}

// Conditions are the weather and terrain inputs for one prediction.
type Conditions struct {
	Month            int     `json:"month"`
	Temperature      float64 `json:"temperature"`
	Humidity         float64 `json:"humidity"`
	Pressure         float64 `json:"pressure"`
	CloudCover       float64 `json:"cloud_cover"`
	Elevation        float64 `json:"elevation"`
	Siltation        float64 `json:"siltation"`
	DrainageCapacity float64 `json:"drainage_capacity"`
}

// Vector lays the conditions out in schema order. This and ConditionsFromVector
// are the only places that know the column order.
func (c Conditions) Vector() FeatureVector {
	return FeatureVector{
		float64(c.Month),
		c.Temperature,
		c.Humidity,
		c.Pressure,
		c.CloudCover,
		c.Elevation,
		c.Siltation,
		c.DrainageCapacity,
	}
}

// ConditionsFromVector is the inverse of Conditions.Vector. The month is
// truncated to an integer.
func ConditionsFromVector(v FeatureVector) Conditions {
	return Conditions{
		Month:            int(v[0]),
		Temperature:      v[1],
		Humidity:         v[2],
		Pressure:         v[3],
		CloudCover:       v[4],
		Elevation:        v[5],
		Siltation:        v[6],
		DrainageCapacity: v[7],
	}
}
