package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeatureNames(t *testing.T) {
	assert.Equal(t, []string{
		"month", "temperature", "humidity", "pressure",
		"cloud_cover", "elevation", "siltation", "drainage_capacity",
	}, FeatureNames())
}

func TestCheckFeatureNames(t *testing.T) {
	t.Run("exact match", func(t *testing.T) {
		require.NoError(t, CheckFeatureNames(FeatureNames()))
	})

	t.Run("swapped columns", func(t *testing.T) {
		names := FeatureNames()
		names[6], names[7] = names[7], names[6]
		err := CheckFeatureNames(names)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "siltation")
	})

	t.Run("missing column", func(t *testing.T) {
		err := CheckFeatureNames(FeatureNames()[:7])
		require.Error(t, err)
		assert.Contains(t, err.Error(), "expected 8 features")
	})
}

// The vector must line up with the JSON field names, which are the schema
// names. Each field gets a distinct value so any transposition shows up.
func TestConditionsVectorMatchesSchema(t *testing.T) {
	c := Conditions{
		Month:            8,
		Temperature:      30,
		Humidity:         70,
		Pressure:         1008,
		CloudCover:       80,
		Elevation:        205,
		Siltation:        70,
		DrainageCapacity: 20,
	}

	data, err := json.Marshal(c)
	require.NoError(t, err)
	var byName map[string]float64
	require.NoError(t, json.Unmarshal(data, &byName))

	v := c.Vector()
	for i, f := range Features {
		assert.Equal(t, byName[f.Name], v[i], "column %d (%s)", i, f.Name)
	}
}

func TestConditionsFromVectorRoundTrip(t *testing.T) {
	c := Conditions{
		Month:            3,
		Temperature:      21.5,
		Humidity:         44.2,
		Pressure:         1011.3,
		CloudCover:       12,
		Elevation:        240,
		Siltation:        33,
		DrainageCapacity: 70,
	}
	assert.Equal(t, c, ConditionsFromVector(c.Vector()))
}

func TestPredictionRequestJSONFlattensConditions(t *testing.T) {
	data := []byte(`{"ward_name":"ITO","month":8,"temperature":30,"humidity":70,"pressure":1008,"cloud_cover":80,"elevation":205,"siltation":70,"drainage_capacity":20}`)

	var req PredictionRequest
	require.NoError(t, json.Unmarshal(data, &req))

	assert.Equal(t, "ITO", req.WardName)
	assert.Equal(t, 8, req.Month)
	assert.Equal(t, 20.0, req.DrainageCapacity)
}
