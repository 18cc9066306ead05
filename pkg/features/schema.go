package features

import (
	"math"

	"github.com/Chirayu-blip/nasa-agrosim/pkg/models"
)

// FeatureSpec declares one column of the engineered feature matrix: its
// name, how it is derived from a raw record, and whether the fitted
// mean/std scaling applies to it.
type FeatureSpec struct {
	Name   string
	Scaled bool
	Derive func(r models.TrainingRecord) float64
}

// schema is the fixed, ordered feature declaration. Fit and Transform both
// walk this list, so the column layout cannot drift between training and
// inference; the fitted state additionally records the names it was built
// with and rejects a mismatching schema.
var schema = []FeatureSpec{
	{Name: "temp_avg", Scaled: true, Derive: func(r models.TrainingRecord) float64 { return r.TempAvg }},
	{Name: "temp_min", Scaled: true, Derive: func(r models.TrainingRecord) float64 { return r.TempMin }},
	{Name: "temp_max", Scaled: true, Derive: func(r models.TrainingRecord) float64 { return r.TempMax }},
	{Name: "precipitation", Scaled: true, Derive: func(r models.TrainingRecord) float64 { return r.Precipitation }},
	{Name: "humidity", Scaled: true, Derive: func(r models.TrainingRecord) float64 { return r.Humidity }},
	{Name: "solar_radiation", Scaled: true, Derive: func(r models.TrainingRecord) float64 { return r.SolarRadiation }},
	{Name: "wind_speed", Scaled: true, Derive: func(r models.TrainingRecord) float64 { return r.WindSpeed }},

	{Name: "diurnal_temp_range", Scaled: true, Derive: func(r models.TrainingRecord) float64 { return r.TempMax - r.TempMin }},
	{Name: "heat_stress_index", Derive: func(r models.TrainingRecord) float64 { return math.Max(0, r.TempAvg-30) }},
	{Name: "cold_stress_index", Derive: func(r models.TrainingRecord) float64 { return math.Max(0, 5-r.TempAvg) }},

	{Name: "water_availability_index", Scaled: true, Derive: func(r models.TrainingRecord) float64 {
		return 0.7*r.Precipitation + 0.3*r.Humidity
	}},
	{Name: "drought_stress", Derive: func(r models.TrainingRecord) float64 {
		return math.Max(0, 50-r.Precipitation) / 50
	}},

	{Name: "gdd_base_10", Scaled: true, Derive: func(r models.TrainingRecord) float64 { return math.Max(0, r.TempAvg-10) }},
	{Name: "gdd_base_5", Scaled: true, Derive: func(r models.TrainingRecord) float64 { return math.Max(0, r.TempAvg-5) }},

	// Photosynthetically active radiation is roughly 48% of total solar
	// radiation.
	{Name: "photosynthetic_radiation", Scaled: true, Derive: func(r models.TrainingRecord) float64 {
		return 0.48 * r.SolarRadiation
	}},

	{Name: "temp_precip_interaction", Scaled: true, Derive: func(r models.TrainingRecord) float64 {
		return r.TempAvg * math.Log1p(r.Precipitation)
	}},
	// Tetens-style vapor pressure deficit approximation.
	{Name: "vapor_pressure_deficit", Scaled: true, Derive: func(r models.TrainingRecord) float64 {
		return (100 - r.Humidity) * 0.01 * math.Exp(17.27*r.TempAvg/(r.TempAvg+237.3))
	}},

	{Name: "crop_id", Derive: func(r models.TrainingRecord) float64 { return float64(r.CropID) }},

	// Latitude as sine/cosine of radians avoids a discontinuity at ±90°
	// and captures hemisphere structure.
	{Name: "lat_sin", Derive: func(r models.TrainingRecord) float64 { return math.Sin(r.Latitude * math.Pi / 180) }},
	{Name: "lat_cos", Derive: func(r models.TrainingRecord) float64 { return math.Cos(r.Latitude * math.Pi / 180) }},

	// Month on the unit circle keeps December adjacent to January.
	{Name: "month_sin", Derive: func(r models.TrainingRecord) float64 { return math.Sin(2 * math.Pi * float64(r.Month) / 12) }},
	{Name: "month_cos", Derive: func(r models.TrainingRecord) float64 { return math.Cos(2 * math.Pi * float64(r.Month) / 12) }},

	{Name: "soil_quality", Derive: func(r models.TrainingRecord) float64 { return r.SoilQuality }},
	{Name: "growing_days_norm", Scaled: true, Derive: func(r models.TrainingRecord) float64 { return float64(r.GrowingDays) }},
}

// SchemaNames returns the ordered feature names of the declared schema.
func SchemaNames() []string {
	names := make([]string, len(schema))
	for i, spec := range schema {
		names[i] = spec.Name
	}
	return names
}

var displayNames = map[string]string{
	"temp_avg":                 "Average Temperature",
	"temp_min":                 "Minimum Temperature",
	"temp_max":                 "Maximum Temperature",
	"precipitation":            "Precipitation",
	"humidity":                 "Humidity",
	"solar_radiation":          "Solar Radiation",
	"wind_speed":               "Wind Speed",
	"diurnal_temp_range":       "Day-Night Temp Range",
	"heat_stress_index":        "Heat Stress",
	"cold_stress_index":        "Cold Stress",
	"water_availability_index": "Water Availability",
	"drought_stress":           "Drought Stress",
	"gdd_base_10":              "Growing Degree Days",
	"gdd_base_5":               "GDD (Cold Hardy)",
	"photosynthetic_radiation": "Light for Photosynthesis",
	"temp_precip_interaction":  "Temp × Precipitation",
	"vapor_pressure_deficit":   "Evaporation Pressure",
	"crop_id":                  "Crop Type",
	"lat_sin":                  "Latitude (Sin)",
	"lat_cos":                  "Latitude (Cos)",
	"month_sin":                "Season (Sin)",
	"month_cos":                "Season (Cos)",
	"soil_quality":             "Soil Quality",
	"growing_days_norm":        "Growing Season Length",
}

// DisplayName returns a human-readable label for a feature name.
func DisplayName(feature string) string {
	if label, ok := displayNames[feature]; ok {
		return label
	}
	return feature
}
