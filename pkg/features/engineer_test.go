package features

import (
	"errors"
	"math"
	"testing"

	"github.com/Chirayu-blip/nasa-agrosim/pkg/models"
)

func sampleRecords(t *testing.T) []models.TrainingRecord {
	t.Helper()
	base := models.TrainingRecord{
		Crop: "wheat", CropID: 0, Year: 2023, Month: 6,
		Latitude: 48.1, Longitude: 11.5,
		TempAvg: 18, TempMin: 11, TempMax: 25,
		Precipitation: 90, Humidity: 65, SolarRadiation: 19, WindSpeed: 3.5,
		SoilQuality: 0.7, GrowingDays: 110, Yield: 3400,
	}

	records := make([]models.TrainingRecord, 12)
	for i := range records {
		r := base
		r.Month = i + 1
		r.TempAvg += float64(i)
		r.TempMin += float64(i)
		r.TempMax += float64(i)
		r.Precipitation += float64(i * 10)
		records[i] = r
	}
	return records
}

func TestTransformBeforeFitFails(t *testing.T) {
	e := NewEngineer()
	if _, err := e.Transform(sampleRecords(t)); !errors.Is(err, ErrNotFitted) {
		t.Fatalf("expected ErrNotFitted, got %v", err)
	}
}

func TestFitTransformShape(t *testing.T) {
	e := NewEngineer()
	records := sampleRecords(t)

	X, err := e.FitTransform(records)
	if err != nil {
		t.Fatalf("FitTransform failed: %v", err)
	}
	if len(X) != len(records) {
		t.Fatalf("got %d rows, want %d", len(X), len(records))
	}
	want := len(SchemaNames())
	for i, row := range X {
		if len(row) != want {
			t.Fatalf("row %d has %d columns, want %d", i, len(row), want)
		}
	}
}

func TestTransformReusesFittedScalers(t *testing.T) {
	e := NewEngineer()
	records := sampleRecords(t)
	if _, err := e.FitTransform(records); err != nil {
		t.Fatalf("FitTransform failed: %v", err)
	}

	// A single out-of-distribution record must be scaled with the stored
	// parameters, not re-fitted statistics of its own.
	hot := records[0]
	hot.TempAvg = 45

	first, err := e.TransformOne(hot)
	if err != nil {
		t.Fatalf("TransformOne failed: %v", err)
	}
	second, err := e.TransformOne(hot)
	if err != nil {
		t.Fatalf("TransformOne failed: %v", err)
	}
	for j := range first {
		if first[j] != second[j] {
			t.Fatalf("column %d differs between identical transforms: %f vs %f", j, first[j], second[j])
		}
	}

	scaler := e.Scalers["temp_avg"]
	want := (45 - scaler.Mean) / (scaler.Std + epsilon)
	if math.Abs(first[0]-want) > 1e-12 {
		t.Errorf("temp_avg scaled to %f, want %f from stored scaler", first[0], want)
	}
}

func TestConstantColumnDoesNotBlowUp(t *testing.T) {
	records := sampleRecords(t)
	for i := range records {
		records[i].WindSpeed = 5
	}

	e := NewEngineer()
	X, err := e.FitTransform(records)
	if err != nil {
		t.Fatalf("FitTransform failed: %v", err)
	}
	for i, row := range X {
		for j, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				t.Fatalf("non-finite value at row %d col %d", i, j)
			}
		}
	}
}

func TestSchemaMismatchDetected(t *testing.T) {
	e := NewEngineer()
	records := sampleRecords(t)
	if err := e.Fit(records); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}

	// Simulate a model artifact fitted by an older binary with a
	// different feature layout.
	e.FeatureNames = append([]string{"legacy_feature"}, e.FeatureNames[1:]...)

	if _, err := e.Transform(records); !errors.Is(err, ErrSchemaMismatch) {
		t.Fatalf("expected ErrSchemaMismatch, got %v", err)
	}
}

func TestDerivedFeatureValues(t *testing.T) {
	r := models.TrainingRecord{
		Crop: "rice", CropID: 2, Month: 6,
		TempAvg: 35, TempMin: 28, TempMax: 42,
		Precipitation: 20, Humidity: 80, SolarRadiation: 22,
	}

	byName := make(map[string]float64)
	for _, spec := range schema {
		byName[spec.Name] = spec.Derive(r)
	}

	if got := byName["heat_stress_index"]; got != 5 {
		t.Errorf("heat_stress_index = %f, want 5", got)
	}
	if got := byName["cold_stress_index"]; got != 0 {
		t.Errorf("cold_stress_index = %f, want 0", got)
	}
	if got := byName["drought_stress"]; math.Abs(got-0.6) > 1e-12 {
		t.Errorf("drought_stress = %f, want 0.6", got)
	}
	if got := byName["diurnal_temp_range"]; got != 14 {
		t.Errorf("diurnal_temp_range = %f, want 14", got)
	}
	if got := byName["crop_id"]; got != 2 {
		t.Errorf("crop_id = %f, want 2", got)
	}
	if got := byName["photosynthetic_radiation"]; math.Abs(got-0.48*22) > 1e-12 {
		t.Errorf("photosynthetic_radiation = %f, want %f", got, 0.48*22)
	}
}

func TestDisplayNameFallsBackToRawName(t *testing.T) {
	if got := DisplayName("temp_avg"); got != "Average Temperature" {
		t.Errorf("DisplayName(temp_avg) = %q", got)
	}
	if got := DisplayName("mystery_feature"); got != "mystery_feature" {
		t.Errorf("unknown feature should pass through, got %q", got)
	}
}
