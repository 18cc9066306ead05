package models

import (
	"errors"
	"testing"
)

func TestCropParamsKnownCrop(t *testing.T) {
	params, err := CropParams("wheat")
	if err != nil {
		t.Fatalf("CropParams failed: %v", err)
	}
	if params.BaseYield != 3500 {
		t.Errorf("wheat base yield = %f, want 3500", params.BaseYield)
	}
	if params.OptimalTemp() != 17.5 {
		t.Errorf("wheat optimal temp = %f, want 17.5", params.OptimalTemp())
	}
}

func TestCropParamsUnknownCrop(t *testing.T) {
	_, err := CropParams("dragonfruit")
	if !errors.Is(err, ErrUnsupportedCrop) {
		t.Fatalf("expected ErrUnsupportedCrop, got %v", err)
	}
}

func TestCropIDEncodingIsStable(t *testing.T) {
	// The encoding feeds a persisted model, so positions must not move.
	want := map[string]int{
		"wheat": 0, "corn": 1, "rice": 2, "soybean": 3,
		"potato": 4, "cotton": 5, "sugarcane": 6,
	}
	for crop, id := range want {
		got, err := CropID(crop)
		if err != nil {
			t.Fatalf("CropID(%q) failed: %v", crop, err)
		}
		if got != id {
			t.Errorf("CropID(%q) = %d, want %d", crop, got, id)
		}
	}

	if _, err := CropID("dragonfruit"); !errors.Is(err, ErrUnsupportedCrop) {
		t.Errorf("expected ErrUnsupportedCrop, got %v", err)
	}
}

func TestSupportedCropsReturnsCopy(t *testing.T) {
	crops := SupportedCrops()
	if len(crops) != 7 {
		t.Fatalf("got %d crops, want 7", len(crops))
	}
	crops[0] = "mutated"
	if SupportedCrops()[0] != "wheat" {
		t.Error("SupportedCrops exposed internal slice")
	}
}

func TestMonthlyWaterNeed(t *testing.T) {
	params, err := CropParams("rice")
	if err != nil {
		t.Fatalf("CropParams failed: %v", err)
	}
	// (1200+2000)/2 spread over four months.
	if got := params.MonthlyWaterNeed(); got != 400 {
		t.Errorf("rice monthly water need = %f, want 400", got)
	}
}
