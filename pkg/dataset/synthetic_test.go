package dataset

import (
	"context"
	"testing"

	"github.com/Chirayu-blip/nasa-agrosim/pkg/models"
)

func TestGeneratorProducesValidRecords(t *testing.T) {
	g := NewSyntheticGenerator(42)
	records, err := g.Records(context.Background(), 500)
	if err != nil {
		t.Fatalf("Records failed: %v", err)
	}
	if len(records) != 500 {
		t.Fatalf("got %d records, want 500", len(records))
	}

	supported := make(map[string]bool)
	for _, crop := range models.SupportedCrops() {
		supported[crop] = true
	}

	for i, r := range records {
		if !supported[r.Crop] {
			t.Fatalf("record %d has unknown crop %q", i, r.Crop)
		}
		if r.Month < 1 || r.Month > 12 {
			t.Fatalf("record %d has month %d", i, r.Month)
		}
		if r.Humidity < 10 || r.Humidity > 100 {
			t.Fatalf("record %d has humidity %f outside [10,100]", i, r.Humidity)
		}
		if r.SolarRadiation < 5 || r.SolarRadiation > 30 {
			t.Fatalf("record %d has solar radiation %f outside [5,30]", i, r.SolarRadiation)
		}
		if r.Precipitation < 0 {
			t.Fatalf("record %d has negative precipitation", i)
		}
		if r.SoilQuality < 0 || r.SoilQuality > 1 {
			t.Fatalf("record %d has soil quality %f", i, r.SoilQuality)
		}
		if r.Yield < 0 {
			t.Fatalf("record %d has negative yield %f", i, r.Yield)
		}
	}

	// The bulk of the dataset should survive training validation.
	if valid := len(models.FilterValid(records)); valid < 400 {
		t.Errorf("only %d/500 records are valid for training", valid)
	}
}

func TestGeneratorIsDeterministic(t *testing.T) {
	a, err := NewSyntheticGenerator(7).Records(context.Background(), 50)
	if err != nil {
		t.Fatalf("Records failed: %v", err)
	}
	b, err := NewSyntheticGenerator(7).Records(context.Background(), 50)
	if err != nil {
		t.Fatalf("Records failed: %v", err)
	}

	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("record %d differs between identical seeds", i)
		}
	}
}

func TestGeneratorHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := NewSyntheticGenerator(1).Records(ctx, 10); err == nil {
		t.Fatal("expected cancellation error")
	}
}

func TestLocationRecordsCoverEveryMonth(t *testing.T) {
	g := NewSyntheticGenerator(42)
	records, err := g.LocationRecords(context.Background(), -33.9, 151.2, "wheat", 3)
	if err != nil {
		t.Fatalf("LocationRecords failed: %v", err)
	}

	// 3 full years plus the current one.
	if len(records) != 4*12 {
		t.Fatalf("got %d records, want %d", len(records), 4*12)
	}
	for _, r := range records {
		if r.Crop != "wheat" {
			t.Fatalf("unexpected crop %q", r.Crop)
		}
		if r.Latitude != -33.9 || r.Longitude != 151.2 {
			t.Fatal("location not carried into records")
		}
	}
}

func TestLocationRecordsRejectUnknownCrop(t *testing.T) {
	g := NewSyntheticGenerator(1)
	if _, err := g.LocationRecords(context.Background(), 10, 10, "dragonfruit", 1); err == nil {
		t.Fatal("expected error for unsupported crop")
	}
}

func TestExpectedYieldRespondsToStress(t *testing.T) {
	params, err := models.CropParams("wheat")
	if err != nil {
		t.Fatalf("CropParams failed: %v", err)
	}

	optimal := expectedYield(params, 17.5, 10, 25, 550, 60, 20, 115, 0.8)
	tooHot := expectedYield(params, 38, 30, 45, 550, 60, 20, 115, 0.8)
	drought := expectedYield(params, 17.5, 10, 25, 100, 60, 20, 115, 0.8)

	if tooHot >= optimal {
		t.Errorf("heat-stressed yield %f not below optimal %f", tooHot, optimal)
	}
	if drought >= optimal {
		t.Errorf("drought yield %f not below optimal %f", drought, optimal)
	}
	if optimal <= 0 {
		t.Errorf("optimal conditions produced non-positive yield %f", optimal)
	}
}

func TestZoneForLatitude(t *testing.T) {
	cases := []struct {
		latitude float64
		tempMean float64
	}{
		{0, 27},    // tropical
		{-30, 22},  // subtropical
		{48, 15},   // temperate
		{60, 10},   // continental
		{-70, 10},  // continental
	}
	for _, tc := range cases {
		if got := zoneForLatitude(tc.latitude); got.TempMean != tc.tempMean {
			t.Errorf("zoneForLatitude(%f).TempMean = %f, want %f", tc.latitude, got.TempMean, tc.tempMean)
		}
	}
}
