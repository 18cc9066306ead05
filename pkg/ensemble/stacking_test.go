package ensemble

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/Chirayu-blip/nasa-agrosim/pkg/models"
)

// testConfig shrinks the tree counts so the full stacking pipeline stays
// fast under test.
func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Boost1.NEstimators = 15
	cfg.Boost1.MaxDepth = 4
	cfg.Forest.NEstimators = 10
	cfg.Forest.MaxDepth = 6
	cfg.Boost2.NEstimators = 15
	cfg.Boost2.MaxDepth = 4
	cfg.Folds = 3
	return cfg
}

// yieldRecords builds a synthetic dataset with a learnable climate-yield
// relationship.
func yieldRecords(n int, seed int64) []models.TrainingRecord {
	rng := rand.New(rand.NewSource(seed))
	crops := models.SupportedCrops()

	records := make([]models.TrainingRecord, n)
	for i := range records {
		crop := crops[rng.Intn(len(crops))]
		cropID, _ := models.CropID(crop)
		temp := 10 + rng.Float64()*25
		precip := 40 + rng.Float64()*200

		records[i] = models.TrainingRecord{
			Crop:           crop,
			CropID:         cropID,
			Year:           2020 + rng.Intn(5),
			Month:          1 + rng.Intn(12),
			Latitude:       -50 + rng.Float64()*100,
			Longitude:      -150 + rng.Float64()*300,
			TempAvg:        temp,
			TempMin:        temp - 6,
			TempMax:        temp + 6,
			Precipitation:  precip,
			Humidity:       40 + rng.Float64()*40,
			SolarRadiation: 12 + rng.Float64()*14,
			WindSpeed:      1 + rng.Float64()*8,
			SoilQuality:    0.4 + rng.Float64()*0.6,
			GrowingDays:    80 + rng.Intn(80),
			Yield:          2000 + 120*temp + 8*precip + rng.NormFloat64()*200,
		}
	}
	return records
}

func TestTrainRejectsInsufficientData(t *testing.T) {
	trainer := NewTrainer(testConfig())

	_, err := trainer.Train(context.Background(), yieldRecords(20, 1))
	if !errors.Is(err, ErrInsufficientData) {
		t.Fatalf("expected ErrInsufficientData, got %v", err)
	}
}

func TestTrainDropsInvalidRecordsBeforeCounting(t *testing.T) {
	records := yieldRecords(60, 2)
	for i := 20; i < 60; i++ {
		records[i].Yield = -1
	}

	trainer := NewTrainer(testConfig())
	_, err := trainer.Train(context.Background(), records)
	if !errors.Is(err, ErrInsufficientData) {
		t.Fatalf("expected ErrInsufficientData after filtering, got %v", err)
	}
}

func TestTrainProducesWorkingEnsemble(t *testing.T) {
	cfg := testConfig()
	cfg.SkipCV = true
	trainer := NewTrainer(cfg)

	records := yieldRecords(250, 3)
	result, err := trainer.Train(context.Background(), records)
	if err != nil {
		t.Fatalf("Train failed: %v", err)
	}

	if result.Metrics.R2 <= 0 {
		t.Errorf("holdout R² = %f, expected a positive fit on learnable data", result.Metrics.R2)
	}
	if result.Metrics.RMSE <= 0 || result.Metrics.MAE <= 0 {
		t.Errorf("error metrics not populated: RMSE=%f MAE=%f", result.Metrics.RMSE, result.Metrics.MAE)
	}

	x, err := result.Engineer.TransformOne(records[0])
	if err != nil {
		t.Fatalf("TransformOne failed: %v", err)
	}
	pred := result.Ensemble.Predict(x)
	if math.IsNaN(pred) || math.IsInf(pred, 0) {
		t.Fatalf("prediction is not finite: %f", pred)
	}
	if len(result.Ensemble.FeatureNames) != len(x) {
		t.Errorf("ensemble stores %d feature names, vector has %d", len(result.Ensemble.FeatureNames), len(x))
	}
}

func TestTrainIsDeterministic(t *testing.T) {
	cfg := testConfig()
	cfg.SkipCV = true
	records := yieldRecords(200, 4)

	a, err := NewTrainer(cfg).Train(context.Background(), records)
	if err != nil {
		t.Fatalf("first Train failed: %v", err)
	}
	b, err := NewTrainer(cfg).Train(context.Background(), records)
	if err != nil {
		t.Fatalf("second Train failed: %v", err)
	}

	if a.Metrics.R2 != b.Metrics.R2 || a.Metrics.RMSE != b.Metrics.RMSE {
		t.Errorf("metrics differ between identical runs: %+v vs %+v", a.Metrics, b.Metrics)
	}

	x, _ := a.Engineer.TransformOne(records[10])
	if a.Ensemble.Predict(x) != b.Ensemble.Predict(x) {
		t.Error("identical runs produced different predictions")
	}
}

func TestTrainPopulatesCrossValidation(t *testing.T) {
	cfg := testConfig()
	cfg.Boost1.NEstimators = 5
	cfg.Boost2.NEstimators = 5
	cfg.Forest.NEstimators = 5
	trainer := NewTrainer(cfg)

	result, err := trainer.Train(context.Background(), yieldRecords(150, 5))
	if err != nil {
		t.Fatalf("Train failed: %v", err)
	}

	if len(result.Metrics.CVScores) != cfg.Folds {
		t.Fatalf("got %d CV scores, want %d", len(result.Metrics.CVScores), cfg.Folds)
	}
	if result.Metrics.CVStd < 0 {
		t.Errorf("CV std = %f, want non-negative", result.Metrics.CVStd)
	}
}

func TestTrainHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	trainer := NewTrainer(testConfig())
	_, err := trainer.Train(ctx, yieldRecords(100, 6))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestFeatureImportancesSumToOne(t *testing.T) {
	cfg := testConfig()
	cfg.SkipCV = true

	result, err := NewTrainer(cfg).Train(context.Background(), yieldRecords(150, 7))
	if err != nil {
		t.Fatalf("Train failed: %v", err)
	}

	sum := 0.0
	for _, v := range result.Ensemble.FeatureImportances() {
		if v < 0 {
			t.Errorf("negative importance %f", v)
		}
		sum += v
	}
	if math.Abs(sum-1) > 1e-6 {
		t.Errorf("importances sum to %f, want 1", sum)
	}
}
