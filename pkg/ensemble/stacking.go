package ensemble

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"

	"github.com/Chirayu-blip/nasa-agrosim/pkg/features"
	"github.com/Chirayu-blip/nasa-agrosim/pkg/models"
)

// ErrInsufficientData is returned when the training set is too small for
// meaningful folds and splits.
var ErrInsufficientData = errors.New("insufficient training data")

// ErrTrainingFailed wraps numerical failures inside a base learner. These
// are not retried; the cause is attached for diagnosis.
var ErrTrainingFailed = errors.New("ensemble training failed")

// Config holds all training hyperparameters. The defaults are tuned for
// agricultural yield data; tests shrink the tree counts.
type Config struct {
	Seed         int64
	TestFraction float64
	Folds        int
	MinSamples   int
	Boost1       BoostParams
	Forest       ForestParams
	Boost2       BoostParams
	MetaAlphas   []float64
	SkipCV       bool // skip the k-fold stability estimate (CLI fast path)
}

// DefaultConfig returns the production training configuration.
func DefaultConfig() Config {
	return Config{
		Seed:         42,
		TestFraction: 0.2,
		Folds:        5,
		MinSamples:   50,
		Boost1: BoostParams{
			NEstimators:     200,
			MaxDepth:        8,
			LearningRate:    0.05,
			Subsample:       0.8,
			ColsampleByTree: 0.8,
			MinChildWeight:  3,
			RegAlpha:        0.1,
			RegLambda:       1.0,
		},
		Forest: ForestParams{
			NEstimators:     150,
			MaxDepth:        12,
			MinSamplesSplit: 5,
			MinSamplesLeaf:  2,
		},
		Boost2: BoostParams{
			NEstimators:     200,
			MaxDepth:        10,
			LearningRate:    0.05,
			Subsample:       0.8,
			ColsampleByTree: 0.8,
			MinChildWeight:  1,
			RegAlpha:        0.1,
			RegLambda:       1.0,
			MaxLeaves:       31,
		},
		MetaAlphas: []float64{0.1, 1.0, 10.0},
	}
}

// Ensemble is the trained stacked model: three diverse base regressors
// blended by a ridge meta-learner that was fitted on out-of-fold base
// predictions.
type Ensemble struct {
	Boost1       *GradientBoosting `json:"boost1"`
	Forest       *RandomForest     `json:"forest"`
	Boost2       *GradientBoosting `json:"boost2"`
	Meta         *Ridge            `json:"meta"`
	FeatureNames []string          `json:"feature_names"`
}

// BasePredictions returns the three base models' raw predictions for one
// feature vector. They feed the uncertainty estimate independently of the
// meta-model.
func (e *Ensemble) BasePredictions(x []float64) [3]float64 {
	return [3]float64{
		e.Boost1.Predict(x),
		e.Forest.Predict(x),
		e.Boost2.Predict(x),
	}
}

// Predict returns the meta-ensemble prediction for one feature vector.
func (e *Ensemble) Predict(x []float64) float64 {
	base := e.BasePredictions(x)
	return e.Meta.Predict(base[:])
}

// FeatureImportances averages the three base models' normalized
// importances with equal weight, so the result sums to 1.
func (e *Ensemble) FeatureImportances() []float64 {
	b1 := e.Boost1.FeatureImportances()
	rf := e.Forest.FeatureImportances()
	b2 := e.Boost2.FeatureImportances()

	avg := make([]float64, len(b1))
	for i := range avg {
		avg[i] = (b1[i] + rf[i] + b2[i]) / 3
	}
	return avg
}

// Result bundles everything a training run produces.
type Result struct {
	Ensemble *Ensemble
	Engineer *features.Engineer
	Metrics  *models.ModelMetrics
}

// Trainer fits the stacked ensemble from raw records.
type Trainer struct {
	cfg Config
}

// NewTrainer creates a trainer with the given configuration.
func NewTrainer(cfg Config) *Trainer {
	return &Trainer{cfg: cfg}
}

// Train engineers features, fits the stacked ensemble on an 80/20 split,
// and evaluates it: holdout R²/RMSE/MAE/MAPE plus a separate k-fold
// cross-validation stability estimate over the full dataset.
//
// The context is checked between base-model fits; cancellation is
// best-effort since individual learners cannot be interrupted mid-fit.
func (t *Trainer) Train(ctx context.Context, records []models.TrainingRecord) (*Result, error) {
	records = models.FilterValid(records)
	if len(records) < t.cfg.MinSamples {
		return nil, fmt.Errorf("%w: %d valid rows, need at least %d",
			ErrInsufficientData, len(records), t.cfg.MinSamples)
	}

	engineer := features.NewEngineer()
	X, err := engineer.FitTransform(records)
	if err != nil {
		return nil, fmt.Errorf("feature engineering failed: %w", err)
	}
	y := make([]float64, len(records))
	for i, r := range records {
		y[i] = r.Yield
	}

	log.Printf("Training stacked ensemble on %d rows, %d features", len(X), len(X[0]))

	trainRows, testRows := trainTestSplit(len(X), t.cfg.TestFraction, t.cfg.Seed)
	trainX, trainY := selectRows(X, y, trainRows)
	testX, testY := selectRows(X, y, testRows)

	ensemble, err := t.fitStack(ctx, trainX, trainY, t.cfg.Seed)
	if err != nil {
		return nil, err
	}
	ensemble.FeatureNames = engineer.FeatureNames

	preds := make([]float64, len(testX))
	for i, row := range testX {
		preds[i] = ensemble.Predict(row)
	}

	metrics := &models.ModelMetrics{
		R2:   rsquared(testY, preds),
		RMSE: rmse(testY, preds),
		MAE:  mae(testY, preds),
		MAPE: mape(testY, preds),
	}

	if !t.cfg.SkipCV {
		scores, err := t.crossValidate(ctx, X, y)
		if err != nil {
			return nil, err
		}
		metrics.CVScores = scores
		metrics.CVMean = mean(scores)
		metrics.CVStd = stddev(scores)
	}

	log.Printf("✓ Ensemble trained: R²=%.4f RMSE=%.2f MAE=%.2f MAPE=%.2f%% CV=%.4f±%.4f",
		metrics.R2, metrics.RMSE, metrics.MAE, metrics.MAPE, metrics.CVMean, metrics.CVStd)

	return &Result{Ensemble: ensemble, Engineer: engineer, Metrics: metrics}, nil
}

// fitStack fits the three base models plus the ridge meta-learner. The
// meta-learner trains on out-of-fold base predictions so the blend
// weights are learned without in-sample leakage.
func (t *Trainer) fitStack(ctx context.Context, X [][]float64, y []float64, seed int64) (*Ensemble, error) {
	oof := make([][]float64, len(X))
	for i := range oof {
		oof[i] = make([]float64, 3)
	}

	for _, f := range kfoldSplit(len(X), t.cfg.Folds, seed) {
		foldX, foldY := selectRows(X, y, f.train)

		foldModels, err := t.fitBaseModels(ctx, foldX, foldY, seed)
		if err != nil {
			return nil, err
		}

		for _, idx := range f.test {
			oof[idx][0] = foldModels.boost1.Predict(X[idx])
			oof[idx][1] = foldModels.forest.Predict(X[idx])
			oof[idx][2] = foldModels.boost2.Predict(X[idx])
		}
	}

	final, err := t.fitBaseModels(ctx, X, y, seed)
	if err != nil {
		return nil, err
	}

	meta, err := fitRidgeCV(oof, y, t.cfg.MetaAlphas, t.cfg.Folds, seed)
	if err != nil {
		return nil, fmt.Errorf("%w: meta-learner: %s", ErrTrainingFailed, err)
	}

	return &Ensemble{
		Boost1: final.boost1,
		Forest: final.forest,
		Boost2: final.boost2,
		Meta:   meta,
	}, nil
}

type baseModels struct {
	boost1 *GradientBoosting
	forest *RandomForest
	boost2 *GradientBoosting
}

// fitBaseModels trains the three base regressors, checking for
// cancellation at each fit boundary.
func (t *Trainer) fitBaseModels(ctx context.Context, X [][]float64, y []float64, seed int64) (*baseModels, error) {
	rng := rand.New(rand.NewSource(seed))

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	boost1 := NewGradientBoosting(t.cfg.Boost1)
	if err := boost1.Fit(X, y, rng); err != nil {
		return nil, fmt.Errorf("%w: boosted trees #1: %s", ErrTrainingFailed, err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	forest := NewRandomForest(t.cfg.Forest)
	if err := forest.Fit(X, y, rng); err != nil {
		return nil, fmt.Errorf("%w: random forest: %s", ErrTrainingFailed, err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	boost2 := NewGradientBoosting(t.cfg.Boost2)
	if err := boost2.Fit(X, y, rng); err != nil {
		return nil, fmt.Errorf("%w: boosted trees #2: %s", ErrTrainingFailed, err)
	}

	return &baseModels{boost1: boost1, forest: forest, boost2: boost2}, nil
}

// crossValidate retrains the full stacking pipeline per fold and scores
// each fold by R². This is deliberately separate from the holdout
// metrics: the holdout is a single-shot estimate, CV measures stability.
func (t *Trainer) crossValidate(ctx context.Context, X [][]float64, y []float64) ([]float64, error) {
	scores := make([]float64, 0, t.cfg.Folds)

	for i, f := range kfoldSplit(len(X), t.cfg.Folds, t.cfg.Seed) {
		foldX, foldY := selectRows(X, y, f.train)

		// Offset the seed per fold so folds are independent yet
		// reproducible.
		ens, err := t.fitStack(ctx, foldX, foldY, t.cfg.Seed+int64(i)+1)
		if err != nil {
			return nil, err
		}

		testX, testY := selectRows(X, y, f.test)
		preds := make([]float64, len(testX))
		for j, row := range testX {
			preds[j] = ens.Predict(row)
		}
		scores = append(scores, rsquared(testY, preds))
	}

	return scores, nil
}
