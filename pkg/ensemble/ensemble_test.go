package ensemble

import (
	"math"
	"math/rand"
	"testing"
)

// syntheticXY builds a noisy nonlinear regression problem that all three
// base learners can make progress on.
func syntheticXY(n int, seed int64) ([][]float64, []float64) {
	rng := rand.New(rand.NewSource(seed))
	X := make([][]float64, n)
	y := make([]float64, n)
	for i := range X {
		a := rng.Float64() * 10
		b := rng.Float64() * 10
		c := rng.Float64() * 10
		X[i] = []float64{a, b, c}
		y[i] = 3*a + a*b/5 - math.Pow(c-5, 2) + rng.NormFloat64()
	}
	return X, y
}

func trainingRMSE(t *testing.T, predict func([]float64) float64, X [][]float64, y []float64) float64 {
	t.Helper()
	preds := make([]float64, len(X))
	for i, row := range X {
		preds[i] = predict(row)
	}
	return rmse(y, preds)
}

func TestGradientBoostingReducesTrainingError(t *testing.T) {
	X, y := syntheticXY(300, 1)

	gb := NewGradientBoosting(BoostParams{
		NEstimators: 50, MaxDepth: 4, LearningRate: 0.1,
		Subsample: 0.8, ColsampleByTree: 1.0, MinChildWeight: 2,
		RegAlpha: 0.1, RegLambda: 1.0,
	})
	if err := gb.Fit(X, y, rand.New(rand.NewSource(1))); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}

	baseline := stddev(y)
	got := trainingRMSE(t, gb.Predict, X, y)
	if got >= baseline {
		t.Errorf("boosting RMSE %f did not beat mean-predictor baseline %f", got, baseline)
	}
}

func TestGradientBoostingIsDeterministic(t *testing.T) {
	X, y := syntheticXY(200, 2)
	params := BoostParams{
		NEstimators: 20, MaxDepth: 3, LearningRate: 0.1,
		Subsample: 0.8, ColsampleByTree: 0.8, MinChildWeight: 1,
	}

	a := NewGradientBoosting(params)
	b := NewGradientBoosting(params)
	if err := a.Fit(X, y, rand.New(rand.NewSource(7))); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	if err := b.Fit(X, y, rand.New(rand.NewSource(7))); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}

	for i := range X {
		if a.Predict(X[i]) != b.Predict(X[i]) {
			t.Fatalf("same seed produced different predictions at row %d", i)
		}
	}
}

func TestRandomForestIsDeterministicAcrossParallelFits(t *testing.T) {
	X, y := syntheticXY(200, 3)
	params := ForestParams{NEstimators: 25, MaxDepth: 6, MinSamplesSplit: 2, MinSamplesLeaf: 1}

	a := NewRandomForest(params)
	b := NewRandomForest(params)
	if err := a.Fit(X, y, rand.New(rand.NewSource(9))); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	if err := b.Fit(X, y, rand.New(rand.NewSource(9))); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}

	for _, tree := range a.Trees {
		if tree == nil {
			t.Fatal("forest fit left a nil tree slot")
		}
	}
	for i := range X {
		if a.Predict(X[i]) != b.Predict(X[i]) {
			t.Fatalf("same seed produced different forest predictions at row %d", i)
		}
	}
}

func TestRidgeRecoversLinearRelationship(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	X := make([][]float64, 200)
	y := make([]float64, 200)
	for i := range X {
		a := rng.Float64() * 10
		b := rng.Float64() * 10
		X[i] = []float64{a, b}
		y[i] = 2*a - 3*b + 5
	}

	model := NewRidge(0.001)
	if err := model.Fit(X, y); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}

	if math.Abs(model.Coef[0]-2) > 0.01 || math.Abs(model.Coef[1]+3) > 0.01 {
		t.Errorf("coefficients = %v, want approx [2 -3]", model.Coef)
	}
	if math.Abs(model.Intercept-5) > 0.05 {
		t.Errorf("intercept = %f, want approx 5", model.Intercept)
	}
}

func TestFitRidgeCVPicksFromCandidates(t *testing.T) {
	X, y := syntheticXY(150, 5)
	alphas := []float64{0.1, 1.0, 10.0}

	model, err := fitRidgeCV(X, y, alphas, 5, 42)
	if err != nil {
		t.Fatalf("fitRidgeCV failed: %v", err)
	}

	found := false
	for _, a := range alphas {
		if model.Alpha == a {
			found = true
		}
	}
	if !found {
		t.Errorf("selected alpha %f is not a candidate", model.Alpha)
	}
	if len(model.Coef) != 3 {
		t.Errorf("expected 3 coefficients, got %d", len(model.Coef))
	}
}

func TestKFoldSplitPartitionsAllRows(t *testing.T) {
	folds := kfoldSplit(103, 5, 42)
	if len(folds) != 5 {
		t.Fatalf("expected 5 folds, got %d", len(folds))
	}

	seen := make(map[int]int)
	for _, f := range folds {
		for _, idx := range f.test {
			seen[idx]++
		}
		if len(f.train)+len(f.test) != 103 {
			t.Errorf("fold covers %d rows, want 103", len(f.train)+len(f.test))
		}
	}
	if len(seen) != 103 {
		t.Fatalf("test sets cover %d distinct rows, want 103", len(seen))
	}
	for idx, count := range seen {
		if count != 1 {
			t.Errorf("row %d appears in %d test sets", idx, count)
		}
	}
}

func TestTrainTestSplitIsDisjoint(t *testing.T) {
	train, test := trainTestSplit(100, 0.2, 42)
	if len(test) != 20 || len(train) != 80 {
		t.Fatalf("split sizes = %d/%d, want 80/20", len(train), len(test))
	}
	inTest := make(map[int]bool, len(test))
	for _, idx := range test {
		inTest[idx] = true
	}
	for _, idx := range train {
		if inTest[idx] {
			t.Fatalf("row %d is in both train and test", idx)
		}
	}
}
