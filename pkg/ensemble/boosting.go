package ensemble

import (
	"errors"
	"math"
	"math/rand"
)

// BoostParams holds the hyperparameters of one gradient-boosted ensemble.
type BoostParams struct {
	NEstimators     int     `json:"n_estimators"`
	MaxDepth        int     `json:"max_depth"`
	LearningRate    float64 `json:"learning_rate"`
	Subsample       float64 `json:"subsample"`
	ColsampleByTree float64 `json:"colsample_bytree"`
	MinChildWeight  int     `json:"min_child_weight"`
	RegAlpha        float64 `json:"reg_alpha"`
	RegLambda       float64 `json:"reg_lambda"`
	MaxLeaves       int     `json:"max_leaves,omitempty"`
}

// GradientBoosting is a gradient-boosted regression tree ensemble with
// squared-error loss: each tree fits the residuals of the running
// prediction, with row and column subsampling plus L1/L2 regularized leaf
// values for variance control.
type GradientBoosting struct {
	Params    BoostParams       `json:"params"`
	InitValue float64           `json:"init_value"`
	Trees     []*RegressionTree `json:"trees"`
	NFeatures int               `json:"n_features"`
	// Importances is captured at fit time because the per-tree gains do
	// not survive the JSON model artifact.
	Importances []float64 `json:"importances"`
}

// NewGradientBoosting creates an untrained boosted ensemble.
func NewGradientBoosting(params BoostParams) *GradientBoosting {
	return &GradientBoosting{Params: params}
}

// Fit trains the ensemble. The rng drives row and column subsampling, so
// a fixed seed reproduces the model exactly.
func (gb *GradientBoosting) Fit(X [][]float64, y []float64, rng *rand.Rand) error {
	if len(X) == 0 || len(X) != len(y) {
		return errors.New("invalid training data for gradient boosting")
	}
	gb.NFeatures = len(X[0])
	gb.InitValue = mean(y)
	gb.Trees = make([]*RegressionTree, 0, gb.Params.NEstimators)

	residuals := make([]float64, len(y))
	predictions := make([]float64, len(y))
	for i := range y {
		predictions[i] = gb.InitValue
	}

	nRows := int(gb.Params.Subsample * float64(len(X)))
	if nRows < 1 {
		nRows = len(X)
	}
	nCols := int(gb.Params.ColsampleByTree * float64(gb.NFeatures))
	if nCols < 1 {
		nCols = gb.NFeatures
	}

	for t := 0; t < gb.Params.NEstimators; t++ {
		for i := range y {
			residuals[i] = y[i] - predictions[i]
			if math.IsNaN(residuals[i]) || math.IsInf(residuals[i], 0) {
				return errors.New("non-finite residual encountered during boosting")
			}
		}

		rows := sampleWithoutReplacement(rng, len(X), nRows)
		cols := sampleWithoutReplacement(rng, gb.NFeatures, nCols)

		tree := &RegressionTree{
			MaxDepth:        gb.Params.MaxDepth,
			MinSamplesSplit: max(2, gb.Params.MinChildWeight),
			MinSamplesLeaf:  max(1, gb.Params.MinChildWeight),
			MaxLeaves:       gb.Params.MaxLeaves,
			RegLambda:       gb.Params.RegLambda,
			RegAlpha:        gb.Params.RegAlpha,
		}
		tree.Fit(X, residuals, rows, cols)
		gb.Trees = append(gb.Trees, tree)

		for i := range predictions {
			predictions[i] += gb.Params.LearningRate * tree.Predict(X[i])
		}
	}
	gb.Importances = gainImportances(gb.Trees, gb.NFeatures)

	return nil
}

// Predict returns the boosted prediction for a single feature vector.
func (gb *GradientBoosting) Predict(x []float64) float64 {
	pred := gb.InitValue
	for _, tree := range gb.Trees {
		pred += gb.Params.LearningRate * tree.Predict(x)
	}
	return pred
}

// FeatureImportances returns the per-feature impurity gains accumulated
// over all trees, normalized to sum to 1.
func (gb *GradientBoosting) FeatureImportances() []float64 {
	if gb.Importances == nil {
		return gainImportances(gb.Trees, gb.NFeatures)
	}
	return gb.Importances
}

// sampleWithoutReplacement draws k distinct indices from [0, n) via a
// partial Fisher-Yates shuffle.
func sampleWithoutReplacement(rng *rand.Rand, n, k int) []int {
	if k >= n {
		all := make([]int, n)
		for i := range all {
			all[i] = i
		}
		return all
	}
	perm := rng.Perm(n)
	return perm[:k]
}
