package ensemble

import (
	"errors"
	"math"
	"math/rand"
	"sync"
)

// ForestParams holds the hyperparameters of the random forest.
type ForestParams struct {
	NEstimators     int `json:"n_estimators"`
	MaxDepth        int `json:"max_depth"`
	MinSamplesSplit int `json:"min_samples_split"`
	MinSamplesLeaf  int `json:"min_samples_leaf"`
}

// RandomForest is a bagged ensemble of regression trees: each tree trains
// on a bootstrap sample and considers a random sqrt-sized feature subset,
// predictions are averaged.
type RandomForest struct {
	Params    ForestParams      `json:"params"`
	Trees     []*RegressionTree `json:"trees"`
	NFeatures int               `json:"n_features"`
	// Importances is captured at fit time because the per-tree gains do
	// not survive the JSON model artifact.
	Importances []float64 `json:"importances"`
}

// NewRandomForest creates an untrained random forest.
func NewRandomForest(params ForestParams) *RandomForest {
	return &RandomForest{Params: params}
}

// Fit trains all trees. Per-tree seeds are drawn from rng up front so the
// parallel tree builds stay reproducible for a fixed seed.
func (rf *RandomForest) Fit(X [][]float64, y []float64, rng *rand.Rand) error {
	if len(X) == 0 || len(X) != len(y) {
		return errors.New("invalid training data for random forest")
	}
	rf.NFeatures = len(X[0])
	rf.Trees = make([]*RegressionTree, rf.Params.NEstimators)

	maxFeatures := int(math.Sqrt(float64(rf.NFeatures)))
	if maxFeatures < 1 {
		maxFeatures = 1
	}

	seeds := make([]int64, rf.Params.NEstimators)
	for i := range seeds {
		seeds[i] = rng.Int63()
	}

	var wg sync.WaitGroup
	for i := 0; i < rf.Params.NEstimators; i++ {
		wg.Add(1)
		go func(treeIdx int) {
			defer wg.Done()
			treeRng := rand.New(rand.NewSource(seeds[treeIdx]))

			rows := make([]int, len(X))
			for j := range rows {
				rows[j] = treeRng.Intn(len(X))
			}
			features := sampleWithoutReplacement(treeRng, rf.NFeatures, maxFeatures)

			tree := &RegressionTree{
				MaxDepth:        rf.Params.MaxDepth,
				MinSamplesSplit: rf.Params.MinSamplesSplit,
				MinSamplesLeaf:  rf.Params.MinSamplesLeaf,
			}
			tree.Fit(X, y, rows, features)
			rf.Trees[treeIdx] = tree
		}(i)
	}
	wg.Wait()
	rf.Importances = gainImportances(rf.Trees, rf.NFeatures)

	return nil
}

// Predict averages the tree predictions for a single feature vector.
func (rf *RandomForest) Predict(x []float64) float64 {
	if len(rf.Trees) == 0 {
		return 0
	}
	sum := 0.0
	for _, tree := range rf.Trees {
		sum += tree.Predict(x)
	}
	return sum / float64(len(rf.Trees))
}

// FeatureImportances returns impurity-gain importances normalized to sum
// to 1.
func (rf *RandomForest) FeatureImportances() []float64 {
	if rf.Importances == nil {
		return gainImportances(rf.Trees, rf.NFeatures)
	}
	return rf.Importances
}
