package ensemble

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/stat"
)

// rsquared computes the coefficient of determination of predictions
// against observed values.
func rsquared(observed, predicted []float64) float64 {
	obsMean := mean(observed)
	ssRes, ssTot := 0.0, 0.0
	for i := range observed {
		ssRes += (observed[i] - predicted[i]) * (observed[i] - predicted[i])
		ssTot += (observed[i] - obsMean) * (observed[i] - obsMean)
	}
	if ssTot == 0 {
		return 0
	}
	return 1 - ssRes/ssTot
}

// rmse computes the root mean squared error.
func rmse(observed, predicted []float64) float64 {
	sum := 0.0
	for i := range observed {
		sum += (observed[i] - predicted[i]) * (observed[i] - predicted[i])
	}
	return math.Sqrt(sum / float64(len(observed)))
}

// mae computes the mean absolute error.
func mae(observed, predicted []float64) float64 {
	sum := 0.0
	for i := range observed {
		sum += math.Abs(observed[i] - predicted[i])
	}
	return sum / float64(len(observed))
}

// mape computes the mean absolute percentage error, guarded against
// zero targets.
func mape(observed, predicted []float64) float64 {
	sum := 0.0
	for i := range observed {
		sum += math.Abs((observed[i] - predicted[i]) / (observed[i] + 1e-8))
	}
	return sum / float64(len(observed)) * 100
}

func mean(values []float64) float64 {
	return stat.Mean(values, nil)
}

func stddev(values []float64) float64 {
	m := mean(values)
	sum := 0.0
	for _, v := range values {
		sum += (v - m) * (v - m)
	}
	return math.Sqrt(sum / float64(len(values)))
}

// normalize scales values to sum to 1, guarded against an all-zero
// vector.
func normalize(values []float64) []float64 {
	total := 0.0
	for _, v := range values {
		total += v
	}
	out := make([]float64, len(values))
	if total <= 0 {
		return out
	}
	for i, v := range values {
		out[i] = v / total
	}
	return out
}

// gainImportances sums the per-tree impurity gains and normalizes the
// result to sum to 1.
func gainImportances(trees []*RegressionTree, nFeatures int) []float64 {
	importances := make([]float64, nFeatures)
	for _, tree := range trees {
		for f, g := range tree.FeatureGains() {
			importances[f] += g
		}
	}
	return normalize(importances)
}

// fold holds the row indices of one cross-validation fold.
type fold struct {
	train []int
	test  []int
}

// kfoldSplit shuffles row indices with the given seed and partitions them
// into k folds.
func kfoldSplit(n, k int, seed int64) []fold {
	rng := rand.New(rand.NewSource(seed))
	perm := rng.Perm(n)

	folds := make([]fold, k)
	for i := 0; i < k; i++ {
		start := i * n / k
		end := (i + 1) * n / k

		test := make([]int, 0, end-start)
		train := make([]int, 0, n-(end-start))
		for j, idx := range perm {
			if j >= start && j < end {
				test = append(test, idx)
			} else {
				train = append(train, idx)
			}
		}
		folds[i] = fold{train: train, test: test}
	}
	return folds
}

// trainTestSplit shuffles row indices and holds out testFraction of them.
func trainTestSplit(n int, testFraction float64, seed int64) (train, test []int) {
	rng := rand.New(rand.NewSource(seed))
	perm := rng.Perm(n)

	nTest := int(float64(n) * testFraction)
	if nTest < 1 {
		nTest = 1
	}
	return perm[nTest:], perm[:nTest]
}

// selectRows extracts the given rows of X and y.
func selectRows(X [][]float64, y []float64, rows []int) ([][]float64, []float64) {
	subX := make([][]float64, len(rows))
	subY := make([]float64, len(rows))
	for i, idx := range rows {
		subX[i] = X[idx]
		subY[i] = y[idx]
	}
	return subX, subY
}
