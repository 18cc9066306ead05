package ensemble

import (
	"math"
	"sort"
)

// TreeNode is one node of a regression tree. Exported fields allow the
// tree to round-trip through the JSON model artifact.
type TreeNode struct {
	Feature   int       `json:"feature,omitempty"`
	Threshold float64   `json:"threshold,omitempty"`
	Left      *TreeNode `json:"left,omitempty"`
	Right     *TreeNode `json:"right,omitempty"`
	Value     float64   `json:"value"`
	Leaf      bool      `json:"leaf"`
}

// RegressionTree is a CART-style regression tree. The same tree type
// serves both the random forest (plain mean leaves) and the boosted
// ensembles (regularized leaf values).
type RegressionTree struct {
	Root            *TreeNode `json:"root"`
	MaxDepth        int       `json:"max_depth"`
	MinSamplesSplit int       `json:"min_samples_split"`
	MinSamplesLeaf  int       `json:"min_samples_leaf"`
	MaxLeaves       int       `json:"max_leaves,omitempty"` // 0 = unlimited
	RegLambda       float64   `json:"reg_lambda,omitempty"` // L2 on leaf values
	RegAlpha        float64   `json:"reg_alpha,omitempty"`  // L1 on leaf values

	leaves int
	gains  []float64
}

// treeSample is the working set of one tree fit: row indices into X/y plus
// the feature indices the tree is allowed to split on.
type treeSample struct {
	X        [][]float64
	y        []float64
	rows     []int
	features []int
}

// Fit grows the tree on the given rows of X/y, splitting only on the
// allowed feature indices.
func (t *RegressionTree) Fit(X [][]float64, y []float64, rows, features []int) {
	t.gains = make([]float64, len(X[0]))
	t.leaves = 0
	sample := &treeSample{X: X, y: y, rows: rows, features: features}
	t.Root = t.grow(sample, rows, 0)
}

// Predict traverses the tree for a single feature vector.
func (t *RegressionTree) Predict(x []float64) float64 {
	node := t.Root
	for node != nil && !node.Leaf {
		if x[node.Feature] <= node.Threshold {
			node = node.Left
		} else {
			node = node.Right
		}
	}
	if node == nil {
		return 0
	}
	return node.Value
}

// FeatureGains returns the accumulated impurity reduction per feature
// from the most recent fit.
func (t *RegressionTree) FeatureGains() []float64 {
	return t.gains
}

func (t *RegressionTree) grow(sample *treeSample, rows []int, depth int) *TreeNode {
	if len(rows) < t.MinSamplesSplit || depth >= t.MaxDepth || t.leafBudgetExhausted() {
		return t.makeLeaf(sample, rows)
	}

	feature, threshold, gain, ok := t.bestSplit(sample, rows)
	if !ok {
		return t.makeLeaf(sample, rows)
	}

	var left, right []int
	for _, i := range rows {
		if sample.X[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	if len(left) < t.MinSamplesLeaf || len(right) < t.MinSamplesLeaf {
		return t.makeLeaf(sample, rows)
	}

	t.gains[feature] += gain

	return &TreeNode{
		Feature:   feature,
		Threshold: threshold,
		Left:      t.grow(sample, left, depth+1),
		Right:     t.grow(sample, right, depth+1),
	}
}

func (t *RegressionTree) leafBudgetExhausted() bool {
	return t.MaxLeaves > 0 && t.leaves >= t.MaxLeaves-1
}

// makeLeaf computes the leaf value. With regularization enabled this is
// the XGBoost-style shrunk estimate sign(s)·max(0,|s|−α)/(n+λ) where s is
// the residual sum; with λ=α=0 it reduces to the plain mean.
func (t *RegressionTree) makeLeaf(sample *treeSample, rows []int) *TreeNode {
	t.leaves++
	sum := 0.0
	for _, i := range rows {
		sum += sample.y[i]
	}
	n := float64(len(rows))
	value := 0.0
	if n > 0 {
		s := sum
		if t.RegAlpha > 0 {
			switch {
			case s > t.RegAlpha:
				s -= t.RegAlpha
			case s < -t.RegAlpha:
				s += t.RegAlpha
			default:
				s = 0
			}
		}
		value = s / (n + t.RegLambda)
	}
	return &TreeNode{Leaf: true, Value: value}
}

// bestSplit scans the allowed features for the split that maximizes the
// reduction in sum of squared errors, using sorted prefix sums.
func (t *RegressionTree) bestSplit(sample *treeSample, rows []int) (feature int, threshold, gain float64, ok bool) {
	parentSum, parentSqSum := 0.0, 0.0
	for _, i := range rows {
		parentSum += sample.y[i]
		parentSqSum += sample.y[i] * sample.y[i]
	}
	n := float64(len(rows))
	parentSSE := parentSqSum - parentSum*parentSum/n

	bestGain := 0.0
	order := make([]int, len(rows))

	for _, f := range sample.features {
		copy(order, rows)
		sort.Slice(order, func(a, b int) bool {
			return sample.X[order[a]][f] < sample.X[order[b]][f]
		})

		leftSum, leftSqSum := 0.0, 0.0
		for k := 0; k < len(order)-1; k++ {
			i := order[k]
			leftSum += sample.y[i]
			leftSqSum += sample.y[i] * sample.y[i]

			// No valid threshold between equal feature values.
			if sample.X[i][f] == sample.X[order[k+1]][f] {
				continue
			}

			nl := float64(k + 1)
			nr := n - nl
			if int(nl) < t.MinSamplesLeaf || int(nr) < t.MinSamplesLeaf {
				continue
			}

			rightSum := parentSum - leftSum
			rightSqSum := parentSqSum - leftSqSum
			leftSSE := leftSqSum - leftSum*leftSum/nl
			rightSSE := rightSqSum - rightSum*rightSum/nr

			g := parentSSE - leftSSE - rightSSE
			if g > bestGain {
				bestGain = g
				feature = f
				threshold = (sample.X[i][f] + sample.X[order[k+1]][f]) / 2
				ok = true
			}
		}
	}

	if math.IsNaN(bestGain) || bestGain <= 0 {
		return 0, 0, 0, false
	}
	return feature, threshold, bestGain, ok
}
