package ensemble

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Ridge is an L2-regularized linear regression, used as the stacking
// meta-learner over the base models' out-of-fold predictions.
type Ridge struct {
	Alpha     float64   `json:"alpha"`
	Coef      []float64 `json:"coef"`
	Intercept float64   `json:"intercept"`
}

// NewRidge creates an untrained ridge regressor.
func NewRidge(alpha float64) *Ridge {
	return &Ridge{Alpha: alpha}
}

// Fit solves (Xcᵀ Xc + αI) w = Xcᵀ yc on mean-centered data; the
// intercept absorbs the means so it is not regularized.
func (r *Ridge) Fit(X [][]float64, y []float64) error {
	n := len(X)
	if n == 0 || n != len(y) {
		return errors.New("invalid training data for ridge regression")
	}
	p := len(X[0])

	colMeans := make([]float64, p)
	for _, row := range X {
		for j, v := range row {
			colMeans[j] += v
		}
	}
	for j := range colMeans {
		colMeans[j] /= float64(n)
	}
	yMean := mean(y)

	xc := mat.NewDense(n, p, nil)
	yc := mat.NewVecDense(n, nil)
	for i, row := range X {
		for j, v := range row {
			xc.Set(i, j, v-colMeans[j])
		}
		yc.SetVec(i, y[i]-yMean)
	}

	var gram mat.Dense
	gram.Mul(xc.T(), xc)
	for j := 0; j < p; j++ {
		gram.Set(j, j, gram.At(j, j)+r.Alpha)
	}

	var xty mat.VecDense
	xty.MulVec(xc.T(), yc)

	var w mat.VecDense
	if err := w.SolveVec(&gram, &xty); err != nil {
		return fmt.Errorf("ridge system is singular: %w", err)
	}

	r.Coef = make([]float64, p)
	r.Intercept = yMean
	for j := 0; j < p; j++ {
		r.Coef[j] = w.AtVec(j)
		r.Intercept -= r.Coef[j] * colMeans[j]
	}

	return nil
}

// Predict returns the linear prediction for a single input vector.
func (r *Ridge) Predict(x []float64) float64 {
	pred := r.Intercept
	for j, c := range r.Coef {
		pred += c * x[j]
	}
	return pred
}

// fitRidgeCV picks the alpha with the best k-fold CV R² over the
// candidate grid, then refits on all rows.
func fitRidgeCV(X [][]float64, y []float64, alphas []float64, folds int, seed int64) (*Ridge, error) {
	if len(alphas) == 0 {
		return nil, errors.New("no alpha candidates for ridge CV")
	}

	bestAlpha := alphas[0]
	bestScore := 0.0
	haveScore := false

	for _, alpha := range alphas {
		scores := make([]float64, 0, folds)
		for _, fold := range kfoldSplit(len(X), folds, seed) {
			trainX, trainY := selectRows(X, y, fold.train)
			testX, testY := selectRows(X, y, fold.test)

			model := NewRidge(alpha)
			if err := model.Fit(trainX, trainY); err != nil {
				return nil, err
			}

			preds := make([]float64, len(testX))
			for i, row := range testX {
				preds[i] = model.Predict(row)
			}
			scores = append(scores, rsquared(testY, preds))
		}

		score := mean(scores)
		if !haveScore || score > bestScore {
			bestScore = score
			bestAlpha = alpha
			haveScore = true
		}
	}

	model := NewRidge(bestAlpha)
	if err := model.Fit(X, y); err != nil {
		return nil, err
	}
	return model, nil
}
