package models

// RiskFactor describes one environmental risk identified for a scenario.
type RiskFactor struct {
	Factor      string  `json:"factor"`
	Severity    float64 `json:"severity"` // 0-1
	Description string  `json:"description"`
	Impact      string  `json:"impact"`
}

// FeatureImportance is one entry of the descending importance ranking.
type FeatureImportance struct {
	Feature    string  `json:"feature"`
	Importance float64 `json:"importance"`
}

// ModelMetrics holds the evaluation results of a training run. The holdout
// metrics come from a single 80/20 test split; the CV fields are a separate
// 5-fold cross-validation stability estimate over the full dataset.
type ModelMetrics struct {
	R2       float64   `json:"r2_score"`
	RMSE     float64   `json:"rmse"` // kg/hectare
	MAE      float64   `json:"mae"`  // kg/hectare
	MAPE     float64   `json:"mape"` // %
	CVScores []float64 `json:"cv_scores"`
	CVMean   float64   `json:"cv_mean"`
	CVStd    float64   `json:"cv_std"`
}

// PredictionResult is the full response of one inference call. It is
// created fresh per call and never persisted.
//
// The confidence interval is a cheap proxy obtained by adding Gaussian
// noise to the base models' predictions; it characterizes sensitivity to
// prediction noise, not calibrated model or sampling uncertainty.
type PredictionResult struct {
	Crop              string              `json:"crop"`
	PredictedYield    float64             `json:"predicted_yield"` // kg/hectare
	ConfidenceLower   float64             `json:"confidence_lower"`
	ConfidenceUpper   float64             `json:"confidence_upper"`
	ConfidenceLevel   float64             `json:"confidence_level"`
	RiskFactors       []RiskFactor        `json:"risk_factors"`
	Recommendations   []string            `json:"recommendations"`
	ModelMetrics      ModelMetrics        `json:"model_metrics"`
	FeatureImportance []FeatureImportance `json:"feature_importance"`
}
