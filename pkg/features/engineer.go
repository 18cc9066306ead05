package features

import (
	"errors"
	"fmt"
	"math"

	"github.com/Chirayu-blip/nasa-agrosim/pkg/models"
	"gonum.org/v1/gonum/stat"
)

// epsilon prevents division by zero when a feature column is constant.
const epsilon = 1e-8

// ErrNotFitted is returned when Transform is called before Fit.
var ErrNotFitted = errors.New("feature engineer not fitted")

// ErrSchemaMismatch is returned when a fitted state was produced by a
// different feature schema than the one compiled into this binary.
var ErrSchemaMismatch = errors.New("feature schema mismatch between fit and transform")

// Scaler holds the normalization parameters of one scaled feature.
type Scaler struct {
	Mean float64 `json:"mean"`
	Std  float64 `json:"std"`
}

// Engineer turns raw records into the fixed-width feature matrix declared
// by the schema. Fit computes the scaling parameters once; Transform
// applies them unchanged to any later input, so inference uses exactly the
// normalization seen during training.
//
// Fields are exported for artifact serialization only.
type Engineer struct {
	Fitted       bool              `json:"fitted"`
	FeatureNames []string          `json:"feature_names"`
	Scalers      map[string]Scaler `json:"scalers"`
}

// NewEngineer creates an unfitted feature engineer.
func NewEngineer() *Engineer {
	return &Engineer{
		Scalers: make(map[string]Scaler),
	}
}

// Fit computes the normalization parameters for all scaled features from
// the given records.
func (e *Engineer) Fit(records []models.TrainingRecord) error {
	if len(records) == 0 {
		return errors.New("cannot fit feature engineer on empty dataset")
	}

	e.FeatureNames = SchemaNames()
	e.Scalers = make(map[string]Scaler, len(schema))

	column := make([]float64, len(records))
	for _, spec := range schema {
		if !spec.Scaled {
			continue
		}
		for i, r := range records {
			column[i] = spec.Derive(r)
		}
		mean := stat.Mean(column, nil)
		// Population std, matching how the scalers were originally fitted.
		variance := 0.0
		for _, v := range column {
			variance += (v - mean) * (v - mean)
		}
		std := math.Sqrt(variance / float64(len(column)))
		e.Scalers[spec.Name] = Scaler{Mean: mean, Std: std}
	}

	e.Fitted = true
	return nil
}

// Transform builds the feature matrix for the given records using the
// stored scaling parameters. It never re-estimates them.
func (e *Engineer) Transform(records []models.TrainingRecord) ([][]float64, error) {
	if !e.Fitted {
		return nil, ErrNotFitted
	}
	if err := e.checkSchema(); err != nil {
		return nil, err
	}

	matrix := make([][]float64, len(records))
	for i, r := range records {
		row := make([]float64, len(schema))
		for j, spec := range schema {
			v := spec.Derive(r)
			if spec.Scaled {
				s := e.Scalers[spec.Name]
				v = (v - s.Mean) / (s.Std + epsilon)
			}
			row[j] = v
		}
		matrix[i] = row
	}

	return matrix, nil
}

// TransformOne builds a single feature vector for one record.
func (e *Engineer) TransformOne(record models.TrainingRecord) ([]float64, error) {
	matrix, err := e.Transform([]models.TrainingRecord{record})
	if err != nil {
		return nil, err
	}
	return matrix[0], nil
}

// FitTransform fits the engineer and returns the transformed matrix.
func (e *Engineer) FitTransform(records []models.TrainingRecord) ([][]float64, error) {
	if err := e.Fit(records); err != nil {
		return nil, err
	}
	return e.Transform(records)
}

// checkSchema verifies that the fitted state matches the compiled schema.
func (e *Engineer) checkSchema() error {
	names := SchemaNames()
	if len(e.FeatureNames) != len(names) {
		return fmt.Errorf("%w: fitted with %d features, schema has %d",
			ErrSchemaMismatch, len(e.FeatureNames), len(names))
	}
	for i, name := range names {
		if e.FeatureNames[i] != name {
			return fmt.Errorf("%w: column %d is %q, expected %q",
				ErrSchemaMismatch, i, e.FeatureNames[i], name)
		}
	}
	return nil
}
