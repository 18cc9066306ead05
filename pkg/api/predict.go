package api

import (
	"context"

	"github.com/Chirayu-blip/nasa-agrosim/pkg/models"
)

// Predict requests a yield prediction for a fully specified scenario.
func (c *Client) Predict(ctx context.Context, scenario models.Scenario) (*models.PredictionResult, error) {
	resp, err := c.doRequest(ctx, "POST", "/api/v1/ml/predict", scenario)
	if err != nil {
		return nil, err
	}

	var result models.PredictionResult
	if err := decodeInto(resp, &result); err != nil {
		return nil, err
	}

	return &result, nil
}

// PredictAtLocation requests a yield prediction for a crop at a location.
// The server fills the climate fields from recent weather observations.
func (c *Client) PredictAtLocation(ctx context.Context, crop string, latitude, longitude float64) (*models.PredictionResult, error) {
	scenario := models.Scenario{
		Crop:      crop,
		Latitude:  latitude,
		Longitude: longitude,
	}

	resp, err := c.doRequest(ctx, "POST", "/api/v1/ml/predict/location", scenario)
	if err != nil {
		return nil, err
	}

	var result models.PredictionResult
	if err := decodeInto(resp, &result); err != nil {
		return nil, err
	}

	return &result, nil
}
