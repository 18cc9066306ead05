package api

import (
	"context"
	"time"

	"github.com/Chirayu-blip/nasa-agrosim/pkg/models"
)

// ModelInfo describes the model currently served by the server.
type ModelInfo struct {
	ModelID      string               `json:"model_id"`
	TrainedAt    time.Time            `json:"trained_at"`
	State        string               `json:"state"`
	FeatureNames []string             `json:"feature_names"`
	Metrics      *models.ModelMetrics `json:"metrics"`
}

// Model retrieves metadata and metrics of the currently served model.
func (c *Client) Model(ctx context.Context) (*ModelInfo, error) {
	resp, err := c.doRequest(ctx, "GET", "/api/v1/ml/model", nil)
	if err != nil {
		return nil, err
	}

	var info ModelInfo
	if err := decodeInto(resp, &info); err != nil {
		return nil, err
	}

	return &info, nil
}

// Train starts an asynchronous training run on the server.
func (c *Client) Train(ctx context.Context) error {
	resp, err := c.doRequest(ctx, "POST", "/api/v1/ml/train", nil)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

// Crops retrieves the crop parameter table.
func (c *Client) Crops(ctx context.Context) ([]models.CropParameters, error) {
	resp, err := c.doRequest(ctx, "GET", "/api/v1/ml/crops", nil)
	if err != nil {
		return nil, err
	}

	var payload struct {
		Crops []models.CropParameters `json:"crops"`
	}
	if err := decodeInto(resp, &payload); err != nil {
		return nil, err
	}

	return payload.Crops, nil
}
