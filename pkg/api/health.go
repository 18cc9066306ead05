package api

import "context"

// HealthStatus represents the server health status
type HealthStatus struct {
	Status   string `json:"status"`
	Model    string `json:"model"`
	Database *bool  `json:"database,omitempty"`
}

// Health checks if the server is healthy
func (c *Client) Health(ctx context.Context) (*HealthStatus, error) {
	resp, err := c.doRequest(ctx, "GET", "/health", nil)
	if err != nil {
		return nil, err
	}

	var health HealthStatus
	if err := decodeInto(resp, &health); err != nil {
		return nil, err
	}

	return &health, nil
}
