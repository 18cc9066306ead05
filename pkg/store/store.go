// Package store persists trained model artifacts on disk so a service
// restart does not force a retrain.
package store

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/Chirayu-blip/nasa-agrosim/pkg/ensemble"
	"github.com/Chirayu-blip/nasa-agrosim/pkg/features"
	"github.com/Chirayu-blip/nasa-agrosim/pkg/models"
)

// Artifact is one trained model snapshot: the fitted feature engineer,
// the stacked ensemble and the evaluation metrics of the training run.
type Artifact struct {
	ID           uuid.UUID            `json:"id"`
	TrainedAt    time.Time            `json:"trained_at"`
	FeatureNames []string             `json:"feature_names"`
	Engineer     *features.Engineer   `json:"engineer"`
	Ensemble     *ensemble.Ensemble   `json:"ensemble"`
	Metrics      *models.ModelMetrics `json:"metrics"`
}

// Store reads and writes model artifacts at a fixed path.
type Store struct {
	path string
}

// New creates a store for the given artifact path.
func New(path string) *Store {
	return &Store{path: path}
}

// Path returns the artifact location.
func (s *Store) Path() string {
	return s.path
}

// Save writes the artifact atomically: it serializes to a temp file in
// the target directory and renames it over the previous artifact, so a
// concurrent Load never sees a partial write.
func (s *Store) Save(artifact *Artifact) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create model directory: %w", err)
	}

	data, err := json.Marshal(artifact)
	if err != nil {
		return fmt.Errorf("failed to serialize model artifact: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "model-*.json.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp artifact file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write model artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp artifact file: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace model artifact: %w", err)
	}

	log.Printf("✓ Saved model artifact %s to %s", artifact.ID, s.path)
	return nil
}

// Load reads the stored artifact. A missing file is not an error; it
// returns (nil, nil) so callers can fall through to training.
func (s *Store) Load() (*Artifact, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read model artifact: %w", err)
	}

	var artifact Artifact
	if err := json.Unmarshal(data, &artifact); err != nil {
		return nil, fmt.Errorf("failed to parse model artifact: %w", err)
	}
	return &artifact, nil
}

// Delete removes the stored artifact if present.
func (s *Store) Delete() error {
	err := os.Remove(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
