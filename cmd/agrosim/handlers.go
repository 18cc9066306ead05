package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/Chirayu-blip/nasa-agrosim/pkg/ensemble"
	"github.com/Chirayu-blip/nasa-agrosim/pkg/models"
)

// healthHandler reports service health including the model lifecycle state
// and, when a database is attached, its connection health.
func (rm *RouteManager) healthHandler(w http.ResponseWriter, r *http.Request) {
	health := map[string]interface{}{
		"status": "ok",
		"model":  rm.predictor.State().String(),
	}
	if rm.recordStore != nil {
		health["database"] = rm.recordStore.IsConnectionHealthy()
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(health)
}

// predictHandler runs inference for a fully specified climate scenario.
func (rm *RouteManager) predictHandler(w http.ResponseWriter, r *http.Request) {
	var scenario models.Scenario
	if err := json.NewDecoder(r.Body).Decode(&scenario); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	scenario.ApplyDefaults()
	if err := scenario.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	result, err := rm.predictor.Predict(r.Context(), scenario)
	if err != nil {
		rm.writePredictionError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

// predictLocationHandler runs inference for a location, pulling recent
// weather from NASA POWER with a latitude-based estimate as fallback.
func (rm *RouteManager) predictLocationHandler(w http.ResponseWriter, r *http.Request) {
	var scenario models.Scenario
	if err := json.NewDecoder(r.Body).Decode(&scenario); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if _, err := models.CropParams(scenario.Crop); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if scenario.Latitude < -90 || scenario.Latitude > 90 ||
		scenario.Longitude < -180 || scenario.Longitude > 180 {
		http.Error(w, "Invalid coordinates", http.StatusBadRequest)
		return
	}

	result, err := rm.predictor.PredictAtLocation(r.Context(), scenario.Crop, scenario.Latitude, scenario.Longitude, scenario)
	if err != nil {
		rm.writePredictionError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

// writePredictionError maps prediction failures to status codes.
func (rm *RouteManager) writePredictionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrUnsupportedCrop):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ensemble.ErrInsufficientData):
		log.Printf("❌ Prediction failed, not enough training data: %v", err)
		http.Error(w, "Not enough training data to serve predictions", http.StatusServiceUnavailable)
	default:
		log.Printf("❌ Prediction failed: %v", err)
		http.Error(w, "Prediction failed", http.StatusInternalServerError)
	}
}

// trainHandler kicks off an asynchronous training run. Training runs are
// serialized inside the predictor; the old model keeps serving meanwhile.
func (rm *RouteManager) trainHandler(w http.ResponseWriter, r *http.Request) {
	if rm.predictor.TrainingInProgress() {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]string{"status": "training already in progress"})
		return
	}

	go func() {
		start := time.Now()
		metrics, err := rm.predictor.Train(context.Background())
		if err != nil {
			log.Printf("❌ Background training failed: %v", err)
			return
		}
		log.Printf("✓ Background training finished in %s (R²=%.4f)", time.Since(start).Round(time.Millisecond), metrics.R2)
	}()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]string{"status": "training started"})
}

// modelHandler returns metadata and metrics of the currently served model.
func (rm *RouteManager) modelHandler(w http.ResponseWriter, r *http.Request) {
	artifact := rm.predictor.Artifact()
	if artifact == nil {
		http.Error(w, "Model not trained yet", http.StatusNotFound)
		return
	}

	info := map[string]interface{}{
		"model_id":      artifact.ID,
		"trained_at":    artifact.TrainedAt,
		"state":         rm.predictor.State().String(),
		"feature_names": artifact.FeatureNames,
		"metrics":       artifact.Metrics,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(info)
}

// cropsHandler returns the crop parameter table.
func (rm *RouteManager) cropsHandler(w http.ResponseWriter, r *http.Request) {
	crops := make([]models.CropParameters, 0, len(models.SupportedCrops()))
	for _, name := range models.SupportedCrops() {
		params, err := models.CropParams(name)
		if err != nil {
			continue
		}
		crops = append(crops, params)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"crops": crops})
}

// recordCountHandler returns the number of cached training records.
func (rm *RouteManager) recordCountHandler(w http.ResponseWriter, r *http.Request) {
	if rm.recordStore == nil {
		http.Error(w, "No database configured", http.StatusServiceUnavailable)
		return
	}

	count, err := rm.recordStore.Count(r.Context())
	if err != nil {
		log.Printf("❌ Failed to count records: %v", err)
		http.Error(w, "Failed to count records", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]int{"count": count})
}

// deleteRecordsHandler clears the training record cache.
func (rm *RouteManager) deleteRecordsHandler(w http.ResponseWriter, r *http.Request) {
	if rm.recordStore == nil {
		http.Error(w, "No database configured", http.StatusServiceUnavailable)
		return
	}

	if err := rm.recordStore.DeleteRecords(r.Context()); err != nil {
		log.Printf("❌ Failed to delete records: %v", err)
		http.Error(w, "Failed to delete records", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
