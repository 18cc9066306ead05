package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Chirayu-blip/nasa-agrosim/pkg/models"
)

func TestPredictSendsScenarioAndDecodesResult(t *testing.T) {
	var gotPath string
	var gotScenario models.Scenario

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&gotScenario); err != nil {
			t.Errorf("server could not decode request: %v", err)
		}
		json.NewEncoder(w).Encode(models.PredictionResult{
			Crop:            "wheat",
			PredictedYield:  3600.5,
			ConfidenceLower: 3200.1,
			ConfidenceUpper: 4000.9,
			ConfidenceLevel: 0.95,
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	result, err := client.Predict(context.Background(), models.Scenario{Crop: "wheat", TempAvg: 18})
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}

	if gotPath != "/api/v1/ml/predict" {
		t.Errorf("request path = %q", gotPath)
	}
	if gotScenario.Crop != "wheat" || gotScenario.TempAvg != 18 {
		t.Errorf("server received scenario %+v", gotScenario)
	}
	if result.PredictedYield != 3600.5 {
		t.Errorf("predicted yield = %f", result.PredictedYield)
	}
}

func TestErrorStatusIncludesResponseBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unsupported crop: \"dragonfruit\"", http.StatusBadRequest)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	_, err := client.Predict(context.Background(), models.Scenario{Crop: "dragonfruit"})
	if err == nil {
		t.Fatal("expected error for 400 response")
	}
	if !strings.Contains(err.Error(), "status 400") || !strings.Contains(err.Error(), "dragonfruit") {
		t.Errorf("error %q missing status or body", err)
	}
}

func TestHealthDecodesModelState(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			t.Errorf("request path = %q", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status": "ok", "model": "ready", "database": true,
		})
	}))
	defer server.Close()

	health, err := NewClient(server.URL).Health(context.Background())
	if err != nil {
		t.Fatalf("Health failed: %v", err)
	}
	if health.Model != "ready" {
		t.Errorf("model state = %q", health.Model)
	}
	if health.Database == nil || !*health.Database {
		t.Error("database health not decoded")
	}
}

func TestCropsDecodesParameterTable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"crops": []models.CropParameters{{Name: "wheat", BaseYield: 3500}},
		})
	}))
	defer server.Close()

	crops, err := NewClient(server.URL).Crops(context.Background())
	if err != nil {
		t.Fatalf("Crops failed: %v", err)
	}
	if len(crops) != 1 || crops[0].Name != "wheat" {
		t.Errorf("crops = %+v", crops)
	}
}
