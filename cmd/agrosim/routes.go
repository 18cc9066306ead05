package main

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/Chirayu-blip/nasa-agrosim/pkg/dataset"
	"github.com/Chirayu-blip/nasa-agrosim/pkg/predictor"
)

// RouteManager handles all API routes
type RouteManager struct {
	predictor   *predictor.Predictor
	recordStore *dataset.RecordStore // nil when the database is unreachable
	Router      *mux.Router
}

// NewRouteManager creates a new RouteManager instance
func NewRouteManager(pred *predictor.Predictor, recordStore *dataset.RecordStore) *RouteManager {
	return &RouteManager{
		predictor:   pred,
		recordStore: recordStore,
		Router:      mux.NewRouter(),
	}
}

// Setup configures all API routes
func (rm *RouteManager) Setup() {
	r := rm.Router
	r.Use(rm.corsMiddleware)

	// Global OPTIONS handler - catches all preflight requests
	r.Methods("OPTIONS").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	// Health check
	r.HandleFunc("/health", rm.healthHandler).Methods("GET")

	// API v1 routes
	api := r.PathPrefix("/api/v1").Subrouter()
	rm.setupAPIRoutes(api)
}

// setupAPIRoutes configures all API v1 routes
func (rm *RouteManager) setupAPIRoutes(api *mux.Router) {
	// Predictions
	api.HandleFunc("/ml/predict", rm.predictHandler).Methods("POST")
	api.HandleFunc("/ml/predict/location", rm.predictLocationHandler).Methods("POST")

	// Model lifecycle
	api.HandleFunc("/ml/train", rm.trainHandler).Methods("POST")
	api.HandleFunc("/ml/model", rm.modelHandler).Methods("GET")

	// Reference data
	api.HandleFunc("/ml/crops", rm.cropsHandler).Methods("GET")

	// Training data cache
	api.HandleFunc("/records/count", rm.recordCountHandler).Methods("GET")
	api.HandleFunc("/records", rm.deleteRecordsHandler).Methods("DELETE")
}
