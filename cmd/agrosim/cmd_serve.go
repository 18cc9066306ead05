package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Chirayu-blip/nasa-agrosim/pkg/dataset"
	"github.com/Chirayu-blip/nasa-agrosim/pkg/predictor"
	"github.com/Chirayu-blip/nasa-agrosim/pkg/store"
	"github.com/Chirayu-blip/nasa-agrosim/pkg/weather"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the AgroSim prediction server",
	Long:  `Start the AgroSim server to serve crop yield predictions over HTTP.`,
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	pred, recordStore := buildPredictor(predictor.DefaultConfig())
	if recordStore != nil {
		defer recordStore.Close()
	}

	// Warm the model in the background so the first prediction does not
	// pay the training cost if an artifact or cached data already exists.
	go func() {
		if err := pred.Load(); err != nil {
			log.Printf("⚠ Model load failed: %v", err)
		}
		if pred.State() == predictor.StateReady {
			return
		}
		log.Println("No persisted model found, training initial model...")
		if _, err := pred.Train(context.Background()); err != nil {
			log.Printf("❌ Initial training failed: %v", err)
		}
	}()

	// Setup Router
	routeManager := NewRouteManager(pred, recordStore)
	routeManager.Setup()

	// Get server port
	port := getEnv("SERVER_PORT", "8061")
	addr := ":" + port

	// Start server
	server := &http.Server{
		Handler:      routeManager.Router,
		Addr:         addr,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Println("Shutdown signal received")

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
	}()

	log.Printf("Starting AgroSim server on %s...", addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// buildPredictor wires the predictor with its data sources. The database
// is optional: when it is unreachable the synthetic generator serves
// training data directly and the record store stays nil.
func buildPredictor(cfg predictor.Config) (*predictor.Predictor, *dataset.RecordStore) {
	modelStore := store.New(getEnv("MODEL_PATH", "data/model.json"))
	synthetic := dataset.NewSyntheticGenerator(cfg.Seed)

	var provider dataset.Provider = synthetic
	recordStore, err := dataset.NewRecordStore()
	if err != nil {
		log.Printf("⚠ Database unavailable, training from synthetic data only: %v", err)
		recordStore = nil
	} else if err := recordStore.Init(); err != nil {
		log.Printf("⚠ Database migration failed, training from synthetic data only: %v", err)
		recordStore.Close()
		recordStore = nil
	} else {
		provider = &dataset.CachedProvider{Store: recordStore, Source: synthetic}
	}

	return predictor.New(modelStore, provider, weather.NewClient(), cfg), recordStore
}
