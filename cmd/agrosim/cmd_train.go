package main

import (
	"encoding/json"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Chirayu-blip/nasa-agrosim/pkg/predictor"
)

var trainSkipCV bool

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Train the yield prediction model",
	Long: `Train the stacked ensemble on cached or synthetic climate data and
persist the resulting model artifact.`,
	RunE: runTrain,
}

func init() {
	trainCmd.Flags().BoolVar(&trainSkipCV, "skip-cv", false, "skip the cross-validation stability estimate")
	rootCmd.AddCommand(trainCmd)
}

func runTrain(cmd *cobra.Command, args []string) error {
	cfg := predictor.DefaultConfig()
	cfg.Training.SkipCV = trainSkipCV

	pred, recordStore := buildPredictor(cfg)
	if recordStore != nil {
		defer recordStore.Close()
	}

	start := time.Now()
	metrics, err := pred.Train(cmd.Context())
	if err != nil {
		return err
	}
	log.Printf("✓ Training finished in %s", time.Since(start).Round(time.Millisecond))

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(metrics)
}
