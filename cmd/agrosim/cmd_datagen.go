package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/Chirayu-blip/nasa-agrosim/pkg/dataset"
)

var (
	datagenSamples int
	datagenSeed    int64
	datagenOut     string
)

var datagenCmd = &cobra.Command{
	Use:   "datagen",
	Short: "Generate synthetic training records",
	Long: `Generate synthetic climate and yield records. Records are stored in
the database, or written to a JSON file when --out is given.`,
	RunE: runDatagen,
}

func init() {
	datagenCmd.Flags().IntVar(&datagenSamples, "samples", 5000, "number of records to generate")
	datagenCmd.Flags().Int64Var(&datagenSeed, "seed", 42, "random seed")
	datagenCmd.Flags().StringVar(&datagenOut, "out", "", "write records to a JSON file instead of the database")
	rootCmd.AddCommand(datagenCmd)
}

func runDatagen(cmd *cobra.Command, args []string) error {
	generator := dataset.NewSyntheticGenerator(datagenSeed)
	records, err := generator.Records(cmd.Context(), datagenSamples)
	if err != nil {
		return fmt.Errorf("failed to generate records: %w", err)
	}

	if datagenOut != "" {
		file, err := os.Create(datagenOut)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer file.Close()

		encoder := json.NewEncoder(file)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(records); err != nil {
			return fmt.Errorf("failed to write records: %w", err)
		}
		log.Printf("✓ Wrote %d records to %s", len(records), datagenOut)
		return nil
	}

	recordStore, err := dataset.NewRecordStore()
	if err != nil {
		return fmt.Errorf("database unavailable, use --out to write a file instead: %w", err)
	}
	defer recordStore.Close()

	if err := recordStore.Init(); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	if err := recordStore.SaveRecords(cmd.Context(), records); err != nil {
		return fmt.Errorf("failed to store records: %w", err)
	}

	return nil
}
