package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "agrosim",
	Short: "AgroSim - Crop Yield Prediction Service",
	Long: `AgroSim predicts crop yields from climate conditions using a stacked
ensemble model trained on NASA POWER climate data and agricultural research.`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
