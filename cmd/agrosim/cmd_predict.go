package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/Chirayu-blip/nasa-agrosim/pkg/models"
	"github.com/Chirayu-blip/nasa-agrosim/pkg/predictor"
)

var predictScenario models.Scenario
var predictFromLocation bool

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Predict crop yield for a climate scenario",
	Long: `Predict crop yield for a climate scenario. With --location the
climate fields are filled from recent NASA POWER weather for the given
coordinates instead of the flags.`,
	RunE: runPredict,
}

func init() {
	f := predictCmd.Flags()
	f.StringVar(&predictScenario.Crop, "crop", "wheat", "crop to predict")
	f.IntVar(&predictScenario.Month, "month", 6, "month of the growing season")
	f.Float64Var(&predictScenario.Latitude, "lat", 0, "latitude")
	f.Float64Var(&predictScenario.Longitude, "lon", 0, "longitude")
	f.Float64Var(&predictScenario.TempAvg, "temp-avg", 20, "average temperature in °C")
	f.Float64Var(&predictScenario.TempMin, "temp-min", 12, "minimum temperature in °C")
	f.Float64Var(&predictScenario.TempMax, "temp-max", 28, "maximum temperature in °C")
	f.Float64Var(&predictScenario.Precipitation, "precipitation", 100, "monthly precipitation in mm")
	f.Float64Var(&predictScenario.Humidity, "humidity", 60, "relative humidity in %")
	f.Float64Var(&predictScenario.SolarRadiation, "solar", 18, "solar radiation in MJ/m²/day")
	f.Float64Var(&predictScenario.WindSpeed, "wind", 5, "wind speed in m/s")
	f.Float64Var(&predictScenario.SoilQuality, "soil", 0.7, "soil quality between 0 and 1")
	f.IntVar(&predictScenario.GrowingDays, "growing-days", 100, "length of the growing season in days")
	f.BoolVar(&predictFromLocation, "location", false, "fetch climate from NASA POWER for --lat/--lon")
	rootCmd.AddCommand(predictCmd)
}

func runPredict(cmd *cobra.Command, args []string) error {
	pred, recordStore := buildPredictor(predictor.DefaultConfig())
	if recordStore != nil {
		defer recordStore.Close()
	}

	var result *models.PredictionResult
	var err error
	if predictFromLocation {
		result, err = pred.PredictAtLocation(cmd.Context(),
			predictScenario.Crop, predictScenario.Latitude, predictScenario.Longitude, predictScenario)
	} else {
		result, err = pred.Predict(cmd.Context(), predictScenario)
	}
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}
