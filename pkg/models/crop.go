package models

import (
	"errors"
	"fmt"
)

// ErrUnsupportedCrop is returned when a scenario references a crop that is
// not part of the crop parameter table.
var ErrUnsupportedCrop = errors.New("unsupported crop")

// CropParameters holds the static agronomic reference data for one crop.
// Values are based on FAO publications and agricultural research; they are
// used both by the synthetic data generator and by risk-factor analysis.
type CropParameters struct {
	Name            string  `json:"name"`
	OptimalTempLow  float64 `json:"optimal_temp_low"`  // °C
	OptimalTempHigh float64 `json:"optimal_temp_high"` // °C
	TempRangeLow    float64 `json:"temp_range_low"`    // °C
	TempRangeHigh   float64 `json:"temp_range_high"`   // °C
	WaterNeedLow    float64 `json:"water_need_low"`    // mm per season
	WaterNeedHigh   float64 `json:"water_need_high"`   // mm per season
	GrowingDaysLow  int     `json:"growing_days_low"`
	GrowingDaysHigh int     `json:"growing_days_high"`
	BaseYield       float64 `json:"base_yield"` // kg/hectare
	YieldStd        float64 `json:"yield_std"`  // kg/hectare
	TempSensitivity float64 `json:"temp_sensitivity"`
	WaterSensitivity float64 `json:"water_sensitivity"`
	FrostTolerance  float64 `json:"frost_tolerance"` // °C
	HeatTolerance   float64 `json:"heat_tolerance"`  // °C
}

// OptimalTemp returns the midpoint of the optimal temperature band.
func (p CropParameters) OptimalTemp() float64 {
	return (p.OptimalTempLow + p.OptimalTempHigh) / 2
}

// MonthlyWaterNeed returns the approximate monthly water requirement,
// derived from the seasonal need midpoint spread over four months.
func (p CropParameters) MonthlyWaterNeed() float64 {
	return (p.WaterNeedLow + p.WaterNeedHigh) / 2 / 4
}

// cropOrder fixes the integer encoding of crops. The position of a crop in
// this list is its crop_id feature value, so the order must never change
// for a given trained model.
var cropOrder = []string{
	"wheat",
	"corn",
	"rice",
	"soybean",
	"potato",
	"cotton",
	"sugarcane",
}

var cropTable = map[string]CropParameters{
	"wheat": {
		Name:             "wheat",
		OptimalTempLow:   15, OptimalTempHigh: 20,
		TempRangeLow:     3, TempRangeHigh: 35,
		WaterNeedLow:     450, WaterNeedHigh: 650,
		GrowingDaysLow:   100, GrowingDaysHigh: 130,
		BaseYield:        3500, YieldStd: 800,
		TempSensitivity:  0.08, WaterSensitivity: 0.12,
		FrostTolerance:   -5, HeatTolerance: 32,
	},
	"corn": {
		Name:             "corn",
		OptimalTempLow:   20, OptimalTempHigh: 30,
		TempRangeLow:     10, TempRangeHigh: 40,
		WaterNeedLow:     500, WaterNeedHigh: 800,
		GrowingDaysLow:   90, GrowingDaysHigh: 120,
		BaseYield:        9000, YieldStd: 2000,
		TempSensitivity:  0.10, WaterSensitivity: 0.15,
		FrostTolerance:   0, HeatTolerance: 38,
	},
	"rice": {
		Name:             "rice",
		OptimalTempLow:   25, OptimalTempHigh: 35,
		TempRangeLow:     15, TempRangeHigh: 40,
		WaterNeedLow:     1200, WaterNeedHigh: 2000,
		GrowingDaysLow:   110, GrowingDaysHigh: 150,
		BaseYield:        5500, YieldStd: 1200,
		TempSensitivity:  0.06, WaterSensitivity: 0.20,
		FrostTolerance:   10, HeatTolerance: 40,
	},
	"soybean": {
		Name:             "soybean",
		OptimalTempLow:   20, OptimalTempHigh: 30,
		TempRangeLow:     10, TempRangeHigh: 40,
		WaterNeedLow:     450, WaterNeedHigh: 700,
		GrowingDaysLow:   80, GrowingDaysHigh: 120,
		BaseYield:        2800, YieldStd: 600,
		TempSensitivity:  0.07, WaterSensitivity: 0.10,
		FrostTolerance:   2, HeatTolerance: 35,
	},
	"potato": {
		Name:             "potato",
		OptimalTempLow:   15, OptimalTempHigh: 20,
		TempRangeLow:     7, TempRangeHigh: 30,
		WaterNeedLow:     500, WaterNeedHigh: 700,
		GrowingDaysLow:   90, GrowingDaysHigh: 120,
		BaseYield:        35000, YieldStd: 8000,
		TempSensitivity:  0.09, WaterSensitivity: 0.11,
		FrostTolerance:   -2, HeatTolerance: 28,
	},
	"cotton": {
		Name:             "cotton",
		OptimalTempLow:   25, OptimalTempHigh: 35,
		TempRangeLow:     15, TempRangeHigh: 45,
		WaterNeedLow:     700, WaterNeedHigh: 1300,
		GrowingDaysLow:   150, GrowingDaysHigh: 180,
		BaseYield:        1800, YieldStd: 400,
		TempSensitivity:  0.05, WaterSensitivity: 0.18,
		FrostTolerance:   5, HeatTolerance: 42,
	},
	"sugarcane": {
		Name:             "sugarcane",
		OptimalTempLow:   25, OptimalTempHigh: 35,
		TempRangeLow:     15, TempRangeHigh: 40,
		WaterNeedLow:     1500, WaterNeedHigh: 2500,
		GrowingDaysLow:   270, GrowingDaysHigh: 365,
		BaseYield:        70000, YieldStd: 15000,
		TempSensitivity:  0.04, WaterSensitivity: 0.22,
		FrostTolerance:   5, HeatTolerance: 40,
	},
}

// SupportedCrops returns the crop names in their canonical encoding order.
func SupportedCrops() []string {
	crops := make([]string, len(cropOrder))
	copy(crops, cropOrder)
	return crops
}

// CropParams looks up the parameter table entry for a crop.
func CropParams(crop string) (CropParameters, error) {
	params, ok := cropTable[crop]
	if !ok {
		return CropParameters{}, fmt.Errorf("%w: %q", ErrUnsupportedCrop, crop)
	}
	return params, nil
}

// CropID returns the integer feature encoding for a crop.
func CropID(crop string) (int, error) {
	for i, name := range cropOrder {
		if name == crop {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnsupportedCrop, crop)
}
