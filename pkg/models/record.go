package models

import (
	"fmt"
	"math"
)

// TrainingRecord is one row of historical climate and yield data, either
// fetched from an external source or produced by the synthetic generator.
type TrainingRecord struct {
	Crop           string  `json:"crop"`
	CropID         int     `json:"crop_id"`
	Year           int     `json:"year"`
	Month          int     `json:"month"`
	Latitude       float64 `json:"latitude"`
	Longitude      float64 `json:"longitude"`
	TempAvg        float64 `json:"temp_avg"`         // °C
	TempMin        float64 `json:"temp_min"`         // °C
	TempMax        float64 `json:"temp_max"`         // °C
	Precipitation  float64 `json:"precipitation"`    // mm
	Humidity       float64 `json:"humidity"`         // %
	SolarRadiation float64 `json:"solar_radiation"`  // MJ/m²/day
	WindSpeed      float64 `json:"wind_speed"`       // m/s
	SoilQuality    float64 `json:"soil_quality"`     // 0-1
	GrowingDays    int     `json:"growing_days"`
	Yield          float64 `json:"yield"` // kg/hectare
}

// Valid reports whether the record is usable for training: the yield must
// be positive and the required climate fields must be finite numbers.
func (r TrainingRecord) Valid() bool {
	if r.Yield <= 0 {
		return false
	}
	required := []float64{
		r.TempAvg, r.TempMin, r.TempMax,
		r.Precipitation, r.Humidity, r.SolarRadiation, r.WindSpeed,
	}
	for _, v := range required {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// FilterValid drops records that fail validation before training.
func FilterValid(records []TrainingRecord) []TrainingRecord {
	valid := make([]TrainingRecord, 0, len(records))
	for _, r := range records {
		if r.Valid() {
			valid = append(valid, r)
		}
	}
	return valid
}

// Scenario describes one inference request: the same fields as a
// TrainingRecord minus the yield.
type Scenario struct {
	Crop           string  `json:"crop"`
	Year           int     `json:"year,omitempty"`
	Month          int     `json:"month"`
	Latitude       float64 `json:"latitude"`
	Longitude      float64 `json:"longitude"`
	TempAvg        float64 `json:"temp_avg"`
	TempMin        float64 `json:"temp_min"`
	TempMax        float64 `json:"temp_max"`
	Precipitation  float64 `json:"precipitation"`
	Humidity       float64 `json:"humidity"`
	SolarRadiation float64 `json:"solar_radiation"`
	WindSpeed      float64 `json:"wind_speed"`
	SoilQuality    float64 `json:"soil_quality"`
	GrowingDays    int     `json:"growing_days"`
}

// ApplyDefaults fills unset management fields with the same defaults the
// original prediction API assumes.
func (s *Scenario) ApplyDefaults() {
	if s.Month == 0 {
		s.Month = 6
	}
	if s.GrowingDays == 0 {
		s.GrowingDays = 100
	}
	if s.SoilQuality == 0 {
		s.SoilQuality = 0.7
	}
	if s.WindSpeed == 0 {
		s.WindSpeed = 5.0
	}
}

// Validate checks the scenario against the crop parameter table and basic
// field ranges. Crop validation happens before any model inference.
func (s Scenario) Validate() error {
	if _, err := CropParams(s.Crop); err != nil {
		return err
	}
	if s.Month < 1 || s.Month > 12 {
		return fmt.Errorf("month must be between 1 and 12, got %d", s.Month)
	}
	if s.Latitude < -90 || s.Latitude > 90 {
		return fmt.Errorf("latitude must be between -90 and 90, got %f", s.Latitude)
	}
	if s.Longitude < -180 || s.Longitude > 180 {
		return fmt.Errorf("longitude must be between -180 and 180, got %f", s.Longitude)
	}
	if s.SoilQuality < 0 || s.SoilQuality > 1 {
		return fmt.Errorf("soil_quality must be between 0 and 1, got %f", s.SoilQuality)
	}
	return nil
}

// Record converts the scenario into the record shape used by the feature
// engineer, with the yield left unset.
func (s Scenario) Record() (TrainingRecord, error) {
	cropID, err := CropID(s.Crop)
	if err != nil {
		return TrainingRecord{}, err
	}
	return TrainingRecord{
		Crop:           s.Crop,
		CropID:         cropID,
		Year:           s.Year,
		Month:          s.Month,
		Latitude:       s.Latitude,
		Longitude:      s.Longitude,
		TempAvg:        s.TempAvg,
		TempMin:        s.TempMin,
		TempMax:        s.TempMax,
		Precipitation:  s.Precipitation,
		Humidity:       s.Humidity,
		SolarRadiation: s.SolarRadiation,
		WindSpeed:      s.WindSpeed,
		SoilQuality:    s.SoilQuality,
		GrowingDays:    s.GrowingDays,
	}, nil
}
