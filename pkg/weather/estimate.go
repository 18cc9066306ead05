package weather

import "math"

// EstimateFromLatitude returns a rough climate estimate when the NASA
// POWER API is unreachable. Temperature follows a simple latitude
// gradient; the remaining fields use global averages.
func EstimateFromLatitude(latitude, longitude float64) *Observation {
	tempAvg := 28 - 0.4*math.Abs(latitude)
	return &Observation{
		Latitude:         latitude,
		Longitude:        longitude,
		TempAvg:          tempAvg,
		TempMin:          tempAvg - 10,
		TempMax:          tempAvg + 10,
		AvgPrecipitation: 100,
		Humidity:         60,
		SolarRadiation:   20,
		WindSpeed:        5,
		Source:           "latitude estimate",
	}
}
