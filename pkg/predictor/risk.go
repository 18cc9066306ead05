package predictor

import (
	"fmt"
	"math"
	"sort"

	"github.com/Chirayu-blip/nasa-agrosim/pkg/models"
)

// analyzeRisks checks a scenario against the crop's agronomic tolerances
// and returns the identified risks sorted by descending severity. All
// severities are clamped to [0,1] and rounded to two decimals.
func analyzeRisks(params models.CropParameters, s models.Scenario) []models.RiskFactor {
	var risks []models.RiskFactor

	if s.TempMax > params.HeatTolerance {
		severity := round2(math.Min(1.0, (s.TempMax-params.HeatTolerance)/10))
		risks = append(risks, models.RiskFactor{
			Factor:   "Heat Stress",
			Severity: severity,
			Description: fmt.Sprintf("Maximum temperature (%.1f°C) exceeds crop tolerance (%g°C)",
				s.TempMax, params.HeatTolerance),
			Impact: impact(severity, 30),
		})
	}

	if s.TempMin < params.FrostTolerance {
		severity := round2(math.Min(1.0, (params.FrostTolerance-s.TempMin)/10))
		risks = append(risks, models.RiskFactor{
			Factor:   "Frost Damage",
			Severity: severity,
			Description: fmt.Sprintf("Minimum temperature (%.1f°C) below frost tolerance (%g°C)",
				s.TempMin, params.FrostTolerance),
			Impact: impact(severity, 40),
		})
	}

	waterNeed := params.MonthlyWaterNeed()
	if s.Precipitation < waterNeed*0.5 {
		severity := round2(math.Min(1.0, 1-s.Precipitation/(waterNeed*0.5)))
		risks = append(risks, models.RiskFactor{
			Factor:      "Drought Stress",
			Severity:    severity,
			Description: fmt.Sprintf("Precipitation (%.1fmm) critically low", s.Precipitation),
			Impact:      impact(severity, 35),
		})
	}

	if s.Precipitation > waterNeed*2 {
		severity := round2(math.Min(1.0, (s.Precipitation/waterNeed-2)/2))
		risks = append(risks, models.RiskFactor{
			Factor:      "Waterlogging Risk",
			Severity:    severity,
			Description: "Excess precipitation may cause root damage",
			Impact:      impact(severity, 20),
		})
	}

	optTemp := params.OptimalTemp()
	if math.Abs(s.TempAvg-optTemp) > 10 {
		severity := round2(math.Min(1.0, (math.Abs(s.TempAvg-optTemp)-10)/10))
		risks = append(risks, models.RiskFactor{
			Factor:   "Suboptimal Temperature",
			Severity: severity,
			Description: fmt.Sprintf("Temperature (%.1f°C) far from optimal (%.1f°C)",
				s.TempAvg, optTemp),
			Impact: impact(severity, 15),
		})
	}

	sort.SliceStable(risks, func(i, j int) bool {
		return risks[i].Severity > risks[j].Severity
	})
	return risks
}

// recommendations maps the identified risks to actionable advice, capped
// at five entries.
func recommendations(risks []models.RiskFactor, tempAvg float64) []string {
	var recs []string

	for _, risk := range risks {
		switch {
		case risk.Factor == "Heat Stress" && risk.Severity > 0.3:
			recs = append(recs,
				"Consider shade netting or mulching to reduce soil temperature",
				"Increase irrigation frequency during peak heat hours")
		case risk.Factor == "Frost Damage" && risk.Severity > 0.3:
			recs = append(recs,
				"Apply frost blankets or row covers before cold nights",
				"Consider wind machines or overhead irrigation for frost protection")
		case risk.Factor == "Drought Stress" && risk.Severity > 0.3:
			recs = append(recs,
				"Implement drip irrigation to maximize water efficiency",
				"Apply mulch to reduce evaporation",
				"Consider drought-resistant varieties for future planting")
		case risk.Factor == "Waterlogging Risk" && risk.Severity > 0.3:
			recs = append(recs,
				"Improve field drainage systems",
				"Reduce irrigation and allow soil to dry between watering")
		case risk.Factor == "Suboptimal Temperature":
			if tempAvg < 15 {
				recs = append(recs, "Consider greenhouse or high-tunnel cultivation")
			} else {
				recs = append(recs, "Adjust planting dates to optimize growing season")
			}
		}
	}

	if len(risks) == 0 {
		recs = append(recs,
			"Conditions are favorable - maintain current management practices",
			"Monitor weather forecasts for any sudden changes")
	}

	if len(recs) > 5 {
		recs = recs[:5]
	}
	return recs
}

func impact(severity float64, weight int) string {
	return fmt.Sprintf("-%d%% potential yield loss", int(severity*float64(weight)))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
