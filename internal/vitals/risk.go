package vitals

import "fmt"

// ScoreRisk adds up risk points from each abnormal vital. A score of 5 or more is high
// risk and 2 or more is moderate.
func ScoreRisk(r Reading) RiskScore {
	issues := []Issue{}
	score := 0

	switch category := ClassifyBloodPressure(r.Systolic, r.Diastolic); category {
	case CategoryCrisis:
		score += 5
		issues = append(issues, Issue{
			Type:        "blood_pressure",
			Severity:    "danger",
			Description: fmt.Sprintf("Blood pressure %d/%d is in the hypertensive crisis range.", r.Systolic, r.Diastolic),
		})
	case CategoryHigh:
		score += 3
		issues = append(issues, Issue{
			Type:        "blood_pressure",
			Severity:    "warning",
			Description: fmt.Sprintf("Blood pressure %d/%d indicates stage 2 hypertension.", r.Systolic, r.Diastolic),
		})
	case CategoryElevated:
		score += 2
		issues = append(issues, Issue{
			Type:        "blood_pressure",
			Severity:    "info",
			Description: fmt.Sprintf("Blood pressure %d/%d is above the normal range.", r.Systolic, r.Diastolic),
		})
	case CategoryLow:
		score += 2
		issues = append(issues, Issue{
			Type:        "blood_pressure",
			Severity:    "warning",
			Description: fmt.Sprintf("Blood pressure %d/%d is below the normal range.", r.Systolic, r.Diastolic),
		})
	}

	if r.HeartRate != nil {
		switch ClassifyHeartRate(*r.HeartRate) {
		case LevelHigh:
			score += 2
			issues = append(issues, Issue{
				Type:        "heart_rate",
				Severity:    "warning",
				Description: fmt.Sprintf("Heart rate %d bpm is above 100 (tachycardia).", *r.HeartRate),
			})
		case LevelLow:
			score++
			issues = append(issues, Issue{
				Type:        "heart_rate",
				Severity:    "info",
				Description: fmt.Sprintf("Heart rate %d bpm is below 60 (bradycardia).", *r.HeartRate),
			})
		}
	}

	if r.Temperature != nil {
		switch ClassifyTemperature(*r.Temperature) {
		case LevelHigh:
			score += 2
			issues = append(issues, Issue{
				Type:        "temperature",
				Severity:    "warning",
				Description: fmt.Sprintf("Temperature %.1f°F indicates a fever.", *r.Temperature),
			})
		case LevelLow:
			score++
			issues = append(issues, Issue{
				Type:        "temperature",
				Severity:    "info",
				Description: fmt.Sprintf("Temperature %.1f°F is below normal.", *r.Temperature),
			})
		}
	}

	return RiskScore{
		Score:  score,
		Level:  riskLevel(score),
		Issues: issues,
	}
}

func riskLevel(score int) RiskLevel {
	switch {
	case score >= 5:
		return RiskHigh
	case score >= 2:
		return RiskModerate
	default:
		return RiskLow
	}
}
