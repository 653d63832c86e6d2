package vitals

// Heart rate and temperature bands. Temperatures are in degrees Fahrenheit.
const (
	heartRateLowerBound = 60
	heartRateUpperBound = 100

	temperatureLowerBound = 97.7
	temperatureUpperBound = 99.5
)

// ClassifyBloodPressure maps a systolic/diastolic pair to a band. Bands are checked
// from most to least severe and the first match wins.
func ClassifyBloodPressure(systolic, diastolic int) Category {
	switch {
	case systolic >= 180 || diastolic >= 120:
		return CategoryCrisis
	case systolic >= 140 || diastolic >= 90:
		return CategoryHigh
	case systolic >= 130 || diastolic >= 80:
		return CategoryElevated
	case systolic >= 90 && systolic <= 129 && diastolic >= 60 && diastolic <= 79:
		return CategoryNormal
	default:
		return CategoryLow
	}
}

// ClassifyHeartRate bands a resting heart rate in beats per minute.
func ClassifyHeartRate(bpm int) Level {
	switch {
	case bpm > heartRateUpperBound:
		return LevelHigh
	case bpm < heartRateLowerBound:
		return LevelLow
	default:
		return LevelNormal
	}
}

// ClassifyTemperature bands a body temperature in °F.
func ClassifyTemperature(fahrenheit float64) Level {
	switch {
	case fahrenheit > temperatureUpperBound:
		return LevelHigh
	case fahrenheit < temperatureLowerBound:
		return LevelLow
	default:
		return LevelNormal
	}
}

// Assess derives the full assessment for a reading.
func Assess(r Reading) Assessment {
	category := ClassifyBloodPressure(r.Systolic, r.Diastolic)
	band := bandFor(category)

	a := Assessment{
		Category:        category,
		Severity:        band.severity,
		RiskBand:        band.label,
		Advice:          band.advice,
		Recommendations: append([]string(nil), band.recommendations...),
	}

	if r.HeartRate != nil {
		a.HeartRateStatus = ClassifyHeartRate(*r.HeartRate)
		if a.HeartRateStatus != LevelNormal {
			a.Recommendations = append(a.Recommendations, heartRateAdvice[a.HeartRateStatus])
			a.Severity = raise(a.Severity, SeverityModerate)
		}
	}
	if r.Temperature != nil {
		a.TemperatureStatus = ClassifyTemperature(*r.Temperature)
		if a.TemperatureStatus != LevelNormal {
			a.Recommendations = append(a.Recommendations, temperatureAdvice[a.TemperatureStatus])
			a.Severity = raise(a.Severity, SeverityModerate)
		}
	}
	return a
}

func severityRank(s Severity) int {
	switch s {
	case SeverityCritical:
		return 3
	case SeverityHigh:
		return 2
	case SeverityModerate:
		return 1
	default:
		return 0
	}
}

// raise returns the more severe of current and floor.
func raise(current, floor Severity) Severity {
	if severityRank(floor) > severityRank(current) {
		return floor
	}
	return current
}
