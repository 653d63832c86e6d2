package vitals

// FallbackAdvice is shown when an analysis cannot be produced.
const FallbackAdvice = "Unable to analyze vital signs at this moment."

type band struct {
	label           string
	severity        Severity
	advice          string
	recommendations []string
}

var bands = map[Category]band{
	CategoryCrisis: {
		label:    "Hypertensive Crisis",
		severity: SeverityCritical,
		advice:   "Your blood pressure is dangerously high. Seek emergency medical care immediately.",
		recommendations: []string{
			"Call emergency services or go to the nearest emergency department now",
			"Do not wait to see if the reading comes down on its own",
			"Report symptoms such as chest pain, shortness of breath, vision changes or weakness",
		},
	},
	CategoryHigh: {
		label:    "Stage 2 Hypertension",
		severity: SeverityHigh,
		advice:   "Your blood pressure is high. Contact your healthcare provider soon to discuss treatment.",
		recommendations: []string{
			"Schedule an appointment with your healthcare provider",
			"Recheck your blood pressure after resting for five minutes",
			"Reduce sodium intake and avoid alcohol and tobacco",
		},
	},
	CategoryElevated: {
		label:    "Stage 1 Hypertension",
		severity: SeverityModerate,
		advice:   "Your blood pressure is above the normal range. Lifestyle changes and regular monitoring are recommended.",
		recommendations: []string{
			"Monitor your blood pressure regularly",
			"Aim for at least 150 minutes of moderate exercise per week",
			"Follow a heart-healthy diet low in salt",
		},
	},
	CategoryNormal: {
		label:    "Normal",
		severity: SeverityLow,
		advice:   "Your blood pressure is within the normal range. Keep up your healthy habits.",
		recommendations: []string{
			"Continue regular physical activity",
			"Maintain a balanced diet",
			"Check your blood pressure at least once a year",
		},
	},
	CategoryLow: {
		label:    "Low Blood Pressure",
		severity: SeverityModerate,
		advice:   "Your blood pressure is lower than normal. Seek care if you feel dizzy, faint or confused.",
		recommendations: []string{
			"Drink plenty of fluids",
			"Stand up slowly to avoid dizziness",
			"Talk to your healthcare provider if symptoms persist",
		},
	},
}

var heartRateAdvice = map[Level]string{
	LevelHigh: "Your heart rate is elevated; rest and recheck, and seek care if it stays above 100 bpm at rest",
	LevelLow:  "Your heart rate is low; seek care if you feel faint, tired or short of breath",
}

var temperatureAdvice = map[Level]string{
	LevelHigh: "You have a fever; stay hydrated, rest and contact a provider if it exceeds 103°F",
	LevelLow:  "Your temperature is below normal; warm up and recheck, and seek care if it keeps dropping",
}

func bandFor(c Category) band {
	if b, ok := bands[c]; ok {
		return b
	}
	return bands[CategoryLow]
}

// RiskBandLabel returns the display label for a blood-pressure category.
func RiskBandLabel(c Category) string {
	return bandFor(c).label
}
