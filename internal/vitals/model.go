// Package vitals classifies blood pressure, heart rate and body temperature readings
// into risk bands and stores the readings a user submits.
package vitals

import "time"

// Category is a blood-pressure band, ordered from most to least severe.
type Category string

const (
	CategoryCrisis   Category = "hypertensive-crisis"
	CategoryHigh     Category = "high"
	CategoryElevated Category = "elevated"
	CategoryNormal   Category = "normal"
	CategoryLow      Category = "low"
)

// rank orders categories; lower is worse.
func (c Category) rank() int {
	switch c {
	case CategoryCrisis:
		return 0
	case CategoryHigh:
		return 1
	case CategoryElevated:
		return 2
	case CategoryLow:
		return 3
	case CategoryNormal:
		return 4
	default:
		return 5
	}
}

// WorseThan reports whether c is a more severe band than other.
func (c Category) WorseThan(other Category) bool {
	return c.rank() < other.rank()
}

// Level is the band of a single scalar vital such as heart rate.
type Level string

const (
	LevelHigh   Level = "high"
	LevelNormal Level = "normal"
	LevelLow    Level = "low"
)

// Severity grades how urgently a reading needs attention.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityModerate Severity = "moderate"
	SeverityLow      Severity = "low"
)

// Reading is a single timestamped set of vitals submitted by a user. Readings are
// immutable once stored.
type Reading struct {
	ID          string    `json:"id" dynamodbav:"id"`
	UserID      string    `json:"user_id" dynamodbav:"userId"`
	Timestamp   time.Time `json:"timestamp" dynamodbav:"timestamp"`
	Systolic    int       `json:"systolic" dynamodbav:"systolic"`
	Diastolic   int       `json:"diastolic" dynamodbav:"diastolic"`
	HeartRate   *int      `json:"heart_rate,omitempty" dynamodbav:"heartRate,omitempty"`
	Temperature *float64  `json:"temperature,omitempty" dynamodbav:"temperature,omitempty"`
	Notes       string    `json:"notes,omitempty" dynamodbav:"notes,omitempty"`
}

// Assessment is derived from a Reading on every read and never persisted.
type Assessment struct {
	Category          Category `json:"category"`
	Severity          Severity `json:"severity"`
	RiskBand          string   `json:"riskBand"`
	Advice            string   `json:"advice"`
	Recommendations   []string `json:"recommendations"`
	HeartRateStatus   Level    `json:"heartRateStatus,omitempty"`
	TemperatureStatus Level    `json:"temperatureStatus,omitempty"`
}

// MetricsInput is the wire form of a reading before validation. Pointer fields
// distinguish absent values from zero.
type MetricsInput struct {
	Systolic    *float64 `json:"systolic"`
	Diastolic   *float64 `json:"diastolic"`
	HeartRate   *float64 `json:"heartRate,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`
	Notes       string   `json:"notes,omitempty"`
}

// Issue is one factor contributing to a RiskScore.
type Issue struct {
	Type        string `json:"type"`
	Severity    string `json:"severity"` // danger | warning | info
	Description string `json:"description"`
}

// RiskLevel buckets a RiskScore.
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskModerate RiskLevel = "moderate"
	RiskHigh     RiskLevel = "high"
)

// RiskScore is the additive risk estimate for a reading.
type RiskScore struct {
	Score  int       `json:"score"`
	Level  RiskLevel `json:"level"`
	Issues []Issue   `json:"issues"`
}

// Summary aggregates a user's reading history for the monitoring dashboard.
type Summary struct {
	Count          int              `json:"count"`
	AvgSystolic    float64          `json:"avgSystolic"`
	AvgDiastolic   float64          `json:"avgDiastolic"`
	AvgHeartRate   *float64         `json:"avgHeartRate,omitempty"`
	AvgTemperature *float64         `json:"avgTemperature,omitempty"`
	Latest         *Reading         `json:"latest,omitempty"`
	WorstCategory  Category         `json:"worstCategory,omitempty"`
	CategoryCounts map[Category]int `json:"categoryCounts"`
	LatestRisk     *RiskScore       `json:"latestRisk,omitempty"`
}
