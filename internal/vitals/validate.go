package vitals

import (
	"fmt"
	"math"
	"strings"
	"time"
)

type bounds struct {
	name     string
	min, max float64
}

var (
	systolicBounds    = bounds{name: "systolic", min: 40, max: 300}
	diastolicBounds   = bounds{name: "diastolic", min: 20, max: 200}
	heartRateBounds   = bounds{name: "heartRate", min: 20, max: 250}
	temperatureBounds = bounds{name: "temperature", min: 80, max: 115}
)

func (b bounds) check(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("%w: %s must be a number", ErrInvalidReading, b.name)
	}
	if v < b.min || v > b.max {
		return fmt.Errorf("%w: %s must be between %g and %g", ErrInvalidReading, b.name, b.min, b.max)
	}
	return nil
}

// Validate rejects missing blood pressure values and implausible measurements.
func (in MetricsInput) Validate() error {
	if in.Systolic == nil || in.Diastolic == nil {
		return fmt.Errorf("%w: systolic and diastolic are required", ErrInvalidReading)
	}
	if err := systolicBounds.check(*in.Systolic); err != nil {
		return err
	}
	if err := diastolicBounds.check(*in.Diastolic); err != nil {
		return err
	}
	if in.HeartRate != nil {
		if err := heartRateBounds.check(*in.HeartRate); err != nil {
			return err
		}
	}
	if in.Temperature != nil {
		if err := temperatureBounds.check(*in.Temperature); err != nil {
			return err
		}
	}
	return nil
}

// ToReading validates the input and converts it to a Reading owned by userID.
// Blood pressure and heart rate are rounded to whole units.
func (in MetricsInput) ToReading(userID string) (Reading, error) {
	if err := in.Validate(); err != nil {
		return Reading{}, err
	}
	r := Reading{
		UserID:    userID,
		Timestamp: time.Now().UTC(),
		Systolic:  int(math.Round(*in.Systolic)),
		Diastolic: int(math.Round(*in.Diastolic)),
		Notes:     strings.TrimSpace(in.Notes),
	}
	if in.HeartRate != nil {
		hr := int(math.Round(*in.HeartRate))
		r.HeartRate = &hr
	}
	if in.Temperature != nil {
		temp := *in.Temperature
		r.Temperature = &temp
	}
	return r, nil
}
