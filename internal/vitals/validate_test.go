package vitals

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsInputValidate(t *testing.T) {
	tests := []struct {
		name    string
		in      MetricsInput
		wantErr bool
	}{
		{"valid minimal", MetricsInput{Systolic: floatPtr(120), Diastolic: floatPtr(80)}, false},
		{"valid full", MetricsInput{Systolic: floatPtr(120), Diastolic: floatPtr(80), HeartRate: floatPtr(72), Temperature: floatPtr(98.6)}, false},
		{"missing systolic", MetricsInput{Diastolic: floatPtr(80)}, true},
		{"missing diastolic", MetricsInput{Systolic: floatPtr(120)}, true},
		{"NaN systolic", MetricsInput{Systolic: floatPtr(math.NaN()), Diastolic: floatPtr(80)}, true},
		{"infinite diastolic", MetricsInput{Systolic: floatPtr(120), Diastolic: floatPtr(math.Inf(1))}, true},
		{"implausible systolic", MetricsInput{Systolic: floatPtr(400), Diastolic: floatPtr(80)}, true},
		{"negative diastolic", MetricsInput{Systolic: floatPtr(120), Diastolic: floatPtr(-5)}, true},
		{"implausible heart rate", MetricsInput{Systolic: floatPtr(120), Diastolic: floatPtr(80), HeartRate: floatPtr(0)}, true},
		{"celsius temperature", MetricsInput{Systolic: floatPtr(120), Diastolic: floatPtr(80), Temperature: floatPtr(37)}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.in.Validate()
			if tt.wantErr {
				assert.True(t, errors.Is(err, ErrInvalidReading), "expected ErrInvalidReading, got %v", err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestMetricsInputToReading(t *testing.T) {
	in := MetricsInput{
		Systolic:    floatPtr(120.6),
		Diastolic:   floatPtr(79.4),
		HeartRate:   floatPtr(72.5),
		Temperature: floatPtr(98.64),
		Notes:       "  after walk ",
	}
	r, err := in.ToReading("user-1")
	require.NoError(t, err)

	assert.Equal(t, "user-1", r.UserID)
	assert.Equal(t, 121, r.Systolic)
	assert.Equal(t, 79, r.Diastolic)
	require.NotNil(t, r.HeartRate)
	assert.Equal(t, 73, *r.HeartRate)
	require.NotNil(t, r.Temperature)
	assert.InDelta(t, 98.64, *r.Temperature, 0.0001)
	assert.Equal(t, "after walk", r.Notes)
	assert.False(t, r.Timestamp.IsZero())
}

func TestMetricsInputToReadingInvalid(t *testing.T) {
	_, err := MetricsInput{}.ToReading("user-1")
	assert.ErrorIs(t, err, ErrInvalidReading)
}
