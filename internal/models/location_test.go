package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func f64(v float64) *float64 { return &v }

func TestValidateCoordinates(t *testing.T) {
	tests := []struct {
		name     string
		lat, lon float64
		wantErr  error
	}{
		{"valid pair", 12.9, 77.6, nil},
		{"boundary latitudes", 90, 77.6, nil},
		{"negative boundary", -90, -180, nil},
		{"latitude above range", 90.1, 0, ErrCoordinateRange},
		{"latitude below range", -91, 10, ErrCoordinateRange},
		{"longitude above range", 10, 180.5, ErrCoordinateRange},
		{"longitude below range", 10, -181, ErrCoordinateRange},
		{"null island is no fix", 0, 0, ErrCoordinateNoFix},
		{"zero latitude alone is fine", 0, 77.6, nil},
		{"zero longitude alone is fine", 12.9, 0, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCoordinates(tt.lat, tt.lon)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestLocationUpdateValidate(t *testing.T) {
	valid := LocationUpdate{Latitude: f64(12.9), Longitude: f64(77.6)}
	require.NoError(t, valid.Validate())

	missing := LocationUpdate{Latitude: f64(12.9)}
	assert.Error(t, missing.Validate())

	outOfRange := LocationUpdate{Latitude: f64(95), Longitude: f64(77.6)}
	assert.ErrorIs(t, outOfRange.Validate(), ErrCoordinateRange)
}

func TestLocationUpdateIsHighAccuracy(t *testing.T) {
	assert.True(t, LocationUpdate{Accuracy: f64(50)}.IsHighAccuracy())
	assert.False(t, LocationUpdate{Accuracy: f64(51)}.IsHighAccuracy())
	assert.False(t, LocationUpdate{}.IsHighAccuracy())
}
