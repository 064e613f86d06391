package geocode

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func f64(v float64) *float64 { return &v }

func TestDescribeAccuracy(t *testing.T) {
	tests := []struct {
		name     string
		accuracy *float64
		expected string
	}{
		{"unknown when absent", nil, "Unknown"},
		{"excellent band", f64(4), "Excellent (<5m)"},
		{"band bounds are inclusive", f64(5), "Excellent (<5m)"},
		{"very good band", f64(8), "Very Good (<10m)"},
		{"good band", f64(15), "Good (<20m)"},
		{"fair band upper bound", f64(50), "Fair (<50m)"},
		{"poor band", f64(99), "Poor (<100m)"},
		{"beyond all bands embeds the radius", f64(150), "Very Poor (150m)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DescribeAccuracy(tt.accuracy))
		})
	}
}

func TestDescribeAccuracyFirstBandWins(t *testing.T) {
	// A value inside the first band must not fall into a later one.
	assert.Equal(t, "Excellent (<5m)", DescribeAccuracy(f64(0.5)))
}
