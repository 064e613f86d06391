package geocode

import "fmt"

// accuracyBands lists inclusive upper bounds in meters; the first matching
// band wins.
var accuracyBands = []struct {
	limit int
	label string
}{
	{5, "Excellent"},
	{10, "Very Good"},
	{20, "Good"},
	{50, "Fair"},
	{100, "Poor"},
}

// DescribeAccuracy maps an accuracy radius in meters to a human-readable
// label. A nil radius means the fix quality is unknown.
func DescribeAccuracy(accuracy *float64) string {
	if accuracy == nil {
		return "Unknown"
	}
	for _, band := range accuracyBands {
		if *accuracy <= float64(band.limit) {
			return fmt.Sprintf("%s (<%dm)", band.label, band.limit)
		}
	}
	return fmt.Sprintf("Very Poor (%.0fm)", *accuracy)
}
