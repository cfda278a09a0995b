package normalize

import "math"

// Round2 rounds a dollar amount to 2 decimal places.
// Uses math.Round to avoid truncation bias.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
