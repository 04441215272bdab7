package acmi

import (
	"math"
	"strconv"
)

const (
	framePrecision     = 2
	referencePrecision = 7
)

// Round rounds v to places fractional digits, half away from zero.
func Round(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}

// formatFloat writes the shortest decimal that parses back to v, without an exponent.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
