package weather

import (
	"fmt"
	"math"
)

// Round rounds half away from zero, so 7.5 becomes 8 and -7.5 becomes -8.
func Round(v float64) int {
	return int(math.Round(v))
}

// Average returns the rounded mean of a day's maximum and minimum.
func Average(maxC, minC float64) int {
	return Round((maxC + minC) / 2)
}

// FormatCelsius renders a whole-degree temperature, e.g. "21°C".
func FormatCelsius(c int) string {
	return fmt.Sprintf("%d°C", c)
}
