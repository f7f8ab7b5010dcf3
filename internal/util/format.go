package util

import (
	"fmt"
	"math"
	"time"
)

// FormatDuration renders a duration the way run summaries print it:
// "1h 2m 3s", dropping leading zero units.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int64(d.Round(time.Second).Seconds())
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	switch {
	case h > 0:
		return fmt.Sprintf("%dh %dm %ds", h, m, s)
	case m > 0:
		return fmt.Sprintf("%dm %ds", m, s)
	default:
		return fmt.Sprintf("%ds", s)
	}
}

// MBFromBytes converts a byte count to megabytes rounded to two decimals.
func MBFromBytes(n int64) float64 {
	return RoundTwoDecimals(float64(n) / (1024 * 1024))
}

// RoundTwoDecimals rounds half away from zero to two decimal places.
func RoundTwoDecimals(f float64) float64 {
	return math.Round(f*100) / 100
}
