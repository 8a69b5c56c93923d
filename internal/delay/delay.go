// Package delay classifies how late a trip looks against its planned
// arrival time.
package delay

import "time"

// Color is the delay severity bucket.
type Color string

const (
	ColorNone   Color = ""
	ColorGreen  Color = "green"
	ColorYellow Color = "yellow"
	ColorRed    Color = "red"
)

// Classify returns the whole minutes of delay between the planned arrival
// and the observation instant, and the severity bucket. A trip without a
// planned ETA cannot be late: both results are zero-valued. Negative
// minutes mean early or on-time and are preserved.
func Classify(plannedETA *time.Time, observedAt time.Time) (*int, Color) {
	if plannedETA == nil {
		return nil, ColorNone
	}

	d := observedAt.Sub(*plannedETA)
	minutes := int(d / time.Minute)
	// floor, not truncation toward zero
	if d < 0 && d%time.Minute != 0 {
		minutes--
	}

	switch {
	case minutes <= 5:
		return &minutes, ColorGreen
	case minutes <= 20:
		return &minutes, ColorYellow
	default:
		return &minutes, ColorRed
	}
}
