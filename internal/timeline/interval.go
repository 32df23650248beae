package timeline

import (
	"fmt"

	"descant/internal/services"
)

// Interval is a half-open time range [Start, End) in seconds.
type Interval struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Duration returns the interval length in seconds.
func (iv Interval) Duration() float64 {
	return iv.End - iv.Start
}

// Valid reports whether the interval has positive duration.
func (iv Interval) Valid() bool {
	return iv.Start < iv.End
}

// Label renders the interval as "start-end" with centisecond precision,
// the form used in logs and per-window reports.
func (iv Interval) Label() string {
	return fmt.Sprintf("%.2f-%.2f", iv.Start, iv.End)
}

// validateIntervals rejects any interval whose bounds are inverted or
// degenerate. Zero-length detections are treated as malformed input rather
// than silently absorbed, so the caller learns the detector misbehaved.
func validateIntervals(intervals []Interval) error {
	for i, iv := range intervals {
		if !iv.Valid() {
			return services.Wrap(services.ErrInvalidInput, "timeline", "validate",
				fmt.Sprintf("interval %d has start %.3f >= end %.3f", i, iv.Start, iv.End), nil)
		}
	}
	return nil
}
