package mix

import (
	"descant/internal/audio/pcm"
	"descant/internal/timeline"
)

// Window is a non-dialogue interval that may carry a narration clip. The
// clip is either an in-memory track (Clip) or a path to a WAV file
// (ClipPath); Clip wins when both are set. A window with neither passes
// through unmodified.
type Window struct {
	Span     timeline.Interval
	Clip     *pcm.Track
	ClipPath string
}

// HasClip reports whether the window carries any narration reference.
func (w Window) HasClip() bool {
	return w.Clip != nil || w.ClipPath != ""
}

// Report describes the outcome of mixing a single window, sufficient for the
// caller to log or retry.
type Report struct {
	Start         float64 `json:"start"`
	End           float64 `json:"end"`
	Applied       bool    `json:"applied"`
	FailureReason string  `json:"failure_reason,omitempty"`
}

// AppliedCount tallies the windows that received narration.
func AppliedCount(reports []Report) int {
	count := 0
	for _, r := range reports {
		if r.Applied {
			count++
		}
	}
	return count
}
