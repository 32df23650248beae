package timeline

import (
	"fmt"
	"sort"

	"descant/internal/services"
)

// Complement derives the non-dialogue windows for a track: the maximal set of
// disjoint intervals covering [0, totalDuration) minus the union of the
// provided speech intervals.
//
// The input does not need to be sorted; it is sorted by start time before the
// sweep. Overlapping and nested speech intervals are handled by advancing the
// cursor to the furthest end seen so far, and intervals extending past
// totalDuration are clipped implicitly because no window is emitted beyond
// the end. An empty input yields a single window covering the whole track;
// speech covering the whole track yields no windows. Zero-width gaps are
// omitted, not reported as errors.
func Complement(speech []Interval, totalDuration float64) ([]Interval, error) {
	if totalDuration <= 0 {
		return nil, services.Wrap(services.ErrInvalidInput, "timeline", "complement",
			fmt.Sprintf("total duration must be positive, got %.3f", totalDuration), nil)
	}
	if err := validateIntervals(speech); err != nil {
		return nil, err
	}

	sorted := make([]Interval, len(speech))
	copy(sorted, speech)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })

	var windows []Interval
	cursor := 0.0
	for _, iv := range sorted {
		if iv.Start > cursor {
			start := cursor
			end := iv.Start
			if end > totalDuration {
				end = totalDuration
			}
			if end > start {
				windows = append(windows, Interval{Start: start, End: end})
			}
		}
		if iv.End > cursor {
			cursor = iv.End
		}
		if cursor >= totalDuration {
			return windows, nil
		}
	}
	if cursor < totalDuration {
		windows = append(windows, Interval{Start: cursor, End: totalDuration})
	}
	return windows, nil
}
