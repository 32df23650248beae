package timeline

// FilterShort drops windows shorter than minDuration seconds. Narrating a
// sub-second gap is pointless, so the detection stage filters them out before
// planning descriptions. A non-positive minDuration returns the input copied
// unchanged.
func FilterShort(windows []Interval, minDuration float64) []Interval {
	out := make([]Interval, 0, len(windows))
	for _, w := range windows {
		if minDuration > 0 && w.Duration() < minDuration {
			continue
		}
		out = append(out, w)
	}
	return out
}

// MergeNearby coalesces sorted windows separated by less than maxGap seconds
// into single windows, so one narration can speak across a brief dialogue
// interjection instead of being chopped in two. The input must be sorted by
// start time, which Complement guarantees.
func MergeNearby(windows []Interval, maxGap float64) []Interval {
	if len(windows) == 0 {
		return nil
	}
	out := make([]Interval, 0, len(windows))
	current := windows[0]
	for _, w := range windows[1:] {
		if w.Start-current.End < maxGap {
			if w.End > current.End {
				current.End = w.End
			}
			continue
		}
		out = append(out, current)
		current = w
	}
	return append(out, current)
}
