package timeline

import "testing"

func TestFilterShortDropsSubThreshold(t *testing.T) {
	windows := []Interval{
		{Start: 0, End: 0.3},
		{Start: 1, End: 3},
		{Start: 5, End: 5.4},
		{Start: 6, End: 10},
	}
	got := FilterShort(windows, 0.5)
	want := []Interval{{Start: 1, End: 3}, {Start: 6, End: 10}}
	if !intervalsEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestFilterShortZeroThresholdKeepsAll(t *testing.T) {
	windows := []Interval{{Start: 0, End: 0.1}}
	if got := FilterShort(windows, 0); !intervalsEqual(got, windows) {
		t.Fatalf("got %v, want %v", got, windows)
	}
}

func TestMergeNearbyCoalesces(t *testing.T) {
	windows := []Interval{
		{Start: 0, End: 2},
		{Start: 3, End: 5},  // 1s gap, merged
		{Start: 9, End: 12}, // 4s gap, kept separate
	}
	got := MergeNearby(windows, 2.0)
	want := []Interval{{Start: 0, End: 5}, {Start: 9, End: 12}}
	if !intervalsEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestMergeNearbyEmpty(t *testing.T) {
	if got := MergeNearby(nil, 2.0); got != nil {
		t.Fatalf("expected nil, got %v", got)
	}
}

func TestMergeNearbyDoesNotShrink(t *testing.T) {
	// A window nested in the previous one must not pull the end backwards.
	windows := []Interval{{Start: 0, End: 10}, {Start: 2, End: 4}}
	got := MergeNearby(windows, 1.0)
	want := []Interval{{Start: 0, End: 10}}
	if !intervalsEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestIntervalLabel(t *testing.T) {
	iv := Interval{Start: 2.5, End: 4}
	if iv.Label() != "2.50-4.00" {
		t.Fatalf("unexpected label %q", iv.Label())
	}
}
