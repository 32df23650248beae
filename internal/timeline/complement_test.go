package timeline

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"descant/internal/services"
)

func intervalsEqual(a, b []Interval) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if math.Abs(a[i].Start-b[i].Start) > 1e-9 || math.Abs(a[i].End-b[i].End) > 1e-9 {
			return false
		}
	}
	return true
}

func TestComplementEmptyInput(t *testing.T) {
	got, err := Complement(nil, 10.0)
	if err != nil {
		t.Fatalf("complement: %v", err)
	}
	want := []Interval{{Start: 0, End: 10}}
	if !intervalsEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestComplementFullCoverage(t *testing.T) {
	got, err := Complement([]Interval{{Start: 0, End: 10}}, 10.0)
	if err != nil {
		t.Fatalf("complement: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no windows, got %v", got)
	}
}

func TestComplementGaps(t *testing.T) {
	speech := []Interval{{Start: 2, End: 4}, {Start: 6, End: 7}}
	got, err := Complement(speech, 10.0)
	if err != nil {
		t.Fatalf("complement: %v", err)
	}
	want := []Interval{{Start: 0, End: 2}, {Start: 4, End: 6}, {Start: 7, End: 10}}
	if !intervalsEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestComplementOverlappingAndNestedSpeech(t *testing.T) {
	speech := []Interval{
		{Start: 1, End: 5},
		{Start: 2, End: 3}, // nested
		{Start: 4, End: 6}, // overlapping
	}
	got, err := Complement(speech, 8.0)
	if err != nil {
		t.Fatalf("complement: %v", err)
	}
	want := []Interval{{Start: 0, End: 1}, {Start: 6, End: 8}}
	if !intervalsEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestComplementToleratesUnsortedInput(t *testing.T) {
	sorted := []Interval{{Start: 1, End: 2}, {Start: 3, End: 4}, {Start: 6, End: 8}}
	want, err := Complement(sorted, 10.0)
	if err != nil {
		t.Fatal(err)
	}

	shuffled := make([]Interval, len(sorted))
	copy(shuffled, sorted)
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 20; i++ {
		rng.Shuffle(len(shuffled), func(a, b int) {
			shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
		})
		got, err := Complement(shuffled, 10.0)
		if err != nil {
			t.Fatal(err)
		}
		if !intervalsEqual(got, want) {
			t.Fatalf("shuffled input changed output: got %v, want %v", got, want)
		}
	}
}

func TestComplementClipsSpeechPastEnd(t *testing.T) {
	got, err := Complement([]Interval{{Start: 8, End: 15}}, 10.0)
	if err != nil {
		t.Fatal(err)
	}
	want := []Interval{{Start: 0, End: 8}}
	if !intervalsEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestComplementSpeechEntirelyPastEnd(t *testing.T) {
	got, err := Complement([]Interval{{Start: 12, End: 15}}, 10.0)
	if err != nil {
		t.Fatal(err)
	}
	// The gap before the out-of-range detection is clipped to the track.
	want := []Interval{{Start: 0, End: 10}}
	if !intervalsEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestComplementRejectsDegenerateInterval(t *testing.T) {
	_, err := Complement([]Interval{{Start: 2, End: 4}, {Start: 4, End: 4}, {Start: 6, End: 7}}, 10.0)
	if !errors.Is(err, services.ErrInvalidInput) {
		t.Fatalf("expected invalid input error, got %v", err)
	}
}

func TestComplementRejectsInvertedInterval(t *testing.T) {
	_, err := Complement([]Interval{{Start: 5, End: 3}}, 10.0)
	if !errors.Is(err, services.ErrInvalidInput) {
		t.Fatalf("expected invalid input error, got %v", err)
	}
}

func TestComplementRejectsNonPositiveDuration(t *testing.T) {
	for _, dur := range []float64{0, -1} {
		if _, err := Complement(nil, dur); !errors.Is(err, services.ErrInvalidInput) {
			t.Fatalf("duration %v: expected invalid input error, got %v", dur, err)
		}
	}
}

func TestComplementTotality(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	const totalDuration = 100.0
	for trial := 0; trial < 50; trial++ {
		var speech []Interval
		for i := 0; i < rng.Intn(12); i++ {
			start := rng.Float64() * totalDuration
			end := start + rng.Float64()*20 + 0.01
			speech = append(speech, Interval{Start: start, End: end})
		}
		windows, err := Complement(speech, totalDuration)
		if err != nil {
			t.Fatal(err)
		}

		// Windows are sorted, disjoint, and within [0, totalDuration].
		prevEnd := 0.0
		covered := 0.0
		for _, w := range windows {
			if !w.Valid() {
				t.Fatalf("trial %d: emitted invalid window %v", trial, w)
			}
			if w.Start < prevEnd-1e-9 {
				t.Fatalf("trial %d: windows overlap or unsorted: %v", trial, windows)
			}
			if w.End > totalDuration+1e-9 {
				t.Fatalf("trial %d: window past track end: %v", trial, w)
			}
			prevEnd = w.End
			covered += w.Duration()
		}

		// Union of windows plus union of clipped speech covers the track.
		speechCovered := unionLength(speech, totalDuration)
		if math.Abs(covered+speechCovered-totalDuration) > 1e-6 {
			t.Fatalf("trial %d: coverage %.6f + speech %.6f != %.1f",
				trial, covered, speechCovered, totalDuration)
		}
	}
}

// unionLength measures the union of intervals clipped to [0, limit].
func unionLength(intervals []Interval, limit float64) float64 {
	merged, err := Complement(intervals, limit)
	if err != nil {
		return math.NaN()
	}
	total := limit
	for _, w := range merged {
		total -= w.Duration()
	}
	return total
}
