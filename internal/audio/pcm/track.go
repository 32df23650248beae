package pcm

import (
	"fmt"

	"descant/internal/services"
)

// Track holds interleaved signed 16-bit PCM samples at a fixed sample rate
// and channel count. Duration is derived, never stored.
type Track struct {
	Samples    []int16
	SampleRate int
	Channels   int
}

// Frames returns the number of sample frames (one sample per channel).
func (t *Track) Frames() int {
	if t.Channels <= 0 {
		return 0
	}
	return len(t.Samples) / t.Channels
}

// Duration returns the track length in seconds.
func (t *Track) Duration() float64 {
	if t.SampleRate <= 0 {
		return 0
	}
	return float64(t.Frames()) / float64(t.SampleRate)
}

// FrameAt converts a time offset in seconds to a frame index, clamped to the
// track bounds.
func (t *Track) FrameAt(seconds float64) int {
	if seconds <= 0 {
		return 0
	}
	frame := int(seconds * float64(t.SampleRate))
	if max := t.Frames(); frame > max {
		frame = max
	}
	return frame
}

// Slice returns a copy of the frames in [startFrame, endFrame). Bounds are
// clamped; an empty range yields an empty track with the same format.
func (t *Track) Slice(startFrame, endFrame int) *Track {
	frames := t.Frames()
	if startFrame < 0 {
		startFrame = 0
	}
	if endFrame > frames {
		endFrame = frames
	}
	if endFrame < startFrame {
		endFrame = startFrame
	}
	samples := make([]int16, (endFrame-startFrame)*t.Channels)
	copy(samples, t.Samples[startFrame*t.Channels:endFrame*t.Channels])
	return &Track{Samples: samples, SampleRate: t.SampleRate, Channels: t.Channels}
}

// Clone returns a deep copy of the track.
func (t *Track) Clone() *Track {
	samples := make([]int16, len(t.Samples))
	copy(samples, t.Samples)
	return &Track{Samples: samples, SampleRate: t.SampleRate, Channels: t.Channels}
}

// Validate checks that the track has a usable format.
func (t *Track) Validate() error {
	if t == nil {
		return services.Wrap(services.ErrInvalidInput, "pcm", "validate", "track is nil", nil)
	}
	if t.SampleRate <= 0 {
		return services.Wrap(services.ErrInvalidInput, "pcm", "validate",
			fmt.Sprintf("sample rate must be positive, got %d", t.SampleRate), nil)
	}
	if t.Channels < 1 || t.Channels > 2 {
		return services.Wrap(services.ErrInvalidInput, "pcm", "validate",
			fmt.Sprintf("unsupported channel count %d", t.Channels), nil)
	}
	if len(t.Samples)%t.Channels != 0 {
		return services.Wrap(services.ErrInvalidInput, "pcm", "validate",
			fmt.Sprintf("sample count %d not divisible by channel count %d", len(t.Samples), t.Channels), nil)
	}
	return nil
}
