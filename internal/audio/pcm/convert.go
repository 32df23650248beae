package pcm

import (
	"fmt"

	"descant/internal/services"
)

// Convert returns a track matching the target sample rate and channel count.
// If the source already matches, it is returned unchanged (no copy).
// Resampling happens before channel conversion so stereo data is never
// resampled when the target is mono.
func Convert(track *Track, sampleRate, channels int) (*Track, error) {
	if err := track.Validate(); err != nil {
		return nil, err
	}
	if sampleRate <= 0 || channels < 1 || channels > 2 {
		return nil, services.Wrap(services.ErrInvalidInput, "pcm", "convert",
			fmt.Sprintf("unsupported target format %dHz/%dch", sampleRate, channels), nil)
	}
	if track.SampleRate == sampleRate && track.Channels == channels {
		return track, nil
	}

	out := track
	if out.SampleRate != sampleRate {
		out = resample(out, sampleRate)
	}
	if out.Channels != channels {
		if channels == 2 {
			out = monoToStereo(out)
		} else {
			out = stereoToMono(out)
		}
	}
	return out, nil
}

// resample converts the track to dstRate using linear interpolation across
// each channel independently.
func resample(track *Track, dstRate int) *Track {
	srcFrames := track.Frames()
	dstFrames := int(int64(srcFrames) * int64(dstRate) / int64(track.SampleRate))
	out := &Track{
		Samples:    make([]int16, dstFrames*track.Channels),
		SampleRate: dstRate,
		Channels:   track.Channels,
	}
	if dstFrames == 0 || srcFrames == 0 {
		return out
	}

	ratio := float64(track.SampleRate) / float64(dstRate)
	for frame := 0; frame < dstFrames; frame++ {
		srcPos := float64(frame) * ratio
		srcIdx := int(srcPos)
		frac := srcPos - float64(srcIdx)
		for ch := 0; ch < track.Channels; ch++ {
			s0 := track.Samples[srcIdx*track.Channels+ch]
			s1 := s0
			if srcIdx+1 < srcFrames {
				s1 = track.Samples[(srcIdx+1)*track.Channels+ch]
			}
			interpolated := float64(s0)*(1-frac) + float64(s1)*frac
			out.Samples[frame*track.Channels+ch] = clampSample(interpolated)
		}
	}
	return out
}

// monoToStereo duplicates each mono sample into a left+right pair.
func monoToStereo(track *Track) *Track {
	out := &Track{
		Samples:    make([]int16, len(track.Samples)*2),
		SampleRate: track.SampleRate,
		Channels:   2,
	}
	for i, sample := range track.Samples {
		out.Samples[i*2] = sample
		out.Samples[i*2+1] = sample
	}
	return out
}

// stereoToMono averages each left+right pair. int32 arithmetic avoids
// overflow before the clamp.
func stereoToMono(track *Track) *Track {
	frames := track.Frames()
	out := &Track{
		Samples:    make([]int16, frames),
		SampleRate: track.SampleRate,
		Channels:   1,
	}
	for i := 0; i < frames; i++ {
		left := int32(track.Samples[i*2])
		right := int32(track.Samples[i*2+1])
		out.Samples[i] = int16((left + right) / 2)
	}
	return out
}
