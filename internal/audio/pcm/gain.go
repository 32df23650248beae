package pcm

import "math"

// GainFactor converts a decibel adjustment to an amplitude multiplier:
// 10^(db/20). Zero dB is unity gain.
func GainFactor(db float64) float64 {
	return math.Pow(10, db/20.0)
}

// ApplyGain scales every sample by the amplitude factor for db, clamping to
// the int16 range. The track is modified in place and returned for chaining.
func ApplyGain(track *Track, db float64) *Track {
	if db == 0 {
		return track
	}
	factor := GainFactor(db)
	for i, sample := range track.Samples {
		track.Samples[i] = clampSample(float64(sample) * factor)
	}
	return track
}

// Attenuate reduces the track's amplitude by db decibels. A positive value
// lowers the volume; a negative value boosts it. The sign convention matches
// the mixer's background_attenuation_db setting.
func Attenuate(track *Track, db float64) *Track {
	return ApplyGain(track, -db)
}

// Overlay adds src's samples onto dst starting at the given frame offset,
// clamping sums to the int16 range. Samples of src that would land past the
// end of dst are dropped. Both tracks must share sample rate and channel
// count; callers normalize first.
func Overlay(dst, src *Track, atFrame int) {
	if atFrame < 0 {
		atFrame = 0
	}
	base := atFrame * dst.Channels
	for i, sample := range src.Samples {
		j := base + i
		if j >= len(dst.Samples) {
			break
		}
		dst.Samples[j] = clampSample(float64(dst.Samples[j]) + float64(sample))
	}
}

// RMS computes the root-mean-square amplitude of the samples, a measure
// used by tests to verify ducking levels.
func RMS(samples []int16) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, sample := range samples {
		v := float64(sample)
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(samples)))
}

func clampSample(v float64) int16 {
	switch {
	case v > math.MaxInt16:
		return math.MaxInt16
	case v < math.MinInt16:
		return math.MinInt16
	default:
		return int16(v)
	}
}
