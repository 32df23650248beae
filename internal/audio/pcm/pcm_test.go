package pcm

import (
	"bytes"
	"errors"
	"math"
	"path/filepath"
	"testing"

	"descant/internal/services"
)

// constantTrack builds a track whose samples all carry the same amplitude.
func constantTrack(amplitude int16, frames, rate, channels int) *Track {
	samples := make([]int16, frames*channels)
	for i := range samples {
		samples[i] = amplitude
	}
	return &Track{Samples: samples, SampleRate: rate, Channels: channels}
}

func TestTrackDuration(t *testing.T) {
	track := constantTrack(100, 44100, 44100, 2)
	if track.Duration() != 1.0 {
		t.Fatalf("expected 1s, got %v", track.Duration())
	}
	if track.Frames() != 44100 {
		t.Fatalf("expected 44100 frames, got %d", track.Frames())
	}
}

func TestSliceClampsBounds(t *testing.T) {
	track := constantTrack(5, 100, 1000, 1)
	sub := track.Slice(-10, 500)
	if sub.Frames() != 100 {
		t.Fatalf("expected full track, got %d frames", sub.Frames())
	}
	empty := track.Slice(60, 40)
	if empty.Frames() != 0 {
		t.Fatalf("expected empty slice, got %d frames", empty.Frames())
	}
}

func TestGainFactor(t *testing.T) {
	if GainFactor(0) != 1.0 {
		t.Fatalf("0 dB should be unity, got %v", GainFactor(0))
	}
	// -20 dB is a factor of 10 reduction.
	if math.Abs(GainFactor(-20)-0.1) > 1e-9 {
		t.Fatalf("-20 dB should be 0.1, got %v", GainFactor(-20))
	}
}

func TestAttenuateReducesAmplitude(t *testing.T) {
	track := constantTrack(10000, 100, 44100, 1)
	Attenuate(track, 20)
	// 20 dB of reduction cuts amplitude to a tenth.
	if got := track.Samples[0]; got != 1000 {
		t.Fatalf("expected 1000 after 20 dB attenuation, got %d", got)
	}
}

func TestAttenuateNegativeBoosts(t *testing.T) {
	track := constantTrack(100, 10, 44100, 1)
	Attenuate(track, -20)
	if got := track.Samples[0]; got != 1000 {
		t.Fatalf("expected 1000 after -20 dB attenuation, got %d", got)
	}
}

func TestOverlayClampsInsteadOfWrapping(t *testing.T) {
	dst := constantTrack(30000, 10, 44100, 1)
	src := constantTrack(30000, 10, 44100, 1)
	Overlay(dst, src, 0)
	for i, sample := range dst.Samples {
		if sample != math.MaxInt16 {
			t.Fatalf("sample %d: expected clamp to %d, got %d", i, math.MaxInt16, sample)
		}
	}
}

func TestOverlayPastEndIsDropped(t *testing.T) {
	dst := constantTrack(0, 10, 44100, 1)
	src := constantTrack(100, 20, 44100, 1)
	Overlay(dst, src, 5)
	if dst.Samples[4] != 0 || dst.Samples[5] != 100 {
		t.Fatalf("unexpected overlay boundary: %v", dst.Samples)
	}
	if len(dst.Samples) != 10 {
		t.Fatalf("dst grew: %d samples", len(dst.Samples))
	}
}

func TestWAVRoundTrip(t *testing.T) {
	track := &Track{
		Samples:    []int16{0, 100, -100, 32767, -32768, 7},
		SampleRate: 22050,
		Channels:   2,
	}
	var buf bytes.Buffer
	if err := EncodeWAV(&buf, track); err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := DecodeWAV(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.SampleRate != 22050 || decoded.Channels != 2 {
		t.Fatalf("format mismatch: %dHz/%dch", decoded.SampleRate, decoded.Channels)
	}
	if len(decoded.Samples) != len(track.Samples) {
		t.Fatalf("sample count mismatch: %d vs %d", len(decoded.Samples), len(track.Samples))
	}
	for i := range track.Samples {
		if decoded.Samples[i] != track.Samples[i] {
			t.Fatalf("sample %d: %d != %d", i, decoded.Samples[i], track.Samples[i])
		}
	}
}

func TestDecodeWAVRejectsGarbage(t *testing.T) {
	_, err := DecodeWAV(bytes.NewReader([]byte("definitely not audio data")))
	if !errors.Is(err, services.ErrInvalidInput) {
		t.Fatalf("expected invalid input error, got %v", err)
	}
}

func TestDecodeWAVRejectsUnsupportedBitDepth(t *testing.T) {
	// Hand-built header advertising 8-bit samples.
	var buf bytes.Buffer
	buf.WriteString("RIFF")
	buf.Write([]byte{36, 0, 0, 0})
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	buf.Write([]byte{16, 0, 0, 0})
	buf.Write([]byte{1, 0})             // PCM
	buf.Write([]byte{1, 0})             // mono
	buf.Write([]byte{0x44, 0xAC, 0, 0}) // 44100
	buf.Write([]byte{0x44, 0xAC, 0, 0}) // byte rate (unchecked)
	buf.Write([]byte{1, 0})             // block align
	buf.Write([]byte{8, 0})             // 8-bit
	buf.WriteString("data")
	buf.Write([]byte{0, 0, 0, 0})

	_, err := DecodeWAV(&buf)
	if !errors.Is(err, services.ErrInvalidInput) {
		t.Fatalf("expected invalid input error, got %v", err)
	}
}

func TestWriteWAVFileAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.wav")
	track := constantTrack(42, 100, 8000, 1)
	if err := WriteWAVFile(path, track); err != nil {
		t.Fatalf("write: %v", err)
	}
	decoded, err := ReadWAVFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if decoded.Frames() != 100 {
		t.Fatalf("expected 100 frames, got %d", decoded.Frames())
	}
}

func TestConvertFastPathSharesBuffer(t *testing.T) {
	track := constantTrack(1, 10, 44100, 2)
	converted, err := Convert(track, 44100, 2)
	if err != nil {
		t.Fatal(err)
	}
	if converted != track {
		t.Fatal("matching format should return the track unchanged")
	}
}

func TestConvertResamplesDuration(t *testing.T) {
	track := constantTrack(500, 16000, 16000, 1)
	converted, err := Convert(track, 44100, 1)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(converted.Duration()-1.0) > 0.01 {
		t.Fatalf("duration drifted: %v", converted.Duration())
	}
	if converted.SampleRate != 44100 {
		t.Fatalf("unexpected rate %d", converted.SampleRate)
	}
}

func TestConvertMonoToStereo(t *testing.T) {
	track := &Track{Samples: []int16{1, 2, 3}, SampleRate: 8000, Channels: 1}
	converted, err := Convert(track, 8000, 2)
	if err != nil {
		t.Fatal(err)
	}
	want := []int16{1, 1, 2, 2, 3, 3}
	for i := range want {
		if converted.Samples[i] != want[i] {
			t.Fatalf("sample %d: got %d want %d", i, converted.Samples[i], want[i])
		}
	}
}

func TestConvertStereoToMonoAverages(t *testing.T) {
	track := &Track{Samples: []int16{100, 200, -100, 100}, SampleRate: 8000, Channels: 2}
	converted, err := Convert(track, 8000, 1)
	if err != nil {
		t.Fatal(err)
	}
	if converted.Samples[0] != 150 || converted.Samples[1] != 0 {
		t.Fatalf("unexpected averages: %v", converted.Samples)
	}
}

func TestRMSConstantSignal(t *testing.T) {
	track := constantTrack(1000, 100, 8000, 1)
	if got := RMS(track.Samples); math.Abs(got-1000) > 1e-9 {
		t.Fatalf("expected RMS 1000, got %v", got)
	}
}
