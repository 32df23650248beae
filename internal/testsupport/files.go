package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"descant/internal/audio/pcm"
)

// WriteFile fills the target path with the requested number of bytes using a
// simple repeating pattern. A size <= 0 writes a single byte.
func WriteFile(t testing.TB, path string, size int64) {
	t.Helper()

	if size <= 0 {
		size = 1
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	data := make([]byte, size)
	for i := range data {
		data[i] = byte(i % 251)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// WriteWAV writes a constant-amplitude PCM track of the given shape to path.
func WriteWAV(t testing.TB, path string, seconds float64, sampleRate, channels int, amplitude int16) *pcm.Track {
	t.Helper()

	frames := int(seconds * float64(sampleRate))
	samples := make([]int16, frames*channels)
	for i := range samples {
		samples[i] = amplitude
	}
	track := &pcm.Track{Samples: samples, SampleRate: sampleRate, Channels: channels}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := pcm.WriteWAVFile(path, track); err != nil {
		t.Fatalf("write wav %s: %v", path, err)
	}
	return track
}
