// Package pcm implements the sample-level audio operations the mixer needs:
// a 16-bit PCM Track type, RIFF/WAVE decode and encode, decibel gain,
// sample-wise overlay with clamping, and format normalization (linear
// resampling plus mono/stereo conversion).
//
// This package has no descant-specific dependencies beyond the shared error
// markers and could be extracted as a standalone library.
package pcm
