// Package whisperx invokes WhisperX through uvx to locate speech in an
// analysis track.
//
// This package handles:
//   - WhisperX invocation with VAD and device selection
//   - JSON output parsing
//   - Conversion of transcript segments into speech intervals
//
// The primary use case is the detection stage, which complements the
// returned intervals to find narration windows.
package whisperx
