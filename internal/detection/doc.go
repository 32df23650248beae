// Package detection runs WhisperX over the analysis track, complements the
// speech it finds against the source duration, and refines the resulting
// gaps into the narration windows the rest of the pipeline fills in.
package detection
