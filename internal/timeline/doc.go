// Package timeline computes non-dialogue windows from speech detections.
//
// Complement inverts a set of speech intervals against the track duration to
// find the stretches eligible for narration. FilterShort and MergeNearby
// refine the raw complement into windows worth narrating. All functions are
// pure and operate on float seconds; persistence and detection live elsewhere.
package timeline
