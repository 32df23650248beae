// Package mix splices narration clips into an original soundtrack.
//
// The Mixer processes each narration window independently against a shared
// read-only snapshot of the original track: attenuate the background span,
// gain and truncate the clip, overlay with clamping, then splice the results
// back in ascending start order. Per-window failures are reported and the
// window passes through unmodified; only an unreadable original or an
// inconsistent (overlapping) window set is fatal.
package mix
