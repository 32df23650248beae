// Package narration turns window descriptions into speech clips using an
// external piper-style synthesizer, re-timing clips that overrun their
// window by up to 30% so narration never spills into dialogue.
package narration
