// Command descant queues video files and produces audio-described
// soundtracks: it detects non-dialogue stretches, captions them with a
// vision model, synthesizes narration, and mixes the narration over a
// ducked copy of the original audio.
package main
