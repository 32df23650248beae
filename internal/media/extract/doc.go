// Package extract wraps the ffmpeg invocations descant needs: pulling the
// mixing master and the 16kHz analysis copy out of a source file, grabbing
// key frames for captioning, and encoding the finished track into its
// delivery format.
package extract
