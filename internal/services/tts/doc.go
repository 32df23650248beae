// Package tts synthesizes narration clips through an external piper-style
// command and re-times them to fit their windows. Clips that run long are
// sped up with ffmpeg's atempo filter, never by more than 30%.
package tts
