package extract

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// MixAudio extracts the full audio stream from a source file as the mixing
// master. The output is a stereo 44.1kHz 16-bit PCM WAV file.
func MixAudio(ctx context.Context, ffmpegBinary, source string, dest string) error {
	args := []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-i", source,
		"-vn",
		"-sn",
		"-dn",
		"-ac", "2",
		"-ar", "44100",
		"-c:a", "pcm_s16le",
		dest,
	}
	cmd := exec.CommandContext(ctx, ffmpegBinary, args...) //nolint:gosec
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("ffmpeg extract mix audio: %w: %s", err, strings.TrimSpace(string(output)))
	}
	return nil
}

// AnalysisAudio extracts the full audio stream from a source file for speech
// detection. The output is a mono 16kHz WAV file suitable for WhisperX.
func AnalysisAudio(ctx context.Context, ffmpegBinary, source string, dest string) error {
	args := []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-i", source,
		"-vn",
		"-sn",
		"-dn",
		"-ac", "1",
		"-ar", "16000",
		"-c:a", "pcm_s16le",
		dest,
	}
	cmd := exec.CommandContext(ctx, ffmpegBinary, args...) //nolint:gosec
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("ffmpeg extract analysis audio: %w: %s", err, strings.TrimSpace(string(output)))
	}
	return nil
}

// Frame extracts a single video frame at the given timestamp as a JPEG image.
func Frame(ctx context.Context, ffmpegBinary, source string, atSeconds float64, dest string) error {
	if atSeconds < 0 {
		return fmt.Errorf("extract frame: invalid timestamp %.3f", atSeconds)
	}
	args := []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-ss", fmt.Sprintf("%.3f", atSeconds),
		"-i", source,
		"-frames:v", "1",
		"-q:v", "2",
		dest,
	}
	cmd := exec.CommandContext(ctx, ffmpegBinary, args...) //nolint:gosec
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("ffmpeg extract frame: %w: %s", err, strings.TrimSpace(string(output)))
	}
	return nil
}

// Encode transcodes a WAV track into the requested delivery format. WAV output
// is copied through ffmpeg unchanged so all formats share one path.
func Encode(ctx context.Context, ffmpegBinary, source, format, bitrate, dest string) error {
	args := []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-i", source,
	}
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "mp3":
		args = append(args, "-c:a", "libmp3lame")
		if strings.TrimSpace(bitrate) != "" {
			args = append(args, "-b:a", bitrate)
		}
	case "flac":
		args = append(args, "-c:a", "flac")
	case "wav", "":
		args = append(args, "-c:a", "pcm_s16le")
	default:
		return fmt.Errorf("encode: unsupported format %q", format)
	}
	args = append(args, dest)
	cmd := exec.CommandContext(ctx, ffmpegBinary, args...) //nolint:gosec
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("ffmpeg encode: %w: %s", err, strings.TrimSpace(string(output)))
	}
	return nil
}
