package deps

import (
	"fmt"
	"os/exec"
	"strings"

	"descant/internal/config"
)

// Requirement defines an external dependency descant relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// Requirements returns the external binaries the pipeline invokes, resolved
// against the supplied configuration.
func Requirements(cfg *config.Config) []Requirement {
	ttsCommand := "piper"
	if cfg != nil && strings.TrimSpace(cfg.Narration.Command) != "" {
		ttsCommand = cfg.Narration.Command
	}
	return []Requirement{
		{Name: "FFmpeg", Command: "ffmpeg", Description: "audio extraction, frame capture, and export encoding"},
		{Name: "FFprobe", Command: "ffprobe", Description: "container inspection"},
		{Name: "uvx", Command: "uvx", Description: "runs WhisperX for speech detection"},
		{Name: "TTS", Command: ttsCommand, Description: "narration synthesis"},
	}
}

// CheckBinaries evaluates the provided requirements and reports availability.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		if cmd == "" {
			status.Available = false
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		if _, err := exec.LookPath(cmd); err != nil {
			status.Available = false
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		status.Available = true
		results = append(results, status)
	}
	return results
}

// MissingRequired returns the non-optional dependencies that are unavailable.
func MissingRequired(statuses []Status) []Status {
	var missing []Status
	for _, status := range statuses {
		if !status.Optional && !status.Available {
			missing = append(missing, status)
		}
	}
	return missing
}
