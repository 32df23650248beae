package services

import (
	"errors"
	"fmt"
	"strings"

	"descant/internal/queue"
)

var (
	ErrExternalTool  = errors.New("external tool error")
	ErrValidation    = errors.New("validation error")
	ErrConfiguration = errors.New("configuration error")
	ErrNotFound      = errors.New("not found")
	ErrTimeout       = errors.New("timeout")
	ErrTransient     = errors.New("transient failure")

	// ErrInvalidInput marks malformed core inputs: inverted interval bounds,
	// non-positive durations, unreadable base tracks. Fatal for the operation
	// that raised it.
	ErrInvalidInput = errors.New("invalid input")

	// ErrWindowProcessing marks a recoverable per-window mixing failure. The
	// window passes through unmodified and the mix continues.
	ErrWindowProcessing = errors.New("window processing error")

	// ErrExport marks a failure writing or encoding the final track.
	ErrExport = errors.New("export error")
)

// Wrap builds an error message that includes stage context while tagging it
// with the provided marker for later status classification. The marker should
// be one of the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// FailureStatus maps a stage error to the queue status the workflow manager
// should persist after the stage fails. Validation, configuration, not-found,
// and invalid-input errors need operator attention rather than a blind retry.
func FailureStatus(err error) queue.Status {
	switch {
	case errors.Is(err, ErrValidation),
		errors.Is(err, ErrConfiguration),
		errors.Is(err, ErrNotFound),
		errors.Is(err, ErrInvalidInput):
		return queue.StatusReview
	default:
		return queue.StatusFailed
	}
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
