package queue

import (
	"strings"
	"time"
)

// Status represents the lifecycle of a queue item.
type Status string

const (
	StatusPending    Status = "pending"
	StatusExtracting Status = "extracting"
	StatusExtracted  Status = "extracted"
	StatusDetecting  Status = "detecting"
	StatusDetected   Status = "detected"
	StatusDescribing Status = "describing"
	StatusDescribed  Status = "described"
	StatusNarrating  Status = "narrating"
	StatusNarrated   Status = "narrated"
	StatusMixing     Status = "mixing"
	StatusMixed      Status = "mixed"
	StatusExporting  Status = "exporting"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
	StatusReview     Status = "review"
)

// DaemonStopReason is the error message set when items are failed due to daemon shutdown.
const DaemonStopReason = "Daemon stopped"

var allStatuses = []Status{
	StatusPending,
	StatusExtracting,
	StatusExtracted,
	StatusDetecting,
	StatusDetected,
	StatusDescribing,
	StatusDescribed,
	StatusNarrating,
	StatusNarrated,
	StatusMixing,
	StatusMixed,
	StatusExporting,
	StatusCompleted,
	StatusFailed,
	StatusReview,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

var processingStatuses = map[Status]struct{}{
	StatusExtracting: {},
	StatusDetecting:  {},
	StatusDescribing: {},
	StatusNarrating:  {},
	StatusMixing:     {},
	StatusExporting:  {},
}

type statusTransition struct {
	from Status
	to   Status
}

// stageRollbackTransitions return an interrupted item to the start of the
// stage it was in.
var stageRollbackTransitions = []statusTransition{
	{from: StatusExtracting, to: StatusPending},
	{from: StatusDetecting, to: StatusExtracted},
	{from: StatusDescribing, to: StatusDetected},
	{from: StatusNarrating, to: StatusDescribed},
	{from: StatusMixing, to: StatusNarrated},
	{from: StatusExporting, to: StatusMixed},
}

// HealthSummary describes aggregated queue counts per key lifecycle states.
type HealthSummary struct {
	Total      int
	Pending    int
	Processing int
	Review     int
	Failed     int
	Completed  int
}

// Item represents a queue item persisted in SQLite.
type Item struct {
	ID                int64
	SourcePath        string
	Title             string
	Status            Status
	MediaInfoJSON     string
	MixAudioFile      string
	AnalysisAudioFile string
	WindowsJSON       string
	MixedFile         string
	FinalFile         string
	ErrorMessage      string
	CreatedAt         time.Time
	UpdatedAt         time.Time
	ProgressStage     string
	ProgressPercent   float64
	ProgressMessage   string
	LastHeartbeat     *time.Time
	NeedsReview       bool
	ReviewReason      string
}

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// IsProcessing returns true when the status reflects an in-flight operation.
func (i Item) IsProcessing() bool {
	_, ok := processingStatuses[i.Status]
	return ok
}

// IsProcessingStatus reports whether a status reflects an in-flight operation.
func IsProcessingStatus(status Status) bool {
	_, ok := processingStatuses[status]
	return ok
}

// InitProgress resets progress fields for a new stage.
func (i *Item) InitProgress(stage, message string) {
	i.ProgressStage = stage
	i.ProgressMessage = message
	i.ProgressPercent = 0
	i.ErrorMessage = ""
}

// SetProgress updates all three progress fields together.
func (i *Item) SetProgress(stage, message string, percent float64) {
	i.ProgressStage = stage
	i.ProgressMessage = message
	i.ProgressPercent = percent
}

// SetProgressComplete sets progress to 100% with the given stage and message.
func (i *Item) SetProgressComplete(stage, message string) {
	i.SetProgress(stage, message, 100)
}

// SetFailed marks the item as failed with the given error message.
func (i *Item) SetFailed(message string) {
	i.Status = StatusFailed
	i.ErrorMessage = message
	i.ProgressPercent = 0
	i.ProgressMessage = message
	i.LastHeartbeat = nil
	i.ProgressStage = "Failed"
}

// SetReview parks the item for manual intervention with the given reason.
func (i *Item) SetReview(reason string) {
	i.Status = StatusReview
	i.NeedsReview = true
	i.ReviewReason = reason
	i.ErrorMessage = reason
	i.LastHeartbeat = nil
}
