package queue

import (
	"encoding/json"
	"fmt"
)

// WindowPlan captures one narration window as it moves through the pipeline.
// Description is filled by the describe stage, ClipPath by the narrate stage,
// and Applied/FailureReason by the mix stage.
type WindowPlan struct {
	Start         float64 `json:"start"`
	End           float64 `json:"end"`
	Description   string  `json:"description,omitempty"`
	ClipPath      string  `json:"clip_path,omitempty"`
	Applied       bool    `json:"applied,omitempty"`
	FailureReason string  `json:"failure_reason,omitempty"`
}

// Duration returns the window length in seconds.
func (w WindowPlan) Duration() float64 {
	return w.End - w.Start
}

// Windows decodes the item's narration plan. A missing plan yields nil.
func (i *Item) Windows() ([]WindowPlan, error) {
	if i == nil || i.WindowsJSON == "" {
		return nil, nil
	}
	var plans []WindowPlan
	if err := json.Unmarshal([]byte(i.WindowsJSON), &plans); err != nil {
		return nil, fmt.Errorf("decode windows: %w", err)
	}
	return plans, nil
}

// SetWindows encodes and stores the item's narration plan.
func (i *Item) SetWindows(plans []WindowPlan) error {
	if len(plans) == 0 {
		i.WindowsJSON = ""
		return nil
	}
	data, err := json.Marshal(plans)
	if err != nil {
		return fmt.Errorf("encode windows: %w", err)
	}
	i.WindowsJSON = string(data)
	return nil
}
