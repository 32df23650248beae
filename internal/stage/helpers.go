package stage

import (
	"descant/internal/queue"
	"descant/internal/services"
)

// WindowPlans decodes an item's narration plan. On failure it returns a
// services.ErrValidation suitable for stage Execute methods.
func WindowPlans(item *queue.Item) ([]queue.WindowPlan, error) {
	plans, err := item.Windows()
	if err != nil {
		return nil, services.Wrap(
			services.ErrValidation, "stage", "decode windows",
			"Narration plan missing or invalid; rerun detection", err)
	}
	return plans, nil
}
