package workflow

import (
	"context"

	"descant/internal/stage"
)

// HealthChecks runs every stage's readiness probe and returns the results in
// pipeline order.
func (m *Manager) HealthChecks(ctx context.Context) []stage.Health {
	results := make([]stage.Health, 0, len(m.stages))
	for _, stg := range m.stages {
		if stg.handler == nil {
			results = append(results, stage.Unhealthy(stg.name, "handler not configured"))
			continue
		}
		results = append(results, stg.handler.HealthCheck(ctx))
	}
	return results
}
