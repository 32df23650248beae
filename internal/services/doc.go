// Package services defines shared utilities consumed by the workflow stage
// handlers and external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp queue item IDs, stage names, and correlation
//     identifiers for logging.
//   - Structured error markers plus the Wrap helper that translate failures
//     into consistent queue statuses (failed vs review), including the core
//     taxonomy: invalid input (fatal), window processing (recoverable), and
//     export (fatal).
//
// Use these helpers when wiring new stage logic so operational behaviour
// (error handling, observability, retries) stays uniform across the pipeline.
package services
