// Package workflow drives queue items through the description pipeline:
// extraction, speech detection, window description, narration synthesis,
// mixing, and export. The manager polls the queue, advances one stage per
// pickup, keeps a heartbeat while a stage runs, and reclaims items whose
// worker died mid-stage.
package workflow
