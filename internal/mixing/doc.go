// Package mixing is the queue stage that runs the narration mixer over an
// item's extracted soundtrack and stores the composite track in staging.
package mixing
