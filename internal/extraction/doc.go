// Package extraction implements the first pipeline stage: probing the source
// container and extracting the stereo mixing master plus the mono analysis
// track that later stages consume.
package extraction
