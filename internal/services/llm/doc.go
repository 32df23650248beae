// Package llm wraps the OpenRouter chat completion API for key-frame
// captioning. DescribeFrames sends sampled JPEG frames to a vision model and
// returns one narration passage sized to the window it covers. Transient
// failures (429, 5xx, timeouts, empty completions) are retried with
// exponential backoff honoring Retry-After.
package llm
