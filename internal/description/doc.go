// Package description fills narration windows with text. For each window it
// samples frames from the source video and asks a vision model for a
// narration passage sized to the window. Windows that fail to describe are
// marked and skipped later instead of failing the item.
package description
