package queue

import (
	"fmt"
	"path/filepath"
	"strings"
)

// StagingRoot returns the per-item staging directory rooted at base.
func (i Item) StagingRoot(base string) string {
	base = strings.TrimSpace(base)
	if base == "" {
		return ""
	}
	return filepath.Join(base, fmt.Sprintf("item-%d", i.ID))
}

// inferTitleFromPath derives a human-readable title from a source file name.
func inferTitleFromPath(path string) string {
	base := filepath.Base(strings.TrimSpace(path))
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = strings.NewReplacer("_", " ", ".", " ").Replace(base)
	base = strings.Join(strings.Fields(base), " ")
	if base == "" {
		return "Untitled"
	}
	return base
}
