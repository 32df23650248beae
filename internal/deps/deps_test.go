package deps

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCheckBinaries(t *testing.T) {
	binDir := t.TempDir()
	present := filepath.Join(binDir, "present")
	script := []byte("#!/bin/sh\nexit 0\n")
	if err := os.WriteFile(present, script, 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	reqs := []Requirement{
		{Name: "Present", Command: present},
		{Name: "Missing", Command: "clearly-not-present-binary"},
	}

	results := CheckBinaries(reqs)
	if len(results) != len(reqs) {
		t.Fatalf("expected %d results, got %d", len(reqs), len(results))
	}
	if !results[0].Available {
		t.Fatalf("expected first requirement to be available, got %#v", results[0])
	}
	if results[1].Available {
		t.Fatal("expected missing binary to be unavailable")
	}
	if results[1].Detail == "" {
		t.Fatal("expected detail message for missing binary")
	}
}

func TestMissingRequired(t *testing.T) {
	statuses := []Status{
		{Name: "A", Available: true},
		{Name: "B", Available: false},
		{Name: "C", Available: false, Optional: true},
	}
	missing := MissingRequired(statuses)
	if len(missing) != 1 || missing[0].Name != "B" {
		t.Fatalf("unexpected missing set: %#v", missing)
	}
}

func TestRequirementsUsesConfiguredTTS(t *testing.T) {
	reqs := Requirements(nil)
	var found bool
	for _, req := range reqs {
		if req.Name == "TTS" && req.Command == "piper" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected default piper requirement, got %#v", reqs)
	}
}
