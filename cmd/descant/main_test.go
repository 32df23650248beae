package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTestConfig(t *testing.T) string {
	t.Helper()
	base := t.TempDir()
	path := filepath.Join(base, "config.toml")
	content := fmt.Sprintf(`[paths]
work_dir = %q
output_dir = %q
log_dir = %q
`,
		filepath.Join(base, "work"),
		filepath.Join(base, "out"),
		filepath.Join(base, "logs"),
	)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	cmd := newRootCommand()
	want := []string{"process", "daemon", "queue", "config", "deps"}
	for _, name := range want {
		found := false
		for _, sub := range cmd.Commands() {
			if sub.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("missing subcommand %s", name)
		}
	}
}

func TestQueueAddAndList(t *testing.T) {
	cfgPath := writeTestConfig(t)
	video := filepath.Join(t.TempDir(), "sample_movie.mp4")
	if err := os.WriteFile(video, []byte("fake"), 0o644); err != nil {
		t.Fatalf("write video: %v", err)
	}

	out, err := runCommand(t, "--config", cfgPath, "queue", "add", video)
	if err != nil {
		t.Fatalf("queue add: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Queued #") {
		t.Fatalf("unexpected add output: %s", out)
	}

	out, err = runCommand(t, "--config", cfgPath, "queue", "list")
	if err != nil {
		t.Fatalf("queue list: %v\n%s", err, out)
	}
	if !strings.Contains(out, "sample movie") || !strings.Contains(out, "pending") {
		t.Fatalf("unexpected list output: %s", out)
	}
}

func TestQueueAddIsIdempotent(t *testing.T) {
	cfgPath := writeTestConfig(t)
	video := filepath.Join(t.TempDir(), "clip.mkv")
	if err := os.WriteFile(video, []byte("fake"), 0o644); err != nil {
		t.Fatalf("write video: %v", err)
	}

	if out, err := runCommand(t, "--config", cfgPath, "queue", "add", video); err != nil {
		t.Fatalf("first add: %v\n%s", err, out)
	}
	out, err := runCommand(t, "--config", cfgPath, "queue", "add", video)
	if err != nil {
		t.Fatalf("second add: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Already queued") {
		t.Fatalf("expected duplicate warning, got: %s", out)
	}
}

func TestConfigInitRefusesOverwrite(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")

	out, err := runCommand(t, "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v\n%s", err, out)
	}
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("config file not written: %v", err)
	}

	if _, err := runCommand(t, "config", "init", "--path", target); err == nil {
		t.Fatal("expected refusal without --overwrite")
	}
	if out, err := runCommand(t, "config", "init", "--path", target, "--overwrite"); err != nil {
		t.Fatalf("config init --overwrite: %v\n%s", err, out)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate short = %q", got)
	}
	if got := truncate("a very long detail message", 10); got != "a very ..." {
		t.Errorf("truncate long = %q", got)
	}
}

func TestMaskSecret(t *testing.T) {
	if got := maskSecret(""); got != "(unset)" {
		t.Errorf("maskSecret empty = %q", got)
	}
	if got := maskSecret("abc123"); got != "******" {
		t.Errorf("maskSecret short = %q", got)
	}
	if got := maskSecret("sk-or-v1-abcdef"); got != "sk-...def" {
		t.Errorf("maskSecret long = %q", got)
	}
}
