package fileutil

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCopyFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.txt")
	dst := filepath.Join(dir, "dst.txt")
	if err := os.WriteFile(src, []byte("payload"), 0o644); err != nil {
		t.Fatalf("write src: %v", err)
	}

	if err := CopyFile(src, dst); err != nil {
		t.Fatalf("CopyFile: %v", err)
	}
	data, err := os.ReadFile(dst)
	if err != nil {
		t.Fatalf("read dst: %v", err)
	}
	if string(data) != "payload" {
		t.Fatalf("unexpected content: %q", data)
	}
}

func TestMoveFileCreatesDestinationDir(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.txt")
	dst := filepath.Join(dir, "nested", "deep", "dst.txt")
	if err := os.WriteFile(src, []byte("payload"), 0o644); err != nil {
		t.Fatalf("write src: %v", err)
	}

	if err := MoveFile(src, dst); err != nil {
		t.Fatalf("MoveFile: %v", err)
	}
	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Fatalf("expected source removed, stat err: %v", err)
	}
	if _, err := os.Stat(dst); err != nil {
		t.Fatalf("expected destination present: %v", err)
	}
}

func TestTempSiblingStaysInDirectory(t *testing.T) {
	got := TempSibling("/out/final.mp3")
	if filepath.Dir(got) != "/out" {
		t.Fatalf("expected sibling path, got %q", got)
	}
	if filepath.Base(got) == "final.mp3" {
		t.Fatal("expected distinct temp name")
	}
}
