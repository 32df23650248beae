package daemon_test

import (
	"context"
	"testing"

	"descant/internal/daemon"
	"descant/internal/logging"
	"descant/internal/testsupport"
	"descant/internal/workflow"
)

func TestDaemonStartStop(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	manager := workflow.NewManager(cfg, store, logging.NewNop(), workflow.StageSet{})
	d, err := daemon.New(cfg, store, logging.NewNop(), manager)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if !d.Running() {
		t.Fatal("daemon should report running")
	}

	status, err := d.Status(context.Background())
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if !status.Running || status.QueueDBPath == "" || status.LockFilePath == "" {
		t.Fatalf("unexpected status: %#v", status)
	}

	d.Stop()
	if d.Running() {
		t.Fatal("daemon should report stopped")
	}
}

func TestDaemonSecondInstanceRefused(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	first, err := daemon.New(cfg, store, logging.NewNop(), workflow.NewManager(cfg, store, logging.NewNop(), workflow.StageSet{}))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := first.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer first.Stop()

	second, err := daemon.New(cfg, store, logging.NewNop(), workflow.NewManager(cfg, store, logging.NewNop(), workflow.StageSet{}))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := second.Start(context.Background()); err == nil {
		second.Stop()
		t.Fatal("expected second instance to be refused")
	}
}
