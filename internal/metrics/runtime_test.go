package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestRuntimeMetrics_AggregatesCommandAndChannelStats(t *testing.T) {
	dataDir := t.TempDir()
	recorder := NewRuntimeMetrics(dataDir)

	snap, err := recorder.RecordCommand(3*time.Millisecond, "ok")
	if err != nil {
		t.Fatalf("RecordCommand error: %v", err)
	}
	if snap.Command.Total != 1 || snap.Command.Failures != 0 {
		t.Fatalf("unexpected first command snapshot: %+v", snap.Command)
	}

	_, _ = recorder.RecordCommand(2*time.Millisecond, "not_found")
	_, _ = recorder.RecordCommand(40*time.Millisecond, "storage")
	snap, _ = recorder.RecordCommand(time.Millisecond, "")

	if snap.Command.Total != 4 {
		t.Fatalf("expected 4 commands, got %d", snap.Command.Total)
	}
	if snap.Command.Failures != 2 {
		t.Fatalf("expected 2 failures, got %d", snap.Command.Failures)
	}
	if snap.Command.ByKind["ok"] != 2 || snap.Command.ByKind["storage"] != 1 {
		t.Fatalf("unexpected per-kind counts: %+v", snap.Command.ByKind)
	}
	if got := snap.Command.FailureRatio(); got < 0.49 || got > 0.51 {
		t.Fatalf("expected failure ratio about 0.5, got %.4f", got)
	}
	if snap.Command.MaxLatencyMs != 40 {
		t.Fatalf("expected max latency 40, got %d", snap.Command.MaxLatencyMs)
	}
	if snap.Command.P95ProxyLatencyMs <= 0 {
		t.Fatalf("expected p95 proxy latency > 0, got %d", snap.Command.P95ProxyLatencyMs)
	}

	_, _ = recorder.RecordChannelSend(true)
	_, _ = recorder.RecordChannelSend(false)
	snap, _ = recorder.RecordChannelSend(true)

	if snap.Channel.SendAttempts != 3 || snap.Channel.SendFailures != 1 {
		t.Fatalf("unexpected channel snapshot: %+v", snap.Channel)
	}
}

func TestRuntimeMetrics_ReadRuntimeSnapshot(t *testing.T) {
	dataDir := t.TempDir()
	recorder := NewRuntimeMetrics(dataDir)

	if _, err := recorder.RecordCommand(time.Millisecond, "malformed"); err != nil {
		t.Fatalf("RecordCommand error: %v", err)
	}

	snap, err := ReadRuntimeSnapshot(dataDir)
	if err != nil {
		t.Fatalf("ReadRuntimeSnapshot error: %v", err)
	}
	if !snap.HasData() || snap.Command.ByKind["malformed"] != 1 {
		t.Fatalf("unexpected persisted snapshot: %+v", snap)
	}
	if _, err := os.Stat(filepath.Join(dataDir, "state", runtimeMetricsFileName)); err != nil {
		t.Fatalf("expected metrics file: %v", err)
	}
}

func TestReadRuntimeSnapshot_MissingFile(t *testing.T) {
	snap, err := ReadRuntimeSnapshot(t.TempDir())
	if err != nil {
		t.Fatalf("ReadRuntimeSnapshot error: %v", err)
	}
	if snap.HasData() {
		t.Fatalf("expected empty snapshot, got %+v", snap)
	}
}

func TestRuntimeMetrics_NilRecorderIsNoop(t *testing.T) {
	var recorder *RuntimeMetrics
	if _, err := recorder.RecordCommand(time.Millisecond, "ok"); err != nil {
		t.Fatalf("expected nil recorder to ignore records, got %v", err)
	}
	if recorder.Snapshot().HasData() {
		t.Fatal("expected empty snapshot from nil recorder")
	}
}
