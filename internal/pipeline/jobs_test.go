package pipeline

import (
	"testing"
	"time"
)

func TestJobStore_PutGetCleanup(t *testing.T) {
	s := NewJobStore(10 * time.Millisecond)

	job := &Job{ID: "j1", Status: StatusQueued, UpdatedAt: time.Now()}
	s.Put(job)

	if got := s.Get("j1"); got != job {
		t.Fatal("expected stored job back")
	}
	if got := s.Get("missing"); got != nil {
		t.Fatal("expected nil for unknown id")
	}

	// Fresh jobs survive cleanup, stale ones do not.
	s.Cleanup()
	if s.Get("j1") == nil {
		t.Fatal("fresh job evicted")
	}

	job.mu.Lock()
	job.UpdatedAt = time.Now().Add(-time.Minute)
	job.mu.Unlock()
	s.Cleanup()
	if s.Get("j1") != nil {
		t.Fatal("stale job not evicted")
	}
}

func TestJob_FailSetsKindAndError(t *testing.T) {
	job := &Job{ID: "j1", Status: StatusParsing}
	job.Fail(FailureNoTextLayer, "no extractable text in document")

	snap := job.Snapshot()
	if snap.Status != StatusFailed {
		t.Errorf("status: %s", snap.Status)
	}
	if snap.FailureKind != FailureNoTextLayer {
		t.Errorf("failure kind: %s", snap.FailureKind)
	}
	if len(snap.Progress.Errors) != 1 {
		t.Errorf("errors: %v", snap.Progress.Errors)
	}
}

func TestJob_SnapshotIsDetached(t *testing.T) {
	job := &Job{ID: "j1", Filename: "a.pdf", Status: StatusQueued}
	job.SetProgress(10, 42, 7)

	snap := job.Snapshot()
	job.SetProgress(11, 50, 8)

	if snap.Progress.ChunkCount != 42 {
		t.Errorf("snapshot mutated: %+v", snap.Progress)
	}
	if snap.Progress.Errors == nil {
		t.Error("snapshot errors should be non-nil for JSON")
	}
}

func TestContentHashHex(t *testing.T) {
	a := ContentHashHex([]byte("hello"))
	b := ContentHashHex([]byte("hello"))
	c := ContentHashHex([]byte("world"))
	if a != b {
		t.Error("hash not deterministic")
	}
	if a == c {
		t.Error("distinct content should hash differently")
	}
	if len(a) != 64 {
		t.Errorf("expected 64 hex chars, got %d", len(a))
	}
}
