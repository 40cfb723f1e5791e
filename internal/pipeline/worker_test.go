package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/dgallion1/docstruct/internal/config"
	"github.com/dgallion1/docstruct/internal/export"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func runJob(t *testing.T, filename string, format export.Format, opts Options, data string) *Job {
	t.Helper()
	job := NewJob(filename, "", format, opts)
	job.SetFileData([]byte(data))
	NewWorker(testLogger(), false).Process(context.Background(), job)
	return job
}

func TestWorker_CSVToMarkdownTable(t *testing.T) {
	opts := DefaultOptions()
	opts.Tables = TablesRules

	job := runJob(t, "people.csv", export.FormatMarkdown, opts, "Name,Age\nAlice,30\nBob,41\n")
	snap := job.Snapshot()
	if snap.Status != StatusCompleted {
		t.Fatalf("expected completed, got %s (errors %v)", snap.Status, snap.Progress.Errors)
	}
	if snap.Title != "people" {
		t.Errorf("expected title from filename, got %q", snap.Title)
	}
	if snap.Progress.TableRows != 2 {
		t.Errorf("expected 2 table rows, got %d", snap.Progress.TableRows)
	}
	if snap.ContentHash == "" {
		t.Error("expected a content hash")
	}

	got, ok := job.Result()
	if !ok {
		t.Fatal("expected a result")
	}
	want := "| Name | Age |\n| ---- | --- |\n| Alice | 30 |\n| Bob | 41 |\n"
	if string(got) != want {
		t.Errorf("expected:\n%s\ngot:\n%s", want, got)
	}
}

func TestWorker_HTMLExport(t *testing.T) {
	opts := DefaultOptions()
	opts.Lists = true

	job := runJob(t, "notes.md", export.FormatHTML, opts, "# Notes\n- a\n  - b\n")
	got, ok := job.Result()
	if !ok {
		t.Fatalf("expected a result, status %s", job.Snapshot().Status)
	}
	html := string(got)
	for _, want := range []string{"<title>notes</title>", "<h1>Notes</h1>", "<li>b</li>"} {
		if !strings.Contains(html, want) {
			t.Errorf("expected %q in:\n%s", want, html)
		}
	}
	if job.Snapshot().Progress.ListsCollapsed != 1 {
		t.Errorf("expected 1 list collapsed, got %d", job.Snapshot().Progress.ListsCollapsed)
	}
}

func TestWorker_TableFailureIsWarning(t *testing.T) {
	opts := DefaultOptions()
	opts.Tables = TablesRules

	job := runJob(t, "plain.txt", export.FormatMarkdown, opts, "no records here\n")
	snap := job.Snapshot()
	if snap.Status != StatusCompleted {
		t.Fatalf("expected completed, got %s", snap.Status)
	}
	if len(snap.Progress.Warnings) != 1 {
		t.Errorf("expected 1 warning, got %v", snap.Progress.Warnings)
	}
	got, _ := job.Result()
	if string(got) != "no records here\n" {
		t.Errorf("expected unchanged text, got %q", got)
	}
}

func TestWorker_UnsupportedFormat(t *testing.T) {
	job := runJob(t, "image.png", export.FormatMarkdown, DefaultOptions(), "xx")
	snap := job.Snapshot()
	if snap.Status != StatusFailed || snap.Phase != "importing" {
		t.Errorf("expected failed in importing, got %s/%s", snap.Status, snap.Phase)
	}
	if len(snap.Progress.Errors) == 0 {
		t.Error("expected an error to be recorded")
	}
}

func TestOrchestrator_SubmitAndComplete(t *testing.T) {
	cfg := config.Load()
	cfg.WorkerCount = 2
	cfg.MaxQueueSize = 4

	orch := NewOrchestrator(cfg, testLogger())
	orch.Start(context.Background())
	defer orch.Stop()

	job := NewJob("a.txt", "", export.FormatMarkdown, DefaultOptions())
	job.SetFileData([]byte("hello\n"))
	if err := orch.Submit(job); err != nil {
		t.Fatalf("unexpected submit error: %v", err)
	}
	if orch.GetJob(job.ID) != job {
		t.Fatal("expected job to be registered")
	}

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if job.Snapshot().Status == StatusCompleted {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	got, ok := job.Result()
	if !ok || string(got) != "hello\n" {
		t.Errorf("expected completed job with result, got %q (status %s)", got, job.Snapshot().Status)
	}
}

func TestOrchestrator_QueueFull(t *testing.T) {
	cfg := config.Load()
	cfg.WorkerCount = 1
	cfg.MaxQueueSize = 1

	// No workers started, so the queue only drains on Stop.
	orch := NewOrchestrator(cfg, testLogger())
	first := NewJob("a.txt", "", export.FormatMarkdown, DefaultOptions())
	if err := orch.Submit(first); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second := NewJob("b.txt", "", export.FormatMarkdown, DefaultOptions())
	if err := orch.Submit(second); !errors.Is(err, ErrQueueFull) {
		t.Fatalf("expected ErrQueueFull, got %v", err)
	}
	if second.Snapshot().Status != StatusFailed {
		t.Errorf("expected rejected job to be failed, got %s", second.Snapshot().Status)
	}
	if orch.QueueDepth() != 1 {
		t.Errorf("expected queue depth 1, got %d", orch.QueueDepth())
	}

	stats := orch.Stats()
	if stats.Jobs != 2 || stats.QueueDepth != 1 || stats.QueueSize != 1 {
		t.Errorf("unexpected stats %+v", stats)
	}
	if stats.ByStatus[StatusQueued] != 1 || stats.ByStatus[StatusFailed] != 1 {
		t.Errorf("unexpected status counts %v", stats.ByStatus)
	}
}

func TestOrchestrator_SubmitAfterStop(t *testing.T) {
	cfg := config.Load()
	cfg.WorkerCount = 1
	cfg.MaxQueueSize = 2

	orch := NewOrchestrator(cfg, testLogger())
	orch.Start(context.Background())
	orch.Stop()
	orch.Stop()

	job := NewJob("a.txt", "", export.FormatMarkdown, DefaultOptions())
	if err := orch.Submit(job); !errors.Is(err, ErrStopped) {
		t.Fatalf("expected ErrStopped, got %v", err)
	}
	if job.Snapshot().Status != StatusFailed {
		t.Errorf("expected failed job, got %s", job.Snapshot().Status)
	}
}

func TestSweepInterval(t *testing.T) {
	tests := []struct {
		ttl  time.Duration
		want time.Duration
	}{
		{30 * time.Minute, 5 * time.Minute},
		{2 * time.Minute, time.Minute},
		{0, 5 * time.Minute},
	}
	for _, tt := range tests {
		if got := sweepInterval(tt.ttl); got != tt.want {
			t.Errorf("sweepInterval(%s): expected %s, got %s", tt.ttl, tt.want, got)
		}
	}
}
