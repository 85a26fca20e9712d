package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"substream/internal/jobs"
)

type recordingQueue struct {
	mu      sync.Mutex
	sources []string
}

func (q *recordingQueue) Enqueue(kind jobs.Kind, source, output string) (jobs.Job, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.sources = append(q.sources, source)
	return jobs.Job{ID: "test", Kind: kind, SourcePath: source}, nil
}

func (q *recordingQueue) snapshot() []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]string(nil), q.sources...)
}

func TestIsMediaFile(t *testing.T) {
	yes := []string{"a.mkv", "b.MP4", "c.flac", "/x/y/d.webm"}
	no := []string{"a.srt", "b.txt", "c", "d.srt.tmp"}
	for _, p := range yes {
		if !IsMediaFile(p) {
			t.Errorf("IsMediaFile(%q) = false", p)
		}
	}
	for _, p := range no {
		if IsMediaFile(p) {
			t.Errorf("IsMediaFile(%q) = true", p)
		}
	}
}

func TestScanExistingSkipsSubtitledAndNonMedia(t *testing.T) {
	dir := t.TempDir()
	write := func(name string) string {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
		return path
	}
	fresh := write("fresh.mkv")
	write("done.mkv")
	write("done.srt")
	write("notes.txt")

	q := &recordingQueue{}
	w, err := New(dir, q, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer w.fsw.Close()

	if err := w.ScanExisting(context.Background()); err != nil {
		t.Fatalf("ScanExisting: %v", err)
	}
	got := q.snapshot()
	if len(got) != 1 || got[0] != fresh {
		t.Errorf("enqueued = %v, want just %s", got, fresh)
	}
}

func TestRunEnqueuesNewFile(t *testing.T) {
	dir := t.TempDir()
	q := &recordingQueue{}
	w, err := New(dir, q, nil)
	if err != nil {
		t.Fatal(err)
	}
	w.settle = 50 * time.Millisecond
	w.pollTick = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		defer close(done)
		w.Run(ctx)
	}()

	path := filepath.Join(dir, "new.mkv")
	if err := os.WriteFile(path, []byte("media"), 0o644); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if got := q.snapshot(); len(got) == 1 && got[0] == path {
			cancel()
			<-done
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("new file was never enqueued")
}

func TestAwaitStableWaitsForGrowthToStop(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "grow.mkv")
	if err := os.WriteFile(path, []byte("a"), 0o644); err != nil {
		t.Fatal(err)
	}

	q := &recordingQueue{}
	w, err := New(dir, q, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer w.fsw.Close()
	w.settle = 80 * time.Millisecond
	w.pollTick = 10 * time.Millisecond

	// Keep appending for a while, then stop.
	stop := time.Now().Add(150 * time.Millisecond)
	go func() {
		for time.Now().Before(stop) {
			f, _ := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
			f.WriteString("more")
			f.Close()
			time.Sleep(20 * time.Millisecond)
		}
	}()

	started := time.Now()
	if err := w.awaitStable(context.Background(), path); err != nil {
		t.Fatalf("awaitStable: %v", err)
	}
	if time.Since(started) < 150*time.Millisecond {
		t.Error("returned while the file was still growing")
	}
}
