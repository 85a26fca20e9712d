package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"substream/internal/ipc"
)

func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestConfigInitWritesSample(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")
	out, _, err := runCLI(t, "--config", target, "config", "init")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	if !strings.Contains(out, target) {
		t.Fatalf("expected output to mention %s, got %q", target, out)
	}
	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(data), "[models]") {
		t.Fatalf("sample config missing [models] section:\n%s", data)
	}

	// A second init without --force refuses to overwrite.
	if _, _, err := runCLI(t, "--config", target, "config", "init"); err == nil {
		t.Fatal("expected error when target exists")
	}
	if _, _, err := runCLI(t, "--config", target, "config", "init", "--force"); err != nil {
		t.Fatalf("config init --force: %v", err)
	}
}

func TestQueueAddRejectsUnknownKind(t *testing.T) {
	_, _, err := runCLI(t, "queue", "add", "--kind", "bogus", "/tmp/movie.mkv")
	if err == nil {
		t.Fatal("expected error for unknown kind")
	}
	if !strings.Contains(err.Error(), "bogus") {
		t.Fatalf("expected kind in error, got %v", err)
	}
}

func TestRenderStatusSortsQueueStats(t *testing.T) {
	out := renderStatus(ipc.StatusSnapshot{
		PID:        1234,
		Running:    true,
		SocketPath: "/run/substreamd.sock",
		WatchDir:   "/srv/media",
		QueueStats: map[string]int{"processing": 1, "completed": 3, "pending": 2},
	})
	for _, want := range []string{"1234", "/run/substreamd.sock", "/srv/media", "Jobs pending"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in status output:\n%s", want, out)
		}
	}
	completed := strings.Index(out, "Jobs completed")
	pending := strings.Index(out, "Jobs pending")
	processing := strings.Index(out, "Jobs processing")
	if !(completed < pending && pending < processing) {
		t.Fatalf("expected alphabetical queue rows:\n%s", out)
	}
}

func TestRenderTableAlignment(t *testing.T) {
	out := renderTable(
		[]string{"Name", "Count"},
		[][]string{{"alpha", "10"}, {"beta", "7"}},
		[]columnAlignment{alignLeft, alignRight})
	lines := strings.Split(out, "\n")
	if len(lines) < 5 {
		t.Fatalf("expected bordered table, got:\n%s", out)
	}
	if !strings.Contains(out, "alpha") || !strings.Contains(out, "beta") {
		t.Fatalf("missing rows:\n%s", out)
	}
}

func TestShortID(t *testing.T) {
	if got := shortID("0123456789abcdef"); got != "01234567" {
		t.Fatalf("shortID long = %q", got)
	}
	if got := shortID("abc"); got != "abc" {
		t.Fatalf("shortID short = %q", got)
	}
}
