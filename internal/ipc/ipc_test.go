package ipc

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"substream/internal/jobs"
)

type fakeController struct {
	jobs      []jobs.Job
	events    []jobs.Event
	cancelled []string
	cancelErr error
	shutdowns int
}

func (f *fakeController) Enqueue(kind jobs.Kind, source, output string) (jobs.Job, error) {
	job := jobs.Job{ID: "job-1", Kind: kind, SourcePath: source, OutputPath: output, Status: jobs.StatusPending}
	f.jobs = append(f.jobs, job)
	return job, nil
}

func (f *fakeController) Cancel(id string) error {
	if f.cancelErr != nil {
		return f.cancelErr
	}
	f.cancelled = append(f.cancelled, id)
	return nil
}

func (f *fakeController) CancelAll() int   { return len(f.jobs) }
func (f *fakeController) List() []jobs.Job { return f.jobs }
func (f *fakeController) RequestShutdown() { f.shutdowns++ }
func (f *fakeController) Events(after int64) []jobs.Event {
	var out []jobs.Event
	for _, ev := range f.events {
		if ev.Seq > after {
			out = append(out, ev)
		}
	}
	return out
}

func (f *fakeController) Status() StatusSnapshot {
	return StatusSnapshot{PID: os.Getpid(), Running: true, QueueStats: map[string]int{"pending": len(f.jobs)}}
}

func startServer(t *testing.T, ctrl Controller) (*Client, string) {
	t.Helper()
	socket := filepath.Join(t.TempDir(), "test.sock")
	srv, err := NewServer(context.Background(), socket, ctrl, nil)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	srv.Serve()
	t.Cleanup(srv.Close)

	client, err := Dial(socket)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return client, socket
}

func TestEnqueueAndList(t *testing.T) {
	ctrl := &fakeController{}
	client, _ := startServer(t, ctrl)

	resp, err := client.Enqueue(jobs.KindTranscription, "/media/a.mkv", "")
	if err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	if resp.Job.ID != "job-1" || resp.Job.Kind != jobs.KindTranscription {
		t.Errorf("job = %+v", resp.Job)
	}

	list, err := client.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list.Jobs) != 1 || list.Jobs[0].SourcePath != "/media/a.mkv" {
		t.Errorf("jobs = %+v", list.Jobs)
	}
}

func TestStatus(t *testing.T) {
	client, _ := startServer(t, &fakeController{})
	resp, err := client.Status()
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if !resp.Status.Running || resp.Status.PID != os.Getpid() {
		t.Errorf("status = %+v", resp.Status)
	}
}

func TestCancelReportsFailureInBand(t *testing.T) {
	ctrl := &fakeController{cancelErr: errors.New("unknown job: nope")}
	client, _ := startServer(t, ctrl)

	resp, err := client.Cancel("nope")
	if err != nil {
		t.Fatalf("Cancel transport error: %v", err)
	}
	if resp.Cancelled {
		t.Error("expected cancelled=false")
	}
	if resp.Message == "" {
		t.Error("expected failure message")
	}
}

func TestCancelAllAck(t *testing.T) {
	ctrl := &fakeController{}
	client, _ := startServer(t, ctrl)
	client.Enqueue(jobs.KindTranscription, "/media/a.mkv", "")
	client.Enqueue(jobs.KindTranscription, "/media/b.mkv", "")

	resp, err := client.CancelAll()
	if err != nil {
		t.Fatalf("CancelAll: %v", err)
	}
	if resp.Count != 2 {
		t.Errorf("count = %d", resp.Count)
	}
}

func TestEventsSince(t *testing.T) {
	ctrl := &fakeController{events: []jobs.Event{{Seq: 1}, {Seq: 2}, {Seq: 3}}}
	client, _ := startServer(t, ctrl)

	resp, err := client.Events(1)
	if err != nil {
		t.Fatalf("Events: %v", err)
	}
	if len(resp.Events) != 2 || resp.Events[0].Seq != 2 {
		t.Errorf("events = %+v", resp.Events)
	}
}

func TestShutdown(t *testing.T) {
	ctrl := &fakeController{}
	client, _ := startServer(t, ctrl)

	resp, err := client.Shutdown()
	if err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
	if !resp.Stopping || ctrl.shutdowns != 1 {
		t.Errorf("stopping=%v shutdowns=%d", resp.Stopping, ctrl.shutdowns)
	}
}

func TestCloseRemovesSocket(t *testing.T) {
	socket := filepath.Join(t.TempDir(), "gone.sock")
	srv, err := NewServer(context.Background(), socket, &fakeController{}, nil)
	if err != nil {
		t.Fatal(err)
	}
	srv.Serve()
	srv.Close()
	if _, err := os.Stat(socket); !os.IsNotExist(err) {
		t.Error("socket file should be removed on close")
	}
}
