package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"substream/internal/logging"
	"substream/internal/services"
	"substream/internal/subtitles"
)

// ErrAlreadySubtitled marks media rejected at enqueue because a sibling
// .srt already exists.
var ErrAlreadySubtitled = errors.New("subtitle already exists")

// ErrUnknownJob is returned for cancel or lookup of an ID the supervisor
// has never seen.
var ErrUnknownJob = errors.New("unknown job")

// Runner executes one job's work and reports progress through the
// callback. The daemon wires the transcription pipeline and the translation
// client here; tests substitute scripted runners.
type Runner func(ctx context.Context, job Job, report func(Progress)) error

// Supervisor owns the queues, workers, and event bus.
type Supervisor struct {
	mu      sync.Mutex
	queues  map[Kind][]*Job
	byID    map[string]*Job
	cancels map[string]context.CancelFunc
	wake    map[Kind]chan struct{}

	runners map[Kind]Runner
	bus     *EventBus
	log     *slog.Logger

	wg sync.WaitGroup
}

// NewSupervisor builds a stopped supervisor; Start launches the workers.
func NewSupervisor(runners map[Kind]Runner, bus *EventBus, logger *slog.Logger) *Supervisor {
	if logger == nil {
		logger = logging.NewNop()
	}
	s := &Supervisor{
		queues:  make(map[Kind][]*Job),
		byID:    make(map[string]*Job),
		cancels: make(map[string]context.CancelFunc),
		wake:    make(map[Kind]chan struct{}),
		runners: runners,
		bus:     bus,
		log:     logging.NewComponentLogger(logger, "jobs"),
	}
	for _, kind := range Kinds() {
		s.wake[kind] = make(chan struct{}, 1)
	}
	return s
}

// Bus exposes the event stream for IPC polling.
func (s *Supervisor) Bus() *EventBus { return s.bus }

// Start launches one worker per kind. Workers exit when ctx is done; Wait
// blocks until they have.
func (s *Supervisor) Start(ctx context.Context) {
	for _, kind := range Kinds() {
		if _, ok := s.runners[kind]; !ok {
			continue
		}
		s.wg.Add(1)
		go s.worker(ctx, kind)
	}
}

// Wait blocks until all workers have returned.
func (s *Supervisor) Wait() { s.wg.Wait() }

// Enqueue adds a job to its kind's queue. Media that already has a sibling
// subtitle is rejected with ErrAlreadySubtitled.
func (s *Supervisor) Enqueue(kind Kind, source, output string) (Job, error) {
	if _, ok := s.runners[kind]; !ok {
		return Job{}, services.Wrap(services.ErrConfiguration, "jobs", "enqueue",
			fmt.Sprintf("no worker for kind %q", kind), nil)
	}
	if kind == KindTranscription && subtitles.HasSibling(source) {
		return Job{}, fmt.Errorf("%w: %s", ErrAlreadySubtitled, subtitles.SiblingPath(source))
	}
	if output == "" {
		output = subtitles.SiblingPath(source)
	}

	job := newJob(kind, source, output)
	s.mu.Lock()
	s.queues[kind] = append(s.queues[kind], job)
	s.byID[job.ID] = job
	snapshot := *job
	s.mu.Unlock()

	s.publishStatus(snapshot, "")
	s.log.Info("job enqueued",
		logging.String(logging.FieldJobID, job.ID),
		logging.String(logging.FieldJobKind, string(kind)),
		logging.String(logging.FieldSource, source))
	s.poke(kind)
	return snapshot, nil
}

// Cancel stops one job: pending jobs move straight to cancelled, a running
// job has its context cancelled and settles asynchronously.
func (s *Supervisor) Cancel(id string) error {
	s.mu.Lock()
	job, ok := s.byID[id]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrUnknownJob, id)
	}
	switch job.Status {
	case StatusPending:
		s.removeFromQueueLocked(job)
		s.transitionLocked(job, StatusCancelled, "")
		snapshot := *job
		s.mu.Unlock()
		s.publishStatus(snapshot, "")
		return nil
	case StatusProcessing:
		cancel := s.cancels[id]
		s.mu.Unlock()
		if cancel != nil {
			cancel()
		}
		return nil
	default:
		s.mu.Unlock()
		return nil
	}
}

// CancelAll cancels every pending and running job and returns how many were
// affected.
func (s *Supervisor) CancelAll() int {
	s.mu.Lock()
	var pending []*Job
	var cancels []context.CancelFunc
	for _, job := range s.byID {
		switch job.Status {
		case StatusPending:
			pending = append(pending, job)
		case StatusProcessing:
			if cancel := s.cancels[job.ID]; cancel != nil {
				cancels = append(cancels, cancel)
			}
		}
	}
	var snapshots []Job
	for _, job := range pending {
		s.removeFromQueueLocked(job)
		s.transitionLocked(job, StatusCancelled, "")
		snapshots = append(snapshots, *job)
	}
	s.mu.Unlock()

	for _, snapshot := range snapshots {
		s.publishStatus(snapshot, "")
	}
	for _, cancel := range cancels {
		cancel()
	}
	return len(snapshots) + len(cancels)
}

// Get returns a snapshot of one job.
func (s *Supervisor) Get(id string) (Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.byID[id]
	if !ok {
		return Job{}, fmt.Errorf("%w: %s", ErrUnknownJob, id)
	}
	return *job, nil
}

// List returns snapshots of every known job, newest first.
func (s *Supervisor) List() []Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Job, 0, len(s.byID))
	for _, job := range s.byID {
		out = append(out, *job)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (s *Supervisor) worker(ctx context.Context, kind Kind) {
	defer s.wg.Done()
	for {
		job := s.dequeue(kind)
		if job == nil {
			select {
			case <-ctx.Done():
				return
			case <-s.wake[kind]:
				continue
			}
		}
		if ctx.Err() != nil {
			return
		}
		s.execute(ctx, kind, job)
	}
}

func (s *Supervisor) execute(parent context.Context, kind Kind, job *Job) {
	jobCtx, cancel := context.WithCancel(parent)
	defer cancel()

	s.mu.Lock()
	s.transitionLocked(job, StatusProcessing, "")
	if job.Status != StatusProcessing {
		// Cancelled between dequeue and start.
		s.mu.Unlock()
		return
	}
	s.cancels[job.ID] = cancel
	snapshot := *job
	s.mu.Unlock()
	s.publishStatus(snapshot, "")

	log := s.log.With(
		logging.String(logging.FieldJobID, job.ID),
		logging.String(logging.FieldJobKind, string(kind)))
	log.Info("job started", logging.String(logging.FieldSource, job.SourcePath))

	gate := logging.NewProgressGate()
	report := func(p Progress) {
		s.mu.Lock()
		job.Progress = p
		snapshot := *job
		s.mu.Unlock()
		if gate.ShouldEmit(p.Percent) {
			s.bus.Publish(Event{
				Type:    EventProgress,
				JobID:   snapshot.ID,
				Kind:    snapshot.Kind,
				Percent: p.Percent,
			})
			log.Info("progress",
				logging.String(logging.FieldEventType, "progress"),
				logging.Int("percent", int(p.Percent)))
		}
	}

	err := s.runners[kind](services.WithJobID(jobCtx, job.ID), snapshot, report)

	s.mu.Lock()
	delete(s.cancels, job.ID)
	switch {
	case err == nil:
		s.transitionLocked(job, StatusCompleted, "")
	case errors.Is(err, context.Canceled):
		s.transitionLocked(job, StatusCancelled, "")
	default:
		s.transitionLocked(job, StatusError, err.Error())
	}
	snapshot = *job
	s.mu.Unlock()
	s.publishStatus(snapshot, snapshot.ErrorMessage)

	switch snapshot.Status {
	case StatusCompleted:
		log.Info("job completed")
	case StatusCancelled:
		log.Info("job cancelled", logging.String(logging.FieldEventType, "cancelled"))
	default:
		log.Error("job failed", logging.Error(err))
	}
}

func (s *Supervisor) dequeue(kind Kind) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	queue := s.queues[kind]
	if len(queue) == 0 {
		return nil
	}
	job := queue[0]
	s.queues[kind] = queue[1:]
	return job
}

func (s *Supervisor) poke(kind Kind) {
	select {
	case s.wake[kind] <- struct{}{}:
	default:
	}
}

func (s *Supervisor) removeFromQueueLocked(job *Job) {
	queue := s.queues[job.Kind]
	for i, queued := range queue {
		if queued.ID == job.ID {
			s.queues[job.Kind] = append(queue[:i], queue[i+1:]...)
			return
		}
	}
}

func (s *Supervisor) transitionLocked(job *Job, to Status, message string) {
	if !CanTransition(job.Status, to) {
		return
	}
	job.Status = to
	job.ErrorMessage = message
	now := nowFunc()
	switch to {
	case StatusProcessing:
		job.StartedAt = now
	case StatusCompleted, StatusError, StatusCancelled:
		job.FinishedAt = now
	}
}

func (s *Supervisor) publishStatus(job Job, message string) {
	s.bus.Publish(Event{
		Type:    EventStatus,
		JobID:   job.ID,
		Kind:    job.Kind,
		Status:  job.Status,
		Message: message,
	})
}
