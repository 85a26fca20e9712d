package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"substream/internal/asr"
	"substream/internal/config"
	"substream/internal/decode"
	"substream/internal/ipc"
	"substream/internal/jobs"
	"substream/internal/logging"
	"substream/internal/pipeline"
	"substream/internal/subtitles"
	"substream/internal/translate"
	"substream/internal/vad"
	"substream/internal/watch"
)

// Daemon owns the supervisor and its supporting services for one process.
type Daemon struct {
	cfg    *config.Config
	logger *slog.Logger
	log    *slog.Logger

	lock       *flock.Flock
	supervisor *jobs.Supervisor
	translator *translate.Client

	mu       sync.Mutex
	cancel   context.CancelFunc
	running  bool
	shutdown chan struct{}
	once     sync.Once
}

// New acquires the instance lock and wires the supervisor. It does not
// start any worker; call Start.
func New(cfg *config.Config, logger *slog.Logger) (*Daemon, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, err
	}

	lockPath := filepath.Join(cfg.Paths.LogDir, "substreamd.lock")
	lock := flock.New(lockPath)
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire instance lock: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("another instance already holds %s", lockPath)
	}

	d := &Daemon{
		cfg:      cfg,
		logger:   logger,
		log:      logging.NewComponentLogger(logger, "daemon"),
		lock:     lock,
		shutdown: make(chan struct{}),
	}

	asr.RegisterCommandBackends(cfg.Models.Recognizer)

	runners := map[jobs.Kind]jobs.Runner{
		jobs.KindTranscription: d.runTranscription,
	}
	if cfg.Translation.Enabled {
		cache := translate.NewCache(cfg.Translation.CachePath, logger)
		client, err := translate.NewClient(translate.Options{
			Endpoint:     cfg.Translation.Endpoint,
			Source:       cfg.Translation.SourceLanguage,
			Target:       cfg.Translation.TargetLanguage,
			ChunkBytes:   cfg.Translation.ChunkBytes,
			RequestDelay: time.Duration(cfg.Translation.RequestDelayMS) * time.Millisecond,
			Timeout:      time.Duration(cfg.Translation.TimeoutSeconds) * time.Second,
		}, cache, logger)
		if err != nil {
			lock.Unlock()
			return nil, err
		}
		d.translator = client
		runners[jobs.KindTranslation] = d.runTranslation
	}

	d.supervisor = jobs.NewSupervisor(runners,
		jobs.NewEventBus(cfg.Workflow.EventBuffer), logger)
	return d, nil
}

// Start launches workers and, when configured, the watch folder.
func (d *Daemon) Start(parent context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.running {
		return nil
	}
	ctx, cancel := context.WithCancel(parent)
	d.cancel = cancel
	d.supervisor.Start(ctx)

	if dir := strings.TrimSpace(d.cfg.Paths.WatchDir); dir != "" {
		watcher, err := watch.New(dir, d, d.logger)
		if err != nil {
			cancel()
			return err
		}
		if err := watcher.ScanExisting(ctx); err != nil {
			d.log.Warn("startup scan failed", logging.Error(err))
		}
		go func() {
			if err := watcher.Run(ctx); err != nil && ctx.Err() == nil {
				d.log.Error("watcher stopped", logging.Error(err))
			}
		}()
	}

	d.running = true
	d.log.Info("daemon started",
		logging.String(logging.FieldEventType, "daemon_start"),
		logging.Int("pid", os.Getpid()))
	return nil
}

// Stop cancels all work, waits for workers, and releases the lock.
func (d *Daemon) Stop() {
	d.mu.Lock()
	if !d.running {
		d.mu.Unlock()
		return
	}
	d.running = false
	cancel := d.cancel
	d.mu.Unlock()

	cancel()
	d.supervisor.Wait()
	if err := d.lock.Unlock(); err != nil {
		d.log.Warn("failed to release instance lock", logging.Error(err))
	}
	d.log.Info("daemon stopped",
		logging.String(logging.FieldEventType, "daemon_stop"))
}

// Done is closed once a shutdown has been requested over IPC.
func (d *Daemon) Done() <-chan struct{} { return d.shutdown }

// RequestShutdown asks the main loop to exit.
func (d *Daemon) RequestShutdown() {
	d.once.Do(func() { close(d.shutdown) })
}

// Enqueue routes output paths: transcriptions land in the configured output
// directory when one is set, else next to the source.
func (d *Daemon) Enqueue(kind jobs.Kind, source, output string) (jobs.Job, error) {
	if output == "" {
		switch kind {
		case jobs.KindTranscription:
			if dir := strings.TrimSpace(d.cfg.Paths.OutputDir); dir != "" {
				output = filepath.Join(dir, filepath.Base(subtitles.SiblingPath(source)))
			}
		case jobs.KindTranslation:
			output = subtitles.TranslatedSiblingPath(source, d.cfg.Translation.TargetLanguage)
		}
	}
	return d.supervisor.Enqueue(kind, source, output)
}

// Cancel forwards to the supervisor.
func (d *Daemon) Cancel(id string) error { return d.supervisor.Cancel(id) }

// CancelAll forwards to the supervisor.
func (d *Daemon) CancelAll() int { return d.supervisor.CancelAll() }

// List forwards to the supervisor.
func (d *Daemon) List() []jobs.Job { return d.supervisor.List() }

// Events forwards to the event bus.
func (d *Daemon) Events(after int64) []jobs.Event {
	return d.supervisor.Bus().Since(after)
}

// Status summarizes the daemon for IPC clients.
func (d *Daemon) Status() ipc.StatusSnapshot {
	d.mu.Lock()
	running := d.running
	d.mu.Unlock()

	stats := make(map[string]int)
	for _, job := range d.supervisor.List() {
		stats[string(job.Status)]++
	}
	return ipc.StatusSnapshot{
		PID:        os.Getpid(),
		Running:    running,
		SocketPath: d.cfg.Paths.SocketPath,
		WatchDir:   d.cfg.Paths.WatchDir,
		QueueStats: stats,
	}
}

// runTranscription builds one pipeline per job so the buffer, detector, and
// recognizer are never shared across jobs.
func (d *Daemon) runTranscription(ctx context.Context, job jobs.Job, report func(jobs.Progress)) error {
	recognizer, err := asr.NewRecognizer(asr.ModelConfig{
		Variant:  asr.Variant(d.cfg.Models.Variant),
		Dir:      d.cfg.Models.Dir,
		Language: d.cfg.Models.Language,
	})
	if err != nil {
		return err
	}
	defer recognizer.Close()

	grace := time.Duration(d.cfg.Workflow.GracePeriodSeconds) * time.Second
	p := pipeline.New(pipeline.Options{
		SampleRate:    d.cfg.Audio.SampleRate,
		WindowSamples: d.cfg.Audio.WindowSamples,
		BufferSeconds: d.cfg.Audio.BufferSeconds,
		Merge: subtitles.MergeOptions{
			MaxPause:    d.cfg.Merge.MaxPauseSeconds,
			MaxDuration: d.cfg.Merge.MaxDurationSeconds,
		},
		StopGrace: grace,
		Start: func(ctx context.Context, source string) (pipeline.Source, error) {
			return decode.Start(ctx, source, decode.Options{
				Binary:     d.cfg.FFmpegBinary(),
				SampleRate: d.cfg.Audio.SampleRate,
			})
		},
		Probe: func(ctx context.Context, source string) (float64, error) {
			return decode.Duration(ctx, d.cfg.FFprobeBinary(), source)
		},
		Engine: vad.NewEnergyGate(vad.EnergyGateOptions{}),
		Recog:  recognizer,
		Logger: d.logger,
		Progress: func(p pipeline.Progress) {
			report(jobs.Progress{
				Percent:          p.Percent,
				ProcessedSeconds: p.ProcessedSeconds,
				TotalSeconds:     p.TotalSeconds,
				Speed:            p.Speed,
				Elapsed:          p.Elapsed,
				Remaining:        p.Remaining,
			})
		},
	})
	return p.Run(ctx, job.SourcePath, job.OutputPath)
}

// runTranslation rewrites one subtitle file through the translator.
func (d *Daemon) runTranslation(ctx context.Context, job jobs.Job, report func(jobs.Progress)) error {
	return d.translator.TranslateFile(ctx, job.SourcePath, job.OutputPath,
		func(percent float64) {
			report(jobs.Progress{Percent: percent})
		})
}
