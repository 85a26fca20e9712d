package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"substream/internal/jobs"
	"substream/internal/logging"
	"substream/internal/subtitles"
)

var mediaExtensions = map[string]bool{
	".mp4":  true,
	".mkv":  true,
	".mov":  true,
	".avi":  true,
	".webm": true,
	".m4v":  true,
	".flv":  true,
	".ts":   true,
	".mp3":  true,
	".m4a":  true,
	".wav":  true,
	".flac": true,
	".ogg":  true,
	".opus": true,
}

// IsMediaFile reports whether the path carries a supported extension.
func IsMediaFile(path string) bool {
	return mediaExtensions[strings.ToLower(filepath.Ext(path))]
}

// Enqueuer is what the watcher needs from the job supervisor.
type Enqueuer interface {
	Enqueue(kind jobs.Kind, source, output string) (jobs.Job, error)
}

// Watcher enqueues a transcription for each new media file in a directory.
type Watcher struct {
	dir      string
	queue    Enqueuer
	log      *slog.Logger
	fsw      *fsnotify.Watcher
	settle   time.Duration
	pollTick time.Duration
}

// New sets up the directory watch. Existing files are not scanned; the
// daemon picks those up via an explicit scan on startup (see ScanExisting).
func New(dir string, queue Enqueuer, logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}
	return &Watcher{
		dir:      dir,
		queue:    queue,
		log:      logging.NewComponentLogger(logger, "watch"),
		fsw:      fsw,
		settle:   500 * time.Millisecond,
		pollTick: 200 * time.Millisecond,
	}, nil
}

// Run processes events until ctx is done.
func (w *Watcher) Run(ctx context.Context) error {
	w.log.Info("watching for new media",
		logging.String("dir", w.dir))
	defer w.fsw.Close()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.fsw.Events:
			if !ok {
				return errors.New("watcher events channel closed")
			}
			if event.Op&(fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.handle(ctx, event.Name)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return errors.New("watcher errors channel closed")
			}
			w.log.Warn("watcher error", logging.Error(err))
		}
	}
}

// ScanExisting enqueues media already present in the directory, typically
// once at daemon startup.
func (w *Watcher) ScanExisting(ctx context.Context) error {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return fmt.Errorf("scan %s: %w", w.dir, err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		w.enqueue(filepath.Join(w.dir, entry.Name()))
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
	return nil
}

func (w *Watcher) handle(ctx context.Context, path string) {
	if !IsMediaFile(path) {
		return
	}
	if err := w.awaitStable(ctx, path); err != nil {
		w.log.Debug("file vanished before settling",
			logging.String(logging.FieldSource, path),
			logging.Error(err))
		return
	}
	w.enqueue(path)
}

func (w *Watcher) enqueue(path string) {
	if !IsMediaFile(path) {
		return
	}
	if subtitles.HasSibling(path) {
		// Skip, not an error: the file is already done.
		return
	}
	job, err := w.queue.Enqueue(jobs.KindTranscription, path, "")
	if err != nil {
		if errors.Is(err, jobs.ErrAlreadySubtitled) {
			return
		}
		w.log.Warn("failed to enqueue",
			logging.String(logging.FieldSource, path),
			logging.Error(err))
		return
	}
	w.log.Info("enqueued new media",
		logging.String(logging.FieldJobID, job.ID),
		logging.String(logging.FieldSource, path))
}

// awaitStable waits until the file's size holds still for one settle
// period, so a file still being copied in is not transcribed half-written.
func (w *Watcher) awaitStable(ctx context.Context, path string) error {
	var lastSize int64 = -1
	stableSince := time.Now()
	ticker := time.NewTicker(w.pollTick)
	defer ticker.Stop()

	for {
		info, err := os.Stat(path)
		if err != nil {
			return err
		}
		if info.Size() != lastSize {
			lastSize = info.Size()
			stableSince = time.Now()
		} else if time.Since(stableSince) >= w.settle {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
