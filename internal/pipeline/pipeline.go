package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"substream/internal/asr"
	"substream/internal/audio"
	"substream/internal/logging"
	"substream/internal/subtitles"
	"substream/internal/vad"
)

// Source is a running decode producing raw PCM on Stdout. decode.Process
// satisfies it; tests substitute in-memory streams.
type Source interface {
	Stdout() io.Reader
	Wait() error
	Stop(grace time.Duration)
}

// Starter launches a decode for one media file.
type Starter func(ctx context.Context, sourcePath string) (Source, error)

// Prober reports a source's duration in seconds, 0 when unknown.
type Prober func(ctx context.Context, sourcePath string) (float64, error)

// Options assembles a pipeline.
type Options struct {
	SampleRate    int
	WindowSamples int
	BufferSeconds int
	Merge         subtitles.MergeOptions
	StopGrace     time.Duration

	Start    Starter
	Probe    Prober
	Engine   vad.Engine
	Recog    asr.Recognizer
	Logger   *slog.Logger
	Progress func(Progress)
}

// Pipeline transcribes one file at a time. Not safe for concurrent Run
// calls; the job supervisor serializes per kind.
type Pipeline struct {
	opts Options
	log  *slog.Logger
}

// New validates nothing and wires defaults; callers pass validated config.
func New(opts Options) *Pipeline {
	if opts.SampleRate <= 0 {
		opts.SampleRate = 16000
	}
	if opts.WindowSamples <= 0 {
		opts.WindowSamples = 512
	}
	if opts.BufferSeconds <= 0 {
		opts.BufferSeconds = 30
	}
	if opts.StopGrace <= 0 {
		opts.StopGrace = 3 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewNop()
	}
	return &Pipeline{
		opts: opts,
		log:  logging.NewComponentLogger(opts.Logger, "pipeline"),
	}
}

// Run transcribes sourcePath and writes the subtitle to outPath. The file
// is written only after a clean end-of-stream; any error or cancellation
// leaves outPath untouched.
func (p *Pipeline) Run(ctx context.Context, sourcePath, outPath string) error {
	log := p.log.With(logging.String(logging.FieldSource, sourcePath))

	total := 0.0
	if p.opts.Probe != nil {
		d, err := p.opts.Probe(ctx, sourcePath)
		if err != nil {
			log.Warn("duration probe failed, progress degraded",
				logging.Error(err))
		} else {
			total = d
		}
	}

	proc, err := p.opts.Start(ctx, sourcePath)
	if err != nil {
		return err
	}
	stopped := false
	defer func() {
		if !stopped {
			proc.Stop(p.opts.StopGrace)
		}
	}()

	ring := audio.NewRing(p.opts.SampleRate * p.opts.BufferSeconds)
	windower := vad.NewWindower(ring, p.opts.Engine, p.opts.WindowSamples)
	defer p.opts.Engine.Close()

	var cues []subtitles.Cue
	started := time.Now()
	chunk := make([]byte, p.opts.WindowSamples*audio.BytesPerSample)
	var processed int64

	for {
		if err := ctx.Err(); err != nil {
			proc.Stop(p.opts.StopGrace)
			stopped = true
			log.Info("transcription cancelled",
				logging.String(logging.FieldEventType, "cancelled"))
			return err
		}

		n, readErr := io.ReadFull(proc.Stdout(), chunk)
		if n > 0 {
			if err := windower.PushPCM(ctx, chunk[:n]); err != nil {
				return err
			}
			processed += int64(n / audio.BytesPerSample)
			if err := p.drainRegions(&cues); err != nil {
				return err
			}
			p.report(processed, total, started)
		}
		if readErr != nil {
			if errors.Is(readErr, io.EOF) || errors.Is(readErr, io.ErrUnexpectedEOF) {
				break
			}
			return readErr
		}
	}

	// End of stream. A decoder that died mid-file must not produce a
	// truncated subtitle.
	if err := proc.Wait(); err != nil {
		stopped = true
		return err
	}
	stopped = true

	if err := windower.Finalize(ctx); err != nil {
		return err
	}
	if err := p.drainRegions(&cues); err != nil {
		return err
	}

	merged := subtitles.Merge(cues, p.opts.Merge)
	if err := subtitles.WriteFile(outPath, merged); err != nil {
		return err
	}
	log.Info("transcription complete",
		logging.String(logging.FieldEventType, "completed"),
		logging.Int("cues", len(merged)),
		logging.Duration("elapsed", time.Since(started)))
	return nil
}

// drainRegions empties the detector queue through the recognizer, turning
// each region into a cue. Empty transcripts are dropped, and a recognition
// failure drops only that region so one bad stretch of audio cannot sink
// the whole file.
func (p *Pipeline) drainRegions(cues *[]subtitles.Cue) error {
	for !p.opts.Engine.Empty() {
		region := p.opts.Engine.Front()
		p.opts.Engine.Pop()

		text, err := asr.Transcribe(p.opts.Recog, p.opts.SampleRate, region)
		if err != nil {
			p.log.Warn("region recognition failed, dropping region",
				logging.Error(err),
				logging.Float64("start_seconds", audio.Seconds(region.StartSample, p.opts.SampleRate)))
			continue
		}
		if text == "" {
			continue
		}
		*cues = append(*cues, subtitles.Cue{
			Start:    audio.Seconds(region.StartSample, p.opts.SampleRate),
			Duration: audio.Seconds(int64(len(region.Samples)), p.opts.SampleRate),
			Text:     text,
		})
	}
	return nil
}

func (p *Pipeline) report(processedSamples int64, total float64, started time.Time) {
	if p.opts.Progress == nil {
		return
	}
	processed := audio.Seconds(processedSamples, p.opts.SampleRate)
	p.opts.Progress(computeProgress(processed, total, time.Since(started)))
}
