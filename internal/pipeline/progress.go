package pipeline

import "time"

// Progress is a snapshot of a running transcription.
type Progress struct {
	// Percent of the source processed, 0-100. Stays 0 when the container
	// does not report a duration.
	Percent float64
	// ProcessedSeconds of media consumed so far.
	ProcessedSeconds float64
	// TotalSeconds of media, 0 when unknown.
	TotalSeconds float64
	// Elapsed wall time.
	Elapsed time.Duration
	// Speed is the realtime multiple (media seconds per wall second).
	Speed float64
	// Remaining is the wall-time estimate to completion, 0 when unknown.
	Remaining time.Duration
}

func computeProgress(processed, total float64, elapsed time.Duration) Progress {
	p := Progress{
		ProcessedSeconds: processed,
		TotalSeconds:     total,
		Elapsed:          elapsed,
	}
	if elapsed > 0 {
		p.Speed = processed / elapsed.Seconds()
	}
	if total > 0 {
		p.Percent = min(processed/total*100, 100)
		if p.Speed > 0 {
			p.Remaining = time.Duration(max(total-processed, 0) / p.Speed * float64(time.Second))
		}
	}
	return p
}
