package subtitles

import "sort"

// MergeOptions bound how far apart and how long merged cues may grow.
type MergeOptions struct {
	// MaxPause is the gap in seconds at or above which two cues stay
	// separate.
	MaxPause float64
	// MaxDuration caps the summed spoken duration of a merged cue.
	MaxDuration float64
}

// DefaultMergeOptions matches the daemon defaults: half-second gaps close,
// merged lines never exceed fifteen seconds.
func DefaultMergeOptions() MergeOptions {
	return MergeOptions{MaxPause: 0.5, MaxDuration: 15.0}
}

// Merge joins consecutive cues separated by a pause strictly under MaxPause
// while the summed durations stay within MaxDuration. The merged cue spans
// from the first start to the last end, absorbing internal pauses. Input
// order does not matter; the result is sorted by start time. Overlapping
// cues (negative pause) are never joined, and merging an already-merged
// list is a no-op.
func Merge(cues []Cue, opts MergeOptions) []Cue {
	if len(cues) == 0 {
		return nil
	}
	sorted := append([]Cue(nil), cues...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })

	merged := make([]Cue, 0, len(sorted))
	current := sorted[0]
	for _, next := range sorted[1:] {
		pause := next.Start - current.End()
		if pause >= 0 && pause < opts.MaxPause && current.Duration+next.Duration <= opts.MaxDuration {
			current.Duration = next.End() - current.Start
			current.Text = current.Text + " " + next.Text
			continue
		}
		merged = append(merged, current)
		current = next
	}
	return append(merged, current)
}
