package subtitles

// Cue is one subtitle entry: start time and duration in seconds plus the
// text shown for that span.
type Cue struct {
	Start    float64
	Duration float64
	Text     string
}

// End returns the cue's end time in seconds.
func (c Cue) End() float64 { return c.Start + c.Duration }
