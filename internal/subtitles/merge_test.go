package subtitles

import (
	"math"
	"reflect"
	"testing"
)

func TestMergeJoinsWithinPause(t *testing.T) {
	cues := []Cue{
		{Start: 0, Duration: 2, Text: "A"},
		{Start: 2.3, Duration: 1, Text: "B"},
	}
	got := Merge(cues, DefaultMergeOptions())
	want := []Cue{{Start: 0, Duration: 3.3, Text: "A B"}}
	if len(got) != 1 {
		t.Fatalf("got %d cues, want 1", len(got))
	}
	if got[0].Text != want[0].Text || got[0].Start != want[0].Start {
		t.Errorf("merged cue = %+v", got[0])
	}
	if math.Abs(got[0].Duration-3.3) > 1e-9 {
		t.Errorf("duration = %v, want 3.3", got[0].Duration)
	}
}

func TestMergeKeepsWidePause(t *testing.T) {
	cues := []Cue{
		{Start: 0, Duration: 2, Text: "A"},
		{Start: 2.6, Duration: 1, Text: "B"},
	}
	got := Merge(cues, DefaultMergeOptions())
	if len(got) != 2 {
		t.Fatalf("got %d cues, want 2 (pause 0.6 > 0.5)", len(got))
	}
}

func TestMergeBoundaryPauseStaysSeparate(t *testing.T) {
	cues := []Cue{
		{Start: 0, Duration: 2, Text: "A"},
		{Start: 2.5, Duration: 1, Text: "B"},
	}
	got := Merge(cues, DefaultMergeOptions())
	if len(got) != 2 {
		t.Fatalf("got %d cues, want 2 (pause exactly at the limit)", len(got))
	}
}

func TestMergeRespectsMaxDuration(t *testing.T) {
	cues := []Cue{
		{Start: 0, Duration: 14, Text: "long"},
		{Start: 14.2, Duration: 2, Text: "tail"},
	}
	got := Merge(cues, DefaultMergeOptions())
	if len(got) != 2 {
		t.Fatalf("got %d cues, want 2 (span 16.2 > 15)", len(got))
	}
}

func TestMergeNeverJoinsOverlap(t *testing.T) {
	cues := []Cue{
		{Start: 0, Duration: 3, Text: "A"},
		{Start: 2, Duration: 2, Text: "B"},
	}
	got := Merge(cues, DefaultMergeOptions())
	if len(got) != 2 {
		t.Fatalf("got %d cues, want 2 (negative pause)", len(got))
	}
}

func TestMergeSortsInput(t *testing.T) {
	cues := []Cue{
		{Start: 5, Duration: 1, Text: "B"},
		{Start: 0, Duration: 1, Text: "A"},
	}
	got := Merge(cues, DefaultMergeOptions())
	if len(got) != 2 || got[0].Text != "A" || got[1].Text != "B" {
		t.Fatalf("result not sorted: %+v", got)
	}
}

func TestMergeChainBoundedByDuration(t *testing.T) {
	var cues []Cue
	for i := 0; i < 10; i++ {
		cues = append(cues, Cue{Start: float64(i) * 2.1, Duration: 2, Text: "x"})
	}
	got := Merge(cues, DefaultMergeOptions())
	for _, c := range got {
		if c.Duration > 15.0+1e-9 {
			t.Errorf("merged cue exceeds cap: %+v", c)
		}
	}
}

func TestMergeIdempotent(t *testing.T) {
	cues := []Cue{
		{Start: 0, Duration: 2, Text: "A"},
		{Start: 2.3, Duration: 1, Text: "B"},
		{Start: 10, Duration: 1, Text: "C"},
	}
	once := Merge(cues, DefaultMergeOptions())
	twice := Merge(once, DefaultMergeOptions())
	if !reflect.DeepEqual(once, twice) {
		t.Errorf("merge not idempotent:\nonce:  %+v\ntwice: %+v", once, twice)
	}
}

func TestMergeEmpty(t *testing.T) {
	if got := Merge(nil, DefaultMergeOptions()); got != nil {
		t.Fatalf("expected nil, got %+v", got)
	}
}
