package jobs

import (
	"time"

	"github.com/google/uuid"
)

// Kind selects which worker executes a job.
type Kind string

const (
	KindTranscription Kind = "transcription"
	KindTranslation   Kind = "translation"
)

// Kinds lists every queue the supervisor runs, in display order.
func Kinds() []Kind { return []Kind{KindTranscription, KindTranslation} }

// Status is a job's lifecycle state.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusError      Status = "error"
	StatusCancelled  Status = "cancelled"
)

// Terminal reports whether no further transitions are possible.
func (s Status) Terminal() bool {
	switch s {
	case StatusCompleted, StatusError, StatusCancelled:
		return true
	}
	return false
}

var validTransitions = map[Status][]Status{
	StatusPending:    {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusCompleted, StatusError, StatusCancelled},
}

// CanTransition reports whether from -> to is a legal lifecycle move.
func CanTransition(from, to Status) bool {
	for _, next := range validTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Progress mirrors the running pipeline's snapshot on the job record.
type Progress struct {
	Percent          float64       `json:"percent"`
	ProcessedSeconds float64       `json:"processed_seconds"`
	TotalSeconds     float64       `json:"total_seconds"`
	Speed            float64       `json:"speed"`
	Elapsed          time.Duration `json:"elapsed"`
	Remaining        time.Duration `json:"remaining"`
}

// Job is one unit of queued work.
type Job struct {
	ID           string    `json:"id"`
	Kind         Kind      `json:"kind"`
	SourcePath   string    `json:"source_path"`
	OutputPath   string    `json:"output_path"`
	Status       Status    `json:"status"`
	ErrorMessage string    `json:"error_message,omitempty"`
	Progress     Progress  `json:"progress"`
	CreatedAt    time.Time `json:"created_at"`
	StartedAt    time.Time `json:"started_at,omitzero"`
	FinishedAt   time.Time `json:"finished_at,omitzero"`
}

// nowFunc is swapped in tests that assert timestamps.
var nowFunc = time.Now

func newJob(kind Kind, source, output string) *Job {
	return &Job{
		ID:         uuid.NewString(),
		Kind:       kind,
		SourcePath: source,
		OutputPath: output,
		Status:     StatusPending,
		CreatedAt:  nowFunc(),
	}
}
