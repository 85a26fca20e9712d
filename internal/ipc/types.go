package ipc

import "substream/internal/jobs"

// StatusRequest fetches daemon status.
type StatusRequest struct{}

// StatusSnapshot summarizes the daemon for clients.
type StatusSnapshot struct {
	PID        int            `json:"pid"`
	Running    bool           `json:"running"`
	SocketPath string         `json:"socket_path"`
	WatchDir   string         `json:"watch_dir"`
	QueueStats map[string]int `json:"queue_stats"`
}

// StatusResponse carries the snapshot.
type StatusResponse struct {
	Status StatusSnapshot `json:"status"`
}

// EnqueueRequest adds one job to a queue.
type EnqueueRequest struct {
	Kind       jobs.Kind `json:"kind"`
	SourcePath string    `json:"source_path"`
	OutputPath string    `json:"output_path"`
}

// EnqueueResponse returns the created job.
type EnqueueResponse struct {
	Job jobs.Job `json:"job"`
}

// ListRequest lists known jobs.
type ListRequest struct{}

// ListResponse contains job snapshots, newest first.
type ListResponse struct {
	Jobs []jobs.Job `json:"jobs"`
}

// CancelRequest cancels one job by ID.
type CancelRequest struct {
	ID string `json:"id"`
}

// CancelResponse acknowledges a single cancellation.
type CancelResponse struct {
	Cancelled bool   `json:"cancelled"`
	Message   string `json:"message,omitempty"`
}

// CancelAllRequest cancels every pending and running job.
type CancelAllRequest struct{}

// CancelAllResponse acknowledges with the number of affected jobs.
type CancelAllResponse struct {
	Count int `json:"count"`
}

// EventsRequest polls events newer than After.
type EventsRequest struct {
	After int64 `json:"after"`
}

// EventsResponse returns events oldest first.
type EventsResponse struct {
	Events []jobs.Event `json:"events"`
}

// ShutdownRequest asks the daemon to exit.
type ShutdownRequest struct{}

// ShutdownResponse acknowledges the request.
type ShutdownResponse struct {
	Stopping bool `json:"stopping"`
}
