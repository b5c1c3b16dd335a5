package job

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	TypeExport       Type = "export"
	TypeAutoColor    Type = "auto_color"
	TypeAutoCut      Type = "auto_cut"
	TypeSubtitles    Type = "subtitles"
	TypeObjectRemove Type = "object_remove"
)

type Status string

const (
	StatusQueued    Status = "queued"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	// StatusCanceled is assigned by external systems only; the worker
	// never writes it.
	StatusCanceled Status = "canceled"
)

// RenderJob is the persisted unit of work. The worker reads it from the
// store, moves it queued -> running -> {completed, failed} exactly once,
// and writes output_url only on completion.
type RenderJob struct {
	ID        uuid.UUID
	JobType   Type
	Status    Status
	Progress  int
	Params    json.RawMessage
	OutputURL *string
	Logs      *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusCanceled
}
