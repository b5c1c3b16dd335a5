// Package pipeline turns validated job inputs into a produced artifact,
// via the encoder subprocess and/or remote services.
package pipeline

import (
	"context"
	"errors"

	"github.com/atlastrail/render/internal/job"
	"github.com/atlastrail/render/internal/workspace"
)

var (
	ErrValidation  = errors.New("pipeline: invalid job parameters")
	ErrProcessing  = errors.New("pipeline: processing failed")
	ErrTransientIO = errors.New("pipeline: transient i/o failure")
)

// Artifact is the produced output prior to durable publication. Kind
// selects the publication policy (storage filename and URL TTL); Log is
// the diagnostic text recorded on the job.
type Artifact struct {
	Data        []byte
	ContentType string
	Filename    string
	Kind        string
	Log         string
}

const (
	KindVideo     = "video"
	KindSubtitles = "subtitles"
	KindInpaint   = "inpaint"
)

// Input carries everything a pipeline needs: the claimed job, its decoded
// params, the source URL resolved by the lifecycle manager (empty for
// object_remove, whose params carry full URLs), and the job workspace.
type Input struct {
	Job       *job.RenderJob
	Params    job.Params
	SourceURL string
	WS        *workspace.Workspace
}

type Pipeline interface {
	Run(ctx context.Context, in *Input) (*Artifact, error)
	Name() string
}
