package worker

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/atlastrail/render/internal/job"
	"github.com/atlastrail/render/internal/logger"
	"github.com/atlastrail/render/internal/media"
	"github.com/atlastrail/render/internal/metrics"
	"github.com/atlastrail/render/internal/pipeline"
	"github.com/atlastrail/render/internal/tracing"
	"github.com/atlastrail/render/internal/workspace"
)

// JobStore is the subset of the persistence layer the worker needs to
// drive a job through its lifecycle.
type JobStore interface {
	ClaimNext(ctx context.Context, limit int) ([]*job.RenderJob, error)
	SetProgress(ctx context.Context, id uuid.UUID, progress int) error
	Complete(ctx context.Context, id uuid.UUID, outputURL, logs string) error
	Fail(ctx context.Context, id uuid.UUID, logs string) error
}

// SourceResolver maps a media item id to a fetchable source URL.
type SourceResolver interface {
	Resolve(ctx context.Context, itemID string) (string, error)
}

// Publisher stores a finished artifact and returns its signed URL.
type Publisher interface {
	Publish(ctx context.Context, jobID uuid.UUID, art *pipeline.Artifact) (string, error)
}

// Result describes the terminal outcome of one processed job.
type Result struct {
	JobID     uuid.UUID  `json:"job_id"`
	JobType   job.Type   `json:"job_type"`
	Status    job.Status `json:"status"`
	OutputURL string     `json:"output_url,omitempty"`
	Err       error      `json:"-"`
}

// Config carries the tunables for a Manager.
type Config struct {
	WorkDir    string
	JobTimeout time.Duration
}

// Manager claims queued jobs and runs each one through its pipeline,
// recording exactly one terminal transition per claimed job.
type Manager struct {
	store     JobStore
	resolver  SourceResolver
	registry  *pipeline.Registry
	publisher Publisher
	httpc     *http.Client
	cfg       Config
}

func NewManager(store JobStore, resolver SourceResolver, registry *pipeline.Registry, publisher Publisher, httpc *http.Client, cfg Config) *Manager {
	if httpc == nil {
		httpc = http.DefaultClient
	}
	if cfg.JobTimeout <= 0 {
		cfg.JobTimeout = 15 * time.Minute
	}
	return &Manager{
		store:     store,
		resolver:  resolver,
		registry:  registry,
		publisher: publisher,
		httpc:     httpc,
		cfg:       cfg,
	}
}

// Run claims up to limit queued jobs and processes them sequentially.
// Every claimed job ends in a terminal state before Run returns; a
// failure in one job does not stop the others.
func (m *Manager) Run(ctx context.Context, limit int) ([]Result, error) {
	if limit < 1 {
		limit = 1
	}

	jobs, err := m.store.ClaimNext(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("claiming jobs: %w", err)
	}
	metrics.JobsClaimedTotal.Add(float64(len(jobs)))

	results := make([]Result, 0, len(jobs))
	for _, j := range jobs {
		results = append(results, m.process(ctx, j))
	}
	return results, nil
}

func (m *Manager) process(ctx context.Context, j *job.RenderJob) Result {
	ctx = logger.WithJobID(ctx, j.ID.String())
	log := logger.FromContext(ctx)

	ctx, span := tracing.StartJobSpan(ctx, j.ID.String(), string(j.JobType))
	defer span.End()

	started := time.Now()
	outputURL, err := m.execute(ctx, j)

	if err != nil {
		log.Error("job failed", "job_type", j.JobType, "error", err)
		tracing.RecordJobOutcome(span, string(job.StatusFailed), err)
		metrics.ObserveJob(string(j.JobType), string(job.StatusFailed), time.Since(started).Seconds())
		if ferr := m.store.Fail(ctx, j.ID, err.Error()); ferr != nil {
			log.Error("recording job failure", "error", ferr)
		}
		return Result{JobID: j.ID, JobType: j.JobType, Status: job.StatusFailed, Err: err}
	}

	log.Info("job completed", "job_type", j.JobType, "output_url", outputURL, "duration", time.Since(started))
	tracing.RecordJobOutcome(span, string(job.StatusCompleted), nil)
	metrics.ObserveJob(string(j.JobType), string(job.StatusCompleted), time.Since(started).Seconds())
	return Result{JobID: j.ID, JobType: j.JobType, Status: job.StatusCompleted, OutputURL: outputURL}
}

// execute runs everything between claim and the terminal write. Any
// error it returns becomes the job's recorded failure log.
func (m *Manager) execute(ctx context.Context, j *job.RenderJob) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, m.cfg.JobTimeout)
	defer cancel()

	params, err := job.DecodeParams(j.JobType, j.Params)
	if err != nil {
		return "", err
	}

	p, err := m.registry.GetOrError(j.JobType)
	if err != nil {
		return "", err
	}

	sourceURL, err := m.resolveSource(ctx, params)
	if err != nil {
		return "", err
	}

	ws, err := workspace.Acquire(m.cfg.WorkDir, j.ID.String(), m.httpc)
	if err != nil {
		return "", fmt.Errorf("acquiring workspace: %w", err)
	}
	defer ws.Release()

	if err := m.store.SetProgress(ctx, j.ID, 25); err != nil {
		logger.FromContext(ctx).Warn("updating progress", "error", err)
	}

	art, err := p.Run(ctx, &pipeline.Input{
		Job:       j,
		Params:    params,
		SourceURL: sourceURL,
		WS:        ws,
	})
	if err != nil {
		return "", err
	}

	if err := m.store.SetProgress(ctx, j.ID, 90); err != nil {
		logger.FromContext(ctx).Warn("updating progress", "error", err)
	}

	url, err := m.publisher.Publish(ctx, j.ID, art)
	if err != nil {
		return "", err
	}

	if err := m.store.Complete(ctx, j.ID, url, art.Log); err != nil {
		return "", fmt.Errorf("recording completion: %w", err)
	}
	return url, nil
}

// resolveSource looks up the media item for pipelines that read one.
// Inpainting carries its own source URLs inside the params.
func (m *Manager) resolveSource(ctx context.Context, params job.Params) (string, error) {
	switch p := params.(type) {
	case *job.VideoParams:
		return m.lookup(ctx, p.ItemID)
	case *job.SubtitleParams:
		return m.lookup(ctx, p.ItemID)
	case *job.InpaintParams:
		return "", nil
	default:
		return "", job.ErrUnknownType
	}
}

func (m *Manager) lookup(ctx context.Context, itemID string) (string, error) {
	url, err := m.resolver.Resolve(ctx, itemID)
	if err != nil {
		if errors.Is(err, media.ErrNotFound) || errors.Is(err, media.ErrMissingSource) {
			return "", err
		}
		return "", fmt.Errorf("resolving media item %s: %w", itemID, err)
	}
	return url, nil
}
