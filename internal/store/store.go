// Package store is the worker's narrow contract over the externally
// owned Postgres tables: render job claiming and terminal writes, plus
// media record lookup.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/atlastrail/render/internal/job"
	"github.com/atlastrail/render/internal/logger"
	"github.com/atlastrail/render/internal/media"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrJobNotFound = errors.New("store: job not found")
	// ErrStaleJob means a terminal write found the job no longer in
	// running state; another actor got there first.
	ErrStaleJob = errors.New("store: job not in running state")
)

type Store struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

const jobColumns = "id, job_type, status, progress, params, output_url, logs, created_at, updated_at"

// ClaimNext atomically selects the oldest queued jobs and marks them
// running in the same statement, so two overlapping invocations can
// never claim the same job.
func (s *Store) ClaimNext(ctx context.Context, limit int) ([]*job.RenderJob, error) {
	if limit < 1 {
		limit = 1
	}

	rows, err := s.pool.Query(ctx, `
		UPDATE render_jobs SET status = 'running', progress = 5, updated_at = now()
		WHERE id IN (
			SELECT id FROM render_jobs
			WHERE status = 'queued'
			ORDER BY created_at ASC
			LIMIT $1
			FOR UPDATE SKIP LOCKED
		)
		RETURNING `+jobColumns,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("claim jobs: %w", err)
	}
	defer rows.Close()

	jobs, err := scanJobs(rows)
	if err != nil {
		return nil, fmt.Errorf("claim jobs: %w", err)
	}

	if len(jobs) > 0 {
		logger.FromContext(ctx).Debug("jobs claimed", "count", len(jobs))
	}
	return jobs, nil
}

func (s *Store) CreateJob(ctx context.Context, jobType job.Type, params []byte) (*job.RenderJob, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO render_jobs (job_type, params)
		VALUES ($1, $2)
		RETURNING `+jobColumns,
		string(jobType), params,
	)
	j, err := scanJob(row)
	if err != nil {
		return nil, fmt.Errorf("create job: %w", err)
	}
	return j, nil
}

func (s *Store) GetJob(ctx context.Context, id uuid.UUID) (*job.RenderJob, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+jobColumns+` FROM render_jobs WHERE id = $1`, id)
	j, err := scanJob(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrJobNotFound
		}
		return nil, fmt.Errorf("get job %s: %w", id, err)
	}
	return j, nil
}

// SetProgress updates the advisory progress value. It is best effort and
// never conditions control flow.
func (s *Store) SetProgress(ctx context.Context, id uuid.UUID, progress int) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE render_jobs SET progress = $2, updated_at = now()
		WHERE id = $1 AND status = 'running'`,
		id, progress,
	)
	if err != nil {
		return fmt.Errorf("set progress: %w", err)
	}
	return nil
}

// Complete moves a running job to completed, writing output_url and logs
// together. The write is conditioned on the current state so a stale
// worker cannot clobber someone else's terminal state.
func (s *Store) Complete(ctx context.Context, id uuid.UUID, outputURL, logs string) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE render_jobs
		SET status = 'completed', progress = 100, output_url = $2, logs = $3, updated_at = now()
		WHERE id = $1 AND status = 'running'`,
		id, outputURL, logs,
	)
	if err != nil {
		return fmt.Errorf("complete job %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrStaleJob
	}
	return nil
}

// Fail moves a running job to failed. output_url stays null.
func (s *Store) Fail(ctx context.Context, id uuid.UUID, logs string) error {
	if len(logs) > 8000 {
		logs = logs[:8000]
	}
	tag, err := s.pool.Exec(ctx, `
		UPDATE render_jobs
		SET status = 'failed', progress = 100, logs = $2, updated_at = now()
		WHERE id = $1 AND status = 'running'`,
		id, logs,
	)
	if err != nil {
		return fmt.Errorf("fail job %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrStaleJob
	}
	return nil
}

func (s *Store) GetMediaItem(ctx context.Context, id string) (*media.Item, error) {
	// media_items.id is a uuid column; an id that cannot be one can
	// never match a row, so report it as not found rather than letting
	// Postgres reject the cast.
	itemID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", media.ErrNotFound, id)
	}

	var item media.Item
	var title, publicURL, url, storageURL, path *string

	err = s.pool.QueryRow(ctx, `
		SELECT id, title, public_url, url, storage_url, path
		FROM media_items WHERE id = $1`, itemID,
	).Scan(&item.ID, &title, &publicURL, &url, &storageURL, &path)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", media.ErrNotFound, id)
		}
		return nil, fmt.Errorf("get media item %s: %w", id, err)
	}

	item.Title = deref(title)
	item.PublicURL = deref(publicURL)
	item.URL = deref(url)
	item.StorageURL = deref(storageURL)
	item.Path = deref(path)
	return &item, nil
}

func scanJob(row pgx.Row) (*job.RenderJob, error) {
	var j job.RenderJob
	var jobType, status string
	err := row.Scan(&j.ID, &jobType, &status, &j.Progress, &j.Params, &j.OutputURL, &j.Logs, &j.CreatedAt, &j.UpdatedAt)
	if err != nil {
		return nil, err
	}
	j.JobType = job.Type(jobType)
	j.Status = job.Status(status)
	return &j, nil
}

func scanJobs(rows pgx.Rows) ([]*job.RenderJob, error) {
	var jobs []*job.RenderJob
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
