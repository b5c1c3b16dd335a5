// Package publish moves finished artifacts into durable storage and
// mints the time-scoped signed URL recorded on the job.
package publish

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/atlastrail/render/internal/logger"
	"github.com/atlastrail/render/internal/pipeline"
	"github.com/atlastrail/render/internal/storage"
	"github.com/google/uuid"
)

type Config struct {
	// OutputTTL applies to render outputs (video, subtitles).
	OutputTTL time.Duration
	// InpaintTTL applies to inpainting results.
	InpaintTTL time.Duration
}

func DefaultConfig() Config {
	return Config{
		OutputTTL:  7 * 24 * time.Hour,
		InpaintTTL: 30 * 24 * time.Hour,
	}
}

type Publisher struct {
	store storage.Storage
	cfg   Config
}

func New(store storage.Storage, cfg Config) *Publisher {
	if cfg.OutputTTL == 0 {
		cfg.OutputTTL = DefaultConfig().OutputTTL
	}
	if cfg.InpaintTTL == 0 {
		cfg.InpaintTTL = DefaultConfig().InpaintTTL
	}
	return &Publisher{store: store, cfg: cfg}
}

// Key returns the deterministic storage path for a job's artifact.
// Retried jobs overwrite their earlier attempt.
func Key(jobID uuid.UUID, filename string) string {
	return fmt.Sprintf("jobs/%s/%s", jobID, filename)
}

// Publish uploads the artifact and returns a signed URL whose TTL
// depends on the artifact kind.
func (p *Publisher) Publish(ctx context.Context, jobID uuid.UUID, art *pipeline.Artifact) (string, error) {
	log := logger.FromContext(ctx)

	key := Key(jobID, art.Filename)
	size := int64(len(art.Data))

	start := time.Now()
	if err := p.store.Upload(ctx, key, bytes.NewReader(art.Data), art.ContentType, size); err != nil {
		return "", fmt.Errorf("%w: upload %s: %v", pipeline.ErrTransientIO, key, err)
	}

	url, err := p.store.GetPresignedURL(ctx, key, p.ttlFor(art.Kind))
	if err != nil {
		return "", fmt.Errorf("%w: presign %s: %v", pipeline.ErrTransientIO, key, err)
	}

	log.Info("artifact published",
		"key", key,
		"content_type", art.ContentType,
		"size", size,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return url, nil
}

func (p *Publisher) ttlFor(kind string) time.Duration {
	if kind == pipeline.KindInpaint {
		return p.cfg.InpaintTTL
	}
	return p.cfg.OutputTTL
}
