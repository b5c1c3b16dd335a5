// Package health aggregates liveness checks for the worker's backing
// services.
package health

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/atlastrail/render/internal/storage"
)

type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
)

type ComponentHealth struct {
	Status    Status `json:"status"`
	LatencyMS int64  `json:"latency_ms"`
	Error     string `json:"error,omitempty"`
}

type Report struct {
	Status     Status                     `json:"status"`
	Version    string                     `json:"version"`
	Timestamp  time.Time                  `json:"timestamp"`
	Components map[string]ComponentHealth `json:"components"`
}

type Checker struct {
	db      *pgxpool.Pool
	redis   *redis.Client
	storage storage.Storage
	version string
	timeout time.Duration
}

func NewChecker(db *pgxpool.Pool, rdb *redis.Client, store storage.Storage, version string) *Checker {
	return &Checker{
		db:      db,
		redis:   rdb,
		storage: store,
		version: version,
		timeout: 5 * time.Second,
	}
}

// Check probes every configured component in parallel. The database and
// object storage are required; redis only degrades the report because
// the rate limiter fails open without it.
func (c *Checker) Check(ctx context.Context) Report {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	report := Report{
		Version:    c.version,
		Timestamp:  time.Now().UTC(),
		Components: make(map[string]ComponentHealth),
	}

	var mu sync.Mutex
	var wg sync.WaitGroup

	run := func(name string, probe func(context.Context) error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			start := time.Now()
			err := probe(ctx)
			ch := ComponentHealth{
				Status:    StatusHealthy,
				LatencyMS: time.Since(start).Milliseconds(),
			}
			if err != nil {
				ch.Status = StatusUnhealthy
				ch.Error = err.Error()
			}
			mu.Lock()
			report.Components[name] = ch
			mu.Unlock()
		}()
	}

	if c.db != nil {
		run("database", func(ctx context.Context) error {
			return c.db.Ping(ctx)
		})
	}
	if c.storage != nil {
		run("storage", func(ctx context.Context) error {
			return c.storage.HealthCheck(ctx)
		})
	}
	if c.redis != nil {
		run("redis", func(ctx context.Context) error {
			return c.redis.Ping(ctx).Err()
		})
	}

	wg.Wait()

	report.Status = StatusHealthy
	for name, ch := range report.Components {
		if ch.Status != StatusUnhealthy {
			continue
		}
		if name == "redis" {
			if report.Status == StatusHealthy {
				report.Status = StatusDegraded
			}
			continue
		}
		report.Status = StatusUnhealthy
	}
	return report
}
