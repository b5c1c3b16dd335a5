package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/atlastrail/render/internal/api"
	"github.com/atlastrail/render/internal/config"
	"github.com/atlastrail/render/internal/encoder"
	"github.com/atlastrail/render/internal/health"
	"github.com/atlastrail/render/internal/imageedit"
	"github.com/atlastrail/render/internal/job"
	"github.com/atlastrail/render/internal/logger"
	"github.com/atlastrail/render/internal/media"
	"github.com/atlastrail/render/internal/metrics"
	"github.com/atlastrail/render/internal/pipeline"
	"github.com/atlastrail/render/internal/publish"
	"github.com/atlastrail/render/internal/storage"
	"github.com/atlastrail/render/internal/store"
	"github.com/atlastrail/render/internal/tracing"
	"github.com/atlastrail/render/internal/transcribe"
	"github.com/atlastrail/render/internal/worker"
)

const version = "1.0.0"

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(cfg.LogLevel)
	log := logger.Default()

	log.Info("configuration loaded")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTracing, err := tracing.Init(ctx, &tracing.Config{
		ServiceName:    "render-worker",
		ServiceVersion: version,
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		Enabled:        cfg.TracingEnabled,
		SampleRate:     cfg.TraceSampleRate,
	})
	if err != nil {
		return fmt.Errorf("failed to init tracing: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(shutdownCtx)
	}()

	log.Info("connecting to database")
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}
	log.Info("database connected")

	log.Info("connecting to object storage")
	objStore, err := storage.NewMinIOStorage(&storage.Config{
		Endpoint:  cfg.MinIOEndpoint,
		AccessKey: cfg.MinIOAccessKey,
		SecretKey: cfg.MinIOSecretKey,
		Bucket:    cfg.MinIOBucket,
		UseSSL:    cfg.MinIOUseSSL,
		Region:    cfg.MinIORegion,
	})
	if err != nil {
		return fmt.Errorf("failed to create storage: %w", err)
	}
	if err := objStore.EnsureBucket(ctx); err != nil {
		return fmt.Errorf("failed to ensure bucket: %w", err)
	}
	log.Info("object storage connected")

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisOpt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("failed to parse redis url: %w", err)
		}
		redisClient = redis.NewClient(redisOpt)
		defer func() { _ = redisClient.Close() }()

		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Warn("redis unreachable, rate limiting disabled", "error", err)
		} else {
			log.Info("redis connected")
		}
	}

	metrics.SetAppInfo(version, cfg.Environment, "render-worker")
	instrumented := metrics.NewInstrumentedStorage(objStore)

	runner, err := encoder.NewExecRunner(cfg.FFmpegPath)
	if err != nil {
		return fmt.Errorf("encoder unavailable: %w", err)
	}

	transcriber := transcribe.New(transcribe.Config{
		BaseURL: cfg.TranscribeAPIURL,
		APIKey:  cfg.TranscribeAPIKey,
		Model:   cfg.TranscribeModel,
	})
	editor := imageedit.New(imageedit.Config{
		BaseURL: cfg.ImageEditAPIURL,
		APIKey:  cfg.ImageEditAPIKey,
	})

	log.Info("registering pipelines")
	registry := pipeline.NewRegistry()
	videoTransform := pipeline.NewVideoTransform(runner)
	registry.Register(job.TypeExport, videoTransform)
	registry.Register(job.TypeAutoColor, videoTransform)
	registry.Register(job.TypeAutoCut, videoTransform)
	registry.Register(job.TypeSubtitles, pipeline.NewSubtitleExtraction(runner, transcriber))
	registry.Register(job.TypeObjectRemove, pipeline.NewInpainting(editor))

	jobStore := store.New(pool)
	resolver := media.NewResolver(jobStore)
	publisher := publish.New(instrumented, publish.Config{
		OutputTTL:  cfg.OutputURLTTL,
		InpaintTTL: cfg.InpaintURLTTL,
	})

	manager := worker.NewManager(jobStore, resolver, registry, publisher,
		&http.Client{Timeout: cfg.DownloadTimeout},
		worker.Config{
			WorkDir:    cfg.WorkDir,
			JobTimeout: cfg.JobTimeout,
		},
	)

	checker := health.NewChecker(pool, redisClient, objStore, version)
	limiter := api.NewRedisRateLimiter(redisClient, cfg.RenderRateLimit, cfg.RenderRateWindow)
	server := api.NewServer(manager, jobStore, checker, limiter)

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           otelhttp.NewHandler(server.Routes(), "http"),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("worker listening", "port", cfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case sig := <-sigCh:
		log.Info("shutting down", "signal", sig.String())
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown error: %w", err)
	}
	return nil
}
