// Command VideScreenShotExtractor serves POST /process-video: it downloads a
// video, grabs one still frame with ffmpeg, publishes the JPEG to object
// storage and returns its public URL.
//
// Configuration comes from the environment, optionally seeded from a .env
// file. The main variables are:
//
//	PORT                     listening port (default 8080)
//	TEMP_DIR                 scratch directory for downloads and frames
//	STORAGE_BACKEND          gcs (default) or s3
//	GOOGLE_CLOUD_BUCKET_NAME destination bucket when STORAGE_BACKEND=gcs
//	S3_BUCKET_NAME           destination bucket when STORAGE_BACKEND=s3
//	AUTH_FIREBASE_PROJECT_ID when set, /process-video requires a Firebase ID token
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	log "github.com/sirupsen/logrus"

	"github.com/knbl-ai/VideScreenShotExtractor/internal/auth"
	"github.com/knbl-ai/VideScreenShotExtractor/internal/config"
	"github.com/knbl-ai/VideScreenShotExtractor/internal/fetch"
	"github.com/knbl-ai/VideScreenShotExtractor/internal/ffmpeg"
	"github.com/knbl-ai/VideScreenShotExtractor/internal/handler"
	"github.com/knbl-ai/VideScreenShotExtractor/internal/metrics"
	"github.com/knbl-ai/VideScreenShotExtractor/internal/middleware"
	"github.com/knbl-ai/VideScreenShotExtractor/internal/pipeline"
	"github.com/knbl-ai/VideScreenShotExtractor/internal/storage"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	initLogger(cfg)

	if err := os.MkdirAll(cfg.Pipeline.TempDir, 0o755); err != nil {
		return fmt.Errorf("create temp dir: %w", err)
	}

	ctx := context.Background()

	store, closeStore, err := newObjectStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	runner := ffmpeg.NewRunner()
	if cfg.Pipeline.FFmpegPath != "" {
		runner.FFmpegPath = cfg.Pipeline.FFmpegPath
	}
	if cfg.Pipeline.FFprobePath != "" {
		runner.FFprobePath = cfg.Pipeline.FFprobePath
	}

	p := pipeline.New(
		fetch.NewFetcher(cfg.Pipeline.TempDir, cfg.Pipeline.FetchTimeout),
		ffmpeg.NewExtractor(runner, cfg.Pipeline.TempDir, cfg.Pipeline.FramePercent),
		storage.NewPublisher(store, cfg.Storage.Prefix),
		m,
	)

	var verifier auth.TokenVerifier
	if cfg.Auth.FirebaseProjectID != "" {
		opts, err := storage.ClientOptions(cfg.GCS)
		if err != nil {
			return fmt.Errorf("firebase credentials: %w", err)
		}
		v, err := auth.NewFirebaseVerifier(ctx, cfg.Auth.FirebaseProjectID, opts...)
		if err != nil {
			return fmt.Errorf("init firebase verifier: %w", err)
		}
		verifier = v
		log.Info("Firebase authentication enabled for /process-video")
	} else {
		log.Info("authentication disabled")
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: newRouter(p, verifier, reg),
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("Server running on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	case <-quit:
	}
	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced shutdown: %w", err)
	}

	log.Info("server stopped")
	return nil
}

// newRouter mounts the service routes. A nil verifier leaves /process-video
// open.
func newRouter(p handler.Processor, verifier auth.TokenVerifier, gatherer prometheus.Gatherer) http.Handler {
	var process http.Handler = handler.NewProcessHandler(p)
	if verifier != nil {
		process = middleware.RequireAuth(verifier)(process)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", handler.NewHealthHandler())
	mux.Handle("/process-video", process)
	mux.Handle("/metrics", metrics.Handler(gatherer))
	// Catch-all: return 404 for any path not matched above.
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	return middleware.RequestID(middleware.Logging(mux))
}

// newObjectStore builds the backend selected by cfg.Storage.Backend. The
// returned func releases the backend's client.
func newObjectStore(ctx context.Context, cfg *config.Config) (storage.ObjectStore, func(), error) {
	switch cfg.Storage.Backend {
	case config.BackendGCS:
		client, err := storage.NewGCSClient(ctx, cfg.GCS)
		if err != nil {
			return nil, nil, fmt.Errorf("create GCS client: %w", err)
		}
		log.Infof("publishing to GCS bucket %s", cfg.GCS.Bucket)
		closeFn := func() {
			if err := client.Close(); err != nil {
				log.Warnf("close GCS client: %v", err)
			}
		}
		return storage.NewGCSStore(client, cfg.GCS.Bucket), closeFn, nil

	case config.BackendS3:
		client, err := storage.NewS3Client(ctx, cfg.S3.Region)
		if err != nil {
			return nil, nil, fmt.Errorf("create S3 client: %w", err)
		}
		log.Infof("publishing to S3 bucket %s", cfg.S3.Bucket)
		return storage.NewS3Store(client, cfg.S3.Bucket, cfg.S3.Region, cfg.S3.PublicBaseURL), func() {}, nil

	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

func initLogger(cfg *config.Config) {
	level, err := log.ParseLevel(cfg.Logger.Level)
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)

	if cfg.Logger.Format == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
}
