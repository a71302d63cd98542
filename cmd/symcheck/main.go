package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/kailas-cloud/symcheck/internal/config"
	"github.com/kailas-cloud/symcheck/internal/db"
	"github.com/kailas-cloud/symcheck/internal/db/memory"
	dbRedis "github.com/kailas-cloud/symcheck/internal/db/redis"
	logpkg "github.com/kailas-cloud/symcheck/internal/logger"
	"github.com/kailas-cloud/symcheck/internal/metrics"
	"github.com/kailas-cloud/symcheck/internal/repository/kbfile"
	sessionrepo "github.com/kailas-cloud/symcheck/internal/repository/session"
	chiTransport "github.com/kailas-cloud/symcheck/internal/transport/chi"
	"github.com/kailas-cloud/symcheck/internal/usecase/assess"
	"github.com/kailas-cloud/symcheck/internal/usecase/extract"
	healthuc "github.com/kailas-cloud/symcheck/internal/usecase/health"
	"github.com/kailas-cloud/symcheck/internal/usecase/triage"
	"github.com/kailas-cloud/symcheck/internal/version"
)

func main() {
	// Optional .env for local development; real deployments set the
	// environment directly.
	_ = godotenv.Load()

	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.New(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting symcheck API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("storage_driver", cfg.Storage.Driver),
		zap.String("kb_path", cfg.KB.Path),
	)

	// Create session store based on driver
	var store db.Store
	switch cfg.Storage.Driver {
	case "memory":
		store = memory.NewStore()
	case "redis":
		s, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Storage.Addrs,
			Password: cfg.Storage.Password,
			DB:       cfg.Storage.DB,
		})
		if err != nil {
			logger.Fatal("Failed to create session store", zap.Error(err))
		}
		store = s
	default:
		logger.Fatal("Unknown storage driver", zap.String("driver", cfg.Storage.Driver))
	}
	defer store.Close()

	// Wait for the store to be ready
	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Storage.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Session store not ready", zap.Error(err))
	}
	logger.Info("Connected to session store")

	// Register triage metrics explicitly (no init())
	metrics.RegisterTriageMetrics()

	// Load the knowledge base — fail fast, the service is useless without it
	snap, err := kbfile.Load(cfg.KB.Path)
	if err != nil {
		logger.Fatal("Failed to load knowledge base", zap.String("path", cfg.KB.Path), zap.Error(err))
	}
	provider := kbfile.NewProvider(snap)
	metrics.KBConditions.Set(float64(snap.ConditionCount()))
	logger.Info("Knowledge base loaded",
		zap.String("path", cfg.KB.Path),
		zap.Int("conditions", snap.ConditionCount()),
	)

	if cfg.KB.Watch {
		watcher, err := kbfile.NewWatcher(cfg.KB.Path, provider, logger)
		if err != nil {
			logger.Fatal("Failed to watch knowledge base", zap.Error(err))
		}
		defer func() { _ = watcher.Close() }()
		logger.Info("Knowledge base hot-reload enabled")
	}

	// Repositories and use case services — composition root
	sessions := sessionrepo.New(store, cfg.Storage.KeyPrefix,
		time.Duration(cfg.Storage.SessionTTLSec)*time.Second)

	engine := triage.New(
		triage.Weights{
			Base:       *cfg.Scoring.BaseWeight,
			Required:   *cfg.Scoring.RequiredWeight,
			Supporting: *cfg.Scoring.SupportingWeight,
			RedFlag:    *cfg.Scoring.RedFlagWeight,
		},
		triage.Thresholds{
			Urgent: *cfg.Scoring.UrgentThreshold,
			SeeGP:  *cfg.Scoring.SeeGPThreshold,
		},
		cfg.Scoring.TopN,
	)

	assessSvc := assess.New(extract.New(), engine, provider, sessions, logger)
	healthSvc := healthuc.New(store, provider)

	// Create chi server
	server := chiTransport.NewServer(assessSvc, healthSvc, logger).
		WithUploads(cfg.Uploads.Dir, cfg.Uploads.MaxSizeMB)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.RegisterRoutes(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"code":    "internal_error",
						"message": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())

			// Set X-Request-ID in response header
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line — one line per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
