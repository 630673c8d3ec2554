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
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/kailas-cloud/mediasearch/internal/config"
	dbRedis "github.com/kailas-cloud/mediasearch/internal/db/redis"
	"github.com/kailas-cloud/mediasearch/internal/domain/match"
	domset "github.com/kailas-cloud/mediasearch/internal/domain/settings"
	logpkg "github.com/kailas-cloud/mediasearch/internal/logger"
	"github.com/kailas-cloud/mediasearch/internal/metrics"
	datastorerepo "github.com/kailas-cloud/mediasearch/internal/repository/datastore"
	documentrepo "github.com/kailas-cloud/mediasearch/internal/repository/document"
	"github.com/kailas-cloud/mediasearch/internal/repository/fallback"
	"github.com/kailas-cloud/mediasearch/internal/repository/keyspace"
	searchrepo "github.com/kailas-cloud/mediasearch/internal/repository/search"
	settingsrepo "github.com/kailas-cloud/mediasearch/internal/repository/settings"
	chiTransport "github.com/kailas-cloud/mediasearch/internal/transport/chi"
	openaiExp "github.com/kailas-cloud/mediasearch/internal/transport/openai"
	datastoreuc "github.com/kailas-cloud/mediasearch/internal/usecase/datastore"
	healthuc "github.com/kailas-cloud/mediasearch/internal/usecase/health"
	"github.com/kailas-cloud/mediasearch/internal/usecase/indexer"
	searchuc "github.com/kailas-cloud/mediasearch/internal/usecase/search"
	"github.com/kailas-cloud/mediasearch/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting mediasearch API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Bool("primary", cfg.Primary.Enabled),
		zap.Bool("fallback", cfg.Fallback.Enabled),
		zap.Bool("expansion", cfg.Expansion.Enabled),
	)

	metrics.RegisterSearchMetrics()

	ctx := context.Background()
	health := healthuc.New()

	// Pass nil interfaces (not typed nil pointers!) for disabled backends.
	var stores indexer.StoreResolver = datastoreuc.Unavailable{}
	var deleter chiTransport.StoreDeleter = datastoreuc.Unavailable{}
	var settings searchuc.SettingsReader = settingsrepo.Static{
		Preference: domset.Preference{Backend: domset.BackendFallback},
	}
	var docs indexer.DocumentStore
	var primary, fb searchuc.Backend

	if cfg.Primary.Enabled {
		store, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Database.Addrs,
			Username: cfg.Database.Username,
			Password: cfg.Database.Password,
		})
		if err != nil {
			logger.Fatal("Failed to create redis store", zap.Error(err))
		}
		defer store.Close()

		if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
			logger.Fatal("Redis not ready", zap.Error(err))
		}
		logger.Info("Connected to redis", zap.Strings("addrs", cfg.Database.Addrs))

		keys := keyspace.New(cfg.Primary.KeyPrefix)
		mgr := datastoreuc.NewManager(datastorerepo.New(store, keys), logger).
			WithCreateTimeout(time.Duration(cfg.Primary.CreateTimeoutSec) * time.Second).
			WithDeleteWait(time.Duration(cfg.Primary.DeleteWaitSec) * time.Second).
			WithMaxCreateAttempts(cfg.Primary.MaxCreateAttempts)
		stores, deleter = mgr, mgr
		docs = documentrepo.New(store, keys)
		primary = searchuc.NewPrimaryBackend(mgr, searchrepo.New(store, keys), logger)
		settings = settingsrepo.New(store, keys, defaultPreference(&cfg.Search))
		health.WithBackend("primary", store)
	}

	idx := indexer.New(stores, docs, logger).
		WithBatchSize(cfg.Indexer.BatchSize).
		WithBatchDelay(time.Duration(cfg.Indexer.BatchDelayMs) * time.Millisecond)

	if cfg.Fallback.Enabled {
		gdb := openFallback(&cfg.Fallback, logger)
		defer func() {
			if sqlDB, err := gdb.DB(); err == nil {
				_ = sqlDB.Close()
			}
		}()

		repo := fallback.New(gdb)
		fb = searchuc.NewFallbackBackend(repo, match.New(cfg.Fallback.FuzzyThreshold), logger)
		if cfg.Indexer.MirrorFallback {
			idx = idx.WithMirror(repo)
		}
		health.WithBackend("fallback", repo)
	}

	exec := searchuc.NewMultiQueryExecutor(logger).WithMaxParallel(cfg.Search.MaxParallel)
	orch := searchuc.NewOrchestrator(settings, primary, fb, exec, logger).
		WithExpandMinChars(cfg.Search.ExpandMinChars).
		WithPageSize(cfg.Search.DefaultPageSize, cfg.Search.MaxPageSize)

	if cfg.Expansion.Enabled {
		exp, err := openaiExp.NewExpander(&openaiExp.Config{
			APIKey:     cfg.Expansion.APIKey,
			BaseURL:    cfg.Expansion.BaseURL,
			Model:      cfg.Expansion.Model,
			MaxQueries: cfg.Expansion.MaxQueries,
			CacheSize:  cfg.Expansion.CacheSize,
			Timeout:    time.Duration(cfg.Expansion.TimeoutSec) * time.Second,
			Logger:     logger,
		})
		if err != nil {
			logger.Fatal("Failed to create query expander", zap.Error(err))
		}
		orch = orch.WithExpander(exp)
		health.WithDependency("expansion", exp)
		logger.Info("Query expansion enabled", zap.String("model", cfg.Expansion.Model))
	}

	server := chiTransport.NewServer(orch, idx, deleter, health, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Routes(r)

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
		logger.Info("Starting HTTP server", zap.String("addr", addr), zap.Strings("components", health.Names()))
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

func defaultPreference(cfg *config.SearchConfig) domset.Preference {
	backend, err := domset.ParseBackend(cfg.DefaultBackend)
	if err != nil {
		backend = domset.BackendPrimary
	}
	return domset.Preference{Backend: backend, AutoIndex: cfg.AutoIndex}
}

func openFallback(cfg *config.FallbackConfig, logger *zap.Logger) *gorm.DB {
	gdb, err := fallback.Open(fallback.Config{
		Driver:       cfg.Driver,
		DSN:          cfg.DSN,
		AutoMigrate:  cfg.AutoMigrate,
		MaxOpenConns: cfg.MaxOpenConns,
		Logger:       logger,
	})
	if err != nil {
		logger.Fatal("Failed to open fallback store", zap.String("driver", cfg.Driver), zap.Error(err))
	}
	logger.Info("Connected to fallback store", zap.String("driver", cfg.Driver))
	return gdb
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
					_ = json.NewEncoder(w).Encode(chiTransport.ErrorResponse{
						Code:    chiTransport.ErrorCodeInternalError,
						Message: "internal error",
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

			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line, one per request
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
