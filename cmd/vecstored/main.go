// Command vecstored serves a vector store over HTTP: document ingestion,
// deletion, and similarity search against a Redis backend.
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
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	vectorstore "github.com/arvencloud/vectorstore"
	"github.com/arvencloud/vectorstore/backend"
	redisbk "github.com/arvencloud/vectorstore/backend/redis"
	"github.com/arvencloud/vectorstore/embedding/cache"
	openaiEmb "github.com/arvencloud/vectorstore/embedding/openai"
	"github.com/arvencloud/vectorstore/internal/config"
	logpkg "github.com/arvencloud/vectorstore/internal/logger"
	"github.com/arvencloud/vectorstore/internal/metrics"
	"github.com/arvencloud/vectorstore/internal/transport/httpapi"
	"github.com/arvencloud/vectorstore/internal/version"
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

	logger.Info("Starting vecstored server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
		zap.String("collection", cfg.Store.CollectionName),
	)

	client, err := redisbk.New(redisbk.Config{
		Addrs:      cfg.Database.Addrs,
		Username:   cfg.Database.Username,
		Password:   cfg.Database.Password,
		Database:   cfg.Store.DatabaseName,
		Collection: cfg.Store.CollectionName,
	})
	if err != nil {
		logger.Fatal("Failed to create backend client", zap.Error(err))
	}

	ctx := context.Background()
	if err := client.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Backend not ready", zap.Error(err))
	}
	logger.Info("Connected to backend")

	// Register metrics explicitly (no init())
	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterBackendMetrics()

	instrumented := backend.NewInstrumented(client, metrics.BackendRequestsTotal, metrics.BackendRequestDuration)

	embedder := buildEmbedder(cfg, client, logger)
	logger.Info("Embedder created",
		zap.String("model", cfg.Embedding.Model),
		zap.Int("dimensions", cfg.Store.EmbeddingDim),
		zap.Bool("cache", cfg.Embedding.CacheTTL > 0),
	)

	store, err := vectorstore.New(embedder,
		vectorstore.WithDatabaseName(cfg.Store.DatabaseName),
		vectorstore.WithCollectionName(cfg.Store.CollectionName),
		vectorstore.WithEmbeddingDim(cfg.Store.EmbeddingDim),
		vectorstore.WithMetric(backend.Metric(cfg.Store.Metric)),
		vectorstore.WithIndexKind(backend.IndexKind(cfg.Store.IndexKind)),
		vectorstore.WithIndexParams(map[string]int{
			"M":               cfg.Store.HNSWM,
			"EF_CONSTRUCTION": cfg.Store.HNSWEFConstruct,
		}),
		vectorstore.WithBackend(instrumented),
		vectorstore.WithLogger(logger),
	)
	if err != nil {
		logger.Fatal("Failed to create vector store", zap.Error(err))
	}
	defer store.Close()

	if err := store.Start(ctx); err != nil {
		logger.Fatal("Failed to start vector store", zap.Error(err))
	}
	logger.Info("Vector store ready")

	api := httpapi.NewServer(store, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(httpapi.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	api.Routes(r)
	r.Handle("/metrics", promhttp.Handler())

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

	store.Stop(shutdownCtx)

	logger.Info("Server stopped gracefully")
}

// ttlStore adapts the backend key-value commands to the cache store
// contract, applying the configured TTL on writes.
type ttlStore struct {
	client *redisbk.Client
	ttl    time.Duration
}

func (s *ttlStore) Get(ctx context.Context, key string) ([]byte, error) {
	return s.client.Get(ctx, key)
}

func (s *ttlStore) Set(ctx context.Context, key string, value []byte) error {
	return s.client.SetWithTTL(ctx, key, value, s.ttl)
}

// buildEmbedder assembles the embedder chain: OpenAI -> Cached.
func buildEmbedder(cfg config.Config, client *redisbk.Client, logger *zap.Logger) vectorstore.Embedder {
	base := openaiEmb.NewEmbedder(&openaiEmb.Config{
		APIKey:     cfg.Embedding.APIKey,
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Store.EmbeddingDim,
		Logger:     logger,
	})

	if cfg.Embedding.CacheTTL <= 0 {
		return base
	}

	kv := &ttlStore{client: client, ttl: time.Duration(cfg.Embedding.CacheTTL) * time.Second}
	return cache.New(base, kv, metrics.EmbeddingCacheTotal, logger)
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

			requestID := chiMiddleware.GetReqID(r.Context())
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
