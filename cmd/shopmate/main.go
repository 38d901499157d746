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
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/kailas-cloud/shopmate/internal/config"
	dbRedis "github.com/kailas-cloud/shopmate/internal/db/redis"
	"github.com/kailas-cloud/shopmate/internal/domain"
	logpkg "github.com/kailas-cloud/shopmate/internal/logger"
	"github.com/kailas-cloud/shopmate/internal/metrics"
	catalogrepo "github.com/kailas-cloud/shopmate/internal/repository/catalog"
	searchrepo "github.com/kailas-cloud/shopmate/internal/repository/search"
	chiTransport "github.com/kailas-cloud/shopmate/internal/transport/chi"
	openaiTransport "github.com/kailas-cloud/shopmate/internal/transport/openai"
	conversationuc "github.com/kailas-cloud/shopmate/internal/usecase/conversation"
	preferenceuc "github.com/kailas-cloud/shopmate/internal/usecase/preference"
	searchuc "github.com/kailas-cloud/shopmate/internal/usecase/search"
	"github.com/kailas-cloud/shopmate/internal/usecase/session"
	"github.com/kailas-cloud/shopmate/internal/version"
)

func main() {
	// Load .env before reading ENV-driven config
	_ = godotenv.Load()

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

	logger.Info("Starting shopmate API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("redis_addrs", cfg.Redis.Addrs),
	)

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Redis.Addrs,
		Password: cfg.Redis.Password,
	})
	if err != nil {
		logger.Fatal("Failed to create catalog store", zap.Error(err))
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Redis.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Catalog store not ready", zap.Error(err))
	}
	logger.Info("Connected to catalog store")

	// Register metrics explicitly (no init())
	metrics.Register()

	// LLM collaborators. Pass nil interfaces (not typed nil pointers!) when
	// unconfigured so the assistant degrades instead of failing turns.
	var (
		extractor preferenceuc.Extractor
		replier   conversationuc.Replier
		embedder  domain.Embedder
		llmClient *openaiTransport.Client
	)
	if cfg.LLM.APIKey != "" {
		llmClient = openaiTransport.NewClient(&openaiTransport.Config{
			APIKey:      cfg.LLM.APIKey,
			BaseURL:     cfg.LLM.BaseURL,
			Model:       cfg.LLM.ChatModel,
			Temperature: cfg.LLM.Temperature,
			Timeout:     time.Duration(cfg.LLM.TimeoutSec) * time.Second,
			Logger:      logger,
		})
		extractor = llmClient
		replier = llmClient
		embedder = openaiTransport.NewEmbedder(&openaiTransport.EmbedderConfig{
			APIKey:     cfg.LLM.APIKey,
			BaseURL:    cfg.LLM.BaseURL,
			Model:      cfg.LLM.EmbeddingModel,
			Dimensions: cfg.LLM.Dimensions,
			Timeout:    time.Duration(cfg.LLM.TimeoutSec) * time.Second,
			Logger:     logger,
		})
		logger.Info("LLM collaborators created",
			zap.String("chat_model", cfg.LLM.ChatModel),
			zap.String("embedding_model", cfg.LLM.EmbeddingModel),
		)
	} else {
		logger.Warn("LLM api key not set, running with canned replies only")
	}

	catalogRepo := catalogrepo.New(store, cfg.Redis.KeyPrefix)
	searchRepo := searchrepo.New(store, cfg.Redis.KeyPrefix)

	prefSvc := preferenceuc.NewService(extractor, logger)
	searchSvc := searchuc.NewService(searchRepo, embedder, catalogRepo,
		cfg.Search.PageSize, cfg.Search.OverfetchFactor, logger)
	turnSvc := conversationuc.NewService(prefSvc, searchSvc, replier,
		cfg.Search.HistoryWindow, logger)
	sessions := session.NewManager()

	checks := map[string]domain.HealthChecker{
		"redis": chiTransport.CheckFunc(store.Ping),
	}
	if llmClient != nil {
		checks["llm"] = llmClient
	}

	server := chiTransport.NewServer(sessions, turnSvc, checks, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	}))
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
