package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	redisstore "github.com/gin-contrib/sessions/redis"
	goredis "github.com/redis/go-redis/v9"

	"github.com/ideahub/ideas-hub/internal/auth"
	"github.com/ideahub/ideas-hub/internal/brainstorm"
	"github.com/ideahub/ideas-hub/internal/config"
	"github.com/ideahub/ideas-hub/internal/database"
	"github.com/ideahub/ideas-hub/internal/ideas"
	"github.com/ideahub/ideas-hub/internal/logging"
	"github.com/ideahub/ideas-hub/internal/server"
	"github.com/ideahub/ideas-hub/internal/store"
	"github.com/ideahub/ideas-hub/internal/worker"
	"github.com/ideahub/ideas-hub/internal/youtube"
)

func main() {
	cfg := config.Load()
	logger := logging.NewLogger(cfg.LogLevel, cfg.LogFormat)

	db, err := database.Init(cfg.DatabaseURL)
	if err != nil {
		logger.Error("Database init failed", "error", err)
		os.Exit(1)
	}
	defer database.Close(db)

	if err := database.RunMigrations(db, logger); err != nil {
		logger.Error("Migrations failed", "error", err)
		os.Exit(1)
	}

	if cfg.SeedDevData && cfg.Env != "production" {
		if err := database.SeedDevData(db, logger); err != nil {
			logger.Warn("Dev seeding failed", "error", err)
		}
	}

	auth.InitProviders(cfg, logger)

	users := store.NewUserStore(db)
	ideaStore := store.NewIdeaStore(db)
	brainstorms := store.NewBrainstormStore(db)

	if cfg.YouTubeAPIKey == "" {
		logger.Warn("YOUTUBE_API_KEY not set, enrichment sections will render empty")
	}
	yt := youtube.NewClient(cfg.YouTubeAPIKey, "")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ai, err := brainstorm.New(ctx, cfg.GeminiAPIKey, logger)
	if err != nil {
		logger.Error("Brainstorm service init failed", "error", err)
		os.Exit(1)
	}

	// Redis is optional: when reachable it backs sessions and the background
	// resolution queue, otherwise both degrade (cookie sessions, no queue).
	sessionStore, enqueueResolve, stopWorker := setupRedis(ctx, cfg, logger, ideaStore, yt)
	defer stopWorker()

	handlers := ideas.NewHandlers(ideaStore, brainstorms, yt, ai, logger, enqueueResolve)
	router := server.NewRouter(cfg, logger, sessionStore, users, handlers)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info("Server listening", "port", cfg.Port, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown failed", "error", err)
	}
}

// sessionOptions returns the cookie policy shared by the app session stores.
// It matches the gothic OAuth cookie so both carry the same SameSite and
// Secure settings.
func sessionOptions(env string) sessions.Options {
	return sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 30,
		HttpOnly: true,
		Secure:   env == "production",
		SameSite: http.SameSiteLaxMode,
	}
}

// setupRedis probes Redis and wires the Redis-backed session store and the
// Asynq worker when it is reachable. The returned stop function is always
// safe to call.
func setupRedis(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	ideaStore store.IdeaStore,
	yt *youtube.Client,
) (sessions.Store, func(ideaID, ownerID uint, nameQuery string) error, func()) {
	cookieStore := cookie.NewStore([]byte(cfg.SessionSecret))
	cookieStore.Options(sessionOptions(cfg.Env))

	if cfg.RedisURL == "" {
		logger.Info("REDIS_URL not set, using cookie sessions without a task queue")
		return cookieStore, nil, func() {}
	}

	opts, err := goredis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Warn("Invalid REDIS_URL, falling back to cookie sessions", "error", err)
		return cookieStore, nil, func() {}
	}

	probe := goredis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := probe.Ping(pingCtx).Err(); err != nil {
		probe.Close()
		logger.Warn("Redis unreachable, falling back to cookie sessions", "error", err)
		return cookieStore, nil, func() {}
	}
	probe.Close()

	redisSessions, err := redisstore.NewStore(10, "tcp", opts.Addr, opts.Username, opts.Password, []byte(cfg.SessionSecret))
	if err != nil {
		logger.Warn("Redis session store init failed, falling back to cookie sessions", "error", err)
		return cookieStore, nil, func() {}
	}
	redisSessions.Options(sessionOptions(cfg.Env))

	if err := worker.InitClient(cfg.RedisURL); err != nil {
		logger.Warn("Asynq client init failed, continuing without a task queue", "error", err)
		return redisSessions, nil, func() {}
	}

	stopWorker, err := worker.Start(cfg.RedisURL, logger, ideaStore, yt)
	if err != nil {
		logger.Warn("Worker start failed, continuing without a task queue", "error", err)
		return redisSessions, nil, func() { worker.CloseClient() }
	}

	logger.Info("Redis enabled", "sessions", "redis", "queue", "asynq")
	return redisSessions, worker.EnqueueResolveChannel, func() {
		stopWorker()
		worker.CloseClient()
	}
}
