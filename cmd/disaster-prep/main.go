package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"

	"github.com/mr1hm/go-disaster-prep/internal/api"
	"github.com/mr1hm/go-disaster-prep/internal/broadcast"
	"github.com/mr1hm/go-disaster-prep/internal/cache"
	"github.com/mr1hm/go-disaster-prep/internal/checklist"
	"github.com/mr1hm/go-disaster-prep/internal/config"
	"github.com/mr1hm/go-disaster-prep/internal/ingestion"
	"github.com/mr1hm/go-disaster-prep/internal/logging"
	"github.com/mr1hm/go-disaster-prep/internal/observability"
	"github.com/mr1hm/go-disaster-prep/internal/repository"
	"github.com/mr1hm/go-disaster-prep/internal/seed"
	"github.com/mr1hm/go-disaster-prep/internal/service"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatalf("Fatal while loading config: %v", err)
	}
	logging.Setup(cfg.Logging.Level)

	slog.Info("Server starting", "host", cfg.Server.Host, "port", cfg.Server.Port, "region", cfg.Sources.Region)

	db, err := repository.NewSQLiteDB(cfg.DB.Path)
	if err != nil {
		logging.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.DB.Seed {
		if err := seed.Apply(ctx, db, db, time.Now().UTC()); err != nil {
			logging.Fatalf("Failed to seed database: %v", err)
		}
	}

	alertCache := newAlertCache(ctx, cfg.Cache)
	metrics := observability.NewMetrics()

	// Fan-out for the SSE alert stream
	broadcaster := broadcast.NewBroadcaster()

	mgr := ingestion.NewManager(cfg, db, broadcaster, metrics)
	mgr.Start(ctx)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(corsConfig(cfg.Server.CORSOrigins)))
	router.Use(api.RateLimitMiddleware(cfg.Server.RateLimitRPS, cfg.Server.RateBurst))

	handler := api.NewHandler(api.Deps{
		Alerts:      service.NewAlertService(db, alertCache, cfg.Cache.AlertTTL, metrics),
		Resources:   service.NewResourceService(db, metrics),
		Community:   service.NewCommunityService(db, db),
		Checklists:  checklist.NewService(db, metrics),
		Broadcaster: broadcaster,
		Metrics:     metrics,
		Store:       db,
	})
	handler.RegisterRoutes(router)

	srv := &http.Server{
		Addr:    cfg.Addr(),
		Handler: router,
	}

	go func() {
		slog.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down...")

	cancel()
	mgr.Stop()
	broadcaster.Close() // ends open SSE streams

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}
	if closer, ok := alertCache.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			slog.Error("alert cache close error", "error", err)
		}
	}

	slog.Info("shutdown complete")
}

// newAlertCache connects to redis when configured and falls back to an
// in-process cache otherwise.
func newAlertCache(ctx context.Context, cfg config.CacheConfig) cache.AlertCache {
	if cfg.RedisAddr == "" {
		slog.Info("REDIS_ADDR not set, using in-memory alert cache")
		return cache.NewMemoryAlertCache(clockwork.NewRealClock())
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	rc, err := cache.NewRedisAlertCache(pingCtx, cache.Config{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		slog.Warn("redis unavailable, using in-memory alert cache", "addr", cfg.RedisAddr, "error", err)
		return cache.NewMemoryAlertCache(clockwork.NewRealClock())
	}
	slog.Info("using redis alert cache", "addr", cfg.RedisAddr)
	return rc
}

func corsConfig(origins []string) cors.Config {
	c := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", api.UserHeader},
		ExposeHeaders: []string{"Content-Length"},
	}
	if len(origins) == 1 && origins[0] == "*" {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = origins
	}
	return c
}
