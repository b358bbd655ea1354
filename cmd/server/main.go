package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"personaforge/internal/anonymize/advisor"
	"personaforge/internal/anonymize/census"
	anonymizeHandler "personaforge/internal/anonymize/handler"
	anonymizeMetrics "personaforge/internal/anonymize/metrics"
	anonymizeService "personaforge/internal/anonymize/service"
	"personaforge/internal/anonymize/store"
	jwttoken "personaforge/internal/jwt_token"
	"personaforge/internal/platform/config"
	"personaforge/internal/platform/httpserver"
	"personaforge/internal/platform/logger"
	platformMetrics "personaforge/internal/platform/metrics"
	platformRedis "personaforge/internal/platform/redis"
	"personaforge/internal/transparency"
	transparencyMemory "personaforge/internal/transparency/store/memory"
	transparencyPostgres "personaforge/internal/transparency/store/postgres"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()
	ctx := context.Background()

	// Job store: postgres when configured, in-memory otherwise.
	var jobStore store.Store = store.NewMemoryStore()
	var auditStore transparency.Store = transparencyMemory.NewInMemoryStore()
	if cfg.Postgres.URL != "" {
		pool, err := pgxpool.New(ctx, cfg.Postgres.URL)
		if err != nil {
			log.Error("failed to connect to postgres", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		jobStore = store.NewPostgres(pool)

		db, err := sql.Open("postgres", cfg.Postgres.URL)
		if err != nil {
			log.Error("failed to open audit database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		auditStore = transparencyPostgres.New(db)
	}

	// Census source: bundled national data, redis-cached when available.
	var censusSource census.Source = census.NewStaticSource()
	redisClient, err := platformRedis.New(cfg.Redis)
	if err != nil {
		log.Warn("redis unavailable, census cache disabled", "error", err)
	} else if redisClient != nil {
		defer redisClient.Close()
		censusSource = census.NewCachedSource(censusSource, redisClient.Client, log)
	}

	jwtService := jwttoken.New(cfg.Server.JWTSigningKey, "personaforge", "personaforge-api")
	jwtValidator := jwttoken.NewAdapter(jwtService)

	pMetrics := platformMetrics.New()
	aMetrics := anonymizeMetrics.New()
	auditLogger := transparency.NewLogger(auditStore)

	svc := anonymizeService.New(
		jobStore,
		auditLogger,
		aMetrics,
		log,
		advisor.NewRuleBased(),
		census.NewProvider(censusSource),
	)

	router := chi.NewRouter()
	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	router.Handle("/metrics", promhttp.Handler())
	anonymizeHandler.New(svc, log, pMetrics, jwtValidator).Register(router)

	srv := httpserver.New(cfg.Server.Addr, router)

	log.Info("starting personaforge", "addr", cfg.Server.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
}
