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

	"ip-enricher/enrich"
	"ip-enricher/enrich/application"
	"ip-enricher/enrich/criminalip"
	"ip-enricher/enrich/domain"
	"ip-enricher/enrich/infra"
	"ip-enricher/internal/config"
	"ip-enricher/internal/logging"

	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config error", "error", err)
		os.Exit(1)
	}
	log := logging.Setup(os.Stdout, logging.ParseLevel(cfg.LogLevel))

	client, err := criminalip.NewClient(criminalip.Options{
		BaseURL:            cfg.Upstream.BaseURL,
		Timeout:            cfg.Upstream.Timeout,
		InsecureSkipVerify: cfg.Upstream.InsecureSkipVerify,
		ProxyURL:           cfg.Upstream.ProxyURL,
		Logger:             log,
	})
	if err != nil {
		log.Error("client error", "error", err)
		os.Exit(1)
	}

	registry := infra.NewRegistry(
		cfg.Limiter.MaxConcurrent,
		cfg.Limiter.QueueCapacity,
		infra.WithPacing(cfg.Limiter.PacingRPS, cfg.Limiter.PacingBurst),
	)

	memStats := infra.NewMemoryStatsStore(infra.WithTrackKeys(cfg.Stats.TrackKeys))
	stats := statsFanout{memStats}
	if cfg.Stats.Enabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Stats.RedisAddr,
			Password: cfg.Stats.RedisPassword,
			DB:       cfg.Stats.RedisDB,
		})
		defer func() { _ = rdb.Close() }()

		pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		_, err := rdb.Ping(pingCtx).Result()
		cancel()
		if err != nil {
			log.Error("redis stats ping error", "error", err)
			os.Exit(1)
		}

		stats = append(stats, infra.NewRedisStatsStore(
			rdb,
			infra.WithStatsPrefix(cfg.Stats.Prefix),
			infra.WithStatsTTL(cfg.Stats.TTL),
			infra.WithStatsBucket(cfg.Stats.Bucket),
			infra.WithStatsTrackKeys(cfg.Stats.TrackKeys),
		))
	}

	enricher := &enrich.Enricher{
		Dispatcher: &application.Dispatcher{
			Registry: registry,
			Stats:    stats,
			Logger:   log,
		},
		Call: client.Fetch,
	}

	h := enrich.Handler(enrich.HandlerOptions{
		Enricher: enricher,
		KeyFn:    enrich.DefaultKeyFunc(cfg.APIKeyHeader, cfg.APIKey),
		Stats:    memStats,
		Logger:   log,
	})

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		// um lote pode esperar a fila inteira da credencial
		WriteTimeout: cfg.Upstream.Timeout*time.Duration(cfg.Limiter.QueueCapacity+1) + 30*time.Second,
		IdleTimeout:  90 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info("enricher listening",
		"addr", cfg.ListenAddr,
		"upstream", cfg.Upstream.BaseURL,
		"defaultKey", cfg.APIKey != "",
		"keyHeader", cfg.APIKeyHeader,
	)
	log.Info("limiter",
		"maxConcurrent", cfg.Limiter.MaxConcurrent,
		"queueCapacity", cfg.Limiter.QueueCapacity,
		"pacingRPS", cfg.Limiter.PacingRPS,
	)
	log.Info("stats", "redis", cfg.Stats.Enabled, "bucket", cfg.Stats.Bucket, "ttl", cfg.Stats.TTL.String(), "trackKeys", cfg.Stats.TrackKeys)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}

// statsFanout grava o mesmo evento em vários stores; o primeiro erro é devolvido.
type statsFanout []domain.StatsStore

func (f statsFanout) Record(ctx context.Context, ev domain.StatsEvent) error {
	var firstErr error
	for _, s := range f {
		if err := s.Record(ctx, ev); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
