package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Adithya-Monish-Kumar-K/search-server/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/indexer/consumer"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/indexer/loader"
	ingesthandler "github.com/Adithya-Monish-Kumar-K/search-server/internal/ingestion/handler"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/ingestion/publisher"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/ingestion/validator"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/searcher/batch"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/searcher/cache"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/searcher/handler"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/searcher/service"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/middleware"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/postgres"
	pkgredis "github.com/Adithya-Monish-Kumar-K/search-server/pkg/redis"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/resilience"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting search server",
		"port", cfg.Server.Port,
		"strategy", cfg.Search.Strategy,
		"max_results", cfg.Search.MaxResults,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
		go func() {
			if err := metrics.Serve(ctx, cfg.Metrics.Port); err != nil {
				slog.Error("metrics server error", "error", err)
			}
		}()
	}

	engine, err := indexer.New(cfg.Search, cfg.Index.StopWords...)
	if err != nil {
		slog.Error("failed to create index engine", "error", err)
		os.Exit(1)
	}

	checker := health.NewChecker()

	var (
		resultCache *cache.ResultCache
		redisClient *pkgredis.Client
	)
	if cfg.Cache.Enabled {
		var remote cache.Remote
		if cfg.Cache.UseRedis {
			redisClient, err = pkgredis.NewClient(cfg.Redis)
			if err != nil {
				slog.Warn("redis unavailable, using local cache only", "error", err)
			} else {
				defer redisClient.Close()
				if n, err := redisClient.DeletePrefix(ctx, cache.KeyPrefix); err != nil {
					slog.Warn("failed to clear stale cache entries", "error", err)
				} else if n > 0 {
					slog.Info("stale cache entries cleared", "count", n)
				}
				breaker := resilience.NewBreaker("redis-cache", resilience.BreakerConfig{
					FailureThreshold: 5,
					ResetTimeout:     30 * time.Second,
					CallTimeout:      250 * time.Millisecond,
				})
				remote = cache.Guard(redisClient, breaker)
				checker.Register("redis", health.PingCheck(redisClient.Ping, false))
			}
		}
		resultCache, err = cache.New(cfg.Cache.LocalSize, remote, cfg.Redis.CacheTTL, m)
		if err != nil {
			slog.Error("failed to create result cache", "error", err)
			os.Exit(1)
		}
		slog.Info("result cache enabled", "local_size", cfg.Cache.LocalSize, "redis", remote != nil)
	}

	svc := service.New(engine, resultCache, m)

	if cfg.Postgres.Enabled {
		pg, err := postgres.New(ctx, cfg.Postgres)
		if err != nil {
			slog.Error("failed to connect to postgres", "error", err)
			os.Exit(1)
		}
		result, err := loader.Load(ctx, pg.DB, cfg.Postgres.SeedQuery, svc)
		if err != nil {
			slog.Error("failed to seed index", "error", err)
			os.Exit(1)
		}
		if err := pg.Close(); err != nil {
			slog.Warn("failed to close postgres", "error", err)
		}
		slog.Info("index seeded", "loaded", result.Loaded, "skipped", result.Skipped)
	}

	var (
		collector *analytics.Collector
		writer    ingesthandler.Writer = consumer.NewDirect(svc)
	)
	if cfg.Kafka.Enabled {
		eventsProducer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.RequestEvents, true)
		defer eventsProducer.Close()
		collector = analytics.NewCollector(eventsProducer, 10000)
		collector.Start(ctx)
		defer collector.Close()

		docsProducer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.Documents, false)
		defer docsProducer.Close()
		writer = publisher.New(docsProducer)

		docsConsumer, err := kafka.NewConsumer(ctx, cfg.Kafka, cfg.Kafka.Topics.Documents, consumer.HandleMessage(svc))
		if err != nil {
			slog.Error("failed to create documents consumer", "error", err)
			os.Exit(1)
		}
		defer docsConsumer.Close()
		indexConsumer := consumer.New(docsConsumer)
		go func() {
			if err := indexConsumer.Start(ctx); err != nil {
				slog.Error("index consumer error", "error", err)
			}
		}()
		slog.Info("kafka pipeline started",
			"documents_topic", cfg.Kafka.Topics.Documents,
			"events_topic", cfg.Kafka.Topics.RequestEvents,
		)
	}

	tracker := analytics.NewTracker(svc, cfg.Tracker.Capacity, collector, m)
	processor := batch.New(svc, cfg.Search.BatchWorkers, m)

	var sanitizer *validator.Sanitizer
	if cfg.Index.StripHTML {
		sanitizer = validator.NewSanitizer()
	}

	checker.Register("index_engine", func(ctx context.Context) health.ComponentHealth {
		return health.ComponentHealth{
			Status:  health.StatusUp,
			Message: fmt.Sprintf("%d documents indexed", svc.DocumentCount()),
		}
	})

	h := handler.New(tracker, processor, svc, resultCache)
	ingest := ingesthandler.New(writer, sanitizer)
	statsH := analytics.NewHandler(tracker)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/search", h.Search)
	mux.HandleFunc("POST /api/v1/search/batch", h.Batch)
	mux.HandleFunc("GET /api/v1/documents", h.ListDocuments)
	mux.HandleFunc("POST /api/v1/documents", ingest.AddDocument)
	mux.HandleFunc("POST /api/v1/documents/deduplicate", h.Deduplicate)
	mux.HandleFunc("GET /api/v1/documents/{id}", h.GetDocument)
	mux.HandleFunc("DELETE /api/v1/documents/{id}", ingest.RemoveDocument)
	mux.HandleFunc("GET /api/v1/documents/{id}/match", h.Match)
	mux.HandleFunc("GET /api/v1/documents/{id}/words", h.Words)
	mux.HandleFunc("GET /api/v1/requests/stats", statsH.Stats)
	mux.HandleFunc("GET /api/v1/cache/stats", h.CacheStats)
	mux.HandleFunc("GET /health/live", checker.LiveHandler())
	mux.HandleFunc("GET /health/ready", checker.ReadyHandler())

	// Metrics sits directly on the mux: it reads the matched route pattern
	// from the request the mux received.
	var chain http.Handler = mux
	chain = middleware.Metrics(m)(chain)
	chain = middleware.Timeout(cfg.Server.WriteTimeout)(chain)
	if rl := cfg.Server.RateLimit; rl.Enabled {
		limiter := middleware.NewLimiter(rl.Requests, rl.Window)
		go limiter.Cleanup(ctx, 5*time.Minute)
		chain = middleware.RateLimit(limiter)(chain)
	}
	chain = middleware.Logging(chain)
	chain = middleware.RequestID(chain)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      chain,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// ListenAndServe returns as soon as Shutdown begins; deferred closes run
	// only after drained.
	drained := make(chan struct{})
	go func() {
		defer close(drained)
		<-ctx.Done()
		slog.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
	}()

	slog.Info("search server listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
	<-drained
	slog.Info("search server stopped")
}
