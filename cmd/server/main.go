package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"collegedesk/internal/audit"
	"collegedesk/internal/collegedata/handler"
	collegemetrics "collegedesk/internal/collegedata/metrics"
	"collegedesk/internal/collegedata/service"
	"collegedesk/internal/collegedata/store"
	"collegedesk/internal/platform/config"
	"collegedesk/internal/platform/httpserver"
	"collegedesk/internal/platform/logger"
	"collegedesk/internal/platform/metrics"
	"collegedesk/internal/platform/middleware"
	"collegedesk/internal/platform/postgres"
	platformredis "collegedesk/internal/platform/redis"
	"collegedesk/pkg/platform/middleware/metadata"
	"collegedesk/pkg/platform/middleware/requesttime"
)

// main wires dependencies and owns the server lifecycle. Business logic
// lives in the internal service packages.
func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	documents, closeStore, err := buildStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	sink, closeSink, err := buildAuditSink(cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		closeSink(flushCtx)
	}()

	svc, err := service.New(documents, log,
		service.WithAudit(audit.NewPublisher(sink)),
		service.WithMetrics(collegemetrics.New()),
	)
	if err != nil {
		return fmt.Errorf("build service: %w", err)
	}

	platformMetrics := metrics.New()

	r := chi.NewRouter()
	r.Use(middleware.Recovery(log))
	r.Use(middleware.RequestID)
	r.Use(requesttime.Middleware)
	r.Use(metadata.ClientMetadata)
	r.Use(middleware.Logger(log))
	r.Use(middleware.Latency(platformMetrics))

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		if err := documents.Health(req.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("store unavailable"))
			return
		}
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(api chi.Router) {
		api.Use(middleware.Timeout(cfg.RequestTimeout))
		api.Use(middleware.ContentTypeJSON)
		handler.New(svc, log).Register(api)
	})

	srv := httpserver.New(cfg.Addr, r)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting collegedesk server",
			"addr", cfg.Addr,
			"store", string(cfg.StoreBackend),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		log.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// buildStore selects the document store backend and returns it with its
// cleanup function.
func buildStore(ctx context.Context, cfg config.Server) (store.Store, func(), error) {
	switch cfg.StoreBackend {
	case config.StorePostgres:
		db, err := postgres.Open(ctx, cfg.PostgresURL)
		if err != nil {
			return nil, nil, fmt.Errorf("open postgres: %w", err)
		}
		pg := store.NewPostgres(db)
		if err := pg.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return pg, func() { _ = db.Close() }, nil

	case config.StoreRedis:
		client, err := platformredis.New(cfg.Redis)
		if err != nil {
			return nil, nil, fmt.Errorf("connect redis: %w", err)
		}
		return store.NewRedis(client.Client), func() { _ = client.Close() }, nil

	case config.StoreMemory:
		return store.NewInMemoryStore(), func() {}, nil

	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}

// buildAuditSink returns the Kafka sink when brokers are configured, falling
// back to the in-memory sink otherwise.
func buildAuditSink(cfg config.Server, log *slog.Logger) (audit.Sink, func(context.Context), error) {
	if len(cfg.KafkaBrokers) == 0 {
		return audit.NewInMemorySink(), func(context.Context) {}, nil
	}

	sink, err := audit.NewKafkaSink(cfg.KafkaBrokers, cfg.KafkaTopic, log)
	if err != nil {
		return nil, nil, fmt.Errorf("connect kafka: %w", err)
	}
	log.Info("audit events publishing to kafka",
		"brokers", cfg.KafkaBrokers,
		"topic", cfg.KafkaTopic,
	)
	return sink, func(ctx context.Context) {
		if err := sink.Flush(ctx); err != nil {
			log.Warn("audit flush failed", "error", err)
		}
		sink.Close()
	}, nil
}
