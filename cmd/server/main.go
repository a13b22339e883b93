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
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"trustgraph/internal/platform/config"
	"trustgraph/internal/platform/database"
	"trustgraph/internal/platform/health"
	"trustgraph/internal/platform/logger"
	platformredis "trustgraph/internal/platform/redis"
	httptransport "trustgraph/internal/transport/http"
	trusthandler "trustgraph/internal/trust/handler"
	trustmetrics "trustgraph/internal/trust/metrics"
	"trustgraph/internal/trust/models"
	"trustgraph/internal/trust/service"
	"trustgraph/internal/trust/signing"
	"trustgraph/internal/trust/store"
	"trustgraph/internal/trust/tracer"
	"trustgraph/pkg/platform/audit/publisher"
	auditmemory "trustgraph/pkg/platform/audit/store/memory"
	"trustgraph/pkg/platform/middleware/request"
)

const (
	shutdownTimeout   = 10 * time.Second
	poolStatsInterval = 15 * time.Second
	auditBufferSize   = 1024
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.FromEnv()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.New(cfg.LogLevel)
	if cfg.UsesDevSigningKey() {
		if cfg.IsProduction() {
			return errors.New("JWT_SIGNING_KEY must be set in production")
		}
		log.Warn("using development signing key; set JWT_SIGNING_KEY")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	probes := health.New(cfg.Environment)
	backend, err := openStore(ctx, cfg, reg, probes, log)
	if err != nil {
		return err
	}
	defer backend.close()

	signer, err := signing.New(cfg.JWTSigningKey)
	if err != nil {
		return fmt.Errorf("init signer: %w", err)
	}
	anchors, err := loadAnchors(cfg.AnchorsFile)
	if err != nil {
		return err
	}

	auditor := publisher.New(auditmemory.NewInMemoryStore(),
		publisher.WithAsyncBuffer(auditBufferSize),
		publisher.WithLogger(log),
	)
	defer auditor.Close()

	svc := service.New(backend.store,
		service.WithLogger(log),
		service.WithMetrics(trustmetrics.New(reg)),
		service.WithAuditor(auditor),
		service.WithTracer(tracer.NewOTel()),
		service.WithSigner(signer),
		service.WithAnchors(anchors),
		service.WithAllowVerifierBypass(cfg.AllowVerifierBypass),
		service.WithMaxPathDepth(cfg.MaxPathDepth),
	)
	if err := svc.SeedAnchors(ctx); err != nil {
		return fmt.Errorf("seed trust anchors: %w", err)
	}

	router := httptransport.NewRouter(
		trusthandler.New(svc, log),
		probes,
		request.NewMetrics(reg),
		log,
		httptransport.Config{RequestTimeout: cfg.RequestTimeout, MaxBodyBytes: cfg.MaxBodyBytes},
	)

	log.Info("initializing trust registry",
		"addr", cfg.Addr,
		"metrics_addr", cfg.MetricsAddr,
		"store", cfg.Store,
		"anchors", len(svc.Anchors()),
		"verifier_bypass", cfg.AllowVerifierBypass,
	)

	g, gctx := errgroup.WithContext(ctx)
	servers := []*http.Server{newServer(cfg.Addr, router)}
	if cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
		servers = append(servers, newServer(cfg.MetricsAddr, mux))
	}
	for _, srv := range servers {
		g.Go(func() error {
			log.Info("starting http server", "addr", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("serve %s: %w", srv.Addr, err)
			}
			return nil
		})
	}
	if backend.redis != nil {
		g.Go(func() error {
			backend.redis.ReportPoolStats(gctx, poolStatsInterval, log)
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down server gracefully")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		var errs []error
		for _, srv := range servers {
			if err := srv.Shutdown(shutdownCtx); err != nil {
				errs = append(errs, fmt.Errorf("shutdown %s: %w", srv.Addr, err))
			}
		}
		return errors.Join(errs...)
	})

	if err := g.Wait(); err != nil {
		log.Error("server stopped with error", "error", err)
		return err
	}
	log.Info("server stopped")
	return nil
}

func newServer(addr string, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

type storeBackend struct {
	store store.Store
	redis *platformredis.Client
	close func()
}

// openStore builds the configured trust store and registers its readiness
// check.
func openStore(ctx context.Context, cfg config.Server, reg prometheus.Registerer, probes *health.Handler, log *slog.Logger) (*storeBackend, error) {
	switch cfg.Store {
	case config.StoreRedis:
		client, err := platformredis.New(ctx, cfg.Redis, platformredis.NewPoolMetrics(reg))
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		probes.RegisterCheck("redis", client.Health)
		return &storeBackend{
			store: store.NewRedis(client.Client),
			redis: client,
			close: func() {
				if err := client.Close(); err != nil {
					log.Warn("failed to close redis client", "error", err)
				}
			},
		}, nil
	case config.StorePostgres:
		pool, err := database.New(ctx, cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("connect database: %w", err)
		}
		if err := database.Migrate(ctx, pool.DB()); err != nil {
			_ = pool.Close()
			return nil, fmt.Errorf("migrate database: %w", err)
		}
		probes.RegisterCheck("postgres", pool.Health)
		return &storeBackend{
			store: store.NewPostgres(pool.DB()),
			close: func() {
				if err := pool.Close(); err != nil {
					log.Warn("failed to close database pool", "error", err)
				}
			},
		}, nil
	default:
		st := store.NewInMemory()
		probes.RegisterCheck("store", func(ctx context.Context) error {
			_, err := st.Count(ctx)
			return err
		})
		return &storeBackend{store: st, close: func() {}}, nil
	}
}

func loadAnchors(path string) ([]service.Anchor, error) {
	entries, err := config.LoadAnchors(path)
	if err != nil {
		return nil, err
	}
	anchors := make([]service.Anchor, 0, len(entries))
	for _, e := range entries {
		anchors = append(anchors, service.Anchor{DID: models.DID(e.DID), Issuer: models.DID(e.Issuer)})
	}
	return anchors, nil
}
