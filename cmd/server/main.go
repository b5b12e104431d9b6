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

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"bridgeid/internal/callertoken"
	"bridgeid/internal/platform/config"
	"bridgeid/internal/platform/database"
	"bridgeid/internal/platform/health"
	"bridgeid/internal/platform/kafka/producer"
	"bridgeid/internal/platform/logger"
	"bridgeid/internal/platform/metrics"
	"bridgeid/internal/platform/redis"
	"bridgeid/internal/verification/dispatch"
	"bridgeid/internal/verification/events"
	verificationhandler "bridgeid/internal/verification/handler"
	verificationmetrics "bridgeid/internal/verification/metrics"
	"bridgeid/internal/verification/models"
	verificationservice "bridgeid/internal/verification/service"
	requeststore "bridgeid/internal/verification/store/request"
	settingsstore "bridgeid/internal/verification/store/settings"
	statusstore "bridgeid/internal/verification/store/status"
	"bridgeid/internal/verification/workers/stale"
	"bridgeid/pkg/platform/circuit"
	"bridgeid/pkg/platform/tracer"
)

const (
	shutdownTimeout   = 10 * time.Second
	eventBufferSize   = 1024
	poolStatsInterval = 15 * time.Second
)

// main wires dependencies and runs the HTTP server alongside the stale request
// monitor. Protocol logic lives in internal/verification.
func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server exited with error", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}

func run(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	boot, err := cfg.Bootstrap()
	if err != nil {
		return err
	}

	log.Info("initializing bridgeid",
		"addr", cfg.Addr,
		"environment", cfg.Environment,
		"instance", boot.Instance.Hex(),
		"mock_mode", boot.MockMode,
	)

	healthHandler := health.New(cfg.Environment)
	protocolMetrics := verificationmetrics.New(prometheus.DefaultRegisterer)

	var poolStats []func()

	stores, tx, pendingCounter, closeDB, err := buildStores(cfg, log, healthHandler, &poolStats)
	if err != nil {
		return err
	}
	defer closeDB()

	sinks, closeSinks, err := buildSinks(ctx, cfg, log, healthHandler, &poolStats)
	if err != nil {
		return err
	}
	defer closeSinks()

	publisher := events.NewPublisher(sinks,
		events.WithAsyncBuffer(eventBufferSize),
		events.WithLogger(log),
		events.WithFailureRecorder(protocolMetrics),
	)
	defer publisher.Close()

	svc := verificationservice.New(stores, tx, boot.Instance,
		verificationservice.WithLogger(log),
		verificationservice.WithDispatcher(buildDispatcher(cfg, log, protocolMetrics)),
		verificationservice.WithEventPublisher(publisher),
		verificationservice.WithMetrics(protocolMetrics),
		verificationservice.WithTracer(tracer.NewOTel()),
		verificationservice.WithCallbackBaseURL(cfg.Responder.CallbackBaseURL),
	)

	created, err := svc.Initialize(ctx, boot.Owner, models.ResponderConfig{
		ResponderAddress: boot.Responder,
		CorrelationTag:   boot.CorrelationTag,
		FeeAmount:        boot.FeeAmount,
		MockModeEnabled:  boot.MockMode,
	})
	if err != nil {
		return err
	}
	if !created {
		log.Info("using stored settings; bootstrap responder configuration ignored")
	}
	healthHandler.SetProtocolReporter(func(ctx context.Context) (health.ProtocolInfo, error) {
		settings, err := svc.Config(ctx)
		if err != nil {
			return health.ProtocolInfo{}, err
		}
		return health.ProtocolInfo{
			Instance:  boot.Instance.Hex(),
			Owner:     settings.Owner.Hex(),
			Responder: settings.Responder.ResponderAddress.Hex(),
			MockMode:  settings.Responder.MockModeEnabled,
		}, nil
	})

	monitor, err := stale.New(pendingCounter, protocolMetrics,
		stale.WithStaleAfter(cfg.Monitor.StaleAfter),
		stale.WithInterval(cfg.Monitor.ScanInterval),
		stale.WithLogger(log),
	)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr: cfg.Addr,
		Handler: newRouter(routerDeps{
			logger:       log,
			verification: verificationhandler.New(svc, log),
			health:       healthHandler,
			tokens:       callertoken.New(cfg.Caller.SigningKey, cfg.Caller.Issuer),
			owners:       svc,
			httpMetrics:  metrics.NewHTTP(),
			timeout:      cfg.RequestTimeout,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting http server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		if err := monitor.Start(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	if len(poolStats) > 0 {
		g.Go(func() error {
			recordPoolStats(gctx, poolStats)
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down server gracefully")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// buildStores returns Postgres-backed stores when DATABASE_URL is set and
// in-memory stores otherwise.
func buildStores(cfg *config.Config, log *slog.Logger, h *health.Handler, stats *[]func()) (verificationservice.Stores, verificationservice.StoreTx, stale.PendingCounter, func(), error) {
	pool, err := database.New(cfg.Database)
	if err != nil {
		return verificationservice.Stores{}, nil, nil, nil, err
	}
	if pool == nil {
		log.Warn("DATABASE_URL not set; using in-memory stores")
		requests := requeststore.NewInMemory()
		stores := verificationservice.Stores{
			Requests: requests,
			Statuses: statusstore.NewInMemory(),
			Settings: settingsstore.NewInMemory(),
		}
		return stores, verificationservice.NewInMemoryTx(stores), requests, func() {}, nil
	}

	if err := database.Migrate(pool.DB()); err != nil {
		_ = pool.Close()
		return verificationservice.Stores{}, nil, nil, nil, err
	}
	h.RegisterCheck("postgres", pool.Health)
	*stats = append(*stats, pool.RecordStats)

	requests := requeststore.NewPostgres(pool.DB())
	stores := verificationservice.Stores{
		Requests: requests,
		Statuses: statusstore.NewPostgres(pool.DB()),
		Settings: settingsstore.NewPostgres(pool.DB()),
	}
	closeFn := func() {
		if err := pool.Close(); err != nil {
			log.Warn("failed to close database", "error", err)
		}
	}
	return stores, newVerificationPostgresTx(pool.DB(), 0), requests, closeFn, nil
}

// buildSinks always keeps an in-memory log and adds Redis and Kafka when configured.
func buildSinks(ctx context.Context, cfg *config.Config, log *slog.Logger, h *health.Handler, stats *[]func()) ([]events.Sink, func(), error) {
	sinks := []events.Sink{events.NewLog()}
	var closers []func()
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	rc, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return nil, nil, err
	}
	if rc != nil {
		h.RegisterCheck("redis", rc.Health)
		sinks = append(sinks, events.NewRedisSink(rc.Client, cfg.Redis.Channel))
		closers = append(closers, func() { _ = rc.Close() })
		*stats = append(*stats, rc.RecordPoolStats)
	}

	if cfg.Kafka.Brokers != "" {
		p, err := producer.New(cfg.Kafka, log)
		if err != nil {
			closeAll()
			return nil, nil, err
		}
		h.RegisterCheck("kafka", p.Health)
		sinks = append(sinks, events.NewKafkaSink(p, cfg.Kafka.Topic))
		closers = append(closers, func() { _ = p.Close() })
	}
	return sinks, closeAll, nil
}

func recordPoolStats(ctx context.Context, recorders []func()) {
	ticker := time.NewTicker(poolStatsInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			for _, record := range recorders {
				record()
			}
		case <-ctx.Done():
			return
		}
	}
}

// buildDispatcher returns an HTTP dispatcher behind a circuit breaker. Without
// a responder URL it returns nil, so live-mode requests fail with
// ExternalDispatchFailed if mock mode is later switched off.
func buildDispatcher(cfg *config.Config, log *slog.Logger, m *verificationmetrics.Metrics) verificationservice.Dispatcher {
	if cfg.Responder.URL == "" {
		log.Warn("RESPONDER_URL not set; live-mode requests will be refused")
		return nil
	}
	breaker := circuit.New("responder",
		circuit.WithFailureThreshold(cfg.Responder.BreakerFailures),
		circuit.WithCooldown(cfg.Responder.BreakerCooldown),
	)
	return dispatch.NewGuarded(dispatch.NewHTTP(dispatch.HTTPConfig{
		BaseURL: cfg.Responder.URL,
		APIKey:  cfg.Responder.APIKey,
		Timeout: cfg.Responder.DispatchTimeout,
	}), breaker, log, m)
}
