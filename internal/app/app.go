package app

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	promgrpc "github.com/grpc-ecosystem/go-grpc-prometheus"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/vladislavdragonenkov/ordersync/internal/config"
	healthcheck "github.com/vladislavdragonenkov/ordersync/internal/health"
	"github.com/vladislavdragonenkov/ordersync/internal/metrics"
	"github.com/vladislavdragonenkov/ordersync/internal/service/auth"
	"github.com/vladislavdragonenkov/ordersync/internal/service/httpapi"
	"github.com/vladislavdragonenkov/ordersync/internal/service/orders"
	"github.com/vladislavdragonenkov/ordersync/internal/service/outbox"
	"github.com/vladislavdragonenkov/ordersync/internal/version"
)

const defaultShutdownTimeout = 5 * time.Second

// Run поднимает REST API, сервер метрик, gRPC health (если задан адрес)
// и outbox worker. Возвращает ctx.Err() после штатной остановки.
func Run(ctx context.Context, cfg *config.Config) error {
	logger := log.WithField("component", "app")

	deps, err := initRuntimeDependencies(ctx, cfg.Storage, logger.WithField("layer", "storage"))
	if err != nil {
		return err
	}
	defer func() {
		if err := deps.Close(); err != nil {
			logger.WithError(err).Warn("failed to close storage")
		}
	}()

	producer, _ := initKafkaProducer(cfg.Kafka.Brokers, logger.WithField("layer", "kafka"))
	defer closeKafka(producer, logger)

	sessions := auth.NewService(cfg.Auth.Users, cfg.Auth.TokenTTL, logger.WithField("layer", "auth"))
	sessionCleanup := auth.NewCleanupWorker(sessions,
		auth.WithLogger(logger.WithField("layer", "auth-cleanup")),
		auth.WithMetrics(metrics.NewSessionMetrics(prometheus.DefaultRegisterer)),
		auth.WithInterval(cfg.Auth.CleanupInterval),
	)
	orderService := orders.NewService(deps.repo, deps.outboxRepo, logger.WithField("layer", "orders"))

	router := httpapi.NewRouter(orderService, sessions, httpapi.Config{
		RateLimit: httpapi.RateLimitConfig{
			Enabled: cfg.Server.RateLimit.Enabled,
			Rate:    cfg.Server.RateLimit.Rate,
			Burst:   cfg.Server.RateLimit.Burst,
		},
		Metrics: metrics.NewHTTPMetrics(prometheus.DefaultRegisterer),
		Logger:  logger.WithField("layer", "http"),
	})

	worker := outbox.NewWorker(
		deps.outboxRepo,
		eventPublisher(producer, cfg.Kafka.Topic, logger.WithField("layer", "events")),
		outbox.WithLogger(logger.WithField("layer", "outbox")),
		outbox.WithMetrics(metrics.NewOutboxMetrics(prometheus.DefaultRegisterer)),
		outbox.WithPollInterval(cfg.Outbox.PollInterval),
		outbox.WithBatchSize(cfg.Outbox.BatchSize),
		outbox.WithMaxAttempts(cfg.Outbox.MaxAttempts),
		outbox.WithRetryBaseDelay(cfg.Outbox.RetryDelay),
	)

	healthHandler := healthcheck.NewHandler(version.GetVersion())
	healthHandler.RegisterChecker("storage", healthcheck.NewChecker("storage", true, deps.ping))
	if cfg.KafkaEnabled() {
		healthHandler.RegisterChecker("kafka", healthcheck.NewChecker("kafka", false, kafkaHealth(producer)))
	}

	shutdownTimeout := cfg.Server.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = defaultShutdownTimeout
	}

	apiSrv := &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	var (
		grpcServer   *grpc.Server
		healthServer *health.Server
		grpcLis      net.Listener
	)
	if cfg.Server.GRPCAddr != "" {
		grpcServer, healthServer, err = newGRPCHealthServer(logger)
		if err != nil {
			return err
		}
		grpcLis, err = net.Listen("tcp", cfg.Server.GRPCAddr)
		if err != nil {
			return err
		}
	}

	apiLis, err := net.Listen("tcp", cfg.Server.HTTPAddr)
	if err != nil {
		if grpcLis != nil {
			_ = grpcLis.Close()
		}
		return err
	}

	g, gctx := errgroup.WithContext(ctx)

	metricsSrv := startMetricsServer(gctx, cfg.Server.MetricsAddr, logger, healthHandler)

	g.Go(func() error {
		logger.Infof("REST API слушает %s", apiLis.Addr())
		if err := apiSrv.Serve(apiLis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		worker.Run(gctx)
		return nil
	})

	g.Go(func() error {
		sessionCleanup.Run(gctx)
		return nil
	})

	if grpcServer != nil {
		g.Go(func() error {
			logger.Infof("gRPC health слушает %s", grpcLis.Addr())
			if err := grpcServer.Serve(grpcLis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			stopGRPC(grpcServer, healthServer, shutdownTimeout, logger)
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("получен сигнал остановки, останавливаем серверы")
		shutdownHTTP(apiSrv, shutdownTimeout, logger)
		shutdownHTTP(metricsSrv, shutdownTimeout, logger)
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

// newGRPCHealthServer собирает gRPC-сервер со стандартным health-сервисом
// и prometheus-интерсепторами.
func newGRPCHealthServer(logger *log.Entry) (*grpc.Server, *health.Server, error) {
	grpcMetrics := promgrpc.NewServerMetrics()
	if err := prometheus.Register(grpcMetrics); err != nil {
		var are prometheus.AlreadyRegisteredError
		if !errors.As(err, &are) {
			return nil, nil, err
		}
		if existing, ok := are.ExistingCollector.(*promgrpc.ServerMetrics); ok {
			grpcMetrics = existing
		} else {
			logger.WithError(err).Warn("failed to register grpc metrics")
		}
	}

	grpcServer := grpc.NewServer(
		grpc.ChainUnaryInterceptor(grpcMetrics.UnaryServerInterceptor()),
		grpc.ChainStreamInterceptor(grpcMetrics.StreamServerInterceptor()),
	)
	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	grpcMetrics.InitializeMetrics(grpcServer)
	reflection.Register(grpcServer)

	return grpcServer, healthServer, nil
}

func stopGRPC(grpcServer *grpc.Server, healthServer *health.Server, timeout time.Duration, logger *log.Entry) {
	healthServer.Shutdown()
	stoppedCh := make(chan struct{})
	go func() {
		grpcServer.GracefulStop()
		close(stoppedCh)
	}()
	select {
	case <-stoppedCh:
	case <-time.After(timeout):
		logger.Warn("graceful stop превысил таймаут, принудительно останавливаем")
		grpcServer.Stop()
	}
}

// startMetricsServer запускает /metrics и health-эндпоинты.
func startMetricsServer(ctx context.Context, addr string, logger *log.Entry, healthHandler *healthcheck.Handler) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	healthHandler.Register(mux)

	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		logger.Infof("метрики доступны по адресу %s/metrics", addr)
		logger.Infof("health checks: %s/healthz, %s/livez, %s/readyz", addr, addr, addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Warn("metrics server failed")
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownHTTP(srv, defaultShutdownTimeout, logger)
	}()

	return srv
}

// shutdownHTTP аккуратно останавливает HTTP-сервер.
func shutdownHTTP(srv *http.Server, timeout time.Duration, logger *log.Entry) {
	if srv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.WithError(err).WithField("addr", srv.Addr).Warn("http shutdown with error")
	}
}
