// Пакет app собирает сервис заказов: хранилище, gateway, use case,
// outbox worker, Kafka consumer и HTTP/gRPC/metrics listeners.
package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	log "github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	grpchealth "google.golang.org/grpc/health"

	"github.com/vladislavdragonenkov/order-service/internal/domain"
	healthcheck "github.com/vladislavdragonenkov/order-service/internal/health"
	"github.com/vladislavdragonenkov/order-service/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/order-service/internal/metrics"
	"github.com/vladislavdragonenkov/order-service/internal/service/outbox"
	httpapi "github.com/vladislavdragonenkov/order-service/internal/transport/http"
	"github.com/vladislavdragonenkov/order-service/internal/version"
)

// App — собранный, но ещё не запущенный сервис.
type App struct {
	cfg    Config
	logger *log.Entry

	deps         *Dependencies
	store        *storageDeps
	producer     *kafka.Producer
	worker       *outbox.Worker
	orderMetrics *metrics.OrderMetrics

	httpServer    *http.Server
	metricsServer *http.Server
	grpcServer    *grpc.Server
	grpcHealth    *grpchealth.Server

	httpLis    net.Listener
	metricsLis net.Listener
	grpcLis    net.Listener
}

// New собирает зависимости и открывает listeners.
// При ошибке всё уже открытое закрывается.
func New(ctx context.Context, cfg Config) (_ *App, err error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	a := &App{cfg: cfg, logger: log.WithField("component", "app")}
	defer func() {
		if err != nil {
			a.close()
		}
	}()

	registry := newRegistry()
	a.orderMetrics = metrics.NewOrderMetricsWithRegisterer(registry)

	if a.store, err = initStorage(ctx, cfg, a.logger); err != nil {
		return nil, err
	}

	gw, err := initGateway(cfg, a.orderMetrics, a.logger)
	if err != nil {
		return nil, err
	}

	a.producer, err = initKafkaProducer(cfg.kafkaBrokers(), a.logger)
	if err != nil {
		if cfg.EventPublisher == EventPublisherKafka {
			return nil, fmt.Errorf("init kafka producer: %w", err)
		}
		a.logger.WithError(err).Warn("failed to create kafka producer, continuing without kafka")
		a.producer = nil
	}

	pubs, err := buildPublishers(ctx, cfg, a.producer, gw, a.logger)
	if err != nil {
		return nil, err
	}

	var outboxRepo domain.OutboxRepository
	if pubs.enabled() {
		outboxRepo = a.store.outbox
		a.worker = outbox.NewWorker(outboxRepo, pubs.publisher,
			outbox.WithLogger(a.logger.WithField("component", "outbox-worker")),
			outbox.WithDLQPublisher(pubs.dlq),
			outbox.WithMetrics(outbox.NewMetrics(registry)),
			outbox.WithPollInterval(cfg.OutboxPollInterval),
			outbox.WithBatchSize(cfg.OutboxBatchSize),
			outbox.WithMaxAttempts(cfg.OutboxMaxAttempts),
			outbox.WithRetryBaseDelay(cfg.OutboxRetryDelay),
		)
	}

	a.deps = NewDependencies(DependenciesParams{
		Repo:         a.store.orders,
		OutboxRepo:   outboxRepo,
		TimelineRepo: a.store.timeline,
		Gateway:      gw,
		Metrics:      a.orderMetrics,
		Logger:       a.logger,
	})

	healthHandler := healthcheck.NewHandler(version.GetVersion())
	if a.store.checker != nil {
		healthHandler.RegisterChecker("storage", a.store.checker)
	}
	if outboxRepo != nil {
		healthHandler.RegisterChecker("outbox_backlog",
			healthcheck.NewSimpleChecker("outbox_backlog", outbox.BacklogCheck(outboxRepo, cfg.OutboxMaxPending)))
	}

	a.grpcServer, a.grpcHealth = newGRPCServer(registry)
	a.httpServer = newHTTPServer(httpapi.NewServer(a.deps.UseCases, a.logger.WithField("layer", "http")).Handler())
	a.metricsServer = newHTTPServer(newMetricsMux(registry, healthHandler))

	if a.httpLis, err = net.Listen("tcp", cfg.HTTPAddr); err != nil {
		return nil, fmt.Errorf("listen http %s: %w", cfg.HTTPAddr, err)
	}
	if a.grpcLis, err = net.Listen("tcp", cfg.GRPCAddr); err != nil {
		return nil, fmt.Errorf("listen grpc %s: %w", cfg.GRPCAddr, err)
	}
	if a.metricsLis, err = net.Listen("tcp", cfg.MetricsAddr); err != nil {
		return nil, fmt.Errorf("listen metrics %s: %w", cfg.MetricsAddr, err)
	}
	return a, nil
}

// HTTPAddr возвращает фактический адрес HTTP API.
func (a *App) HTTPAddr() string { return a.httpLis.Addr().String() }

// MetricsAddr возвращает фактический адрес listener метрик.
func (a *App) MetricsAddr() string { return a.metricsLis.Addr().String() }

// GRPCAddr возвращает фактический адрес gRPC.
func (a *App) GRPCAddr() string { return a.grpcLis.Addr().String() }

// Serve обслуживает запросы до отмены ctx или ошибки listener.
// При отмене ctx возвращает ctx.Err().
func (a *App) Serve(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	workerDone := make(chan struct{})
	if a.worker != nil {
		go func() {
			defer close(workerDone)
			a.worker.Run(runCtx)
		}()
	} else {
		close(workerDone)
	}

	var consumer *kafka.Consumer
	if brokers := a.cfg.kafkaBrokers(); len(brokers) > 0 && a.producer != nil {
		var err error
		consumer, err = startPaymentConsumer(runCtx, brokers, a.producer, a.deps.UseCases.UpdatePaymentStatus, a.orderMetrics, a.logger)
		if err != nil {
			a.logger.WithError(err).Warn("payment status consumer is disabled")
		}
	}

	errCh := make(chan error, 3)
	serveHTTP("http api", a.httpServer, a.httpLis, errCh, a.logger)
	serveHTTP("metrics", a.metricsServer, a.metricsLis, errCh, a.logger)
	go func() {
		a.logger.WithField("addr", a.grpcLis.Addr().String()).Info("grpc listening")
		if err := a.grpcServer.Serve(a.grpcLis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			errCh <- err
		}
	}()

	var result error
	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
		result = ctx.Err()
	case err := <-errCh:
		a.logger.WithError(err).Error("listener failed")
		result = err
	}

	shutdownHTTP(a.httpServer, a.logger)
	shutdownGRPC(a.grpcServer, a.grpcHealth, a.logger)
	cancel()
	stopConsumer(consumer, a.logger)
	<-workerDone
	shutdownHTTP(a.metricsServer, a.logger)
	a.close()
	return result
}

// close освобождает ресурсы, которые не принадлежат серверам.
func (a *App) close() {
	for _, lis := range []net.Listener{a.httpLis, a.grpcLis, a.metricsLis} {
		if lis != nil {
			_ = lis.Close()
		}
	}
	closeKafka(a.producer, a.logger)
	a.store.close(a.logger)
}

// Run собирает приложение и обслуживает запросы до отмены ctx.
func Run(ctx context.Context, cfg Config) error {
	a, err := New(ctx, cfg)
	if err != nil {
		return err
	}
	return a.Serve(ctx)
}
