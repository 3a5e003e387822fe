package app

import (
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/order-service/internal/domain"
	"github.com/vladislavdragonenkov/order-service/internal/metrics"
	"github.com/vladislavdragonenkov/order-service/internal/service/gateway"
	"github.com/vladislavdragonenkov/order-service/internal/service/orders"
	httpapi "github.com/vladislavdragonenkov/order-service/internal/transport/http"
)

// DependenciesParams — входные зависимости для сборки use case.
type DependenciesParams struct {
	Repo domain.OrderRepository
	// OutboxRepo nil отключает запись событий в outbox; timeline пишется всегда.
	OutboxRepo   domain.OutboxRepository
	TimelineRepo domain.TimelineRepository
	Gateway      domain.Gateway
	Metrics      *metrics.OrderMetrics
	Logger       *log.Entry
}

// Dependencies содержит собранные use case и их зависимости.
type Dependencies struct {
	Repo         domain.OrderRepository
	OutboxRepo   domain.OutboxRepository
	TimelineRepo domain.TimelineRepository
	Gateway      domain.Gateway
	UseCases     httpapi.UseCases
	Logger       *log.Entry
}

// NewDependencies собирает use case заказов поверх хранилища и gateway.
func NewDependencies(p DependenciesParams) *Dependencies {
	logger := p.Logger
	if logger == nil {
		logger = log.WithField("component", "app")
	}

	var counter orders.EventCounter
	opts := []orders.Option{orders.WithLogger(logger.WithField("layer", "usecase"))}
	if p.Metrics != nil {
		counter = p.Metrics
		opts = append(opts, orders.WithMetrics(p.Metrics))
	}
	events := orders.NewEventRecorder(p.OutboxRepo, p.TimelineRepo, counter, logger.WithField("component", "order-events"))
	opts = append(opts, orders.WithEvents(events))

	return &Dependencies{
		Repo:         p.Repo,
		OutboxRepo:   p.OutboxRepo,
		TimelineRepo: p.TimelineRepo,
		Gateway:      p.Gateway,
		Logger:       logger,
		UseCases: httpapi.UseCases{
			CreateOrder:         orders.NewCreateOrderUseCase(p.Repo, p.Gateway, p.Gateway, opts...),
			GetOrderByID:        orders.NewGetOrderByIDUseCase(p.Repo, opts...),
			GetOrdersByStatus:   orders.NewGetOrdersByStatusUseCase(p.Repo, opts...),
			UpdatePaymentStatus: orders.NewUpdateOrderPaymentStatusUseCase(p.Repo, opts...),
			ChangeStatus:        orders.NewChangeOrderStatusUseCase(p.Repo, p.Gateway, opts...),
			GetOrderDetails:     orders.NewGetOrderDetailsUseCase(p.Repo, p.Gateway, p.Gateway, opts...),
			GetOrderTimeline:    orders.NewGetOrderTimelineUseCase(p.Repo, p.TimelineRepo, opts...),
		},
	}
}

// initGateway выбирает клиентов соседних сервисов: HTTP или in-process заглушку.
func initGateway(cfg Config, m *metrics.OrderMetrics, logger *log.Entry) (domain.Gateway, error) {
	gatewayLogger := logger.WithField("component", "gateway")
	if cfg.AllowMockIntegrations {
		gatewayLogger.Warn("using mock integrations for production and payment services")
		return gateway.NewMockGateway(), nil
	}

	opts := []gateway.Option{gateway.WithLogger(gatewayLogger)}
	if m != nil {
		opts = append(opts, gateway.WithMetrics(m))
	}
	return gateway.NewHTTPGateway(cfg.gatewayConfig(), opts...)
}
