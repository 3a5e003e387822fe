// Пакет orders содержит use case заказов: создание, чтение, фильтрацию,
// обновление статусов и детальное представление.
package orders

import (
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/order-service/internal/domain"
)

// MetricsRecorder принимает результаты выполнения use case.
type MetricsRecorder interface {
	ObserveUseCase(usecase, result string, duration time.Duration)
}

// Options — общие необязательные зависимости use case.
type Options struct {
	Logger  *log.Entry
	Events  *EventRecorder
	Metrics MetricsRecorder
}

// Option настраивает use case.
type Option func(*Options)

// WithLogger задаёт logger.
func WithLogger(logger *log.Entry) Option {
	return func(opts *Options) {
		opts.Logger = logger
	}
}

// WithEvents включает запись событий в timeline и outbox.
func WithEvents(events *EventRecorder) Option {
	return func(opts *Options) {
		opts.Events = events
	}
}

// WithMetrics задаёт приёмник метрик.
func WithMetrics(metrics MetricsRecorder) Option {
	return func(opts *Options) {
		opts.Metrics = metrics
	}
}

func buildOptions(component string, options []Option) Options {
	var opts Options
	for _, option := range options {
		option(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = log.WithField("component", component)
	}
	return opts
}

// observe записывает метрику use case; вызывается через defer.
func (o Options) observe(usecase string, started time.Time, err *error) {
	if o.Metrics == nil {
		return
	}
	o.Metrics.ObserveUseCase(usecase, string(domain.KindOf(*err)), time.Since(started))
}

// classify выбирает вид ошибки: not-found сохраняется, остальное получает fallback.
func classify(err error, fallback domain.ErrorKind) domain.ErrorKind {
	if domain.IsNotFound(err) {
		return domain.KindNotFound
	}
	return fallback
}

// OrderResponse — результат use case, возвращающих один заказ.
type OrderResponse struct {
	Order *domain.Order
}

// OrdersResponse — результат use case, возвращающих список заказов.
type OrdersResponse struct {
	Orders []*domain.Order
}
