package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// UseCaseCreateOrder — метка use case создания заказа.
const UseCaseCreateOrder = "create_order"

// OrderMetrics содержит метрики use case заказов и обращений к внешним сервисам.
type OrderMetrics struct {
	// Результаты use case по видам ошибок
	usecaseTotal    *prometheus.CounterVec
	usecaseDuration *prometheus.HistogramVec

	// Вызовы соседних микросервисов
	gatewayDuration *prometheus.HistogramVec

	ordersCreated  prometheus.Counter
	timelineEvents prometheus.Counter
	outboxEvents   prometheus.Counter
	consumedEvents *prometheus.CounterVec
}

// NewOrderMetrics создаёт метрики в DefaultRegisterer.
func NewOrderMetrics() *OrderMetrics {
	return NewOrderMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

// NewOrderMetricsWithRegisterer создаёт метрики в указанном реестре.
// Повторная регистрация возвращает уже существующие коллекторы.
func NewOrderMetricsWithRegisterer(registerer prometheus.Registerer) *OrderMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &OrderMetrics{
		usecaseTotal: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "order_usecase_total",
			Help: "Total number of use case executions grouped by use case and result",
		}, []string{"usecase", "result"}),
		usecaseDuration: registerHistogramVec(registerer, prometheus.HistogramOpts{
			Name:    "order_usecase_duration_seconds",
			Help:    "Duration of use case executions in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"usecase"}),
		gatewayDuration: registerHistogramVec(registerer, prometheus.HistogramOpts{
			Name:    "order_gateway_request_duration_seconds",
			Help:    "Duration of outbound calls to sibling services",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
		}, []string{"target", "result"}),
		ordersCreated: registerCounter(registerer, prometheus.CounterOpts{
			Name: "order_created_total",
			Help: "Total number of orders created",
		}),
		timelineEvents: registerCounter(registerer, prometheus.CounterOpts{
			Name: "order_timeline_events_total",
			Help: "Total number of timeline events recorded",
		}),
		outboxEvents: registerCounter(registerer, prometheus.CounterOpts{
			Name: "order_outbox_events_total",
			Help: "Total number of events enqueued to the outbox",
		}),
		consumedEvents: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "order_consumed_events_total",
			Help: "Total number of consumed broker messages grouped by result",
		}, []string{"source", "result"}),
	}
}

func registerCounter(registerer prometheus.Registerer, opts prometheus.CounterOpts) prometheus.Counter {
	collector := prometheus.NewCounter(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Counter)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter %q: %v", opts.Name, err))
	}
	return collector
}

func registerCounterVec(registerer prometheus.Registerer, opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
	collector := prometheus.NewCounterVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.CounterVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter vec %q: %v", opts.Name, err))
	}
	return collector
}

func registerHistogramVec(registerer prometheus.Registerer, opts prometheus.HistogramOpts, labels []string) *prometheus.HistogramVec {
	collector := prometheus.NewHistogramVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.HistogramVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register histogram vec %q: %v", opts.Name, err))
	}
	return collector
}

// ObserveUseCase фиксирует результат и длительность use case.
// Пустой result означает успех.
func (m *OrderMetrics) ObserveUseCase(usecase, result string, duration time.Duration) {
	if result == "" {
		result = "ok"
	}
	m.usecaseTotal.WithLabelValues(usecase, result).Inc()
	m.usecaseDuration.WithLabelValues(usecase).Observe(duration.Seconds())
	if usecase == UseCaseCreateOrder && result == "ok" {
		m.RecordOrderCreated()
	}
}

// ObserveGatewayCall фиксирует длительность вызова соседнего сервиса.
func (m *OrderMetrics) ObserveGatewayCall(target, result string, duration time.Duration) {
	m.gatewayDuration.WithLabelValues(target, result).Observe(duration.Seconds())
}

// RecordOrderCreated увеличивает счётчик созданных заказов.
func (m *OrderMetrics) RecordOrderCreated() {
	m.ordersCreated.Inc()
}

// RecordTimelineEvent увеличивает счётчик событий timeline.
func (m *OrderMetrics) RecordTimelineEvent() {
	m.timelineEvents.Inc()
}

// RecordOutboxEvent увеличивает счётчик событий outbox.
func (m *OrderMetrics) RecordOutboxEvent() {
	m.outboxEvents.Inc()
}

// RecordConsumedEvent считает обработанные сообщения брокера.
func (m *OrderMetrics) RecordConsumedEvent(source, result string) {
	m.consumedEvents.WithLabelValues(source, result).Inc()
}
