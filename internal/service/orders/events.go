package orders

import (
	"context"
	"encoding/json"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/order-service/internal/domain"
)

// EventCounter считает записанные события.
type EventCounter interface {
	RecordTimelineEvent()
	RecordOutboxEvent()
}

// EventRecorder пишет события заказа в outbox и timeline.
// Запись выполняется после сохранения заказа и не атомарна с ним:
// ошибка outbox или timeline только логируется, и событие может быть
// потеряно при уже сохранённом заказе.
// Ошибки записи только логируются: основная операция уже сохранена.
type EventRecorder struct {
	outbox   domain.OutboxRepository
	timeline domain.TimelineRepository
	counter  EventCounter
	logger   *log.Entry
}

// NewEventRecorder создаёт EventRecorder. Любой из репозиториев может быть nil.
func NewEventRecorder(outbox domain.OutboxRepository, timeline domain.TimelineRepository, counter EventCounter, logger *log.Entry) *EventRecorder {
	if logger == nil {
		logger = log.WithField("component", "order-events")
	}
	return &EventRecorder{
		outbox:   outbox,
		timeline: timeline,
		counter:  counter,
		logger:   logger,
	}
}

// Record фиксирует событие eventType для заказа.
func (r *EventRecorder) Record(ctx context.Context, order *domain.Order, eventType, reason string) {
	if r == nil || order == nil {
		return
	}

	event := domain.NewOrderEvent(order)
	event.Reason = reason
	fields := log.Fields{
		"order_id":   event.OrderID,
		"event_type": eventType,
	}

	if r.outbox != nil {
		payload, err := json.Marshal(event)
		if err != nil {
			r.logger.WithError(err).WithFields(fields).Error("marshal event failed")
		} else {
			msg := domain.OutboxMessage{
				AggregateType: "order",
				AggregateID:   event.OrderID,
				EventType:     eventType,
				Payload:       payload,
			}
			if _, err := r.outbox.Enqueue(ctx, msg); err != nil {
				r.logger.WithError(err).WithFields(fields).Error("enqueue event failed")
			} else if r.counter != nil {
				r.counter.RecordOutboxEvent()
			}
		}
	}

	if r.timeline != nil {
		entry := domain.TimelineEvent{
			OrderID:  event.OrderID,
			Type:     eventType,
			Reason:   reason,
			Occurred: event.OccurredAt,
		}
		if err := r.timeline.Append(ctx, entry); err != nil {
			r.logger.WithError(err).WithFields(fields).Warn("append timeline event failed")
		} else if r.counter != nil {
			r.counter.RecordTimelineEvent()
		}
	}
}
