package orders

import (
	"context"
	"time"

	"github.com/vladislavdragonenkov/order-service/internal/domain"
)

const opGetOrderTimeline = "get_order_timeline"

// GetOrderTimelineUseCase возвращает события жизненного цикла заказа.
type GetOrderTimelineUseCase struct {
	orders   domain.OrderRepository
	timeline domain.TimelineRepository
	opts     Options
}

// NewGetOrderTimelineUseCase создаёт use case чтения timeline.
func NewGetOrderTimelineUseCase(orders domain.OrderRepository, timeline domain.TimelineRepository, options ...Option) *GetOrderTimelineUseCase {
	return &GetOrderTimelineUseCase{orders: orders, timeline: timeline, opts: buildOptions("order-timeline", options)}
}

// Execute проверяет существование заказа и возвращает его события по времени.
func (uc *GetOrderTimelineUseCase) Execute(ctx context.Context, id string) domain.Result[[]domain.TimelineEvent] {
	var err error
	defer uc.opts.observe(opGetOrderTimeline, time.Now(), &err)

	if _, err = loadOrder(ctx, uc.orders, opGetOrderTimeline, id); err != nil {
		return domain.Fail[[]domain.TimelineEvent](err)
	}
	events, err := uc.timeline.List(ctx, id)
	if err != nil {
		err = domain.NewError(domain.KindPersistenceFailure, opGetOrderTimeline, err)
		return domain.Fail[[]domain.TimelineEvent](err)
	}
	return domain.Ok(events)
}
