package outbox

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"github.com/vladislavdragonenkov/order-service/internal/domain"
)

// FanoutPublisher отправляет сообщение во все publishers параллельно.
// Ошибка любого из них возвращается целиком, и worker повторит сообщение для всех;
// получатели должны переносить повторную доставку.
type FanoutPublisher struct {
	publishers []domain.OutboxPublisher
}

// NewFanoutPublisher пропускает nil publishers.
func NewFanoutPublisher(publishers ...domain.OutboxPublisher) *FanoutPublisher {
	list := make([]domain.OutboxPublisher, 0, len(publishers))
	for _, p := range publishers {
		if p != nil {
			list = append(list, p)
		}
	}
	return &FanoutPublisher{publishers: list}
}

// Len возвращает число подключённых publishers.
func (f *FanoutPublisher) Len() int {
	return len(f.publishers)
}

// Publish публикует event во все назначения и объединяет ошибки.
func (f *FanoutPublisher) Publish(ctx context.Context, event domain.OutboxMessage) error {
	errs := make([]error, len(f.publishers))

	var g errgroup.Group
	for i, publisher := range f.publishers {
		g.Go(func() error {
			errs[i] = publisher.Publish(ctx, event)
			return nil
		})
	}
	_ = g.Wait()

	return errors.Join(errs...)
}

var _ domain.OutboxPublisher = (*FanoutPublisher)(nil)
