package outbox

import (
	"context"
	"fmt"

	"github.com/vladislavdragonenkov/order-service/internal/domain"
)

// BacklogCheck возвращает проверку, которая падает, когда pending-сообщений
// больше maxPending. maxPending <= 0 отключает лимит.
func BacklogCheck(repo domain.OutboxRepository, maxPending int) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		if repo == nil || maxPending <= 0 {
			return nil
		}
		stats, err := repo.Stats(ctx)
		if err != nil {
			return fmt.Errorf("outbox stats: %w", err)
		}
		if stats.PendingCount > maxPending {
			return fmt.Errorf("outbox backlog %d exceeds limit %d", stats.PendingCount, maxPending)
		}
		return nil
	}
}
