package memory

import (
	"context"
	"sync"

	"github.com/vladislavdragonenkov/order-service/internal/domain"
)

// orderRepositoryInMemory — простая in-memory реализация OrderRepository.
// Хранит снимки, поэтому внешние мутации агрегата не влияют на сохранённое состояние.
type orderRepositoryInMemory struct {
	mu    sync.RWMutex
	items map[string]domain.OrderSnapshot
	order []string
}

// NewOrderRepository возвращает in-memory репозиторий для локальной разработки и тестов.
func NewOrderRepository() domain.OrderRepository {
	return &orderRepositoryInMemory{
		items: make(map[string]domain.OrderSnapshot),
	}
}

// Create сохраняет новый заказ, если ID ещё не занят.
func (r *orderRepositoryInMemory) Create(_ context.Context, order *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := order.ID().String()
	if _, exists := r.items[id]; exists {
		return domain.ErrOrderAlreadyExists
	}
	r.items[id] = order.Snapshot()
	r.order = append(r.order, id)
	return nil
}

// FindByID возвращает заказ или ErrOrderNotFound, если его нет.
func (r *orderRepositoryInMemory) FindByID(_ context.Context, id string) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	snapshot, ok := r.items[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	return domain.RestoreOrder(snapshot), nil
}

// GetAll возвращает заказы в порядке создания.
func (r *orderRepositoryInMemory) GetAll(_ context.Context) ([]*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*domain.Order, 0, len(r.order))
	for _, id := range r.order {
		result = append(result, domain.RestoreOrder(r.items[id]))
	}
	return result, nil
}

// Save перезаписывает заказ, проверяя версию (optimistic locking).
func (r *orderRepositoryInMemory) Save(_ context.Context, order *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := order.ID().String()
	current, ok := r.items[id]
	if !ok {
		return domain.ErrOrderNotFound
	}
	if current.Version != order.Version() {
		return domain.ErrOrderVersionConflict
	}
	order.AdvanceVersion()
	r.items[id] = order.Snapshot()
	return nil
}

var _ domain.OrderRepository = (*orderRepositoryInMemory)(nil)
