package memory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/order-service/internal/domain"
	"github.com/vladislavdragonenkov/order-service/internal/storage/memory"
)

func newOrder(id string, products ...string) *domain.Order {
	order := domain.NewOrder(domain.NewOrderParams{
		ID:         domain.EntityIDFrom(id),
		CustomerID: domain.EntityIDFrom("12345678901"),
	})
	lines := domain.NewOrderLineList()
	for _, p := range products {
		lines.Add(domain.NewOrderLine(order.ID(), domain.EntityIDFrom(p)))
	}
	order.ReplaceLines(lines)
	return order
}

func TestOrderRepository_CreateFind(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewOrderRepository()
	order := newOrder("order-1", "product-1", "product-2")

	require.NoError(t, repo.Create(ctx, order))

	stored, err := repo.FindByID(ctx, "order-1")
	require.NoError(t, err)
	assert.Equal(t, order.Snapshot(), stored.Snapshot())
}

func TestOrderRepository_CreateDuplicate(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewOrderRepository()

	require.NoError(t, repo.Create(ctx, newOrder("order-1")))
	err := repo.Create(ctx, newOrder("order-1"))
	assert.ErrorIs(t, err, domain.ErrOrderAlreadyExists)
}

func TestOrderRepository_FindMissing(t *testing.T) {
	repo := memory.NewOrderRepository()

	_, err := repo.FindByID(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)
	assert.True(t, domain.IsNotFound(err))
}

func TestOrderRepository_GetAllKeepsInsertionOrder(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewOrderRepository()
	for _, id := range []string{"c", "a", "b"} {
		require.NoError(t, repo.Create(ctx, newOrder(id)))
	}

	orders, err := repo.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 3)
	assert.Equal(t, "c", orders[0].ID().String())
	assert.Equal(t, "a", orders[1].ID().String())
	assert.Equal(t, "b", orders[2].ID().String())
}

func TestOrderRepository_Save(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewOrderRepository()
	require.NoError(t, repo.Create(ctx, newOrder("order-1")))

	stored, err := repo.FindByID(ctx, "order-1")
	require.NoError(t, err)
	require.NoError(t, stored.SetStatus(domain.StatusReceived))
	require.NoError(t, repo.Save(ctx, stored))
	assert.Equal(t, int64(1), stored.Version())

	updated, err := repo.FindByID(ctx, "order-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusReceived, updated.Status())
	assert.Equal(t, int64(1), updated.Version())
}

func TestOrderRepository_SaveVersionConflict(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewOrderRepository()
	require.NoError(t, repo.Create(ctx, newOrder("order-1")))

	first, err := repo.FindByID(ctx, "order-1")
	require.NoError(t, err)
	second, err := repo.FindByID(ctx, "order-1")
	require.NoError(t, err)

	require.NoError(t, repo.Save(ctx, first))
	err = repo.Save(ctx, second)
	assert.True(t, domain.IsVersionConflict(err))
}

func TestOrderRepository_StoredStateIsolatedFromCaller(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewOrderRepository()
	order := newOrder("order-1")
	require.NoError(t, repo.Create(ctx, order))

	order.SetPaymentStatus(domain.PaymentStatusApproved)

	stored, err := repo.FindByID(ctx, "order-1")
	require.NoError(t, err)
	assert.True(t, stored.PaymentStatus().IsZero())
}
