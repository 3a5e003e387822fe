package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/order-service/internal/domain"
)

func TestOutboxRepository_EnqueueAndPull(t *testing.T) {
	ctx := context.Background()
	repo := NewOutboxRepository()

	msg := domain.OutboxMessage{
		AggregateType: "order",
		AggregateID:   "order-1",
		EventType:     domain.EventOrderCreated,
		Payload:       []byte(`{"orderId":"order-1"}`),
	}

	saved, err := repo.Enqueue(ctx, msg)
	require.NoError(t, err)
	require.NotEmpty(t, saved.ID)

	pending, err := repo.PullPending(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, saved.ID, pending[0].ID)
}

func TestOutboxRepository_PullPendingRespectsOrderAndLimit(t *testing.T) {
	ctx := context.Background()
	repo := NewOutboxRepository()

	var ids []string
	for i := 0; i < 5; i++ {
		saved, err := repo.Enqueue(ctx, domain.OutboxMessage{AggregateType: "order"})
		require.NoError(t, err)
		ids = append(ids, saved.ID)
	}

	pending, err := repo.PullPending(ctx, 3)
	require.NoError(t, err)
	require.Len(t, pending, 3)
	for i := range pending {
		assert.Equal(t, ids[i], pending[i].ID)
	}
}

func TestOutboxRepository_MarkSentAndFailed(t *testing.T) {
	ctx := context.Background()
	repo := NewOutboxRepository()

	sent, err := repo.Enqueue(ctx, domain.OutboxMessage{AggregateType: "order"})
	require.NoError(t, err)
	failed, err := repo.Enqueue(ctx, domain.OutboxMessage{AggregateType: "order"})
	require.NoError(t, err)

	require.NoError(t, repo.MarkSent(ctx, sent.ID))
	require.NoError(t, repo.MarkFailed(ctx, failed.ID))

	pending, err := repo.PullPending(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)

	assert.ErrorIs(t, repo.MarkSent(ctx, "missing"), domain.ErrOutboxPublish)
}

func TestOutboxRepository_Stats(t *testing.T) {
	ctx := context.Background()
	repo := NewOutboxRepository()

	stats, err := repo.Stats(ctx)
	require.NoError(t, err)
	assert.Zero(t, stats.PendingCount)
	assert.True(t, stats.OldestPendingAt.IsZero())

	first, err := repo.Enqueue(ctx, domain.OutboxMessage{AggregateType: "order"})
	require.NoError(t, err)
	_, err = repo.Enqueue(ctx, domain.OutboxMessage{AggregateType: "order"})
	require.NoError(t, err)

	stats, err = repo.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.PendingCount)
	assert.Equal(t, repo.records[first.ID].createdAt, stats.OldestPendingAt)
}
