package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/order-service/internal/domain"
)

func TestOutboxRepository_PostgresFlow(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	repo := NewOutboxRepository(store)
	ctx := context.Background()

	stored1, err := repo.Enqueue(ctx, domain.OutboxMessage{
		AggregateType: "order",
		AggregateID:   "order-1",
		EventType:     domain.EventOrderCreated,
		Payload:       []byte(`{"orderId":"order-1"}`),
	})
	require.NoError(t, err)
	require.NotEmpty(t, stored1.ID)

	stored2, err := repo.Enqueue(ctx, domain.OutboxMessage{
		ID:            "outbox-fixed-id",
		AggregateType: "order",
		AggregateID:   "order-2",
		EventType:     domain.EventOrderStatusChanged,
	})
	require.NoError(t, err)
	assert.Equal(t, "outbox-fixed-id", stored2.ID)

	pending, err := repo.PullPending(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, pending, 2)

	stats, err := repo.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.PendingCount)
	assert.False(t, stats.OldestPendingAt.IsZero())

	require.NoError(t, repo.MarkSent(ctx, stored1.ID))
	require.NoError(t, repo.MarkFailed(ctx, stored2.ID))

	after, err := repo.PullPending(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, after)

	assert.ErrorIs(t, repo.MarkSent(ctx, "missing-outbox"), domain.ErrOutboxPublish)
}

func TestTimelineRepository_PostgresAppendList(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	repo := NewTimelineRepository(store)
	ctx := context.Background()

	base := time.Now().UTC().Round(time.Microsecond)
	require.NoError(t, repo.Append(ctx, domain.TimelineEvent{OrderID: "order-1", Type: domain.EventOrderStatusChanged, Reason: "RECEIVED", Occurred: base.Add(time.Second)}))
	require.NoError(t, repo.Append(ctx, domain.TimelineEvent{OrderID: "order-1", Type: domain.EventOrderCreated, Occurred: base}))
	require.NoError(t, repo.Append(ctx, domain.TimelineEvent{OrderID: "order-2", Type: domain.EventOrderCreated}))

	events, err := repo.List(ctx, "order-1")
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, domain.EventOrderCreated, events[0].Type)
	assert.Equal(t, "RECEIVED", events[1].Reason)
}

func TestMigrator_PostgresLifecycle(t *testing.T) {
	store := openRawPostgresStoreForIntegrationTest(t)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	require.NoError(t, store.MigrateDown(ctx, 100))
	version, count, err := store.MigrationStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), version)
	assert.Equal(t, 0, count)

	require.NoError(t, store.MigrateUp(ctx, 0))
	require.NoError(t, store.MigrateUp(ctx, 0))
	version, count, err = store.MigrationStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), version)
	assert.Equal(t, 2, count)

	require.NoError(t, store.MigrateDown(ctx, 1))
	version, count, err = store.MigrationStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), version)
	assert.Equal(t, 1, count)
	require.NoError(t, store.MigrateUp(ctx, 0))
}

func TestStore_NilGuards(t *testing.T) {
	var nilStore *Store
	ctx := context.Background()

	assert.Error(t, nilStore.MigrateUp(ctx, 0))
	assert.Error(t, nilStore.MigrateDown(ctx, 1))
	_, _, err := nilStore.MigrationStatus(ctx)
	assert.Error(t, err)
	assert.Error(t, nilStore.Ping(ctx))
	assert.NoError(t, nilStore.Close())
}
