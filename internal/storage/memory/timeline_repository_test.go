package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/order-service/internal/domain"
	"github.com/vladislavdragonenkov/order-service/internal/storage/memory"
)

func TestTimelineRepository_AppendKeepsChronology(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewTimelineRepository()
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Append(ctx, domain.TimelineEvent{OrderID: "o-1", Type: domain.EventOrderStatusChanged, Occurred: base.Add(time.Minute)}))
	require.NoError(t, repo.Append(ctx, domain.TimelineEvent{OrderID: "o-1", Type: domain.EventOrderCreated, Occurred: base}))
	require.NoError(t, repo.Append(ctx, domain.TimelineEvent{OrderID: "o-2", Type: domain.EventOrderCreated, Occurred: base}))

	events, err := repo.List(ctx, "o-1")
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, domain.EventOrderCreated, events[0].Type)
	assert.Equal(t, domain.EventOrderStatusChanged, events[1].Type)
}

func TestTimelineRepository_ListUnknownOrder(t *testing.T) {
	events, err := memory.NewTimelineRepository().List(context.Background(), "missing")
	require.NoError(t, err)
	assert.Empty(t, events)
}
