package orders

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/order-service/internal/domain"
)

func TestChangeOrderStatus(t *testing.T) {
	cases := []struct {
		name         string
		current      domain.Status
		target       string
		wantKind     domain.ErrorKind
		wantSaves    int
		wantNotified bool
	}{
		{name: "unset to received", current: "", target: "RECEIVED", wantSaves: 1},
		{name: "received to preparing notifies payment", current: domain.StatusReceived, target: "PREPARING", wantSaves: 1, wantNotified: true},
		{name: "preparing to ready", current: domain.StatusPreparing, target: "READY", wantSaves: 1},
		{name: "ready to finalized", current: domain.StatusReady, target: "FINALIZED", wantSaves: 1},
		{name: "same status is noop", current: domain.StatusReady, target: "READY"},
		{name: "backwards is rejected", current: domain.StatusFinalized, target: "RECEIVED", wantKind: domain.KindInvalidTransition},
		{name: "skipping is rejected", current: domain.StatusReceived, target: "READY", wantKind: domain.KindInvalidTransition},
		{name: "unknown label", current: domain.StatusReceived, target: "CANCELED", wantKind: domain.KindInvalidArgument},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := &fakeOrderRepository{}
			seedOrder(repo, "order-1", "12345678901", tc.current)
			gw := newFakeGateway()

			uc := NewChangeOrderStatusUseCase(repo, gw, WithLogger(loggerForTests()))
			result := uc.Execute(context.Background(), ChangeOrderStatusRequest{ID: "order-1", Status: tc.target})

			assert.Equal(t, tc.wantSaves, repo.saveCalls)
			if tc.wantNotified {
				assert.Equal(t, []string{"order-1"}, gw.statusCalls)
			} else {
				assert.Empty(t, gw.statusCalls)
			}
			if tc.wantKind != "" {
				require.True(t, result.IsFailure())
				assert.Equal(t, tc.wantKind, domain.KindOf(result.Err()))
				return
			}
			require.NoError(t, result.Err())
			assert.Equal(t, tc.target, result.Value().Order.Status().String())
		})
	}
}

func TestChangeOrderStatus_PaymentServiceFailureKeepsSavedStatus(t *testing.T) {
	repo := &fakeOrderRepository{}
	seedOrder(repo, "order-1", "12345678901", domain.StatusReceived)
	gw := newFakeGateway()
	gw.statusErr = errors.New("status 500")

	result := NewChangeOrderStatusUseCase(repo, gw, WithLogger(loggerForTests())).
		Execute(context.Background(), ChangeOrderStatusRequest{ID: "order-1", Status: "PREPARING"})

	require.True(t, result.IsFailure())
	assert.Equal(t, domain.KindUpstreamUnavailable, domain.KindOf(result.Err()))
	assert.Equal(t, 1, repo.saveCalls)
	assert.Equal(t, domain.StatusPreparing, repo.saved[0].Status())
}

func TestChangeOrderStatus_MissingOrder(t *testing.T) {
	repo := &fakeOrderRepository{}

	result := NewChangeOrderStatusUseCase(repo, newFakeGateway()).
		Execute(context.Background(), ChangeOrderStatusRequest{ID: "order-404", Status: "RECEIVED"})

	assert.ErrorIs(t, result.Err(), domain.ErrResourceNotFound)
	assert.Zero(t, repo.saveCalls)
}
