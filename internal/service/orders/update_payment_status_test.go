package orders

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/order-service/internal/domain"
)

func TestUpdateOrderPaymentStatus(t *testing.T) {
	cases := []struct {
		name      string
		orderID   string
		status    string
		saveErr   error
		wantKind  domain.ErrorKind
		wantSaves int
	}{
		{name: "approved", orderID: "order-1", status: "Aprovado", wantSaves: 1},
		{name: "rejected", orderID: "order-1", status: "Recusado", wantSaves: 1},
		{name: "missing order", orderID: "order-404", status: "Aprovado", wantKind: domain.KindNotFound},
		{name: "empty status", orderID: "order-1", status: " ", wantKind: domain.KindInvalidArgument},
		{name: "save failure", orderID: "order-1", status: "Aprovado", saveErr: errors.New("disk full"), wantKind: domain.KindPersistenceFailure, wantSaves: 1},
		{name: "version conflict", orderID: "order-1", status: "Aprovado", saveErr: domain.ErrOrderVersionConflict, wantKind: domain.KindPersistenceFailure, wantSaves: 1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := &fakeOrderRepository{saveErr: tc.saveErr}
			seedOrder(repo, "order-1", "12345678901", "", "product-1")

			uc := NewUpdateOrderPaymentStatusUseCase(repo, WithLogger(loggerForTests()))
			result := uc.Execute(context.Background(), UpdateOrderPaymentStatusRequest{ID: tc.orderID, PaymentStatus: tc.status})

			assert.Equal(t, tc.wantSaves, repo.saveCalls)
			if tc.wantKind != "" {
				require.True(t, result.IsFailure())
				assert.Equal(t, tc.wantKind, domain.KindOf(result.Err()))
				return
			}
			require.NoError(t, result.Err())
			order := result.Value().Order
			assert.Equal(t, tc.status, order.PaymentStatus().String())
			require.Len(t, repo.saved, 1)
			assert.Same(t, order, repo.saved[0])
		})
	}
}

func TestUpdateOrderPaymentStatus_MissingOrderIsResourceNotFound(t *testing.T) {
	repo := &fakeOrderRepository{}
	uc := NewUpdateOrderPaymentStatusUseCase(repo, WithLogger(loggerForTests()))

	result := uc.Execute(context.Background(), UpdateOrderPaymentStatusRequest{ID: "missing", PaymentStatus: "Aprovado"})

	assert.ErrorIs(t, result.Err(), domain.ErrResourceNotFound)
	assert.Zero(t, repo.saveCalls)
}

func TestUpdateOrderPaymentStatus_RefreshesUpdatedAt(t *testing.T) {
	repo := &fakeOrderRepository{}
	before := time.Now().UTC().Add(-time.Hour)
	repo.orders = append(repo.orders, domain.RestoreOrder(domain.OrderSnapshot{
		ID:         "order-1",
		CustomerID: "12345678901",
		CreatedAt:  before,
		UpdatedAt:  before,
	}))

	result := NewUpdateOrderPaymentStatusUseCase(repo, WithLogger(loggerForTests())).
		Execute(context.Background(), UpdateOrderPaymentStatusRequest{ID: "order-1", PaymentStatus: "Aprovado"})

	require.NoError(t, result.Err())
	updated := result.Value().Order
	assert.True(t, updated.UpdatedAt().After(before), "updatedAt %s must move past %s", updated.UpdatedAt(), before)
	assert.Equal(t, before, updated.CreatedAt())
}

func TestUpdateOrderPaymentStatus_UpdatedAtNeverMovesBack(t *testing.T) {
	repo := &fakeOrderRepository{}
	future := time.Now().UTC().Add(time.Hour)
	repo.orders = append(repo.orders, domain.RestoreOrder(domain.OrderSnapshot{
		ID:         "order-1",
		CustomerID: "12345678901",
		CreatedAt:  future,
		UpdatedAt:  future,
	}))

	result := NewUpdateOrderPaymentStatusUseCase(repo, WithLogger(loggerForTests())).
		Execute(context.Background(), UpdateOrderPaymentStatusRequest{ID: "order-1", PaymentStatus: "Aprovado"})

	require.NoError(t, result.Err())
	assert.False(t, result.Value().Order.UpdatedAt().Before(future))
}
