package orders

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/order-service/internal/domain"
	"github.com/vladislavdragonenkov/order-service/internal/storage/memory"
)

func TestGetOrderDetails(t *testing.T) {
	repo := &fakeOrderRepository{}
	seedOrder(repo, "order-1", "12345678901", domain.StatusReceived, "product-2", "product-1", "product-3")
	gw := newFakeGateway()

	result := NewGetOrderDetailsUseCase(repo, gw, gw, WithLogger(loggerForTests())).
		Execute(context.Background(), GetOrderDetailsRequest{ID: "order-1"})

	require.NoError(t, result.Err())
	details := result.Value()
	assert.Equal(t, "John Doe", details.Customer.Name)
	require.Len(t, details.Products, 3)
	assert.Equal(t, "product-2", details.Products[0].ID)
	assert.Equal(t, "product-1", details.Products[1].ID)
	assert.Equal(t, "15.99", details.Products[1].Price.StringFixed(2))
	assert.Equal(t, "product-3", details.Products[2].ID)
	assert.Equal(t, []string{"12345678901"}, gw.customerCalls)
	assert.ElementsMatch(t, []string{"product-1", "product-2", "product-3"}, gw.productCalls)
}

func TestGetOrderDetails_Failures(t *testing.T) {
	cases := []struct {
		name     string
		orderID  string
		setup    func(gw *fakeGateway)
		wantKind domain.ErrorKind
	}{
		{name: "missing order", orderID: "order-404", setup: func(*fakeGateway) {}, wantKind: domain.KindNotFound},
		{name: "missing product", orderID: "order-1", setup: func(gw *fakeGateway) {
			delete(gw.products, "product-1")
		}, wantKind: domain.KindNotFound},
		{name: "customer service down", orderID: "order-1", setup: func(gw *fakeGateway) {
			gw.customerErr = errors.New("status 502")
		}, wantKind: domain.KindUpstreamUnavailable},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := &fakeOrderRepository{}
			seedOrder(repo, "order-1", "12345678901", "", "product-1", "product-2")
			gw := newFakeGateway()
			tc.setup(gw)

			result := NewGetOrderDetailsUseCase(repo, gw, gw, WithLogger(loggerForTests())).
				Execute(context.Background(), GetOrderDetailsRequest{ID: tc.orderID})

			require.True(t, result.IsFailure())
			assert.Equal(t, tc.wantKind, domain.KindOf(result.Err()))
		})
	}
}

func TestGetOrderTimeline(t *testing.T) {
	ctx := context.Background()
	repo := &fakeOrderRepository{}
	order := seedOrder(repo, "order-1", "12345678901", "")
	timeline := memory.NewTimelineRepository()
	events := NewEventRecorder(nil, timeline, nil, loggerForTests())

	require.NoError(t, order.SetStatus(domain.StatusReceived))
	events.Record(ctx, order, domain.EventOrderStatusChanged, "")

	uc := NewGetOrderTimelineUseCase(repo, timeline)
	result := uc.Execute(ctx, "order-1")
	require.NoError(t, result.Err())
	require.Len(t, result.Value(), 1)
	assert.Equal(t, domain.EventOrderStatusChanged, result.Value()[0].Type)

	missing := uc.Execute(ctx, "order-404")
	assert.Equal(t, domain.KindNotFound, domain.KindOf(missing.Err()))
}
