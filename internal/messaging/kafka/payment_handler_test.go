package kafka

import (
	"context"
	"errors"
	"testing"

	"github.com/IBM/sarama"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/order-service/internal/domain"
)

func TestPaymentStatusHandler(t *testing.T) {
	tests := []struct {
		name          string
		value         string
		applyErr      error
		wantErr       bool
		wantPermanent bool
		wantApplied   bool
	}{
		{name: "applied", value: `{"orderId":"order-1","paymentStatus":"Aprovado"}`, wantApplied: true},
		{name: "broken json", value: `{`, wantErr: true, wantPermanent: true},
		{name: "missing order id", value: `{"paymentStatus":"Aprovado"}`, wantErr: true, wantPermanent: true},
		{name: "unknown order", value: `{"orderId":"order-1","paymentStatus":"Aprovado"}`, applyErr: domain.NewError(domain.KindNotFound, "update", domain.ErrOrderNotFound), wantErr: true, wantPermanent: true, wantApplied: true},
		{name: "empty status", value: `{"orderId":"order-1","paymentStatus":""}`, applyErr: domain.ErrInvalidPaymentStatus, wantErr: true, wantPermanent: true, wantApplied: true},
		{name: "storage failure is retried", value: `{"orderId":"order-1","paymentStatus":"Aprovado"}`, applyErr: domain.NewError(domain.KindPersistenceFailure, "update", errors.New("db down")), wantErr: true, wantApplied: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			applied := false
			handler := NewPaymentStatusHandler(func(_ context.Context, orderID, status string) error {
				applied = true
				assert.Equal(t, "order-1", orderID)
				return tt.applyErr
			}, nil)

			err := handler(context.Background(), &sarama.ConsumerMessage{Value: []byte(tt.value)})
			if !tt.wantErr {
				require.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Equal(t, tt.wantPermanent, IsPermanent(err))
			}
			assert.Equal(t, tt.wantApplied, applied)
		})
	}
}
