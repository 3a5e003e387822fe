package app

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/order-service/internal/service/gateway"
)

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.HTTPAddr = "127.0.0.1:0"
	cfg.GRPCAddr = "127.0.0.1:0"
	cfg.MetricsAddr = "127.0.0.1:0"
	cfg.AllowMockIntegrations = true
	return cfg
}

func TestRun_InvalidStorageDriver(t *testing.T) {
	cfg := testConfig()
	cfg.StorageDriver = "invalid-driver"

	err := Run(context.Background(), cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported storage driver")
}

func TestRun_GracefulShutdown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(150 * time.Millisecond)
		cancel()
	}()

	err := Run(ctx, testConfig())
	assert.True(t, errors.Is(err, context.Canceled), "expected context.Canceled, got %v", err)
}

func TestNew_ListenError(t *testing.T) {
	cfg := testConfig()
	cfg.HTTPAddr = "256.0.0.1:bad"

	_, err := New(context.Background(), cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "listen http")
}

func TestApp_ServesOrdersAndForwardsPaymentStatus(t *testing.T) {
	cfg := testConfig()
	cfg.PaymentWebhookSync = true
	cfg.OutboxPollInterval = 10 * time.Millisecond
	cfg.OutboxRetryDelay = 0

	a, err := New(context.Background(), cfg)
	require.NoError(t, err)
	mock, ok := a.deps.Gateway.(*gateway.MockGateway)
	require.True(t, ok)

	ctx, cancel := context.WithCancel(context.Background())
	served := make(chan error, 1)
	go func() { served <- a.Serve(ctx) }()

	apiURL := "http://" + a.HTTPAddr()
	client := &http.Client{Timeout: 2 * time.Second}

	body, _ := json.Marshal(map[string]any{"customerId": "12345678901", "productIds": []string{"product-1"}})
	resp, err := client.Post(apiURL+"/orders", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	var createdBody struct {
		Order struct {
			ID string `json:"id"`
		} `json:"order"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&createdBody))
	created := createdBody.Order
	_ = resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.NotEmpty(t, created.ID)

	patch, err := http.NewRequest(http.MethodPatch, fmt.Sprintf("%s/orders/%s/payment-status", apiURL, created.ID),
		bytes.NewReader([]byte(`{"paymentStatus":"Aprovado"}`)))
	require.NoError(t, err)
	patch.Header.Set("Content-Type", "application/json")
	resp, err = client.Do(patch)
	require.NoError(t, err)
	_ = resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	require.Eventually(t, func() bool {
		for _, n := range mock.Notifications() {
			if n.OrderID == created.ID && n.PaymentStatus == "Aprovado" {
				return true
			}
		}
		return false
	}, 2*time.Second, 20*time.Millisecond)

	resp, err = client.Get("http://" + a.MetricsAddr() + "/readyz")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-served:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(10 * time.Second):
		t.Fatal("app did not stop")
	}
}
