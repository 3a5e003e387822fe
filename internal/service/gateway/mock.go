package gateway

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/vladislavdragonenkov/order-service/internal/domain"
)

// MockGateway — in-process заглушка соседних сервисов для локального запуска и тестов.
// Справочники можно дополнять, вызовы записываются.
type MockGateway struct {
	mu        sync.RWMutex
	customers map[string]domain.Customer
	products  map[string]domain.Product

	NotifyErr error
	StatusErr error

	notifications []PaymentNotification
	preparations  []string
}

// PaymentNotification — запись о вызове NotifyPaymentService.
type PaymentNotification struct {
	OrderID       string
	PaymentStatus string
}

// NewMockGateway возвращает заглушку с демонстрационными данными.
func NewMockGateway() *MockGateway {
	m := &MockGateway{
		customers: make(map[string]domain.Customer),
		products:  make(map[string]domain.Product),
	}
	m.AddCustomer(domain.Customer{
		ID:    "12345678901",
		Name:  "John Doe",
		Email: "john.doe@example.com",
		CPF:   "12345678901",
	})
	m.AddProduct(domain.Product{
		ID:          "product-1",
		Name:        "X-Burger",
		Description: "Hambúrguer com queijo",
		Price:       decimal.RequireFromString("15.99"),
		Category:    "Lanche",
	})
	m.AddProduct(domain.Product{
		ID:          "product-2",
		Name:        "Batata Frita",
		Description: "Porção média",
		Price:       decimal.RequireFromString("8.99"),
		Category:    "Acompanhamento",
	})
	return m
}

// AddCustomer регистрирует клиента по CPF.
func (m *MockGateway) AddCustomer(c domain.Customer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.customers[c.CPF] = c
}

// AddProduct регистрирует продукт.
func (m *MockGateway) AddProduct(p domain.Product) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.products[p.ID] = p
}

func (m *MockGateway) GetCustomerByCPF(ctx context.Context, cpf string) (domain.Customer, error) {
	if err := ctx.Err(); err != nil {
		return domain.Customer{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.customers[cpf]
	if !ok {
		return domain.Customer{}, domain.ErrCustomerNotFound
	}
	return c, nil
}

func (m *MockGateway) GetProductByID(ctx context.Context, id string) (domain.Product, error) {
	if err := ctx.Err(); err != nil {
		return domain.Product{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.products[id]
	if !ok {
		return domain.Product{}, domain.ErrProductNotFound
	}
	return p, nil
}

func (m *MockGateway) NotifyPaymentService(_ context.Context, orderID, paymentStatus string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notifications = append(m.notifications, PaymentNotification{OrderID: orderID, PaymentStatus: paymentStatus})
	return m.NotifyErr
}

func (m *MockGateway) UpdateOrderStatus(_ context.Context, orderID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.preparations = append(m.preparations, orderID)
	return m.StatusErr
}

// Notifications возвращает копию вызовов NotifyPaymentService.
func (m *MockGateway) Notifications() []PaymentNotification {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]PaymentNotification(nil), m.notifications...)
}

// Preparations возвращает заказы, для которых вызывался UpdateOrderStatus.
func (m *MockGateway) Preparations() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.preparations...)
}

var _ domain.Gateway = (*MockGateway)(nil)
