package orders

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/order-service/internal/domain"
)

func loggerForTests() *log.Entry {
	logger := log.New()
	logger.SetOutput(io.Discard)
	return logger.WithField("test", true)
}

// fakeOrderRepository хранит заказы в памяти и считает вызовы.
type fakeOrderRepository struct {
	mu          sync.Mutex
	orders      []*domain.Order
	createCalls int
	saveCalls   int
	saved       []*domain.Order
	createErr   error
	saveErr     error
	findErr     error
	getAllErr   error
}

func (r *fakeOrderRepository) Create(_ context.Context, order *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.createCalls++
	if r.createErr != nil {
		return r.createErr
	}
	r.orders = append(r.orders, order)
	return nil
}

func (r *fakeOrderRepository) Save(_ context.Context, order *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saveCalls++
	r.saved = append(r.saved, order)
	return r.saveErr
}

func (r *fakeOrderRepository) FindByID(_ context.Context, id string) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	for _, o := range r.orders {
		if o.ID().String() == id {
			return o, nil
		}
	}
	return nil, domain.ErrOrderNotFound
}

func (r *fakeOrderRepository) GetAll(context.Context) ([]*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.getAllErr != nil {
		return nil, r.getAllErr
	}
	out := make([]*domain.Order, len(r.orders))
	copy(out, r.orders)
	return out, nil
}

// fakeGateway отвечает из заранее заданных справочников и записывает вызовы.
type fakeGateway struct {
	mu            sync.Mutex
	customers     map[string]domain.Customer
	products      map[string]domain.Product
	customerErr   error
	productErrs   map[string]error
	customerCalls []string
	productCalls  []string
	statusCalls   []string
	statusErr     error
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		customers: map[string]domain.Customer{
			"12345678901": {ID: "customer-1", Name: "John Doe", Email: "john@example.com", CPF: "12345678901"},
		},
		products: map[string]domain.Product{
			"product-1": {ID: "product-1", Name: "X-Burger", Price: decimal.RequireFromString("15.99"), Category: "Lanche"},
			"product-2": {ID: "product-2", Name: "Batata Frita", Price: decimal.RequireFromString("8.99"), Category: "Acompanhamento"},
			"product-3": {ID: "product-3", Name: "Refrigerante", Price: decimal.RequireFromString("6.50"), Category: "Bebida"},
		},
		productErrs: map[string]error{},
	}
}

func (g *fakeGateway) GetCustomerByCPF(_ context.Context, cpf string) (domain.Customer, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.customerCalls = append(g.customerCalls, cpf)
	if g.customerErr != nil {
		return domain.Customer{}, g.customerErr
	}
	c, ok := g.customers[cpf]
	if !ok {
		return domain.Customer{}, domain.ErrCustomerNotFound
	}
	return c, nil
}

func (g *fakeGateway) GetProductByID(_ context.Context, id string) (domain.Product, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.productCalls = append(g.productCalls, id)
	if err := g.productErrs[id]; err != nil {
		return domain.Product{}, err
	}
	p, ok := g.products[id]
	if !ok {
		return domain.Product{}, domain.ErrProductNotFound
	}
	return p, nil
}

func (g *fakeGateway) NotifyPaymentService(context.Context, string, string) error {
	return nil
}

func (g *fakeGateway) UpdateOrderStatus(_ context.Context, orderID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.statusCalls = append(g.statusCalls, orderID)
	return g.statusErr
}

func (g *fakeGateway) productCallCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.productCalls)
}

var errConnectionRefused = errors.New("dial tcp 127.0.0.1:3335: connect: connection refused")

func seedOrder(repo *fakeOrderRepository, id, customerID string, status domain.Status, productIDs ...string) *domain.Order {
	lines := make([]domain.OrderLineSnapshot, 0, len(productIDs))
	for _, p := range productIDs {
		lines = append(lines, domain.OrderLineSnapshot{ProductID: p})
	}
	order := domain.RestoreOrder(domain.OrderSnapshot{
		ID:         id,
		CustomerID: customerID,
		Status:     string(status),
		Lines:      lines,
	})
	repo.orders = append(repo.orders, order)
	return order
}

var _ domain.OrderRepository = (*fakeOrderRepository)(nil)
var _ domain.Gateway = (*fakeGateway)(nil)
