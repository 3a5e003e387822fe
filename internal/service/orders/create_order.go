package orders

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/order-service/internal/domain"
)

const opCreateOrder = "create_order"

// CreateOrderRequest — входные данные создания заказа.
// CustomerID используется как ключ поиска клиента (CPF).
type CreateOrderRequest struct {
	CustomerID string
	ProductIDs []string
}

// CreateOrderUseCase проверяет клиента и продукты во внешних сервисах
// и только после этого сохраняет заказ.
type CreateOrderUseCase struct {
	orders    domain.OrderRepository
	customers domain.CustomerCatalog
	products  domain.ProductCatalog
	opts      Options
}

// NewCreateOrderUseCase создаёт use case создания заказа.
func NewCreateOrderUseCase(orders domain.OrderRepository, customers domain.CustomerCatalog, products domain.ProductCatalog, options ...Option) *CreateOrderUseCase {
	return &CreateOrderUseCase{
		orders:    orders,
		customers: customers,
		products:  products,
		opts:      buildOptions("create-order", options),
	}
}

// Execute выполняет создание заказа.
//
// Клиент запрашивается первым; продукты проверяются последовательно
// в порядке запроса, первая ошибка прекращает проверку. Заказ пишется
// в репозиторий ровно один раз и только после успешных проверок.
// Повторный вызов с теми же данными создаёт новый заказ.
// Идентификаторы нормализуются один раз: в каталоги уходят те же
// значения, что затем сохраняются в заказе.
func (uc *CreateOrderUseCase) Execute(ctx context.Context, req CreateOrderRequest) domain.Result[OrderResponse] {
	var err error
	defer uc.opts.observe(opCreateOrder, time.Now(), &err)
	customerID := domain.EntityIDFrom(req.CustomerID)
	productIDs := make([]domain.EntityID, 0, len(req.ProductIDs))
	for _, productID := range req.ProductIDs {
		productIDs = append(productIDs, domain.EntityIDFrom(productID))
	}
	logger := uc.opts.Logger.WithField("customer_id", customerID.String())

	if _, err = uc.customers.GetCustomerByCPF(ctx, customerID.String()); err != nil {
		logger.WithError(err).Info("customer lookup failed")
		err = domain.NewError(classify(err, domain.KindUpstreamUnavailable), opCreateOrder, err)
		return domain.Fail[OrderResponse](err)
	}

	for _, productID := range productIDs {
		if _, err = uc.products.GetProductByID(ctx, productID.String()); err != nil {
			logger.WithError(err).WithField("product_id", productID.String()).Info("product lookup failed")
			err = domain.NewError(classify(err, domain.KindUpstreamUnavailable), opCreateOrder, err)
			return domain.Fail[OrderResponse](err)
		}
	}

	order := domain.NewOrder(domain.NewOrderParams{CustomerID: customerID})
	lines := make([]domain.OrderLine, 0, len(productIDs))
	for _, productID := range productIDs {
		lines = append(lines, domain.NewOrderLine(order.ID(), productID))
	}
	order.ReplaceLines(domain.NewOrderLineList(lines...))

	if err = uc.orders.Create(ctx, order); err != nil {
		logger.WithError(err).WithField("order_id", order.ID().String()).Error("persist order failed")
		err = domain.NewError(domain.KindPersistenceFailure, opCreateOrder, err)
		return domain.Fail[OrderResponse](err)
	}

	uc.opts.Events.Record(ctx, order, domain.EventOrderCreated, "")
	logger.WithFields(log.Fields{
		"order_id": order.ID().String(),
		"lines":    order.Lines().Len(),
	}).Info("order created")

	return domain.Ok(OrderResponse{Order: order})
}
