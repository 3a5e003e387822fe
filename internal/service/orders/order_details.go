package orders

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vladislavdragonenkov/order-service/internal/domain"
)

const opGetOrderDetails = "get_order_details"

// GetOrderDetailsRequest — запрос детального представления заказа.
type GetOrderDetailsRequest struct {
	ID string
}

// OrderDetailsResponse — заказ вместе с данными клиента и продуктов.
type OrderDetailsResponse struct {
	Order    *domain.Order
	Customer domain.Customer
	Products []domain.Product
}

// GetOrderDetailsUseCase собирает заказ для кухни: клиент и продукты
// запрашиваются параллельно, первая ошибка отменяет остальные запросы.
type GetOrderDetailsUseCase struct {
	orders    domain.OrderRepository
	customers domain.CustomerCatalog
	products  domain.ProductCatalog
	opts      Options
}

// NewGetOrderDetailsUseCase создаёт use case детального представления.
func NewGetOrderDetailsUseCase(orders domain.OrderRepository, customers domain.CustomerCatalog, products domain.ProductCatalog, options ...Option) *GetOrderDetailsUseCase {
	return &GetOrderDetailsUseCase{
		orders:    orders,
		customers: customers,
		products:  products,
		opts:      buildOptions("order-details", options),
	}
}

// Execute возвращает заказ, клиента и продукты в порядке позиций заказа.
func (uc *GetOrderDetailsUseCase) Execute(ctx context.Context, req GetOrderDetailsRequest) domain.Result[OrderDetailsResponse] {
	var err error
	defer uc.opts.observe(opGetOrderDetails, time.Now(), &err)

	order, err := loadOrder(ctx, uc.orders, opGetOrderDetails, req.ID)
	if err != nil {
		return domain.Fail[OrderDetailsResponse](err)
	}

	productIDs := order.Lines().ProductIDs()
	resp := OrderDetailsResponse{
		Order:    order,
		Products: make([]domain.Product, len(productIDs)),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		customer, err := uc.customers.GetCustomerByCPF(gctx, order.CustomerID().String())
		if err != nil {
			return err
		}
		resp.Customer = customer
		return nil
	})
	for i, productID := range productIDs {
		g.Go(func() error {
			product, err := uc.products.GetProductByID(gctx, productID.String())
			if err != nil {
				return err
			}
			resp.Products[i] = product
			return nil
		})
	}

	if err = g.Wait(); err != nil {
		uc.opts.Logger.WithError(err).WithField("order_id", req.ID).Warn("order details lookup failed")
		err = domain.NewError(classify(err, domain.KindUpstreamUnavailable), opGetOrderDetails, err)
		return domain.Fail[OrderDetailsResponse](err)
	}

	return domain.Ok(resp)
}
