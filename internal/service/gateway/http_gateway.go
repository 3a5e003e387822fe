// Package gateway реализует обращения к сервису производства (клиенты, каталог)
// и платёжному сервису по HTTP, а также заглушку для локального запуска.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/order-service/internal/domain"
)

const (
	targetCustomers = "customers"
	targetProducts  = "products"
	targetWebhook   = "payment_webhook"
	targetCheckout  = "payment_checkout"

	// maxErrorBody ограничивает фрагмент тела ответа в тексте ошибки.
	maxErrorBody = 512
)

// MetricsRecorder принимает длительность исходящих вызовов.
type MetricsRecorder interface {
	ObserveGatewayCall(target, result string, duration time.Duration)
}

// HTTPGateway — реализация domain.Gateway поверх net/http.
type HTTPGateway struct {
	cfg     Config
	client  *http.Client
	metrics MetricsRecorder
	logger  *log.Entry
}

// Option настраивает HTTPGateway.
type Option func(*HTTPGateway)

// WithHTTPClient подменяет HTTP-клиент (например, в тестах).
func WithHTTPClient(client *http.Client) Option {
	return func(g *HTTPGateway) {
		if client != nil {
			g.client = client
		}
	}
}

// WithMetrics включает метрики исходящих вызовов.
func WithMetrics(metrics MetricsRecorder) Option {
	return func(g *HTTPGateway) {
		g.metrics = metrics
	}
}

// WithLogger задаёт logger.
func WithLogger(logger *log.Entry) Option {
	return func(g *HTTPGateway) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// NewHTTPGateway создаёт gateway. Таймаут из Config применяется к каждому запросу.
func NewHTTPGateway(cfg Config, opts ...Option) (*HTTPGateway, error) {
	normalized, err := cfg.normalize()
	if err != nil {
		return nil, err
	}

	g := &HTTPGateway{
		cfg:    normalized,
		client: &http.Client{Timeout: normalized.Timeout},
		logger: log.WithField("component", "gateway"),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Config возвращает копию конфигурации.
func (g *HTTPGateway) Config() Config {
	return g.cfg
}

type customerEnvelope struct {
	Customer *domain.Customer `json:"customer"`
}

type productsEnvelope struct {
	Products []domain.Product `json:"products"`
}

// GetCustomerByCPF ищет клиента: 404 → ErrCustomerNotFound, прочие ошибки → ErrUpstreamUnavailable.
func (g *HTTPGateway) GetCustomerByCPF(ctx context.Context, cpf string) (customer domain.Customer, err error) {
	defer g.observe(targetCustomers, time.Now(), &err)

	endpoint := g.cfg.ProductionServiceURL + "/customers/" + url.PathEscape(cpf)
	resp, err := g.do(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return domain.Customer{}, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return domain.Customer{}, domain.ErrCustomerNotFound
	case !isSuccess(resp.StatusCode):
		return domain.Customer{}, statusError("get customer", resp)
	}

	var envelope customerEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return domain.Customer{}, fmt.Errorf("%w: decode customer: %v", domain.ErrUpstreamUnavailable, err)
	}
	if envelope.Customer == nil {
		return domain.Customer{}, domain.ErrCustomerNotFound
	}
	return *envelope.Customer, nil
}

// GetProductByID перебирает категории каталога по порядку, пока не найдёт продукт.
// Неуспешный ответ по категории пропускается; сетевая ошибка прерывает поиск.
func (g *HTTPGateway) GetProductByID(ctx context.Context, id string) (product domain.Product, err error) {
	defer g.observe(targetProducts, time.Now(), &err)

	for _, category := range domain.ProductCategories {
		endpoint := g.cfg.ProductionServiceURL + "/products/" + url.PathEscape(category)
		resp, err := g.do(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return domain.Product{}, err
		}

		found, ok, err := findProduct(resp, id)
		if err != nil {
			return domain.Product{}, err
		}
		if ok {
			return found, nil
		}
		if !isSuccess(resp.StatusCode) {
			g.logger.WithFields(log.Fields{
				"category":    category,
				"status_code": resp.StatusCode,
			}).Debug("product category lookup skipped")
		}
	}
	return domain.Product{}, domain.ErrProductNotFound
}

func findProduct(resp *http.Response, id string) (domain.Product, bool, error) {
	defer resp.Body.Close()
	if !isSuccess(resp.StatusCode) {
		_, _ = io.Copy(io.Discard, resp.Body)
		return domain.Product{}, false, nil
	}

	var envelope productsEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return domain.Product{}, false, fmt.Errorf("%w: decode products: %v", domain.ErrUpstreamUnavailable, err)
	}
	for _, p := range envelope.Products {
		if p.ID == id {
			return p, true, nil
		}
	}
	return domain.Product{}, false, nil
}

type paymentNotification struct {
	OrderID       string `json:"orderId"`
	PaymentStatus string `json:"paymentStatus"`
}

// NotifyPaymentService отправляет статус оплаты в webhook платёжного сервиса.
func (g *HTTPGateway) NotifyPaymentService(ctx context.Context, orderID, paymentStatus string) (err error) {
	defer g.observe(targetWebhook, time.Now(), &err)

	body, err := json.Marshal(paymentNotification{OrderID: orderID, PaymentStatus: paymentStatus})
	if err != nil {
		return fmt.Errorf("marshal payment notification: %w", err)
	}

	resp, err := g.do(ctx, http.MethodPost, g.cfg.PaymentServiceURL+"/webhooks/mercado-pago", body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		return statusError("notify payment service", resp)
	}
	return nil
}

// UpdateOrderStatus сообщает платёжному сервису, что заказ ушёл в приготовление.
func (g *HTTPGateway) UpdateOrderStatus(ctx context.Context, orderID string) (err error) {
	defer g.observe(targetCheckout, time.Now(), &err)

	endpoint := g.cfg.PaymentServiceURL + "/checkout/" + url.PathEscape(orderID) + "/start-preparation"
	resp, err := g.do(ctx, http.MethodPatch, endpoint, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		return statusError("start preparation", resp)
	}
	return nil
}

func (g *HTTPGateway) do(ctx context.Context, method, endpoint string, body []byte) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("build request %s %s: %w", method, endpoint, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil || method == http.MethodPatch {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %v", domain.ErrUpstreamUnavailable, method, endpoint, err)
	}
	return resp, nil
}

func (g *HTTPGateway) observe(target string, started time.Time, err *error) {
	result := "ok"
	switch {
	case *err == nil:
	case domain.IsNotFound(*err):
		result = "not_found"
	default:
		result = "error"
	}
	if g.metrics != nil {
		g.metrics.ObserveGatewayCall(target, result, time.Since(started))
	}
	if result == "error" {
		g.logger.WithError(*err).WithField("target", target).Warn("gateway call failed")
	}
}

func isSuccess(code int) bool {
	return code >= 200 && code < 300
}

func statusError(op string, resp *http.Response) error {
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return fmt.Errorf("%w: %s: unexpected status %d: %s",
		domain.ErrUpstreamUnavailable, op, resp.StatusCode, bytes.TrimSpace(snippet))
}

var _ domain.Gateway = (*HTTPGateway)(nil)
