package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Customer — клиент из сервиса производства.
type Customer struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	CPF   string `json:"cpf"`
}

// Product — продукт каталога.
type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
}

// ProductCategories — категории каталога в порядке поиска продукта.
var ProductCategories = []string{"Lanche", "Acompanhamento", "Bebida", "Sobremesa"}

// CustomerCatalog ищет клиентов по CPF.
type CustomerCatalog interface {
	GetCustomerByCPF(ctx context.Context, cpf string) (Customer, error)
}

// ProductCatalog ищет продукты по идентификатору.
type ProductCatalog interface {
	GetProductByID(ctx context.Context, id string) (Product, error)
}

// PaymentGateway описывает вызовы платёжного сервиса.
type PaymentGateway interface {
	// NotifyPaymentService передаёт статус оплаты в webhook платёжного сервиса.
	NotifyPaymentService(ctx context.Context, orderID, paymentStatus string) error
	// UpdateOrderStatus сообщает платёжному сервису о начале приготовления.
	UpdateOrderStatus(ctx context.Context, orderID string) error
}

// Gateway объединяет обращения к соседним микросервисам.
type Gateway interface {
	CustomerCatalog
	ProductCatalog
	PaymentGateway
}

// OutboxPublisher публикует события из outbox. Outbox пополняется
// после записи заказа отдельной операцией, общей транзакции нет.
type OutboxPublisher interface {
	// Publish передаёт событие наружу; должен быть идемпотентным.
	Publish(ctx context.Context, event OutboxMessage) error
}

// OutboxRepository позволяет сохранять события для последующей публикации.
type OutboxRepository interface {
	Enqueue(ctx context.Context, msg OutboxMessage) (OutboxMessage, error)
	PullPending(ctx context.Context, limit int) ([]OutboxMessage, error)
	Stats(ctx context.Context) (OutboxStats, error)
	MarkSent(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id string) error
}

// TimelineRepository хранит события жизненного цикла заказа.
type TimelineRepository interface {
	Append(ctx context.Context, event TimelineEvent) error
	List(ctx context.Context, orderID string) ([]TimelineEvent, error)
}

// OutboxMessage хранит данные для публикуемого события.
type OutboxMessage struct {
	ID            string
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte
}

// OutboxStats описывает текущее состояние backlog outbox.
type OutboxStats struct {
	PendingCount    int
	OldestPendingAt time.Time
}
