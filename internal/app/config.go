package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/vladislavdragonenkov/order-service/internal/service/gateway"
)

// StorageDriver выбирает хранилище заказов.
type StorageDriver string

const (
	StorageDriverMemory   StorageDriver = "memory"
	StorageDriverPostgres StorageDriver = "postgres"
	StorageDriverSQLite   StorageDriver = "sqlite"
	StorageDriverDynamoDB StorageDriver = "dynamodb"
)

// EventPublisher выбирает брокер для событий outbox.
type EventPublisher string

const (
	EventPublisherNone  EventPublisher = "none"
	EventPublisherKafka EventPublisher = "kafka"
	EventPublisherSQS   EventPublisher = "sqs"
)

// Config описывает настройки запуска приложения.
type Config struct {
	HTTPAddr    string
	GRPCAddr    string
	MetricsAddr string

	StorageDriver       StorageDriver
	PostgresDSN         string
	PostgresAutoMigrate bool
	SQLitePath          string
	DynamoDBTable       string
	AWSRegion           string

	ProductionServiceURL  string
	PaymentServiceURL     string
	GatewayTimeout        time.Duration
	AllowMockIntegrations bool

	EventPublisher     EventPublisher
	KafkaBrokers       string
	SQSQueueURL        string
	PaymentWebhookSync bool

	OutboxPollInterval time.Duration
	OutboxBatchSize    int
	OutboxMaxAttempts  int
	OutboxRetryDelay   time.Duration
	OutboxMaxPending   int
}

// DefaultConfig возвращает настройки для локального запуска.
func DefaultConfig() Config {
	return Config{
		HTTPAddr:    ":3333",
		GRPCAddr:    ":50051",
		MetricsAddr: ":9090",

		StorageDriver:       StorageDriverMemory,
		PostgresAutoMigrate: true,
		SQLitePath:          "orders.db",
		DynamoDBTable:       "orders",
		AWSRegion:           "us-east-1",

		ProductionServiceURL: gateway.DefaultProductionServiceURL,
		PaymentServiceURL:    gateway.DefaultPaymentServiceURL,
		GatewayTimeout:       gateway.DefaultTimeout,

		EventPublisher: EventPublisherNone,

		OutboxPollInterval: time.Second,
		OutboxBatchSize:    100,
		OutboxMaxAttempts:  3,
		OutboxRetryDelay:   50 * time.Millisecond,
		OutboxMaxPending:   10000,
	}
}

// Validate проверяет согласованность настроек до запуска.
func (c Config) Validate() error {
	switch c.StorageDriver {
	case StorageDriverMemory, StorageDriverSQLite, StorageDriverDynamoDB:
	case StorageDriverPostgres:
		if strings.TrimSpace(c.PostgresDSN) == "" {
			return fmt.Errorf("postgres dsn is required for storage driver %q", c.StorageDriver)
		}
	default:
		return fmt.Errorf("unsupported storage driver %q", c.StorageDriver)
	}

	switch c.EventPublisher {
	case EventPublisherNone, "":
	case EventPublisherKafka:
		if len(c.kafkaBrokers()) == 0 {
			return fmt.Errorf("kafka brokers are required for event publisher %q", c.EventPublisher)
		}
	case EventPublisherSQS:
		if strings.TrimSpace(c.SQSQueueURL) == "" {
			return fmt.Errorf("sqs queue url is required for event publisher %q", c.EventPublisher)
		}
	default:
		return fmt.Errorf("unsupported event publisher %q", c.EventPublisher)
	}
	return nil
}

func (c Config) gatewayConfig() gateway.Config {
	return gateway.Config{
		ProductionServiceURL: c.ProductionServiceURL,
		PaymentServiceURL:    c.PaymentServiceURL,
		Timeout:              c.GatewayTimeout,
	}
}

// kafkaBrokers разбирает список брокеров через запятую.
func (c Config) kafkaBrokers() []string {
	var brokers []string
	for _, broker := range strings.Split(c.KafkaBrokers, ",") {
		if broker = strings.TrimSpace(broker); broker != "" {
			brokers = append(brokers, broker)
		}
	}
	return brokers
}
