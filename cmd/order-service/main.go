package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/order-service/internal/app"
	"github.com/vladislavdragonenkov/order-service/internal/version"
)

const (
	envLogLevel              = "ORDER_LOG_LEVEL"
	envHTTPAddr              = "ORDER_HTTP_ADDR"
	envGRPCAddr              = "ORDER_GRPC_ADDR"
	envMetricsAddr           = "ORDER_METRICS_ADDR"
	envStorageDriver         = "ORDER_STORAGE_DRIVER"
	envPostgresDSN           = "ORDER_POSTGRES_DSN"
	envPostgresAutoMigrate   = "ORDER_POSTGRES_AUTO_MIGRATE"
	envSQLitePath            = "ORDER_SQLITE_PATH"
	envDynamoDBTable         = "ORDER_DYNAMODB_TABLE"
	envAWSRegion             = "AWS_REGION"
	envProductionServiceURL  = "PRODUCTION_SERVICE_URL"
	envPaymentServiceURL     = "PAYMENT_SERVICE_URL"
	envGatewayTimeout        = "ORDER_GATEWAY_TIMEOUT"
	envAllowMockIntegrations = "ORDER_ALLOW_MOCK_INTEGRATIONS"
	envEventPublisher        = "ORDER_EVENT_PUBLISHER"
	envKafkaBrokers          = "KAFKA_BROKERS"
	envSQSQueueURL           = "ORDER_SQS_QUEUE_URL"
	envPaymentWebhookSync    = "ORDER_PAYMENT_WEBHOOK_SYNC"
	envOutboxPollInterval    = "ORDER_OUTBOX_POLL_INTERVAL"
	envOutboxBatchSize       = "ORDER_OUTBOX_BATCH_SIZE"
	envOutboxMaxAttempts     = "ORDER_OUTBOX_MAX_ATTEMPTS"
	envOutboxRetryDelay      = "ORDER_OUTBOX_RETRY_DELAY"
	envOutboxMaxPending      = "ORDER_OUTBOX_MAX_PENDING"
)

type envLookup func(string) (string, bool)

// setupLogger настраивает формат и уровень логирования для сервиса.
func setupLogger(lookup envLookup) {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	log.SetLevel(log.InfoLevel)

	raw, ok := lookup(envLogLevel)
	if !ok || strings.TrimSpace(raw) == "" {
		return
	}
	level, err := log.ParseLevel(strings.TrimSpace(raw))
	if err != nil {
		log.WithError(err).Warnf("invalid %s, using info", envLogLevel)
		return
	}
	log.SetLevel(level)
}

// readConfigFromEnv накладывает переменные окружения на DefaultConfig.
// Некорректные значения не прерывают запуск: остаётся значение по умолчанию,
// а описание проблемы попадает в warnings.
func readConfigFromEnv(lookup envLookup) (app.Config, []string) {
	cfg := app.DefaultConfig()
	var warnings []string
	warn := func(key, raw string, err error) {
		warnings = append(warnings, fmt.Sprintf("%s=%q: %v", key, raw, err))
	}

	stringVar := func(key string, target *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*target = strings.TrimSpace(v)
		}
	}
	boolVar := func(key string, target *bool) {
		v, ok := lookup(key)
		if !ok || strings.TrimSpace(v) == "" {
			return
		}
		parsed, err := parseBool(v)
		if err != nil {
			warn(key, v, err)
			return
		}
		*target = parsed
	}
	intVar := func(key string, target *int, valid func(int) bool, rule string) {
		v, ok := lookup(key)
		if !ok || strings.TrimSpace(v) == "" {
			return
		}
		parsed, err := parseInt(v, valid, rule)
		if err != nil {
			warn(key, v, err)
			return
		}
		*target = parsed
	}
	durationVar := func(key string, target *time.Duration, valid func(time.Duration) bool, rule string) {
		v, ok := lookup(key)
		if !ok || strings.TrimSpace(v) == "" {
			return
		}
		parsed, err := parseDuration(v, valid, rule)
		if err != nil {
			warn(key, v, err)
			return
		}
		*target = parsed
	}

	stringVar(envHTTPAddr, &cfg.HTTPAddr)
	stringVar(envGRPCAddr, &cfg.GRPCAddr)
	stringVar(envMetricsAddr, &cfg.MetricsAddr)

	if v, ok := lookup(envStorageDriver); ok && strings.TrimSpace(v) != "" {
		cfg.StorageDriver = app.StorageDriver(strings.ToLower(strings.TrimSpace(v)))
	}
	stringVar(envPostgresDSN, &cfg.PostgresDSN)
	boolVar(envPostgresAutoMigrate, &cfg.PostgresAutoMigrate)
	stringVar(envSQLitePath, &cfg.SQLitePath)
	stringVar(envDynamoDBTable, &cfg.DynamoDBTable)
	stringVar(envAWSRegion, &cfg.AWSRegion)

	stringVar(envProductionServiceURL, &cfg.ProductionServiceURL)
	stringVar(envPaymentServiceURL, &cfg.PaymentServiceURL)
	durationVar(envGatewayTimeout, &cfg.GatewayTimeout, func(v time.Duration) bool { return v > 0 }, "must be > 0")
	boolVar(envAllowMockIntegrations, &cfg.AllowMockIntegrations)

	if v, ok := lookup(envEventPublisher); ok && strings.TrimSpace(v) != "" {
		cfg.EventPublisher = app.EventPublisher(strings.ToLower(strings.TrimSpace(v)))
	}
	stringVar(envKafkaBrokers, &cfg.KafkaBrokers)
	stringVar(envSQSQueueURL, &cfg.SQSQueueURL)
	boolVar(envPaymentWebhookSync, &cfg.PaymentWebhookSync)

	positiveInt := func(v int) bool { return v > 0 }
	durationVar(envOutboxPollInterval, &cfg.OutboxPollInterval, func(v time.Duration) bool { return v > 0 }, "must be > 0")
	intVar(envOutboxBatchSize, &cfg.OutboxBatchSize, positiveInt, "must be > 0")
	intVar(envOutboxMaxAttempts, &cfg.OutboxMaxAttempts, positiveInt, "must be > 0")
	durationVar(envOutboxRetryDelay, &cfg.OutboxRetryDelay, func(v time.Duration) bool { return v >= 0 }, "must be >= 0")
	intVar(envOutboxMaxPending, &cfg.OutboxMaxPending, func(v int) bool { return v >= 0 }, "must be >= 0")

	return cfg, warnings
}

func parseBool(raw string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "yes", "y", "on":
		return true, nil
	case "0", "false", "no", "n", "off":
		return false, nil
	}
	return false, fmt.Errorf("invalid bool value %q", raw)
}

func parseInt(raw string, valid func(int) bool, rule string) (int, error) {
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("invalid int value %q: %w", raw, err)
	}
	if valid != nil && !valid(value) {
		return 0, fmt.Errorf("value %d %s", value, rule)
	}
	return value, nil
}

func parseDuration(raw string, valid func(time.Duration) bool, rule string) (time.Duration, error) {
	value, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("invalid duration value %q: %w", raw, err)
	}
	if valid != nil && !valid(value) {
		return 0, fmt.Errorf("value %s %s", value, rule)
	}
	return value, nil
}

func main() {
	setupLogger(os.LookupEnv)
	cfg, warnings := readConfigFromEnv(os.LookupEnv)
	for _, w := range warnings {
		log.Warnf("config: %s, using default", w)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.WithFields(version.Fields()).WithFields(log.Fields{
		"http_addr":       cfg.HTTPAddr,
		"grpc_addr":       cfg.GRPCAddr,
		"metrics_addr":    cfg.MetricsAddr,
		"storage_driver":  cfg.StorageDriver,
		"event_publisher": cfg.EventPublisher,
	}).Info("запускаем order-service")

	if err := app.Run(ctx, cfg); err != nil && !errors.Is(err, context.Canceled) {
		log.WithError(err).Fatal("приложение завершилось с ошибкой")
	}

	log.Info("order-service остановлен")
}
