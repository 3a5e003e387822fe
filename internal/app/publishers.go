package app

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	cloudaws "github.com/vladislavdragonenkov/order-service/internal/cloud/aws"
	"github.com/vladislavdragonenkov/order-service/internal/domain"
	"github.com/vladislavdragonenkov/order-service/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/order-service/internal/messaging/sqs"
	"github.com/vladislavdragonenkov/order-service/internal/service/gateway"
	"github.com/vladislavdragonenkov/order-service/internal/service/outbox"
)

// publisherDeps — получатели событий outbox.
type publisherDeps struct {
	publisher *outbox.FanoutPublisher
	dlq       domain.OutboxPublisher
}

// enabled сообщает, есть ли хотя бы один получатель событий.
func (p publisherDeps) enabled() bool {
	return p.publisher != nil && p.publisher.Len() > 0
}

// buildPublishers собирает fan-out из брокера событий и синхронного webhook
// платёжного сервиса. DLQ доступна только при наличии Kafka producer.
func buildPublishers(ctx context.Context, cfg Config, producer *kafka.Producer, payments domain.PaymentGateway, logger *log.Entry) (publisherDeps, error) {
	var publishers []domain.OutboxPublisher

	switch cfg.EventPublisher {
	case EventPublisherKafka:
		if producer == nil {
			return publisherDeps{}, fmt.Errorf("event publisher %q requires a kafka producer", cfg.EventPublisher)
		}
		publishers = append(publishers, kafka.NewOutboxPublisher(producer, kafka.TopicOrderEvents))
		logger.WithField("topic", kafka.TopicOrderEvents).Info("outbox publishes to kafka")

	case EventPublisherSQS:
		awsCfg, err := cloudaws.LoadConfig(ctx, cfg.AWSRegion)
		if err != nil {
			return publisherDeps{}, err
		}
		publishers = append(publishers, sqs.NewPublisher(cloudaws.NewSQS(awsCfg), cfg.SQSQueueURL, logger.WithField("component", "sqs-publisher")))
		logger.WithField("queue_url", cfg.SQSQueueURL).Info("outbox publishes to sqs")
	}

	if cfg.PaymentWebhookSync && payments != nil {
		publishers = append(publishers, gateway.NewPaymentWebhookPublisher(payments))
		logger.Info("payment status changes are forwarded to payment webhook")
	}

	deps := publisherDeps{publisher: outbox.NewFanoutPublisher(publishers...)}
	if producer != nil {
		deps.dlq = kafka.NewOutboxPublisher(producer, kafka.TopicDeadLetterQueue)
	}
	return deps, nil
}
