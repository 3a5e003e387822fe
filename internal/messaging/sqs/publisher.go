// Package sqs публикует события заказов из outbox в очередь Amazon SQS.
package sqs

import (
	"context"
	"errors"
	"fmt"
	"strings"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	awssqs "github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"
	log "github.com/sirupsen/logrus"

	cloudaws "github.com/vladislavdragonenkov/order-service/internal/cloud/aws"
	"github.com/vladislavdragonenkov/order-service/internal/domain"
)

// Атрибуты сообщения SQS.
const (
	AttributeEventType     = "event_type"
	AttributeAggregateType = "aggregate_type"
	AttributeAggregateID   = "aggregate_id"
	AttributeOutboxID      = "outbox_id"
)

var errPublisherNotInitialized = errors.New("sqs outbox publisher is not initialized")

// Publisher отправляет outbox-сообщения в очередь queueURL.
// Для FIFO-очередей группа сообщений — id заказа, дедупликация — id outbox-записи.
type Publisher struct {
	client   cloudaws.SQSAPI
	queueURL string
	fifo     bool
	logger   *log.Entry
}

// NewPublisher создаёт publisher поверх клиента SQS.
func NewPublisher(client cloudaws.SQSAPI, queueURL string, logger *log.Entry) *Publisher {
	if logger == nil {
		logger = log.WithField("component", "sqs-publisher")
	}
	queueURL = strings.TrimSpace(queueURL)
	return &Publisher{
		client:   client,
		queueURL: queueURL,
		fifo:     strings.HasSuffix(queueURL, ".fifo"),
		logger:   logger,
	}
}

// Publish отправляет payload события телом сообщения.
func (p *Publisher) Publish(ctx context.Context, event domain.OutboxMessage) error {
	if p == nil || p.client == nil || p.queueURL == "" {
		return errPublisherNotInitialized
	}

	body := string(event.Payload)
	if body == "" {
		body = "null"
	}

	input := &awssqs.SendMessageInput{
		QueueUrl:          sdkaws.String(p.queueURL),
		MessageBody:       sdkaws.String(body),
		MessageAttributes: messageAttributes(event),
	}
	if p.fifo {
		group := event.AggregateID
		if group == "" {
			group = event.ID
		}
		input.MessageGroupId = sdkaws.String(group)
		input.MessageDeduplicationId = sdkaws.String(event.ID)
	}

	out, err := p.client.SendMessage(ctx, input)
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}

	fields := log.Fields{
		"outbox_id":  event.ID,
		"order_id":   event.AggregateID,
		"event_type": event.EventType,
	}
	if out != nil && out.MessageId != nil {
		fields["message_id"] = *out.MessageId
	}
	p.logger.WithFields(fields).Debug("message sent to sqs")
	return nil
}

func messageAttributes(event domain.OutboxMessage) map[string]sqstypes.MessageAttributeValue {
	values := map[string]string{
		AttributeEventType:     event.EventType,
		AttributeAggregateType: event.AggregateType,
		AttributeAggregateID:   event.AggregateID,
		AttributeOutboxID:      event.ID,
	}

	attrs := make(map[string]sqstypes.MessageAttributeValue, len(values))
	for k, v := range values {
		// SQS отклоняет пустые строковые атрибуты.
		if v == "" {
			continue
		}
		attrs[k] = sqstypes.MessageAttributeValue{
			DataType:    sdkaws.String("String"),
			StringValue: sdkaws.String(v),
		}
	}
	return attrs
}

var _ domain.OutboxPublisher = (*Publisher)(nil)
