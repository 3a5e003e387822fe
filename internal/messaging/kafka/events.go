package kafka

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/IBM/sarama"
)

// Topics для Kafka
const (
	TopicOrderEvents     = "orders.events"
	TopicPaymentStatus   = "payments.status"
	TopicDeadLetterQueue = "orders.dlq"
)

// Kafka headers для retry/DLQ логики
const (
	HeaderRetryCount    = "x-retry-count"
	HeaderOriginalTopic = "x-original-topic"
	HeaderErrorMessage  = "x-error-message"
	HeaderFailedAt      = "x-failed-at"
	HeaderEventType     = "x-event-type"
)

// OutboxEnvelope — сообщение, которое outbox публикует в TopicOrderEvents.
type OutboxEnvelope struct {
	ID            string          `json:"id"`
	AggregateType string          `json:"aggregate_type"`
	AggregateID   string          `json:"aggregate_id"`
	EventType     string          `json:"event_type"`
	Payload       json.RawMessage `json:"payload"`
	PublishedAt   time.Time       `json:"published_at"`
}

// PaymentStatusMessage — уведомление платёжного сервиса о смене статуса оплаты.
type PaymentStatusMessage struct {
	OrderID       string `json:"orderId"`
	PaymentStatus string `json:"paymentStatus"`
}

// DLQMessage — запись в Dead Letter Queue.
type DLQMessage struct {
	OriginalTopic     string    `json:"original_topic"`
	OriginalPartition int32     `json:"original_partition"`
	OriginalOffset    int64     `json:"original_offset"`
	OriginalKey       string    `json:"original_key"`
	OriginalValue     string    `json:"original_value"`
	ErrorMessage      string    `json:"error_message"`
	FailedAt          time.Time `json:"failed_at"`
	RetryCount        int       `json:"retry_count"`
}

// ParsePaymentStatusMessage декодирует и проверяет сообщение о статусе оплаты.
func ParsePaymentStatusMessage(message *sarama.ConsumerMessage) (PaymentStatusMessage, error) {
	var msg PaymentStatusMessage
	if err := json.Unmarshal(message.Value, &msg); err != nil {
		return PaymentStatusMessage{}, fmt.Errorf("failed to unmarshal payment status message: %w", err)
	}
	msg.OrderID = strings.TrimSpace(msg.OrderID)
	if msg.OrderID == "" {
		return PaymentStatusMessage{}, fmt.Errorf("payment status message without orderId")
	}
	return msg, nil
}

// ParseDLQMessage декодирует запись из DLQ.
func ParseDLQMessage(message *sarama.ConsumerMessage) (DLQMessage, error) {
	var msg DLQMessage
	if err := json.Unmarshal(message.Value, &msg); err != nil {
		return DLQMessage{}, fmt.Errorf("failed to unmarshal dlq message: %w", err)
	}
	if msg.OriginalTopic == "" {
		return DLQMessage{}, fmt.Errorf("dlq message without original topic")
	}
	return msg, nil
}
