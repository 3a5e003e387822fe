package kafka

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/IBM/sarama"
	log "github.com/sirupsen/logrus"
)

// MessageHandler обрабатывает сообщение из Kafka
type MessageHandler func(ctx context.Context, message *sarama.ConsumerMessage) error

// ConsumedCounter считает обработанные сообщения по результату.
type ConsumedCounter interface {
	RecordConsumedEvent(source, result string)
}

type permanentError struct {
	err error
}

func (e permanentError) Error() string { return e.err.Error() }
func (e permanentError) Unwrap() error { return e.err }

// Permanent помечает ошибку как неповторяемую: сообщение сразу уходит в DLQ.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return permanentError{err: err}
}

// IsPermanent сообщает, что повтор обработки бесполезен.
func IsPermanent(err error) bool {
	var p permanentError
	return errors.As(err, &p)
}

const (
	defaultMaxRetries   = 3
	defaultRetryBackoff = 100 * time.Millisecond
)

// Consumer читает consumer group, повторяет обработку с backoff
// и отправляет неуспешные сообщения в DLQ.
type Consumer struct {
	group      sarama.ConsumerGroup
	topics     []string
	handler    MessageHandler
	dlq        *Producer
	dlqTopic   string
	maxRetries int
	backoff    time.Duration
	counter    ConsumedCounter
	logger     *log.Entry
	wg         sync.WaitGroup
}

// ConsumerOption настраивает Consumer.
type ConsumerOption func(*Consumer)

// WithDLQ включает отправку в Dead Letter Queue.
func WithDLQ(producer *Producer, topic string) ConsumerOption {
	return func(c *Consumer) {
		c.dlq = producer
		if topic != "" {
			c.dlqTopic = topic
		}
	}
}

// WithRetries задаёт число повторов и базовую задержку.
func WithRetries(maxRetries int, backoff time.Duration) ConsumerOption {
	return func(c *Consumer) {
		if maxRetries >= 0 {
			c.maxRetries = maxRetries
		}
		if backoff > 0 {
			c.backoff = backoff
		}
	}
}

// WithConsumedCounter включает метрики потребления.
func WithConsumedCounter(counter ConsumedCounter) ConsumerOption {
	return func(c *Consumer) {
		c.counter = counter
	}
}

// WithConsumerLogger задаёт logger.
func WithConsumerLogger(logger *log.Entry) ConsumerOption {
	return func(c *Consumer) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewConsumerGroup подключается к брокерам как участник группы groupID.
func NewConsumerGroup(brokers []string, groupID string) (sarama.ConsumerGroup, error) {
	config := sarama.NewConfig()
	config.Consumer.Group.Rebalance.GroupStrategies = []sarama.BalanceStrategy{sarama.NewBalanceStrategyRoundRobin()}
	config.Consumer.Offsets.Initial = sarama.OffsetNewest
	config.Consumer.Return.Errors = true

	group, err := sarama.NewConsumerGroup(brokers, groupID, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka consumer: %w", err)
	}
	return group, nil
}

// NewConsumer создаёт consumer поверх готовой группы.
func NewConsumer(group sarama.ConsumerGroup, topics []string, handler MessageHandler, opts ...ConsumerOption) *Consumer {
	c := &Consumer{
		group:      group,
		topics:     topics,
		handler:    handler,
		dlqTopic:   TopicDeadLetterQueue,
		maxRetries: defaultMaxRetries,
		backoff:    defaultRetryBackoff,
		logger:     log.WithField("component", "kafka-consumer"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start запускает чтение в фоне; завершается по отмене ctx или Stop.
func (c *Consumer) Start(ctx context.Context) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		for {
			// Consume возвращается при каждом rebalance.
			if err := c.group.Consume(ctx, c.topics, c); err != nil {
				if errors.Is(err, sarama.ErrClosedConsumerGroup) {
					return
				}
				c.logger.WithError(err).Error("error from consumer")
			}
			if ctx.Err() != nil {
				return
			}
		}
	}()

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		for err := range c.group.Errors() {
			c.logger.WithError(err).Error("consumer error")
		}
	}()

	c.logger.WithField("topics", c.topics).Info("kafka consumer started")
}

// Stop закрывает группу и ждёт фоновые горутины.
func (c *Consumer) Stop() error {
	if err := c.group.Close(); err != nil {
		return fmt.Errorf("failed to close kafka consumer: %w", err)
	}
	c.wg.Wait()
	c.logger.Info("kafka consumer stopped")
	return nil
}

// Setup вызывается при старте consumer session
func (c *Consumer) Setup(sarama.ConsumerGroupSession) error { return nil }

// Cleanup вызывается при завершении consumer session
func (c *Consumer) Cleanup(sarama.ConsumerGroupSession) error { return nil }

// ConsumeClaim обрабатывает сообщения партиции по одному.
func (c *Consumer) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case message, ok := <-claim.Messages():
			if !ok || message == nil {
				return nil
			}
			if c.process(session.Context(), message) {
				session.MarkMessage(message, "")
			}
		case <-session.Context().Done():
			return nil
		}
	}
}

// process возвращает true, если offset можно закоммитить.
func (c *Consumer) process(ctx context.Context, message *sarama.ConsumerMessage) bool {
	fields := log.Fields{
		"topic":     message.Topic,
		"partition": message.Partition,
		"offset":    message.Offset,
	}

	var err error
	attempt := 0
	for {
		err = c.handler(ctx, message)
		if err == nil {
			c.record(message.Topic, "ok")
			return true
		}
		if IsPermanent(err) || attempt >= c.maxRetries {
			break
		}

		delay := c.backoff * time.Duration(1<<attempt)
		c.logger.WithError(err).WithFields(fields).WithField("attempt", attempt+1).Warn("message processing failed, will retry")
		select {
		case <-ctx.Done():
			return false
		case <-time.After(delay):
		}
		attempt++
	}

	if c.dlq == nil {
		c.logger.WithError(err).WithFields(fields).Error("message dropped: no DLQ configured")
		c.record(message.Topic, "dropped")
		return true
	}

	if dlqErr := c.sendToDLQ(message, err, retryCount(message)+attempt); dlqErr != nil {
		c.logger.WithError(dlqErr).WithFields(fields).Error("failed to send message to DLQ")
		c.record(message.Topic, "error")
		return false
	}

	c.logger.WithError(err).WithFields(fields).Warn("message sent to DLQ")
	c.record(message.Topic, "dlq")
	return true
}

func (c *Consumer) record(source, result string) {
	if c.counter != nil {
		c.counter.RecordConsumedEvent(source, result)
	}
}

// retryCount извлекает число прошлых попыток из заголовков (после replay из DLQ).
func retryCount(message *sarama.ConsumerMessage) int {
	for _, header := range message.Headers {
		if header != nil && string(header.Key) == HeaderRetryCount {
			if count, err := strconv.Atoi(string(header.Value)); err == nil {
				return count
			}
		}
	}
	return 0
}

func (c *Consumer) sendToDLQ(message *sarama.ConsumerMessage, processingErr error, retries int) error {
	now := time.Now().UTC()
	dlqMessage := DLQMessage{
		OriginalTopic:     message.Topic,
		OriginalPartition: message.Partition,
		OriginalOffset:    message.Offset,
		OriginalKey:       string(message.Key),
		OriginalValue:     string(message.Value),
		ErrorMessage:      processingErr.Error(),
		FailedAt:          now,
		RetryCount:        retries,
	}

	return c.dlq.PublishEvent(c.dlqTopic, string(message.Key), dlqMessage,
		sarama.RecordHeader{Key: []byte(HeaderOriginalTopic), Value: []byte(message.Topic)},
		sarama.RecordHeader{Key: []byte(HeaderErrorMessage), Value: []byte(processingErr.Error())},
		sarama.RecordHeader{Key: []byte(HeaderFailedAt), Value: []byte(now.Format(time.RFC3339))},
		sarama.RecordHeader{Key: []byte(HeaderRetryCount), Value: []byte(strconv.Itoa(retries))},
	)
}
