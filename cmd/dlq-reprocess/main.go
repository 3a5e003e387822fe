// Команда dlq-reprocess возвращает сообщения из orders.dlq в исходные топики.
// По умолчанию работает в режиме dry-run и только печатает кандидатов.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/IBM/sarama"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/order-service/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/order-service/internal/service/outbox"
)

const (
	defaultReplayLimit = 100
	defaultIdleTimeout = 2 * time.Second

	envKafkaBrokers = "KAFKA_BROKERS"

	// paymentStatusEventType — тип кандидата для записей consumer'а статусов оплаты.
	paymentStatusEventType = "payment.status"
)

type envLookup func(string) (string, bool)

type config struct {
	brokers     []string
	sourceTopic string
	targetTopic string
	limit       int
	execute     bool
	fromNewest  bool
	idleTimeout time.Duration
	orderID     string
	eventType   string
}

// candidate — сообщение из DLQ, готовое к повторной публикации.
type candidate struct {
	topic     string
	key       string
	value     []byte
	headers   []sarama.RecordHeader
	eventType string
}

type offsetClient interface {
	GetOffset(topic string, partition int32, time int64) (int64, error)
	Partitions(topic string) ([]int32, error)
	Close() error
}

type partitionConsumer interface {
	Messages() <-chan *sarama.ConsumerMessage
	Errors() <-chan *sarama.ConsumerError
	Close() error
}

type partitionConsumerSource interface {
	ConsumePartition(topic string, partition int32, offset int64) (partitionConsumer, error)
	Close() error
}

type replayProducer interface {
	SendMessage(msg *sarama.ProducerMessage) (partition int32, offset int64, err error)
	Close() error
}

// kafkaConn объединяет клиентов Kafka; producer nil в dry-run.
type kafkaConn struct {
	client   offsetClient
	consumer partitionConsumerSource
	producer replayProducer
}

func (c *kafkaConn) close() {
	if c.producer != nil {
		_ = c.producer.Close()
	}
	if c.consumer != nil {
		_ = c.consumer.Close()
	}
	if c.client != nil {
		_ = c.client.Close()
	}
}

type saramaConsumer struct {
	sarama.Consumer
}

func (c saramaConsumer) ConsumePartition(topic string, partition int32, offset int64) (partitionConsumer, error) {
	return c.Consumer.ConsumePartition(topic, partition, offset)
}

var openKafka = func(cfg config) (*kafkaConn, error) {
	saramaCfg := sarama.NewConfig()
	saramaCfg.Consumer.Return.Errors = true

	client, err := sarama.NewClient(cfg.brokers, saramaCfg)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	consumer, err := sarama.NewConsumerFromClient(client)
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("create kafka consumer: %w", err)
	}

	conn := &kafkaConn{client: client, consumer: saramaConsumer{consumer}}
	if !cfg.execute {
		return conn, nil
	}

	producer, err := sarama.NewSyncProducer(cfg.brokers, kafka.NewProducerConfig())
	if err != nil {
		conn.close()
		return nil, fmt.Errorf("create kafka producer: %w", err)
	}
	conn.producer = producer
	return conn, nil
}

func main() {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	log.SetLevel(log.InfoLevel)

	cfg, err := parseConfig(flag.CommandLine, os.Args[1:], os.LookupEnv)
	if err != nil {
		fail("%v", err)
	}

	summary, err := run(context.Background(), cfg)
	if err != nil {
		fail("dlq replay failed: %v", err)
	}
	summary.log(cfg)
}

func parseConfig(fs *flag.FlagSet, args []string, lookup envLookup) (config, error) {
	var (
		brokersRaw string
		cfg        config
	)

	fs.StringVar(&brokersRaw, "brokers", "", "Kafka brokers as comma-separated list (fallback: "+envKafkaBrokers+")")
	fs.StringVar(&cfg.sourceTopic, "source-topic", kafka.TopicDeadLetterQueue, "DLQ source topic")
	fs.StringVar(&cfg.targetTopic, "target-topic", kafka.TopicOrderEvents, "target topic for outbox dead letters")
	fs.IntVar(&cfg.limit, "limit", defaultReplayLimit, "max number of messages to scan")
	fs.BoolVar(&cfg.execute, "execute", false, "publish candidates; default is dry-run")
	fs.BoolVar(&cfg.fromNewest, "from-newest", false, "scan the latest messages of each partition (bounded by limit)")
	fs.DurationVar(&cfg.idleTimeout, "idle-timeout", defaultIdleTimeout, "idle timeout per partition")
	fs.StringVar(&cfg.orderID, "order-id", "", "replay only messages of this order")
	fs.StringVar(&cfg.eventType, "event-type", "", "replay only this event type (e.g. order.status_changed, payment.status)")
	if err := fs.Parse(args); err != nil {
		return config{}, err
	}

	if strings.TrimSpace(brokersRaw) == "" && lookup != nil {
		brokersRaw, _ = lookup(envKafkaBrokers)
	}
	cfg.brokers = splitList(brokersRaw)
	cfg.orderID = strings.TrimSpace(cfg.orderID)
	cfg.eventType = strings.TrimSpace(cfg.eventType)

	switch {
	case len(cfg.brokers) == 0:
		return config{}, fmt.Errorf("kafka brokers are required (-brokers or %s)", envKafkaBrokers)
	case strings.TrimSpace(cfg.sourceTopic) == "":
		return config{}, errors.New("source-topic is required")
	case strings.TrimSpace(cfg.targetTopic) == "":
		return config{}, errors.New("target-topic is required")
	case cfg.limit <= 0:
		return config{}, errors.New("limit must be > 0")
	case cfg.idleTimeout <= 0:
		return config{}, errors.New("idle-timeout must be > 0")
	}
	return cfg, nil
}

func splitList(raw string) []string {
	var out []string
	for _, chunk := range strings.Split(raw, ",") {
		if v := strings.TrimSpace(chunk); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func run(ctx context.Context, cfg config) (replaySummary, error) {
	log.WithFields(log.Fields{
		"source_topic": cfg.sourceTopic,
		"target_topic": cfg.targetTopic,
		"limit":        cfg.limit,
		"execute":      cfg.execute,
		"order_id":     cfg.orderID,
		"event_type":   cfg.eventType,
	}).Info("starting dlq replay")

	conn, err := openKafka(cfg)
	if err != nil {
		return replaySummary{}, err
	}
	defer conn.close()

	r, err := newReplayer(cfg, conn)
	if err != nil {
		return replaySummary{}, err
	}
	if err := r.run(ctx); err != nil {
		return r.summary, err
	}
	return r.summary, nil
}

// replaySummary — итог прогона по топикам назначения и типам событий.
type replaySummary struct {
	Scanned     int
	Replayed    int
	Skipped     int
	Filtered    int
	ByTopic     map[string]int
	ByEventType map[string]int
}

func (s *replaySummary) count(c candidate) {
	s.Replayed++
	if s.ByTopic == nil {
		s.ByTopic = make(map[string]int)
		s.ByEventType = make(map[string]int)
	}
	s.ByTopic[c.topic]++
	s.ByEventType[c.eventType]++
}

func (s replaySummary) log(cfg config) {
	mode := "dry-run"
	if cfg.execute {
		mode = "execute"
	}
	log.WithFields(log.Fields{
		"mode":          mode,
		"scanned":       s.Scanned,
		"replayed":      s.Replayed,
		"skipped":       s.Skipped,
		"filtered":      s.Filtered,
		"by_topic":      s.ByTopic,
		"by_event_type": s.ByEventType,
	}).Info("dlq replay finished")
}

type replayer struct {
	cfg     config
	conn    *kafkaConn
	summary replaySummary
}

func newReplayer(cfg config, conn *kafkaConn) (*replayer, error) {
	if conn == nil || conn.client == nil || conn.consumer == nil {
		return nil, errors.New("kafka client and consumer are required")
	}
	if cfg.execute && conn.producer == nil {
		return nil, errors.New("producer is required in execute mode")
	}
	return &replayer{cfg: cfg, conn: conn}, nil
}

// run сканирует партиции по возрастанию номера, пока не исчерпан limit.
func (r *replayer) run(ctx context.Context) error {
	partitions, err := r.conn.client.Partitions(r.cfg.sourceTopic)
	if err != nil {
		return fmt.Errorf("get partitions for topic %s: %w", r.cfg.sourceTopic, err)
	}
	if len(partitions) == 0 {
		log.WithField("topic", r.cfg.sourceTopic).Warn("source topic has no partitions")
		return nil
	}
	sort.Slice(partitions, func(i, j int) bool { return partitions[i] < partitions[j] })

	for _, partition := range partitions {
		budget := r.cfg.limit - r.summary.Scanned
		if budget <= 0 {
			break
		}
		if err := r.scanPartition(ctx, partition, budget); err != nil {
			return err
		}
	}
	return nil
}

// window возвращает диапазон [start, end) для чтения партиции.
func (r *replayer) window(partition int32, budget int) (int64, int64, error) {
	oldest, err := r.conn.client.GetOffset(r.cfg.sourceTopic, partition, sarama.OffsetOldest)
	if err != nil {
		return 0, 0, fmt.Errorf("get oldest offset for partition %d: %w", partition, err)
	}
	newest, err := r.conn.client.GetOffset(r.cfg.sourceTopic, partition, sarama.OffsetNewest)
	if err != nil {
		return 0, 0, fmt.Errorf("get newest offset for partition %d: %w", partition, err)
	}

	start := oldest
	if r.cfg.fromNewest {
		start = max(newest-int64(budget), oldest)
	}
	return start, newest, nil
}

func (r *replayer) scanPartition(ctx context.Context, partition int32, budget int) error {
	start, end, err := r.window(partition, budget)
	if err != nil {
		return err
	}
	if end <= start {
		return nil
	}

	pc, err := r.conn.consumer.ConsumePartition(r.cfg.sourceTopic, partition, start)
	if err != nil {
		return fmt.Errorf("consume partition %d: %w", partition, err)
	}
	defer func() { _ = pc.Close() }()

	idle := time.NewTimer(r.cfg.idleTimeout)
	defer idle.Stop()

	for scanned := 0; scanned < budget; {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-idle.C:
			return nil
		case cerr := <-pc.Errors():
			if cerr != nil {
				return fmt.Errorf("partition %d consumer error: %w", partition, cerr)
			}
		case msg, ok := <-pc.Messages():
			if !ok || msg == nil || msg.Offset >= end {
				return nil
			}
			resetTimer(idle, r.cfg.idleTimeout)

			scanned++
			r.summary.Scanned++
			if err := r.handle(msg); err != nil {
				return err
			}
			if msg.Offset+1 >= end {
				return nil
			}
		}
	}
	return nil
}

// handle классифицирует сообщение и публикует его в execute-режиме.
func (r *replayer) handle(msg *sarama.ConsumerMessage) error {
	fields := log.Fields{"partition": msg.Partition, "offset": msg.Offset}

	c, ok, err := toCandidate(msg, r.cfg.targetTopic)
	if err != nil {
		r.summary.Skipped++
		log.WithError(err).WithFields(fields).Warn("skip unsupported dlq message")
		return nil
	}
	if !ok {
		r.summary.Skipped++
		return nil
	}
	if !r.matches(c) {
		r.summary.Filtered++
		return nil
	}

	if r.cfg.execute {
		if err := publish(r.conn.producer, c); err != nil {
			return fmt.Errorf("publish replay message: %w", err)
		}
	} else {
		fields["target_topic"] = c.topic
		fields["key"] = c.key
		fields["event_type"] = c.eventType
		log.WithFields(fields).Info("dlq replay candidate")
	}
	r.summary.count(c)
	return nil
}

func (r *replayer) matches(c candidate) bool {
	if r.cfg.orderID != "" && c.key != r.cfg.orderID {
		return false
	}
	if r.cfg.eventType != "" && c.eventType != r.cfg.eventType {
		return false
	}
	return true
}

func resetTimer(t *time.Timer, d time.Duration) {
	if !t.Stop() {
		select {
		case <-t.C:
		default:
		}
	}
	t.Reset(d)
}

func publish(producer replayProducer, c candidate) error {
	if producer == nil {
		return errors.New("producer is nil")
	}
	_, _, err := producer.SendMessage(&sarama.ProducerMessage{
		Topic:     c.topic,
		Key:       sarama.StringEncoder(c.key),
		Value:     sarama.ByteEncoder(c.value),
		Headers:   c.headers,
		Timestamp: time.Now().UTC(),
	})
	return err
}

// toCandidate понимает два формата DLQ: запись consumer'а (kafka.DLQMessage)
// и outbox dead letter в kafka.OutboxEnvelope. ok=false — не подлежит replay.
func toCandidate(msg *sarama.ConsumerMessage, outboxTopic string) (candidate, bool, error) {
	if record, err := kafka.ParseDLQMessage(msg); err == nil && record.OriginalValue != "" {
		return candidate{
			topic:     strings.TrimSpace(record.OriginalTopic),
			key:       record.OriginalKey,
			value:     []byte(record.OriginalValue),
			eventType: paymentStatusEventType,
			headers: []sarama.RecordHeader{{
				Key:   []byte(kafka.HeaderRetryCount),
				Value: []byte(strconv.Itoa(record.RetryCount)),
			}},
		}, true, nil
	}

	var envelope kafka.OutboxEnvelope
	if err := json.Unmarshal(msg.Value, &envelope); err != nil {
		return candidate{}, false, nil
	}
	if envelope.EventType != outbox.DeadLetterEventType || len(envelope.Payload) == 0 {
		return candidate{}, false, nil
	}

	letter, err := outbox.ParseDeadLetter(envelope.Payload)
	if err != nil {
		return candidate{}, false, err
	}

	replay := kafka.OutboxEnvelope{
		ID:            firstNonEmpty(letter.OutboxID, envelope.ID),
		AggregateType: firstNonEmpty(letter.AggregateType, envelope.AggregateType),
		AggregateID:   firstNonEmpty(letter.AggregateID, envelope.AggregateID),
		EventType:     letter.EventType,
		Payload:       letter.Payload,
		PublishedAt:   time.Now().UTC(),
	}
	encoded, err := json.Marshal(replay)
	if err != nil {
		return candidate{}, false, fmt.Errorf("encode replay envelope: %w", err)
	}

	return candidate{
		topic:     outboxTopic,
		key:       firstNonEmpty(replay.AggregateID, replay.ID),
		value:     encoded,
		eventType: replay.EventType,
		headers: []sarama.RecordHeader{{
			Key:   []byte(kafka.HeaderEventType),
			Value: []byte(replay.EventType),
		}},
	}, true, nil
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}

func fail(format string, args ...any) {
	_, _ = fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
