package outbox

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/vladislavdragonenkov/order-service/internal/domain"
)

// DeadLetterEventType — тип события, под которым outbox-сообщение уходит в DLQ.
const DeadLetterEventType = "outbox.dead_letter"

// DeadLetter — содержимое DLQ-записи для сообщения, которое не удалось опубликовать.
type DeadLetter struct {
	OutboxID      string          `json:"outbox_id"`
	AggregateType string          `json:"aggregate_type"`
	AggregateID   string          `json:"aggregate_id"`
	EventType     string          `json:"event_type"`
	Payload       json.RawMessage `json:"payload"`
	PublishError  string          `json:"publish_error"`
	FailedAt      time.Time       `json:"failed_at"`
}

// NewDeadLetterMessage упаковывает исходное сообщение и ошибку в outbox-сообщение для DLQ.
func NewDeadLetterMessage(event domain.OutboxMessage, publishErr error, now time.Time) (domain.OutboxMessage, error) {
	payload := json.RawMessage(event.Payload)
	if len(payload) == 0 {
		payload = json.RawMessage("null")
	}

	letter := DeadLetter{
		OutboxID:      event.ID,
		AggregateType: event.AggregateType,
		AggregateID:   event.AggregateID,
		EventType:     event.EventType,
		Payload:       payload,
		FailedAt:      now.UTC(),
	}
	if publishErr != nil {
		letter.PublishError = publishErr.Error()
	}

	encoded, err := json.Marshal(letter)
	if err != nil {
		return domain.OutboxMessage{}, fmt.Errorf("marshal dlq payload: %w", err)
	}

	return domain.OutboxMessage{
		ID:            event.ID,
		AggregateType: event.AggregateType,
		AggregateID:   event.AggregateID,
		EventType:     DeadLetterEventType,
		Payload:       encoded,
	}, nil
}

// ParseDeadLetter декодирует payload DLQ-записи.
func ParseDeadLetter(payload []byte) (DeadLetter, error) {
	var letter DeadLetter
	if err := json.Unmarshal(payload, &letter); err != nil {
		return DeadLetter{}, fmt.Errorf("decode outbox dlq payload: %w", err)
	}
	if len(letter.Payload) == 0 {
		return DeadLetter{}, fmt.Errorf("outbox dlq payload does not contain original event payload")
	}
	return letter, nil
}
