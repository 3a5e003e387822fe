package domain

import (
	"fmt"
	"strings"
)

// Status описывает этап приготовления заказа.
// Нулевое значение означает, что статус ещё не назначен.
type Status string

const (
	// StatusReceived — заказ принят кухней.
	StatusReceived Status = "RECEIVED"
	// StatusPreparing — заказ готовится.
	StatusPreparing Status = "PREPARING"
	// StatusReady — заказ готов к выдаче.
	StatusReady Status = "READY"
	// StatusFinalized — заказ выдан клиенту.
	StatusFinalized Status = "FINALIZED"
)

// statusTransitions — допустимые переходы. Ключ "" соответствует заказу без статуса.
var statusTransitions = map[Status][]Status{
	"":              {StatusReceived},
	StatusReceived:  {StatusPreparing},
	StatusPreparing: {StatusReady},
	StatusReady:     {StatusFinalized},
	StatusFinalized: {},
}

// NewStatus валидирует метку и возвращает Status.
func NewStatus(label string) (Status, error) {
	s := Status(strings.TrimSpace(label))
	if s == "" {
		return "", fmt.Errorf("%w: status is empty", ErrInvalidStatus)
	}
	if !s.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, label)
	}
	return s, nil
}

// Valid проверяет, что статус входит в словарь.
func (s Status) Valid() bool {
	switch s {
	case StatusReceived, StatusPreparing, StatusReady, StatusFinalized:
		return true
	}
	return false
}

// IsZero сообщает, что статус не назначен.
func (s Status) IsZero() bool {
	return s == ""
}

func (s Status) String() string {
	return string(s)
}

// CanTransitionTo проверяет переход по таблице statusTransitions.
// Повторное назначение того же статуса считается допустимым.
func (s Status) CanTransitionTo(next Status) bool {
	if s == next {
		return true
	}
	for _, allowed := range statusTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// InvalidStatusTransitionError описывает запрещённый переход статуса.
type InvalidStatusTransitionError struct {
	From Status
	To   Status
}

func (e *InvalidStatusTransitionError) Error() string {
	from := string(e.From)
	if from == "" {
		from = "<unset>"
	}
	return fmt.Sprintf("invalid status transition: %s -> %s", from, e.To)
}

// Is позволяет сопоставлять ошибку с ErrInvalidStatusTransition.
func (e *InvalidStatusTransitionError) Is(target error) bool {
	return target == ErrInvalidStatusTransition
}
