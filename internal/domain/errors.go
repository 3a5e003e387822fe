package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrResourceNotFound — общий признак "объект не найден"; все not-found ошибки оборачивают его.
	ErrResourceNotFound = errors.New("resource not found")
	// ErrOrderNotFound возвращается, если заказ не найден в репозитории.
	ErrOrderNotFound = fmt.Errorf("order %w", ErrResourceNotFound)
	// ErrCustomerNotFound — клиент отсутствует в сервисе производства.
	ErrCustomerNotFound = fmt.Errorf("customer %w", ErrResourceNotFound)
	// ErrProductNotFound — продукт не найден ни в одной категории каталога.
	ErrProductNotFound = fmt.Errorf("product %w", ErrResourceNotFound)
	// ErrOrderAlreadyExists — заказ с таким ID уже сохранён.
	ErrOrderAlreadyExists = errors.New("order already exists")
	// ErrOrderVersionConflict сигнализирует о конфликте версий при сохранении.
	ErrOrderVersionConflict = errors.New("order version conflict")
	// ErrUpstreamUnavailable — внешний сервис не ответил или ответил ошибкой.
	ErrUpstreamUnavailable = errors.New("upstream service unavailable")
	// ErrPersistenceFailure — ошибка хранилища.
	ErrPersistenceFailure = errors.New("persistence failure")
	// ErrInvalidArgument — некорректные входные данные запроса.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrInvalidStatus — метка статуса вне словаря.
	ErrInvalidStatus = fmt.Errorf("%w: invalid status", ErrInvalidArgument)
	// ErrInvalidPaymentStatus — пустой статус оплаты.
	ErrInvalidPaymentStatus = fmt.Errorf("%w: invalid payment status", ErrInvalidArgument)
	// ErrInvalidStatusTransition — переход статуса запрещён таблицей переходов.
	ErrInvalidStatusTransition = errors.New("invalid status transition")
	// ErrOutboxPublish — ошибка при публикации сообщения из outbox.
	ErrOutboxPublish = errors.New("outbox publish failed")
	// ErrUnknown подставляется, когда ошибка не была передана.
	ErrUnknown = errors.New("unknown error")
)

// ErrorKind классифицирует ошибку use case для транспорта и метрик.
type ErrorKind string

const (
	KindNotFound            ErrorKind = "not_found"
	KindUpstreamUnavailable ErrorKind = "upstream_unavailable"
	KindPersistenceFailure  ErrorKind = "persistence_failure"
	KindInvalidArgument     ErrorKind = "invalid_argument"
	KindInvalidTransition   ErrorKind = "invalid_transition"
	KindUnknown             ErrorKind = "unknown"
)

var kindSentinels = map[ErrorKind]error{
	KindNotFound:            ErrResourceNotFound,
	KindUpstreamUnavailable: ErrUpstreamUnavailable,
	KindPersistenceFailure:  ErrPersistenceFailure,
	KindInvalidArgument:     ErrInvalidArgument,
	KindInvalidTransition:   ErrInvalidStatusTransition,
}

// Error — ошибка use case с видом, операцией и исходной причиной.
type Error struct {
	Kind ErrorKind
	Op   string
	Err  error
}

// NewError оборачивает причину в ошибку заданного вида.
func NewError(kind ErrorKind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is сопоставляет ошибку с sentinel её вида, даже если причина другая.
func (e *Error) Is(target error) bool {
	sentinel, ok := kindSentinels[e.Kind]
	return ok && target == sentinel
}

// KindOf определяет вид ошибки по цепочке wrap.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr.Kind
	}
	switch {
	case errors.Is(err, ErrResourceNotFound):
		return KindNotFound
	case errors.Is(err, ErrInvalidStatusTransition):
		return KindInvalidTransition
	case errors.Is(err, ErrInvalidArgument):
		return KindInvalidArgument
	case errors.Is(err, ErrUpstreamUnavailable):
		return KindUpstreamUnavailable
	case errors.Is(err, ErrPersistenceFailure),
		errors.Is(err, ErrOrderVersionConflict),
		errors.Is(err, ErrOrderAlreadyExists):
		return KindPersistenceFailure
	}
	return KindUnknown
}

// IsNotFound проверяет, что ошибка относится к виду "не найдено".
func IsNotFound(err error) bool {
	return errors.Is(err, ErrResourceNotFound)
}

// IsVersionConflict проверяет, является ли ошибка конфликтом версий.
func IsVersionConflict(err error) bool {
	return errors.Is(err, ErrOrderVersionConflict)
}
