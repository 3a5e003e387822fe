package domain

import (
	"strings"

	"github.com/google/uuid"
)

// EntityID — непрозрачный неизменяемый идентификатор сущности.
// Используется и как первичный ключ, и как ссылка на внешние данные
// (клиент, продукт), поэтому формат значения не проверяется.
type EntityID struct {
	value string
}

// NewEntityID генерирует новый идентификатор (UUID v4).
func NewEntityID() EntityID {
	return EntityID{value: uuid.NewString()}
}

// EntityIDFrom оборачивает существующее значение. Пустая строка даёт нулевой ID.
func EntityIDFrom(value string) EntityID {
	return EntityID{value: strings.TrimSpace(value)}
}

// String возвращает исходное значение идентификатора.
func (id EntityID) String() string {
	return id.value
}

// IsZero сообщает, что идентификатор не задан.
func (id EntityID) IsZero() bool {
	return id.value == ""
}

// Equals сравнивает идентификаторы по значению.
func (id EntityID) Equals(other EntityID) bool {
	return id.value == other.value
}
