package domain

import (
	"fmt"
	"strings"
)

// PaymentStatus — статус оплаты, словарь которого задаёт платёжный сервис.
// На уровне домена проверяется только непустота.
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "Pendente"
	PaymentStatusApproved PaymentStatus = "Aprovado"
	PaymentStatusRejected PaymentStatus = "Recusado"
)

// NewPaymentStatus создаёт статус оплаты из метки.
func NewPaymentStatus(label string) (PaymentStatus, error) {
	if strings.TrimSpace(label) == "" {
		return "", fmt.Errorf("%w: payment status is empty", ErrInvalidPaymentStatus)
	}
	return PaymentStatus(label), nil
}

// IsZero сообщает, что статус оплаты не назначен.
func (p PaymentStatus) IsZero() bool {
	return p == ""
}

func (p PaymentStatus) String() string {
	return string(p)
}
