package kafka

import (
	"context"

	"github.com/IBM/sarama"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/order-service/internal/domain"
)

// PaymentStatusFunc применяет статус оплаты к заказу.
type PaymentStatusFunc func(ctx context.Context, orderID, paymentStatus string) error

// NewPaymentStatusHandler возвращает обработчик topic payments.status.
// Битые сообщения, неизвестные заказы и пустые статусы не повторяются.
func NewPaymentStatusHandler(apply PaymentStatusFunc, logger *log.Entry) MessageHandler {
	if logger == nil {
		logger = log.WithField("component", "payment-status-handler")
	}

	return func(ctx context.Context, message *sarama.ConsumerMessage) error {
		msg, err := ParsePaymentStatusMessage(message)
		if err != nil {
			return Permanent(err)
		}

		if err := apply(ctx, msg.OrderID, msg.PaymentStatus); err != nil {
			switch domain.KindOf(err) {
			case domain.KindNotFound, domain.KindInvalidArgument:
				return Permanent(err)
			default:
				return err
			}
		}

		logger.WithFields(log.Fields{
			"order_id":       msg.OrderID,
			"payment_status": msg.PaymentStatus,
		}).Info("payment status applied from kafka")
		return nil
	}
}
