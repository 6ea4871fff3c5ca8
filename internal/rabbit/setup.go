// setup.go
package rabbit

import (
	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"replacement-request-service/internal/service"
)

// SetupConsumers binds this service's queue to the checkout fanout exchange
// and starts consuming.
func SetupConsumers(ch *amqp091.Channel, svc *service.OrderService, log *zap.Logger) {
	consumer := NewCheckoutConsumer(svc, log)

	q, err := ch.QueueDeclare(
		"replacement_request_service_orders", // queue owned by this service
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		log.Error("declaring queue failed", zap.Error(err))
		return
	}

	err = ch.QueueBind(
		q.Name,
		"", // fanout ignores the routing key
		"checkout_completed",
		false,
		nil,
	)
	if err != nil {
		log.Error("binding exchange failed", zap.Error(err))
		return
	}

	msgs, err := ch.Consume(
		q.Name,
		"",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		log.Error("consuming queue failed", zap.Error(err))
		return
	}

	go func() {
		for m := range msgs {
			consumer.Handle(m.Body)
		}
	}()

	log.Info("subscribed to exchange checkout_completed (fanout)")
}
