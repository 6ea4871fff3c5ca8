package rabbit

import (
	"context"
	"encoding/json"
	"errors"

	"go.uber.org/zap"

	"replacement-request-service/internal/dto"
	"replacement-request-service/internal/service"
)

type CheckoutConsumer struct {
	Service *service.OrderService
	log     *zap.Logger
}

func NewCheckoutConsumer(s *service.OrderService, log *zap.Logger) *CheckoutConsumer {
	if log == nil {
		log = zap.NewNop()
	}
	return &CheckoutConsumer{Service: s, log: log}
}

// CheckoutCompletedMessage is the envelope published by the checkout service
// when the wizard finishes. The payload maps 1:1 onto InitOrderRequest.
type CheckoutCompletedMessage struct {
	CorrelationID string `json:"correlation_id"`
	Exchange      string `json:"exchange"`
	RoutingKey    string `json:"routing_key"`
	Message       struct {
		OrderID    string          `json:"orderId"`
		CustomerID string          `json:"customerId"`
		Items      []dto.ItemDTO   `json:"items"`
		Pricing    dto.PricingDTO  `json:"pricing"`
		Payment    dto.PaymentDTO  `json:"payment"`
		Shipping   dto.ShippingDTO `json:"shippingAddress"`
	} `json:"message"`
}

func (c *CheckoutConsumer) Handle(msg []byte) error {
	var event CheckoutCompletedMessage
	if err := json.Unmarshal(msg, &event); err != nil {
		c.log.Error("parsing checkout event failed", zap.Error(err))
		return err
	}

	_, err := c.Service.InitOrder(context.Background(), dto.InitOrderRequest{
		OrderID:    event.Message.OrderID,
		CustomerID: event.Message.CustomerID,
		Items:      event.Message.Items,
		Pricing:    event.Message.Pricing,
		Payment:    event.Message.Payment,
		Shipping:   event.Message.Shipping,
	})
	// The exchange is fanout and deliveries can repeat; a duplicate event
	// is not a failure.
	if errors.Is(err, service.ErrOrderAlreadyExists) {
		c.log.Debug("duplicate checkout event ignored",
			zap.String("order_id", event.Message.OrderID))
		return nil
	}
	if err != nil {
		c.log.Error("seeding order from checkout event failed",
			zap.String("order_id", event.Message.OrderID),
			zap.Error(err))
		return err
	}

	c.log.Info("order seeded from checkout event",
		zap.String("order_id", event.Message.OrderID),
		zap.String("correlation_id", event.CorrelationID))
	return nil
}
