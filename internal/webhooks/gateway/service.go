package gatewaywebhook

import (
	"context"
	"time"

	"github.com/propdesk/fundedpay/internal/orders"
	"github.com/propdesk/fundedpay/pkg/enums"
	pkgerrors "github.com/propdesk/fundedpay/pkg/errors"
	"github.com/propdesk/fundedpay/pkg/logger"
	"github.com/propdesk/fundedpay/pkg/metrics"
)

// EventPublisher emits payment events. pubsub.JSONPublisher satisfies it.
type EventPublisher interface {
	Publish(ctx context.Context, orderingKey string, attrs map[string]string, payload any) (string, error)
}

// PaymentEvent is published when a notification moves an order into a final status.
type PaymentEvent struct {
	OrderID       string    `json:"order_id"`
	UserID        string    `json:"user_id"`
	OrderStatus   string    `json:"order_status"`
	PaymentStatus string    `json:"payment_status"`
	PaymentID     string    `json:"payment_id"`
	OccurredAt    time.Time `json:"occurred_at"`
}

type ServiceParams struct {
	Orders    orders.Service
	Publisher EventPublisher
	Logger    *logger.Logger
	Metrics   *metrics.PaymentMetrics
}

type Service struct {
	orders    orders.Service
	publisher EventPublisher
	logg      *logger.Logger
	metrics   *metrics.PaymentMetrics
	now       func() time.Time
}

// NewService builds the notification handler. Publisher and Metrics are optional.
func NewService(params ServiceParams) (*Service, error) {
	if params.Orders == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "orders service required")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &Service{
		orders:    params.Orders,
		publisher: params.Publisher,
		logg:      logg,
		metrics:   params.Metrics,
		now:       time.Now,
	}, nil
}

// HandleNotification applies the notification to its order and publishes an
// event when the order reached a final status.
func (s *Service) HandleNotification(ctx context.Context, n Notification) error {
	update, err := n.ToUpdate()
	if err != nil {
		s.metrics.IncWebhook(n.PaymentStatus, "invalid")
		return err
	}
	ctx = s.logg.WithFields(s.logg.WithOrderID(ctx, update.OrderID.String()), map[string]any{
		"payment_id":     update.PaymentID,
		"payment_status": update.PaymentStatus.String(),
	})

	res, err := s.orders.ApplyGatewayUpdate(ctx, update)
	if err != nil {
		s.metrics.IncWebhook(update.PaymentStatus.String(), "error")
		return err
	}
	if !res.StatusChanged {
		s.metrics.IncWebhook(update.PaymentStatus.String(), "recorded")
		s.logg.Debug(ctx, "gateway notification recorded")
		return nil
	}

	s.metrics.IncWebhook(update.PaymentStatus.String(), "transitioned")
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"from": res.PreviousStatus.String(),
		"to":   res.Order.Status.String(),
	}), "order status updated from gateway notification")

	if res.Order.Status.IsFinal() {
		s.publish(ctx, res, update.PaymentStatus)
	}
	return nil
}

// publish is best effort: the order is already committed and the gateway
// must not redeliver because of a broker failure.
func (s *Service) publish(ctx context.Context, res *orders.UpdateResult, status enums.PaymentStatus) {
	if s.publisher == nil {
		return
	}
	order := res.Order
	event := PaymentEvent{
		OrderID:       order.ID.String(),
		UserID:        order.UserID.String(),
		OrderStatus:   order.Status.String(),
		PaymentStatus: status.String(),
		OccurredAt:    s.now().UTC(),
	}
	if order.PaymentID != nil {
		event.PaymentID = *order.PaymentID
	}
	attrs := map[string]string{
		"event_type":   "order." + order.Status.String(),
		"order_status": order.Status.String(),
	}
	id, err := s.publisher.Publish(ctx, event.OrderID, attrs, event)
	if err != nil {
		s.logg.Error(ctx, "failed to publish payment event", err)
		return
	}
	s.logg.Info(s.logg.WithField(ctx, "message_id", id), "payment event published")
}
