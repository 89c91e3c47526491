package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/propdesk/fundedpay/pkg/enums"
	pkgerrors "github.com/propdesk/fundedpay/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service applies payment state changes to orders.
type Service interface {
	ApplyGatewayUpdate(ctx context.Context, update GatewayUpdate) (*UpdateResult, error)
	ExpireOrder(ctx context.Context, orderID uuid.UUID) (bool, error)
}

type service struct {
	repo Repository
	tx   txRunner
	now  func() time.Time
}

// NewService builds an order service with the required dependencies.
func NewService(repo Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx, now: time.Now}, nil
}

// ApplyGatewayUpdate stores the payment fields and derives the order status
// from the gateway status in one transaction. A paid order never moves back.
func (s *service) ApplyGatewayUpdate(ctx context.Context, update GatewayUpdate) (*UpdateResult, error) {
	if update.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	if !update.PaymentStatus.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown payment status").
			WithDetails(map[string]any{"payment_status": update.PaymentStatus.String()})
	}

	var result UpdateResult
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.FindOrderForUpdate(ctx, update.OrderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		result.PreviousStatus = order.Status
		if order.Status == enums.OrderStatusPaid {
			result.Order = order
			return nil
		}

		updates := paymentFieldUpdates(update)
		if next, ok := nextOrderStatus(order.Status, update.PaymentStatus); ok {
			updates["status"] = next
			if next == enums.OrderStatusPaid {
				updates["paid_at"] = s.now().UTC()
			}
			result.StatusChanged = true
		}
		if err := repo.UpdateOrder(ctx, order.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order")
		}

		updated, err := repo.FindOrder(ctx, order.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload order")
		}
		result.Order = updated
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (s *service) ExpireOrder(ctx context.Context, orderID uuid.UUID) (bool, error) {
	var expired bool
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		var err error
		expired, err = s.repo.WithTx(tx).ExpirePendingOrder(ctx, orderID)
		return err
	})
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "expire order")
	}
	return expired, nil
}

func paymentFieldUpdates(update GatewayUpdate) map[string]any {
	updates := map[string]any{
		"payment_status": update.PaymentStatus.String(),
	}
	if id := strings.TrimSpace(update.PaymentID); id != "" {
		updates["payment_id"] = id
	}
	if update.CryptoAmount.Valid {
		updates["crypto_amount"] = update.CryptoAmount
	}
	if currency := strings.ToLower(strings.TrimSpace(update.CryptoCurrency)); currency != "" {
		updates["crypto_currency"] = currency
	}
	if address := strings.TrimSpace(update.CryptoAddress); address != "" {
		updates["crypto_address"] = address
	}
	if update.ExpiresAt != nil {
		updates["payment_expires_at"] = update.ExpiresAt.UTC()
	}
	return updates
}

// nextOrderStatus maps a gateway status onto the order. Settlement wins over
// any unpaid status; rejections only apply to pending orders.
func nextOrderStatus(current enums.OrderStatus, status enums.PaymentStatus) (enums.OrderStatus, bool) {
	switch {
	case status.IsSettled():
		return enums.OrderStatusPaid, current != enums.OrderStatusPaid
	case current != enums.OrderStatusPending:
		return current, false
	case status == enums.PaymentStatusFailed:
		return enums.OrderStatusFailed, true
	case status == enums.PaymentStatusExpired:
		return enums.OrderStatusExpired, true
	default:
		return current, false
	}
}
