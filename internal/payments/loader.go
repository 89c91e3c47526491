package payments

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/propdesk/fundedpay/internal/gateway"
	"github.com/propdesk/fundedpay/pkg/db/models"
	"github.com/propdesk/fundedpay/pkg/enums"
)

// OrderReader is the read side of the order store used when opening a session.
// A missing order is reported as gorm.ErrRecordNotFound.
type OrderReader interface {
	FindOrderForUser(ctx context.Context, orderID, userID uuid.UUID) (*models.Order, error)
}

// Loader builds the initial session snapshot from the order store and the gateway.
type Loader struct {
	orders  OrderReader
	gateway gateway.Client
	window  time.Duration
	now     func() time.Time
}

func NewLoader(orders OrderReader, gw gateway.Client, window time.Duration) (*Loader, error) {
	if orders == nil {
		return nil, fmt.Errorf("order reader required")
	}
	if gw == nil {
		return nil, fmt.Errorf("gateway client required")
	}
	if window < time.Second {
		return nil, fmt.Errorf("payment window must be at least one second")
	}
	return &Loader{orders: orders, gateway: gw, window: window, now: time.Now}, nil
}

// Load returns the initial snapshot for the order, ErrOrderNotFound when the
// order does not exist for the user, or ErrAllocationPending when the gateway
// has not finished allocating the deposit.
func (l *Loader) Load(ctx context.Context, orderID, userID string) (Snapshot, error) {
	orderID, userID = strings.TrimSpace(orderID), strings.TrimSpace(userID)
	if orderID == "" || userID == "" {
		return Snapshot{}, ErrMissingIdentity
	}
	orderUUID, err := uuid.Parse(orderID)
	if err != nil {
		return Snapshot{}, ErrOrderNotFound
	}
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return Snapshot{}, ErrOrderNotFound
	}

	order, err := l.orders.FindOrderForUser(ctx, orderUUID, userUUID)
	if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && order == nil) {
		return Snapshot{}, ErrOrderNotFound
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("load order: %w", err)
	}
	if order.PaymentMethod != enums.PaymentMethodCrypto {
		return Snapshot{}, ErrNotCryptoOrder
	}

	res := l.gateway.CreateOrGetPayment(ctx, orderID, userID)
	switch res.Kind {
	case gateway.KindNotFound:
		return Snapshot{}, fmt.Errorf("no payment yet: %w", ErrAllocationPending)
	case gateway.KindTransient:
		return Snapshot{}, fmt.Errorf("gateway unavailable: %w: %w", res.Err, ErrAllocationPending)
	}
	payment := res.Payment
	if !payment.Allocated() {
		return Snapshot{}, fmt.Errorf("partial allocation: %w", ErrAllocationPending)
	}

	status := enums.SessionStatusPending
	if payment.Status.IsSettled() {
		status = enums.SessionStatusCompleted
	}

	return Snapshot{
		OrderID:          orderID,
		UserID:           userID,
		Status:           status,
		AmountFiat:       order.FinalAmount,
		AmountCrypto:     payment.AmountCrypto,
		CryptoCurrency:   payment.CryptoCurrency,
		Address:          payment.Address,
		PaymentID:        payment.PaymentID,
		SecondsRemaining: l.secondsRemaining(order.PaymentExpiresAt),
	}, nil
}

// secondsRemaining is the full window, shortened when the order already has
// an earlier payment deadline.
func (l *Loader) secondsRemaining(expiresAt *time.Time) int {
	remaining := l.window
	if expiresAt != nil {
		if left := expiresAt.Sub(l.now()); left < remaining {
			remaining = left
		}
	}
	if remaining < 0 {
		return 0
	}
	return int(remaining / time.Second)
}
