package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/propdesk/fundedpay/pkg/db/models"
	"github.com/propdesk/fundedpay/pkg/enums"
)

// GatewayUpdate is a payment notification reduced to the fields stored on
// the order. Empty fields leave the stored value untouched.
type GatewayUpdate struct {
	OrderID        uuid.UUID
	PaymentID      string
	PaymentStatus  enums.PaymentStatus
	CryptoAmount   decimal.NullDecimal
	CryptoCurrency string
	CryptoAddress  string
	ExpiresAt      *time.Time
}

// UpdateResult describes what ApplyGatewayUpdate did to the order.
type UpdateResult struct {
	Order          *models.Order
	PreviousStatus enums.OrderStatus
	StatusChanged  bool
}

// Settled reports whether the update moved the order into paid.
func (r UpdateResult) Settled() bool {
	return r.StatusChanged && r.Order != nil && r.Order.Status == enums.OrderStatusPaid
}
