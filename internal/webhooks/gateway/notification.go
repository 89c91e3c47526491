package gatewaywebhook

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/propdesk/fundedpay/internal/orders"
	"github.com/propdesk/fundedpay/pkg/enums"
	pkgerrors "github.com/propdesk/fundedpay/pkg/errors"
)

// Notification is the payment status callback posted by the gateway.
type Notification struct {
	PaymentID      string              `json:"payment_id" validate:"required"`
	PaymentStatus  string              `json:"payment_status" validate:"required"`
	OrderID        string              `json:"order_id" validate:"required,uuid"`
	PayAddress     string              `json:"pay_address"`
	PayAmount      decimal.NullDecimal `json:"pay_amount"`
	PayCurrency    string              `json:"pay_currency"`
	ExpirationDate *time.Time          `json:"expiration_estimate_date,omitempty"`
}

// EventID is the idempotency identity of the notification.
func (n Notification) EventID() string {
	return EventID(n.PaymentID, n.PaymentStatus)
}

// ToUpdate converts the notification into an order update.
func (n Notification) ToUpdate() (orders.GatewayUpdate, error) {
	orderID, err := uuid.Parse(strings.TrimSpace(n.OrderID))
	if err != nil {
		return orders.GatewayUpdate{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order id").
			WithDetails(map[string]string{"order_id": "is invalid"})
	}
	status, err := enums.ParsePaymentStatus(n.PaymentStatus)
	if err != nil {
		return orders.GatewayUpdate{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unknown payment status").
			WithDetails(map[string]string{"payment_status": "is invalid"})
	}
	amount := n.PayAmount
	if amount.Valid && !amount.Decimal.IsPositive() {
		amount = decimal.NullDecimal{}
	}
	return orders.GatewayUpdate{
		OrderID:        orderID,
		PaymentID:      strings.TrimSpace(n.PaymentID),
		PaymentStatus:  status,
		CryptoAmount:   amount,
		CryptoCurrency: n.PayCurrency,
		CryptoAddress:  n.PayAddress,
		ExpiresAt:      n.ExpirationDate,
	}, nil
}
