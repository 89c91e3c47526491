package payments

import (
	"github.com/shopspring/decimal"

	"github.com/propdesk/fundedpay/pkg/enums"
)

// Snapshot is an immutable copy of a session's state.
type Snapshot struct {
	OrderID          string
	UserID           string
	Generation       uint64
	Status           enums.SessionStatus
	Reason           enums.FailureReason
	AmountFiat       decimal.Decimal
	AmountCrypto     decimal.NullDecimal
	CryptoCurrency   string
	Address          string
	PaymentID        string
	SecondsRemaining int
}

func (s Snapshot) Terminal() bool {
	return s.Status.IsTerminal()
}

// Remaining formats SecondsRemaining as M:SS.
func (s Snapshot) Remaining() string {
	return FormatRemaining(s.SecondsRemaining)
}

// PaymentURI is the QR payload for the allocated deposit.
func (s Snapshot) PaymentURI() string {
	return DerivePaymentPayload(s.Address, s.AmountCrypto, s.CryptoCurrency)
}
