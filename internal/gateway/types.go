package gateway

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/propdesk/fundedpay/pkg/enums"
)

// Kind tags which arm of a gateway result is populated.
type Kind int

const (
	KindOK Kind = iota
	KindNotFound
	KindTransient
)

func (k Kind) String() string {
	switch k {
	case KindOK:
		return "ok"
	case KindNotFound:
		return "not_found"
	case KindTransient:
		return "transient"
	default:
		return "unknown"
	}
}

// Payment is the gateway's view of the payment attached to an order. Amount,
// currency and address may be missing while the gateway is still allocating.
type Payment struct {
	PaymentID      string
	AmountCrypto   decimal.NullDecimal
	CryptoCurrency string
	Address        string
	Status         enums.PaymentStatus
}

// Allocated reports whether currency and address are present and the crypto
// amount is positive.
func (p Payment) Allocated() bool {
	return p.AmountCrypto.Valid && p.AmountCrypto.Decimal.IsPositive() &&
		p.CryptoCurrency != "" && p.Address != ""
}

// PaymentResult is returned by CreateOrGetPayment. Err is set only for KindTransient.
type PaymentResult struct {
	Kind    Kind
	Payment Payment
	Err     error
}

// StatusOrder carries the order fields echoed back by a status check.
type StatusOrder struct {
	FinalAmount    decimal.Decimal
	CryptoAmount   decimal.NullDecimal
	CryptoCurrency string
	CryptoAddress  string
}

// StatusResult is returned by CheckStatus. Err is set only for KindTransient.
type StatusResult struct {
	Kind   Kind
	Status enums.PaymentStatus
	Order  StatusOrder
	Err    error
}

func PaymentOK(p Payment) PaymentResult        { return PaymentResult{Kind: KindOK, Payment: p} }
func PaymentNotFound() PaymentResult           { return PaymentResult{Kind: KindNotFound} }
func PaymentTransient(err error) PaymentResult { return PaymentResult{Kind: KindTransient, Err: err} }

func StatusOK(status enums.PaymentStatus, order StatusOrder) StatusResult {
	return StatusResult{Kind: KindOK, Status: status, Order: order}
}
func StatusNotFound() StatusResult           { return StatusResult{Kind: KindNotFound} }
func StatusTransient(err error) StatusResult { return StatusResult{Kind: KindTransient, Err: err} }

// Client is the crypto payment gateway as seen by payment sessions.
type Client interface {
	CreateOrGetPayment(ctx context.Context, orderID, userID string) PaymentResult
	CheckStatus(ctx context.Context, orderID, userID string) StatusResult
}
