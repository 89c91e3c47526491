package sessions

import (
	"github.com/propdesk/fundedpay/internal/payments"
)

// SessionView is the JSON shape of a payment session snapshot.
type SessionView struct {
	OrderID          string  `json:"orderId"`
	Generation       uint64  `json:"generation"`
	Status           string  `json:"status"`
	Reason           string  `json:"reason,omitempty"`
	Terminal         bool    `json:"terminal"`
	AmountFiat       string  `json:"amountFiat"`
	AmountCrypto     *string `json:"amountCrypto"`
	CryptoCurrency   string  `json:"cryptoCurrency"`
	Address          string  `json:"address"`
	PaymentID        string  `json:"paymentId,omitempty"`
	SecondsRemaining int     `json:"secondsRemaining"`
	Remaining        string  `json:"remaining"`
	PaymentURI       string  `json:"paymentUri"`
}

func newSessionView(s payments.Snapshot) SessionView {
	view := SessionView{
		OrderID:          s.OrderID,
		Generation:       s.Generation,
		Status:           s.Status.String(),
		Reason:           s.Reason.String(),
		Terminal:         s.Terminal(),
		AmountFiat:       s.AmountFiat.StringFixed(2),
		CryptoCurrency:   s.CryptoCurrency,
		Address:          s.Address,
		PaymentID:        s.PaymentID,
		SecondsRemaining: s.SecondsRemaining,
		Remaining:        s.Remaining(),
		PaymentURI:       s.PaymentURI(),
	}
	if s.AmountCrypto.Valid {
		amount := s.AmountCrypto.Decimal.String()
		view.AmountCrypto = &amount
	}
	return view
}
