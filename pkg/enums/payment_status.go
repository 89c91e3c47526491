package enums

import (
	"fmt"
	"strings"
)

// PaymentStatus is the status vocabulary reported by the crypto gateway.
type PaymentStatus string

const (
	PaymentStatusWaiting       PaymentStatus = "waiting"
	PaymentStatusPending       PaymentStatus = "pending"
	PaymentStatusConfirming    PaymentStatus = "confirming"
	PaymentStatusSending       PaymentStatus = "sending"
	PaymentStatusPartiallyPaid PaymentStatus = "partially_paid"
	PaymentStatusConfirmed     PaymentStatus = "confirmed"
	PaymentStatusFinished      PaymentStatus = "finished"
	PaymentStatusFailed        PaymentStatus = "failed"
	PaymentStatusExpired       PaymentStatus = "expired"
)

var validPaymentStatuses = []PaymentStatus{
	PaymentStatusWaiting,
	PaymentStatusPending,
	PaymentStatusConfirming,
	PaymentStatusSending,
	PaymentStatusPartiallyPaid,
	PaymentStatusConfirmed,
	PaymentStatusFinished,
	PaymentStatusFailed,
	PaymentStatusExpired,
}

// String implements fmt.Stringer.
func (p PaymentStatus) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PaymentStatus.
func (p PaymentStatus) IsValid() bool {
	for _, candidate := range validPaymentStatuses {
		if candidate == p {
			return true
		}
	}
	return false
}

// IsSettled reports whether funds are final.
func (p PaymentStatus) IsSettled() bool {
	return p == PaymentStatusConfirmed || p == PaymentStatusFinished
}

// IsRejected reports whether the gateway gave up on the payment.
func (p PaymentStatus) IsRejected() bool {
	return p == PaymentStatusFailed || p == PaymentStatusExpired
}

// IsInFlight reports whether funds were detected but are not final yet.
func (p PaymentStatus) IsInFlight() bool {
	switch p {
	case PaymentStatusConfirming, PaymentStatusSending, PaymentStatusPartiallyPaid:
		return true
	}
	return false
}

// ParsePaymentStatus converts raw gateway input into a PaymentStatus.
// Matching ignores case and surrounding whitespace.
func ParsePaymentStatus(value string) (PaymentStatus, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	for _, candidate := range validPaymentStatuses {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment status %q", value)
}
