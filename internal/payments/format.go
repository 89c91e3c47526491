package payments

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/propdesk/fundedpay/pkg/enums"
)

// FormatRemaining renders seconds as M:SS. Negative input renders as 0:00.
func FormatRemaining(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

// DerivePaymentPayload builds the wallet URI encoded in the payment QR code,
// for example "bitcoin:bc1q...?amount=0.0031". It returns "" when any input is
// missing or the amount is not positive. Tickers without a known scheme yield
// the bare address.
func DerivePaymentPayload(address string, amount decimal.NullDecimal, currency string) string {
	address = strings.TrimSpace(address)
	if address == "" || strings.TrimSpace(currency) == "" || !amount.Valid || !amount.Decimal.IsPositive() {
		return ""
	}
	scheme, ok := enums.NormalizeCryptoCurrency(currency).URIScheme()
	if !ok {
		return address
	}
	return fmt.Sprintf("%s:%s?amount=%s", scheme, address, amount.Decimal.String())
}
