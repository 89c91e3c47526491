package enums

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePaymentStatusNormalizes(t *testing.T) {
	status, err := ParsePaymentStatus("  FINISHED ")
	require.NoError(t, err)
	assert.Equal(t, PaymentStatusFinished, status)
	assert.True(t, status.IsSettled())

	_, err = ParsePaymentStatus("refunded")
	require.Error(t, err)
}

func TestPaymentStatusGroups(t *testing.T) {
	for _, s := range []PaymentStatus{PaymentStatusConfirming, PaymentStatusSending, PaymentStatusPartiallyPaid} {
		assert.True(t, s.IsInFlight(), s)
		assert.False(t, s.IsSettled(), s)
	}
	for _, s := range []PaymentStatus{PaymentStatusFailed, PaymentStatusExpired} {
		assert.True(t, s.IsRejected(), s)
	}
	assert.False(t, PaymentStatusWaiting.IsInFlight())
	assert.False(t, PaymentStatusWaiting.IsRejected())
}

func TestSessionStatusTerminal(t *testing.T) {
	assert.True(t, SessionStatusCompleted.IsTerminal())
	assert.True(t, SessionStatusFailed.IsTerminal())
	assert.False(t, SessionStatusPending.IsTerminal())
	assert.False(t, SessionStatusProcessing.IsTerminal())
}

func TestCryptoCurrencySchemes(t *testing.T) {
	c, err := ParseCryptoCurrency("USDTTRC20")
	require.NoError(t, err)
	scheme, ok := c.URIScheme()
	require.True(t, ok)
	assert.Equal(t, "tron", scheme)
	assert.Equal(t, "USDTTRC20", c.Display())

	_, ok = CryptoCurrency("doge").URIScheme()
	assert.False(t, ok)
	_, err = ParseCryptoCurrency("doge")
	require.Error(t, err)
}

func TestOrderStatusParse(t *testing.T) {
	s, err := ParseOrderStatus("paid")
	require.NoError(t, err)
	assert.True(t, s.IsFinal())
	assert.False(t, OrderStatusPending.IsFinal())

	_, err = ParsePaymentMethod("wire")
	require.Error(t, err)
}
