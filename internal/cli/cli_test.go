package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/propdesk/fundedpay/internal/payments"
	"github.com/propdesk/fundedpay/pkg/enums"
)

const (
	testOrderID = "6f1c7a52-1d55-4a51-9a3e-0b8f0f6d2c11"
	testUserID  = "0d8e2b57-3c1f-4c7e-8f55-7a2b1e9d4c22"
)

type fakeRegistry struct {
	mu        sync.Mutex
	listener  func(payments.Snapshot)
	open      payments.Snapshot
	openErr   error
	updates   []payments.Snapshot
	gotOrder  string
	gotUser   string
	shutdowns int
}

func (f *fakeRegistry) Open(_ context.Context, orderID, userID string) (payments.Snapshot, error) {
	f.mu.Lock()
	f.gotOrder, f.gotUser = orderID, userID
	f.mu.Unlock()
	if f.openErr != nil {
		return payments.Snapshot{}, f.openErr
	}
	go func() {
		for _, snap := range f.updates {
			f.listener(snap)
		}
	}()
	return f.open, nil
}

func (f *fakeRegistry) Shutdown(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.shutdowns++
	return nil
}

func (f *fakeRegistry) factory() RegistryFactory {
	return func(_ context.Context, _ *RootOptions, listener func(payments.Snapshot)) (SessionRegistry, func(), error) {
		f.listener = listener
		return f, nil, nil
	}
}

func newGoldie(t *testing.T) *goldie.Goldie {
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

func execute(t *testing.T, factory RegistryFactory, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand(factory)
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func pendingSnapshot() payments.Snapshot {
	return payments.Snapshot{
		OrderID:          testOrderID,
		UserID:           testUserID,
		Generation:       1,
		Status:           enums.SessionStatusPending,
		AmountFiat:       decimal.RequireFromString("199"),
		AmountCrypto:     decimal.NewNullDecimal(decimal.RequireFromString("0.00312")),
		CryptoCurrency:   "btc",
		Address:          "bc1qexampleaddress",
		PaymentID:        "5077125051",
		SecondsRemaining: 1800,
	}
}

func withStatus(snap payments.Snapshot, status enums.SessionStatus, reason enums.FailureReason) payments.Snapshot {
	snap.Status = status
	snap.Reason = reason
	return snap
}

func TestRootCommandPresence(t *testing.T) {
	cmd := NewRootCommand(nil)
	assert.Equal(t, "payctl", cmd.Use)
	for _, name := range []string{"watch", "uri"} {
		sub, _, err := cmd.Find([]string{name})
		require.NoError(t, err)
		assert.Equal(t, name, sub.Name())
	}
	verbose := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verbose)
	assert.Equal(t, "v", verbose.Shorthand)
}

func TestWatchFollowsSessionToCompletion(t *testing.T) {
	initial := pendingSnapshot()
	reg := &fakeRegistry{
		open: initial,
		updates: []payments.Snapshot{
			withStatus(initial, enums.SessionStatusProcessing, enums.FailureReasonNone),
			withStatus(initial, enums.SessionStatusCompleted, enums.FailureReasonNone),
		},
	}

	out, err := execute(t, reg.factory(), "watch", "--order", testOrderID, "--user", " "+testUserID+" ")
	require.NoError(t, err)
	newGoldie(t).Assert(t, "watch_completed", []byte(out))

	assert.Equal(t, testOrderID, reg.gotOrder)
	assert.Equal(t, testUserID, reg.gotUser)
	assert.Equal(t, 1, reg.shutdowns)
}

func TestWatchReportsExpiry(t *testing.T) {
	initial := pendingSnapshot()
	initial.SecondsRemaining = 61
	reg := &fakeRegistry{
		open:    initial,
		updates: []payments.Snapshot{withStatus(initial, enums.SessionStatusFailed, enums.FailureReasonExpired)},
	}

	out, err := execute(t, reg.factory(), "watch", "--order", testOrderID, "--user", testUserID)
	require.ErrorIs(t, err, ErrPaymentFailed)
	newGoldie(t).Assert(t, "watch_expired", []byte(out))
}

func TestWatchOpenError(t *testing.T) {
	reg := &fakeRegistry{openErr: errors.New("order not found")}

	out, err := execute(t, reg.factory(), "watch", "--order", testOrderID, "--user", testUserID)
	require.Error(t, err)
	assert.Empty(t, out)
	assert.Equal(t, 1, reg.shutdowns)
}

func TestWatchRequiresUser(t *testing.T) {
	reg := &fakeRegistry{}
	_, err := execute(t, reg.factory(), "watch", "--order", testOrderID, "--user", "  ")
	require.Error(t, err)
	assert.Zero(t, reg.shutdowns)

	_, err = execute(t, nil, "watch", "--order", testOrderID, "--user", testUserID)
	require.Error(t, err)
}

func TestURICommand(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "uri_bitcoin", args: []string{"--address", "bc1qexampleaddress", "--amount", "0.00312000", "--currency", "BTC"}},
		{name: "uri_usdt_trc20", args: []string{"--address", "TXexampleaddress", "--amount", "199.5", "--currency", "usdttrc20"}},
		{name: "uri_unknown_ticker", args: []string{"--address", "DExampleaddress", "--amount", "12", "--currency", "doge"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, nil, append([]string{"uri"}, tt.args...)...)
			require.NoError(t, err)
			newGoldie(t).Assert(t, tt.name, []byte(out))
		})
	}
}

func TestURICommandRejectsBadInput(t *testing.T) {
	_, err := execute(t, nil, "uri", "--address", "bc1q", "--amount", "abc", "--currency", "btc")
	assert.ErrorContains(t, err, "invalid --amount")

	_, err = execute(t, nil, "uri", "--address", "bc1q", "--amount", "0", "--currency", "btc")
	assert.ErrorContains(t, err, "incomplete payment details")

	_, err = execute(t, nil, "uri", "--address", "bc1q")
	assert.Error(t, err)
}
