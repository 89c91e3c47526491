package payments

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/propdesk/fundedpay/internal/gateway"
	"github.com/propdesk/fundedpay/pkg/db/models"
	"github.com/propdesk/fundedpay/pkg/enums"
)

var (
	testOrderID = uuid.MustParse("6f1c7a52-1d55-4a51-9a3e-0b8f0f6d2c11")
	testUserID  = uuid.MustParse("0d8e2b57-3c1f-4c7e-8f55-7a2b1e9d4c22")
)

type fakeGateway struct {
	mu          sync.Mutex
	payments    []gateway.PaymentResult
	statuses    []gateway.StatusResult
	createCalls int
	statusCalls int

	// When set, CheckStatus signals entered and waits for release.
	entered chan struct{}
	release chan struct{}
}

func (f *fakeGateway) CreateOrGetPayment(context.Context, string, string) gateway.PaymentResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++
	return next(f.payments, f.createCalls)
}

func (f *fakeGateway) CheckStatus(ctx context.Context, _, _ string) gateway.StatusResult {
	f.mu.Lock()
	f.statusCalls++
	res := next(f.statuses, f.statusCalls)
	entered, release := f.entered, f.release
	f.mu.Unlock()

	if release != nil {
		entered <- struct{}{}
		<-release
	}
	return res
}

func (f *fakeGateway) calls() (create, status int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.createCalls, f.statusCalls
}

// next returns the call-th scripted result, repeating the last one.
func next[T any](script []T, call int) T {
	var zero T
	if len(script) == 0 {
		return zero
	}
	if call > len(script) {
		return script[len(script)-1]
	}
	return script[call-1]
}

func statusOK(status enums.PaymentStatus) gateway.StatusResult {
	return gateway.StatusOK(status, gateway.StatusOrder{})
}

func allocatedPayment(status enums.PaymentStatus) gateway.PaymentResult {
	return gateway.PaymentOK(gateway.Payment{
		PaymentID:      "5077125051",
		AmountCrypto:   decimal.NewNullDecimal(decimal.RequireFromString("0.00312")),
		CryptoCurrency: "btc",
		Address:        "bc1qexampleaddress",
		Status:         status,
	})
}

type fakeOrders struct {
	mu    sync.Mutex
	order *models.Order
	err   error
	calls int
}

func (f *fakeOrders) FindOrderForUser(_ context.Context, orderID, userID uuid.UUID) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if f.order == nil || f.order.ID != orderID || f.order.UserID != userID {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *f.order
	return &copied, nil
}

func cryptoOrder() *models.Order {
	return &models.Order{
		ID:            testOrderID,
		UserID:        testUserID,
		AccountSize:   50000,
		FinalAmount:   decimal.RequireFromString("199.00"),
		PaymentMethod: enums.PaymentMethodCrypto,
		Status:        enums.OrderStatusPending,
		CreatedAt:     time.Now(),
	}
}

func pendingSnapshot(seconds int) Snapshot {
	return Snapshot{
		OrderID:          testOrderID.String(),
		UserID:           testUserID.String(),
		Status:           enums.SessionStatusPending,
		AmountFiat:       decimal.RequireFromString("199"),
		AmountCrypto:     decimal.NewNullDecimal(decimal.RequireFromString("0.00312")),
		CryptoCurrency:   "btc",
		Address:          "bc1qexampleaddress",
		PaymentID:        "5077125051",
		SecondsRemaining: seconds,
	}
}
