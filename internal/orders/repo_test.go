package orders

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/propdesk/fundedpay/pkg/db/models"
	"github.com/propdesk/fundedpay/pkg/enums"
)

const ordersTableSQL = `
CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  account_size INTEGER NOT NULL,
  final_amount TEXT NOT NULL,
  payment_method TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'pending',
  payment_status TEXT,
  payment_id TEXT,
  crypto_amount TEXT,
  crypto_currency TEXT,
  crypto_address TEXT,
  payment_expires_at DATETIME,
  paid_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`

func setupOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+strings.ReplaceAll(t.Name(), "/", "_")+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.Exec(ordersTableSQL).Error)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func seedOrder(t *testing.T, db *gorm.DB, mutate func(*models.Order)) *models.Order {
	t.Helper()
	order := &models.Order{
		ID:            uuid.New(),
		UserID:        uuid.New(),
		AccountSize:   50000,
		FinalAmount:   decimal.RequireFromString("199.00"),
		PaymentMethod: enums.PaymentMethodCrypto,
		Status:        enums.OrderStatusPending,
	}
	if mutate != nil {
		mutate(order)
	}
	require.NoError(t, db.Create(order).Error)
	return order
}

func TestFindOrderForUserScopesToOwner(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	order := seedOrder(t, db, nil)

	found, err := repo.FindOrderForUser(context.Background(), order.ID, order.UserID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, found.ID)
	assert.True(t, found.FinalAmount.Equal(decimal.RequireFromString("199")))
	assert.Equal(t, enums.PaymentMethodCrypto, found.PaymentMethod)

	_, err = repo.FindOrderForUser(context.Background(), order.ID, uuid.New())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestFindExpiredCryptoOrders(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	at := func(d time.Duration) *time.Time {
		v := now.Add(d)
		return &v
	}

	oldest := seedOrder(t, db, func(o *models.Order) { o.PaymentExpiresAt = at(-3 * time.Hour) })
	older := seedOrder(t, db, func(o *models.Order) { o.PaymentExpiresAt = at(-2 * time.Hour) })
	seedOrder(t, db, func(o *models.Order) { o.PaymentExpiresAt = at(time.Hour) })
	seedOrder(t, db, func(o *models.Order) {
		o.PaymentExpiresAt = at(-3 * time.Hour)
		o.Status = enums.OrderStatusPaid
	})
	seedOrder(t, db, func(o *models.Order) {
		o.PaymentExpiresAt = at(-3 * time.Hour)
		o.PaymentMethod = enums.PaymentMethodCard
	})
	seedOrder(t, db, nil)

	rows, err := repo.FindExpiredCryptoOrders(context.Background(), now, 10)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, oldest.ID, rows[0].ID)
	assert.Equal(t, older.ID, rows[1].ID)

	limited, err := repo.FindExpiredCryptoOrders(context.Background(), now, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestExpirePendingOrderOnlyTouchesPending(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	pending := seedOrder(t, db, nil)
	paid := seedOrder(t, db, func(o *models.Order) { o.Status = enums.OrderStatusPaid })

	changed, err := repo.ExpirePendingOrder(context.Background(), pending.ID)
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = repo.ExpirePendingOrder(context.Background(), pending.ID)
	require.NoError(t, err)
	assert.False(t, changed)

	changed, err = repo.ExpirePendingOrder(context.Background(), paid.ID)
	require.NoError(t, err)
	assert.False(t, changed)

	reloaded, err := repo.FindOrder(context.Background(), pending.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusExpired, reloaded.Status)
	require.NotNil(t, reloaded.PaymentStatus)
	assert.Equal(t, "expired", *reloaded.PaymentStatus)
}
