package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/propdesk/fundedpay/pkg/enums"
)

// Order is a challenge purchase. Crypto fields stay empty until the gateway
// allocates a deposit address for the order.
type Order struct {
	ID               uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	UserID           uuid.UUID           `gorm:"column:user_id;type:uuid;not null"`
	AccountSize      int64               `gorm:"column:account_size;not null"`
	FinalAmount      decimal.Decimal     `gorm:"column:final_amount;type:numeric(12,2);not null"`
	PaymentMethod    enums.PaymentMethod `gorm:"column:payment_method;type:text;not null"`
	Status           enums.OrderStatus   `gorm:"column:status;type:text;not null;default:'pending'"`
	PaymentStatus    *string             `gorm:"column:payment_status"`
	PaymentID        *string             `gorm:"column:payment_id"`
	CryptoAmount     decimal.NullDecimal `gorm:"column:crypto_amount;type:numeric(36,18)"`
	CryptoCurrency   *string             `gorm:"column:crypto_currency"`
	CryptoAddress    *string             `gorm:"column:crypto_address"`
	PaymentExpiresAt *time.Time          `gorm:"column:payment_expires_at"`
	PaidAt           *time.Time          `gorm:"column:paid_at"`
	CreatedAt        time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

func (Order) TableName() string {
	return "orders"
}

// HasAllocation reports whether address and currency are present and the
// crypto amount is positive.
func (o Order) HasAllocation() bool {
	return o.CryptoAmount.Valid && o.CryptoAmount.Decimal.IsPositive() &&
		o.CryptoCurrency != nil && *o.CryptoCurrency != "" &&
		o.CryptoAddress != nil && *o.CryptoAddress != ""
}
