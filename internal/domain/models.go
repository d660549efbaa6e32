package domain

import (
	"time"

	"github.com/GlebRadaev/gamestore/pkg/stock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CurrencyKind names the balance a product is priced and paid in.
type CurrencyKind string

const (
	CurrencyMoney CurrencyKind = "MONEY"
	CurrencyPoint CurrencyKind = "POINT"
)

func (c CurrencyKind) Valid() bool {
	return c == CurrencyMoney || c == CurrencyPoint
}

const OrderStatusCompleted = "COMPLETED"

type User struct {
	ID            uuid.UUID       `db:"id"`
	CreditBalance decimal.Decimal `db:"credit_balance"`
	PointBalance  int64           `db:"point_balance"`
}

// Balance returns the balance held in the given currency.
func (u *User) Balance(kind CurrencyKind) decimal.Decimal {
	if kind == CurrencyPoint {
		return decimal.NewFromInt(u.PointBalance)
	}
	return u.CreditBalance
}

// Product is an inventory pool. SecretBlob holds the encrypted,
// separator-joined units that are still for sale.
type Product struct {
	ID            uuid.UUID           `db:"id"`
	Name          string              `db:"name"`
	Price         decimal.Decimal     `db:"price"`
	DiscountPrice decimal.NullDecimal `db:"discount_price"`
	Currency      CurrencyKind        `db:"currency"`
	SecretBlob    string              `db:"secret_blob"`
	Separator     stock.Separator     `db:"separator"`
	IsSold        bool                `db:"is_sold"`
	OrderID       *uuid.UUID          `db:"order_id"`
	Version       int64               `db:"version"`
}

func (p *Product) UnitPrice() decimal.Decimal {
	if p.DiscountPrice.Valid {
		return p.DiscountPrice.Decimal
	}
	return p.Price
}

// Order is an immutable redemption receipt.
type Order struct {
	ID          uuid.UUID       `db:"id"`
	UserID      uuid.UUID       `db:"user_id"`
	ProductID   *uuid.UUID      `db:"product_id"`
	ProductName string          `db:"product_name"`
	TotalPrice  decimal.Decimal `db:"total_price"`
	Currency    CurrencyKind    `db:"currency"`
	Quantity    int             `db:"quantity"`
	GivenData   string          `db:"given_data"`
	Status      string          `db:"status"`
	PurchasedAt time.Time       `db:"purchased_at"`
}

// OrderFilter narrows a user's redemption history. Zero values mean no filter.
type OrderFilter struct {
	ProductID *uuid.UUID
	Limit     uint
}
