package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

type GetOrdersResponseDTO struct {
	OrderID     string          `json:"orderId" example:"9b2f6c1e-3f0a-4a7e-8e2f-6d8c0d1f2a3b"`
	ProductID   string          `json:"productId,omitempty" example:"2f1c1b8e-8a43-4f3e-9f55-0d8f8f7c6a01"`
	ProductName string          `json:"productName" example:"Steam account"`
	TotalPrice  decimal.Decimal `json:"totalPrice" swaggertype:"string" example:"100"`
	Currency    string          `json:"currency" example:"MONEY"`
	Quantity    int             `json:"quantity" example:"1"`
	Items       []string        `json:"items" example:"acct1:pw1"`
	Status      string          `json:"status" example:"COMPLETED"`
	PurchasedAt time.Time       `json:"purchasedAt" example:"2020-12-09T16:09:57+03:00"`
}
