package dto

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrMissingProductID = errors.New("productId is required")
	ErrInvalidQuantity  = errors.New("quantity must be an integer of at least 1")
	ErrEmptyCart        = errors.New("productIds must not be empty")
)

type PurchaseRequestDTO struct {
	ProductID string `json:"productId" example:"2f1c1b8e-8a43-4f3e-9f55-0d8f8f7c6a01"`
	Quantity  *int   `json:"quantity,omitempty" example:"1"`
}

// Validate returns the parsed product id and quantity, defaulting to 1.
func (r PurchaseRequestDTO) Validate() (uuid.UUID, int, error) {
	if r.ProductID == "" {
		return uuid.Nil, 0, ErrMissingProductID
	}
	productID, err := uuid.Parse(r.ProductID)
	if err != nil {
		return uuid.Nil, 0, fmt.Errorf("invalid productId %q", r.ProductID)
	}
	quantity := 1
	if r.Quantity != nil {
		quantity = *r.Quantity
	}
	if quantity < 1 {
		return uuid.Nil, 0, ErrInvalidQuantity
	}
	return productID, quantity, nil
}

type PurchaseResponseDTO struct {
	Success     bool   `json:"success" example:"true"`
	OrderID     string `json:"orderId" example:"9b2f6c1e-3f0a-4a7e-8e2f-6d8c0d1f2a3b"`
	ProductName string `json:"productName" example:"Steam account"`
}

type CheckoutRequestDTO struct {
	ProductIDs []string `json:"productIds"`
}

func (r CheckoutRequestDTO) Validate() ([]uuid.UUID, error) {
	if len(r.ProductIDs) == 0 {
		return nil, ErrEmptyCart
	}
	ids := make([]uuid.UUID, 0, len(r.ProductIDs))
	for _, raw := range r.ProductIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid product id %q", raw)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

type CheckoutOrderDTO struct {
	OrderID     string          `json:"orderId" example:"9b2f6c1e-3f0a-4a7e-8e2f-6d8c0d1f2a3b"`
	ProductName string          `json:"productName" example:"Steam account"`
	Price       decimal.Decimal `json:"price" swaggertype:"string" example:"100"`
	Currency    string          `json:"currency" example:"MONEY"`
}

type CheckoutResponseDTO struct {
	Success        bool               `json:"success" example:"true"`
	PurchasedCount int                `json:"purchasedCount" example:"2"`
	TotalTHB       decimal.Decimal    `json:"totalTHB" swaggertype:"string" example:"200"`
	TotalPoints    decimal.Decimal    `json:"totalPoints" swaggertype:"string" example:"0"`
	Orders         []CheckoutOrderDTO `json:"orders"`
}

// CheckoutFailureDTO always carries soldProductIds so clients can prune the cart.
type CheckoutFailureDTO struct {
	Success           bool     `json:"success" example:"false"`
	Message           string   `json:"message" example:"product already sold"`
	SoldProductIDs    []string `json:"soldProductIds"`
	MissingProductIDs []string `json:"missingProductIds,omitempty"`
}
