package dto

import "github.com/shopspring/decimal"

type ProductResponseDTO struct {
	ID            string           `json:"id" example:"2f1c1b8e-8a43-4f3e-9f55-0d8f8f7c6a01"`
	Name          string           `json:"name" example:"Steam account"`
	Price         decimal.Decimal  `json:"price" swaggertype:"string" example:"100"`
	DiscountPrice *decimal.Decimal `json:"discountPrice,omitempty" swaggertype:"string" example:"80"`
	UnitPrice     decimal.Decimal  `json:"unitPrice" swaggertype:"string" example:"80"`
	Currency      string           `json:"currency" example:"MONEY"`
	IsSold        bool             `json:"isSold" example:"false"`
	Stock         int              `json:"stock" example:"3"`
}

type RestockResponseDTO struct {
	Success bool `json:"success" example:"true"`
	Count   int  `json:"count" example:"5"`
}
