package dto

import (
	"errors"

	"github.com/shopspring/decimal"

	"github.com/GlebRadaev/gamestore/internal/domain"
)

var ErrInvalidCurrency = errors.New("currency must be MONEY or POINT")

type BalanceResponseDTO struct {
	Credit decimal.Decimal `json:"credit" swaggertype:"string" example:"150.50"`
	Points int64           `json:"points" example:"30"`
}

type CreditRequestDTO struct {
	Currency string          `json:"currency" example:"MONEY"`
	Amount   decimal.Decimal `json:"amount" swaggertype:"string" example:"100"`
}

func (r CreditRequestDTO) Validate() (domain.CurrencyKind, error) {
	kind := domain.CurrencyKind(r.Currency)
	if !kind.Valid() {
		return "", ErrInvalidCurrency
	}
	return kind, nil
}
