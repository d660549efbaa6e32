package stock

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/GlebRadaev/gamestore/internal/dto"
	"github.com/GlebRadaev/gamestore/internal/service/stockservice"
	"github.com/GlebRadaev/gamestore/pkg/utils"
)

//go:generate mockgen -destination=mock_stock.go -source=stock.go -package=stock

// maxRestockBody caps an uploaded unit list.
const maxRestockBody = 1 << 20

type Service interface {
	GetProduct(ctx context.Context, productID uuid.UUID) (*stockservice.ProductView, error)
	Restock(ctx context.Context, productID uuid.UUID, units string) (int, error)
}

type StockHandler struct {
	stockService Service
}

func New(stockService Service) *StockHandler {
	return &StockHandler{
		stockService: stockService,
	}
}

// GetProduct godoc
//
//	@Summary		Get a product
//	@Description	Public product view with its price and the number of units left in stock.
//	@Tags			Products
//	@Produce		json
//	@Param			id	path		string					true	"Product id"
//	@Success		200	{object}	dto.ProductResponseDTO	"Product"
//	@Failure		400	{object}	utils.Response			"Invalid product id"
//	@Failure		404	{object}	utils.Response			"Product not found"
//	@Failure		500	{object}	utils.Response			"Internal server error"
//	@Router			/api/products/{id} [get]
func (h *StockHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	productID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	view, err := h.stockService.GetProduct(r.Context(), productID)
	if err != nil {
		switch {
		case errors.Is(err, stockservice.ErrProductNotFound):
			utils.RespondWithError(w, http.StatusNotFound, err.Error())
		default:
			utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, dto.ProductResponseDTO{
		ID:            view.ID.String(),
		Name:          view.Name,
		Price:         view.Price,
		DiscountPrice: view.DiscountPrice,
		UnitPrice:     view.UnitPrice,
		Currency:      string(view.Currency),
		IsSold:        view.IsSold,
		Stock:         view.Stock,
	})
}

// Restock godoc
//
//	@Summary		Add stock units
//	@Description	Appends newline separated units to the product's encrypted pool and reopens it for sale.
//	@Tags			Admin
//	@Security		BearerAuth
//	@Accept			text/plain
//	@Produce		json
//	@Param			id		path		string					true	"Product id"
//	@Param			units	body		string					true	"One unit per line"
//	@Success		200		{object}	dto.RestockResponseDTO	"Units in stock after restock"
//	@Failure		400		{object}	utils.Response			"Invalid request"
//	@Failure		401		{object}	utils.Response			"User not authorized"
//	@Failure		403		{object}	utils.Response			"Not an admin"
//	@Failure		404		{object}	utils.Response			"Product not found"
//	@Failure		500		{object}	utils.Response			"Internal server error"
//	@Router			/api/admin/products/{id}/stock [post]
func (h *StockHandler) Restock(w http.ResponseWriter, r *http.Request) {
	productID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRestockBody))
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Failed to read request body")
		return
	}

	count, err := h.stockService.Restock(r.Context(), productID, string(body))
	if err != nil {
		switch {
		case errors.Is(err, stockservice.ErrNoUnits):
			utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, stockservice.ErrProductNotFound):
			utils.RespondWithError(w, http.StatusNotFound, err.Error())
		default:
			zap.L().Error("restock failed", zap.Stringer("product_id", productID), zap.Error(err))
			utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.RestockResponseDTO{Success: true, Count: count})
}
