package purchase

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/GlebRadaev/gamestore/internal/dto"
	"github.com/GlebRadaev/gamestore/internal/service/balanceservice"
	"github.com/GlebRadaev/gamestore/internal/service/purchaseservice"
	"github.com/GlebRadaev/gamestore/pkg/auth"
	"github.com/GlebRadaev/gamestore/pkg/utils"
)

//go:generate mockgen -destination=mock_purchase.go -source=purchase.go -package=purchase

type Service interface {
	Purchase(ctx context.Context, userID, productID uuid.UUID, quantity int) (*purchaseservice.PurchaseResult, error)
	Checkout(ctx context.Context, userID uuid.UUID, productIDs []uuid.UUID) (*purchaseservice.CheckoutResult, error)
}

type PurchaseHandler struct {
	purchaseService Service
}

func New(purchaseService Service) *PurchaseHandler {
	return &PurchaseHandler{
		purchaseService: purchaseService,
	}
}

// Purchase godoc
//
//	@Summary		Buy units of one product
//	@Description	Takes quantity units from the product's stock, charges the buyer and records an order, all in one transaction.
//	@Tags			Purchase
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		dto.PurchaseRequestDTO	true	"Product and quantity"
//	@Success		200		{object}	dto.PurchaseResponseDTO	"Purchase completed"
//	@Failure		400		{object}	utils.Response			"Invalid request"
//	@Failure		401		{object}	utils.Response			"User not authorized"
//	@Failure		402		{object}	utils.Response			"Insufficient balance"
//	@Failure		404		{object}	utils.Response			"Product or user not found"
//	@Failure		409		{object}	utils.Response			"Already sold or out of stock"
//	@Failure		500		{object}	utils.Response			"Internal server error"
//	@Router			/api/purchase [post]
func (h *PurchaseHandler) Purchase(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req dto.PurchaseRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	productID, quantity, err := req.Validate()
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.purchaseService.Purchase(r.Context(), userID, productID, quantity)
	if err != nil {
		respondWithPurchaseError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, dto.PurchaseResponseDTO{
		Success:     true,
		OrderID:     result.OrderID.String(),
		ProductName: result.ProductName,
	})
}

// Checkout godoc
//
//	@Summary		Buy every product in the cart
//	@Description	Buys each listed product whole. If any product is missing, sold or unaffordable nothing is bought.
//	@Tags			Purchase
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		dto.CheckoutRequestDTO	true	"Cart product ids"
//	@Success		200		{object}	dto.CheckoutResponseDTO	"Checkout completed"
//	@Failure		400		{object}	utils.Response			"Invalid request"
//	@Failure		401		{object}	utils.Response			"User not authorized"
//	@Failure		402		{object}	dto.CheckoutFailureDTO	"Insufficient balance"
//	@Failure		404		{object}	dto.CheckoutFailureDTO	"Product not found"
//	@Failure		409		{object}	dto.CheckoutFailureDTO	"Products already sold"
//	@Failure		500		{object}	dto.CheckoutFailureDTO	"Internal server error"
//	@Router			/api/cart/checkout [post]
func (h *PurchaseHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req dto.CheckoutRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithCheckoutFailure(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	productIDs, err := req.Validate()
	if err != nil {
		respondWithCheckoutFailure(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	result, err := h.purchaseService.Checkout(r.Context(), userID, productIDs)
	if err != nil {
		var checkoutErr *purchaseservice.CheckoutError
		errors.As(err, &checkoutErr)
		code, message := statusFor(err)
		respondWithCheckoutFailure(w, code, message, checkoutErr)
		return
	}

	orders := make([]dto.CheckoutOrderDTO, 0, len(result.Orders))
	for _, o := range result.Orders {
		orders = append(orders, dto.CheckoutOrderDTO{
			OrderID:     o.OrderID.String(),
			ProductName: o.ProductName,
			Price:       o.Price,
			Currency:    string(o.Currency),
		})
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.CheckoutResponseDTO{
		Success:        true,
		PurchasedCount: result.PurchasedCount,
		TotalTHB:       result.TotalMoney,
		TotalPoints:    result.TotalPoints,
		Orders:         orders,
	})
}

func respondWithPurchaseError(w http.ResponseWriter, err error) {
	code, message := statusFor(err)
	utils.RespondWithError(w, code, message)
}

func respondWithCheckoutFailure(w http.ResponseWriter, code int, message string, checkoutErr *purchaseservice.CheckoutError) {
	body := dto.CheckoutFailureDTO{
		Success:        false,
		Message:        message,
		SoldProductIDs: []string{},
	}
	if checkoutErr != nil {
		body.SoldProductIDs = toStrings(checkoutErr.SoldProductIDs)
		if len(checkoutErr.MissingProductIDs) > 0 {
			body.MissingProductIDs = toStrings(checkoutErr.MissingProductIDs)
		}
	}
	utils.RespondWithJSON(w, code, body)
}

func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, purchaseservice.ErrInvalidQuantity), errors.Is(err, purchaseservice.ErrEmptyCart):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, balanceservice.ErrInvalidAmount), errors.Is(err, balanceservice.ErrInvalidCurrency):
		zap.L().Warn("product price can't be charged", zap.Error(err))
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, balanceservice.ErrInsufficientBalance):
		return http.StatusPaymentRequired, err.Error()
	case errors.Is(err, purchaseservice.ErrProductNotFound):
		return http.StatusNotFound, purchaseservice.ErrProductNotFound.Error()
	case errors.Is(err, purchaseservice.ErrUserNotFound):
		return http.StatusNotFound, purchaseservice.ErrUserNotFound.Error()
	case errors.Is(err, purchaseservice.ErrAlreadySold):
		return http.StatusConflict, purchaseservice.ErrAlreadySold.Error()
	case errors.Is(err, purchaseservice.ErrOutOfStock):
		return http.StatusConflict, err.Error()
	default:
		zap.L().Error("transaction failed", zap.Error(err))
		return http.StatusInternalServerError, "Internal server error"
	}
}

func toStrings(ids []uuid.UUID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.String())
	}
	return out
}
