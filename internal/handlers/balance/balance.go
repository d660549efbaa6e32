package balance

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/GlebRadaev/gamestore/internal/domain"
	"github.com/GlebRadaev/gamestore/internal/dto"
	"github.com/GlebRadaev/gamestore/internal/service/balanceservice"
	"github.com/GlebRadaev/gamestore/pkg/auth"
	"github.com/GlebRadaev/gamestore/pkg/utils"
)

//go:generate mockgen -destination=mock_balance.go -source=balance.go -package=balance

type Service interface {
	GetBalance(ctx context.Context, userID uuid.UUID) (*domain.User, error)
	Credit(ctx context.Context, userID uuid.UUID, kind domain.CurrencyKind, amount decimal.Decimal) (*domain.User, error)
}

type BalanceHandler struct {
	balanceService Service
}

func New(balanceService Service) *BalanceHandler {
	return &BalanceHandler{
		balanceService: balanceService,
	}
}

// GetBalance godoc
//
//	@Summary		Get current user balance
//	@Description	Retrieve the credit and point balances of the authenticated buyer.
//	@Tags			Balance
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	dto.BalanceResponseDTO	"Current balances"
//	@Failure		401	{object}	utils.Response			"User not authorized"
//	@Failure		404	{object}	utils.Response			"User not found"
//	@Failure		500	{object}	utils.Response			"Internal server error"
//	@Router			/api/user/balance [get]
func (h *BalanceHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	user, err := h.balanceService.GetBalance(r.Context(), userID)
	if err != nil {
		switch {
		case errors.Is(err, balanceservice.ErrUserNotFound):
			utils.RespondWithError(w, http.StatusNotFound, err.Error())
		default:
			utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, toResponse(user))
}

// Credit godoc
//
//	@Summary		Top up a user balance
//	@Description	Adds a positive amount of MONEY or POINT to the user's balance. Points must be whole numbers.
//	@Tags			Admin
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string					true	"User id"
//	@Param			request	body		dto.CreditRequestDTO	true	"Currency and amount"
//	@Success		200		{object}	dto.BalanceResponseDTO	"Balances after the top-up"
//	@Failure		400		{object}	utils.Response			"Invalid request"
//	@Failure		401		{object}	utils.Response			"User not authorized"
//	@Failure		403		{object}	utils.Response			"Not an admin"
//	@Failure		404		{object}	utils.Response			"User not found"
//	@Failure		500		{object}	utils.Response			"Internal server error"
//	@Router			/api/admin/users/{id}/credit [post]
func (h *BalanceHandler) Credit(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	var req dto.CreditRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	kind, err := req.Validate()
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.balanceService.Credit(r.Context(), userID, kind, req.Amount)
	if err != nil {
		switch {
		case errors.Is(err, balanceservice.ErrInvalidAmount), errors.Is(err, balanceservice.ErrInvalidCurrency):
			utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, balanceservice.ErrUserNotFound):
			utils.RespondWithError(w, http.StatusNotFound, err.Error())
		default:
			zap.L().Error("credit failed", zap.Stringer("user_id", userID), zap.Error(err))
			utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, toResponse(user))
}

func toResponse(user *domain.User) dto.BalanceResponseDTO {
	return dto.BalanceResponseDTO{
		Credit: user.CreditBalance,
		Points: user.PointBalance,
	}
}
