package orders

import (
	"context"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/GlebRadaev/gamestore/internal/domain"
	"github.com/GlebRadaev/gamestore/internal/dto"
	"github.com/GlebRadaev/gamestore/internal/service/orderservice"
	"github.com/GlebRadaev/gamestore/pkg/auth"
	"github.com/GlebRadaev/gamestore/pkg/utils"
)

//go:generate mockgen -destination=mock_orders.go -source=orders.go -package=orders

type Service interface {
	GetOrders(ctx context.Context, userID uuid.UUID, filter domain.OrderFilter) ([]orderservice.Redemption, error)
}

type OrderHandler struct {
	orderService Service
}

func New(orderService Service) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
	}
}

// GetOrders godoc
//
//	@Summary		Get redemption history
//	@Description	Retrieve the authenticated buyer's orders, newest first, with the units each order handed out.
//	@Tags			Orders
//	@Security		BearerAuth
//	@Produce		json
//	@Param			productId	query		string	false	"Only orders of this product"
//	@Param			limit		query		int		false	"Maximum number of orders (default 50, max 200)"
//	@Success		200			{array}		dto.GetOrdersResponseDTO
//	@Failure		400			{object}	utils.Response	"Invalid query"
//	@Failure		401			{object}	utils.Response	"User not authorized"
//	@Failure		500			{object}	utils.Response	"Internal server error"
//	@Router			/api/user/orders [get]
func (h *OrderHandler) GetOrders(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var filter domain.OrderFilter
	query := r.URL.Query()
	if raw := query.Get("productId"); raw != "" {
		productID, err := uuid.Parse(raw)
		if err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "invalid productId")
			return
		}
		filter.ProductID = &productID
	}
	if raw := query.Get("limit"); raw != "" {
		limit, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		filter.Limit = uint(limit)
	}

	history, err := h.orderService.GetOrders(r.Context(), userID, filter)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	response := make([]dto.GetOrdersResponseDTO, 0, len(history))
	for _, order := range history {
		item := dto.GetOrdersResponseDTO{
			OrderID:     order.ID.String(),
			ProductName: order.ProductName,
			TotalPrice:  order.TotalPrice,
			Currency:    string(order.Currency),
			Quantity:    order.Quantity,
			Items:       order.Units,
			Status:      order.Status,
			PurchasedAt: order.PurchasedAt,
		}
		if item.Items == nil {
			item.Items = []string{}
		}
		if order.ProductID != nil {
			item.ProductID = order.ProductID.String()
		}
		response = append(response, item)
	}
	utils.RespondWithJSON(w, http.StatusOK, response)
}
