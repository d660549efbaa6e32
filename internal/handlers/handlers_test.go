package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomock "go.uber.org/mock/gomock"

	"github.com/GlebRadaev/gamestore/internal/handlers/balance"
	"github.com/GlebRadaev/gamestore/internal/handlers/orders"
	"github.com/GlebRadaev/gamestore/internal/handlers/purchase"
	"github.com/GlebRadaev/gamestore/internal/handlers/stock"
	"github.com/GlebRadaev/gamestore/internal/service"
	"github.com/GlebRadaev/gamestore/pkg/auth"
)

func TestNew(t *testing.T) {
	ctrl := gomock.NewController(t)

	services := &service.Services{
		PurchaseService: purchase.NewMockService(ctrl),
		OrderService:    orders.NewMockService(ctrl),
		BalanceService:  balance.NewMockService(ctrl),
		StockService:    stock.NewMockService(ctrl),
	}

	h := New(services, auth.NewJWTService("secret"), zerolog.Nop())
	assert.NotNil(t, h, "Handlers should not be nil")
	assert.NotNil(t, h.PurchaseHandler)
	assert.NotNil(t, h.StockHandler)
}

func TestInitRoutes(t *testing.T) {
	ctrl := gomock.NewController(t)

	mockPurchaseHandler := NewMockPurchaseHandler(ctrl)
	mockOrderHandler := NewMockOrderHandler(ctrl)
	mockBalanceHandler := NewMockBalanceHandler(ctrl)
	mockStockHandler := NewMockStockHandler(ctrl)

	mockPurchaseHandler.EXPECT().Purchase(gomock.Any(), gomock.Any()).AnyTimes()
	mockPurchaseHandler.EXPECT().Checkout(gomock.Any(), gomock.Any()).AnyTimes()
	mockOrderHandler.EXPECT().GetOrders(gomock.Any(), gomock.Any()).AnyTimes()
	mockBalanceHandler.EXPECT().GetBalance(gomock.Any(), gomock.Any()).AnyTimes()
	mockBalanceHandler.EXPECT().Credit(gomock.Any(), gomock.Any()).AnyTimes()
	mockStockHandler.EXPECT().GetProduct(gomock.Any(), gomock.Any()).AnyTimes()
	mockStockHandler.EXPECT().Restock(gomock.Any(), gomock.Any()).AnyTimes()

	jwtService := auth.NewJWTService("secret")
	h := &Handlers{
		PurchaseHandler: mockPurchaseHandler,
		OrderHandler:    mockOrderHandler,
		BalanceHandler:  mockBalanceHandler,
		StockHandler:    mockStockHandler,
		jwtService:      jwtService,
		logger:          zerolog.Nop(),
	}

	router := chi.NewRouter()
	h.InitRoutes(router)

	expires := time.Now().Add(time.Hour)
	buyerToken, err := jwtService.GenerateJWT(uuid.New(), auth.RoleBuyer, expires)
	require.NoError(t, err)
	adminToken, err := jwtService.GenerateJWT(uuid.New(), auth.RoleAdmin, expires)
	require.NoError(t, err)

	productURL := "/api/products/" + uuid.NewString()
	stockURL := "/api/admin/products/" + uuid.NewString() + "/stock"
	creditURL := "/api/admin/users/" + uuid.NewString() + "/credit"

	tests := []struct {
		method string
		url    string
		token  string
		status int
	}{
		{http.MethodGet, productURL, "", http.StatusOK},
		{http.MethodPost, "/api/purchase", "", http.StatusUnauthorized},
		{http.MethodPost, "/api/purchase", buyerToken, http.StatusOK},
		{http.MethodPost, "/api/cart/checkout", "", http.StatusUnauthorized},
		{http.MethodPost, "/api/cart/checkout", buyerToken, http.StatusOK},
		{http.MethodGet, "/api/user/balance", "", http.StatusUnauthorized},
		{http.MethodGet, "/api/user/balance", buyerToken, http.StatusOK},
		{http.MethodGet, "/api/user/orders", "bogus", http.StatusUnauthorized},
		{http.MethodGet, "/api/user/orders", buyerToken, http.StatusOK},
		{http.MethodPost, stockURL, "", http.StatusUnauthorized},
		{http.MethodPost, stockURL, buyerToken, http.StatusForbidden},
		{http.MethodPost, stockURL, adminToken, http.StatusOK},
		{http.MethodPost, creditURL, buyerToken, http.StatusForbidden},
		{http.MethodPost, creditURL, adminToken, http.StatusOK},
		{http.MethodGet, "/metrics", "", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.url, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.url, nil)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			rec := httptest.NewRecorder()

			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
		})
	}
}
