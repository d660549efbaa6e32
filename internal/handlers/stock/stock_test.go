package stock

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomock "go.uber.org/mock/gomock"

	"github.com/GlebRadaev/gamestore/internal/domain"
	"github.com/GlebRadaev/gamestore/internal/dto"
	"github.com/GlebRadaev/gamestore/internal/service/stockservice"
)

var productID = uuid.MustParse("22222222-2222-2222-2222-222222222222")

func NewMock(t *testing.T) (*StockHandler, *MockService) {
	ctrl := gomock.NewController(t)
	service := NewMockService(ctrl)
	return New(service), service
}

func withID(r *http.Request, id string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", id)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestGetProductHandler(t *testing.T) {
	handler, service := NewMock(t)
	discount := decimal.NewFromInt(80)

	tests := []struct {
		name         string
		id           string
		prepareMock  func()
		expectedCode int
	}{
		{
			name: "Product with discount",
			id:   productID.String(),
			prepareMock: func() {
				service.EXPECT().
					GetProduct(gomock.Any(), productID).
					Return(&stockservice.ProductView{
						ID:            productID,
						Name:          "Steam account",
						Price:         decimal.NewFromInt(100),
						DiscountPrice: &discount,
						UnitPrice:     discount,
						Currency:      domain.CurrencyMoney,
						Stock:         3,
					}, nil)
			},
			expectedCode: http.StatusOK,
		},
		{
			name:         "Invalid id",
			id:           "abc",
			prepareMock:  func() {},
			expectedCode: http.StatusBadRequest,
		},
		{
			name: "Not found",
			id:   productID.String(),
			prepareMock: func() {
				service.EXPECT().
					GetProduct(gomock.Any(), productID).
					Return(nil, stockservice.ErrProductNotFound)
			},
			expectedCode: http.StatusNotFound,
		},
		{
			name: "Internal server error",
			id:   productID.String(),
			prepareMock: func() {
				service.EXPECT().
					GetProduct(gomock.Any(), productID).
					Return(nil, errors.New("error"))
			},
			expectedCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()
			r := withID(httptest.NewRequest(http.MethodGet, "/api/products/"+tt.id, nil), tt.id)
			w := httptest.NewRecorder()

			handler.GetProduct(w, r)

			assert.Equal(t, tt.expectedCode, w.Code)
			if tt.expectedCode == http.StatusOK {
				var body dto.ProductResponseDTO
				require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
				assert.Equal(t, productID.String(), body.ID)
				assert.Equal(t, 3, body.Stock)
				require.NotNil(t, body.DiscountPrice)
				assert.True(t, discount.Equal(*body.DiscountPrice))
				assert.True(t, discount.Equal(body.UnitPrice))
			}
		})
	}
}

func TestRestockHandler(t *testing.T) {
	handler, service := NewMock(t)

	tests := []struct {
		name          string
		id            string
		body          string
		prepareMock   func()
		expectedCode  int
		expectedCount int
	}{
		{
			name: "Units appended",
			id:   productID.String(),
			body: "acct4:pw4\nacct5:pw5\n",
			prepareMock: func() {
				service.EXPECT().
					Restock(gomock.Any(), productID, "acct4:pw4\nacct5:pw5\n").
					Return(5, nil)
			},
			expectedCode:  http.StatusOK,
			expectedCount: 5,
		},
		{
			name:         "Invalid id",
			id:           "abc",
			body:         "x",
			prepareMock:  func() {},
			expectedCode: http.StatusBadRequest,
		},
		{
			name: "Blank body",
			id:   productID.String(),
			body: "\n\n",
			prepareMock: func() {
				service.EXPECT().
					Restock(gomock.Any(), productID, "\n\n").
					Return(0, stockservice.ErrNoUnits)
			},
			expectedCode: http.StatusBadRequest,
		},
		{
			name: "Not found",
			id:   productID.String(),
			body: "x",
			prepareMock: func() {
				service.EXPECT().
					Restock(gomock.Any(), productID, "x").
					Return(0, stockservice.ErrProductNotFound)
			},
			expectedCode: http.StatusNotFound,
		},
		{
			name: "Internal server error",
			id:   productID.String(),
			body: "x",
			prepareMock: func() {
				service.EXPECT().
					Restock(gomock.Any(), productID, "x").
					Return(0, errors.New("error"))
			},
			expectedCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()
			r := httptest.NewRequest(http.MethodPost, "/api/admin/products/"+tt.id+"/stock", bytes.NewBufferString(tt.body))
			r = withID(r, tt.id)
			w := httptest.NewRecorder()

			handler.Restock(w, r)

			assert.Equal(t, tt.expectedCode, w.Code)
			if tt.expectedCode == http.StatusOK {
				var body dto.RestockResponseDTO
				require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
				assert.True(t, body.Success)
				assert.Equal(t, tt.expectedCount, body.Count)
			}
		})
	}
}
