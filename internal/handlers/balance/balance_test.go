package balance

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
	"github.com/GlebRadaev/gamestore/internal/service/balanceservice"
	"github.com/GlebRadaev/gamestore/pkg/auth"
)

var userID = uuid.MustParse("11111111-1111-1111-1111-111111111111")

func NewMock(t *testing.T) (*BalanceHandler, *MockService) {
	ctrl := gomock.NewController(t)
	service := NewMockService(ctrl)
	return New(service), service
}

func eqDecimal(s string) gomock.Matcher {
	want := decimal.RequireFromString(s)
	return gomock.Cond(func(x any) bool {
		d, ok := x.(decimal.Decimal)
		return ok && d.Equal(want)
	})
}

func TestGetBalanceHandler(t *testing.T) {
	handler, service := NewMock(t)

	tests := []struct {
		name         string
		anonymous    bool
		prepareMock  func()
		expectedCode int
		expectedBody dto.BalanceResponseDTO
	}{
		{
			name: "Successful retrieval",
			prepareMock: func() {
				service.EXPECT().
					GetBalance(gomock.Any(), userID).
					Return(&domain.User{
						ID:            userID,
						CreditBalance: decimal.RequireFromString("150.50"),
						PointBalance:  30,
					}, nil)
			},
			expectedCode: http.StatusOK,
			expectedBody: dto.BalanceResponseDTO{
				Credit: decimal.RequireFromString("150.50"),
				Points: 30,
			},
		},
		{
			name:         "Anonymous request",
			anonymous:    true,
			prepareMock:  func() {},
			expectedCode: http.StatusUnauthorized,
		},
		{
			name: "Unknown user",
			prepareMock: func() {
				service.EXPECT().
					GetBalance(gomock.Any(), userID).
					Return(nil, balanceservice.ErrUserNotFound)
			},
			expectedCode: http.StatusNotFound,
		},
		{
			name: "Internal server error",
			prepareMock: func() {
				service.EXPECT().
					GetBalance(gomock.Any(), userID).
					Return(nil, errors.New("error"))
			},
			expectedCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()
			r := httptest.NewRequest(http.MethodGet, "/api/user/balance", nil)
			if !tt.anonymous {
				r = r.WithContext(context.WithValue(context.Background(), auth.UserIDKey, userID))
			}
			w := httptest.NewRecorder()
			handler.GetBalance(w, r)
			assert.Equal(t, tt.expectedCode, w.Code)
			if tt.expectedCode == http.StatusOK {
				var body dto.BalanceResponseDTO
				require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
				assert.True(t, tt.expectedBody.Credit.Equal(body.Credit))
				assert.Equal(t, tt.expectedBody.Points, body.Points)
			}
		})
	}
}

func TestCreditHandler(t *testing.T) {
	handler, service := NewMock(t)

	tests := []struct {
		name          string
		id            string
		body          string
		prepareMock   func()
		expectedCode  int
		expectedError string
	}{
		{
			name: "Money top-up",
			id:   userID.String(),
			body: `{"currency":"MONEY","amount":"100.25"}`,
			prepareMock: func() {
				service.EXPECT().
					Credit(gomock.Any(), userID, domain.CurrencyMoney, eqDecimal("100.25")).
					Return(&domain.User{ID: userID, CreditBalance: decimal.RequireFromString("100.25")}, nil)
			},
			expectedCode: http.StatusOK,
		},
		{
			name: "Point top-up",
			id:   userID.String(),
			body: `{"currency":"POINT","amount":30}`,
			prepareMock: func() {
				service.EXPECT().
					Credit(gomock.Any(), userID, domain.CurrencyPoint, eqDecimal("30")).
					Return(&domain.User{ID: userID, PointBalance: 30}, nil)
			},
			expectedCode: http.StatusOK,
		},
		{
			name:          "Invalid user id",
			id:            "not-a-uuid",
			body:          `{"currency":"MONEY","amount":"1"}`,
			prepareMock:   func() {},
			expectedCode:  http.StatusBadRequest,
			expectedError: "invalid user id",
		},
		{
			name:          "Invalid request body",
			id:            userID.String(),
			body:          `{"currency":`,
			prepareMock:   func() {},
			expectedCode:  http.StatusBadRequest,
			expectedError: "invalid request body",
		},
		{
			name:          "Unknown currency",
			id:            userID.String(),
			body:          `{"currency":"GOLD","amount":"1"}`,
			prepareMock:   func() {},
			expectedCode:  http.StatusBadRequest,
			expectedError: dto.ErrInvalidCurrency.Error(),
		},
		{
			name: "Non-positive amount",
			id:   userID.String(),
			body: `{"currency":"MONEY","amount":"0"}`,
			prepareMock: func() {
				service.EXPECT().
					Credit(gomock.Any(), userID, domain.CurrencyMoney, eqDecimal("0")).
					Return(nil, balanceservice.ErrInvalidAmount)
			},
			expectedCode:  http.StatusBadRequest,
			expectedError: balanceservice.ErrInvalidAmount.Error(),
		},
		{
			name: "Unknown user",
			id:   userID.String(),
			body: `{"currency":"MONEY","amount":"5"}`,
			prepareMock: func() {
				service.EXPECT().
					Credit(gomock.Any(), userID, domain.CurrencyMoney, eqDecimal("5")).
					Return(nil, balanceservice.ErrUserNotFound)
			},
			expectedCode:  http.StatusNotFound,
			expectedError: balanceservice.ErrUserNotFound.Error(),
		},
		{
			name: "Internal server error",
			id:   userID.String(),
			body: `{"currency":"MONEY","amount":"5"}`,
			prepareMock: func() {
				service.EXPECT().
					Credit(gomock.Any(), userID, domain.CurrencyMoney, eqDecimal("5")).
					Return(nil, errors.New("db down"))
			},
			expectedCode:  http.StatusInternalServerError,
			expectedError: "Internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("id", tt.id)
			r := httptest.NewRequest(http.MethodPost, "/api/admin/users/"+tt.id+"/credit", bytes.NewBufferString(tt.body))
			r = r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
			w := httptest.NewRecorder()

			handler.Credit(w, r)

			assert.Equal(t, tt.expectedCode, w.Code)
			if tt.expectedError != "" {
				var body map[string]any
				require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
				assert.Equal(t, tt.expectedError, body["message"])
			}
		})
	}
}
