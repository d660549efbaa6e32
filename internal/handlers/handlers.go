package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/GlebRadaev/gamestore/docs"
	balancehandlers "github.com/GlebRadaev/gamestore/internal/handlers/balance"
	ordershandlers "github.com/GlebRadaev/gamestore/internal/handlers/orders"
	purchasehandlers "github.com/GlebRadaev/gamestore/internal/handlers/purchase"
	stockhandlers "github.com/GlebRadaev/gamestore/internal/handlers/stock"
	"github.com/GlebRadaev/gamestore/internal/service"
	"github.com/GlebRadaev/gamestore/pkg/auth"
)

//go:generate mockgen -destination=mock_handlers.go -source=handlers.go -package=handlers

type PurchaseHandler interface {
	Purchase(w http.ResponseWriter, r *http.Request)
	Checkout(w http.ResponseWriter, r *http.Request)
}

type OrderHandler interface {
	GetOrders(w http.ResponseWriter, r *http.Request)
}

type BalanceHandler interface {
	GetBalance(w http.ResponseWriter, r *http.Request)
	Credit(w http.ResponseWriter, r *http.Request)
}

type StockHandler interface {
	GetProduct(w http.ResponseWriter, r *http.Request)
	Restock(w http.ResponseWriter, r *http.Request)
}

type Handlers struct {
	PurchaseHandler PurchaseHandler
	OrderHandler    OrderHandler
	BalanceHandler  BalanceHandler
	StockHandler    StockHandler

	jwtService auth.JWTServiceInterface
	logger     zerolog.Logger
}

func New(s *service.Services, jwtService auth.JWTServiceInterface, logger zerolog.Logger) *Handlers {
	return &Handlers{
		PurchaseHandler: purchasehandlers.New(s.PurchaseService),
		OrderHandler:    ordershandlers.New(s.OrderService),
		BalanceHandler:  balancehandlers.New(s.BalanceService),
		StockHandler:    stockhandlers.New(s.StockService),
		jwtService:      jwtService,
		logger:          logger,
	}
}

func (h *Handlers) InitRoutes(r chi.Router) chi.Router {
	r.Use(
		middleware.RealIP,
		middleware.Recoverer,
		hlog.NewHandler(h.logger),
		hlog.AccessHandler(accessLog),
	)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("doc.json"),
	))
	r.Route("/api", func(r chi.Router) {
		r.Get("/products/{id}", h.StockHandler.GetProduct)

		r.Group(func(r chi.Router) {
			r.Use(auth.AuthMiddleware(h.jwtService))
			r.Post("/purchase", h.PurchaseHandler.Purchase)
			r.Post("/cart/checkout", h.PurchaseHandler.Checkout)
			r.Get("/user/balance", h.BalanceHandler.GetBalance)
			r.Get("/user/orders", h.OrderHandler.GetOrders)

			r.Route("/admin", func(r chi.Router) {
				r.Use(auth.AdminOnly)
				r.Post("/products/{id}/stock", h.StockHandler.Restock)
				r.Post("/users/{id}/credit", h.BalanceHandler.Credit)
			})
		})
	})

	return r
}

func accessLog(r *http.Request, status, size int, duration time.Duration) {
	hlog.FromRequest(r).Info().
		Str("method", r.Method).
		Stringer("url", r.URL).
		Str("remote", r.RemoteAddr).
		Int("status", status).
		Int("size", size).
		Dur("duration", duration).
		Msg("request")
}
