package service

import (
	"github.com/GlebRadaev/gamestore/internal/handlers/balance"
	"github.com/GlebRadaev/gamestore/internal/handlers/orders"
	"github.com/GlebRadaev/gamestore/internal/handlers/purchase"
	"github.com/GlebRadaev/gamestore/internal/handlers/stock"
	"github.com/GlebRadaev/gamestore/internal/pg"
	"github.com/GlebRadaev/gamestore/internal/repo"
	"github.com/GlebRadaev/gamestore/internal/sealer"
	"github.com/GlebRadaev/gamestore/internal/service/balanceservice"
	"github.com/GlebRadaev/gamestore/internal/service/orderservice"
	"github.com/GlebRadaev/gamestore/internal/service/purchaseservice"
	"github.com/GlebRadaev/gamestore/internal/service/stockservice"
)

type Services struct {
	PurchaseService purchase.Service
	OrderService    orders.Service
	BalanceService  balance.Service
	StockService    stock.Service
	SealStore       sealer.Store
}

func New(repo *repo.Repositories, cipher purchaseservice.Cipher, txManager pg.TXManager) *Services {
	balanceService := balanceservice.New(repo.UserRepo, txManager)
	stockService := stockservice.New(repo.ProductRepo, cipher, txManager)

	return &Services{
		PurchaseService: purchaseservice.New(repo.ProductRepo, repo.OrderRepo, balanceService, cipher, txManager),
		OrderService:    orderservice.New(repo.OrderRepo, cipher),
		BalanceService:  balanceService,
		StockService:    stockService,
		SealStore:       stockService,
	}
}
