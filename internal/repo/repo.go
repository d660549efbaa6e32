package repo

import (
	"github.com/GlebRadaev/gamestore/internal/pg"
	orderrepo "github.com/GlebRadaev/gamestore/internal/repo/order-repo"
	productrepo "github.com/GlebRadaev/gamestore/internal/repo/product-repo"
	userrepo "github.com/GlebRadaev/gamestore/internal/repo/user-repo"
	vaultrepo "github.com/GlebRadaev/gamestore/internal/repo/vault-repo"
	"github.com/GlebRadaev/gamestore/internal/service/balanceservice"
	"github.com/GlebRadaev/gamestore/internal/service/orderservice"
	"github.com/GlebRadaev/gamestore/internal/service/purchaseservice"
	"github.com/GlebRadaev/gamestore/internal/service/stockservice"
	"github.com/GlebRadaev/gamestore/pkg/vault"
)

type ProductRepo interface {
	purchaseservice.ProductRepo
	stockservice.Repo
}

type OrderRepo interface {
	purchaseservice.OrderRepo
	orderservice.Repo
}

type Repositories struct {
	ProductRepo ProductRepo
	UserRepo    balanceservice.UserRepo
	OrderRepo   OrderRepo
	VaultRepo   vault.KeyCheckStore
}

func New(conn pg.Database) *Repositories {
	return &Repositories{
		ProductRepo: productrepo.New(conn),
		UserRepo:    userrepo.New(conn),
		OrderRepo:   orderrepo.New(conn),
		VaultRepo:   vaultrepo.New(conn),
	}
}
