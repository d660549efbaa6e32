package stockservice

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/GlebRadaev/gamestore/internal/domain"
	"github.com/GlebRadaev/gamestore/internal/pg"
	"github.com/GlebRadaev/gamestore/pkg/stock"
	"github.com/GlebRadaev/gamestore/pkg/vault"
)

//go:generate mockgen -destination=mock_stockservice.go -source=stockservice.go -package=stockservice

type Repo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	UpdateStock(ctx context.Context, product *domain.Product) error
	FindUnsealed(ctx context.Context, limit uint32) ([]domain.Product, error)
}

type Cipher interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(token string) (string, error)
}

type Service struct {
	repo      Repo
	cipher    Cipher
	txManager pg.TXManager
}

func New(repo Repo, cipher Cipher, txManager pg.TXManager) *Service {
	return &Service{
		repo:      repo,
		cipher:    cipher,
		txManager: txManager,
	}
}

var (
	ErrProductNotFound = errors.New("product not found")
	ErrNoUnits         = errors.New("no stock units supplied")
)

type ProductView struct {
	ID            uuid.UUID
	Name          string
	Price         decimal.Decimal
	DiscountPrice *decimal.Decimal
	UnitPrice     decimal.Decimal
	Currency      domain.CurrencyKind
	IsSold        bool
	Stock         int
}

func (s *Service) GetProduct(ctx context.Context, productID uuid.UUID) (*ProductView, error) {
	product, err := s.repo.GetByID(ctx, productID)
	if err != nil {
		zap.L().Error("failed to get product", zap.Error(err))
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}

	plain, err := s.cipher.Decrypt(product.SecretBlob)
	if err != nil {
		return nil, fmt.Errorf("decrypt stock of %s: %w", product.ID, err)
	}

	view := &ProductView{
		ID:        product.ID,
		Name:      product.Name,
		Price:     product.Price,
		UnitPrice: product.UnitPrice(),
		Currency:  product.Currency,
		IsSold:    product.IsSold,
		Stock:     stock.Count(plain, product.Separator),
	}
	if product.DiscountPrice.Valid {
		discount := product.DiscountPrice.Decimal
		view.DiscountPrice = &discount
	}
	return view, nil
}

// Restock appends units to the product's pool under the same row lock
// purchases take, and returns the new unit count.
func (s *Service) Restock(ctx context.Context, productID uuid.UUID, units string) (int, error) {
	added := stock.Split(units, stock.Newline)
	if len(added) == 0 {
		return 0, ErrNoUnits
	}

	var count int
	err := s.txManager.Begin(ctx, func(ctx context.Context) error {
		product, err := s.repo.GetForUpdate(ctx, productID)
		if err != nil {
			return err
		}
		if product == nil {
			return ErrProductNotFound
		}

		plain, err := s.cipher.Decrypt(product.SecretBlob)
		if err != nil {
			return fmt.Errorf("decrypt stock of %s: %w", product.ID, err)
		}
		pool := append(stock.Split(plain, product.Separator), added...)

		blob, err := s.cipher.Encrypt(stock.Join(pool, product.Separator))
		if err != nil {
			return fmt.Errorf("encrypt stock: %w", err)
		}
		product.SecretBlob = blob
		product.IsSold = false
		if err := s.repo.UpdateStock(ctx, product); err != nil {
			return err
		}
		count = len(pool)
		return nil
	})
	if err != nil {
		return 0, err
	}

	zap.L().Info("product restocked",
		zap.String("product_id", productID.String()),
		zap.Int("added", len(added)),
		zap.Int("stock", count),
	)
	return count, nil
}

// FindUnsealed lists products whose blob is still stored as plaintext.
func (s *Service) FindUnsealed(ctx context.Context, limit uint32) ([]domain.Product, error) {
	products, err := s.repo.FindUnsealed(ctx, limit)
	if err != nil {
		zap.L().Error("failed to find unsealed products", zap.Error(err))
		return nil, err
	}
	return products, nil
}

// Seal encrypts a legacy plaintext blob in place. It reports false when the
// product is gone or was sealed by someone else first.
func (s *Service) Seal(ctx context.Context, productID uuid.UUID) (bool, error) {
	var sealed bool
	err := s.txManager.Begin(ctx, func(ctx context.Context) error {
		sealed = false
		product, err := s.repo.GetForUpdate(ctx, productID)
		if err != nil {
			return err
		}
		if product == nil || vault.LooksEncrypted(product.SecretBlob) {
			return nil
		}

		blob, err := s.cipher.Encrypt(product.SecretBlob)
		if err != nil {
			return fmt.Errorf("encrypt stock: %w", err)
		}
		product.SecretBlob = blob
		if err := s.repo.UpdateStock(ctx, product); err != nil {
			return err
		}
		sealed = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return sealed, nil
}
