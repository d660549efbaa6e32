package purchaseservice

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/GlebRadaev/gamestore/internal/domain"
	"github.com/GlebRadaev/gamestore/internal/pg"
	"github.com/GlebRadaev/gamestore/internal/service/balanceservice"
	"github.com/GlebRadaev/gamestore/pkg/metrics"
	"github.com/GlebRadaev/gamestore/pkg/stock"
)

//go:generate mockgen -destination=mock_purchaseservice.go -source=purchaseservice.go -package=purchaseservice

type ProductRepo interface {
	GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	GetManyForUpdate(ctx context.Context, ids []uuid.UUID) ([]domain.Product, error)
	UpdateStock(ctx context.Context, product *domain.Product) error
}

type OrderRepo interface {
	Create(ctx context.Context, order *domain.Order) error
}

type Ledger interface {
	LockBalance(ctx context.Context, userID uuid.UUID) (*domain.User, error)
	Charge(ctx context.Context, userID uuid.UUID, kind domain.CurrencyKind, amount decimal.Decimal) error
}

type Cipher interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(token string) (string, error)
}

type Service struct {
	productRepo ProductRepo
	orderRepo   OrderRepo
	ledger      Ledger
	cipher      Cipher
	txManager   pg.TXManager
}

func New(productRepo ProductRepo, orderRepo OrderRepo, ledger Ledger, cipher Cipher, txManager pg.TXManager) *Service {
	return &Service{
		productRepo: productRepo,
		orderRepo:   orderRepo,
		ledger:      ledger,
		cipher:      cipher,
		txManager:   txManager,
	}
}

type PurchaseResult struct {
	OrderID     uuid.UUID
	ProductName string
	Quantity    int
	TotalPrice  decimal.Decimal
	Currency    domain.CurrencyKind
}

type CheckoutOrder struct {
	OrderID     uuid.UUID
	ProductID   uuid.UUID
	ProductName string
	Price       decimal.Decimal
	Currency    domain.CurrencyKind
}

type CheckoutResult struct {
	PurchasedCount int
	TotalMoney     decimal.Decimal
	TotalPoints    decimal.Decimal
	Orders         []CheckoutOrder
}

// Purchase takes quantity units from one product's pool. The product and
// buyer rows stay locked until the whole purchase commits or rolls back.
func (s *Service) Purchase(ctx context.Context, userID, productID uuid.UUID, quantity int) (*PurchaseResult, error) {
	if quantity < 1 {
		record("purchase", ErrInvalidQuantity)
		return nil, ErrInvalidQuantity
	}

	var result *PurchaseResult
	err := s.txManager.Begin(ctx, func(ctx context.Context) error {
		product, err := s.productRepo.GetForUpdate(ctx, productID)
		if err != nil {
			return fmt.Errorf("lock product: %w", err)
		}
		if product == nil {
			return ErrProductNotFound
		}
		if product.IsSold {
			return ErrAlreadySold
		}

		total := product.UnitPrice().Mul(decimal.NewFromInt(int64(quantity)))

		buyer, err := s.ledger.LockBalance(ctx, userID)
		if err != nil {
			return err
		}
		if err := balanceservice.CheckFunds(buyer, product.Currency, total); err != nil {
			return err
		}

		units, err := s.units(product)
		if err != nil {
			return err
		}
		if len(units) < quantity {
			return fmt.Errorf("%w: requested %d, available %d", ErrOutOfStock, quantity, len(units))
		}
		given, remaining := stock.Take(units, quantity)

		order, err := s.createOrder(ctx, userID, product, total, given)
		if err != nil {
			return err
		}

		if err := s.ledger.Charge(ctx, userID, product.Currency, total); err != nil {
			return err
		}

		if err := s.writeStock(ctx, product, remaining, order.ID); err != nil {
			return err
		}

		result = &PurchaseResult{
			OrderID:     order.ID,
			ProductName: product.Name,
			Quantity:    quantity,
			TotalPrice:  total,
			Currency:    product.Currency,
		}
		return nil
	})
	record("purchase", err)
	if err != nil {
		return nil, err
	}

	metrics.UnitsAllocated.Add(float64(quantity))
	zap.L().Info("purchase completed",
		zap.String("user_id", userID.String()),
		zap.String("product_id", productID.String()),
		zap.String("order_id", result.OrderID.String()),
		zap.Int("quantity", quantity),
	)
	return result, nil
}

// Checkout buys every product in the cart whole, or none of them.
func (s *Service) Checkout(ctx context.Context, userID uuid.UUID, productIDs []uuid.UUID) (*CheckoutResult, error) {
	ids := dedupe(productIDs)
	if len(ids) == 0 {
		record("checkout", ErrEmptyCart)
		return nil, ErrEmptyCart
	}

	var (
		result *CheckoutResult
		units  int
	)
	err := s.txManager.Begin(ctx, func(ctx context.Context) error {
		units = 0
		products, err := s.productRepo.GetManyForUpdate(ctx, ids)
		if err != nil {
			return fmt.Errorf("lock products: %w", err)
		}
		byID := make(map[uuid.UUID]*domain.Product, len(products))
		for i := range products {
			byID[products[i].ID] = &products[i]
		}

		checkoutErr := &CheckoutError{SoldProductIDs: []uuid.UUID{}}
		stocks := make(map[uuid.UUID][]string, len(products))
		for _, id := range ids {
			product, ok := byID[id]
			if !ok {
				checkoutErr.MissingProductIDs = append(checkoutErr.MissingProductIDs, id)
				continue
			}
			if product.IsSold {
				checkoutErr.SoldProductIDs = append(checkoutErr.SoldProductIDs, id)
				continue
			}
			items, err := s.units(product)
			if err != nil {
				return err
			}
			if len(items) == 0 {
				checkoutErr.SoldProductIDs = append(checkoutErr.SoldProductIDs, id)
				continue
			}
			stocks[id] = items
		}
		switch {
		case len(checkoutErr.MissingProductIDs) > 0:
			checkoutErr.Err = ErrProductNotFound
			return checkoutErr
		case len(checkoutErr.SoldProductIDs) > 0:
			checkoutErr.Err = ErrAlreadySold
			return checkoutErr
		}

		res := &CheckoutResult{TotalMoney: decimal.Zero, TotalPoints: decimal.Zero}
		for _, id := range ids {
			product := byID[id]
			if product.Currency == domain.CurrencyPoint {
				res.TotalPoints = res.TotalPoints.Add(product.UnitPrice())
			} else {
				res.TotalMoney = res.TotalMoney.Add(product.UnitPrice())
			}
		}

		buyer, err := s.ledger.LockBalance(ctx, userID)
		if err != nil {
			return err
		}
		if err := balanceservice.CheckFunds(buyer, domain.CurrencyMoney, res.TotalMoney); err != nil {
			return err
		}
		if err := balanceservice.CheckFunds(buyer, domain.CurrencyPoint, res.TotalPoints); err != nil {
			return err
		}

		for _, id := range ids {
			product := byID[id]
			order, err := s.createOrder(ctx, userID, product, product.UnitPrice(), stocks[id])
			if err != nil {
				return err
			}
			if err := s.writeStock(ctx, product, nil, order.ID); err != nil {
				return err
			}
			units += len(stocks[id])
			res.Orders = append(res.Orders, CheckoutOrder{
				OrderID:     order.ID,
				ProductID:   product.ID,
				ProductName: product.Name,
				Price:       order.TotalPrice,
				Currency:    product.Currency,
			})
		}

		if err := s.ledger.Charge(ctx, userID, domain.CurrencyMoney, res.TotalMoney); err != nil {
			return err
		}
		if err := s.ledger.Charge(ctx, userID, domain.CurrencyPoint, res.TotalPoints); err != nil {
			return err
		}

		res.PurchasedCount = len(res.Orders)
		result = res
		return nil
	})
	record("checkout", err)
	if err != nil {
		return nil, err
	}

	metrics.UnitsAllocated.Add(float64(units))
	zap.L().Info("checkout completed",
		zap.String("user_id", userID.String()),
		zap.Int("purchased", result.PurchasedCount),
		zap.String("total_money", result.TotalMoney.String()),
		zap.String("total_points", result.TotalPoints.String()),
	)
	return result, nil
}

func (s *Service) units(product *domain.Product) ([]string, error) {
	blob, err := s.cipher.Decrypt(product.SecretBlob)
	if err != nil {
		return nil, fmt.Errorf("decrypt stock of %s: %w", product.ID, err)
	}
	return stock.Split(blob, product.Separator), nil
}

func (s *Service) createOrder(ctx context.Context, userID uuid.UUID, product *domain.Product, total decimal.Decimal, given []string) (*domain.Order, error) {
	givenData, err := s.cipher.Encrypt(stock.Join(given, product.Separator))
	if err != nil {
		return nil, fmt.Errorf("encrypt given data: %w", err)
	}
	productID := product.ID
	order := &domain.Order{
		ID:          uuid.New(),
		UserID:      userID,
		ProductID:   &productID,
		ProductName: product.Name,
		TotalPrice:  total,
		Currency:    product.Currency,
		Quantity:    len(given),
		GivenData:   givenData,
		Status:      domain.OrderStatusCompleted,
	}
	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}
	return order, nil
}

// writeStock stores the remaining units. A depleted pool is marked sold and
// linked to the order that emptied it.
func (s *Service) writeStock(ctx context.Context, product *domain.Product, remaining []string, orderID uuid.UUID) error {
	blob, err := s.cipher.Encrypt(stock.Join(remaining, product.Separator))
	if err != nil {
		return fmt.Errorf("encrypt remaining stock: %w", err)
	}
	product.SecretBlob = blob
	product.IsSold = len(remaining) == 0
	if product.IsSold {
		product.OrderID = &orderID
	}
	if err := s.productRepo.UpdateStock(ctx, product); err != nil {
		return fmt.Errorf("update stock: %w", err)
	}
	return nil
}

func dedupe(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func record(operation string, err error) {
	metrics.Outcomes.WithLabelValues(operation, outcome(err)).Inc()
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrProductNotFound), errors.Is(err, ErrUserNotFound):
		return "not_found"
	case errors.Is(err, ErrAlreadySold), errors.Is(err, ErrOutOfStock):
		return "unavailable"
	case errors.Is(err, balanceservice.ErrInsufficientBalance):
		return "insufficient_funds"
	case errors.Is(err, ErrInvalidQuantity), errors.Is(err, ErrEmptyCart):
		return "invalid"
	default:
		return "failed"
	}
}
