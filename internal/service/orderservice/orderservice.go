package orderservice

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/GlebRadaev/gamestore/internal/domain"
	"github.com/GlebRadaev/gamestore/pkg/stock"
)

//go:generate mockgen -destination=mock_orderservice.go -source=orderservice.go -package=orderservice

type Repo interface {
	FindByUser(ctx context.Context, userID uuid.UUID, filter domain.OrderFilter) ([]domain.Order, error)
}

type Decrypter interface {
	Decrypt(token string) (string, error)
}

type Service struct {
	repo   Repo
	cipher Decrypter
}

func New(repo Repo, cipher Decrypter) *Service {
	return &Service{
		repo:   repo,
		cipher: cipher,
	}
}

const (
	DefaultLimit uint = 50
	MaxLimit     uint = 200
)

// Redemption is an order together with the units it handed out.
type Redemption struct {
	domain.Order
	Units []string
}

// GetOrders returns the buyer's redemption history, newest first.
func (s *Service) GetOrders(ctx context.Context, userID uuid.UUID, filter domain.OrderFilter) ([]Redemption, error) {
	switch {
	case filter.Limit == 0:
		filter.Limit = DefaultLimit
	case filter.Limit > MaxLimit:
		filter.Limit = MaxLimit
	}

	orders, err := s.repo.FindByUser(ctx, userID, filter)
	if err != nil {
		zap.L().Error("failed to get orders", zap.Error(err))
		return nil, err
	}

	history := make([]Redemption, 0, len(orders))
	for _, order := range orders {
		plain, err := s.cipher.Decrypt(order.GivenData)
		if err != nil {
			zap.L().Error("failed to decrypt order data", zap.String("order_id", order.ID.String()), zap.Error(err))
			return nil, fmt.Errorf("decrypt order %s: %w", order.ID, err)
		}
		history = append(history, Redemption{
			Order: order,
			Units: stock.Split(plain, stock.Newline),
		})
	}
	return history, nil
}
