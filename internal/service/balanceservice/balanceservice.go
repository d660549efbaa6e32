package balanceservice

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/GlebRadaev/gamestore/internal/domain"
	"github.com/GlebRadaev/gamestore/internal/pg"
)

//go:generate mockgen -destination=mock_balanceservice.go -source=balanceservice.go -package=balanceservice

type UserRepo interface {
	GetByID(ctx context.Context, userID uuid.UUID) (*domain.User, error)
	GetForUpdate(ctx context.Context, userID uuid.UUID) (*domain.User, error)
	AddBalance(ctx context.Context, userID uuid.UUID, kind domain.CurrencyKind, delta decimal.Decimal) (*domain.User, error)
}

type Service struct {
	userRepo  UserRepo
	txManager pg.TXManager
}

func New(userRepo UserRepo, txManager pg.TXManager) *Service {
	return &Service{
		userRepo:  userRepo,
		txManager: txManager,
	}
}

var (
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrUserNotFound        = errors.New("user not found")
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrInvalidCurrency     = errors.New("invalid currency")
)

// InsufficientFundsError carries the shortfall. It matches ErrInsufficientBalance.
type InsufficientFundsError struct {
	Currency  domain.CurrencyKind
	Required  decimal.Decimal
	Available decimal.Decimal
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient %s balance: required %s, available %s",
		e.Currency, e.Required.String(), e.Available.String())
}

func (e *InsufficientFundsError) Is(target error) bool {
	return target == ErrInsufficientBalance
}

// ValidateAmount rejects negative amounts and fractional points.
func ValidateAmount(kind domain.CurrencyKind, amount decimal.Decimal) error {
	if !kind.Valid() {
		return ErrInvalidCurrency
	}
	if amount.IsNegative() {
		return ErrInvalidAmount
	}
	if kind == domain.CurrencyPoint && !amount.IsInteger() {
		return fmt.Errorf("%w: points must be whole", ErrInvalidAmount)
	}
	return nil
}

// CheckFunds reports whether user can pay required in kind.
func CheckFunds(user *domain.User, kind domain.CurrencyKind, required decimal.Decimal) error {
	available := user.Balance(kind)
	if available.LessThan(required) {
		return &InsufficientFundsError{Currency: kind, Required: required, Available: available}
	}
	return nil
}

func (s *Service) GetBalance(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		zap.L().Error("failed to get balance", zap.Error(err))
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// LockBalance reads the user row under lock. Call it inside a transaction.
func (s *Service) LockBalance(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	user, err := s.userRepo.GetForUpdate(ctx, userID)
	if err != nil {
		zap.L().Error("failed to lock balance", zap.Error(err))
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// Charge debits amount from the user's balance in kind. Inside an open
// transaction it joins that transaction and does not commit on its own.
func (s *Service) Charge(ctx context.Context, userID uuid.UUID, kind domain.CurrencyKind, amount decimal.Decimal) error {
	if err := ValidateAmount(kind, amount); err != nil {
		return err
	}
	if amount.IsZero() {
		return nil
	}

	return s.txManager.Begin(ctx, func(ctx context.Context) error {
		user, err := s.LockBalance(ctx, userID)
		if err != nil {
			return err
		}
		if err := CheckFunds(user, kind, amount); err != nil {
			return err
		}
		if _, err := s.userRepo.AddBalance(ctx, userID, kind, amount.Neg()); err != nil {
			zap.L().Error("failed to charge balance", zap.Error(err))
			return err
		}
		return nil
	})
}

// Credit tops up the user's balance in kind and returns the new balances.
func (s *Service) Credit(ctx context.Context, userID uuid.UUID, kind domain.CurrencyKind, amount decimal.Decimal) (*domain.User, error) {
	if err := ValidateAmount(kind, amount); err != nil {
		return nil, err
	}
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	var updated *domain.User
	err := s.txManager.Begin(ctx, func(ctx context.Context) error {
		if _, err := s.LockBalance(ctx, userID); err != nil {
			return err
		}
		user, err := s.userRepo.AddBalance(ctx, userID, kind, amount)
		if err != nil {
			zap.L().Error("failed to credit balance", zap.Error(err))
			return err
		}
		updated = user
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}
