package userrepo

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/GlebRadaev/gamestore/internal/domain"
	"github.com/GlebRadaev/gamestore/internal/pg"
)

type Repository struct {
	db pg.Database
}

func New(db pg.Database) *Repository {
	return &Repository{
		db: db,
	}
}

func (repo *Repository) GetByID(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	return repo.get(ctx, "SELECT id, credit_balance, point_balance FROM users WHERE id = $1", userID)
}

// GetForUpdate locks the user row until the surrounding transaction ends.
func (repo *Repository) GetForUpdate(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	return repo.get(ctx, "SELECT id, credit_balance, point_balance FROM users WHERE id = $1 FOR UPDATE", userID)
}

// AddBalance shifts one balance by delta and returns the updated row.
// A negative delta that would overdraw is rejected by the table check.
func (repo *Repository) AddBalance(ctx context.Context, userID uuid.UUID, kind domain.CurrencyKind, delta decimal.Decimal) (*domain.User, error) {
	var (
		query string
		arg   any
	)
	switch kind {
	case domain.CurrencyPoint:
		query = `
			UPDATE users SET point_balance = point_balance + $1
			WHERE id = $2
			RETURNING id, credit_balance, point_balance
		`
		arg = delta.IntPart()
	default:
		query = `
			UPDATE users SET credit_balance = credit_balance + $1
			WHERE id = $2
			RETURNING id, credit_balance, point_balance
		`
		arg = delta
	}

	user, err := repo.get(ctx, query, arg, userID)
	if err != nil {
		zap.L().Error("can't update user balance", zap.String("user_id", userID.String()), zap.Error(err))
		return nil, err
	}
	return user, nil
}

func (repo *Repository) get(ctx context.Context, query string, args ...any) (*domain.User, error) {
	var user domain.User
	err := repo.db.QueryRow(ctx, query, args...).Scan(&user.ID, &user.CreditBalance, &user.PointBalance)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		zap.L().Error("can't get user", zap.Error(err))
		return nil, err
	}
	return &user, nil
}
