package vaultrepo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/GlebRadaev/gamestore/internal/pg"
)

// keyCheckID pins the single row of vault_key_check.
const keyCheckID = 1

type Repository struct {
	db pg.Database
}

func New(db pg.Database) *Repository {
	return &Repository{
		db: db,
	}
}

func (repo *Repository) GetKeyCheck(ctx context.Context) (string, bool, error) {
	var token string
	err := repo.db.QueryRow(ctx, "SELECT token FROM vault_key_check WHERE id = $1", keyCheckID).Scan(&token)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		zap.L().Error("can't load vault key check", zap.Error(err))
		return "", false, err
	}
	return token, true, nil
}

// SaveKeyCheck stores token unless a check already exists.
func (repo *Repository) SaveKeyCheck(ctx context.Context, token string) error {
	_, err := repo.db.Exec(ctx,
		"INSERT INTO vault_key_check (id, token) VALUES ($1, $2) ON CONFLICT (id) DO NOTHING",
		keyCheckID, token)
	if err != nil {
		zap.L().Error("can't save vault key check", zap.Error(err))
		return err
	}
	return nil
}
