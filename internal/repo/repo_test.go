package repo

import (
	"testing"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	orderrepo "github.com/GlebRadaev/gamestore/internal/repo/order-repo"
	productrepo "github.com/GlebRadaev/gamestore/internal/repo/product-repo"
	userrepo "github.com/GlebRadaev/gamestore/internal/repo/user-repo"
	vaultrepo "github.com/GlebRadaev/gamestore/internal/repo/vault-repo"
)

func NewMock(t *testing.T) (*Repositories, pgxmock.PgxPoolIface) {
	mockDB, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mockDB.Close)

	return New(mockDB), mockDB
}

func TestNew(t *testing.T) {
	repo, mock := NewMock(t)

	assert.NotNil(t, repo.ProductRepo)
	assert.NotNil(t, repo.UserRepo)
	assert.NotNil(t, repo.OrderRepo)

	assert.IsType(t, &productrepo.Repository{}, repo.ProductRepo)
	assert.IsType(t, &userrepo.Repository{}, repo.UserRepo)
	assert.IsType(t, &orderrepo.Repository{}, repo.OrderRepo)
	assert.IsType(t, &vaultrepo.Repository{}, repo.VaultRepo)

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unmet expectations: %v", err)
	}
}
