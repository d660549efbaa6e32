package purchaseservice_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"golang.org/x/sync/errgroup"

	"github.com/GlebRadaev/gamestore/internal/pg"
	orderrepo "github.com/GlebRadaev/gamestore/internal/repo/order-repo"
	productrepo "github.com/GlebRadaev/gamestore/internal/repo/product-repo"
	userrepo "github.com/GlebRadaev/gamestore/internal/repo/user-repo"
	"github.com/GlebRadaev/gamestore/internal/service/balanceservice"
	"github.com/GlebRadaev/gamestore/internal/service/purchaseservice"
	"github.com/GlebRadaev/gamestore/pkg/stock"
	"github.com/GlebRadaev/gamestore/pkg/vault"
)

type fixture struct {
	pool    *pgxpool.Pool
	vault   *vault.Vault
	service *purchaseservice.Service
}

func setupPostgres(t *testing.T) *fixture {
	t.Helper()
	if testing.Short() {
		t.Skip("integration test")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:17",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "postgres",
				"POSTGRES_PASSWORD": "postgres",
				"POSTGRES_DB":       "gamestore",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dsn := fmt.Sprintf("postgres://postgres:postgres@%s:%d/gamestore?sslmode=disable", host, port.Int())
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.NoError(t, pg.RunMigrations(pool))

	v, err := vault.New("integration-vault-key-of-32-byte")
	require.NoError(t, err)

	db := pg.New(pool)
	txManager := pg.NewTXManager(pool, 5)
	ledger := balanceservice.New(userrepo.New(db), txManager)
	service := purchaseservice.New(productrepo.New(db), orderrepo.New(db), ledger, v, txManager)

	return &fixture{pool: pool, vault: v, service: service}
}

func (f *fixture) addUser(t *testing.T, credit string, points int64) uuid.UUID {
	t.Helper()
	id := uuid.New()
	_, err := f.pool.Exec(context.Background(),
		"INSERT INTO users (id, credit_balance, point_balance) VALUES ($1, $2, $3)", id, credit, points)
	require.NoError(t, err)
	return id
}

func (f *fixture) addProduct(t *testing.T, price string, units ...string) uuid.UUID {
	t.Helper()
	blob, err := f.vault.Encrypt(stock.Join(units, stock.Newline))
	require.NoError(t, err)
	id := uuid.New()
	_, err = f.pool.Exec(context.Background(),
		"INSERT INTO products (id, name, price, currency, secret_blob, is_sold) VALUES ($1, $2, $3, 'MONEY', $4, $5)",
		id, "Product "+id.String()[:8], price, blob, len(units) == 0)
	require.NoError(t, err)
	return id
}

func (f *fixture) credit(t *testing.T, userID uuid.UUID) decimal.Decimal {
	t.Helper()
	var credit string
	require.NoError(t, f.pool.QueryRow(context.Background(),
		"SELECT credit_balance::text FROM users WHERE id = $1", userID).Scan(&credit))
	return decimal.RequireFromString(credit)
}

func (f *fixture) remaining(t *testing.T, productID uuid.UUID) ([]string, bool) {
	t.Helper()
	var (
		blob string
		sold bool
	)
	require.NoError(t, f.pool.QueryRow(context.Background(),
		"SELECT secret_blob, is_sold FROM products WHERE id = $1", productID).Scan(&blob, &sold))
	plain, err := f.vault.Decrypt(blob)
	require.NoError(t, err)
	return stock.Split(plain, stock.Newline), sold
}

func (f *fixture) orderCount(t *testing.T, userID uuid.UUID) int {
	t.Helper()
	var n int
	require.NoError(t, f.pool.QueryRow(context.Background(),
		"SELECT COUNT(*) FROM orders WHERE user_id = $1", userID).Scan(&n))
	return n
}

func TestIntegration_ConcurrentPurchasesNeverOversell(t *testing.T) {
	f := setupPostgres(t)
	ctx := context.Background()

	units := []string{"u1:pw", "u2:pw", "u3:pw", "u4:pw", "u5:pw"}
	productID := f.addProduct(t, "10", units...)
	buyers := make([]uuid.UUID, 20)
	for i := range buyers {
		buyers[i] = f.addUser(t, "100", 0)
	}

	var (
		mu       sync.Mutex
		orderIDs []uuid.UUID
	)
	g, gctx := errgroup.WithContext(ctx)
	for _, buyer := range buyers {
		g.Go(func() error {
			result, err := f.service.Purchase(gctx, buyer, productID, 1)
			switch {
			case err == nil:
				mu.Lock()
				orderIDs = append(orderIDs, result.OrderID)
				mu.Unlock()
				return nil
			case errors.Is(err, purchaseservice.ErrAlreadySold), errors.Is(err, purchaseservice.ErrOutOfStock):
				return nil
			default:
				return err
			}
		})
	}
	require.NoError(t, g.Wait())

	assert.Len(t, orderIDs, len(units))
	left, sold := f.remaining(t, productID)
	assert.Empty(t, left)
	assert.True(t, sold)

	given := map[string]struct{}{}
	rows, err := f.pool.Query(ctx, "SELECT given_data FROM orders WHERE product_id = $1", productID)
	require.NoError(t, err)
	defer rows.Close()
	for rows.Next() {
		var token string
		require.NoError(t, rows.Scan(&token))
		plain, err := f.vault.Decrypt(token)
		require.NoError(t, err)
		given[plain] = struct{}{}
	}
	assert.Len(t, given, len(units))

	spent := decimal.Zero
	for _, buyer := range buyers {
		balance := f.credit(t, buyer)
		assert.False(t, balance.IsNegative())
		spent = spent.Add(decimal.NewFromInt(100).Sub(balance))
	}
	assert.True(t, decimal.NewFromInt(50).Equal(spent))
}

func TestIntegration_FailedPurchaseChangesNothing(t *testing.T) {
	f := setupPostgres(t)
	ctx := context.Background()

	productID := f.addProduct(t, "100", "acct1:pw1")
	buyer := f.addUser(t, "50", 0)

	_, err := f.service.Purchase(ctx, buyer, productID, 1)
	assert.ErrorIs(t, err, balanceservice.ErrInsufficientBalance)

	assert.True(t, decimal.NewFromInt(50).Equal(f.credit(t, buyer)))
	left, sold := f.remaining(t, productID)
	assert.Equal(t, []string{"acct1:pw1"}, left)
	assert.False(t, sold)
	assert.Zero(t, f.orderCount(t, buyer))
}

func TestIntegration_PurchaseScenarios(t *testing.T) {
	f := setupPostgres(t)
	ctx := context.Background()

	single := f.addProduct(t, "100", "acct1:pw1")
	buyer := f.addUser(t, "150", 0)
	_, err := f.service.Purchase(ctx, buyer, single, 1)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(50).Equal(f.credit(t, buyer)))
	_, sold := f.remaining(t, single)
	assert.True(t, sold)

	pooled := f.addProduct(t, "1", "a:1", "b:2", "c:3")
	_, err = f.service.Purchase(ctx, buyer, pooled, 2)
	require.NoError(t, err)
	left, sold := f.remaining(t, pooled)
	assert.Equal(t, []string{"c:3"}, left)
	assert.False(t, sold)
}

func TestIntegration_CheckoutWithSoldItemRollsBack(t *testing.T) {
	f := setupPostgres(t)
	ctx := context.Background()

	first := f.addProduct(t, "10", "a")
	sold := f.addProduct(t, "10")
	third := f.addProduct(t, "10", "c")
	buyer := f.addUser(t, "100", 0)

	_, err := f.service.Checkout(ctx, buyer, []uuid.UUID{first, sold, third})

	var checkoutErr *purchaseservice.CheckoutError
	require.ErrorAs(t, err, &checkoutErr)
	assert.Equal(t, []uuid.UUID{sold}, checkoutErr.SoldProductIDs)
	assert.Zero(t, f.orderCount(t, buyer))
	assert.True(t, decimal.NewFromInt(100).Equal(f.credit(t, buyer)))

	_, err = f.service.Checkout(ctx, buyer, []uuid.UUID{first, third})
	require.NoError(t, err)
	assert.Equal(t, 2, f.orderCount(t, buyer))
	assert.True(t, decimal.NewFromInt(80).Equal(f.credit(t, buyer)))
}

func TestIntegration_OrderOutlivesDeletedProduct(t *testing.T) {
	f := setupPostgres(t)
	ctx := context.Background()

	product := f.addProduct(t, "10", "acct:pw")
	buyer := f.addUser(t, "10", 0)
	result, err := f.service.Purchase(ctx, buyer, product, 1)
	require.NoError(t, err)

	_, err = f.pool.Exec(ctx, "DELETE FROM products WHERE id = $1", product)
	require.NoError(t, err)

	var (
		productID   *uuid.UUID
		productName string
	)
	require.NoError(t, f.pool.QueryRow(ctx,
		"SELECT product_id, product_name FROM orders WHERE id = $1", result.OrderID).Scan(&productID, &productName))
	assert.Nil(t, productID)
	assert.NotEmpty(t, productName)

	_, err = f.pool.Exec(ctx,
		"INSERT INTO orders (id, user_id, product_id, product_name, total_price, currency, quantity, given_data) VALUES ($1, $2, $3, 'ghost', 1, 'MONEY', 1, 'x')",
		uuid.New(), buyer, uuid.New())
	assert.Error(t, err)
}

func TestIntegration_ProductPriceConstraints(t *testing.T) {
	f := setupPostgres(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		price    string
		discount *string
		currency string
		wantErr  bool
	}{
		{name: "Whole point price", price: "30", currency: "POINT"},
		{name: "Fractional point price", price: "30.5", currency: "POINT", wantErr: true},
		{name: "Fractional point discount", price: "30", discount: ptr("20.5"), currency: "POINT", wantErr: true},
		{name: "Fractional money price", price: "30.5", currency: "MONEY"},
		{name: "Zero price", price: "0", currency: "MONEY", wantErr: true},
		{name: "Discount equal to price", price: "10", discount: ptr("10"), currency: "MONEY", wantErr: true},
		{name: "Discount below price", price: "10", discount: ptr("9.99"), currency: "MONEY"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.pool.Exec(ctx,
				"INSERT INTO products (id, name, price, discount_price, currency) VALUES ($1, $2, $3, $4, $5)",
				uuid.New(), tt.name, tt.price, tt.discount, tt.currency)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func ptr(s string) *string { return &s }
