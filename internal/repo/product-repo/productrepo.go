package productrepo

import (
	"context"
	"errors"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/GlebRadaev/gamestore/internal/domain"
	"github.com/GlebRadaev/gamestore/internal/pg"
)

// ErrConcurrentUpdate is returned when the product version moved between
// the locked read and the write. The transaction manager retries it.
var ErrConcurrentUpdate = fmt.Errorf("product changed concurrently: %w", pg.ErrConflict)

// legacyBlobPattern matches anything that is not an ivHex:cipherHex token.
const legacyBlobPattern = `^[0-9a-fA-F]{32}:([0-9a-fA-F]{32})+$`

var productColumns = []any{
	"id", "name", "price", "discount_price", "currency",
	"secret_blob", "separator", "is_sold", "order_id", "version",
}

type Repository struct {
	db pg.Database
}

func New(db pg.Database) *Repository {
	return &Repository{db: db}
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	query := `
        SELECT id, name, price, discount_price, currency, secret_blob, separator, is_sold, order_id, version
        FROM products
        WHERE id = $1
    `
	product, err := scanProduct(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		zap.L().Error("can't get product", zap.String("product_id", id.String()), zap.Error(err))
		return nil, err
	}
	return product, nil
}

// GetForUpdate reads the product and holds its row lock until the
// surrounding transaction ends.
func (r *Repository) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	query := `
        SELECT id, name, price, discount_price, currency, secret_blob, separator, is_sold, order_id, version
        FROM products
        WHERE id = $1
        FOR UPDATE
    `
	product, err := scanProduct(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		zap.L().Error("can't lock product", zap.String("product_id", id.String()), zap.Error(err))
		return nil, err
	}
	return product, nil
}

// GetManyForUpdate locks every existing product in ids in ascending id order.
// Missing ids are simply absent from the result.
func (r *Repository) GetManyForUpdate(ctx context.Context, ids []uuid.UUID) ([]domain.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, id.String())
	}

	query, args, err := goqu.Dialect("postgres").
		From("products").
		Select(productColumns...).
		Where(goqu.I("id").In(keys)).
		Order(goqu.I("id").Asc()).
		ForUpdate(exp.Wait).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build products lock query: %w", err)
	}

	return r.queryProducts(ctx, query, args...)
}

// FindUnsealed returns products whose blob is still stored as plaintext.
func (r *Repository) FindUnsealed(ctx context.Context, limit uint32) ([]domain.Product, error) {
	query, args, err := goqu.Dialect("postgres").
		From("products").
		Select(productColumns...).
		Where(
			goqu.I("secret_blob").Neq(""),
			goqu.L("secret_blob !~ ?", legacyBlobPattern),
		).
		Order(goqu.I("id").Asc()).
		Limit(uint(limit)).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build unsealed query: %w", err)
	}

	return r.queryProducts(ctx, query, args...)
}

// UpdateStock writes the blob, sold flag and order link, guarded by the
// version read earlier. On success product.Version is advanced.
func (r *Repository) UpdateStock(ctx context.Context, product *domain.Product) error {
	query := `
        UPDATE products
        SET secret_blob = $1, is_sold = $2, order_id = $3, version = version + 1, updated_at = NOW()
        WHERE id = $4 AND version = $5
    `
	var orderID any
	if product.OrderID != nil {
		orderID = *product.OrderID
	}

	tag, err := r.db.Exec(ctx, query, product.SecretBlob, product.IsSold, orderID, product.ID, product.Version)
	if err != nil {
		zap.L().Error("can't update product stock", zap.String("product_id", product.ID.String()), zap.Error(err))
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrConcurrentUpdate
	}
	product.Version++
	return nil
}

func (r *Repository) queryProducts(ctx context.Context, query string, args ...any) ([]domain.Product, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		zap.L().Error("can't query products", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			zap.L().Error("can't scan product row", zap.Error(err))
			return nil, err
		}
		products = append(products, *product)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return products, nil
}

func scanProduct(row pgx.Row) (*domain.Product, error) {
	var (
		product domain.Product
		orderID uuid.NullUUID
	)
	err := row.Scan(
		&product.ID, &product.Name, &product.Price, &product.DiscountPrice, &product.Currency,
		&product.SecretBlob, &product.Separator, &product.IsSold, &orderID, &product.Version,
	)
	if err != nil {
		return nil, err
	}
	if orderID.Valid {
		product.OrderID = &orderID.UUID
	}
	return &product, nil
}
