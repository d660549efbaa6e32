package orderrepo

import (
	"context"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/google/uuid"
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

// Create inserts the order and fills in its purchase time.
func (r *Repository) Create(ctx context.Context, order *domain.Order) error {
	query := `
        INSERT INTO orders (id, user_id, product_id, product_name, total_price, currency, quantity, given_data, status)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        RETURNING purchased_at
    `
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	var productID any
	if order.ProductID != nil {
		productID = *order.ProductID
	}

	err := r.db.QueryRow(ctx, query,
		order.ID, order.UserID, productID, order.ProductName, order.TotalPrice,
		order.Currency, order.Quantity, order.GivenData, order.Status,
	).Scan(&order.PurchasedAt)
	if err != nil {
		zap.L().Error("can't save order", zap.String("order_id", order.ID.String()), zap.Error(err))
		return err
	}
	return nil
}

// FindByUser returns the user's orders, newest first.
func (r *Repository) FindByUser(ctx context.Context, userID uuid.UUID, filter domain.OrderFilter) ([]domain.Order, error) {
	where := []goqu.Expression{goqu.I("user_id").Eq(userID.String())}
	if filter.ProductID != nil {
		where = append(where, goqu.I("product_id").Eq(filter.ProductID.String()))
	}

	ds := goqu.Dialect("postgres").
		From("orders").
		Select("id", "user_id", "product_id", "product_name", "total_price", "currency", "quantity", "given_data", "status", "purchased_at").
		Where(where...).
		Order(goqu.I("purchased_at").Desc(), goqu.I("id").Desc())
	if filter.Limit > 0 {
		ds = ds.Limit(filter.Limit)
	}

	query, args, err := ds.Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build orders query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		zap.L().Error("can't get orders", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		var (
			order     domain.Order
			productID uuid.NullUUID
		)
		err := rows.Scan(&order.ID, &order.UserID, &productID, &order.ProductName, &order.TotalPrice,
			&order.Currency, &order.Quantity, &order.GivenData, &order.Status, &order.PurchasedAt)
		if err != nil {
			zap.L().Error("can't scan order row", zap.Error(err))
			return nil, err
		}
		if productID.Valid {
			order.ProductID = &productID.UUID
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return orders, nil
}
