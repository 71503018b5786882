package repository

import (
	"context"
	"fmt"

	"github.com/actuallystonmai/product-recommendation-service/internal/domain"
	"github.com/jackc/pgx/v5"
)

// RecentProductIDs returns the distinct products a user ordered, most recent first.
func (r *Repository) RecentProductIDs(ctx context.Context, userEmail string, limit int) ([]string, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT product_id
		FROM orders
		WHERE user_email = $1
		GROUP BY product_id
		ORDER BY MAX(created_at) DESC, product_id
		LIMIT $2`,
		userEmail, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query order history for %s: %w", userEmail, err)
	}

	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scan order history for %s: %w", userEmail, err)
	}
	return ids, nil
}

func (r *Repository) CountOrders(ctx context.Context) (int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM orders`).Scan(&total); err != nil {
		return 0, fmt.Errorf("count orders: %w", err)
	}
	return total, nil
}

// InsertOrders bulk loads orders with COPY.
func (r *Repository) InsertOrders(ctx context.Context, orders []domain.Order) (int64, error) {
	if len(orders) == 0 {
		return 0, nil
	}
	n, err := r.pool.CopyFrom(ctx,
		pgx.Identifier{"orders"},
		[]string{"id", "user_email", "product_id", "qty", "created_at"},
		pgx.CopyFromSlice(len(orders), func(i int) ([]any, error) {
			o := orders[i]
			return []any{o.ID, o.UserEmail, o.ProductID, o.Qty, o.CreatedAt}, nil
		}),
	)
	if err != nil {
		return 0, fmt.Errorf("copy orders: %w", err)
	}
	return n, nil
}

// TruncateOrders removes every stored order.
func (r *Repository) TruncateOrders(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, `TRUNCATE orders`); err != nil {
		return fmt.Errorf("truncate orders: %w", err)
	}
	return nil
}
