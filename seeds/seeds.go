package seeds

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/actuallystonmai/product-recommendation-service/internal/domain"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OrderStore is the slice of the repository the seeder writes through.
type OrderStore interface {
	TruncateOrders(ctx context.Context) error
	InsertOrders(ctx context.Context, orders []domain.Order) (int64, error)
}

// catalogIDs mirrors the demo catalog served by the product service.
var catalogIDs = func() []string {
	var ids []string
	for _, prefix := range []string{"p", "a", "au"} {
		for i := 1; i <= 7; i++ {
			ids = append(ids, fmt.Sprintf("%s%d", prefix, i))
		}
	}
	return ids
}()

const (
	demoUsers  = 10
	demoOrders = 120
)

// Setup replaces stored orders with a deterministic demo set.
func Setup(ctx context.Context, store OrderStore, logger *zap.Logger) error {
	logger.Info("truncating existing orders")
	if err := store.TruncateOrders(ctx); err != nil {
		return fmt.Errorf("truncate: %w", err)
	}

	orders := GenerateOrders(rand.New(rand.NewSource(42)), time.Now(), demoUsers, demoOrders)

	logger.Info("inserting orders", zap.Int("count", len(orders)))
	n, err := store.InsertOrders(ctx, orders)
	if err != nil {
		return fmt.Errorf("seed orders: %w", err)
	}

	logger.Info("seeding complete", zap.Int64("inserted", n))
	return nil
}

// GenerateOrders builds n orders spread over users demo1..demoN@example.com. Low
// numbered users and products are favoured so some histories are long.
func GenerateOrders(rng *rand.Rand, now time.Time, users, n int) []domain.Order {
	orders := make([]domain.Order, 0, n)
	for range n {
		user := skewedIndex(rng, users, 1.5) + 1
		product := catalogIDs[skewedIndex(rng, len(catalogIDs), 1.3)]

		id, _ := uuid.NewRandomFromReader(rng)
		orders = append(orders, domain.Order{
			ID:        id,
			UserEmail: fmt.Sprintf("demo%d@example.com", user),
			ProductID: product,
			Qty:       weightedQty(rng),
			CreatedAt: now.AddDate(0, 0, -rng.Intn(180)).UTC(),
		})
	}
	return orders
}

func skewedIndex(rng *rand.Rand, n int, exp float64) int {
	i := int(math.Pow(rng.Float64(), exp) * float64(n))
	return max(0, min(i, n-1))
}

func weightedQty(rng *rand.Rand) int {
	weights := []float64{0.7, 0.2, 0.1}
	r := rng.Float64()
	cumulative := 0.0
	for i, w := range weights {
		cumulative += w
		if r <= cumulative {
			return i + 1
		}
	}
	return len(weights)
}
