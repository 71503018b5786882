package seeds

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/actuallystonmai/product-recommendation-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type memoryStore struct {
	truncated bool
	orders    []domain.Order
}

func (m *memoryStore) TruncateOrders(context.Context) error {
	m.truncated = true
	m.orders = nil
	return nil
}

func (m *memoryStore) InsertOrders(_ context.Context, orders []domain.Order) (int64, error) {
	m.orders = append(m.orders, orders...)
	return int64(len(orders)), nil
}

func TestGenerateOrdersDeterministic(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	a := GenerateOrders(rand.New(rand.NewSource(42)), now, 10, 50)
	b := GenerateOrders(rand.New(rand.NewSource(42)), now, 10, 50)
	assert.Equal(t, a, b)
}

func TestGenerateOrdersShape(t *testing.T) {
	known := map[string]bool{}
	for _, id := range catalogIDs {
		known[id] = true
	}
	now := time.Now()

	orders := GenerateOrders(rand.New(rand.NewSource(7)), now, 3, 200)
	require.Len(t, orders, 200)
	for _, o := range orders {
		assert.True(t, known[o.ProductID], o.ProductID)
		assert.Contains(t, []string{"demo1@example.com", "demo2@example.com", "demo3@example.com"}, o.UserEmail)
		assert.GreaterOrEqual(t, o.Qty, 1)
		assert.LessOrEqual(t, o.Qty, 3)
		assert.False(t, o.CreatedAt.After(now))
	}
}

func TestSetup(t *testing.T) {
	store := &memoryStore{orders: []domain.Order{{ProductID: "stale"}}}
	require.NoError(t, Setup(context.Background(), store, zap.NewNop()))
	assert.True(t, store.truncated)
	assert.Len(t, store.orders, demoOrders)
}
