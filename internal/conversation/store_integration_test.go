//go:build integration

package conversation

import (
	"context"
	"testing"
	"time"

	"github.com/actuallystonmai/product-recommendation-service/internal/domain"
	"github.com/actuallystonmai/product-recommendation-service/internal/testinfra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreAgainstRedisIntegration(t *testing.T) {
	testinfra.SkipIfNoDocker(t)
	ctx := context.Background()

	client, err := Connect(testinfra.StartRedis(t, ctx))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	s := NewStore(client, time.Minute, 2)
	require.NoError(t, s.Ping(ctx))

	require.NoError(t, s.Append(ctx, "alice", "c1",
		domain.ChatTurn{Role: domain.RoleUser, Text: "one"},
		domain.ChatTurn{Role: domain.RoleAssistant, Text: "two"},
	))
	require.NoError(t, s.Append(ctx, "alice", "c1", domain.ChatTurn{Role: domain.RoleUser, Text: "three"}))

	turns, err := s.Load(ctx, "alice", "c1")
	require.NoError(t, err)
	require.Len(t, turns, 2)
	assert.Equal(t, "two", turns[0].Text)
	assert.Equal(t, "three", turns[1].Text)

	ttl, err := client.TTL(ctx, buildKey("alice", "c1")).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, 50*time.Second)
	assert.LessOrEqual(t, ttl, time.Minute)

	turns, err = s.Load(ctx, "alice", "missing")
	require.NoError(t, err)
	assert.Empty(t, turns)
}
