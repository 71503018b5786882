// Package conversation keeps short chat transcripts in redis so follow-up messages
// in the same conversation can be prompted with what was said before.
package conversation

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/actuallystonmai/product-recommendation-service/internal/domain"
	"github.com/redis/go-redis/v9"
)

const (
	defaultTTL   = 24 * time.Hour
	defaultTurns = 10
)

type Store struct {
	client *redis.Client
	ttl    time.Duration
	turns  int
}

// NewStore keeps at most turns entries per conversation, each list expiring ttl
// after its last append.
func NewStore(client *redis.Client, ttl time.Duration, turns int) *Store {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	if turns <= 0 {
		turns = defaultTurns
	}
	return &Store{client: client, ttl: ttl, turns: turns}
}

// Connect accepts either a redis:// URL or a bare host:port.
func Connect(redisURL string) (*redis.Client, error) {
	if strings.HasPrefix(redisURL, "redis://") || strings.HasPrefix(redisURL, "rediss://") {
		opt, err := redis.ParseURL(redisURL)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		return redis.NewClient(opt), nil
	}
	return redis.NewClient(&redis.Options{Addr: redisURL}), nil
}

func buildKey(subject, conversationID string) string {
	return fmt.Sprintf("chat:%s:%s", subject, conversationID)
}

// Load returns the stored turns oldest first. A missing conversation is not an error.
func (s *Store) Load(ctx context.Context, subject, conversationID string) ([]domain.ChatTurn, error) {
	key := buildKey(subject, conversationID)
	vals, err := s.client.LRange(ctx, key, int64(-s.turns), -1).Result()
	if err != nil {
		return nil, fmt.Errorf("load transcript %s: %w", key, err)
	}
	return decodeTurns(key, vals)
}

// Append adds turns to the conversation, trims it to the newest entries and
// refreshes its expiry in one transaction.
func (s *Store) Append(ctx context.Context, subject, conversationID string, turns ...domain.ChatTurn) error {
	if len(turns) == 0 {
		return nil
	}
	key := buildKey(subject, conversationID)

	vals := make([]any, 0, len(turns))
	for _, t := range turns {
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Errorf("marshal chat turn: %w", err)
		}
		vals = append(vals, b)
	}

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, key, vals...)
		pipe.LTrim(ctx, key, int64(-s.turns), -1)
		pipe.Expire(ctx, key, s.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("append transcript %s: %w", key, err)
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func decodeTurns(key string, vals []string) ([]domain.ChatTurn, error) {
	turns := make([]domain.ChatTurn, 0, len(vals))
	for _, v := range vals {
		var t domain.ChatTurn
		if err := json.Unmarshal([]byte(v), &t); err != nil {
			return nil, fmt.Errorf("unmarshal turn in %s: %w", key, err)
		}
		turns = append(turns, t)
	}
	return turns, nil
}
