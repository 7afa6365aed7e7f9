package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gbonee/hustle-vibes-africa-sub000/models"

	"github.com/redis/go-redis/v9"
)

const (
	MaxHistoryTurns = 50
	HistoryTTL      = 30 * 24 * time.Hour
)

// ChatHistoryStore persists conversation turns per (user, course, language).
type ChatHistoryStore interface {
	Load(ctx context.Context, key string) ([]models.ChatTurn, error)
	Append(ctx context.Context, key string, turns ...models.ChatTurn) error
	Clear(ctx context.Context, key string) error
}

func HistoryKey(userID, courseID, language string) string {
	return fmt.Sprintf("chat:%s:%s:%s", userID, courseID, language)
}

// RedisHistoryStore keeps each conversation as a capped redis list of JSON turns.
type RedisHistoryStore struct {
	rdb      *redis.Client
	maxTurns int64
	ttl      time.Duration
}

func NewRedisHistoryStore(rdb *redis.Client) *RedisHistoryStore {
	return &RedisHistoryStore{rdb: rdb, maxTurns: MaxHistoryTurns, ttl: HistoryTTL}
}

func (s *RedisHistoryStore) Load(ctx context.Context, key string) ([]models.ChatTurn, error) {
	raw, err := s.rdb.LRange(ctx, key, 0, -1).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load chat history: %w", err)
	}

	turns := make([]models.ChatTurn, 0, len(raw))
	for _, item := range raw {
		var t models.ChatTurn
		if err := json.Unmarshal([]byte(item), &t); err != nil {
			// skip corrupt entries rather than losing the whole conversation
			continue
		}
		turns = append(turns, t)
	}
	return turns, nil
}

func (s *RedisHistoryStore) Append(ctx context.Context, key string, turns ...models.ChatTurn) error {
	if len(turns) == 0 {
		return nil
	}
	values := make([]interface{}, 0, len(turns))
	for _, t := range turns {
		b, err := json.Marshal(t)
		if err != nil {
			return err
		}
		values = append(values, b)
	}

	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, key, values...)
		pipe.LTrim(ctx, key, -s.maxTurns, -1)
		pipe.Expire(ctx, key, s.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("append chat history: %w", err)
	}
	return nil
}

func (s *RedisHistoryStore) Clear(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, key).Err()
}
