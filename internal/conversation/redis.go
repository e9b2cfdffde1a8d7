package conversation

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/food-ordering-assistant/internal/model"
)

// RedisStore keeps each user's history in a Redis list of JSON encoded
// turns under "<prefix>:<userID>".
type RedisStore struct {
	rdb    *redis.Client
	prefix string
	opts   Options
}

// NewRedisStore returns a Store backed by rdb.
func NewRedisStore(rdb *redis.Client, opts Options) *RedisStore {
	return &RedisStore{rdb: rdb, prefix: "chat:history", opts: opts.withDefaults()}
}

func (s *RedisStore) key(userID string) string {
	return s.prefix + ":" + userID
}

func (s *RedisStore) History(ctx context.Context, userID string) ([]model.Turn, error) {
	raw, err := s.rdb.LRange(ctx, s.key(userID), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	out := make([]model.Turn, 0, len(raw))
	for _, r := range raw {
		var t model.Turn
		if err := json.Unmarshal([]byte(r), &t); err != nil {
			return nil, fmt.Errorf("decode turn: %w", err)
		}
		out = append(out, t)
	}
	return out, nil
}

// Append pushes, trims and refreshes the expiry inside one MULTI/EXEC, so
// concurrent appends for a user never interleave their turns.
func (s *RedisStore) Append(ctx context.Context, userID string, turns ...model.Turn) error {
	if len(turns) == 0 {
		return nil
	}
	vals := make([]any, 0, len(turns))
	for _, t := range turns {
		b, err := json.Marshal(t)
		if err != nil {
			return err
		}
		vals = append(vals, b)
	}
	key := s.key(userID)
	_, err := s.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.RPush(ctx, key, vals...)
		p.LTrim(ctx, key, int64(-s.opts.MaxTurns), -1)
		p.Expire(ctx, key, s.opts.TTL)
		return nil
	})
	return err
}

func (s *RedisStore) Clear(ctx context.Context, userID string) error {
	return s.rdb.Del(ctx, s.key(userID)).Err()
}
