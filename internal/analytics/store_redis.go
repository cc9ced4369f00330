package analytics

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps three keys per user: a hash of filename to counts, a list
// holding file order and a list of raw queries.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisStore constructs a Redis-backed analytics store.
func NewRedisStore(client redis.UniversalClient, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "analytics"
	}
	return &RedisStore{client: client, prefix: prefix}
}

type fileCounts struct {
	Words int `json:"words"`
	Pages int `json:"pages"`
}

func (s *RedisStore) filesKey(username string) string   { return s.prefix + ":" + username + ":files" }
func (s *RedisStore) orderKey(username string) string   { return s.prefix + ":" + username + ":file_order" }
func (s *RedisStore) queriesKey(username string) string { return s.prefix + ":" + username + ":queries" }

func (s *RedisStore) UpsertFile(ctx context.Context, username string, f FileStat) error {
	raw, err := json.Marshal(fileCounts{Words: f.Words, Pages: f.Pages})
	if err != nil {
		return err
	}
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, s.filesKey(username), f.Filename, raw)
		pipe.LRem(ctx, s.orderKey(username), 0, f.Filename)
		pipe.RPush(ctx, s.orderKey(username), f.Filename)
		return nil
	})
	return err
}

func (s *RedisStore) AppendQuery(ctx context.Context, username, query string) error {
	return s.client.RPush(ctx, s.queriesKey(username), query).Err()
}

func (s *RedisStore) Get(ctx context.Context, username string) (Record, error) {
	var (
		order   *redis.StringSliceCmd
		counts  *redis.MapStringStringCmd
		queries *redis.StringSliceCmd
	)
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		order = pipe.LRange(ctx, s.orderKey(username), 0, -1)
		counts = pipe.HGetAll(ctx, s.filesKey(username))
		queries = pipe.LRange(ctx, s.queriesKey(username), 0, -1)
		return nil
	})
	if err != nil {
		return Record{}, err
	}

	var rec Record
	stats := counts.Val()
	for _, name := range order.Val() {
		raw, ok := stats[name]
		if !ok {
			continue
		}
		var fc fileCounts
		if err := json.Unmarshal([]byte(raw), &fc); err != nil {
			return Record{}, fmt.Errorf("decode file stat %q: %w", name, err)
		}
		rec.Files = append(rec.Files, FileStat{Filename: name, Words: fc.Words, Pages: fc.Pages})
	}
	rec.Queries = queries.Val()
	return rec, nil
}

func (s *RedisStore) Delete(ctx context.Context, username string) error {
	return s.client.Del(ctx, s.filesKey(username), s.orderKey(username), s.queriesKey(username)).Err()
}
