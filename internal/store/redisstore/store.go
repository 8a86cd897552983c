package redisstore

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const offsetKey = "tgrelay:update_offset"

type Store struct {
	rdb *redis.Client
}

// New connects and pings; an unreachable redis is a startup failure, not
// something to limp along with.
func New(addr, password string, db int) (*Store, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return &Store{rdb: rdb}, nil
}

// GetOffset returns 0 when no checkpoint exists yet.
func (s *Store) GetOffset(ctx context.Context) (int64, error) {
	v, err := s.rdb.Get(ctx, offsetKey).Result()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return strconv.ParseInt(v, 10, 64)
}

func (s *Store) SetOffset(ctx context.Context, offset int64) error {
	return s.rdb.Set(ctx, offsetKey, strconv.FormatInt(offset, 10), 0).Err()
}

func (s *Store) Close() error {
	return s.rdb.Close()
}
