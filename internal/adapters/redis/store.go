package redisad

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"review_proxy/internal/adapters/observability"
	"review_proxy/internal/domain"
)

const keyPrefix = "fixture:"

// Store keeps fixtures as plain string values under fixture:<file>.
type Store struct{ c *redis.Client }

func New(addr, pass string, db int) *Store {
	return NewFromClient(redis.NewClient(&redis.Options{Addr: addr, Password: pass, DB: db}))
}

func NewFromClient(c *redis.Client) *Store { return &Store{c: c} }

func (r *Store) Load(ctx context.Context, file string) ([]byte, error) {
	v, err := r.c.Get(ctx, keyPrefix+file).Bytes()
	if err == redis.Nil {
		observability.ObserveFixture("redis", "miss")
		return nil, fmt.Errorf("fixture %s: %w", file, domain.ErrNotFound)
	}
	if err != nil {
		observability.ObserveFixture("redis", "error")
		return nil, err
	}
	observability.ObserveFixture("redis", "load")
	return v, nil
}

// Put stores payload without expiry; fixtures only change when reseeded.
func (r *Store) Put(ctx context.Context, file string, payload []byte) error {
	observability.ObserveFixture("redis", "put")
	return r.c.Set(ctx, keyPrefix+file, payload, 0).Err()
}

func (r *Store) Ping(ctx context.Context) error { return r.c.Ping(ctx).Err() }

func (r *Store) Close() error { return r.c.Close() }
