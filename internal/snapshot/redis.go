package snapshot

import (
	"context"
	"errors"
	"time"

	pkgerrors "github.com/jaldistore/cart-engine/pkg/errors"
	"github.com/jaldistore/cart-engine/pkg/redis"
)

// redisKV is the subset of the redis client the store needs, kept small so
// tests can stub it.
type redisKV interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	SnapshotKey(id string) string
}

// RedisStore keeps the snapshot under one namespaced key with no TTL; the
// snapshot lives until Clear or a newer Save replaces it.
type RedisStore struct {
	kv  redisKV
	key string
}

var _ Store = (*RedisStore)(nil)

// NewRedisStore builds a redis-backed snapshot store under the given key id.
func NewRedisStore(client *redis.Client, key string) *RedisStore {
	return &RedisStore{kv: client, key: key}
}

func (s *RedisStore) Load(ctx context.Context) ([]byte, error) {
	raw, err := s.kv.Get(ctx, s.kv.SnapshotKey(s.key))
	if errors.Is(err, redis.ErrNil) {
		return nil, nil
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart snapshot")
	}
	return []byte(raw), nil
}

func (s *RedisStore) Save(ctx context.Context, payload []byte) error {
	if err := s.kv.Set(ctx, s.kv.SnapshotKey(s.key), payload, 0); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save cart snapshot")
	}
	return nil
}

func (s *RedisStore) Clear(ctx context.Context) error {
	if err := s.kv.Del(ctx, s.kv.SnapshotKey(s.key)); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart snapshot")
	}
	return nil
}
