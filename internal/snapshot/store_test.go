package snapshot

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaldistore/cart-engine/pkg/config"
	"github.com/jaldistore/cart-engine/pkg/db"
	"github.com/jaldistore/cart-engine/pkg/db/models"
	"github.com/jaldistore/cart-engine/pkg/redis"
)

func newTestDBStore(t *testing.T) *DBStore {
	t.Helper()
	cfg := config.DBConfig{SQLitePath: filepath.Join(t.TempDir(), "snapshots.db")}
	client, err := db.New(context.Background(), cfg, true, nil)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	require.NoError(t, client.DB().AutoMigrate(&models.CartSnapshot{}))
	return NewDBStore(client, "cart_snapshot")
}

func TestDBStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	store := newTestDBStore(t)

	payload, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, payload, "no payload expected before first save")

	require.NoError(t, store.Save(ctx, []byte(`{"v":1}`)))
	require.NoError(t, store.Save(ctx, []byte(`{"v":2}`)))

	payload, err = store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, `{"v":2}`, string(payload), "latest save wins")

	require.NoError(t, store.Clear(ctx))
	payload, err = store.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, payload)
}

type fakeKV struct {
	values map[string][]byte
	setErr error
}

func (f *fakeKV) Set(_ context.Context, key string, value any, _ time.Duration) error {
	if f.setErr != nil {
		return f.setErr
	}
	f.values[key] = value.([]byte)
	return nil
}

func (f *fakeKV) Get(_ context.Context, key string) (string, error) {
	raw, ok := f.values[key]
	if !ok {
		return "", redis.ErrNil
	}
	return string(raw), nil
}

func (f *fakeKV) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(f.values, key)
	}
	return nil
}

func (f *fakeKV) SnapshotKey(id string) string {
	return "cartengine:snapshot:" + id
}

func TestRedisStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	kv := &fakeKV{values: map[string][]byte{}}
	store := &RedisStore{kv: kv, key: "cart_snapshot"}

	payload, err := store.Load(ctx)
	if err != nil || payload != nil {
		t.Fatalf("expected empty load, got %q err %v", payload, err)
	}

	if err := store.Save(ctx, []byte(`{"carts":{}}`)); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, ok := kv.values["cartengine:snapshot:cart_snapshot"]; !ok {
		t.Fatalf("expected namespaced key, got %v", kv.values)
	}

	payload, err = store.Load(ctx)
	if err != nil || string(payload) != `{"carts":{}}` {
		t.Fatalf("unexpected load %q err %v", payload, err)
	}

	if err := store.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if payload, _ := store.Load(ctx); payload != nil {
		t.Fatalf("expected empty after clear, got %q", payload)
	}
}

func TestRedisStoreSaveErrorSurfaces(t *testing.T) {
	kv := &fakeKV{values: map[string][]byte{}, setErr: errors.New("connection reset")}
	store := &RedisStore{kv: kv, key: "cart_snapshot"}

	if err := store.Save(context.Background(), []byte("x")); err == nil {
		t.Fatal("expected save error")
	}
}

func TestNewSelectsBackend(t *testing.T) {
	if _, err := New(config.SnapshotConfig{Backend: "db", Key: "k"}, nil, nil); err == nil {
		t.Fatal("expected error without database client")
	}
	if _, err := New(config.SnapshotConfig{Backend: "redis", Key: "k"}, nil, nil); err == nil {
		t.Fatal("expected error without redis client")
	}
	if _, err := New(config.SnapshotConfig{Backend: "memory", Key: "k"}, nil, nil); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}
