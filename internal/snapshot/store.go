package snapshot

import (
	"context"
	"fmt"

	"github.com/jaldistore/cart-engine/pkg/config"
	"github.com/jaldistore/cart-engine/pkg/db"
	"github.com/jaldistore/cart-engine/pkg/redis"
)

// Store persists the serialized cart state as a single opaque payload. Load
// returns (nil, nil) when no snapshot has been written yet; a corrupt or
// unreadable snapshot surfaces as an error and callers start empty.
type Store interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, payload []byte) error
	Clear(ctx context.Context) error
}

// New selects a backend from configuration. The database client is required
// for the db backend, the redis client for the redis backend.
func New(cfg config.SnapshotConfig, dbc *db.Client, rc *redis.Client) (Store, error) {
	switch cfg.Backend {
	case config.SnapshotBackendDB:
		if dbc == nil {
			return nil, fmt.Errorf("snapshot backend %q requires a database client", cfg.Backend)
		}
		return NewDBStore(dbc, cfg.Key), nil
	case config.SnapshotBackendRedis:
		if rc == nil {
			return nil, fmt.Errorf("snapshot backend %q requires a redis client", cfg.Backend)
		}
		return NewRedisStore(rc, cfg.Key), nil
	default:
		return nil, fmt.Errorf("unknown snapshot backend %q", cfg.Backend)
	}
}
