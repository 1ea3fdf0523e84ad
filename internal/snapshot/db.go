package snapshot

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/jaldistore/cart-engine/pkg/db"
	"github.com/jaldistore/cart-engine/pkg/db/models"
	pkgerrors "github.com/jaldistore/cart-engine/pkg/errors"
)

// DBStore keeps the snapshot in a single cart_snapshots row. On-device
// deployments use the sqlite dialect, everything else postgres; the store
// itself is dialect-agnostic.
type DBStore struct {
	client *db.Client
	key    string
}

var _ Store = (*DBStore)(nil)

// NewDBStore builds a database-backed snapshot store under the given key.
func NewDBStore(client *db.Client, key string) *DBStore {
	return &DBStore{client: client, key: key}
}

func (s *DBStore) Load(ctx context.Context) ([]byte, error) {
	var row models.CartSnapshot
	err := s.client.DB().WithContext(ctx).
		Where("key = ?", s.key).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart snapshot")
	}
	return row.Payload, nil
}

func (s *DBStore) Save(ctx context.Context, payload []byte) error {
	row := models.CartSnapshot{Key: s.key, Payload: payload}
	err := s.client.DB().WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"payload", "updated_at"}),
		}).
		Create(&row).Error
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save cart snapshot")
	}
	return nil
}

func (s *DBStore) Clear(ctx context.Context) error {
	err := s.client.DB().WithContext(ctx).
		Where("key = ?", s.key).
		Delete(&models.CartSnapshot{}).Error
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart snapshot")
	}
	return nil
}
