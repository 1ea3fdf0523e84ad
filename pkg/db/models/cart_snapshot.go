package models

import "time"

// CartSnapshot is the single key/value row the persistence adapter reads at
// startup and overwrites after every confirmed mutation. The payload is the
// serialized state of all per-store carts.
type CartSnapshot struct {
	Key       string    `gorm:"primaryKey;size:128"`
	Payload   []byte    `gorm:"type:blob"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// TableName keeps the table aligned with the goose migration.
func (CartSnapshot) TableName() string {
	return "cart_snapshots"
}
