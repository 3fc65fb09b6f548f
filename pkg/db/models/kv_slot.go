package models

import "time"

// KVSlot is a keyed JSON document backing the session-scoped cart, order and
// wishlist slots when the sql storage driver is selected.
type KVSlot struct {
	Key       string    `gorm:"column:key;primaryKey;size:255"`
	Value     string    `gorm:"column:value;type:text;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (KVSlot) TableName() string {
	return "kv_slots"
}
