package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/angelmondragon/ecofinds-backend/pkg/db/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SQLSlot stores documents as rows of the kv_slots table.
type SQLSlot struct {
	db *gorm.DB
}

func NewSQLSlot(db *gorm.DB) *SQLSlot {
	return &SQLSlot{db: db}
}

func (s *SQLSlot) Read(ctx context.Context, key string) ([]byte, error) {
	var row models.KVSlot
	err := s.db.WithContext(ctx).
		Where(map[string]any{"key": key}).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read slot %s: %w", key, err)
	}
	return []byte(row.Value), nil
}

// Write upserts the row for key.
func (s *SQLSlot) Write(ctx context.Context, key string, value []byte) error {
	row := models.KVSlot{Key: key, Value: string(value), UpdatedAt: time.Now().UTC()}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&row).Error
	if err != nil {
		return fmt.Errorf("write slot %s: %w", key, err)
	}
	return nil
}

func (s *SQLSlot) Delete(ctx context.Context, key string) error {
	err := s.db.WithContext(ctx).
		Where(map[string]any{"key": key}).
		Delete(&models.KVSlot{}).Error
	if err != nil {
		return fmt.Errorf("delete slot %s: %w", key, err)
	}
	return nil
}

func (s *SQLSlot) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
