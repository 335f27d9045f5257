package database

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/NikitaDmitryuk/ani-dl/internal/utils"
)

// ErrBatchNotFound is returned by GetBatch for an unknown id.
var ErrBatchNotFound = errors.New("batch not found")

// RecordBatch stores a batch with its episodes in a single transaction.
func (s *SQLiteDatabase) RecordBatch(ctx context.Context, batch BatchRecord) error {
	if batch.ID == "" {
		return fmt.Errorf("%w: batch id is required", utils.ErrDatabaseError)
	}
	for i := range batch.Episodes {
		if !batch.Episodes[i].State.IsValid() {
			return fmt.Errorf("%w: episode %d has invalid state %q", utils.ErrDatabaseError, batch.Episodes[i].Number(), batch.Episodes[i].State)
		}
		batch.Episodes[i].BatchID = batch.ID
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&batch).Error
	})
}

// ListBatches returns the most recent batches first, without episodes.
func (s *SQLiteDatabase) ListBatches(ctx context.Context, limit int) ([]BatchRecord, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}

	var batches []BatchRecord
	result := s.db.WithContext(ctx).
		Order("finished_at DESC").
		Limit(limit).
		Find(&batches)
	if result.Error != nil {
		return nil, result.Error
	}
	return batches, nil
}

// GetBatch loads one batch with its episodes in episode order.
func (s *SQLiteDatabase) GetBatch(ctx context.Context, id string) (BatchRecord, error) {
	var batch BatchRecord
	result := s.db.WithContext(ctx).
		Preload("Episodes", func(db *gorm.DB) *gorm.DB {
			return db.Order("episode_index ASC")
		}).
		Where("id = ?", id).
		First(&batch)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return BatchRecord{}, fmt.Errorf("%w: %s", ErrBatchNotFound, id)
		}
		return BatchRecord{}, result.Error
	}
	return batch, nil
}
