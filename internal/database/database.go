package database

import (
	"context"

	"github.com/NikitaDmitryuk/ani-dl/internal/config"
	"github.com/NikitaDmitryuk/ani-dl/internal/logutils"
)

const defaultListLimit = 20

// HistoryReader lists past batches. Use in the history command.
type HistoryReader interface {
	ListBatches(ctx context.Context, limit int) ([]BatchRecord, error)
	GetBatch(ctx context.Context, id string) (BatchRecord, error)
}

// HistoryWriter records finished batches.
type HistoryWriter interface {
	RecordBatch(ctx context.Context, batch BatchRecord) error
}

// Database is the full storage interface.
type Database interface {
	Init(config *config.Config) error
	HistoryReader
	HistoryWriter
	Close() error
}

func NewDatabase(config *config.Config) (Database, error) {
	database := NewSQLiteDatabase()
	if err := database.Init(config); err != nil {
		logutils.Log.WithError(err).Error("Failed to initialize the database")
		return nil, err
	}

	logutils.Log.Debug("Database initialized successfully")
	return database, nil
}
