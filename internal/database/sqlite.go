package database

import (
	"fmt"
	"os"
	"path/filepath"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/NikitaDmitryuk/ani-dl/internal/config"
	"github.com/NikitaDmitryuk/ani-dl/internal/logutils"
	"github.com/NikitaDmitryuk/ani-dl/internal/utils"
)

const (
	memoryPath = ":memory:"
	dirMode    = 0o755
)

type SQLiteDatabase struct {
	db *gorm.DB
}

func NewSQLiteDatabase() *SQLiteDatabase {
	return &SQLiteDatabase{}
}

func (s *SQLiteDatabase) Init(config *config.Config) error {
	dbPath := config.HistorySettings.DatabasePath
	if dbPath != memoryPath {
		if err := os.MkdirAll(filepath.Dir(dbPath), dirMode); err != nil {
			return utils.WrapError(utils.ErrDatabaseError, "failed to create database directory", map[string]any{
				"path":  dbPath,
				"error": err.Error(),
			})
		}
	}

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return utils.WrapError(utils.ErrDatabaseError, "failed to connect to database", map[string]any{
			"path":  dbPath,
			"error": err.Error(),
		})
	}

	if dbPath == memoryPath {
		// Every connection to :memory: is a separate database.
		sqlDB, err := db.DB()
		if err != nil {
			return utils.WrapError(utils.ErrDatabaseError, "failed to access database handle", map[string]any{
				"error": err.Error(),
			})
		}
		sqlDB.SetMaxOpenConns(1)
	}

	s.db = db

	if err := s.runMigrations(); err != nil {
		return utils.WrapError(utils.ErrDatabaseError, "failed to run migrations", map[string]any{
			"error": err.Error(),
		})
	}

	logutils.Log.WithField("path", dbPath).Debug("History database opened")
	return nil
}

func (s *SQLiteDatabase) runMigrations() error {
	if err := s.db.AutoMigrate(&BatchRecord{}, &EpisodeRecord{}); err != nil {
		return fmt.Errorf("auto migration failed: %w", err)
	}
	return nil
}

func (s *SQLiteDatabase) Close() error {
	if s.db == nil {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
