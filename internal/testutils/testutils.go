package testutils

import (
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/NikitaDmitryuk/ani-dl/internal/config"
	"github.com/NikitaDmitryuk/ani-dl/internal/database"
)

const scriptFileMode = 0755

// TestConfig creates a configuration suitable for testing
func TestConfig(tempDir string) *config.Config {
	return &config.Config{
		LogLevel:     "error",
		DataDir:      tempDir,
		DownloadPath: tempDir,

		CatalogSettings: config.CatalogConfig{
			Path:    filepath.Join(tempDir, "anime_data.json"),
			Timeout: 5 * time.Second,
		},

		DownloadSettings: config.DownloadConfig{
			MaxConcurrentDownloads: config.DefaultMaxConcurrentDownloads,
			RangePromptThreshold:   config.DefaultRangePromptThreshold,
			ProgressUpdateInterval: 10 * time.Millisecond,
		},

		ToolSettings: config.ToolConfig{
			YTDLPPath:  config.DefaultYTDLPBinary,
			PlayerPath: config.DefaultPlayerBinary,
		},

		HistorySettings: config.HistoryConfig{
			Enabled:      true,
			DatabasePath: ":memory:",
		},
	}
}

// TestDatabase opens an in-memory history database that is closed with the test.
func TestDatabase(t *testing.T) database.Database {
	t.Helper()

	db := database.NewSQLiteDatabase()
	if err := db.Init(TestConfig(t.TempDir())); err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("Failed to close test database: %v", err)
		}
	})
	return db
}

// WriteScript writes an executable /bin/sh script into dir and returns its path.
func WriteScript(t *testing.T, dir, name, body string) string {
	t.Helper()

	if runtime.GOOS == "windows" {
		t.Skip("skipping shell script test on Windows")
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), scriptFileMode); err != nil {
		t.Fatalf("write script %s: %v", name, err)
	}
	return path
}

// RecordingSink is a concurrency-safe ProgressSink that keeps every update.
type RecordingSink struct {
	mu        sync.Mutex
	percents  []int
	rates     []string
	succeeded bool
	reason    string
	done      int
}

func (s *RecordingSink) SetPercent(percent int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.percents = append(s.percents, percent)
}

func (s *RecordingSink) SetRate(rate string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rates = append(s.rates, rate)
}

func (s *RecordingSink) Succeed() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.succeeded = true
	s.done++
	return s.done
}

func (s *RecordingSink) Fail(reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reason = reason
}

func (s *RecordingSink) Percents() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int(nil), s.percents...)
}

func (s *RecordingSink) Rates() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.rates...)
}

func (s *RecordingSink) Succeeded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.succeeded
}

// Reason is the failure reason, empty when the task did not fail.
func (s *RecordingSink) Reason() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reason
}
