package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/NikitaDmitryuk/ani-dl/internal/utils"
)

const (
	AppName = "ani-dl"

	DefaultMaxConcurrentDownloads = 12
	DefaultRangePromptThreshold   = 25
	DefaultProgressUpdateInterval = 200 * time.Millisecond
	DefaultCatalogTimeout         = 30 * time.Second
	DefaultYTDLPBinary            = "yt-dlp"
	DefaultPlayerBinary           = "mpv"
	catalogFileName               = "anime_data.json"
	databaseFileName              = "history.db"
)

type Config struct {
	LogLevel     string
	LogFile      string
	DataDir      string
	DownloadPath string

	CatalogSettings  CatalogConfig
	DownloadSettings DownloadConfig
	ToolSettings     ToolConfig
	HistorySettings  HistoryConfig
}

type CatalogConfig struct {
	Path    string
	URL     string
	Timeout time.Duration
}

type DownloadConfig struct {
	MaxConcurrentDownloads int
	RangePromptThreshold   int
	ProgressUpdateInterval time.Duration
	// ProgressTemplate is a text/template rendering one task line; empty selects the built-in one.
	ProgressTemplate string
}

type ToolConfig struct {
	YTDLPPath     string
	PlayerPath    string
	UpdateOnStart bool
}

type HistoryConfig struct {
	Enabled      bool
	DatabasePath string
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// defaultDataDir follows the XDG base directory layout.
func defaultDataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "."+AppName)
	}
	return filepath.Join(home, ".local", "share", AppName)
}

func NewConfig() (*Config, error) {
	dataDir := getEnv("DATA_DIR", defaultDataDir())

	config := &Config{
		LogLevel:     getEnv("LOG_LEVEL", "warn"),
		LogFile:      getEnv("LOG_FILE", ""),
		DataDir:      dataDir,
		DownloadPath: getEnv("DOWNLOAD_PATH", "."),

		CatalogSettings: CatalogConfig{
			Path:    getEnv("CATALOG_PATH", filepath.Join(dataDir, catalogFileName)),
			URL:     getEnv("CATALOG_URL", ""),
			Timeout: getEnvDuration("CATALOG_TIMEOUT", DefaultCatalogTimeout),
		},

		DownloadSettings: DownloadConfig{
			MaxConcurrentDownloads: getEnvInt("MAX_CONCURRENT_DOWNLOADS", DefaultMaxConcurrentDownloads),
			RangePromptThreshold:   getEnvInt("RANGE_PROMPT_THRESHOLD", DefaultRangePromptThreshold),
			ProgressUpdateInterval: getEnvDuration("PROGRESS_UPDATE_INTERVAL", DefaultProgressUpdateInterval),
			ProgressTemplate:       getEnv("PROGRESS_TEMPLATE", ""),
		},

		ToolSettings: ToolConfig{
			YTDLPPath:     getEnv("YTDLP_PATH", DefaultYTDLPBinary),
			PlayerPath:    getEnv("PLAYER_PATH", DefaultPlayerBinary),
			UpdateOnStart: getEnvBool("YTDLP_UPDATE_ON_START", false),
		},

		HistorySettings: HistoryConfig{
			Enabled:      getEnvBool("HISTORY_ENABLED", true),
			DatabasePath: getEnv("DATABASE_PATH", filepath.Join(dataDir, databaseFileName)),
		},
	}

	if err := config.validate(); err != nil {
		return nil, utils.WrapError(err, "configuration validation failed", map[string]any{
			"data_dir": config.DataDir,
		})
	}

	return config, nil
}

func (c *Config) GetDownloadSettings() DownloadConfig {
	return c.DownloadSettings
}

func (c *Config) GetToolSettings() ToolConfig {
	return c.ToolSettings
}
