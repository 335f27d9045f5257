package config

import (
	"net/url"

	"github.com/NikitaDmitryuk/ani-dl/internal/utils"
)

func (c *Config) validate() error {
	if err := c.validateRequiredFields(); err != nil {
		return err
	}
	if err := c.validateDownloadSettings(); err != nil {
		return err
	}
	if err := c.validateCatalogSettings(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateRequiredFields() error {
	var missingFields []string

	if c.DataDir == "" {
		missingFields = append(missingFields, "DATA_DIR")
	}
	if c.DownloadPath == "" {
		missingFields = append(missingFields, "DOWNLOAD_PATH")
	}
	if c.CatalogSettings.Path == "" {
		missingFields = append(missingFields, "CATALOG_PATH")
	}
	if c.ToolSettings.YTDLPPath == "" {
		missingFields = append(missingFields, "YTDLP_PATH")
	}
	if c.ToolSettings.PlayerPath == "" {
		missingFields = append(missingFields, "PLAYER_PATH")
	}
	if c.HistorySettings.Enabled && c.HistorySettings.DatabasePath == "" {
		missingFields = append(missingFields, "DATABASE_PATH")
	}

	if len(missingFields) > 0 {
		return utils.WrapError(utils.ErrConfigurationError, "missing required settings", map[string]any{
			"missing_fields": missingFields,
		})
	}

	return nil
}

func (c *Config) validateDownloadSettings() error {
	settings := c.DownloadSettings

	if settings.MaxConcurrentDownloads < 1 {
		return utils.WrapError(utils.ErrConfigurationError, "MAX_CONCURRENT_DOWNLOADS must be at least 1", map[string]any{
			"value": settings.MaxConcurrentDownloads,
		})
	}
	if settings.RangePromptThreshold < 0 {
		return utils.WrapError(utils.ErrConfigurationError, "RANGE_PROMPT_THRESHOLD cannot be negative", map[string]any{
			"value": settings.RangePromptThreshold,
		})
	}
	if settings.ProgressUpdateInterval <= 0 {
		return utils.WrapError(utils.ErrConfigurationError, "PROGRESS_UPDATE_INTERVAL must be positive", map[string]any{
			"value": settings.ProgressUpdateInterval,
		})
	}

	return nil
}

func (c *Config) validateCatalogSettings() error {
	if c.CatalogSettings.Timeout <= 0 {
		return utils.WrapError(utils.ErrConfigurationError, "CATALOG_TIMEOUT must be positive", map[string]any{
			"value": c.CatalogSettings.Timeout,
		})
	}

	if raw := c.CatalogSettings.URL; raw != "" {
		parsed, err := url.Parse(raw)
		if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
			return utils.WrapError(utils.ErrConfigurationError, "CATALOG_URL must be an http or https URL", map[string]any{
				"value": raw,
			})
		}
	}
	return nil
}
