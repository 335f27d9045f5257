package catalog

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/NikitaDmitryuk/ani-dl/internal/logutils"
	"github.com/NikitaDmitryuk/ani-dl/internal/utils"
)

const (
	catalogDirMode  = 0o755
	catalogFileMode = 0o644
)

// Fetcher downloads the catalog document from a fixed URL.
type Fetcher struct {
	Client *resty.Client
	URL    string
}

func NewFetcher(url string, timeout time.Duration) *Fetcher {
	client := resty.New().
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")
	logutils.Log.WithField("url", url).Debug("Initialized catalog client")
	return &Fetcher{
		Client: client,
		URL:    url,
	}
}

// Fetch replaces dest with the remote catalog. dest is never left half written.
func (f *Fetcher) Fetch(ctx context.Context, dest string) error {
	logutils.Log.WithField("url", f.URL).Info("Fetching catalog")

	resp, err := f.Client.R().
		SetContext(ctx).
		Get(f.URL)
	if err != nil {
		logutils.Log.WithError(err).Error("Failed to perform catalog request")
		return utils.WrapError(utils.ErrExternalServiceError, "catalog request failed", map[string]any{
			"url":   f.URL,
			"error": err.Error(),
		})
	}
	if resp.IsError() {
		logutils.Log.WithField("status", resp.Status()).Warn("Catalog server returned error status")
		return utils.WrapError(utils.ErrExternalServiceError, "catalog request failed", map[string]any{
			"url":    f.URL,
			"status": resp.Status(),
		})
	}

	if err := writeFileAtomic(dest, resp.Body()); err != nil {
		return utils.WrapError(utils.ErrCatalogError, "failed to store catalog", map[string]any{
			"path":  dest,
			"error": err.Error(),
		})
	}

	logutils.Log.WithFields(map[string]any{
		"path":  dest,
		"bytes": len(resp.Body()),
	}).Info("Catalog stored")
	return nil
}

func writeFileAtomic(dest string, data []byte) error {
	dir := filepath.Dir(dest)
	if err := os.MkdirAll(dir, catalogDirMode); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(dest)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	if err = os.Chmod(tmpName, catalogFileMode); err != nil {
		return err
	}
	if err = os.Rename(tmpName, dest); err != nil {
		return fmt.Errorf("rename %s: %w", tmpName, err)
	}
	return nil
}
