package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/NikitaDmitryuk/ani-dl/internal/config"
	"github.com/NikitaDmitryuk/ani-dl/internal/logutils"
	"github.com/NikitaDmitryuk/ani-dl/internal/utils"
)

// Source refreshes the catalog file at dest.
type Source interface {
	Fetch(ctx context.Context, dest string) error
}

// Store reads the local catalog, fetching it from Source when it is missing
// or unreadable.
type Store struct {
	path   string
	source Source
}

// NewStore creates a store; source may be nil, in which case the file must exist.
func NewStore(path string, source Source) *Store {
	return &Store{path: path, source: source}
}

func NewStoreFromConfig(settings config.CatalogConfig) *Store {
	if settings.URL == "" {
		return NewStore(settings.Path, nil)
	}
	return NewStore(settings.Path, NewFetcher(settings.URL, settings.Timeout))
}

func (s *Store) Path() string { return s.path }

// Load returns the decoded catalog. A missing file is fetched first. A file
// that fails to decode is fetched again once before giving up.
func (s *Store) Load(ctx context.Context) (*Catalog, error) {
	log := logutils.Log.WithField("path", s.path)

	if _, err := os.Stat(s.path); errors.Is(err, fs.ErrNotExist) {
		log.Info("Catalog not found locally")
		if err := s.refresh(ctx); err != nil {
			return nil, err
		}
	}

	catalog, err := decodeFile(s.path)
	if err == nil {
		return catalog, nil
	}
	if s.source == nil {
		return nil, utils.WrapError(utils.ErrCatalogError, "failed to read catalog", map[string]any{
			"path":  s.path,
			"error": err.Error(),
		})
	}

	log.WithError(err).Warn("Catalog unreadable, fetching a fresh copy")
	if err := s.refresh(ctx); err != nil {
		return nil, err
	}

	catalog, err = decodeFile(s.path)
	if err != nil {
		return nil, utils.WrapError(utils.ErrCatalogError, "fetched catalog is unreadable", map[string]any{
			"path":  s.path,
			"error": err.Error(),
		})
	}
	return catalog, nil
}

func (s *Store) refresh(ctx context.Context) error {
	if s.source == nil {
		return utils.WrapError(utils.ErrCatalogError, "catalog file is missing and no catalog URL is configured", map[string]any{
			"path": s.path,
		})
	}
	return s.source.Fetch(ctx, s.path)
}

func decodeFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Decode(data)
}

// Decode parses a catalog document. The media list is required.
func Decode(data []byte) (*Catalog, error) {
	var doc struct {
		Media *[]Media `json:"media"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if doc.Media == nil {
		return nil, fmt.Errorf("decode catalog: missing media list")
	}
	return &Catalog{Media: *doc.Media}, nil
}
