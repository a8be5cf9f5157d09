// Package storage writes the accepted listings of a crawl to their
// destination once the crawl has completed.
package storage

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/IshaanNene/flathunt/internal/config"
	"github.com/IshaanNene/flathunt/internal/listing"
)

// Storage is the interface for all storage backends.
type Storage interface {
	// Store persists a batch of listings.
	Store(listings []*listing.Listing) error

	// Close flushes pending writes and releases resources.
	Close() error

	// Name returns the storage backend identifier.
	Name() string
}

// NewStorage builds the backends named in cfg.Type, a comma-separated list
// of result, jsonl, csv and mongo. File names are derived from keyword.
func NewStorage(cfg config.StorageConfig, keyword string, logger *slog.Logger) (Storage, error) {
	var backends []Storage
	for _, kind := range strings.Split(cfg.Type, ",") {
		kind = strings.TrimSpace(kind)
		if kind == "" {
			continue
		}
		s, err := newBackend(kind, cfg, keyword, logger)
		if err != nil {
			closeAll(backends)
			return nil, err
		}
		backends = append(backends, s)
	}

	switch len(backends) {
	case 0:
		return nil, fmt.Errorf("no storage backend configured")
	case 1:
		return backends[0], nil
	default:
		return NewMultiStorage(backends, logger), nil
	}
}

func newBackend(kind string, cfg config.StorageConfig, keyword string, logger *slog.Logger) (Storage, error) {
	base := filepath.Join(cfg.OutputDir, ResultFileName(keyword))
	switch kind {
	case "result":
		return NewResultStorage(base, logger)
	case "jsonl":
		return NewJSONLStorage(base+".jsonl", logger)
	case "csv":
		return NewCSVStorage(base+".csv", logger)
	case "mongo":
		return NewMongoStorage(cfg.MongoURI, cfg.MongoDatabase, cfg.MongoCollection, logger)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", kind)
	}
}

// ResultFileName returns "result_<keyword>" with path separators replaced.
func ResultFileName(keyword string) string {
	safe := strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || r == filepath.Separator {
			return '_'
		}
		return r
	}, keyword)
	return "result_" + safe
}

func closeAll(backends []Storage) {
	for _, b := range backends {
		_ = b.Close()
	}
}

// --- Multi-Storage Fan-Out ---

// MultiStorage writes listings to multiple backends.
type MultiStorage struct {
	backends []Storage
	logger   *slog.Logger
}

// NewMultiStorage creates a storage that fans out to multiple backends.
func NewMultiStorage(backends []Storage, logger *slog.Logger) *MultiStorage {
	return &MultiStorage{
		backends: backends,
		logger:   logger.With("component", "multi_storage"),
	}
}

func (s *MultiStorage) Name() string {
	names := make([]string, len(s.backends))
	for i, b := range s.backends {
		names[i] = b.Name()
	}
	return strings.Join(names, "+")
}

func (s *MultiStorage) Store(listings []*listing.Listing) error {
	var firstErr error
	for _, backend := range s.backends {
		if err := backend.Store(listings); err != nil {
			s.logger.Error("backend store failed", "backend", backend.Name(), "error", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

func (s *MultiStorage) Close() error {
	var firstErr error
	for _, backend := range s.backends {
		if err := backend.Close(); err != nil {
			s.logger.Error("backend close failed", "backend", backend.Name(), "error", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
