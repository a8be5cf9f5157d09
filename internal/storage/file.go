package storage

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/IshaanNene/flathunt/internal/listing"
	"github.com/IshaanNene/flathunt/internal/types"
)

// --- Result Storage ---

// ResultStorage buffers listings and, on Close, writes every unique one as a
// newline followed by its pretty-printed JSON object.
type ResultStorage struct {
	path     string
	listings []*listing.Listing
	mu       sync.Mutex
	logger   *slog.Logger
}

// NewResultStorage creates a result file storage writing to outputPath.
func NewResultStorage(outputPath string, logger *slog.Logger) (*ResultStorage, error) {
	if err := ensureDir(outputPath); err != nil {
		return nil, &types.StorageError{Backend: "result", Err: err}
	}
	return &ResultStorage{
		path:   outputPath,
		logger: logger.With("component", "result_storage"),
	}, nil
}

func (s *ResultStorage) Name() string { return "result" }

func (s *ResultStorage) Store(listings []*listing.Listing) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listings = append(s.listings, listings...)
	s.logger.Debug("listings buffered", "count", len(listings), "total", len(s.listings))
	return nil
}

func (s *ResultStorage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	unique := listing.Unique(s.listings)
	var buf bytes.Buffer
	for _, l := range unique {
		b, err := l.MarshalJSON()
		if err != nil {
			return &types.StorageError{Backend: "result", Err: fmt.Errorf("encode %s: %w", l.URL, err)}
		}
		buf.WriteByte('\n')
		buf.Write(b)
	}

	if err := os.WriteFile(s.path, buf.Bytes(), 0o644); err != nil {
		return &types.StorageError{Backend: "result", Err: err}
	}

	s.logger.Info("results written", "path", s.path, "listings", len(unique))
	return nil
}

// --- JSONL Storage ---

// JSONLStorage writes listings as newline-delimited JSON (one object per line).
type JSONLStorage struct {
	path   string
	file   *os.File
	enc    *json.Encoder
	mu     sync.Mutex
	count  int
	logger *slog.Logger
}

// NewJSONLStorage creates a new JSONL file storage (streaming writes).
func NewJSONLStorage(outputPath string, logger *slog.Logger) (*JSONLStorage, error) {
	if err := ensureDir(outputPath); err != nil {
		return nil, &types.StorageError{Backend: "jsonl", Err: err}
	}

	f, err := os.Create(outputPath)
	if err != nil {
		return nil, &types.StorageError{Backend: "jsonl", Err: fmt.Errorf("create output file: %w", err)}
	}

	enc := json.NewEncoder(f)
	enc.SetEscapeHTML(false)
	return &JSONLStorage{
		path:   outputPath,
		file:   f,
		enc:    enc,
		logger: logger.With("component", "jsonl_storage"),
	}, nil
}

func (s *JSONLStorage) Name() string { return "jsonl" }

func (s *JSONLStorage) Store(listings []*listing.Listing) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, l := range listings {
		// Encode compacts the pretty form produced by MarshalJSON.
		if err := s.enc.Encode(l); err != nil {
			return &types.StorageError{Backend: "jsonl", Err: fmt.Errorf("encode JSONL: %w", err)}
		}
		s.count++
	}
	return nil
}

func (s *JSONLStorage) Close() error {
	s.logger.Info("JSONL written", "path", s.path, "listings", s.count)
	if s.file != nil {
		return s.file.Close()
	}
	return nil
}

// --- CSV Storage ---

var csvHeader = []string{
	"url", "name", "district", "rent", "utilities", "total_rent", "rooms", "area", "description",
}

// CSVStorage writes listings as CSV rows under a fixed header.
type CSVStorage struct {
	path   string
	file   *os.File
	writer *csv.Writer
	header bool
	mu     sync.Mutex
	count  int
	logger *slog.Logger
}

// NewCSVStorage creates a new CSV file storage.
func NewCSVStorage(outputPath string, logger *slog.Logger) (*CSVStorage, error) {
	if err := ensureDir(outputPath); err != nil {
		return nil, &types.StorageError{Backend: "csv", Err: err}
	}

	f, err := os.Create(outputPath)
	if err != nil {
		return nil, &types.StorageError{Backend: "csv", Err: fmt.Errorf("create output file: %w", err)}
	}

	return &CSVStorage{
		path:   outputPath,
		file:   f,
		writer: csv.NewWriter(f),
		logger: logger.With("component", "csv_storage"),
	}, nil
}

func (s *CSVStorage) Name() string { return "csv" }

func (s *CSVStorage) Store(listings []*listing.Listing) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.header {
		if err := s.writer.Write(csvHeader); err != nil {
			return &types.StorageError{Backend: "csv", Err: fmt.Errorf("write CSV header: %w", err)}
		}
		s.header = true
	}

	for _, l := range listings {
		row := []string{
			l.URL,
			l.Name,
			l.District,
			strconv.Itoa(l.Rent),
			strconv.Itoa(l.Utilities),
			strconv.Itoa(l.TotalRent()),
			strconv.Itoa(l.Rooms),
			strconv.FormatFloat(l.Area, 'f', -1, 64),
			l.Description,
		}
		if err := s.writer.Write(row); err != nil {
			return &types.StorageError{Backend: "csv", Err: fmt.Errorf("write CSV row: %w", err)}
		}
		s.count++
	}

	s.writer.Flush()
	if err := s.writer.Error(); err != nil {
		return &types.StorageError{Backend: "csv", Err: err}
	}
	return nil
}

func (s *CSVStorage) Close() error {
	s.logger.Info("CSV written", "path", s.path, "listings", s.count)
	if s.writer != nil {
		s.writer.Flush()
	}
	if s.file != nil {
		return s.file.Close()
	}
	return nil
}

func ensureDir(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	return nil
}
