package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/adicipta/procure-api/internal/config"
)

// Storage persists payment documents. Upload returns the storage path
// the document can later be fetched or deleted by.
type Storage interface {
	Upload(ctx context.Context, filename, contentType string, data io.Reader) (string, int64, error)
	Download(ctx context.Context, path string) (io.ReadCloser, error)
	Delete(ctx context.Context, path string) error
}

// NewStorage builds the storage backend selected by configuration
func NewStorage(cfg *config.StorageConfig, logger *zap.Logger) (Storage, error) {
	switch cfg.Mode {
	case "cloud", "azure":
		return NewAzureBlobStorage(cfg, logger)
	case "local", "":
		return NewLocalStorage(cfg.LocalPath, logger)
	default:
		return nil, fmt.Errorf("unknown storage mode %q", cfg.Mode)
	}
}

// LocalStorage keeps documents on the local filesystem, sharded by the
// first bytes of a random file id to keep directories small.
type LocalStorage struct {
	basePath string
	logger   *zap.Logger
}

// NewLocalStorage creates a filesystem-backed storage rooted at basePath
func NewLocalStorage(basePath string, logger *zap.Logger) (*LocalStorage, error) {
	if basePath == "" {
		basePath = "./uploads"
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("creating storage directory: %w", err)
	}
	return &LocalStorage{basePath: basePath, logger: logger}, nil
}

// Upload writes the document and returns its sharded relative path
func (s *LocalStorage) Upload(ctx context.Context, filename, contentType string, data io.Reader) (string, int64, error) {
	fileID := uuid.New().String()
	ext := filepath.Ext(filename)
	relPath := filepath.Join(fileID[:2], fileID[2:4], fileID+ext)
	fullPath := filepath.Join(s.basePath, relPath)

	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return "", 0, fmt.Errorf("creating shard directory: %w", err)
	}

	f, err := os.Create(fullPath)
	if err != nil {
		return "", 0, fmt.Errorf("creating file: %w", err)
	}
	defer f.Close()

	written, err := io.Copy(f, data)
	if err != nil {
		os.Remove(fullPath)
		return "", 0, fmt.Errorf("writing file: %w", err)
	}

	s.logger.Debug("document stored locally",
		zap.String("path", relPath),
		zap.Int64("size", written),
	)
	return relPath, written, nil
}

// Download opens a stored document for reading
func (s *LocalStorage) Download(ctx context.Context, path string) (io.ReadCloser, error) {
	f, err := os.Open(filepath.Join(s.basePath, path))
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	return f, nil
}

// Delete removes a stored document
func (s *LocalStorage) Delete(ctx context.Context, path string) error {
	if err := os.Remove(filepath.Join(s.basePath, path)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing file: %w", err)
	}
	return nil
}
