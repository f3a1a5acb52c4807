// Package upload stores files received by the HTTP API before they are loaded.
package upload

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gocleanse/domain/core"
)

// StorageConfig holds configuration for file storage
type StorageConfig struct {
	BasePath          string   // Base directory for uploaded files
	MaxFileSize       int64    // Maximum file size in bytes
	AllowedExtensions []string // Accepted extensions, lower case with the dot
	ChunkSize         int      // Copy buffer size
}

// DefaultStorageConfig returns sensible defaults
func DefaultStorageConfig() *StorageConfig {
	return &StorageConfig{
		BasePath:          "uploads",
		MaxFileSize:       32 << 20,
		AllowedExtensions: []string{".csv", ".json", ".xlsx"},
		ChunkSize:         1024 * 1024,
	}
}

// LocalFileStorage keeps uploads on the local filesystem
type LocalFileStorage struct {
	config *StorageConfig
}

// NewLocalFileStorage creates a new local file storage instance
func NewLocalFileStorage(config *StorageConfig) *LocalFileStorage {
	if config == nil {
		config = DefaultStorageConfig()
	}
	if config.ChunkSize <= 0 {
		config.ChunkSize = DefaultStorageConfig().ChunkSize
	}
	return &LocalFileStorage{config: config}
}

// NewLocalFileStorageWithPath creates a new local file storage with a simple path
func NewLocalFileStorageWithPath(basePath string) *LocalFileStorage {
	config := DefaultStorageConfig()
	config.BasePath = basePath
	return NewLocalFileStorage(config)
}

// Store saves the content under a unique name derived from filename and returns its path
func (s *LocalFileStorage) Store(ctx context.Context, content io.Reader, filename string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if !s.allowed(ext) {
		return "", fmt.Errorf("%w: %q uploads are not accepted", core.ErrUnsupportedFormat, ext)
	}

	if err := os.MkdirAll(s.config.BasePath, 0755); err != nil {
		return "", fmt.Errorf("failed to create storage directory: %w", err)
	}

	// Generate unique filename to prevent conflicts
	baseName := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	timestamp := time.Now().Format("20060102_150405")
	uniqueName := fmt.Sprintf("%s_%s_%s%s", baseName, timestamp, core.NewID(), ext)
	filePath := filepath.Join(s.config.BasePath, uniqueName)

	destFile, err := os.Create(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to create destination file: %w", err)
	}
	defer destFile.Close()

	// Read one byte past the limit to detect oversized uploads
	limited := io.LimitReader(content, s.config.MaxFileSize+1)
	buf := make([]byte, s.config.ChunkSize)
	written, err := io.CopyBuffer(destFile, limited, buf)
	if err != nil {
		os.Remove(filePath)
		return "", fmt.Errorf("failed to copy file contents: %w", err)
	}
	if written > s.config.MaxFileSize {
		os.Remove(filePath)
		return "", core.NewValidationError("upload", fmt.Sprintf("file exceeds %d bytes", s.config.MaxFileSize))
	}

	return filePath, nil
}

func (s *LocalFileStorage) allowed(ext string) bool {
	if len(s.config.AllowedExtensions) == 0 {
		return true
	}
	for _, a := range s.config.AllowedExtensions {
		if a == ext {
			return true
		}
	}
	return false
}

// Delete removes a file from storage
func (s *LocalFileStorage) Delete(ctx context.Context, filePath string) error {
	if err := os.Remove(filePath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// Exists checks if a file exists in storage
func (s *LocalFileStorage) Exists(ctx context.Context, filePath string) (bool, error) {
	_, err := os.Stat(filePath)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check file existence: %w", err)
	}
	return true, nil
}
