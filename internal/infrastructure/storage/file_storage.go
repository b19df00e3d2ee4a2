package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/garyjia/field-service/internal/application/port"
)

// LocalFileStorage implements port.FileStorage for local filesystem
type LocalFileStorage struct {
	baseDir string
	maxSize int64
	logger  *zap.Logger
}

// NewLocalFileStorage creates a new LocalFileStorage.
// maxSize <= 0 disables the size limit.
func NewLocalFileStorage(baseDir string, maxSize int64, logger *zap.Logger) *LocalFileStorage {
	return &LocalFileStorage{
		baseDir: baseDir,
		maxSize: maxSize,
		logger:  logger,
	}
}

// Save streams content to the relative path and returns the bytes written.
// A partially written file is removed on failure.
func (s *LocalFileStorage) Save(ctx context.Context, path string, content io.Reader) (int64, error) {
	fullPath := s.resolve(path)

	if err := s.validatePath(fullPath); err != nil {
		return 0, err
	}

	parentDir := filepath.Dir(fullPath)
	if err := os.MkdirAll(parentDir, 0o755); err != nil {
		s.logger.Error("Failed to create parent directories",
			zap.String("path", parentDir),
			zap.Error(err))
		return 0, fmt.Errorf("failed to create directories: %w", err)
	}

	f, err := os.OpenFile(fullPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		s.logger.Error("Failed to create file", zap.String("path", fullPath), zap.Error(err))
		return 0, fmt.Errorf("failed to create file: %w", err)
	}

	reader := content
	if s.maxSize > 0 {
		reader = io.LimitReader(content, s.maxSize+1)
	}

	written, err := io.Copy(f, reader)
	closeErr := f.Close()

	switch {
	case err != nil:
		err = fmt.Errorf("failed to write file: %w", err)
	case closeErr != nil:
		err = fmt.Errorf("failed to close file: %w", closeErr)
	case s.maxSize > 0 && written > s.maxSize:
		err = port.ErrFileTooLarge
	}

	if err != nil {
		_ = os.Remove(fullPath)
		s.logger.Error("Failed to save file", zap.String("path", fullPath), zap.Error(err))
		return 0, err
	}

	s.logger.Debug("File saved successfully",
		zap.String("path", fullPath),
		zap.Int64("size", written))

	return written, nil
}

// Read reads content from the specified relative path
func (s *LocalFileStorage) Read(ctx context.Context, path string) ([]byte, error) {
	fullPath := s.resolve(path)

	if err := s.validatePath(fullPath); err != nil {
		return nil, err
	}

	content, err := os.ReadFile(fullPath)
	if err != nil {
		s.logger.Error("Failed to read file",
			zap.String("path", fullPath),
			zap.Error(err))
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	return content, nil
}

// Exists checks if a file exists at the specified relative path
func (s *LocalFileStorage) Exists(ctx context.Context, path string) bool {
	fullPath := s.resolve(path)
	if s.validatePath(fullPath) != nil {
		return false
	}
	_, err := os.Stat(fullPath)
	return err == nil
}

// Delete removes a file at the specified relative path. Missing files are not an error.
func (s *LocalFileStorage) Delete(ctx context.Context, path string) error {
	fullPath := s.resolve(path)

	if err := s.validatePath(fullPath); err != nil {
		return err
	}

	if err := os.Remove(fullPath); err != nil && !os.IsNotExist(err) {
		s.logger.Error("Failed to delete file",
			zap.String("path", fullPath),
			zap.Error(err))
		return fmt.Errorf("failed to delete file: %w", err)
	}

	return nil
}

// resolve converts a relative path to a path under baseDir
func (s *LocalFileStorage) resolve(relativePath string) string {
	return filepath.Join(s.baseDir, relativePath)
}

// validatePath checks that the path is safe and within baseDir
func (s *LocalFileStorage) validatePath(fullPath string) error {
	absPath, err := filepath.Abs(fullPath)
	if err != nil {
		return fmt.Errorf("failed to resolve path: %w", err)
	}

	absBase, err := filepath.Abs(s.baseDir)
	if err != nil {
		return fmt.Errorf("failed to resolve base path: %w", err)
	}

	if !strings.HasPrefix(absPath, absBase+string(filepath.Separator)) {
		return fmt.Errorf("path escapes base directory: %s", fullPath)
	}

	return nil
}

// Verify interface compliance
var _ port.FileStorage = (*LocalFileStorage)(nil)
