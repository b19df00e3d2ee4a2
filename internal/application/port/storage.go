package port

import (
	"context"
	"io"
)

// FileStorage defines file storage operations
type FileStorage interface {
	Save(ctx context.Context, path string, content io.Reader) (int64, error)
	Read(ctx context.Context, path string) ([]byte, error)
	Exists(ctx context.Context, path string) bool
	Delete(ctx context.Context, path string) error
}

// Upload is a file received from a caller
type Upload struct {
	Filename string
	Size     int64
	Content  io.Reader
}
