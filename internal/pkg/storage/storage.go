package storage

import (
	"context"
	"errors"
	"io"
)

var (
	ErrFileNotFound = errors.New("file not found")
	ErrInvalidPath  = errors.New("invalid file path")
)

// FileStorage gives read access to dataset files
type FileStorage interface {
	// Open returns a reader for the file at path; the caller must close it
	Open(ctx context.Context, path string) (io.ReadCloser, error)
}
