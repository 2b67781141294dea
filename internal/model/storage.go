package model

import (
	"context"
	"io"
)

// Storage holds uploaded media. Upload returns a stable public URL for the
// stored object.
type Storage interface {
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}
