package storage

import (
	"context"
	"io"
	"time"
)

// Object is one stored artifact. Keys use forward slashes.
type Object struct {
	Key      string
	Size     int64
	Modified time.Time
}

// Storage holds run artifacts under slash-separated keys. The first key
// segment is always the run id.
type Storage interface {
	// Upload replaces whatever is stored at key.
	Upload(ctx context.Context, key string, r io.Reader) error
	// Download opens key for reading; the caller closes it.
	Download(ctx context.Context, key string) (io.ReadCloser, error)
	Exists(ctx context.Context, key string) (bool, error)
	// DeletePrefix removes key and everything under it.
	DeletePrefix(ctx context.Context, prefix string) error
	// List returns objects whose key starts with prefix, ordered by key.
	List(ctx context.Context, prefix string) ([]Object, error)
}

// Locator maps a key to a file on local disk. Decoders open artifacts by
// path, so only backends implementing it can feed recognition.
type Locator interface {
	LocalPath(key string) (string, error)
}
