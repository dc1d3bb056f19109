package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"inventario/internal/config"
)

// Package storage holds the attachment blob backends: a local directory and an S3-compatible bucket.

// ErrNotFound is returned by Get and Delete when the key does not exist.
var ErrNotFound = errors.New("object not found")

// PutObjectOptions define optional parameters for uploading objects.
// Size should be the exact number of bytes if known; if unknown, set to -1.
type PutObjectOptions struct {
	Size        int64
	ContentType string
	Metadata    map[string]string
}

// ObjectInfo contains basic information about a stored object.
type ObjectInfo struct {
	Key          string
	Size         int64
	ContentType  string
	LastModified time.Time
	Metadata     map[string]string
}

// Storage is the blob backend used by the attachment store.
// Keys are flat names; implementations reject keys that would escape their root.
type Storage interface {
	// Put stores the reader's content under key.
	Put(ctx context.Context, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error)
	// Get returns a streaming reader for key alongside its info.
	Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error)
	// Delete removes key.
	Delete(ctx context.Context, key string) error
}

// New builds the backend selected by cfg.Driver. Setup is idempotent:
// the directory or bucket is created when missing.
func New(cfg config.StorageConfig) (Storage, error) {
	switch cfg.Driver {
	case "", "local":
		return NewLocal(cfg.UploadsDir)
	case "minio":
		return NewMinIO(cfg.MinIO)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
