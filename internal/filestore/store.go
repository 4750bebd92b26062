// Package filestore is the object storage boundary used to keep schema
// snapshots. Callers depend on Store only; the minio package provides the
// implementation.
package filestore

import (
	"context"
	"io"
	"time"
)

// Store is implemented by every object storage provider.
type Store interface {
	// Ping verifies the backend is reachable.
	Ping(ctx context.Context) error

	// Close releases held resources.
	Close() error

	// EnsureBucket creates bucket when it does not exist yet.
	EnsureBucket(ctx context.Context, bucket string) error

	// PutObject writes size bytes from r to key. A size of -1 streams until EOF.
	PutObject(ctx context.Context, bucket, key string, r io.Reader, size int64, opts PutOptions) (*ObjectInfo, error)

	// GetObject opens the object at key. The caller must Close it.
	GetObject(ctx context.Context, bucket, key string) (Object, error)

	// StatObject returns metadata without downloading content.
	StatObject(ctx context.Context, bucket, key string) (*ObjectInfo, error)

	// ListObjects returns the objects in bucket matching opts.
	ListObjects(ctx context.Context, bucket string, opts ListOptions) ([]ObjectInfo, error)

	// PresignGetURL returns a URL that downloads key without credentials
	// until ttl expires.
	PresignGetURL(ctx context.Context, bucket, key string, ttl time.Duration) (string, error)
}
