// Package cloud stores journal backups in object storage. A backup is a
// single object (a journal file or a zstd snapshot) under a bucket and
// prefix named by an s3:// or gs:// URL.
package cloud

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"
)

// Backend abstracts the object storage operations behind push and pull.
type Backend interface {
	// Upload writes size bytes from r to key.
	Upload(ctx context.Context, key string, r io.Reader, size int64) error

	// Download streams the object at key to w.
	Download(ctx context.Context, key string, w io.Writer) error

	// List returns the objects under prefix.
	List(ctx context.Context, prefix string) ([]ObjectInfo, error)

	// ShareURL returns a presigned, time-limited download URL for key.
	ShareURL(ctx context.Context, key string, expiry time.Duration) (string, error)
}

// ObjectInfo describes one remote backup object.
type ObjectInfo struct {
	Key  string
	Size int64
}

// ParseURL splits a remote URL into scheme, bucket, and key prefix.
// Supported schemes: s3://, gs://.
func ParseURL(raw string) (scheme, bucket, prefix string, err error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", "", "", fmt.Errorf("empty URL")
	}

	var rest string
	switch {
	case strings.HasPrefix(raw, "s3://"):
		scheme = "s3"
		rest = strings.TrimPrefix(raw, "s3://")
	case strings.HasPrefix(raw, "gs://"):
		scheme = "gs"
		rest = strings.TrimPrefix(raw, "gs://")
	default:
		return "", "", "", fmt.Errorf("unsupported scheme in %q: expected s3:// or gs://", raw)
	}

	if rest == "" {
		return "", "", "", fmt.Errorf("empty bucket in %q", raw)
	}

	idx := strings.IndexByte(rest, '/')
	if idx < 0 {
		return scheme, rest, "", nil
	}

	bucket = rest[:idx]
	if bucket == "" {
		return "", "", "", fmt.Errorf("empty bucket in %q", raw)
	}
	prefix = strings.TrimSuffix(rest[idx+1:], "/")

	return scheme, bucket, prefix, nil
}

// NewBackend connects to the bucket named by scheme.
func NewBackend(ctx context.Context, scheme, bucket string) (Backend, error) {
	switch scheme {
	case "s3":
		return newS3Backend(ctx, bucket)
	case "gs":
		return newGCSBackend(ctx, bucket)
	default:
		return nil, fmt.Errorf("unsupported scheme %q: expected s3 or gs", scheme)
	}
}

// JoinKey builds an object key from a prefix and a file name.
func JoinKey(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return strings.TrimSuffix(prefix, "/") + "/" + name
}
