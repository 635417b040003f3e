package blob

import (
	"context"
	"io"
	"time"
)

// Store is the binary object store behind file rows. Metadata ownership stays
// in the database; the store only ever sees opaque keys.
type Store interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	Remove(ctx context.Context, key string) error
	SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
}
