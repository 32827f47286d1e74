package objectstore

import (
	"context"
	"time"
)

// Store is the durable byte storage collaborator. SignedURL hands out a
// short-lived read handle that the extraction service can fetch without
// holding credentials.
type Store interface {
	Put(ctx context.Context, data []byte, name string, contentType string) (string, error)
	SignedURL(location string, ttl time.Duration) (string, error)
	Delete(ctx context.Context, location string) error
}
