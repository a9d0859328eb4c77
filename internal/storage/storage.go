// Package storage holds file contents outside the database. Records only keep
// an opaque content reference into an ObjectStore.
package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
)

// ObjectStore persists file bytes under opaque keys.
type ObjectStore interface {
	// Put writes size bytes from r under key.
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error

	// Delete releases the object. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// PresignGet returns a time-limited download URL that serves the object
	// as an attachment named filename.
	PresignGet(ctx context.Context, key, filename string, ttl time.Duration) (string, error)
}

// NewContentRef returns a fresh object key for an owner's file
func NewContentRef(owner string) string {
	d := time.Now().UTC()
	return fmt.Sprintf("users/%s/%d/%02d/%02d/%s", owner, d.Year(), d.Month(), d.Day(), uuid.New())
}
