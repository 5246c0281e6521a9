// Package storage holds blob store clients for influencer assets.
package storage

import (
	"context"

	"github.com/gabriel-vasile/mimetype"
)

// BlobStore stores opaque objects addressed by bucket and path.
type BlobStore interface {
	// Upload writes data at path, replacing any existing object.
	Upload(ctx context.Context, bucket, path string, data []byte, contentType string) error
	// Download returns the object bytes or a NOT_FOUND error.
	Download(ctx context.Context, bucket, path string) ([]byte, error)
	// Ping checks that the store is reachable.
	Ping(ctx context.Context) error
}

// DetectContentType sniffs the MIME type of data. It never rejects input.
func DetectContentType(data []byte) string {
	return mimetype.Detect(data).String()
}
