package storage

import (
	"context"
	"io"
)

// SnapshotStore defines the interface for archiving fetched page content.
// The pipeline works without one; a nil store simply disables archiving.
type SnapshotStore interface {
	// Put uploads a snapshot to storage
	Put(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error

	// Get downloads a snapshot from storage
	Get(ctx context.Context, key string) (io.ReadCloser, error)

	// URL returns the URL for accessing a snapshot
	URL(key string) string

	// Exists checks if a snapshot is already archived
	Exists(ctx context.Context, key string) (bool, error)
}

// SnapshotKey builds the archive object key for a content fingerprint. Keys
// are bucketed by hash prefix so one directory never grows unbounded.
func SnapshotKey(contentHash string) string {
	if len(contentHash) < 2 {
		return contentHash + ".html"
	}
	return contentHash[:2] + "/" + contentHash + ".html"
}
