// Package storage moves pipeline inputs and outputs between local disk and
// blob storage.
package storage

import "context"

// BlobStore downloads inputs and uploads results.
type BlobStore interface {
	// Download copies the object at loc to destPath and returns destPath.
	Download(ctx context.Context, loc Locator, destPath string) (string, error)
	// Upload stores localPath under key in the configured bucket.
	Upload(ctx context.Context, localPath, key string) (Locator, error)
}
