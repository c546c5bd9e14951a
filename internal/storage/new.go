package storage

import (
	"context"
	"fmt"

	"github.com/nguyentantai21042004/audio-summarizer/internal/config"
)

// New creates the BlobStore for the configured provider.
func New(ctx context.Context, cfg config.StorageConfig) (BlobStore, error) {
	switch cfg.Provider {
	case config.StorageLocal:
		return NewLocal(cfg.LocalPath, cfg.Scheme, cfg.Bucket), nil
	case config.StorageS3:
		return NewS3(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown storage provider %q", cfg.Provider)
	}
}
