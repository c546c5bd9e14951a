package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/nguyentantai21042004/audio-summarizer/internal/apperror"
)

// localStore keeps objects under root/<bucket>/<key>.
type localStore struct {
	root   string
	scheme string
	bucket string
}

// NewLocal creates a BlobStore backed by a directory.
func NewLocal(root, scheme, bucket string) BlobStore {
	if scheme == "" {
		scheme = "file"
	}
	if bucket == "" {
		bucket = "local"
	}
	return &localStore{root: root, scheme: scheme, bucket: bucket}
}

func (s *localStore) Download(ctx context.Context, loc Locator, destPath string) (string, error) {
	src, err := s.objectPath(loc.Bucket, loc.Key)
	if err != nil {
		return "", err
	}

	f, err := os.Open(src)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", apperror.NotFound(loc.String(), err)
		}
		if errors.Is(err, fs.ErrPermission) {
			return "", apperror.AccessDenied(loc.String(), err)
		}
		return "", fmt.Errorf("storage: open %s: %w", loc, err)
	}
	defer f.Close()

	if err := writeFile(destPath, f); err != nil {
		return "", fmt.Errorf("storage: save %s: %w", loc, err)
	}
	return destPath, nil
}

func (s *localStore) Upload(ctx context.Context, localPath, key string) (Locator, error) {
	loc := Locator{Scheme: s.scheme, Bucket: s.bucket, Key: key}
	dst, err := s.objectPath(s.bucket, key)
	if err != nil {
		return Locator{}, err
	}

	f, err := os.Open(localPath)
	if err != nil {
		return Locator{}, fmt.Errorf("storage: open %s: %w", localPath, err)
	}
	defer f.Close()

	if err := writeFile(dst, f); err != nil {
		return Locator{}, fmt.Errorf("storage: write %s: %w", loc, err)
	}
	return loc, nil
}

// objectPath resolves bucket/key under root and refuses keys that escape it.
func (s *localStore) objectPath(bucket, key string) (string, error) {
	if bucket == "" {
		bucket = s.bucket
	}
	root := filepath.Clean(s.root)
	base := filepath.Join(root, bucket)
	if !within(root, base) || base == root {
		return "", apperror.AccessDenied(bucket, errors.New("bucket escapes storage root"))
	}
	p := filepath.Join(base, filepath.FromSlash(key))
	if !within(base, p) {
		return "", apperror.AccessDenied(key, errors.New("key escapes storage root"))
	}
	return p, nil
}

func within(dir, p string) bool {
	return p == dir || strings.HasPrefix(p, dir+string(filepath.Separator))
}
