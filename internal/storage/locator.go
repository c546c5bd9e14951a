package storage

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/nguyentantai21042004/audio-summarizer/internal/apperror"
)

// Locator addresses one object in a bucket.
type Locator struct {
	Scheme string
	Bucket string
	Key    string
}

func (l Locator) String() string {
	return fmt.Sprintf("%s://%s/%s", l.Scheme, l.Bucket, l.Key)
}

// Name returns the last path element of the key.
func (l Locator) Name() string {
	if i := strings.LastIndex(l.Key, "/"); i >= 0 {
		return l.Key[i+1:]
	}
	return l.Key
}

// ParseLocator accepts scheme://bucket/key for object-store schemes
// (gs, s3, file) and http(s)://host/bucket/key URLs.
func ParseLocator(raw string) (Locator, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return Locator{}, apperror.Wrap(apperror.CodeInvalidInput, "invalid storage locator", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return Locator{}, apperror.InvalidInput("storage locator %q needs a scheme and a bucket", raw)
	}

	path := strings.TrimPrefix(u.Path, "/")

	switch u.Scheme {
	case "http", "https":
		bucket, key, ok := strings.Cut(path, "/")
		if !ok || bucket == "" || key == "" {
			return Locator{}, apperror.InvalidInput("storage URL %q must look like https://host/bucket/key", raw)
		}
		if err := checkBucket(raw, bucket); err != nil {
			return Locator{}, err
		}
		return Locator{Scheme: u.Scheme, Bucket: bucket, Key: key}, nil
	default:
		if path == "" {
			return Locator{}, apperror.InvalidInput("storage locator %q has no object key", raw)
		}
		if err := checkBucket(raw, u.Host); err != nil {
			return Locator{}, err
		}
		return Locator{Scheme: u.Scheme, Bucket: u.Host, Key: path}, nil
	}
}

// checkBucket rejects bucket names that would act as path elements.
func checkBucket(raw, bucket string) error {
	if bucket == "." || bucket == ".." || strings.ContainsAny(bucket, `/\`) {
		return apperror.InvalidInput("storage locator %q has an invalid bucket name", raw)
	}
	return nil
}
