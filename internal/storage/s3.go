package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/nguyentantai21042004/audio-summarizer/internal/apperror"
	"github.com/nguyentantai21042004/audio-summarizer/internal/config"
)

// objectAPI is the part of the S3 client the store uses.
type objectAPI interface {
	GetObject(ctx context.Context, in *awss3.GetObjectInput, optFns ...func(*awss3.Options)) (*awss3.GetObjectOutput, error)
	PutObject(ctx context.Context, in *awss3.PutObjectInput, optFns ...func(*awss3.Options)) (*awss3.PutObjectOutput, error)
}

type s3Store struct {
	client objectAPI
	bucket string
	scheme string
}

// NewS3 creates a BlobStore for S3 or an S3-compatible endpoint, such as the
// Cloud Storage XML API with HMAC keys.
func NewS3(ctx context.Context, cfg config.StorageConfig) (BlobStore, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("storage: bucket is required")
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("storage: load aws config: %w", err)
	}

	client := awss3.NewFromConfig(awsCfg, func(o *awss3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.ForcePathStyle
	})

	return newS3Store(client, cfg.Bucket, cfg.Scheme), nil
}

func newS3Store(client objectAPI, bucket, scheme string) *s3Store {
	if scheme == "" {
		scheme = "s3"
	}
	return &s3Store{client: client, bucket: bucket, scheme: scheme}
}

func (s *s3Store) Download(ctx context.Context, loc Locator, destPath string) (string, error) {
	bucket := loc.Bucket
	if bucket == "" {
		bucket = s.bucket
	}

	out, err := s.client.GetObject(ctx, &awss3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(loc.Key),
	})
	if err != nil {
		return "", classify(loc.String(), err)
	}
	defer out.Body.Close()

	if err := writeFile(destPath, out.Body); err != nil {
		return "", fmt.Errorf("storage: save %s: %w", loc, err)
	}
	return destPath, nil
}

func (s *s3Store) Upload(ctx context.Context, localPath, key string) (Locator, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return Locator{}, fmt.Errorf("storage: open %s: %w", localPath, err)
	}
	defer f.Close()

	loc := Locator{Scheme: s.scheme, Bucket: s.bucket, Key: key}
	_, err = s.client.PutObject(ctx, &awss3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   f,
	})
	if err != nil {
		return Locator{}, classify(loc.String(), err)
	}
	return loc, nil
}

// classify maps S3 errors onto NOT_FOUND, ACCESS_DENIED or
// SERVICE_UNAVAILABLE.
func classify(resource string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var noKey *types.NoSuchKey
	var noBucket *types.NoSuchBucket
	var notFound *types.NotFound
	if errors.As(err, &noKey) || errors.As(err, &noBucket) || errors.As(err, &notFound) {
		return apperror.NotFound(resource, err)
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NoSuchBucket", "NotFound":
			return apperror.NotFound(resource, err)
		case "AccessDenied", "Forbidden", "InvalidAccessKeyId", "SignatureDoesNotMatch", "AllAccessDisabled":
			return apperror.AccessDenied(resource, err)
		}
	}
	return apperror.ServiceUnavailable("storage", err)
}

func writeFile(path string, r io.Reader) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
