package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/nguyentantai21042004/audio-summarizer/internal/apperror"
	"github.com/nguyentantai21042004/audio-summarizer/internal/config"
)

func TestParseLocator(t *testing.T) {
	tests := []struct {
		in      string
		want    Locator
		wantErr bool
	}{
		{in: "gs://my-bucket/audio/file.mp3", want: Locator{"gs", "my-bucket", "audio/file.mp3"}},
		{in: "s3://reports/u1/talk.docx", want: Locator{"s3", "reports", "u1/talk.docx"}},
		{in: "https://storage.googleapis.com/my-bucket/templates/t.docx", want: Locator{"https", "my-bucket", "templates/t.docx"}},
		{in: "  gs://b/k  ", want: Locator{"gs", "b", "k"}},
		{in: "gs://bucket-only", wantErr: true},
		{in: "gs://bucket/", wantErr: true},
		{in: "https://host/bucket-only", wantErr: true},
		{in: "/local/path.mp3", wantErr: true},
		{in: "", wantErr: true},
		{in: "gs://../secret.txt", wantErr: true},
		{in: "gs://./secret.txt", wantErr: true},
		{in: "https://host/../secret.txt", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLocator(tt.in)
			if tt.wantErr {
				if apperror.CodeOf(err) != apperror.CodeInvalidInput {
					t.Errorf("ParseLocator() error = %v, want INVALID_INPUT", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseLocator() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseLocator() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestLocatorString(t *testing.T) {
	loc := Locator{Scheme: "gs", Bucket: "b", Key: "reports/u1/talk.docx"}
	if loc.String() != "gs://b/reports/u1/talk.docx" {
		t.Errorf("String() = %q", loc.String())
	}
	if loc.Name() != "talk.docx" {
		t.Errorf("Name() = %q", loc.Name())
	}
}

func TestLocalRoundTrip(t *testing.T) {
	root := t.TempDir()
	store, err := New(context.Background(), config.StorageConfig{Provider: config.StorageLocal, LocalPath: root, Scheme: "gs", Bucket: "bkt"})
	if err != nil {
		t.Fatal(err)
	}

	src := filepath.Join(t.TempDir(), "report.docx")
	if err := os.WriteFile(src, []byte("docx bytes"), 0o644); err != nil {
		t.Fatal(err)
	}

	loc, err := store.Upload(context.Background(), src, "reports/u1/report.docx")
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if loc.String() != "gs://bkt/reports/u1/report.docx" {
		t.Errorf("Upload() locator = %s", loc)
	}

	dest := filepath.Join(t.TempDir(), "nested", "copy.docx")
	got, err := store.Download(context.Background(), loc, dest)
	if err != nil {
		t.Fatalf("Download() error = %v", err)
	}
	data, _ := os.ReadFile(got)
	if string(data) != "docx bytes" {
		t.Errorf("downloaded %q", data)
	}
}

func TestLocalErrors(t *testing.T) {
	store := NewLocal(t.TempDir(), "gs", "bkt")

	_, err := store.Download(context.Background(), Locator{Scheme: "gs", Bucket: "bkt", Key: "missing.mp3"}, filepath.Join(t.TempDir(), "x"))
	if apperror.CodeOf(err) != apperror.CodeNotFound {
		t.Errorf("Download(missing) error = %v, want NOT_FOUND", err)
	}

	_, err = store.Download(context.Background(), Locator{Scheme: "gs", Bucket: "bkt", Key: "../../etc/passwd"}, filepath.Join(t.TempDir(), "x"))
	if apperror.CodeOf(err) != apperror.CodeAccessDenied {
		t.Errorf("Download(escape) error = %v, want ACCESS_DENIED", err)
	}
}

func TestLocalRejectsBucketOutsideRoot(t *testing.T) {
	parent := t.TempDir()
	if err := os.WriteFile(filepath.Join(parent, "secret.txt"), []byte("outside root"), 0o644); err != nil {
		t.Fatal(err)
	}
	store := NewLocal(filepath.Join(parent, "blobs"), "gs", "bkt")

	for _, bucket := range []string{"..", ".", "../blobs", "a/../.."} {
		t.Run(bucket, func(t *testing.T) {
			dest := filepath.Join(t.TempDir(), "x")
			_, err := store.Download(context.Background(), Locator{Scheme: "gs", Bucket: bucket, Key: "secret.txt"}, dest)
			if apperror.CodeOf(err) != apperror.CodeAccessDenied {
				t.Errorf("Download(bucket %q) error = %v, want ACCESS_DENIED", bucket, err)
			}
			if _, statErr := os.Stat(dest); statErr == nil {
				t.Errorf("Download(bucket %q) wrote %s", bucket, dest)
			}
		})
	}
}

type fakeS3 struct {
	objects map[string]string
	getErr  error
	putErr  error
	puts    []string
}

func (f *fakeS3) GetObject(ctx context.Context, in *awss3.GetObjectInput, _ ...func(*awss3.Options)) (*awss3.GetObjectOutput, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	body, ok := f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{Message: aws.String("not found")}
	}
	return &awss3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(body))}, nil
}

func (f *fakeS3) PutObject(ctx context.Context, in *awss3.PutObjectInput, _ ...func(*awss3.Options)) (*awss3.PutObjectOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	data, _ := io.ReadAll(in.Body)
	f.puts = append(f.puts, aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)+"="+string(data))
	return &awss3.PutObjectOutput{}, nil
}

func TestS3Download(t *testing.T) {
	fake := &fakeS3{objects: map[string]string{"other-bucket/audio/talk.mp3": "mp3 bytes"}}
	store := newS3Store(fake, "bkt", "gs")

	dest := filepath.Join(t.TempDir(), "talk.mp3")
	if _, err := store.Download(context.Background(), Locator{Scheme: "gs", Bucket: "other-bucket", Key: "audio/talk.mp3"}, dest); err != nil {
		t.Fatalf("Download() error = %v", err)
	}
	if data, _ := os.ReadFile(dest); string(data) != "mp3 bytes" {
		t.Errorf("downloaded %q", data)
	}

	_, err := store.Download(context.Background(), Locator{Scheme: "gs", Bucket: "bkt", Key: "nope"}, dest)
	if apperror.CodeOf(err) != apperror.CodeNotFound {
		t.Errorf("Download(missing) error = %v, want NOT_FOUND", err)
	}
}

func TestS3Upload(t *testing.T) {
	fake := &fakeS3{}
	store := newS3Store(fake, "bkt", "gs")

	src := filepath.Join(t.TempDir(), "r.docx")
	os.WriteFile(src, []byte("report"), 0o644)

	loc, err := store.Upload(context.Background(), src, "reports/u1/r.docx")
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if loc.String() != "gs://bkt/reports/u1/r.docx" {
		t.Errorf("Upload() = %s", loc)
	}
	if len(fake.puts) != 1 || fake.puts[0] != "bkt/reports/u1/r.docx=report" {
		t.Errorf("puts = %v", fake.puts)
	}
}

func TestS3ErrorClassification(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want apperror.Code
	}{
		{"no such key", &types.NoSuchKey{}, apperror.CodeNotFound},
		{"no such bucket", &types.NoSuchBucket{}, apperror.CodeNotFound},
		{"access denied", &smithy.GenericAPIError{Code: "AccessDenied", Message: "denied"}, apperror.CodeAccessDenied},
		{"bad signature", &smithy.GenericAPIError{Code: "SignatureDoesNotMatch"}, apperror.CodeAccessDenied},
		{"throttled", &smithy.GenericAPIError{Code: "SlowDown"}, apperror.CodeServiceUnavailable},
		{"network", errors.New("dial tcp: connection refused"), apperror.CodeServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newS3Store(&fakeS3{getErr: tt.err}, "bkt", "s3")
			_, err := store.Download(context.Background(), Locator{Scheme: "s3", Bucket: "bkt", Key: "k"}, filepath.Join(t.TempDir(), "k"))
			if got := apperror.CodeOf(err); got != tt.want {
				t.Errorf("code = %s, want %s (%v)", got, tt.want, err)
			}
		})
	}

	if err := classify("x", context.Canceled); !errors.Is(err, context.Canceled) {
		t.Errorf("classify(Canceled) = %v", err)
	}
}
