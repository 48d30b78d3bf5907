package storage

import (
	"context"
	"fmt"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/rowgate/rowgate/internal/domain"
)

var _ Backend = (*gcsBackend)(nil)

// gcsBackend stores files in Google Cloud Storage using a service account
// key file.
type gcsBackend struct {
	client *storage.Client
	bucket string
}

func newGCSBackend(cfg domain.StorageConfiguration) (*gcsBackend, error) {
	client, err := storage.NewClient(context.Background(), option.WithCredentialsFile(cfg.KeyFilePath))
	if err != nil {
		return nil, fmt.Errorf("create GCS client: %w", err)
	}
	return &gcsBackend{client: client, bucket: cfg.BucketName}, nil
}

func (b *gcsBackend) Upload(ctx context.Context, key string, data []byte) (string, error) {
	w := b.client.Bucket(b.bucket).Object(key).NewWriter(ctx)
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("write object %q: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("finalize object %q: %w", key, err)
	}
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", b.bucket, key), nil
}

func (b *gcsBackend) Delete(ctx context.Context, key string) error {
	if err := b.client.Bucket(b.bucket).Object(key).Delete(ctx); err != nil {
		return fmt.Errorf("delete object %q: %w", key, err)
	}
	return nil
}
