package storage

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/rowgate/rowgate/internal/domain"
)

var _ Backend = (*s3Backend)(nil)

// s3Backend stores files in AWS S3 or an S3-compatible object store. When an
// endpoint is configured it is used with path-style addressing, which
// S3-compatible providers generally require.
type s3Backend struct {
	client *s3.Client
	bucket string
	region string
	url    string
}

func newS3Backend(cfg domain.StorageConfiguration) (*s3Backend, error) {
	opts := s3.Options{
		Region: cfg.Region,
		Credentials: credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID, cfg.SecretAccessKey, "",
		),
	}

	publicURL := fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.BucketName, cfg.Region)
	if cfg.Endpoint != "" {
		endpoint := fmt.Sprintf("https://%s", cfg.Endpoint)
		opts.BaseEndpoint = aws.String(endpoint)
		opts.UsePathStyle = true
		publicURL = fmt.Sprintf("%s/%s", endpoint, cfg.BucketName)
	}

	return &s3Backend{
		client: s3.New(opts),
		bucket: cfg.BucketName,
		region: cfg.Region,
		url:    publicURL,
	}, nil
}

func (b *s3Backend) Upload(ctx context.Context, key string, data []byte) (string, error) {
	_, err := b.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(b.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/octet-stream"),
	})
	if err != nil {
		return "", fmt.Errorf("put object %q: %w", key, err)
	}
	return fmt.Sprintf("%s/%s", b.url, key), nil
}

func (b *s3Backend) Delete(ctx context.Context, key string) error {
	_, err := b.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("delete object %q: %w", key, err)
	}
	return nil
}
