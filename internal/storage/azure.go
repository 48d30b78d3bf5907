package storage

import (
	"context"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"

	"github.com/rowgate/rowgate/internal/domain"
)

var _ Backend = (*azureBackend)(nil)

// azureBackend stores files in Azure Blob Storage using shared-key
// credentials.
type azureBackend struct {
	client     *azblob.Client
	container  string
	serviceURL string
}

func newAzureBackend(cfg domain.StorageConfiguration) (*azureBackend, error) {
	cred, err := azblob.NewSharedKeyCredential(cfg.AccountName, cfg.AccountKey)
	if err != nil {
		return nil, fmt.Errorf("create shared key credential: %w", err)
	}

	serviceURL := fmt.Sprintf("https://%s.blob.core.windows.net", cfg.AccountName)
	client, err := azblob.NewClientWithSharedKeyCredential(serviceURL, cred, nil)
	if err != nil {
		return nil, fmt.Errorf("create Azure blob client: %w", err)
	}

	return &azureBackend{
		client:     client,
		container:  cfg.BucketName,
		serviceURL: serviceURL,
	}, nil
}

func (b *azureBackend) Upload(ctx context.Context, key string, data []byte) (string, error) {
	if _, err := b.client.UploadBuffer(ctx, b.container, key, data, nil); err != nil {
		return "", fmt.Errorf("upload blob %q: %w", key, err)
	}
	return fmt.Sprintf("%s/%s/%s", b.serviceURL, b.container, key), nil
}

func (b *azureBackend) Delete(ctx context.Context, key string) error {
	if _, err := b.client.DeleteBlob(ctx, b.container, key, nil); err != nil {
		return fmt.Errorf("delete blob %q: %w", key, err)
	}
	return nil
}
