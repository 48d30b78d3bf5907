package storage

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/rowgate/rowgate/internal/domain"
)

// Backend is one concrete storage provider. Implementations transfer bytes
// for a fully resolved key; path expansion and credential checks happen in
// the Service before a backend is ever constructed.
type Backend interface {
	Upload(ctx context.Context, key string, data []byte) (string, error)
	Delete(ctx context.Context, key string) error
}

// UploadResult describes a persisted file.
type UploadResult struct {
	URL         string             `json:"url"`
	Pathname    string             `json:"pathname"`
	Size        int64              `json:"size"`
	StorageType domain.StorageType `json:"storage_type"`
}

// Service resolves a storage configuration to a concrete backend, expands the
// path template, and exposes a uniform upload/delete contract. UUIDSource is
// exported so tests can substitute a deterministic sequence.
type Service struct {
	LocalRoot  string
	UUIDSource func() string

	newBackend func(cfg domain.StorageConfiguration, localRoot string) (Backend, error)
}

// NewService creates a storage service. localRoot is the directory the local
// backend writes under.
func NewService(localRoot string) *Service {
	return &Service{
		LocalRoot:  localRoot,
		UUIDSource: uuid.NewString,
		newBackend: newBackend,
	}
}

// Upload validates credentials, expands the configured path template for the
// original file name, and delegates the byte transfer to the backend for the
// configuration's storage type.
func (s *Service) Upload(ctx context.Context, cfg domain.StorageConfiguration, fileName string, data []byte) (UploadResult, error) {
	if err := ValidateCredentials(cfg); err != nil {
		return UploadResult{}, err
	}

	key := ExpandPathTemplate(cfg.PathTemplate, cfg.BasePath, s.UUIDSource(), FileExtension(fileName))

	backend, err := s.newBackend(cfg, s.LocalRoot)
	if err != nil {
		return UploadResult{}, classify(string(cfg.StorageType), domain.CodeStorageError, err)
	}

	url, err := backend.Upload(ctx, key, data)
	if err != nil {
		return UploadResult{}, classify(string(cfg.StorageType), domain.CodeUploadFailed, err)
	}

	return UploadResult{
		URL:         url,
		Pathname:    key,
		Size:        int64(len(data)),
		StorageType: cfg.StorageType,
	}, nil
}

// Delete removes a previously stored file by its resolved key.
func (s *Service) Delete(ctx context.Context, cfg domain.StorageConfiguration, pathname string) error {
	if err := ValidateCredentials(cfg); err != nil {
		return err
	}
	backend, err := s.newBackend(cfg, s.LocalRoot)
	if err != nil {
		return classify(string(cfg.StorageType), domain.CodeStorageError, err)
	}
	if err := backend.Delete(ctx, pathname); err != nil {
		return classify(string(cfg.StorageType), domain.CodeStorageError, err)
	}
	return nil
}

// ValidateCredentials fails fast, before any network call, when the selected
// storage type is missing required credential fields.
func ValidateCredentials(cfg domain.StorageConfiguration) error {
	switch cfg.StorageType {
	case domain.StorageTypeS3:
		var missing []string
		if cfg.AccessKeyID == "" {
			missing = append(missing, "access_key_id")
		}
		if cfg.SecretAccessKey == "" {
			missing = append(missing, "secret_access_key")
		}
		if cfg.BucketName == "" {
			missing = append(missing, "bucket_name")
		}
		if len(missing) > 0 {
			return missingCredentials(string(cfg.StorageType), missing...)
		}
	case domain.StorageTypeGCS:
		var missing []string
		if cfg.KeyFilePath == "" {
			missing = append(missing, "key_file_path")
		}
		if cfg.BucketName == "" {
			missing = append(missing, "bucket_name")
		}
		if len(missing) > 0 {
			return missingCredentials(string(cfg.StorageType), missing...)
		}
	case domain.StorageTypeAzure:
		var missing []string
		if cfg.AccountName == "" {
			missing = append(missing, "account_name")
		}
		if cfg.AccountKey == "" {
			missing = append(missing, "account_key")
		}
		if cfg.BucketName == "" {
			missing = append(missing, "container_name")
		}
		if len(missing) > 0 {
			return missingCredentials(string(cfg.StorageType), missing...)
		}
	case domain.StorageTypeLocal:
		// Nothing to validate.
	default:
		return &StorageError{
			Code:      domain.CodeStorageError,
			Message:   fmt.Sprintf("unsupported storage type %q", cfg.StorageType),
			Provider:  string(cfg.StorageType),
			Retryable: false,
		}
	}
	return nil
}

// newBackend is the resolver from storage type to backend variant. Adding a
// provider means adding a case here, call sites stay unchanged.
func newBackend(cfg domain.StorageConfiguration, localRoot string) (Backend, error) {
	switch cfg.StorageType {
	case domain.StorageTypeS3:
		return newS3Backend(cfg)
	case domain.StorageTypeGCS:
		return newGCSBackend(cfg)
	case domain.StorageTypeAzure:
		return newAzureBackend(cfg)
	case domain.StorageTypeLocal:
		return newLocalBackend(localRoot), nil
	default:
		return nil, fmt.Errorf("unsupported storage type %q", cfg.StorageType)
	}
}
