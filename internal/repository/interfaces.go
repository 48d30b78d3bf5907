package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/rowgate/rowgate/internal/domain"
)

// ErrNotFound is returned when a requested row does not exist or is soft
// deleted.
var ErrNotFound = errors.New("not found")

// ErrInUse is returned when a delete would orphan rows that reference the
// target.
var ErrInUse = errors.New("resource is referenced by existing records")

// UploadConfigurationRepository manages upload configurations and their
// column schemas. Columns are always written wholesale: Create and Update
// replace the full column list in one transaction.
type UploadConfigurationRepository interface {
	Create(ctx context.Context, cfg domain.UploadConfiguration) (domain.UploadConfiguration, error)
	GetByID(ctx context.Context, id int64) (domain.UploadConfiguration, error)
	List(ctx context.Context, includeInactive bool) ([]domain.UploadConfiguration, error)
	Update(ctx context.Context, cfg domain.UploadConfiguration) (domain.UploadConfiguration, error)
	SoftDelete(ctx context.Context, id int64) error
}

// StorageConfigurationRepository manages storage destinations and their
// credentials.
type StorageConfigurationRepository interface {
	Create(ctx context.Context, cfg domain.StorageConfiguration) (domain.StorageConfiguration, error)
	GetByID(ctx context.Context, id int64) (domain.StorageConfiguration, error)
	List(ctx context.Context) ([]domain.StorageConfiguration, error)
	Update(ctx context.Context, cfg domain.StorageConfiguration) (domain.StorageConfiguration, error)
	SoftDelete(ctx context.Context, id int64) error
}

// OperationFilter narrows an operation listing. Zero values mean "any";
// Limit falls back to a default page size when unset.
type OperationFilter struct {
	ConfigID int64
	Status   domain.OperationStatus
	Limit    int
	Offset   int
}

// UploadOperationRepository records ingestion attempts and their outcomes.
type UploadOperationRepository interface {
	Insert(ctx context.Context, op domain.UploadOperation) error
	Update(ctx context.Context, op domain.UploadOperation) error
	GetByID(ctx context.Context, id uuid.UUID) (domain.UploadOperation, error)
	List(ctx context.Context, filter OperationFilter) ([]domain.UploadOperation, error)
	SoftDelete(ctx context.Context, id uuid.UUID) error
}

// IngestionErrorRepository persists row-level diagnostics for an operation so
// they can be reviewed after the upload response is gone.
type IngestionErrorRepository interface {
	RecordBatch(ctx context.Context, operationID uuid.UUID, errs []domain.ValidationError) error
	ListByOperation(ctx context.Context, operationID uuid.UUID) ([]domain.ValidationError, error)
}
