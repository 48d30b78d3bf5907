package configapi

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rowgate/rowgate/internal/domain"
	"github.com/rowgate/rowgate/internal/repository"
	"github.com/rowgate/rowgate/internal/storage"
	"github.com/rowgate/rowgate/internal/validation"
)

// ErrInvalid marks a configuration the service refuses to save. Handlers map
// it to a 400.
var ErrInvalid = errors.New("invalid configuration")

// Service manages upload and storage configurations. Structural problems are
// rejected at save time so ingestion never sees a configuration it cannot
// apply.
type Service struct {
	configRepo  repository.UploadConfigurationRepository
	storageRepo repository.StorageConfigurationRepository
	registry    *validation.Registry
}

// NewService creates a configuration service.
func NewService(
	configRepo repository.UploadConfigurationRepository,
	storageRepo repository.StorageConfigurationRepository,
	registry *validation.Registry,
) *Service {
	return &Service{
		configRepo:  configRepo,
		storageRepo: storageRepo,
		registry:    registry,
	}
}

// CreateConfiguration validates and persists a new upload configuration with
// its column list.
func (s *Service) CreateConfiguration(ctx context.Context, cfg domain.UploadConfiguration) (domain.UploadConfiguration, error) {
	if err := s.checkConfiguration(ctx, cfg); err != nil {
		return domain.UploadConfiguration{}, err
	}
	return s.configRepo.Create(ctx, cfg)
}

// UpdateConfiguration validates and persists changes to an existing
// configuration. The column list replaces the stored one wholesale.
func (s *Service) UpdateConfiguration(ctx context.Context, cfg domain.UploadConfiguration) (domain.UploadConfiguration, error) {
	if err := s.checkConfiguration(ctx, cfg); err != nil {
		return domain.UploadConfiguration{}, err
	}
	return s.configRepo.Update(ctx, cfg)
}

// GetConfiguration returns one configuration with its columns.
func (s *Service) GetConfiguration(ctx context.Context, id int64) (domain.UploadConfiguration, error) {
	return s.configRepo.GetByID(ctx, id)
}

// ListConfigurations returns all configurations, optionally including
// inactive ones.
func (s *Service) ListConfigurations(ctx context.Context, includeInactive bool) ([]domain.UploadConfiguration, error) {
	return s.configRepo.List(ctx, includeInactive)
}

// DeleteConfiguration soft-deletes a configuration. Operation records that
// reference it keep working.
func (s *Service) DeleteConfiguration(ctx context.Context, id int64) error {
	return s.configRepo.SoftDelete(ctx, id)
}

// CreateStorageConfiguration validates and persists a storage destination.
func (s *Service) CreateStorageConfiguration(ctx context.Context, cfg domain.StorageConfiguration) (domain.StorageConfiguration, error) {
	if err := s.checkStorageConfiguration(cfg); err != nil {
		return domain.StorageConfiguration{}, err
	}
	return s.storageRepo.Create(ctx, cfg)
}

// UpdateStorageConfiguration validates and persists changes to a storage
// destination.
func (s *Service) UpdateStorageConfiguration(ctx context.Context, cfg domain.StorageConfiguration) (domain.StorageConfiguration, error) {
	if err := s.checkStorageConfiguration(cfg); err != nil {
		return domain.StorageConfiguration{}, err
	}
	return s.storageRepo.Update(ctx, cfg)
}

// GetStorageConfiguration returns one storage destination.
func (s *Service) GetStorageConfiguration(ctx context.Context, id int64) (domain.StorageConfiguration, error) {
	return s.storageRepo.GetByID(ctx, id)
}

// ListStorageConfigurations returns all storage destinations.
func (s *Service) ListStorageConfigurations(ctx context.Context) ([]domain.StorageConfiguration, error) {
	return s.storageRepo.List(ctx)
}

// DeleteStorageConfiguration soft-deletes a storage destination unless an
// upload configuration still references it.
func (s *Service) DeleteStorageConfiguration(ctx context.Context, id int64) error {
	return s.storageRepo.SoftDelete(ctx, id)
}

// Template renders a delimited example file for a configuration: the header
// row lists column names in declared position order, and a single example row
// carries a type-appropriate placeholder for every required column.
func (s *Service) Template(ctx context.Context, id int64) (string, []byte, error) {
	cfg, err := s.configRepo.GetByID(ctx, id)
	if err != nil {
		return "", nil, err
	}

	columns := make([]domain.ColumnSchema, len(cfg.Columns))
	copy(columns, cfg.Columns)
	sort.SliceStable(columns, func(i, j int) bool { return columns[i].Position < columns[j].Position })

	delimiter := cfg.Delimiter
	if delimiter == "" {
		delimiter = ","
	}

	headers := make([]string, len(columns))
	example := make([]string, len(columns))
	for i, col := range columns {
		headers[i] = col.Name
		if col.Required {
			example[i] = exampleValue(col)
		}
	}

	var buf bytes.Buffer
	buf.WriteString(strings.Join(headers, delimiter))
	buf.WriteString("\n")
	buf.WriteString(strings.Join(example, delimiter))
	buf.WriteString("\n")

	fileName := fmt.Sprintf("%s_template.csv", strings.ReplaceAll(strings.ToLower(cfg.Name), " ", "_"))
	return fileName, buf.Bytes(), nil
}

func (s *Service) checkConfiguration(ctx context.Context, cfg domain.UploadConfiguration) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	// Unknown validator identifiers are rejected here, not at validation
	// time, so a bad configuration can never be saved.
	for _, col := range cfg.Columns {
		if col.CustomValidator != "" && !s.registry.Known(col.CustomValidator) {
			return fmt.Errorf("%w: column %q references unknown validator %q (available: %s)",
				ErrInvalid, col.Name, col.CustomValidator, strings.Join(s.registry.Names(), ", "))
		}
	}

	if _, err := s.storageRepo.GetByID(ctx, cfg.StorageConfigID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%w: storage configuration %d does not exist", ErrInvalid, cfg.StorageConfigID)
		}
		return err
	}

	return nil
}

func (s *Service) checkStorageConfiguration(cfg domain.StorageConfiguration) error {
	if strings.TrimSpace(cfg.Name) == "" {
		return fmt.Errorf("%w: storage configuration name is required", ErrInvalid)
	}
	if err := storage.ValidateCredentials(cfg); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}

func exampleValue(col domain.ColumnSchema) string {
	switch col.DataType {
	case domain.DataTypeNumber:
		if col.MinValue != nil {
			return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%f", *col.MinValue), "0"), ".")
		}
		return "123"
	case domain.DataTypeBoolean:
		return "true"
	case domain.DataTypeEmail:
		return "user@example.com"
	case domain.DataTypeDate:
		layout := col.Pattern
		if layout == "" {
			layout = "2006-01-02"
		}
		return time.Now().Format(layout)
	case domain.DataTypeDatetime:
		layout := col.Pattern
		if layout == "" {
			layout = time.RFC3339
		}
		return time.Now().Format(layout)
	default:
		return "example"
	}
}
