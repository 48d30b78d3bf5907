package configapi

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rowgate/rowgate/internal/domain"
	"github.com/rowgate/rowgate/internal/repository"
	"github.com/rowgate/rowgate/internal/validation"
)

type stubConfigRepo struct {
	configs map[int64]domain.UploadConfiguration
	nextID  int64
	updated *domain.UploadConfiguration
}

func newStubConfigRepo() *stubConfigRepo {
	return &stubConfigRepo{configs: map[int64]domain.UploadConfiguration{}, nextID: 1}
}

func (r *stubConfigRepo) Create(_ context.Context, cfg domain.UploadConfiguration) (domain.UploadConfiguration, error) {
	cfg.ID = r.nextID
	r.nextID++
	r.configs[cfg.ID] = cfg
	return cfg, nil
}

func (r *stubConfigRepo) GetByID(_ context.Context, id int64) (domain.UploadConfiguration, error) {
	cfg, ok := r.configs[id]
	if !ok {
		return domain.UploadConfiguration{}, repository.ErrNotFound
	}
	return cfg, nil
}

func (r *stubConfigRepo) List(context.Context, bool) ([]domain.UploadConfiguration, error) {
	out := make([]domain.UploadConfiguration, 0, len(r.configs))
	for _, cfg := range r.configs {
		out = append(out, cfg)
	}
	return out, nil
}

func (r *stubConfigRepo) Update(_ context.Context, cfg domain.UploadConfiguration) (domain.UploadConfiguration, error) {
	if _, ok := r.configs[cfg.ID]; !ok {
		return domain.UploadConfiguration{}, repository.ErrNotFound
	}
	r.configs[cfg.ID] = cfg
	r.updated = &cfg
	return cfg, nil
}

func (r *stubConfigRepo) SoftDelete(_ context.Context, id int64) error {
	if _, ok := r.configs[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.configs, id)
	return nil
}

type stubStorageRepo struct {
	configs map[int64]domain.StorageConfiguration
	inUse   bool
}

func (r *stubStorageRepo) Create(_ context.Context, cfg domain.StorageConfiguration) (domain.StorageConfiguration, error) {
	cfg.ID = int64(len(r.configs) + 1)
	if r.configs == nil {
		r.configs = map[int64]domain.StorageConfiguration{}
	}
	r.configs[cfg.ID] = cfg
	return cfg, nil
}

func (r *stubStorageRepo) GetByID(_ context.Context, id int64) (domain.StorageConfiguration, error) {
	cfg, ok := r.configs[id]
	if !ok {
		return domain.StorageConfiguration{}, repository.ErrNotFound
	}
	return cfg, nil
}

func (r *stubStorageRepo) List(context.Context) ([]domain.StorageConfiguration, error) {
	return nil, nil
}

func (r *stubStorageRepo) Update(_ context.Context, cfg domain.StorageConfiguration) (domain.StorageConfiguration, error) {
	return cfg, nil
}

func (r *stubStorageRepo) SoftDelete(context.Context, int64) error {
	if r.inUse {
		return repository.ErrInUse
	}
	return nil
}

func newTestService() (*Service, *stubConfigRepo, *stubStorageRepo) {
	configRepo := newStubConfigRepo()
	storageRepo := &stubStorageRepo{configs: map[int64]domain.StorageConfiguration{
		7: {ID: 7, Name: "local", StorageType: domain.StorageTypeLocal},
	}}
	return NewService(configRepo, storageRepo, validation.NewRegistry()), configRepo, storageRepo
}

func validConfig() domain.UploadConfiguration {
	return domain.UploadConfiguration{
		Name:            "people",
		FileType:        "csv",
		Delimiter:       ",",
		StorageConfigID: 7,
		Active:          true,
		Columns: []domain.ColumnSchema{
			{Name: "name", DataType: domain.DataTypeString, Required: true, Position: 0},
			{Name: "age", DataType: domain.DataTypeNumber, Position: 1},
		},
	}
}

func TestCreateConfiguration(t *testing.T) {
	service, _, _ := newTestService()

	created, err := service.CreateConfiguration(context.Background(), validConfig())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if created.ID == 0 {
		t.Fatalf("expected id assigned")
	}
}

func TestCreateConfigurationRejectsUnknownValidator(t *testing.T) {
	service, _, _ := newTestService()

	cfg := validConfig()
	cfg.Columns[0].CustomValidator = "does_not_exist"

	_, err := service.CreateConfiguration(context.Background(), cfg)
	if !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
	if !strings.Contains(err.Error(), "does_not_exist") {
		t.Fatalf("error should name the unknown validator: %v", err)
	}
}

func TestCreateConfigurationRejectsDuplicateColumns(t *testing.T) {
	service, _, _ := newTestService()

	cfg := validConfig()
	cfg.Columns = append(cfg.Columns, domain.ColumnSchema{Name: "NAME", DataType: domain.DataTypeString})

	_, err := service.CreateConfiguration(context.Background(), cfg)
	if !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid for duplicate column, got %v", err)
	}
}

func TestCreateConfigurationRejectsMissingStorageConfig(t *testing.T) {
	service, _, _ := newTestService()

	cfg := validConfig()
	cfg.StorageConfigID = 99

	_, err := service.CreateConfiguration(context.Background(), cfg)
	if !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid for unknown storage config, got %v", err)
	}
}

func TestUpdateConfigurationReplacesColumns(t *testing.T) {
	service, configRepo, _ := newTestService()

	created, err := service.CreateConfiguration(context.Background(), validConfig())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	updated := created.WithColumns([]domain.ColumnSchema{
		{Name: "email", DataType: domain.DataTypeEmail, Required: true, Position: 0},
	})

	result, err := service.UpdateConfiguration(context.Background(), updated)
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if len(result.Columns) != 1 || result.Columns[0].Name != "email" {
		t.Fatalf("expected column list replaced, got %+v", result.Columns)
	}
	if configRepo.updated == nil || len(configRepo.updated.Columns) != 1 {
		t.Fatalf("expected repository to receive the full replacement list")
	}
}

func TestCreateStorageConfigurationValidatesCredentials(t *testing.T) {
	service, _, _ := newTestService()

	_, err := service.CreateStorageConfiguration(context.Background(), domain.StorageConfiguration{
		Name:        "broken s3",
		StorageType: domain.StorageTypeS3,
	})
	if !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid for missing credentials, got %v", err)
	}

	_, err = service.CreateStorageConfiguration(context.Background(), domain.StorageConfiguration{
		Name:            "good s3",
		StorageType:     domain.StorageTypeS3,
		BucketName:      "bucket",
		AccessKeyID:     "key",
		SecretAccessKey: "secret",
	})
	if err != nil {
		t.Fatalf("expected valid storage configuration, got %v", err)
	}
}

func TestDeleteStorageConfigurationInUse(t *testing.T) {
	service, _, storageRepo := newTestService()
	storageRepo.inUse = true

	err := service.DeleteStorageConfiguration(context.Background(), 7)
	if !errors.Is(err, repository.ErrInUse) {
		t.Fatalf("expected ErrInUse, got %v", err)
	}
}

func TestTemplateHonorsPositionOrder(t *testing.T) {
	service, _, _ := newTestService()

	cfg := validConfig()
	cfg.Columns = []domain.ColumnSchema{
		{Name: "age", DataType: domain.DataTypeNumber, Required: true, Position: 1},
		{Name: "name", DataType: domain.DataTypeString, Required: true, Position: 0},
		{Name: "joined", DataType: domain.DataTypeDate, Required: true, Pattern: "02/01/2006", Position: 2},
		{Name: "note", DataType: domain.DataTypeString, Position: 3},
	}
	created, err := service.CreateConfiguration(context.Background(), cfg)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	fileName, content, err := service.Template(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("template failed: %v", err)
	}
	if fileName != "people_template.csv" {
		t.Fatalf("unexpected file name: %q", fileName)
	}

	lines := strings.Split(strings.TrimRight(string(content), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header plus one example row, got %d lines", len(lines))
	}
	if lines[0] != "name,age,joined,note" {
		t.Fatalf("header not in position order: %q", lines[0])
	}

	cells := strings.Split(lines[1], ",")
	if len(cells) != 4 {
		t.Fatalf("expected 4 example cells, got %v", cells)
	}
	if cells[0] == "" || cells[1] == "" || cells[2] == "" {
		t.Fatalf("required columns must carry example values: %v", cells)
	}
	if cells[3] != "" {
		t.Fatalf("optional column must be left empty: %v", cells)
	}
	if _, err := time.Parse("02/01/2006", cells[2]); err != nil {
		t.Fatalf("date example %q does not honor the configured pattern: %v", cells[2], err)
	}
}

func TestTemplateUnknownConfiguration(t *testing.T) {
	service, _, _ := newTestService()

	_, _, err := service.Template(context.Background(), 42)
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
