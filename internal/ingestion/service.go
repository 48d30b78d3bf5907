package ingestion

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/rowgate/rowgate/internal/domain"
	"github.com/rowgate/rowgate/internal/repository"
	"github.com/rowgate/rowgate/internal/storage"
	"github.com/rowgate/rowgate/internal/validation"
)

// FileStore is the storage contract the orchestrator depends on. Satisfied by
// *storage.Service; tests substitute a stub.
type FileStore interface {
	Upload(ctx context.Context, cfg domain.StorageConfiguration, fileName string, data []byte) (storage.UploadResult, error)
	Delete(ctx context.Context, cfg domain.StorageConfiguration, pathname string) error
}

// Service drives one submission through validation, storage, and operation
// persistence.
type Service struct {
	configRepo  repository.UploadConfigurationRepository
	storageRepo repository.StorageConfigurationRepository
	opRepo      repository.UploadOperationRepository
	errorRepo   repository.IngestionErrorRepository
	engine      *validation.Engine
	store       FileStore
}

// NewService creates an ingestion service.
func NewService(
	configRepo repository.UploadConfigurationRepository,
	storageRepo repository.StorageConfigurationRepository,
	opRepo repository.UploadOperationRepository,
	errorRepo repository.IngestionErrorRepository,
	engine *validation.Engine,
	store FileStore,
) *Service {
	return &Service{
		configRepo:  configRepo,
		storageRepo: storageRepo,
		opRepo:      opRepo,
		errorRepo:   errorRepo,
		engine:      engine,
		store:       store,
	}
}

// Request describes one submission.
type Request struct {
	ConfigID int64
	FileName string
	Data     []byte
}

// RowLevelErrors aggregates every row-scoped diagnostic for a submission.
type RowLevelErrors struct {
	Total     int                      `json:"total"`
	AllErrors []domain.ValidationError `json:"all_errors"`
}

// ErrorDetails carries structured failure context alongside the error code.
type ErrorDetails struct {
	RowLevelErrors *RowLevelErrors `json:"row_level_errors,omitempty"`
}

// ResultError is the error portion of an ingestion response.
type ResultError struct {
	Code    domain.ErrorCode `json:"code"`
	Message string           `json:"message,omitempty"`
	Details *ErrorDetails    `json:"details,omitempty"`
}

// Result is the outcome of one submission. HTTPStatus is transport metadata
// for the handler and never serialized.
type Result struct {
	Status        domain.OperationStatus `json:"status"`
	OperationID   string                 `json:"operation_id,omitempty"`
	ProcessedRows int                    `json:"processed_rows,omitempty"`
	TotalRows     int                    `json:"total_rows,omitempty"`
	Error         *ResultError           `json:"error,omitempty"`
	HTTPStatus    int                    `json:"-"`
}

func failure(status int, code domain.ErrorCode, message string) Result {
	return Result{
		Status:     domain.OperationStatusFailed,
		HTTPStatus: status,
		Error:      &ResultError{Code: code, Message: message},
	}
}

// Ingest runs the full pipeline for one submission: load configuration,
// parse, validate, apply the partial-upload policy, store the original bytes,
// and persist the operation record. Row-level errors are returned as data and
// recorded for later review; only structural failures abort early.
func (s *Service) Ingest(ctx context.Context, req Request) Result {
	if req.ConfigID <= 0 || strings.TrimSpace(req.FileName) == "" || len(req.Data) == 0 {
		return failure(http.StatusBadRequest, domain.CodeMissingParameters, "file and config_id are required")
	}

	cfg, err := s.configRepo.GetByID(ctx, req.ConfigID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return failure(http.StatusBadRequest, domain.CodeConfigNotFound, fmt.Sprintf("upload configuration %d not found", req.ConfigID))
		}
		log.Printf("ingest: failed to load configuration %d: %v", req.ConfigID, err)
		return failure(http.StatusInternalServerError, domain.CodeInternalError, "internal error")
	}
	if !cfg.Usable() {
		return failure(http.StatusBadRequest, domain.CodeConfigNotFound, fmt.Sprintf("upload configuration %d is not active", req.ConfigID))
	}

	if ext := storage.FileExtension(req.FileName); !cfg.AcceptsExtension(ext) {
		return failure(http.StatusBadRequest, domain.CodeUnsupportedFileType,
			fmt.Sprintf("file type %q is not accepted by configuration %q", ext, cfg.Name))
	}

	// The operation row exists from the start of processing so long-running
	// uploads are observable while pending.
	op := domain.NewUploadOperation(cfg.ID, req.FileName, int64(len(req.Data)))
	if err := s.opRepo.Insert(ctx, op); err != nil {
		log.Printf("ingest: failed to insert pending operation: %v", err)
		return failure(http.StatusInternalServerError, domain.CodeInternalError, "internal error")
	}

	parsed, err := Parse(req.FileName, cfg.Delimiter, req.Data)
	if err != nil {
		s.finalize(ctx, op.Completed(domain.OperationStatusFailed, "", 1, 0, 0))
		return s.withOperation(op, failure(http.StatusBadRequest, domain.CodeFileParseError, err.Error()))
	}

	result := s.engine.Validate(cfg, parsed)

	accepted := result.IsValid || (cfg.AllowPartialUpload && result.ValidRows > 0)
	if !accepted {
		s.finalize(ctx, op.Completed(domain.OperationStatusFailed, "", len(result.Errors), result.TotalRows, result.ValidRows))
		s.recordErrors(ctx, op.ID, result.Errors)
		out := failure(http.StatusBadRequest, domain.CodeValidationFailed, "file failed validation")
		out.TotalRows = result.TotalRows
		out.Error.Details = &ErrorDetails{
			RowLevelErrors: &RowLevelErrors{Total: len(result.Errors), AllErrors: result.Errors},
		}
		return s.withOperation(op, out)
	}

	storageCfg, err := s.storageRepo.GetByID(ctx, cfg.StorageConfigID)
	if err != nil {
		log.Printf("ingest: failed to load storage configuration %d: %v", cfg.StorageConfigID, err)
		s.finalize(ctx, op.Completed(domain.OperationStatusFailed, "", len(result.Errors), result.TotalRows, result.ValidRows))
		return s.withOperation(op, failure(http.StatusInternalServerError, domain.CodeStorageError, "storage configuration unavailable"))
	}

	// The original bytes are stored, not the coerced rows.
	uploaded, err := s.store.Upload(ctx, storageCfg, req.FileName, req.Data)
	if err != nil {
		log.Printf("ingest: storage upload failed for operation %s: %v", op.ID, err)
		s.finalize(ctx, op.Completed(domain.OperationStatusFailed, "", len(result.Errors), result.TotalRows, result.ValidRows))
		code := domain.CodeStorageError
		var storageErr *storage.StorageError
		if errors.As(err, &storageErr) {
			code = storageErr.Code
		}
		return s.withOperation(op, failure(http.StatusInternalServerError, code, "failed to store file"))
	}

	status := domain.OperationStatusSuccess
	if len(result.Errors) > 0 {
		status = domain.OperationStatusPartiallyCompleted
	}
	s.finalize(ctx, op.Completed(status, uploaded.Pathname, len(result.Errors), result.TotalRows, result.ValidRows))
	if status == domain.OperationStatusPartiallyCompleted {
		s.recordErrors(ctx, op.ID, result.Errors)
	}

	out := Result{
		Status:        status,
		OperationID:   op.ID.String(),
		ProcessedRows: result.ValidRows,
		TotalRows:     result.TotalRows,
		HTTPStatus:    http.StatusOK,
	}
	if status == domain.OperationStatusPartiallyCompleted {
		out.Error = &ResultError{
			Code: domain.CodeValidationFailed,
			Details: &ErrorDetails{
				RowLevelErrors: &RowLevelErrors{Total: len(result.Errors), AllErrors: result.Errors},
			},
		}
	}
	return out
}

// DeleteOperation removes a stored file and soft-deletes its operation
// record. A storage delete failure is logged but does not block removal of
// the record: orphan blobs are preferred over orphan metadata.
func (s *Service) DeleteOperation(ctx context.Context, id uuid.UUID) error {
	op, err := s.opRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if op.FilePath != "" {
		if delErr := s.deleteStoredFile(ctx, op); delErr != nil {
			log.Printf("delete operation %s: storage delete failed, removing record anyway: %v", op.ID, delErr)
		}
	}

	return s.opRepo.SoftDelete(ctx, id)
}

// Operation returns one operation record.
func (s *Service) Operation(ctx context.Context, id uuid.UUID) (domain.UploadOperation, error) {
	return s.opRepo.GetByID(ctx, id)
}

// Operations lists operation records matching the filter.
func (s *Service) Operations(ctx context.Context, filter repository.OperationFilter) ([]domain.UploadOperation, error) {
	return s.opRepo.List(ctx, filter)
}

// OperationErrors returns the persisted row-level diagnostics for an
// operation.
func (s *Service) OperationErrors(ctx context.Context, id uuid.UUID) ([]domain.ValidationError, error) {
	if _, err := s.opRepo.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return s.errorRepo.ListByOperation(ctx, id)
}

func (s *Service) deleteStoredFile(ctx context.Context, op domain.UploadOperation) error {
	cfg, err := s.configRepo.GetByID(ctx, op.ConfigID)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	storageCfg, err := s.storageRepo.GetByID(ctx, cfg.StorageConfigID)
	if err != nil {
		return fmt.Errorf("failed to load storage configuration: %w", err)
	}
	return s.store.Delete(ctx, storageCfg, op.FilePath)
}

func (s *Service) finalize(ctx context.Context, op domain.UploadOperation) {
	if err := s.opRepo.Update(ctx, op); err != nil {
		log.Printf("ingest: failed to finalize operation %s: %v", op.ID, err)
	}
}

func (s *Service) recordErrors(ctx context.Context, operationID uuid.UUID, errs []domain.ValidationError) {
	if s.errorRepo == nil || len(errs) == 0 {
		return
	}
	if err := s.errorRepo.RecordBatch(ctx, operationID, errs); err != nil {
		log.Printf("ingest: failed to record errors for operation %s: %v", operationID, err)
	}
}

func (s *Service) withOperation(op domain.UploadOperation, result Result) Result {
	result.OperationID = op.ID.String()
	return result
}
