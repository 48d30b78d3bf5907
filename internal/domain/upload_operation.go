package domain

import (
	"time"

	"github.com/google/uuid"
)

// OperationStatus is the lifecycle status of an upload operation. Pending is
// the only non-terminal status; it exists from the moment a submission is
// accepted for processing until the outcome is known.
type OperationStatus string

const (
	OperationStatusPending            OperationStatus = "pending"
	OperationStatusSuccess            OperationStatus = "success"
	OperationStatusPartiallyCompleted OperationStatus = "partially_completed"
	OperationStatusFailed             OperationStatus = "failed"
)

// Valid reports whether the status is one of the known lifecycle values.
func (s OperationStatus) Valid() bool {
	switch s {
	case OperationStatusPending, OperationStatusSuccess, OperationStatusPartiallyCompleted, OperationStatusFailed:
		return true
	}
	return false
}

// UploadOperation records one ingestion attempt and its outcome. Once
// CompletedAt is set the row is immutable except for soft deletion.
type UploadOperation struct {
	ID          uuid.UUID       `json:"id"`
	ConfigID    int64           `json:"config_id"`
	FileName    string          `json:"file_name"`
	FilePath    string          `json:"file_path,omitempty"` // resolved storage key
	FileSize    int64           `json:"file_size"`
	Status      OperationStatus `json:"status"`
	ErrorCount  int             `json:"error_count"`
	TotalRows   int             `json:"total_rows"`
	ValidRows   int             `json:"valid_rows"`
	StartedAt   time.Time       `json:"started_at"`
	CompletedAt *time.Time      `json:"completed_at,omitempty"`
	DeletedAt   *time.Time      `json:"deleted_at,omitempty"`
}

// NewUploadOperation starts a pending operation for a submission.
func NewUploadOperation(configID int64, fileName string, fileSize int64) UploadOperation {
	return UploadOperation{
		ID:        uuid.New(),
		ConfigID:  configID,
		FileName:  fileName,
		FileSize:  fileSize,
		Status:    OperationStatusPending,
		StartedAt: time.Now(),
	}
}

// Completed returns a copy of the operation finalized with the given outcome.
func (op UploadOperation) Completed(status OperationStatus, filePath string, errorCount, totalRows, validRows int) UploadOperation {
	now := time.Now()
	op.Status = status
	op.FilePath = filePath
	op.ErrorCount = errorCount
	op.TotalRows = totalRows
	op.ValidRows = validRows
	op.CompletedAt = &now
	return op
}
