package domain

// ErrorCode classifies ingestion and validation failures.
type ErrorCode string

const (
	CodeMissingParameters      ErrorCode = "MISSING_PARAMETERS"
	CodeConfigNotFound         ErrorCode = "CONFIG_NOT_FOUND"
	CodeMissingRequiredColumn  ErrorCode = "MISSING_REQUIRED_COLUMN"
	CodeMissingRequiredValue   ErrorCode = "MISSING_REQUIRED_VALUE"
	CodeInvalidType            ErrorCode = "INVALID_TYPE"
	CodeLengthOutOfRange       ErrorCode = "LENGTH_OUT_OF_RANGE"
	CodeValueOutOfRange        ErrorCode = "VALUE_OUT_OF_RANGE"
	CodePatternMismatch        ErrorCode = "PATTERN_MISMATCH"
	CodeCustomValidationFailed ErrorCode = "CUSTOM_VALIDATION_FAILED"
	CodeRowLimitExceeded       ErrorCode = "ROW_LIMIT_EXCEEDED"
	CodeFileTooLarge           ErrorCode = "FILE_TOO_LARGE"
	CodeUnsupportedFileType    ErrorCode = "UNSUPPORTED_FILE_TYPE"
	CodeFileParseError         ErrorCode = "FILE_PARSE_ERROR"
	CodeValidationFailed       ErrorCode = "VALIDATION_FAILED"
	CodeMissingCredentials     ErrorCode = "MISSING_CREDENTIALS"
	CodeUploadFailed           ErrorCode = "UPLOAD_FAILED"
	CodeStorageError           ErrorCode = "STORAGE_ERROR"
	CodeInternalError          ErrorCode = "INTERNAL_ERROR"
)

// ValidationError is one row-level or file-level validation failure. It is
// returned as data, never raised: the engine aggregates these rather than
// aborting on the first one. File-level errors carry no column and Row 0.
type ValidationError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Column  string    `json:"column,omitempty"`
	// Row is the 1-based data row index; Line is the 1-based file line,
	// accounting for the header row.
	Row  int `json:"row,omitempty"`
	Line int `json:"line,omitempty"`
}

// FileLevel reports whether the error applies to the file as a whole.
func (e ValidationError) FileLevel() bool {
	return e.Column == "" && e.Row == 0
}
