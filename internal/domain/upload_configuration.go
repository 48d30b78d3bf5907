package domain

import (
	"fmt"
	"strings"
	"time"
)

// DataType represents the declared type of a column in an upload configuration.
type DataType string

const (
	DataTypeString   DataType = "string"
	DataTypeNumber   DataType = "number"
	DataTypeDate     DataType = "date"
	DataTypeDatetime DataType = "datetime"
	DataTypeBoolean  DataType = "boolean"
	DataTypeEmail    DataType = "email"
)

// KnownDataType reports whether the given data type is one the engine understands.
func KnownDataType(t DataType) bool {
	switch t {
	case DataTypeString, DataTypeNumber, DataTypeDate, DataTypeDatetime, DataTypeBoolean, DataTypeEmail:
		return true
	}
	return false
}

// ColumnSchema describes one accepted column and its validation rules.
// Name matches the file header case-insensitively; Position is the declared
// column order used for template generation, not for matching.
type ColumnSchema struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	DisplayName string   `json:"display_name"`
	DataType    DataType `json:"data_type"`
	Required    bool     `json:"required"`
	// Pattern is a regular expression for string-like types and a Go time
	// layout for date/datetime types.
	Pattern         string   `json:"pattern,omitempty"`
	MinLength       *int     `json:"min_length,omitempty"`
	MaxLength       *int     `json:"max_length,omitempty"`
	MinValue        *float64 `json:"min_value,omitempty"`
	MaxValue        *float64 `json:"max_value,omitempty"`
	CustomValidator string   `json:"custom_validator,omitempty"`
	Position        int      `json:"position"`
}

// UploadConfiguration is a named schema describing which columns a submitted
// file must have and how each is validated, plus file-level constraints.
type UploadConfiguration struct {
	ID                 int64          `json:"id"`
	Name               string         `json:"name"`
	FileType           string         `json:"file_type"` // comma-separated accepted extensions, e.g. "csv,xlsx"
	Delimiter          string         `json:"delimiter"`
	MaxFileSize        int64          `json:"max_file_size"`
	MaxRows            int            `json:"max_rows"`
	AllowPartialUpload bool           `json:"allow_partial_upload"`
	StorageConfigID    int64          `json:"storage_config_id"`
	Active             bool           `json:"active"`
	Columns            []ColumnSchema `json:"columns"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
	DeletedAt          *time.Time     `json:"deleted_at,omitempty"`
}

// ColumnByHeader resolves a file header name to its configured column,
// matching case-insensitively.
func (c UploadConfiguration) ColumnByHeader(header string) (ColumnSchema, bool) {
	for _, col := range c.Columns {
		if strings.EqualFold(col.Name, strings.TrimSpace(header)) {
			return col, true
		}
	}
	return ColumnSchema{}, false
}

// AcceptsExtension reports whether the given file extension (without leading
// dot) is listed in FileType.
func (c UploadConfiguration) AcceptsExtension(ext string) bool {
	ext = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
	for _, accepted := range strings.Split(c.FileType, ",") {
		if strings.ToLower(strings.TrimPrefix(strings.TrimSpace(accepted), ".")) == ext {
			return true
		}
	}
	return false
}

// Usable reports whether the configuration may be used for ingestion.
func (c UploadConfiguration) Usable() bool {
	return c.Active && c.DeletedAt == nil
}

// WithColumns returns a copy of the configuration with its column list
// replaced wholesale. Updates never diff column lists.
func (c UploadConfiguration) WithColumns(columns []ColumnSchema) UploadConfiguration {
	c.Columns = copyColumns(columns)
	c.UpdatedAt = time.Now()
	return c
}

// Validate checks the structural invariants of the configuration itself:
// non-empty name, known data types, and column names unique within the
// configuration (case-insensitive).
func (c UploadConfiguration) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("configuration name is required")
	}
	if len(c.Columns) == 0 {
		return fmt.Errorf("configuration requires at least one column")
	}
	seen := make(map[string]struct{}, len(c.Columns))
	for _, col := range c.Columns {
		name := strings.ToLower(strings.TrimSpace(col.Name))
		if name == "" {
			return fmt.Errorf("column name is required")
		}
		if _, dup := seen[name]; dup {
			return fmt.Errorf("duplicate column name %q", col.Name)
		}
		seen[name] = struct{}{}
		if !KnownDataType(col.DataType) {
			return fmt.Errorf("column %q has unknown data type %q", col.Name, col.DataType)
		}
	}
	return nil
}

func copyColumns(columns []ColumnSchema) []ColumnSchema {
	if columns == nil {
		return nil
	}
	out := make([]ColumnSchema, len(columns))
	copy(out, columns)
	return out
}
