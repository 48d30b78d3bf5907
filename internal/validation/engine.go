package validation

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/rowgate/rowgate/internal/domain"
)

var (
	emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

	// Layouts tried for datetime cells when the column declares no pattern.
	datetimeLayouts = []string{
		time.RFC3339,
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05",
	}
)

const dateLayout = "2006-01-02"

// ParsedFile is the parsing contract the engine consumes: a header row plus
// raw data rows, independent of the on-disk format they came from.
type ParsedFile struct {
	Headers []string
	Rows    [][]string
	Size    int64
}

// Row holds one accepted data row with cell values coerced to their declared
// types, keyed by configured column name.
type Row map[string]any

// Result is the outcome of validating one parsed file against a configuration.
type Result struct {
	IsValid       bool
	Errors        []domain.ValidationError
	ProcessedRows []Row
	TotalRows     int
	ValidRows     int
}

// Engine applies an upload configuration's column schemas to a parsed file.
type Engine struct {
	registry *Registry
}

// NewEngine creates a validation engine backed by the given custom validator
// registry.
func NewEngine(registry *Registry) *Engine {
	return &Engine{registry: registry}
}

// Validate runs file-level checks, header resolution, and row validation in
// that order. File-level violations (size, row limit, missing required
// columns) abort before any row is examined; row-level failures are collected
// as data so the caller receives the complete diagnostic picture.
func (e *Engine) Validate(cfg domain.UploadConfiguration, file ParsedFile) Result {
	result := Result{
		Errors:        []domain.ValidationError{},
		ProcessedRows: []Row{},
		TotalRows:     len(file.Rows),
	}

	if cfg.MaxFileSize > 0 && file.Size > cfg.MaxFileSize {
		result.Errors = append(result.Errors, domain.ValidationError{
			Code:    domain.CodeFileTooLarge,
			Message: fmt.Sprintf("file size %d exceeds limit %d", file.Size, cfg.MaxFileSize),
			Line:    1,
		})
		return result
	}
	if cfg.MaxRows > 0 && len(file.Rows) > cfg.MaxRows {
		result.Errors = append(result.Errors, domain.ValidationError{
			Code:    domain.CodeRowLimitExceeded,
			Message: fmt.Sprintf("file has %d data rows, limit is %d", len(file.Rows), cfg.MaxRows),
			Line:    1,
		})
		return result
	}

	columnIndex := resolveHeaders(cfg, file.Headers)
	for _, col := range cfg.Columns {
		if !col.Required {
			continue
		}
		if _, ok := columnIndex[strings.ToLower(col.Name)]; !ok {
			result.Errors = append(result.Errors, domain.ValidationError{
				Code:    domain.CodeMissingRequiredColumn,
				Message: fmt.Sprintf("required column %q is missing from the header", col.Name),
				Line:    1,
			})
		}
	}
	if len(result.Errors) > 0 {
		// Structural mismatch: do not attempt row validation.
		return result
	}

	for i, row := range file.Rows {
		rowNumber := i + 1
		line := i + 2 // header occupies line 1
		rowErrors := 0
		processed := Row{}

		for _, col := range cfg.Columns {
			idx, present := columnIndex[strings.ToLower(col.Name)]
			var raw string
			if present && idx < len(row) {
				raw = strings.TrimSpace(row[idx])
			}

			if raw == "" {
				if col.Required {
					result.Errors = append(result.Errors, domain.ValidationError{
						Code:    domain.CodeMissingRequiredValue,
						Message: fmt.Sprintf("required value for column %q is missing", col.Name),
						Column:  col.Name,
						Row:     rowNumber,
						Line:    line,
					})
					rowErrors++
				}
				continue
			}

			cellErrs, value := e.checkCell(col, raw, rowNumber, line)
			if len(cellErrs) > 0 {
				result.Errors = append(result.Errors, cellErrs...)
				rowErrors += len(cellErrs)
				continue
			}
			processed[col.Name] = value
		}

		if rowErrors == 0 {
			result.ProcessedRows = append(result.ProcessedRows, processed)
			result.ValidRows++
		}
	}

	result.IsValid = len(result.Errors) == 0
	return result
}

// checkCell runs every applicable check for one cell. Checks are independent:
// a failed type coercion does not suppress length, pattern, or custom checks,
// but numeric bounds only apply when the number actually parsed.
func (e *Engine) checkCell(col domain.ColumnSchema, raw string, rowNumber, line int) ([]domain.ValidationError, any) {
	var errs []domain.ValidationError
	add := func(code domain.ErrorCode, message string) {
		errs = append(errs, domain.ValidationError{
			Code:    code,
			Message: message,
			Column:  col.Name,
			Row:     rowNumber,
			Line:    line,
		})
	}

	value, typeErr := coerce(col, raw)
	if typeErr != nil {
		add(domain.CodeInvalidType, typeErr.Error())
	}

	if col.MinLength != nil && len(raw) < *col.MinLength {
		add(domain.CodeLengthOutOfRange, fmt.Sprintf("value is shorter than %d characters", *col.MinLength))
	} else if col.MaxLength != nil && len(raw) > *col.MaxLength {
		add(domain.CodeLengthOutOfRange, fmt.Sprintf("value is longer than %d characters", *col.MaxLength))
	}

	if typeErr == nil && col.DataType == domain.DataTypeNumber {
		n := value.(float64)
		if col.MinValue != nil && n < *col.MinValue {
			add(domain.CodeValueOutOfRange, fmt.Sprintf("value %v is below minimum %v", n, *col.MinValue))
		} else if col.MaxValue != nil && n > *col.MaxValue {
			add(domain.CodeValueOutOfRange, fmt.Sprintf("value %v is above maximum %v", n, *col.MaxValue))
		}
	}

	// For date types the pattern is the parse layout, already applied above.
	if col.Pattern != "" && col.DataType != domain.DataTypeDate && col.DataType != domain.DataTypeDatetime {
		re, reErr := regexp.Compile(col.Pattern)
		if reErr == nil && !re.MatchString(raw) {
			add(domain.CodePatternMismatch, fmt.Sprintf("value does not match pattern %q", col.Pattern))
		}
	}

	if col.CustomValidator != "" {
		if fn, ok := e.registry.Lookup(col.CustomValidator); ok {
			if customErr := fn(raw); customErr != nil {
				add(domain.CodeCustomValidationFailed, customErr.Error())
			}
		}
	}

	if len(errs) > 0 {
		return errs, nil
	}
	return nil, value
}

// coerce converts a raw cell to its declared type.
func coerce(col domain.ColumnSchema, raw string) (any, error) {
	switch col.DataType {
	case domain.DataTypeString, domain.DataTypeEmail:
		if col.DataType == domain.DataTypeEmail && !emailPattern.MatchString(raw) {
			return nil, fmt.Errorf("value %q is not a valid email address", raw)
		}
		return raw, nil
	case domain.DataTypeNumber:
		n, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("value %q is not a number", raw)
		}
		return n, nil
	case domain.DataTypeBoolean:
		switch strings.ToLower(raw) {
		case "true", "1":
			return true, nil
		case "false", "0":
			return false, nil
		}
		return nil, fmt.Errorf("value %q is not a boolean", raw)
	case domain.DataTypeDate:
		layout := col.Pattern
		if layout == "" {
			layout = dateLayout
		}
		ts, err := time.Parse(layout, raw)
		if err != nil {
			return nil, fmt.Errorf("value %q is not a valid date", raw)
		}
		return ts, nil
	case domain.DataTypeDatetime:
		if col.Pattern != "" {
			ts, err := time.Parse(col.Pattern, raw)
			if err != nil {
				return nil, fmt.Errorf("value %q does not match datetime layout %q", raw, col.Pattern)
			}
			return ts, nil
		}
		for _, layout := range datetimeLayouts {
			if ts, err := time.Parse(layout, raw); err == nil {
				return ts, nil
			}
		}
		return nil, fmt.Errorf("value %q is not a valid datetime", raw)
	default:
		return raw, nil
	}
}

// resolveHeaders maps lower-cased configured column names to their index in
// the file header.
func resolveHeaders(cfg domain.UploadConfiguration, headers []string) map[string]int {
	index := make(map[string]int, len(headers))
	for i, header := range headers {
		name := strings.ToLower(strings.TrimSpace(header))
		if name == "" {
			continue
		}
		if _, ok := cfg.ColumnByHeader(header); ok {
			if _, seen := index[name]; !seen {
				index[name] = i
			}
		}
	}
	return index
}
