package validation

import (
	"reflect"
	"testing"

	"github.com/rowgate/rowgate/internal/domain"
)

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }

func personConfig() domain.UploadConfiguration {
	return domain.UploadConfiguration{
		ID:       1,
		Name:     "people",
		FileType: "csv",
		Active:   true,
		Columns: []domain.ColumnSchema{
			{Name: "name", DataType: domain.DataTypeString, Required: true, MinLength: intPtr(2), Position: 0},
			{Name: "age", DataType: domain.DataTypeNumber, Required: true, MinValue: floatPtr(0), MaxValue: floatPtr(150), Position: 1},
			{Name: "email", DataType: domain.DataTypeEmail, Required: false, Position: 2},
		},
	}
}

func parsed(headers []string, rows [][]string) ParsedFile {
	return ParsedFile{Headers: headers, Rows: rows, Size: 128}
}

func TestValidateAllRowsValid(t *testing.T) {
	engine := NewEngine(NewRegistry())

	result := engine.Validate(personConfig(), parsed(
		[]string{"name", "age", "email"},
		[][]string{
			{"Alice", "30", "alice@example.com"},
			{"Bob", "25", ""},
		},
	))

	if !result.IsValid {
		t.Fatalf("expected valid result, errors: %+v", result.Errors)
	}
	if len(result.Errors) != 0 {
		t.Fatalf("expected no errors, got %d", len(result.Errors))
	}
	if result.TotalRows != 2 || result.ValidRows != 2 {
		t.Fatalf("unexpected counts: total=%d valid=%d", result.TotalRows, result.ValidRows)
	}
	if len(result.ProcessedRows) != 2 {
		t.Fatalf("expected 2 processed rows, got %d", len(result.ProcessedRows))
	}
	if age, ok := result.ProcessedRows[0]["age"].(float64); !ok || age != 30 {
		t.Fatalf("expected age coerced to float64 30, got %v", result.ProcessedRows[0]["age"])
	}
}

func TestValidateHeaderMatchingIsCaseInsensitive(t *testing.T) {
	engine := NewEngine(NewRegistry())

	result := engine.Validate(personConfig(), parsed(
		[]string{"Name", "AGE", "Email"},
		[][]string{{"Alice", "30", "alice@example.com"}},
	))

	if !result.IsValid {
		t.Fatalf("expected valid result, errors: %+v", result.Errors)
	}
}

func TestValidateMissingRequiredColumnStopsBeforeRows(t *testing.T) {
	engine := NewEngine(NewRegistry())

	// Rows contain cell-level problems that must never be reported because
	// the structural check fails first.
	result := engine.Validate(personConfig(), parsed(
		[]string{"name", "email"},
		[][]string{{"X", "not-an-email"}},
	))

	if result.IsValid {
		t.Fatalf("expected invalid result")
	}
	if len(result.Errors) != 1 {
		t.Fatalf("expected exactly one error, got %+v", result.Errors)
	}
	err := result.Errors[0]
	if err.Code != domain.CodeMissingRequiredColumn {
		t.Fatalf("expected MISSING_REQUIRED_COLUMN, got %s", err.Code)
	}
	if !err.FileLevel() || err.Line != 1 {
		t.Fatalf("expected file-level error on line 1, got %+v", err)
	}
	if len(result.ProcessedRows) != 0 || result.ValidRows != 0 {
		t.Fatalf("expected no row processing after structural failure")
	}
}

func TestValidateRowReportsAllCellErrors(t *testing.T) {
	engine := NewEngine(NewRegistry())

	result := engine.Validate(personConfig(), parsed(
		[]string{"name", "age", "email"},
		[][]string{{"X", "abc", "bob@example.com"}},
	))

	if result.IsValid {
		t.Fatalf("expected invalid result")
	}
	// name too short and age not a number: both must be reported.
	if len(result.Errors) != 2 {
		t.Fatalf("expected 2 errors for the row, got %+v", result.Errors)
	}
	codes := map[domain.ErrorCode]bool{}
	for _, e := range result.Errors {
		codes[e.Code] = true
		if e.Row != 1 || e.Line != 2 {
			t.Fatalf("expected row 1 line 2, got %+v", e)
		}
	}
	if !codes[domain.CodeLengthOutOfRange] || !codes[domain.CodeInvalidType] {
		t.Fatalf("expected LENGTH_OUT_OF_RANGE and INVALID_TYPE, got %v", codes)
	}
}

func TestValidateMissingRequiredValue(t *testing.T) {
	engine := NewEngine(NewRegistry())

	result := engine.Validate(personConfig(), parsed(
		[]string{"name", "age", "email"},
		[][]string{
			{"Alice", "30", ""},
			{"", "40", ""},
		},
	))

	if result.IsValid {
		t.Fatalf("expected invalid result")
	}
	if len(result.Errors) != 1 {
		t.Fatalf("expected 1 error, got %+v", result.Errors)
	}
	e := result.Errors[0]
	if e.Code != domain.CodeMissingRequiredValue || e.Column != "name" || e.Row != 2 || e.Line != 3 {
		t.Fatalf("unexpected error: %+v", e)
	}
	if result.ValidRows != 1 || result.TotalRows != 2 {
		t.Fatalf("unexpected counts: valid=%d total=%d", result.ValidRows, result.TotalRows)
	}
}

func TestValidateNumericBounds(t *testing.T) {
	engine := NewEngine(NewRegistry())

	result := engine.Validate(personConfig(), parsed(
		[]string{"name", "age", "email"},
		[][]string{{"Alice", "200", ""}},
	))

	if len(result.Errors) != 1 || result.Errors[0].Code != domain.CodeValueOutOfRange {
		t.Fatalf("expected one VALUE_OUT_OF_RANGE error, got %+v", result.Errors)
	}
}

func TestValidateFileTooLargeShortCircuits(t *testing.T) {
	engine := NewEngine(NewRegistry())
	cfg := personConfig()
	cfg.MaxFileSize = 64

	result := engine.Validate(cfg, ParsedFile{
		Headers: []string{"name", "age", "email"},
		Rows:    [][]string{{"", "", ""}},
		Size:    65,
	})

	if len(result.Errors) != 1 || result.Errors[0].Code != domain.CodeFileTooLarge {
		t.Fatalf("expected single FILE_TOO_LARGE error, got %+v", result.Errors)
	}
}

func TestValidateRowLimitShortCircuits(t *testing.T) {
	engine := NewEngine(NewRegistry())
	cfg := personConfig()
	cfg.MaxRows = 1

	result := engine.Validate(cfg, parsed(
		[]string{"name", "age", "email"},
		[][]string{
			{"Alice", "30", ""},
			{"Bob", "31", ""},
		},
	))

	if len(result.Errors) != 1 || result.Errors[0].Code != domain.CodeRowLimitExceeded {
		t.Fatalf("expected single ROW_LIMIT_EXCEEDED error, got %+v", result.Errors)
	}
}

func TestValidatePatternMismatch(t *testing.T) {
	engine := NewEngine(NewRegistry())
	cfg := domain.UploadConfiguration{
		Columns: []domain.ColumnSchema{
			{Name: "code", DataType: domain.DataTypeString, Required: true, Pattern: `^[A-Z]{3}-\d{4}$`},
		},
	}

	result := engine.Validate(cfg, parsed(
		[]string{"code"},
		[][]string{
			{"ABC-1234"},
			{"nope"},
		},
	))

	if len(result.Errors) != 1 || result.Errors[0].Code != domain.CodePatternMismatch {
		t.Fatalf("expected one PATTERN_MISMATCH, got %+v", result.Errors)
	}
}

func TestValidateDatePatternAsLayout(t *testing.T) {
	engine := NewEngine(NewRegistry())
	cfg := domain.UploadConfiguration{
		Columns: []domain.ColumnSchema{
			{Name: "when", DataType: domain.DataTypeDate, Required: true, Pattern: "02/01/2006"},
		},
	}

	result := engine.Validate(cfg, parsed(
		[]string{"when"},
		[][]string{
			{"31/12/2024"},
			{"2024-12-31"},
		},
	))

	if len(result.Errors) != 1 || result.Errors[0].Code != domain.CodeInvalidType {
		t.Fatalf("expected one INVALID_TYPE for the non-matching date, got %+v", result.Errors)
	}
}

func TestValidateCustomValidator(t *testing.T) {
	engine := NewEngine(NewRegistry())
	cfg := domain.UploadConfiguration{
		Columns: []domain.ColumnSchema{
			{Name: "ref", DataType: domain.DataTypeString, Required: true, CustomValidator: "uuid"},
		},
	}

	result := engine.Validate(cfg, parsed(
		[]string{"ref"},
		[][]string{
			{"0b36a95e-7f50-45a4-92e0-ba42e46e4c6b"},
			{"not-a-uuid"},
		},
	))

	if len(result.Errors) != 1 || result.Errors[0].Code != domain.CodeCustomValidationFailed {
		t.Fatalf("expected one CUSTOM_VALIDATION_FAILED, got %+v", result.Errors)
	}
	if result.ValidRows != 1 {
		t.Fatalf("expected 1 valid row, got %d", result.ValidRows)
	}
}

func TestValidateBooleanCoercion(t *testing.T) {
	engine := NewEngine(NewRegistry())
	cfg := domain.UploadConfiguration{
		Columns: []domain.ColumnSchema{
			{Name: "flag", DataType: domain.DataTypeBoolean, Required: true},
		},
	}

	result := engine.Validate(cfg, parsed(
		[]string{"flag"},
		[][]string{
			{"true"}, {"FALSE"}, {"1"}, {"0"}, {"yes"},
		},
	))

	if result.ValidRows != 4 {
		t.Fatalf("expected 4 valid rows, got %d", result.ValidRows)
	}
	if len(result.Errors) != 1 || result.Errors[0].Code != domain.CodeInvalidType {
		t.Fatalf("expected one INVALID_TYPE for %q, got %+v", "yes", result.Errors)
	}
	if result.ProcessedRows[0]["flag"] != true || result.ProcessedRows[1]["flag"] != false {
		t.Fatalf("unexpected coerced booleans: %+v", result.ProcessedRows)
	}
}

func TestValidateIsIdempotent(t *testing.T) {
	engine := NewEngine(NewRegistry())
	file := parsed(
		[]string{"name", "age", "email"},
		[][]string{
			{"Alice", "30", "alice@example.com"},
			{"B", "abc", "broken"},
		},
	)

	first := engine.Validate(personConfig(), file)
	second := engine.Validate(personConfig(), file)

	if !reflect.DeepEqual(first, second) {
		t.Fatalf("expected identical results:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}
