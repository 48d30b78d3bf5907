package domain

import (
	"testing"
	"time"
)

func TestColumnByHeaderIsCaseInsensitive(t *testing.T) {
	cfg := UploadConfiguration{
		Columns: []ColumnSchema{
			{Name: "Email", DataType: DataTypeEmail},
		},
	}

	if _, ok := cfg.ColumnByHeader("  email "); !ok {
		t.Fatalf("expected header to match case-insensitively")
	}
	if _, ok := cfg.ColumnByHeader("phone"); ok {
		t.Fatalf("did not expect a match for an unconfigured header")
	}
}

func TestAcceptsExtension(t *testing.T) {
	cfg := UploadConfiguration{FileType: "csv, XLSX"}

	if !cfg.AcceptsExtension("csv") || !cfg.AcceptsExtension(".CSV") || !cfg.AcceptsExtension("xlsx") {
		t.Fatalf("expected listed extensions to be accepted")
	}
	if cfg.AcceptsExtension("pdf") {
		t.Fatalf("did not expect pdf to be accepted")
	}
}

func TestUsable(t *testing.T) {
	now := time.Now()
	cases := []struct {
		name string
		cfg  UploadConfiguration
		want bool
	}{
		{"active", UploadConfiguration{Active: true}, true},
		{"inactive", UploadConfiguration{Active: false}, false},
		{"soft deleted", UploadConfiguration{Active: true, DeletedAt: &now}, false},
	}
	for _, tc := range cases {
		if got := tc.cfg.Usable(); got != tc.want {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, got)
		}
	}
}

func TestValidateRejectsDuplicateAndUnknown(t *testing.T) {
	cfg := UploadConfiguration{
		Name: "people",
		Columns: []ColumnSchema{
			{Name: "name", DataType: DataTypeString},
			{Name: "NAME", DataType: DataTypeString},
		},
	}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected duplicate column names to be rejected")
	}

	cfg.Columns = []ColumnSchema{{Name: "name", DataType: "blob"}}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected unknown data type to be rejected")
	}

	cfg.Columns = []ColumnSchema{{Name: "name", DataType: DataTypeString}}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected valid configuration, got %v", err)
	}
}

func TestWithColumnsReplacesWholesale(t *testing.T) {
	cfg := UploadConfiguration{
		Columns: []ColumnSchema{
			{Name: "a", DataType: DataTypeString},
			{Name: "b", DataType: DataTypeString},
		},
	}

	next := cfg.WithColumns([]ColumnSchema{{Name: "c", DataType: DataTypeNumber}})
	if len(next.Columns) != 1 || next.Columns[0].Name != "c" {
		t.Fatalf("expected replacement, got %+v", next.Columns)
	}
	if len(cfg.Columns) != 2 {
		t.Fatalf("original must be unchanged")
	}
}

func TestCompletedFinalizesOperation(t *testing.T) {
	op := NewUploadOperation(1, "people.csv", 42)
	if op.Status != OperationStatusPending || op.CompletedAt != nil {
		t.Fatalf("new operation must be pending: %+v", op)
	}

	done := op.Completed(OperationStatusPartiallyCompleted, "up/key.csv", 2, 10, 8)
	if done.Status != OperationStatusPartiallyCompleted || done.FilePath != "up/key.csv" {
		t.Fatalf("unexpected finalized operation: %+v", done)
	}
	if done.ErrorCount != 2 || done.TotalRows != 10 || done.ValidRows != 8 {
		t.Fatalf("unexpected counts: %+v", done)
	}
	if done.CompletedAt == nil {
		t.Fatalf("expected CompletedAt set")
	}
	if op.CompletedAt != nil {
		t.Fatalf("original must be unchanged")
	}
}
