package ingestion

import (
	"bytes"
	"errors"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestParseCSV(t *testing.T) {
	file, err := Parse("people.csv", ",", []byte("name,age\nAlice,30\nBob,25\n"))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(file.Headers) != 2 || file.Headers[0] != "name" || file.Headers[1] != "age" {
		t.Fatalf("unexpected headers: %v", file.Headers)
	}
	if len(file.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(file.Rows))
	}
	if file.Size != int64(len("name,age\nAlice,30\nBob,25\n")) {
		t.Fatalf("unexpected size: %d", file.Size)
	}
}

func TestParseCSVStripsByteOrderMark(t *testing.T) {
	payload := append([]byte{0xEF, 0xBB, 0xBF}, []byte("name\nAlice\n")...)

	file, err := Parse("people.csv", "", payload)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if file.Headers[0] != "name" {
		t.Fatalf("BOM leaked into header: %q", file.Headers[0])
	}
}

func TestParseCSVCustomDelimiter(t *testing.T) {
	file, err := Parse("people.csv", ";", []byte("name;age\nAlice;30\n"))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(file.Headers) != 2 {
		t.Fatalf("expected 2 headers, got %v", file.Headers)
	}
	if file.Rows[0][1] != "30" {
		t.Fatalf("unexpected cell: %v", file.Rows[0])
	}
}

func TestParseSkipsEmptyRows(t *testing.T) {
	file, err := Parse("people.csv", ",", []byte("\nname,age\nAlice,30\n,,\nBob,25\n"))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if file.Headers[0] != "name" {
		t.Fatalf("unexpected headers: %v", file.Headers)
	}
	if len(file.Rows) != 2 {
		t.Fatalf("expected empty rows skipped, got %d rows", len(file.Rows))
	}
}

func TestParseExcel(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	_ = f.SetSheetRow(sheet, "A1", &[]any{"name", "age"})
	_ = f.SetSheetRow(sheet, "A2", &[]any{"Alice", 30})
	_ = f.SetSheetRow(sheet, "A3", &[]any{"Bob", 25})

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("failed to build xlsx fixture: %v", err)
	}

	file, err := Parse("people.xlsx", "", buf.Bytes())
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(file.Headers) != 2 || file.Headers[0] != "name" {
		t.Fatalf("unexpected headers: %v", file.Headers)
	}
	if len(file.Rows) != 2 || file.Rows[0][0] != "Alice" {
		t.Fatalf("unexpected rows: %v", file.Rows)
	}
}

func TestParseUnsupportedExtension(t *testing.T) {
	_, err := Parse("report.pdf", "", []byte("%PDF"))
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestParseEmptyPayload(t *testing.T) {
	if _, err := Parse("people.csv", ",", nil); err == nil {
		t.Fatalf("expected error for empty payload")
	}
}

func TestParseHeaderOnly(t *testing.T) {
	file, err := Parse("people.csv", ",", []byte("name,age\n"))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(file.Rows) != 0 {
		t.Fatalf("expected no data rows, got %v", file.Rows)
	}
}
