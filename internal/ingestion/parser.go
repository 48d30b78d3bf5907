package ingestion

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/rowgate/rowgate/internal/validation"
)

// ErrUnsupportedFormat is returned when an uploaded file is not supported.
var ErrUnsupportedFormat = errors.New("unsupported file format")

var byteOrderMark = []byte{0xEF, 0xBB, 0xBF}

// Parse turns raw upload bytes into the header/rows contract the validation
// engine consumes. The format is chosen by file extension; delimiter only
// applies to delimited text.
func Parse(fileName, delimiter string, payload []byte) (validation.ParsedFile, error) {
	if len(payload) == 0 {
		return validation.ParsedFile{}, errors.New("file is empty")
	}

	ext := strings.ToLower(filepath.Ext(fileName))
	switch ext {
	case ".csv", ".txt", ".tsv":
		return parseCSV(payload, delimiter)
	case ".xlsx":
		return parseExcel(payload)
	default:
		return validation.ParsedFile{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
}

func parseCSV(payload []byte, delimiter string) (validation.ParsedFile, error) {
	reader := bufio.NewReader(bytes.NewReader(payload))
	if prefix, err := reader.Peek(len(byteOrderMark)); err == nil && bytes.Equal(prefix, byteOrderMark) {
		_, _ = reader.Discard(len(byteOrderMark))
	}

	csvReader := csv.NewReader(reader)
	csvReader.TrimLeadingSpace = true
	csvReader.FieldsPerRecord = -1
	if delimiter != "" {
		runes := []rune(delimiter)
		csvReader.Comma = runes[0]
	}

	records, err := csvReader.ReadAll()
	if err != nil {
		return validation.ParsedFile{}, fmt.Errorf("failed to read csv: %w", err)
	}

	return normalize(records, int64(len(payload)))
}

func parseExcel(payload []byte) (validation.ParsedFile, error) {
	f, err := excelize.OpenReader(bytes.NewReader(payload))
	if err != nil {
		return validation.ParsedFile{}, fmt.Errorf("failed to open xlsx: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return validation.ParsedFile{}, errors.New("excel file has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return validation.ParsedFile{}, fmt.Errorf("failed to read rows from xlsx: %w", err)
	}

	return normalize(rows, int64(len(payload)))
}

func normalize(records [][]string, size int64) (validation.ParsedFile, error) {
	var headers []string
	var dataRows [][]string

	for _, row := range records {
		if emptyRow(row) {
			continue
		}
		if headers == nil {
			headers = make([]string, len(row))
			for i, cell := range row {
				headers[i] = strings.TrimSpace(cell)
			}
			continue
		}
		dataRows = append(dataRows, row)
	}

	if headers == nil {
		return validation.ParsedFile{}, errors.New("no header row detected")
	}

	return validation.ParsedFile{
		Headers: headers,
		Rows:    dataRows,
		Size:    size,
	}, nil
}

func emptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
