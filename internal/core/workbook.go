package core

// workbook.go reads product descriptions from an uploaded .xlsx workbook and
// writes classification results back into it.
//
// Only the active sheet is used. Row 1 is the header; the column titled
// "Description" (any case) holds the descriptions, falling back to the first
// column. Every later row up to the last row element becomes one batch item,
// including blank and trailing blank ones, so result indexes line up with
// sheet rows.

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"github.com/JonMunkholm/hsclassify/internal/hscode"
)

// DescriptionHeader is the header matched to find the description column.
const DescriptionHeader = "description"

// Columns appended by AnnotateWorkbook.
var annotationHeaders = []any{"HSC Code", "Confidence", "Status"}

// Workbook holds the parsed contents of an uploaded workbook.
type Workbook struct {
	Filename          string
	Sheet             string
	Header            []string
	DescriptionColumn int
	Descriptions      []string

	width int
	data  []byte
}

// ParseWorkbook reads an .xlsx upload. Files over maxSize bytes are rejected;
// maxSize <= 0 disables the check.
func ParseWorkbook(filename string, r io.Reader, maxSize int64) (*Workbook, error) {
	if !strings.EqualFold(filepath.Ext(filename), ".xlsx") {
		return nil, ErrInvalidFileType
	}

	if maxSize > 0 {
		r = io.LimitReader(r, maxSize+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if maxSize > 0 && int64(len(data)) > maxSize {
		return nil, fmt.Errorf("%w: limit is %d bytes", ErrFileTooLarge, maxSize)
	}
	if len(data) == 0 {
		return nil, ErrNoFile
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnreadableFile, err)
	}
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	if sheet == "" {
		return nil, ErrEmptyWorkbook
	}
	rows, err := readRows(f, sheet)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrEmptyWorkbook
	}

	wb := &Workbook{
		Filename:          filename,
		Sheet:             sheet,
		Header:            rows[0],
		DescriptionColumn: descriptionColumn(rows[0]),
		Descriptions:      make([]string, 0, len(rows)-1),
		data:              data,
	}
	for _, row := range rows {
		wb.width = max(wb.width, len(row))
	}
	for _, row := range rows[1:] {
		desc := ""
		if wb.DescriptionColumn < len(row) {
			desc = CleanCell(row[wb.DescriptionColumn])
		}
		wb.Descriptions = append(wb.Descriptions, desc)
	}
	return wb, nil
}

// readRows returns every row element of sheet. Unlike GetRows, trailing rows
// whose cells are all blank are kept so they surface as skipped items.
func readRows(f *excelize.File, sheet string) ([][]string, error) {
	it, err := f.Rows(sheet)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnreadableFile, err)
	}
	defer func() { _ = it.Close() }()

	var rows [][]string
	for it.Next() {
		row, err := it.Columns()
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrUnreadableFile, err)
		}
		rows = append(rows, row)
	}
	if err := it.Error(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnreadableFile, err)
	}
	return rows, nil
}

func descriptionColumn(header []string) int {
	for i, h := range header {
		if strings.EqualFold(CleanCell(h), DescriptionHeader) {
			return i
		}
	}
	return 0
}

// ClassifyWorkbook classifies every data row of wb for jurisdiction j.
func (s *Service) ClassifyWorkbook(ctx context.Context, wb *Workbook, j hscode.Jurisdiction) (*BatchReport, error) {
	return s.ClassifyBatch(ctx, Items(wb.Descriptions, j))
}

// AnnotateWorkbook returns wb's original file with HSC Code, Confidence and
// Status columns appended to the right of the existing data.
func AnnotateWorkbook(wb *Workbook, report *BatchReport) ([]byte, error) {
	if len(report.Rows) != len(wb.Descriptions) {
		return nil, fmt.Errorf("report has %d rows, workbook has %d", len(report.Rows), len(wb.Descriptions))
	}

	f, err := excelize.OpenReader(bytes.NewReader(wb.data))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnreadableFile, err)
	}
	defer func() { _ = f.Close() }()

	col := wb.width + 1
	if err := setRow(f, wb.Sheet, col, 1, annotationHeaders); err != nil {
		return nil, err
	}
	for i, r := range report.Rows {
		values := []any{r.Code, "", string(r.Status)}
		if r.Status == StatusOK {
			values[1] = r.Confidence
		}
		if err := setRow(f, wb.Sheet, col, i+2, values); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func setRow(f *excelize.File, sheet string, col, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return fmt.Errorf("cell name: %w", err)
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write row %d: %w", row, err)
	}
	return nil
}

// CleanCell removes common spreadsheet artifacts from a cell value:
//   - Trims whitespace
//   - Removes an Excel formula prefix (="..." or =...)
//   - Removes one pair of matching surrounding quotes
//   - Replaces invalid UTF-8 sequences
func CleanCell(s string) string {
	if !utf8.ValidString(s) {
		s = strings.ToValidUTF8(s, "\uFFFD")
	}
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "=\"") && strings.HasSuffix(s, "\"") && len(s) >= 3 {
		s = s[2 : len(s)-1]
	} else if strings.HasPrefix(s, "=") {
		s = s[1:]
	}

	if n := len(s); n >= 2 && (s[0] == '"' || s[0] == '\'') && s[n-1] == s[0] {
		s = s[1 : n-1]
	}
	return strings.TrimSpace(s)
}
