package ingest

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/samber/lo"
	"github.com/xuri/excelize/v2"
)

// Table is a parsed tabular input with normalized column names.
type Table struct {
	Input  string
	Header []string
	Rows   [][]string
	// Lines holds the 1-based source line of each row in Rows.
	Lines []int
	index map[string]int
}

// NormalizeColumn trims a header cell, drops full-width spaces and lower-cases it.
func NormalizeColumn(name string) string {
	name = strings.ReplaceAll(name, "\u3000", "")
	name = strings.TrimPrefix(name, "\ufeff")
	return strings.ToLower(strings.TrimSpace(name))
}

// NewTable builds a Table from raw records, where records[i] is source line
// i+1. Blank records are dropped; the first remaining record is the header.
func NewTable(input string, records [][]string) (*Table, error) {
	var (
		kept  [][]string
		lines []int
	)
	for i, r := range records {
		if isBlank(r) {
			continue
		}
		kept = append(kept, r)
		lines = append(lines, i+1)
	}
	if len(kept) == 0 {
		return nil, fmt.Errorf("%s: no header row", input)
	}
	header := lo.Map(kept[0], func(h string, _ int) string { return NormalizeColumn(h) })
	t := &Table{
		Input:  input,
		Header: header,
		Rows:   kept[1:],
		Lines:  lines[1:],
		index:  make(map[string]int, len(header)),
	}
	for i, h := range header {
		if _, dup := t.index[h]; !dup && h != "" {
			t.index[h] = i
		}
	}
	return t, nil
}

// Has reports whether the table has the named column.
func (t *Table) Has(column string) bool {
	_, ok := t.index[column]
	return ok
}

// Missing returns the columns from want that the table lacks.
func (t *Table) Missing(want ...string) []string {
	return lo.Filter(want, func(c string, _ int) bool { return !t.Has(c) })
}

// Cell returns the trimmed value of column in row, or "" when absent.
func (t *Table) Cell(row []string, column string) string {
	i, ok := t.index[column]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// ParseCSV reads a CSV input. A UTF-8 byte order mark is stripped.
func ParseCSV(input string, r io.Reader) (*Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", input, err)
	}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	cr := csv.NewReader(bytes.NewReader(data))
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	// csv.Reader skips empty lines; pad them back so records[i] stays line i+1.
	var records [][]string
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parsing CSV %s: %w", input, err)
		}
		line, _ := cr.FieldPos(0)
		for len(records) < line-1 {
			records = append(records, nil)
		}
		records = append(records, rec)
	}
	return NewTable(input, records)
}

// ParseXLSX reads the first sheet of a workbook.
func ParseXLSX(input string, r io.Reader) (*Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("opening workbook %s: %w", input, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%s: workbook has no sheets", input)
	}
	records, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("reading sheet %s of %s: %w", sheets[0], input, err)
	}
	return NewTable(input, records)
}

// Line returns the source line of the i-th data row.
func (t *Table) Line(i int) int {
	if i < len(t.Lines) {
		return t.Lines[i]
	}
	return i + 2
}

func isBlank(r []string) bool {
	return !lo.SomeBy(r, func(c string) bool { return strings.TrimSpace(c) != "" })
}
