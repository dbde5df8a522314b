package corpus

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Column aliases. The first header found for each field wins.
var (
	idHeaders     = []string{"序号", "id"}
	promptHeaders = []string{"题目内容", "question", "prompt"}
	optionHeaders = [][]string{
		{"选项a", "a", "option_a"},
		{"选项b", "b", "option_b"},
		{"选项c", "c", "option_c"},
		{"选项d", "d", "option_d"},
	}
	answerHeaders = []string{"正确答案", "answer"}
)

var errNoHeader = errors.New("missing header row")

// columnMap holds the column index of each field, -1 when absent.
type columnMap struct {
	id      int
	prompt  int
	options [4]int
	answer  int
}

func mapHeader(header []string) (columnMap, error) {
	index := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if _, ok := index[h]; !ok {
			index[h] = i
		}
	}
	find := func(aliases []string) int {
		for _, a := range aliases {
			if i, ok := index[a]; ok {
				return i
			}
		}
		return -1
	}

	m := columnMap{
		id:     find(idHeaders),
		prompt: find(promptHeaders),
		answer: find(answerHeaders),
	}
	for i, aliases := range optionHeaders {
		m.options[i] = find(aliases)
	}
	if m.prompt < 0 {
		return m, fmt.Errorf("%w: no question column", errNoHeader)
	}
	return m, nil
}

func (m columnMap) row(line int, record []string) rawRow {
	cell := func(i int) string {
		if i < 0 || i >= len(record) {
			return ""
		}
		return record[i]
	}
	opts := make([]string, len(m.options))
	for i, col := range m.options {
		opts[i] = cell(col)
	}
	return rawRow{
		Line:    line,
		ID:      cell(m.id),
		Prompt:  cell(m.prompt),
		Options: opts,
		Answer:  cell(m.answer),
	}
}

// rowsFromRecords turns a header plus records into raw rows. Line numbers are
// 1-based and count the header.
func rowsFromRecords(records [][]string) ([]rawRow, error) {
	if len(records) == 0 {
		return nil, nil
	}
	m, err := mapHeader(records[0])
	if err != nil {
		return nil, err
	}
	rows := make([]rawRow, 0, len(records)-1)
	for i, rec := range records[1:] {
		if isBlank(rec) {
			continue
		}
		rows = append(rows, m.row(i+2, rec))
	}
	return rows, nil
}

func isBlank(record []string) bool {
	for _, c := range record {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func readCSV(path string) ([]rawRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return parseCSV(f)
}

func parseCSV(r io.Reader) ([]rawRow, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	return rowsFromRecords(records)
}

// readXLSX reads the first worksheet of a workbook.
func readXLSX(path string) ([]rawRow, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil
	}
	records, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}
	return rowsFromRecords(records)
}
