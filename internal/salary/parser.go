package salary

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
)

var (
	ErrEmptySheet        = errors.New("spreadsheet is empty")
	ErrUnsupportedFormat = errors.New("unsupported spreadsheet format")
)

// Sheet is a parsed spreadsheet: the display columns (with the injected
// ones) and the data rows in sheet order.
type Sheet struct {
	Columns []string     `json:"columns"`
	Rows    []*ImportRow `json:"rows"`
}

// Parse reads the first worksheet of an .xlsx or .xls file. The first row
// holds the headers; every cell becomes a trimmed string.
func Parse(r io.Reader, filename string) (*Sheet, error) {
	const op = "salary.Parse"

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%s: read: %w", op, err)
	}

	raw, err := readRows(data, filename)
	if err != nil {
		return nil, fmt.Errorf("%s: %s: %w", op, filename, err)
	}

	if len(raw) == 0 {
		return nil, fmt.Errorf("%s: %s: %w", op, filename, ErrEmptySheet)
	}

	return buildSheet(raw), nil
}

func readRows(data []byte, filename string) ([][]string, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xlsm":
		return readXLSX(data)
	case ".xls":
		return readXLS(data)
	default:
		return nil, ErrUnsupportedFormat
	}
}

func readXLSX(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil
	}

	// raw values keep numbers free of display formatting (thousand separators, dates)
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}

	return rows, nil
}

func readXLS(data []byte) (rows [][]string, err error) {
	// the legacy BIFF reader panics on some malformed files
	defer func() {
		if r := recover(); r != nil {
			rows, err = nil, fmt.Errorf("read xls: %v", r)
		}
	}()

	wb, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, fmt.Errorf("open xls: %w", err)
	}

	sheet := wb.GetSheet(0)
	if sheet == nil {
		return nil, nil
	}

	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheet.Row(i)
		if row == nil {
			rows = append(rows, nil)
			continue
		}

		cells := make([]string, row.LastCol())
		for c := range cells {
			cells[c] = row.Col(c)
		}
		rows = append(rows, cells)
	}

	// trailing empty rows carry no data
	for len(rows) > 0 && isBlank(rows[len(rows)-1]) {
		rows = rows[:len(rows)-1]
	}

	return rows, nil
}

func buildSheet(raw [][]string) *Sheet {
	headers := make([]string, len(raw[0]))
	for i, h := range raw[0] {
		headers[i] = strings.TrimSpace(h)
	}

	// a repeated header is listed once; its right-most cell wins
	columns := make([]string, 0, len(headers)+3)
	seen := make(map[string]bool, len(headers)+3)
	for _, h := range headers {
		if h == "" || seen[h] {
			continue
		}
		seen[h] = true
		columns = append(columns, h)
	}

	if !seen[ColWorkerID] {
		columns = append([]string{ColWorkerID}, columns...)
	}
	if !seen[ColUnitPrice] {
		columns = append(columns, ColUnitPrice)
	}
	if !seen[ColAmount] {
		columns = append(columns, ColAmount)
	}

	rows := make([]*ImportRow, 0, len(raw)-1)
	for i, cells := range raw[1:] {
		if isBlank(cells) {
			continue
		}

		// Index is the 1-based sheet row so users can find it in the file.
		row := &ImportRow{Index: i + 2}
		for c, h := range headers {
			if h == "" {
				continue
			}
			row.set(h, cell(cells, c))
		}
		rows = append(rows, row)
	}

	return &Sheet{Columns: columns, Rows: rows}
}

func cell(cells []string, i int) string {
	if i < 0 || i >= len(cells) {
		return ""
	}
	return strings.TrimSpace(cells[i])
}

func isBlank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

var dateLayouts = []string{"2006-01-02", "2006/01/02", "2006.01.02", "20060102", "2006-1-2", "2006/1/2"}

// normalizeDate turns Excel serial dates and common layouts into YYYY-MM-DD.
// Anything else is returned as typed.
func normalizeDate(v string) string {
	if v == "" {
		return v
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t.Format("2006-01-02")
		}
	}

	// serials 20000..80000 cover 1954..2119
	if serial, err := strconv.ParseFloat(v, 64); err == nil && serial >= 20000 && serial <= 80000 {
		if t, err := excelize.ExcelDateToTime(serial, false); err == nil {
			return t.Format("2006-01-02")
		}
	}

	return v
}
