package generate_excel

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"salary-import/internal/salary"
	"salary-import/internal/storage"
)

type Layout string

const (
	LayoutSummary Layout = "summary"
	LayoutDaily   Layout = "daily"
	LayoutRaw     Layout = "raw"
)

const (
	sheetSummary = "工资报表"
	sheetDaily   = "工资日薪表"
	sheetRaw     = "工资记录"
	sheetImport  = "工资导入"

	colTotal  = "工资合计"
	colStatus = "状态"
)

var (
	ErrUnknownLayout = errors.New("unknown report layout")
	ErrNoWageLogs    = errors.New("no wage logs for filter")
)

var rawHeaders = []string{"工人", "工序", "组人数", "规格型号", "日期", "数量", "单价", "工资", "备注"}

type GenerateExcelStorage interface {
	QueryWageLogs(ctx context.Context, filter storage.WageLogFilter) ([]storage.WageLog, error)
}

type GenerateExcelService struct {
	storage GenerateExcelStorage
}

func NewGenerateService(storage GenerateExcelStorage) *GenerateExcelService {
	return &GenerateExcelService{storage: storage}
}

func ParseLayout(s string) (Layout, error) {
	switch Layout(s) {
	case "":
		return LayoutSummary, nil
	case LayoutSummary, LayoutDaily, LayoutRaw:
		return Layout(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownLayout, s)
}

// FileName is the download name the payroll office expects for a layout.
func FileName(layout Layout, filter storage.WageLogFilter) string {
	if layout == LayoutRaw {
		return fmt.Sprintf("查询记录_%s_%s.xlsx", filter.StartDate, filter.EndDate)
	}
	return fmt.Sprintf("工资报表_%s_%s.xlsx", filter.StartDate, filter.EndDate)
}

// GenerateWageReport queries stored wage logs and lays them out as a workbook.
func (g *GenerateExcelService) GenerateWageReport(ctx context.Context, filter storage.WageLogFilter, layout Layout) ([]byte, error) {
	const op = "generate_excel.GenerateWageReport"

	logs, err := g.storage.QueryWageLogs(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("%s: fetch data: %w", op, err)
	}
	if len(logs) == 0 {
		return nil, ErrNoWageLogs
	}

	f := excelize.NewFile()
	defer f.Close()

	switch layout {
	case LayoutSummary:
		err = writePivot(f, sheetSummary, logs)
	case LayoutDaily:
		err = writePivot(f, sheetDaily, logs)
	case LayoutRaw:
		err = writeRaw(f, logs)
	default:
		err = ErrUnknownLayout
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("%s: write: %w", op, err)
	}

	return buf.Bytes(), nil
}

// PivotRow is one worker line of the worker × date pivot.
type PivotRow struct {
	Worker string
	ByDate map[string]decimal.Decimal
	Total  decimal.Decimal
}

// Pivot sums total wage per worker and date. Dates come back ascending,
// workers in order of first appearance.
func Pivot(logs []storage.WageLog) (dates []string, rows []PivotRow) {
	seenDate := make(map[string]bool)
	index := make(map[string]int)

	for _, l := range logs {
		if !seenDate[l.Date] {
			seenDate[l.Date] = true
			dates = append(dates, l.Date)
		}

		i, ok := index[l.Worker]
		if !ok {
			i = len(rows)
			index[l.Worker] = i
			rows = append(rows, PivotRow{Worker: l.Worker, ByDate: make(map[string]decimal.Decimal)})
		}

		wage := decimal.NewFromFloat(l.TotalWage)
		rows[i].ByDate[l.Date] = rows[i].ByDate[l.Date].Add(wage)
		rows[i].Total = rows[i].Total.Add(wage)
	}
	sort.Strings(dates)

	return dates, rows
}

func writePivot(f *excelize.File, sheet string, logs []storage.WageLog) error {
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}

	dates, rows := Pivot(logs)

	header := make([]interface{}, 0, len(dates)+2)
	header = append(header, "工人")
	for _, d := range dates {
		header = append(header, d)
	}
	header = append(header, colTotal)
	if err := writeHeader(f, sheet, header); err != nil {
		return err
	}

	for i, pr := range rows {
		line := make([]interface{}, 0, len(header))
		line = append(line, pr.Worker)
		for _, d := range dates {
			line = append(line, pr.ByDate[d].InexactFloat64())
		}
		line = append(line, pr.Total.InexactFloat64())

		if err := f.SetSheetRow(sheet, cellName(1, i+2), &line); err != nil {
			return err
		}
	}

	return nil
}

func writeRaw(f *excelize.File, logs []storage.WageLog) error {
	if err := f.SetSheetName("Sheet1", sheetRaw); err != nil {
		return err
	}

	sorted := append([]storage.WageLog(nil), logs...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Worker != sorted[j].Worker {
			return sorted[i].Worker < sorted[j].Worker
		}
		return sorted[i].Date < sorted[j].Date
	})

	header := make([]interface{}, len(rawHeaders))
	for i, h := range rawHeaders {
		header[i] = h
	}
	if err := writeHeader(f, sheetRaw, header); err != nil {
		return err
	}

	for i, l := range sorted {
		line := []interface{}{
			l.Worker, l.Process, l.ActualGroupSize, l.SpecModel, l.Date,
			l.Quantity, l.ActualPrice, l.TotalWage, l.Remark,
		}
		if err := f.SetSheetRow(sheetRaw, cellName(1, i+2), &line); err != nil {
			return err
		}
	}

	f.SetColWidth(sheetRaw, "A", "I", 14)

	return nil
}

// ExportSession writes the reconciled session back out with the injected
// columns and a status column. Rows that failed a pass are filled red,
// rows ready to submit green.
func ExportSession(view *salary.SessionView) ([]byte, error) {
	const op = "generate_excel.ExportSession"

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetImport); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	header := make([]interface{}, 0, len(view.Columns)+1)
	for _, c := range view.Columns {
		header = append(header, c)
	}
	header = append(header, colStatus)
	if err := writeHeader(f, sheetImport, header); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	red, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"FFC7CE"}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	green, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"C6EFCE"}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	lastCol := len(header)
	for i, r := range view.Rows {
		rowNum := i + 2

		line := make([]interface{}, 0, lastCol)
		for _, c := range view.Columns {
			line = append(line, r.Value(c))
		}
		line = append(line, string(r.Status()))

		if err := f.SetSheetRow(sheetImport, cellName(1, rowNum), &line); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		var style int
		switch r.Status() {
		case salary.StatusUnmatchedWorker, salary.StatusUnmatchedPrice:
			style = red
		case salary.StatusOK:
			style = green
		default:
			continue
		}
		if err := f.SetCellStyle(sheetImport, cellName(1, rowNum), cellName(lastCol, rowNum), style); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("%s: write: %w", op, err)
	}

	return buf.Bytes(), nil
}

func writeHeader(f *excelize.File, sheet string, header []interface{}) error {
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true},
		Fill:   excelize.Fill{Type: "pattern", Color: []string{"E0E0E0"}, Pattern: 1},
		Border: []excelize.Border{{Type: "bottom", Color: "000000", Style: 2}},
	})
	if err != nil {
		return err
	}

	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", cellName(len(header), 1), headerStyle); err != nil {
		return err
	}

	// keep the header visible while scrolling
	return f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

func cellName(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}
