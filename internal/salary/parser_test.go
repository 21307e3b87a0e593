package salary

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func buildXLSX(t *testing.T, rows ...[]interface{}) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		r := row
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &r))
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	return buf.Bytes()
}

var header = []interface{}{ColWorker, ColProcess, ColSpec, ColQuantity, ColGroupSize, ColDate, ColRemark, "班组"}

func TestParse_HeadersAndInjectedColumns(t *testing.T) {
	data := buildXLSX(t,
		header,
		[]interface{}{" 张三 ", "铺板", "1220x2440x15", 10, 2, "2024/05/02", "夜班", "A组"},
	)

	sheet, err := Parse(bytes.NewReader(data), "wages.xlsx")
	require.NoError(t, err)

	assert.Equal(t, []string{ColWorkerID, ColWorker, ColProcess, ColSpec, ColQuantity, ColGroupSize, ColDate, ColRemark, "班组", ColUnitPrice, ColAmount}, sheet.Columns)
	require.Len(t, sheet.Rows, 1)

	r := sheet.Rows[0]
	assert.Equal(t, 2, r.Index)
	assert.Equal(t, "张三", r.WorkerName)
	assert.Equal(t, "铺板", r.ProcessName)
	assert.Equal(t, "1220x2440x15", r.SpecName)
	assert.Equal(t, "10", r.Quantity)
	assert.Equal(t, "2", r.GroupSize)
	assert.Equal(t, "2024-05-02", r.Date)
	assert.Equal(t, "夜班", r.Remark)
	assert.Equal(t, map[string]string{"班组": "A组"}, r.Extra)

	// injected columns start at zero
	assert.Equal(t, int64(0), r.WorkerID)
	assert.True(t, r.UnitPrice.IsZero())
	assert.True(t, r.Amount.IsZero())
	assert.Equal(t, StatusPending, r.Status())
	assert.Equal(t, "A组", r.Value("班组"))
	assert.Equal(t, "0", r.Value(ColWorkerID))
}

func TestParse_ExistingInjectedColumnsNotDuplicated(t *testing.T) {
	data := buildXLSX(t,
		[]interface{}{ColWorkerID, ColWorker, ColUnitPrice, ColAmount},
		[]interface{}{99, "张三", 3.5, 100},
	)

	sheet, err := Parse(bytes.NewReader(data), "wages.xlsx")
	require.NoError(t, err)

	assert.Equal(t, []string{ColWorkerID, ColWorker, ColUnitPrice, ColAmount}, sheet.Columns)
	// values in derived columns are ignored until reconciliation sets them
	assert.Equal(t, int64(0), sheet.Rows[0].WorkerID)
	assert.True(t, sheet.Rows[0].UnitPrice.IsZero())
}

func TestParse_DuplicateHeaderLastWins(t *testing.T) {
	data := buildXLSX(t,
		[]interface{}{ColWorker, ColQuantity, ColQuantity, ""},
		[]interface{}{"张三", 10, 99, "stray"},
	)

	sheet, err := Parse(bytes.NewReader(data), "wages.xlsx")
	require.NoError(t, err)

	assert.Equal(t, []string{ColWorkerID, ColWorker, ColQuantity, ColUnitPrice, ColAmount}, sheet.Columns)
	assert.Equal(t, "99", sheet.Rows[0].Quantity)
	assert.Empty(t, sheet.Rows[0].Extra)
}

func TestParse_MissingCellsBecomeEmpty(t *testing.T) {
	data := buildXLSX(t,
		header,
		[]interface{}{"张三", "铺板"},
	)

	sheet, err := Parse(bytes.NewReader(data), "wages.xlsx")
	require.NoError(t, err)
	require.Len(t, sheet.Rows, 1)

	r := sheet.Rows[0]
	assert.Equal(t, "", r.SpecName)
	assert.Equal(t, "", r.Quantity)
	assert.Equal(t, "", r.Remark)
	assert.Equal(t, "", r.Value("班组"))
}

func TestParse_SerialDateNormalized(t *testing.T) {
	data := buildXLSX(t,
		header,
		[]interface{}{"张三", "铺板", "1220x2440x15", 10, 2, 45413},
	)

	sheet, err := Parse(bytes.NewReader(data), "wages.xlsx")
	require.NoError(t, err)
	assert.Equal(t, "2024-05-01", sheet.Rows[0].Date)
}

func TestParse_BlankRowsSkipped(t *testing.T) {
	data := buildXLSX(t,
		header,
		[]interface{}{"张三", "铺板"},
		[]interface{}{},
		[]interface{}{"李四", "砂光"},
	)

	sheet, err := Parse(bytes.NewReader(data), "wages.xlsx")
	require.NoError(t, err)
	require.Len(t, sheet.Rows, 2)
	assert.Equal(t, "李四", sheet.Rows[1].WorkerName)
	assert.Equal(t, 4, sheet.Rows[1].Index)
}

func TestParse_HeaderOnly(t *testing.T) {
	data := buildXLSX(t, header)

	sheet, err := Parse(bytes.NewReader(data), "wages.xlsx")
	require.NoError(t, err)
	assert.Empty(t, sheet.Rows)
}

func TestParse_EmptySheet(t *testing.T) {
	data := buildXLSX(t)

	_, err := Parse(bytes.NewReader(data), "wages.xlsx")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrEmptySheet))
}

func TestParse_UnsupportedFormat(t *testing.T) {
	_, err := Parse(bytes.NewReader([]byte("a,b\n1,2\n")), "wages.csv")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))
}

func TestParse_CorruptXLS(t *testing.T) {
	_, err := Parse(bytes.NewReader([]byte("not an xls file")), "wages.xls")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrEmptySheet))
}

func TestNormalizeDate(t *testing.T) {
	cases := map[string]string{
		"":           "",
		"2024-05-01": "2024-05-01",
		"2024/5/1":   "2024-05-01",
		"2024.05.01": "2024-05-01",
		"20240501":   "2024-05-01",
		"45413":      "2024-05-01",
		"五月一日":       "五月一日",
		"12":         "12",
	}
	for in, want := range cases {
		assert.Equal(t, want, normalizeDate(in), "input %q", in)
	}
}
