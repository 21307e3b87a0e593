package salary

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Column headers are fixed by the payroll office's spreadsheet convention.
const (
	ColWorker    = "工人"
	ColProcess   = "工序"
	ColSpec      = "规格型号"
	ColQuantity  = "数量"
	ColGroupSize = "组人数"
	ColDate      = "日期"
	ColRemark    = "备注"

	// injected by the parser
	ColWorkerID  = "工人ID"
	ColUnitPrice = "单价"
	ColAmount    = "金额"
)

type MatchState int

const (
	Unchecked MatchState = iota
	Matched
	Unmatched
)

type Status string

const (
	StatusPending         Status = "pending"
	StatusUnmatchedWorker Status = "unmatched-worker"
	StatusUnmatchedPrice  Status = "unmatched-price"
	StatusOK              Status = "ok"
)

// ImportRow is one spreadsheet data row. Recognised columns are typed
// fields; any other column lands in Extra.
type ImportRow struct {
	Index int `json:"index"`

	WorkerName  string            `json:"worker_name"`
	ProcessName string            `json:"process_name"`
	SpecName    string            `json:"spec_name"`
	Quantity    string            `json:"quantity"`
	GroupSize   string            `json:"group_size"`
	Date        string            `json:"date"`
	Remark      string            `json:"remark"`
	Extra       map[string]string `json:"extra,omitempty"`

	// owned by the worker pass
	WorkerID    int64      `json:"worker_id"`
	WorkerState MatchState `json:"-"`

	// owned by the price pass
	ProcessID   int64           `json:"process_id"`
	SpecModelID int64           `json:"spec_model_id"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Amount      decimal.Decimal `json:"amount"`
	PriceState  MatchState      `json:"-"`
}

// Status folds both pass states into the row tag shown to the user.
// A worker miss takes precedence over a price miss.
func (r *ImportRow) Status() Status {
	switch {
	case r.WorkerState == Unmatched:
		return StatusUnmatchedWorker
	case r.PriceState == Unmatched:
		return StatusUnmatchedPrice
	case r.WorkerState == Matched && r.PriceState == Matched:
		return StatusOK
	default:
		return StatusPending
	}
}

// Value returns the cell shown under column, including the injected ones.
func (r *ImportRow) Value(column string) string {
	switch column {
	case ColWorker:
		return r.WorkerName
	case ColProcess:
		return r.ProcessName
	case ColSpec:
		return r.SpecName
	case ColQuantity:
		return r.Quantity
	case ColGroupSize:
		return r.GroupSize
	case ColDate:
		return r.Date
	case ColRemark:
		return r.Remark
	case ColWorkerID:
		return decimal.NewFromInt(r.WorkerID).String()
	case ColUnitPrice:
		return r.UnitPrice.StringFixed(2)
	case ColAmount:
		return r.Amount.StringFixed(1)
	}

	return r.Extra[column]
}

func (r *ImportRow) set(column, value string) {
	switch column {
	case ColWorker:
		r.WorkerName = value
	case ColProcess:
		r.ProcessName = value
	case ColSpec:
		r.SpecName = value
	case ColQuantity:
		r.Quantity = value
	case ColGroupSize:
		r.GroupSize = value
	case ColDate:
		r.Date = normalizeDate(value)
	case ColRemark:
		r.Remark = value
	case ColWorkerID, ColUnitPrice, ColAmount:
		// derived; whatever the sheet carried is overwritten by reconciliation
	default:
		if r.Extra == nil {
			r.Extra = make(map[string]string)
		}
		r.Extra[column] = value
	}
}

// MarshalJSON adds the folded status and renders money as numbers.
func (r ImportRow) MarshalJSON() ([]byte, error) {
	type alias ImportRow
	return json.Marshal(struct {
		alias
		UnitPrice float64 `json:"unit_price"`
		Amount    float64 `json:"amount"`
		Status    Status  `json:"status"`
	}{
		alias:     alias(r),
		UnitPrice: r.UnitPrice.InexactFloat64(),
		Amount:    r.Amount.InexactFloat64(),
		Status:    r.Status(),
	})
}
