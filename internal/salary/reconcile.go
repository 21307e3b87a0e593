package salary

import (
	"strings"

	"github.com/shopspring/decimal"

	"salary-import/internal/storage"
)

// Summary is what the user sees after a check: counts only, not row identities.
type Summary struct {
	Total            int `json:"total"`
	OK               int `json:"ok"`
	UnmatchedWorkers int `json:"unmatched_workers"`
	UnmatchedPrices  int `json:"unmatched_prices"`
	Pending          int `json:"pending"`
}

func Summarize(rows []*ImportRow) Summary {
	s := Summary{Total: len(rows)}
	for _, r := range rows {
		if r.WorkerState == Unmatched {
			s.UnmatchedWorkers++
		}
		if r.PriceState == Unmatched {
			s.UnmatchedPrices++
		}
		switch r.Status() {
		case StatusOK:
			s.OK++
		case StatusPending:
			s.Pending++
		}
	}
	return s
}

// MatchWorkers looks every row's worker name up by exact equality and
// returns how many rows found no worker. It only touches WorkerID and
// WorkerState, so it can be re-run at will.
func MatchWorkers(rows []*ImportRow, ref *Reference) int {
	byName := make(map[string]int64, len(ref.Workers))
	for _, w := range ref.Workers {
		if _, dup := byName[w.Name]; !dup {
			byName[w.Name] = w.ID
		}
	}

	unmatched := 0
	for _, r := range rows {
		id, ok := byName[r.WorkerName]
		if !ok {
			r.WorkerID = 0
			r.WorkerState = Unmatched
			unmatched++
			continue
		}
		r.WorkerID = id
		r.WorkerState = Matched
	}

	return unmatched
}

type priceKey struct {
	process string
	spec    string
}

// MatchPrices looks up the unit price by (process, spec) and recomputes the
// amount. A miss prices the row at zero. Returns the number of misses.
func MatchPrices(rows []*ImportRow, ref *Reference) int {
	prices := make(map[priceKey]storage.PriceRef, len(ref.Prices))
	for _, p := range ref.Prices {
		k := priceKey{p.ProcessName, p.SpecName}
		if _, dup := prices[k]; !dup {
			prices[k] = p
		}
	}

	processes := make(map[string]int64, len(ref.Processes))
	for _, p := range ref.Processes {
		if _, dup := processes[p.Name]; !dup {
			processes[p.Name] = p.ID
		}
	}

	unmatched := 0
	for _, r := range rows {
		p, ok := prices[priceKey{r.ProcessName, r.SpecName}]
		if !ok {
			r.UnitPrice = decimal.Zero
			r.SpecModelID = 0
			r.ProcessID = processes[r.ProcessName]
			r.Amount = ComputeAmount(decimal.Zero, r.Quantity, r.GroupSize)
			r.PriceState = Unmatched
			unmatched++
			continue
		}

		r.UnitPrice = p.Price
		r.SpecModelID = p.ID
		r.ProcessID = p.ProcessID
		if r.ProcessID == 0 {
			r.ProcessID = processes[r.ProcessName]
		}
		r.Amount = ComputeAmount(p.Price, r.Quantity, r.GroupSize)
		r.PriceState = Matched
	}

	return unmatched
}

// Reconcile runs both passes and summarizes the result.
func Reconcile(rows []*ImportRow, ref *Reference) Summary {
	MatchWorkers(rows, ref)
	MatchPrices(rows, ref)
	return Summarize(rows)
}

// ComputeAmount is round(price × quantity / group, 1). An unparseable
// quantity counts as 0; an empty or unparseable group size counts as 1; a
// group size of 0 yields 0.
func ComputeAmount(price decimal.Decimal, quantity, groupSize string) decimal.Decimal {
	qty := parseDecimal(quantity, decimal.Zero)
	group := parseDecimal(groupSize, decimal.NewFromInt(1))

	if group.IsZero() {
		return decimal.Zero
	}

	return price.Mul(qty).Div(group).Round(1)
}

func parseDecimal(v string, fallback decimal.Decimal) decimal.Decimal {
	v = strings.TrimSpace(v)
	if v == "" {
		return fallback
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return fallback
	}
	return d
}
