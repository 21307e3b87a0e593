package storage

import "github.com/shopspring/decimal"

// WorkerRef is a worker as listed by the payroll backend.
type WorkerRef struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	ProcessID int64  `json:"process_id"`
}

type ProcessRef struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// PriceRef is a spec/model entry carrying its piece-rate price.
type PriceRef struct {
	ID          int64           `json:"id"`
	ProcessName string          `json:"process_name"`
	SpecName    string          `json:"spec_name"`
	Price       decimal.Decimal `json:"price"`
	ProcessID   int64           `json:"process_id"`
}
