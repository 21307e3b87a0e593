package storage

import "time"

// ChunkAck records that the backend accepted rows [StartRow, EndRow) of an
// import. Row offsets are 0-based positions among the submitted rows.
type ChunkAck struct {
	ImportID       string    `json:"import_id" yaml:"import_id"`
	StartRow       int       `json:"start_row" yaml:"start_row"`
	EndRow         int       `json:"end_row" yaml:"end_row"`
	IdempotencyKey string    `json:"idempotency_key" yaml:"idempotency_key"`
	AckedAt        time.Time `json:"acked_at" yaml:"acked_at"`
}

func (a ChunkAck) Rows() int {
	return a.EndRow - a.StartRow
}
