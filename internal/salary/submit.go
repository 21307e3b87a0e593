package salary

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"salary-import/internal/storage"
)

const DefaultBatchSize = 500

var (
	ErrNothingToSubmit = errors.New("no rows to submit")
	ErrNotReconciled   = errors.New("rows are not fully reconciled")
)

var importNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("salary-import/wage-logs"))

// ImportID derives a stable id from the file contents, so re-importing the
// same file resumes the same journal.
func ImportID(data []byte) string {
	return uuid.NewSHA1(importNamespace, data).String()
}

// ChunkKey is the idempotency key of the chunk holding rows [start, end).
// The same rows always get the same key, whatever batch size produced them.
func ChunkKey(importID string, start, end int) string {
	ns, err := uuid.Parse(importID)
	if err != nil {
		ns = uuid.NewSHA1(importNamespace, []byte(importID))
	}
	return uuid.NewSHA1(ns, []byte(fmt.Sprintf("%d-%d", start, end))).String()
}

type WageLogSink interface {
	BatchCreateWageLogs(ctx context.Context, idempotencyKey string, records []storage.WageLogRecord) error
}

type ChunkJournal interface {
	AckedChunks(ctx context.Context, importID string) ([]storage.ChunkAck, error)
	AckChunk(ctx context.Context, ack storage.ChunkAck) error
}

type Progress struct {
	Submitted int `json:"submitted"`
	Total     int `json:"total"`
	Chunk     int `json:"chunk"`
	Chunks    int `json:"chunks"`
	Skipped   int `json:"skipped_chunks"`
}

type SubmitResult struct {
	ImportID      string `json:"import_id"`
	Total         int    `json:"total"`
	Submitted     int    `json:"submitted"`
	Chunks        int    `json:"chunks"`
	SkippedChunks int    `json:"skipped_chunks"`
}

// Submitter posts reconciled rows in fixed-size chunks, one after another.
type Submitter struct {
	log       *slog.Logger
	sink      WageLogSink
	journal   ChunkJournal
	batchSize int
	now       func() time.Time
}

func NewSubmitter(log *slog.Logger, sink WageLogSink, journal ChunkJournal, batchSize int) *Submitter {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Submitter{
		log:       log,
		sink:      sink,
		journal:   journal,
		batchSize: batchSize,
		now:       time.Now,
	}
}

// Submit sends rows chunk by chunk and calls onProgress after each one.
// The first failing chunk stops the run. Rows the journal already holds for
// importID are skipped whatever batch size acknowledged them, so a rerun
// sends only what is missing.
func (s *Submitter) Submit(ctx context.Context, importID string, rows []*ImportRow, onProgress func(Progress)) (SubmitResult, error) {
	const op = "salary.Submitter.Submit"

	res := SubmitResult{ImportID: importID, Total: len(rows)}

	if len(rows) == 0 {
		return res, fmt.Errorf("%s: %w", op, ErrNothingToSubmit)
	}

	if notOK := len(rows) - Summarize(rows).OK; notOK > 0 {
		return res, fmt.Errorf("%s: %d of %d rows: %w", op, notOK, len(rows), ErrNotReconciled)
	}

	acked, err := s.journal.AckedChunks(ctx, importID)
	if err != nil {
		return res, fmt.Errorf("%s: load journal: %w", op, err)
	}

	plan := planChunks(len(rows), s.batchSize, acked)
	res.Chunks = len(plan)

	for idx, c := range plan {
		if err := ctx.Err(); err != nil {
			return res, fmt.Errorf("%s: %w", op, err)
		}

		if c.acked {
			res.SkippedChunks++
			res.Submitted += c.end - c.start
			s.report(onProgress, res, idx)
			continue
		}

		key := ChunkKey(importID, c.start, c.end)

		records := make([]storage.WageLogRecord, 0, c.end-c.start)
		for _, r := range rows[c.start:c.end] {
			records = append(records, ToRecord(r))
		}

		if err := s.sink.BatchCreateWageLogs(ctx, key, records); err != nil {
			s.log.Error("chunk submit failed",
				slog.String("op", op),
				slog.String("import_id", importID),
				slog.Int("chunk", idx),
				slog.Int("start_row", c.start),
				slog.Int("submitted", res.Submitted),
				slog.String("error", err.Error()),
			)
			return res, fmt.Errorf("%s: chunk %d of %d: %w", op, idx+1, res.Chunks, err)
		}

		err := s.journal.AckChunk(ctx, storage.ChunkAck{
			ImportID:       importID,
			StartRow:       c.start,
			EndRow:         c.end,
			IdempotencyKey: key,
			AckedAt:        s.now(),
		})
		if err != nil {
			// the chunk is stored but unrecorded; a rerun would resend it
			return res, fmt.Errorf("%s: record chunk %d: %w", op, idx+1, err)
		}

		res.Submitted += c.end - c.start
		s.report(onProgress, res, idx)
	}

	s.log.Info("import submitted",
		slog.String("import_id", importID),
		slog.Int("rows", res.Submitted),
		slog.Int("chunks", res.Chunks),
		slog.Int("skipped_chunks", res.SkippedChunks),
	)

	return res, nil
}

type chunk struct {
	start, end int
	acked      bool
}

// planChunks splits rows [0, total) into runs already covered by acks, kept
// whole and marked acked, and uncovered runs cut into batchSize pieces.
func planChunks(total, batchSize int, acks []storage.ChunkAck) []chunk {
	covered := make([]bool, total)
	for _, a := range acks {
		for i := max(a.StartRow, 0); i < min(a.EndRow, total); i++ {
			covered[i] = true
		}
	}

	var plan []chunk
	for i := 0; i < total; {
		j := i
		for j < total && covered[j] == covered[i] {
			j++
		}

		if covered[i] {
			plan = append(plan, chunk{start: i, end: j, acked: true})
		} else {
			for start := i; start < j; start += batchSize {
				plan = append(plan, chunk{start: start, end: min(start+batchSize, j)})
			}
		}
		i = j
	}

	return plan
}

func (s *Submitter) report(onProgress func(Progress), res SubmitResult, idx int) {
	if onProgress == nil {
		return
	}
	onProgress(Progress{
		Submitted: res.Submitted,
		Total:     res.Total,
		Chunk:     idx + 1,
		Chunks:    res.Chunks,
		Skipped:   res.SkippedChunks,
	})
}

// ToRecord maps a reconciled row to the batch-create payload.
func ToRecord(r *ImportRow) storage.WageLogRecord {
	return storage.WageLogRecord{
		WorkerID:        r.WorkerID,
		ProcessID:       r.ProcessID,
		SpecModelID:     r.SpecModelID,
		Date:            r.Date,
		ActualPrice:     r.UnitPrice.Round(2).InexactFloat64(),
		Quantity:        parseDecimal(r.Quantity, decimal.Zero).InexactFloat64(),
		ActualGroupSize: parseDecimal(r.GroupSize, decimal.NewFromInt(1)).InexactFloat64(),
		TotalWage:       r.Amount.InexactFloat64(),
		Remark:          r.Remark,
	}
}
