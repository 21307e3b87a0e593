package mysql

import (
	"context"
	"fmt"

	"salary-import/internal/storage"
)

// AckedChunks returns the row ranges already accepted for importID.
func (s *Storage) AckedChunks(ctx context.Context, importID string) ([]storage.ChunkAck, error) {
	const op = "storage.mysql.AckedChunks"

	rows, err := s.db.QueryContext(ctx, `
		SELECT import_id, start_row, end_row, idempotency_key, acked_at
		FROM wage_import_ranges
		WHERE import_id = ?
		ORDER BY start_row ASC
	`, importID)
	if err != nil {
		return nil, fmt.Errorf("%s: import_id=%s: %w", op, importID, err)
	}
	defer rows.Close()

	var acked []storage.ChunkAck
	for rows.Next() {
		var a storage.ChunkAck
		if err := rows.Scan(&a.ImportID, &a.StartRow, &a.EndRow, &a.IdempotencyKey, &a.AckedAt); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		acked = append(acked, a)
	}

	return acked, rows.Err()
}

func (s *Storage) AckChunk(ctx context.Context, ack storage.ChunkAck) error {
	const op = "storage.mysql.AckChunk"

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO wage_import_ranges (import_id, start_row, end_row, idempotency_key, acked_at)
		VALUES (?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			end_row = VALUES(end_row),
			idempotency_key = VALUES(idempotency_key),
			acked_at = VALUES(acked_at)
	`, ack.ImportID, ack.StartRow, ack.EndRow, ack.IdempotencyKey, ack.AckedAt.UTC())
	if err != nil {
		return fmt.Errorf("%s: import_id=%s rows=%d-%d: %w", op, ack.ImportID, ack.StartRow, ack.EndRow, err)
	}

	return nil
}

// ForgetImport drops the journal of importID so the file can be submitted again from scratch.
func (s *Storage) ForgetImport(ctx context.Context, importID string) error {
	const op = "storage.mysql.ForgetImport"

	if _, err := s.db.ExecContext(ctx, `DELETE FROM wage_import_ranges WHERE import_id = ?`, importID); err != nil {
		return fmt.Errorf("%s: import_id=%s: %w", op, importID, err)
	}

	return nil
}
