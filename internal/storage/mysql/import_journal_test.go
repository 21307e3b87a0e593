package mysql

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salary-import/internal/storage"
)

func TestAckChunk_RoundTrip(t *testing.T) {
	s := requireDB(t)
	ctx := context.Background()

	importID := uuid.NewString()
	t.Cleanup(func() { _ = s.ForgetImport(ctx, importID) })

	now := time.Now().UTC().Truncate(time.Second)
	for _, start := range []int{500, 0} {
		err := s.AckChunk(ctx, storage.ChunkAck{
			ImportID:       importID,
			StartRow:       start,
			EndRow:         start + 500,
			IdempotencyKey: uuid.NewString(),
			AckedAt:        now,
		})
		require.NoError(t, err)
	}

	acked, err := s.AckedChunks(ctx, importID)
	require.NoError(t, err)
	require.Len(t, acked, 2)
	assert.Equal(t, 0, acked[0].StartRow)
	assert.Equal(t, 1000, acked[1].EndRow)
	assert.True(t, acked[0].AckedAt.Equal(now))
}

func TestAckChunk_DuplicateIsUpsert(t *testing.T) {
	s := requireDB(t)
	ctx := context.Background()

	importID := uuid.NewString()
	t.Cleanup(func() { _ = s.ForgetImport(ctx, importID) })

	ack := storage.ChunkAck{ImportID: importID, StartRow: 0, EndRow: 10, IdempotencyKey: uuid.NewString(), AckedAt: time.Now()}
	require.NoError(t, s.AckChunk(ctx, ack))

	ack.EndRow = 12
	require.NoError(t, s.AckChunk(ctx, ack))

	acked, err := s.AckedChunks(ctx, importID)
	require.NoError(t, err)
	require.Len(t, acked, 1)
	assert.Equal(t, 12, acked[0].Rows())
}

func TestForgetImport(t *testing.T) {
	s := requireDB(t)
	ctx := context.Background()

	importID := uuid.NewString()
	require.NoError(t, s.AckChunk(ctx, storage.ChunkAck{ImportID: importID, EndRow: 1, IdempotencyKey: uuid.NewString(), AckedAt: time.Now()}))
	require.NoError(t, s.ForgetImport(ctx, importID))

	acked, err := s.AckedChunks(ctx, importID)
	require.NoError(t, err)
	assert.Empty(t, acked)
}
