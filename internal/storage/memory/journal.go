package memory

import (
	"context"
	"slices"
	"sync"

	"salary-import/internal/storage"
)

// Journal keeps chunk acknowledgements in process memory. Resume works
// only within the lifetime of the process.
type Journal struct {
	mu      sync.Mutex
	imports map[string]map[int]storage.ChunkAck
}

func NewJournal() *Journal {
	return &Journal{imports: make(map[string]map[int]storage.ChunkAck)}
}

// AckedChunks returns a copy of the acks of importID ordered by start row.
func (j *Journal) AckedChunks(_ context.Context, importID string) ([]storage.ChunkAck, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	acked := make([]storage.ChunkAck, 0, len(j.imports[importID]))
	for _, a := range j.imports[importID] {
		acked = append(acked, a)
	}
	slices.SortFunc(acked, func(a, b storage.ChunkAck) int { return a.StartRow - b.StartRow })

	return acked, nil
}

func (j *Journal) AckChunk(_ context.Context, ack storage.ChunkAck) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	chunks, ok := j.imports[ack.ImportID]
	if !ok {
		chunks = make(map[int]storage.ChunkAck)
		j.imports[ack.ImportID] = chunks
	}
	chunks[ack.StartRow] = ack

	return nil
}

func (j *Journal) ForgetImport(_ context.Context, importID string) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	delete(j.imports, importID)

	return nil
}
