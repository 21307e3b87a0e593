package journal

import (
	"context"
	"fmt"

	"salary-import/internal/config"
	"salary-import/internal/storage"
	"salary-import/internal/storage/file"
	"salary-import/internal/storage/memory"
	"salary-import/internal/storage/mysql"
)

const (
	DriverMemory = "memory"
	DriverFile   = "file"
	DriverMySQL  = "mysql"
)

// Journal records which row ranges of an import the backend has acknowledged.
type Journal interface {
	AckedChunks(ctx context.Context, importID string) ([]storage.ChunkAck, error)
	AckChunk(ctx context.Context, ack storage.ChunkAck) error
	ForgetImport(ctx context.Context, importID string) error
}

// Open picks the journal backend named by cfg.Journal.Driver. The returned
// close func is never nil.
func Open(cfg config.Config) (Journal, func() error, error) {
	const op = "journal.Open"

	switch cfg.Journal.Driver {
	case "", DriverMemory:
		return memory.NewJournal(), func() error { return nil }, nil
	case DriverFile:
		j, err := file.NewJournal(cfg.Journal.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %w", op, err)
		}
		return j, func() error { return nil }, nil
	case DriverMySQL:
		s, err := mysql.New(cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %w", op, err)
		}
		return s, s.Close, nil
	}

	return nil, nil, fmt.Errorf("%s: unknown driver %q", op, cfg.Journal.Driver)
}
