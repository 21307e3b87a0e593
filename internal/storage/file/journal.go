package file

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"gopkg.in/yaml.v3"

	"salary-import/internal/storage"
)

// Journal keeps chunk acknowledgements in a YAML file so separate runs of
// the CLI can resume an import. Every call re-reads the file and rewrites it
// whole through a temp file and a rename.
type Journal struct {
	mu   sync.Mutex
	path string
}

type document struct {
	Imports map[string][]storage.ChunkAck `yaml:"imports"`
}

func NewJournal(path string) (*Journal, error) {
	const op = "storage.file.NewJournal"

	if path == "" {
		return nil, fmt.Errorf("%s: %w", op, errors.New("journal path is empty"))
	}

	j := &Journal{path: path}
	if _, err := j.load(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return j, nil
}

func (j *Journal) Path() string {
	return j.path
}

func (j *Journal) AckedChunks(_ context.Context, importID string) ([]storage.ChunkAck, error) {
	const op = "storage.file.AckedChunks"

	j.mu.Lock()
	defer j.mu.Unlock()

	doc, err := j.load()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return slices.Clone(doc.Imports[importID]), nil
}

func (j *Journal) AckChunk(_ context.Context, ack storage.ChunkAck) error {
	const op = "storage.file.AckChunk"

	j.mu.Lock()
	defer j.mu.Unlock()

	doc, err := j.load()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	acks := slices.DeleteFunc(doc.Imports[ack.ImportID], func(a storage.ChunkAck) bool {
		return a.StartRow == ack.StartRow
	})
	acks = append(acks, ack)
	slices.SortFunc(acks, func(a, b storage.ChunkAck) int { return a.StartRow - b.StartRow })
	doc.Imports[ack.ImportID] = acks

	if err := j.save(doc); err != nil {
		return fmt.Errorf("%s: import_id=%s rows=%d-%d: %w", op, ack.ImportID, ack.StartRow, ack.EndRow, err)
	}

	return nil
}

func (j *Journal) ForgetImport(_ context.Context, importID string) error {
	const op = "storage.file.ForgetImport"

	j.mu.Lock()
	defer j.mu.Unlock()

	doc, err := j.load()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if _, ok := doc.Imports[importID]; !ok {
		return nil
	}
	delete(doc.Imports, importID)

	if err := j.save(doc); err != nil {
		return fmt.Errorf("%s: import_id=%s: %w", op, importID, err)
	}

	return nil
}

// load treats a missing file as an empty journal.
func (j *Journal) load() (*document, error) {
	doc := &document{}

	data, err := os.ReadFile(j.path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read %s: %w", j.path, err)
	default:
		if err := yaml.Unmarshal(data, doc); err != nil {
			return nil, fmt.Errorf("decode %s: %w", j.path, err)
		}
	}

	if doc.Imports == nil {
		doc.Imports = make(map[string][]storage.ChunkAck)
	}

	return doc, nil
}

func (j *Journal) save(doc *document) error {
	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}

	dir := filepath.Dir(j.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(j.path)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), j.path)
}
