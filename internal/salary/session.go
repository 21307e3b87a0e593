package salary

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

var (
	ErrSessionNotFound  = errors.New("import session not found")
	ErrSubmitInProgress = errors.New("submission already in progress")
)

// Session is one uploaded spreadsheet and its reconciliation state, the
// equivalent of a single visit to the import page.
type Session struct {
	ID        string
	ImportID  string
	FileName  string
	CreatedAt time.Time

	cache *ReferenceCache

	mu       sync.Mutex
	columns  []string
	rows     []*ImportRow
	progress Progress

	submitting atomic.Bool
}

type SessionView struct {
	ID        string       `json:"id"`
	ImportID  string       `json:"import_id"`
	FileName  string       `json:"file_name"`
	CreatedAt time.Time    `json:"created_at"`
	Columns   []string     `json:"columns"`
	Rows      []*ImportRow `json:"rows"`
	Summary   Summary      `json:"summary"`
	Progress  Progress     `json:"progress"`
}

// View copies the session state; the returned rows are safe to read while
// the session keeps changing.
func (s *Session) View() *SessionView {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows := make([]*ImportRow, len(s.rows))
	for i, r := range s.rows {
		cp := *r
		rows[i] = &cp
	}

	return &SessionView{
		ID:        s.ID,
		ImportID:  s.ImportID,
		FileName:  s.FileName,
		CreatedAt: s.CreatedAt,
		Columns:   append([]string(nil), s.columns...),
		Rows:      rows,
		Summary:   Summarize(rows),
		Progress:  s.progress,
	}
}

func (s *Session) Progress() Progress {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.progress
}

func (s *Session) setProgress(p Progress) {
	s.mu.Lock()
	s.progress = p
	s.mu.Unlock()
}

// Sessions is an in-memory registry; sessions older than ttl are dropped
// when new ones are created.
type Sessions struct {
	mu    sync.Mutex
	items map[string]*Session
	ttl   time.Duration
	now   func() time.Time
}

func NewSessions(ttl time.Duration) *Sessions {
	return &Sessions{
		items: make(map[string]*Session),
		ttl:   ttl,
		now:   time.Now,
	}
}

func (ss *Sessions) create(importID, fileName string, sheet *Sheet, cache *ReferenceCache) *Session {
	s := &Session{
		ID:        uuid.NewString(),
		ImportID:  importID,
		FileName:  fileName,
		CreatedAt: ss.now(),
		cache:     cache,
		columns:   sheet.Columns,
		rows:      sheet.Rows,
	}

	ss.mu.Lock()
	defer ss.mu.Unlock()

	ss.sweepLocked()
	ss.items[s.ID] = s

	return s
}

func (ss *Sessions) Get(id string) (*Session, error) {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	s, ok := ss.items[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

func (ss *Sessions) Delete(id string) error {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	if _, ok := ss.items[id]; !ok {
		return ErrSessionNotFound
	}
	delete(ss.items, id)
	return nil
}

func (ss *Sessions) Len() int {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	return len(ss.items)
}

func (ss *Sessions) sweepLocked() {
	if ss.ttl <= 0 {
		return
	}
	cutoff := ss.now().Add(-ss.ttl)
	for id, s := range ss.items {
		if s.CreatedAt.Before(cutoff) && !s.submitting.Load() {
			delete(ss.items, id)
		}
	}
}
