package salary

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"
)

const DefaultSessionTTL = 12 * time.Hour

type CheckResult struct {
	Unmatched int      `json:"unmatched"`
	Summary   Summary  `json:"summary"`
	Warnings  []string `json:"warnings,omitempty"`
}

// Service drives the import flow for the HTTP API: upload, the two check
// passes, and submission.
type Service struct {
	log       *slog.Logger
	src       ReferenceSource
	submitter *Submitter
	sessions  *Sessions
}

func NewService(log *slog.Logger, src ReferenceSource, submitter *Submitter, sessions *Sessions) *Service {
	return &Service{
		log:       log,
		src:       src,
		submitter: submitter,
		sessions:  sessions,
	}
}

func (s *Service) Upload(ctx context.Context, data []byte, fileName string) (*SessionView, error) {
	const op = "salary.Service.Upload"

	sheet, err := Parse(bytes.NewReader(data), fileName)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	sess := s.sessions.create(ImportID(data), fileName, sheet, NewReferenceCache(s.log, s.src))

	// warm the cache the way the page did on load; failures only become warnings
	go sess.cache.Get(context.WithoutCancel(ctx))

	s.log.Info("spreadsheet parsed",
		slog.String("session", sess.ID),
		slog.String("file", fileName),
		slog.Int("rows", len(sheet.Rows)),
	)

	return sess.View(), nil
}

func (s *Service) Session(id string) (*SessionView, error) {
	sess, err := s.sessions.Get(id)
	if err != nil {
		return nil, err
	}
	return sess.View(), nil
}

func (s *Service) Reference(ctx context.Context, id string) (*Reference, error) {
	sess, err := s.sessions.Get(id)
	if err != nil {
		return nil, err
	}
	return sess.cache.Get(ctx), nil
}

func (s *Service) CheckWorkers(ctx context.Context, id string) (CheckResult, error) {
	return s.check(ctx, id, MatchWorkers)
}

func (s *Service) CheckPrices(ctx context.Context, id string) (CheckResult, error) {
	return s.check(ctx, id, MatchPrices)
}

func (s *Service) check(ctx context.Context, id string, pass func([]*ImportRow, *Reference) int) (CheckResult, error) {
	sess, err := s.sessions.Get(id)
	if err != nil {
		return CheckResult{}, err
	}
	ref := sess.cache.Get(ctx)

	sess.mu.Lock()
	defer sess.mu.Unlock()

	// checked under mu: Submit flips the flag before it snapshots the rows
	if sess.submitting.Load() {
		return CheckResult{}, ErrSubmitInProgress
	}

	unmatched := pass(sess.rows, ref)

	return CheckResult{
		Unmatched: unmatched,
		Summary:   Summarize(sess.rows),
		Warnings:  ref.Warnings,
	}, nil
}

// Submit runs the submitter for the session. Only one submission per
// session may be in flight.
func (s *Service) Submit(ctx context.Context, id string) (SubmitResult, error) {
	sess, err := s.sessions.Get(id)
	if err != nil {
		return SubmitResult{}, err
	}

	if !sess.submitting.CompareAndSwap(false, true) {
		return SubmitResult{}, ErrSubmitInProgress
	}
	defer sess.submitting.Store(false)

	sess.mu.Lock()
	rows := make([]*ImportRow, len(sess.rows))
	for i, r := range sess.rows {
		cp := *r
		rows[i] = &cp
	}
	sess.progress = Progress{Total: len(rows)}
	sess.mu.Unlock()

	return s.submitter.Submit(ctx, sess.ImportID, rows, sess.setProgress)
}

func (s *Service) Progress(id string) (Progress, error) {
	sess, err := s.sessions.Get(id)
	if err != nil {
		return Progress{}, err
	}
	return sess.Progress(), nil
}

func (s *Service) Discard(id string) error {
	return s.sessions.Delete(id)
}
