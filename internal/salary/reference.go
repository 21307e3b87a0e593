package salary

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"salary-import/internal/storage"
)

type ReferenceSource interface {
	GetWorkers(ctx context.Context) ([]storage.WorkerRef, error)
	GetProcesses(ctx context.Context) ([]storage.ProcessRef, error)
	GetSpecPrices(ctx context.Context) ([]storage.PriceRef, error)
}

// Reference is a read-only snapshot of the backend's lookup lists.
type Reference struct {
	Workers   []storage.WorkerRef  `json:"workers"`
	Processes []storage.ProcessRef `json:"processes"`
	Prices    []storage.PriceRef   `json:"prices"`
	Warnings  []string             `json:"warnings,omitempty"`
}

// ReferenceCache fetches the three lists at most once. A failed source
// leaves its list empty and adds a warning; it never fails the caller.
type ReferenceCache struct {
	src ReferenceSource
	log *slog.Logger

	once sync.Once
	ref  *Reference
}

func NewReferenceCache(log *slog.Logger, src ReferenceSource) *ReferenceCache {
	return &ReferenceCache{src: src, log: log}
}

func (c *ReferenceCache) Get(ctx context.Context) *Reference {
	c.once.Do(func() {
		c.ref = c.load(ctx)
	})
	return c.ref
}

func (c *ReferenceCache) load(ctx context.Context) *Reference {
	const op = "salary.ReferenceCache.load"

	var (
		ref Reference
		mu  sync.Mutex
		g   errgroup.Group
	)

	warn := func(source string, err error) {
		c.log.Warn("reference fetch failed", slog.String("op", op), slog.String("source", source), slog.String("error", err.Error()))
		mu.Lock()
		ref.Warnings = append(ref.Warnings, fmt.Sprintf("failed to load %s", source))
		mu.Unlock()
	}

	// each source is independent: errors become warnings, so no goroutine returns one
	g.Go(func() error {
		workers, err := c.src.GetWorkers(ctx)
		if err != nil {
			warn("workers", err)
			return nil
		}
		ref.Workers = workers
		return nil
	})
	g.Go(func() error {
		processes, err := c.src.GetProcesses(ctx)
		if err != nil {
			warn("processes", err)
			return nil
		}
		ref.Processes = processes
		return nil
	})
	g.Go(func() error {
		prices, err := c.src.GetSpecPrices(ctx)
		if err != nil {
			warn("spec prices", err)
			return nil
		}
		ref.Prices = prices
		return nil
	})
	_ = g.Wait()
	sort.Strings(ref.Warnings)

	c.log.Info("reference data loaded",
		slog.Int("workers", len(ref.Workers)),
		slog.Int("processes", len(ref.Processes)),
		slog.Int("prices", len(ref.Prices)),
	)

	return &ref
}
