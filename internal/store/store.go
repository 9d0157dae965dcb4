// Package store keeps the in-memory snapshot of remote data that every
// read path computes against. Readers always see a complete, consistent
// snapshot; refreshes replace it atomically.
package store

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"fino/internal/core"
	"fino/internal/log"
)

// Fetcher is the slice of the API client the store needs.
type Fetcher interface {
	Transactions(ctx context.Context) ([]core.Transaction, error)
	Budgets(ctx context.Context) ([]core.Budget, error)
	Goals(ctx context.Context) ([]core.Goal, error)
}

// Snapshot is one immutable view of the remote data. Callers must not
// mutate the slices.
type Snapshot struct {
	Transactions []core.Transaction
	Budgets      []core.Budget
	Goals        []core.Goal

	// Generation increments on every applied refresh. Cache keys include
	// it so stale derived metrics age out naturally.
	Generation uint64
	FetchedAt  time.Time
}

// Store holds the current snapshot behind a read/write lock.
type Store struct {
	fetcher Fetcher
	logger  *log.Logger

	mu       sync.RWMutex
	snapshot Snapshot
	loaded   bool

	// seq orders refresh attempts; a refresh that finishes after a newer
	// one started is discarded instead of rolling the snapshot back.
	seqMu   sync.Mutex
	seq     uint64
	applied uint64
}

// New creates a store over the given fetcher.
func New(fetcher Fetcher, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &Store{
		fetcher: fetcher,
		logger:  logger.WithComponent(log.ComponentStore),
	}
}

// Current returns the latest snapshot. ok is false until the first
// successful refresh.
func (s *Store) Current() (Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot, s.loaded
}

// Generation returns the current snapshot generation.
func (s *Store) Generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot.Generation
}

// Refresh fetches all three collections concurrently and installs the
// result as the new snapshot. Any single fetch failure fails the whole
// refresh and leaves the previous snapshot untouched.
func (s *Store) Refresh(ctx context.Context) error {
	s.seqMu.Lock()
	s.seq++
	seq := s.seq
	s.seqMu.Unlock()

	start := time.Now()
	var (
		transactions []core.Transaction
		budgets      []core.Budget
		goals        []core.Goal
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		transactions, err = s.fetcher.Transactions(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		budgets, err = s.fetcher.Budgets(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		goals, err = s.fetcher.Goals(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.WarnContext(ctx, "refresh failed",
			log.FieldOperation, log.OpRefresh, log.FieldError, err.Error())
		return err
	}

	s.seqMu.Lock()
	if seq < s.applied {
		s.seqMu.Unlock()
		s.logger.DebugContext(ctx, "discarding out-of-order refresh")
		return nil
	}
	s.applied = seq
	s.seqMu.Unlock()

	s.mu.Lock()
	s.snapshot = Snapshot{
		Transactions: transactions,
		Budgets:      budgets,
		Goals:        goals,
		Generation:   s.snapshot.Generation + 1,
		FetchedAt:    time.Now(),
	}
	s.loaded = true
	generation := s.snapshot.Generation
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "snapshot refreshed",
		log.FieldGeneration, generation,
		log.FieldRecordCount, len(transactions)+len(budgets)+len(goals),
		log.FieldDuration, time.Since(start).Milliseconds())
	return nil
}

// Replace installs a snapshot directly, used to seed the store from the
// local cache before the first remote refresh completes. It never
// overwrites data a remote refresh already applied.
func (s *Store) Replace(snapshot Snapshot) bool {
	s.seqMu.Lock()
	defer s.seqMu.Unlock()
	if s.applied > 0 {
		return false
	}

	s.mu.Lock()
	snapshot.Generation = s.snapshot.Generation + 1
	s.snapshot = snapshot
	s.loaded = true
	s.mu.Unlock()
	return true
}

// RunPeriodic refreshes on the given interval until the context ends. The
// first refresh happens immediately.
func (s *Store) RunPeriodic(ctx context.Context, interval time.Duration) {
	if err := s.Refresh(ctx); err != nil {
		s.logger.WarnContext(ctx, "initial refresh failed", log.FieldError, err.Error())
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.Refresh(ctx); err != nil {
				s.logger.WarnContext(ctx, "periodic refresh failed", log.FieldError, err.Error())
			}
		}
	}
}
