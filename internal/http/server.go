// Package http serves the JSON API that presentation surfaces consume:
// summaries, breakdowns, series, budget usage and goal progress, all
// derived from the current snapshot.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"fino/internal/cache"
	"fino/internal/core"
	"fino/internal/export"
	"fino/internal/log"
	"fino/internal/middleware/trace"
	"fino/internal/store"
)

// SnapshotSource is the slice of the store the server reads from.
type SnapshotSource interface {
	Current() (store.Snapshot, bool)
	Generation() uint64
	Refresh(ctx context.Context) error
}

// Mutator is the slice of the API client used for write-through
// operations. Every mutation is followed by a refresh so the snapshot
// catches up.
type Mutator interface {
	CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error)
	UpdateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error)
	DeleteTransaction(ctx context.Context, id int64) error
	CreateBudget(ctx context.Context, b core.Budget) (core.Budget, error)
	UpdateBudget(ctx context.Context, b core.Budget) (core.Budget, error)
	DeleteBudget(ctx context.Context, id int64) error
	CreateGoal(ctx context.Context, g core.Goal) (core.Goal, error)
	UpdateGoal(ctx context.Context, g core.Goal) (core.Goal, error)
	DeleteGoal(ctx context.Context, id int64) error
}

// ContributionRecorder records a contribution and kicks off strategy
// reconciliation.
type ContributionRecorder interface {
	AddContribution(ctx context.Context, c core.Contribution, method string) (core.Contribution, error)
}

type Server struct {
	http.Server

	snapshots SnapshotSource
	mutator   Mutator
	goals     ContributionRecorder
	exporter  export.ReportWriter
	logger    *log.Logger

	// Derived responses are cached per window and snapshot generation;
	// a refresh changes the generation so stale entries simply stop
	// being addressed.
	summaryCache *cache.LRUCache[summaryResponse]
	seriesCache  *cache.LRUCache[seriesResponse]
	cacheManager *cache.Manager

	shutdownOnce sync.Once
}

// Options configures the server's tunables.
type Options struct {
	Addr      string
	CacheSize int
	CacheTTL  time.Duration
}

// NewServer wires routes and caches, returning a ready-to-run server.
// exporter may be nil when no report destination is configured.
func NewServer(opts Options, snapshots SnapshotSource, mutator Mutator, goals ContributionRecorder, exporter export.ReportWriter, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	cacheSize := opts.CacheSize
	if cacheSize <= 0 {
		cacheSize = 128
	}
	cacheTTL := opts.CacheTTL
	if cacheTTL <= 0 {
		cacheTTL = time.Minute
	}

	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr: opts.Addr,
		},
		snapshots:    snapshots,
		mutator:      mutator,
		goals:        goals,
		exporter:     exporter,
		logger:       logger.WithComponent(log.ComponentHTTP),
		summaryCache: cache.NewLRUCache[summaryResponse](cacheSize, cacheTTL),
		seriesCache:  cache.NewLRUCache[seriesResponse](cacheSize, cacheTTL),
		cacheManager: cache.NewManager(),
	}
	s.cacheManager.Register(s.summaryCache)
	s.cacheManager.Register(s.seriesCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("GET /api/summary", s.handleSummary)
	mux.HandleFunc("GET /api/breakdown", s.handleBreakdown)
	mux.HandleFunc("GET /api/series", s.handleSeries)
	mux.HandleFunc("GET /api/budgets", s.handleBudgets)
	mux.HandleFunc("GET /api/goals", s.handleGoals)

	mux.HandleFunc("POST /api/transactions", s.handleCreateTransaction)
	mux.HandleFunc("PUT /api/transactions/{id}", s.handleUpdateTransaction)
	mux.HandleFunc("DELETE /api/transactions/{id}", s.handleDeleteTransaction)
	mux.HandleFunc("POST /api/budgets", s.handleCreateBudget)
	mux.HandleFunc("PUT /api/budgets/{id}", s.handleUpdateBudget)
	mux.HandleFunc("DELETE /api/budgets/{id}", s.handleDeleteBudget)
	mux.HandleFunc("POST /api/goals", s.handleCreateGoal)
	mux.HandleFunc("PUT /api/goals/{id}", s.handleUpdateGoal)
	mux.HandleFunc("DELETE /api/goals/{id}", s.handleDeleteGoal)
	mux.HandleFunc("POST /api/goals/{id}/contributions", s.handleAddContribution)

	mux.HandleFunc("POST /api/refresh", s.handleRefresh)
	mux.HandleFunc("POST /api/export", s.handleExport)

	traceMW := trace.NewMiddleware(clientIP)
	s.Handler = traceMW.Middleware(mux)
	return s
}

// Shutdown stops the HTTP listener and the cache cleanup goroutine.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func clientIP(r *http.Request) string {
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		return ip
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	return r.RemoteAddr
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// handleReady reports ready only once a snapshot is available, so load
// balancers hold traffic until there is data to serve.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.snapshots.Current(); !ok {
		http.Error(w, "no snapshot yet", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
