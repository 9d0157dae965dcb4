// Package memory holds exported reports in memory, for tests and for
// running without a spreadsheet configured.
package memory

import (
	"context"
	"fmt"
	"sync"

	"fino/internal/analytics"
	ports "fino/internal/export"
)

type Store struct {
	mu      sync.Mutex
	reports []analytics.Report
}

var _ ports.ReportWriter = (*Store)(nil)

func New() *Store {
	return &Store{}
}

// WriteReport stores the report and returns a synthetic reference.
func (s *Store) WriteReport(_ context.Context, r analytics.Report) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports = append(s.reports, r)
	return fmt.Sprintf("mem:%d", len(s.reports)), nil
}

// Reports returns a copy of everything written so far.
func (s *Store) Reports() []analytics.Report {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]analytics.Report, len(s.reports))
	copy(out, s.reports)
	return out
}
