package export

import (
	"context"

	"fino/internal/analytics"
)

// Ports for outbound report adapters.
type (
	// ReportWriter writes a rendered report to its destination and
	// returns a reference to where it landed (sheet range, buffer key).
	ReportWriter interface {
		WriteReport(ctx context.Context, r analytics.Report) (ref string, err error)
	}
)
