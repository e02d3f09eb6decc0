// Package history persists a summary of every continuity run.
package history

import (
	"context"
	"time"

	"git.home.luguber.info/inful/continuity/internal/report"
)

// Run is the stored summary of one continuity run.
type Run struct {
	ID                int64
	RunID             string
	SeriesPath        string
	Timestamp         time.Time
	Revision          string
	Digest            string
	Documents         int
	Unreadable        int
	TotalIssues       int
	LinkIssues        int
	ConsistencyIssues int
	DependencyIssues  int
}

// Query filters List results. Zero values mean no filter; Limit <= 0 means 20.
type Query struct {
	SeriesPath string
	Limit      int
}

// Store defines the interface for recording and listing runs.
type Store interface {
	// Record stores a summary of r. digest identifies the analyzed content.
	Record(ctx context.Context, r *report.Report, digest string) error

	// List returns runs newest first.
	List(ctx context.Context, q Query) ([]Run, error)

	// Latest returns the newest run for a series, or nil when there is none.
	Latest(ctx context.Context, seriesPath string) (*Run, error)

	// Close closes the store and releases resources.
	Close() error
}

// FromReport builds the run summary of r.
func FromReport(r *report.Report, digest string) Run {
	return Run{
		RunID:             r.RunID,
		SeriesPath:        r.SeriesPath,
		Timestamp:         r.Timestamp,
		Revision:          r.Revision,
		Digest:            digest,
		Documents:         r.Documents,
		Unreadable:        len(r.UnreadableDocuments),
		TotalIssues:       r.TotalIssues,
		LinkIssues:        r.LinkIssues.Count,
		ConsistencyIssues: r.ConsistencyIssues.Count,
		DependencyIssues:  r.DependencyIssues.Count,
	}
}
