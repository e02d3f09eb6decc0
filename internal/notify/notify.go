// Package notify publishes run summaries to NATS.
package notify

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"git.home.luguber.info/inful/continuity/internal/foundation/errors"
	"git.home.luguber.info/inful/continuity/internal/logfields"
	"git.home.luguber.info/inful/continuity/internal/report"
)

const publishTimeout = 5 * time.Second

// Summary is the message published for each run.
type Summary struct {
	RunID             string                   `json:"run_id"`
	Timestamp         time.Time                `json:"timestamp"`
	SeriesPath        string                   `json:"series_path"`
	Revision          string                   `json:"revision,omitempty"`
	Documents         int                      `json:"documents"`
	Unreadable        int                      `json:"unreadable"`
	TotalIssues       int                      `json:"total_issues"`
	LinkIssues        int                      `json:"link_issues"`
	ConsistencyIssues int                      `json:"consistency_issues"`
	DependencyIssues  int                      `json:"dependency_issues"`
	ByKind            map[report.IssueKind]int `json:"by_kind"`
	Passed            bool                     `json:"passed"`
}

// NewSummary builds the published summary of r.
func NewSummary(r *report.Report) Summary {
	return Summary{
		RunID:             r.RunID,
		Timestamp:         r.Timestamp,
		SeriesPath:        r.SeriesPath,
		Revision:          r.Revision,
		Documents:         r.Documents,
		Unreadable:        len(r.UnreadableDocuments),
		TotalIssues:       r.TotalIssues,
		LinkIssues:        r.LinkIssues.Count,
		ConsistencyIssues: r.ConsistencyIssues.Count,
		DependencyIssues:  r.DependencyIssues.Count,
		ByKind:            r.CountByKind(),
		Passed:            !r.Failed(),
	}
}

// conn is the subset of *nats.Conn the publisher uses.
type conn interface {
	Publish(subj string, data []byte) error
	FlushWithContext(ctx context.Context) error
	Close()
}

// Publisher sends run summaries to a NATS subject.
type Publisher struct {
	conn    conn
	subject string
}

// Connect dials the NATS server at url.
func Connect(url, subject string) (*Publisher, error) {
	nc, err := nats.Connect(url,
		nats.Name("continuity"),
		nats.Timeout(publishTimeout),
	)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryMessaging, "failed to connect to NATS").
			WithContext("url", url).
			Build()
	}
	slog.Debug("NATS publisher connected", slog.String("url", url), slog.String("subject", subject))
	return &Publisher{conn: nc, subject: subject}, nil
}

// Publish sends the summary of r and waits for the server to acknowledge the flush.
func (p *Publisher) Publish(ctx context.Context, r *report.Report) error {
	data, err := json.Marshal(NewSummary(r))
	if err != nil {
		return errors.WrapError(err, errors.CategoryInternal, "failed to marshal run summary").Build()
	}

	if err := p.conn.Publish(p.subject, data); err != nil {
		return errors.WrapError(err, errors.CategoryMessaging, "failed to publish run summary").
			WithContext("subject", p.subject).
			Build()
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	if err := p.conn.FlushWithContext(ctx); err != nil {
		return errors.WrapError(err, errors.CategoryMessaging, "failed to flush NATS connection").
			WithContext("subject", p.subject).
			Build()
	}

	slog.Debug("Published run summary", logfields.RunID(r.RunID), slog.String("subject", p.subject))
	return nil
}

// Close closes the NATS connection.
func (p *Publisher) Close() {
	p.conn.Close()
}
