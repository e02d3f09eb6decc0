package report

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/continuity/internal/foundation/errors"
)

// Section is one named group of issues with its count.
type Section[T Located] struct {
	Count  int `json:"count"`
	Issues []T `json:"issues"`
}

func newSection[T Located](issues []T) Section[T] {
	if issues == nil {
		issues = []T{}
	}
	return Section[T]{Count: len(issues), Issues: issues}
}

// Report is the aggregate result of one continuity run.
type Report struct {
	RunID               string                    `json:"run_id"`
	Timestamp           time.Time                 `json:"timestamp"`
	SeriesPath          string                    `json:"series_path"`
	Revision            string                    `json:"revision,omitempty"`
	Documents           int                       `json:"documents"`
	TotalIssues         int                       `json:"total_issues"`
	LinkIssues          Section[LinkIssue]        `json:"link_issues"`
	ConsistencyIssues   Section[ConsistencyIssue] `json:"consistency_issues"`
	DependencyIssues    Section[DependencyIssue]  `json:"dependency_issues"`
	UnreadableDocuments []UnreadableDocument      `json:"unreadable_documents"`
}

// Input carries the results of the three checks into New.
type Input struct {
	SeriesPath  string
	Revision    string
	Documents   int
	Timestamp   time.Time
	Links       []LinkIssue
	Consistency []ConsistencyIssue
	Dependency  []DependencyIssue
	Unreadable  []UnreadableDocument
}

// New aggregates check results into a report with a fresh run ID.
func New(in Input) *Report {
	ts := in.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	unreadable := in.Unreadable
	if unreadable == nil {
		unreadable = []UnreadableDocument{}
	}
	r := &Report{
		RunID:               uuid.NewString(),
		Timestamp:           ts,
		SeriesPath:          in.SeriesPath,
		Revision:            in.Revision,
		Documents:           in.Documents,
		LinkIssues:          newSection(in.Links),
		ConsistencyIssues:   newSection(in.Consistency),
		DependencyIssues:    newSection(in.Dependency),
		UnreadableDocuments: unreadable,
	}
	r.TotalIssues = r.LinkIssues.Count + r.ConsistencyIssues.Count + r.DependencyIssues.Count
	return r
}

// Failed reports whether the run found any issue. There is no severity weighting.
func (r *Report) Failed() bool {
	return r.TotalIssues > 0
}

// All returns every issue in link, consistency, dependency order.
func (r *Report) All() []Located {
	out := make([]Located, 0, r.TotalIssues)
	for _, i := range r.LinkIssues.Issues {
		out = append(out, i)
	}
	for _, i := range r.ConsistencyIssues.Issues {
		out = append(out, i)
	}
	for _, i := range r.DependencyIssues.Issues {
		out = append(out, i)
	}
	return out
}

// CountByKind returns the number of issues per kind.
func (r *Report) CountByKind() map[IssueKind]int {
	counts := make(map[IssueKind]int)
	for _, i := range r.All() {
		counts[i.Kind()]++
	}
	return counts
}

// EncodeJSON writes the report as indented UTF-8 JSON. Non-ASCII text is
// written as-is rather than escaped.
func (r *Report) EncodeJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// WriteJSON writes the report to path, creating parent directories.
func (r *Report) WriteJSON(path string) error {
	var buf bytes.Buffer
	if err := r.EncodeJSON(&buf); err != nil {
		return errors.WrapError(err, errors.CategoryInternal, "failed to encode report").Build()
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return errors.WrapError(err, errors.CategoryFileSystem, "failed to create report directory").
				WithContext("path", dir).
				Build()
		}
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil { //nolint:gosec // reports are shared artifacts
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to write report").
			WithContext("path", path).
			Build()
	}
	return nil
}

// ReadJSON loads a report previously written by WriteJSON.
func ReadJSON(path string) (*Report, error) {
	// #nosec G304 -- report path is user-provided.
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to read report").
			WithContext("path", path).
			Build()
	}
	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, errors.WrapError(err, errors.CategoryValidation, "invalid report file").
			WithContext("path", path).
			Build()
	}
	return &r, nil
}
