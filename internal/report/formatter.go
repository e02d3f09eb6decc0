package report

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"git.home.luguber.info/inful/continuity/internal/foundation/errors"
)

// Formatter writes a report for human or machine consumption.
type Formatter interface {
	Format(w io.Writer, r *Report) error
}

// NewFormatter returns the formatter for format ("text" or "json").
func NewFormatter(format string, details bool) (Formatter, error) {
	switch format {
	case "", "text":
		return &TextFormatter{Details: details}, nil
	case "json":
		return JSONFormatter{}, nil
	default:
		return nil, errors.ValidationError("unsupported report format").
			WithContext("format", format).
			Build()
	}
}

// PrintSummary writes the four-line summary: total, link, consistency and
// dependency issue counts.
func PrintSummary(w io.Writer, r *Report) error {
	_, err := fmt.Fprintf(w,
		"Continuity check complete:\n  Total issues: %d\n  Link issues: %d\n  Consistency issues: %d\n  Dependency issues: %d\n",
		r.TotalIssues, r.LinkIssues.Count, r.ConsistencyIssues.Count, r.DependencyIssues.Count)
	return err
}

// TextFormatter prints the summary and, with Details, every issue grouped by kind.
type TextFormatter struct {
	Details bool
}

// Format outputs the report as text.
func (f *TextFormatter) Format(w io.Writer, r *Report) error {
	if f.Details {
		if err := f.formatDetails(w, r); err != nil {
			return err
		}
	}
	return PrintSummary(w, r)
}

func (f *TextFormatter) formatDetails(w io.Writer, r *Report) error {
	if _, err := fmt.Fprintf(w, "Checking series: %s\n", r.SeriesPath); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, strings.Repeat("━", 60)); err != nil {
		return err
	}

	byKind := make(map[IssueKind][]Located)
	var kinds []IssueKind
	for _, issue := range r.All() {
		if _, seen := byKind[issue.Kind()]; !seen {
			kinds = append(kinds, issue.Kind())
		}
		byKind[issue.Kind()] = append(byKind[issue.Kind()], issue)
	}
	sort.SliceStable(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })

	for _, kind := range kinds {
		issues := byKind[kind]
		if _, err := fmt.Fprintf(w, "\n%s (%d)\n", kind, len(issues)); err != nil {
			return err
		}
		for _, issue := range issues {
			if err := formatIssue(w, issue); err != nil {
				return err
			}
		}
	}

	if len(r.UnreadableDocuments) > 0 {
		if _, err := fmt.Fprintf(w, "\nunreadable documents (%d)\n", len(r.UnreadableDocuments)); err != nil {
			return err
		}
		for _, u := range r.UnreadableDocuments {
			if _, err := fmt.Fprintf(w, "  ✗ %s: %s\n", u.FilePath, u.Error); err != nil {
				return err
			}
		}
	}

	if _, err := fmt.Fprintln(w, strings.Repeat("━", 60)); err != nil {
		return err
	}
	return nil
}

func formatIssue(w io.Writer, issue Located) error {
	location := issue.Path()
	if issue.Line() > 0 {
		location = fmt.Sprintf("%s:%d", location, issue.Line())
	}
	if _, err := fmt.Fprintf(w, "  ✗ %s\n    %s\n", location, issue.Text()); err != nil {
		return err
	}
	if c, ok := issue.(ConsistencyIssue); ok && c.SuggestedFix != "" {
		if _, err := fmt.Fprintf(w, "    Fix: %s\n", c.SuggestedFix); err != nil {
			return err
		}
	}
	return nil
}

// JSONFormatter prints the full report as indented JSON.
type JSONFormatter struct{}

// Format outputs the report as JSON.
func (JSONFormatter) Format(w io.Writer, r *Report) error {
	return r.EncodeJSON(w)
}

