// Package linkcheck validates the inline links of every document in a series.
//
// Each `[text](target)` link is classified in a fixed order:
//
//  1. anchor: target starts with `#` and must match a heading slug of the same document
//  2. external: target starts with http:// or https:// and must have a valid URL shape
//  3. internal: target ends in the series extension with no `#`, and must exist relative
//     to the linking document
//
// Anything else (mailto:, images, anchored document links) is out of scope.
// External URLs are never fetched.
package linkcheck

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"git.home.luguber.info/inful/continuity/internal/corpus"
	"git.home.luguber.info/inful/continuity/internal/logfields"
	"git.home.luguber.info/inful/continuity/internal/markdown"
	"git.home.luguber.info/inful/continuity/internal/report"
	"git.home.luguber.info/inful/continuity/internal/util/sets"
)

var (
	externalPattern = regexp.MustCompile(`^https?://`)
	urlShapePattern = regexp.MustCompile(`(?i)^https?://` +
		`(?:(?:[A-Z0-9](?:[A-Z0-9-]{0,61}[A-Z0-9])?\.)+[A-Z]{2,6}\.?|` +
		`localhost|` +
		`\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3})` +
		`(?::\d+)?` +
		`(?:/?|[/?]\S+)$`)
)

// Checker validates links. It is safe for concurrent use.
type Checker struct {
	loader          *corpus.Loader
	internalPattern *regexp.Regexp
}

// New creates a checker for documents enumerated by loader.
func New(loader *corpus.Loader) *Checker {
	return &Checker{
		loader:          loader,
		internalPattern: regexp.MustCompile(`^[^#]+` + regexp.QuoteMeta(loader.Extension()) + `$`),
	}
}

// Check loads the series under root and validates its links.
func (c *Checker) Check(ctx context.Context, root string) ([]report.LinkIssue, error) {
	cor, err := c.loader.Load(ctx, root)
	if err != nil {
		return nil, err
	}
	return c.CheckCorpus(ctx, cor)
}

// CheckCorpus validates the links of an already loaded corpus. Issues are
// ordered by document, then line, then occurrence.
func (c *Checker) CheckCorpus(ctx context.Context, cor *corpus.Corpus) ([]report.LinkIssue, error) {
	perDoc := make([][]report.LinkIssue, len(cor.Documents))
	err := cor.ForEach(ctx, c.loader.Workers(), func(i int, doc *corpus.Document) {
		perDoc[i] = c.CheckDocument(doc)
	})
	if err != nil {
		return nil, err
	}

	var issues []report.LinkIssue
	for _, di := range perDoc {
		issues = append(issues, di...)
	}
	slog.Info("Link check complete", logfields.Check("links"), logfields.Issues(len(issues)))
	return issues, nil
}

// CheckDocument validates every inline link in doc.
func (c *Checker) CheckDocument(doc *corpus.Document) []report.LinkIssue {
	var issues []report.LinkIssue
	var anchors sets.Set[string]

	for n, line := range doc.Lines {
		for _, link := range markdown.ScanInlineLinks(line) {
			issue, broken := c.checkLink(doc, link, &anchors)
			if !broken {
				continue
			}
			issue.FilePath = doc.Path
			issue.LineNumber = n + 1
			issue.LinkText = link.Text
			issue.LinkURL = link.Target
			issues = append(issues, issue)
		}
	}
	return issues
}

func (c *Checker) checkLink(doc *corpus.Document, link markdown.InlineLink, anchors *sets.Set[string]) (report.LinkIssue, bool) {
	target := link.Target
	switch {
	case strings.HasPrefix(target, "#"):
		anchor := target[1:]
		if *anchors == nil {
			*anchors = headingSlugs(doc.Content)
		}
		if !anchors.Has(anchor) {
			return report.LinkIssue{
				IssueType: report.KindBrokenAnchor,
				Message:   fmt.Sprintf("anchor '%s' not found", anchor),
			}, true
		}
	case externalPattern.MatchString(target):
		if !ValidURL(target) {
			return report.LinkIssue{
				IssueType: report.KindInvalidURL,
				Message:   fmt.Sprintf("invalid URL format: %s", target),
			}, true
		}
	case c.internalPattern.MatchString(target):
		if !exists(resolve(doc.Dir(), target)) {
			return report.LinkIssue{
				IssueType: report.KindBrokenInternalLink,
				Message:   fmt.Sprintf("file not found: %s", target),
			}, true
		}
	}
	return report.LinkIssue{}, false
}

// ValidURL reports whether url has an acceptable http(s) shape: a dotted
// domain name, localhost or a dotted-quad address, an optional port and an
// optional path or query.
func ValidURL(url string) bool {
	return urlShapePattern.MatchString(url)
}

func headingSlugs(content string) sets.Set[string] {
	slugs := sets.New[string]()
	for _, h := range markdown.Headings(content) {
		slugs.Add(markdown.Slug(h))
	}
	return slugs
}

func resolve(dir, target string) string {
	p := filepath.FromSlash(target)
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dir, p)
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
