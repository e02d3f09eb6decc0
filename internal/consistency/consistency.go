// Package consistency checks terminology, style and structure across a series.
package consistency

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"regexp"
	"slices"
	"strings"

	"git.home.luguber.info/inful/continuity/internal/config"
	"git.home.luguber.info/inful/continuity/internal/corpus"
	"git.home.luguber.info/inful/continuity/internal/logfields"
	"git.home.luguber.info/inful/continuity/internal/markdown"
	"git.home.luguber.info/inful/continuity/internal/report"
	"git.home.luguber.info/inful/continuity/internal/util/sets"
)

var seriesNumberPattern = regexp.MustCompile(`(\d+)-(\d+)`)

// Rules is the dictionary and rule set a Checker enforces.
type Rules struct {
	Terminology      []config.TermRule
	MaxHeadingDepth  int
	RequiredSections []string
}

// RulesFromConfig extracts the consistency rules from cfg.
func RulesFromConfig(cfg *config.Config) Rules {
	return Rules{
		Terminology:      cfg.Terminology,
		MaxHeadingDepth:  cfg.Style.MaxHeadingDepth,
		RequiredSections: cfg.Style.RequiredSections,
	}
}

// Checker runs per-document consistency checks plus the series-numbering check.
type Checker struct {
	loader *corpus.Loader
	rules  Rules
}

// New creates a checker enforcing rules. A zero MaxHeadingDepth means 6.
func New(loader *corpus.Loader, rules Rules) *Checker {
	if rules.MaxHeadingDepth <= 0 {
		rules.MaxHeadingDepth = 6
	}
	return &Checker{loader: loader, rules: rules}
}

// Check loads the series under root and checks it.
func (c *Checker) Check(ctx context.Context, root string) ([]report.ConsistencyIssue, error) {
	cor, err := c.loader.Load(ctx, root)
	if err != nil {
		return nil, err
	}
	return c.CheckCorpus(ctx, cor)
}

// CheckCorpus checks an already loaded corpus. Per-document issues come first,
// in document order, followed by the series-wide issue if any.
func (c *Checker) CheckCorpus(ctx context.Context, cor *corpus.Corpus) ([]report.ConsistencyIssue, error) {
	perDoc := make([][]report.ConsistencyIssue, len(cor.Documents))
	err := cor.ForEach(ctx, c.loader.Workers(), func(i int, doc *corpus.Document) {
		perDoc[i] = c.CheckDocument(doc)
	})
	if err != nil {
		return nil, err
	}

	var issues []report.ConsistencyIssue
	for _, di := range perDoc {
		issues = append(issues, di...)
	}
	if issue, ok := c.checkSeriesNumbers(cor); ok {
		issues = append(issues, issue)
	}
	slog.Info("Consistency check complete", logfields.Check("consistency"), logfields.Issues(len(issues)))
	return issues, nil
}

// CheckDocument runs the terminology, style and required-section checks on doc.
func (c *Checker) CheckDocument(doc *corpus.Document) []report.ConsistencyIssue {
	issues := c.checkTerminology(doc)
	issues = append(issues, c.checkStyle(doc)...)
	issues = append(issues, c.checkRequiredSections(doc)...)
	return issues
}

// checkTerminology only fires when the canonical term is absent from the
// whole document; a document using both forms is accepted.
func (c *Checker) checkTerminology(doc *corpus.Document) []report.ConsistencyIssue {
	var issues []report.ConsistencyIssue
	for _, rule := range c.rules.Terminology {
		if strings.Contains(doc.Content, rule.Canonical) {
			continue
		}
		for _, syn := range rule.Synonyms {
			if !strings.Contains(doc.Content, syn) {
				continue
			}
			issues = append(issues, report.ConsistencyIssue{
				FilePath:     doc.Path,
				LineNumber:   0,
				IssueType:    report.KindTerminologyInconsistency,
				Message:      fmt.Sprintf("inconsistent terminology: use '%s' instead of '%s'", rule.Canonical, syn),
				SuggestedFix: fmt.Sprintf("replace '%s' with '%s'", syn, rule.Canonical),
			})
			break
		}
	}
	return issues
}

func (c *Checker) checkStyle(doc *corpus.Document) []report.ConsistencyIssue {
	var issues []report.ConsistencyIssue
	var fence markdown.Fence
	for n, line := range doc.Lines {
		wasOpen := fence.Open()
		if marker, opening, hasLanguage := fence.Next(line); marker {
			if opening && !hasLanguage {
				issues = append(issues, report.ConsistencyIssue{
					FilePath:     doc.Path,
					LineNumber:   n + 1,
					IssueType:    report.KindCodeBlockMissingLanguage,
					Message:      "code block has no language specified",
					SuggestedFix: "specify a language for the code block (e.g. ```python)",
				})
			}
			continue
		}
		if wasOpen {
			continue
		}
		if level, _, ok := markdown.ParseHeading(line); ok && level > c.rules.MaxHeadingDepth {
			issues = append(issues, report.ConsistencyIssue{
				FilePath:     doc.Path,
				LineNumber:   n + 1,
				IssueType:    report.KindHeadingLevelTooDeep,
				Message:      fmt.Sprintf("heading level too deep: %d", level),
				SuggestedFix: fmt.Sprintf("reduce the heading level to %d or less", c.rules.MaxHeadingDepth),
			})
		}
	}
	return issues
}

func (c *Checker) checkRequiredSections(doc *corpus.Document) []report.ConsistencyIssue {
	if len(c.rules.RequiredSections) == 0 {
		return nil
	}

	present := sets.New[string]()
	var fence markdown.Fence
	for _, line := range doc.Lines {
		wasOpen := fence.Open()
		if marker, _, _ := fence.Next(line); marker || wasOpen {
			continue
		}
		if level, text, ok := markdown.ParseHeading(strings.TrimRight(line, " \t\r")); ok && level == 2 {
			present.Add(text)
		}
	}

	var issues []report.ConsistencyIssue
	for _, section := range c.rules.RequiredSections {
		if present.Has(section) {
			continue
		}
		issues = append(issues, report.ConsistencyIssue{
			FilePath:     doc.Path,
			LineNumber:   0,
			IssueType:    report.KindMissingRequiredSection,
			Message:      fmt.Sprintf("missing required section: %s", section),
			SuggestedFix: fmt.Sprintf("add a '## %s' section", section),
		})
	}
	return issues
}

// checkSeriesNumbers collects the leading N of every `N-M` file name in the
// series, unreadable documents included, and flags more than one distinct N.
// Numbers are compared as digit strings so arbitrarily long ones still count.
func (c *Checker) checkSeriesNumbers(cor *corpus.Corpus) (report.ConsistencyIssue, bool) {
	numbers := sets.New[string]()
	collect := func(rel string) {
		m := seriesNumberPattern.FindStringSubmatch(path.Base(rel))
		if m == nil {
			return
		}
		n := strings.TrimLeft(m[1], "0")
		if n == "" {
			n = "0"
		}
		numbers.Add(n)
	}
	for _, doc := range cor.Documents {
		collect(doc.Path)
	}
	for _, p := range cor.FailedPaths() {
		if strings.HasSuffix(p, c.loader.Extension()) {
			collect(p)
		}
	}
	if numbers.Len() <= 1 {
		return report.ConsistencyIssue{}, false
	}
	return report.ConsistencyIssue{
		FilePath:     cor.Root,
		LineNumber:   0,
		IssueType:    report.KindSeriesNumberInconsistency,
		Message:      fmt.Sprintf("inconsistent series numbers: %v", numericOrder(numbers)),
		SuggestedFix: "use the same series number for every file",
	}, true
}

// numericOrder sorts decimal digit strings without leading zeros by value.
func numericOrder(numbers sets.Set[string]) []string {
	out := sets.Sorted(numbers)
	slices.SortStableFunc(out, func(a, b string) int {
		return len(a) - len(b)
	})
	return out
}
