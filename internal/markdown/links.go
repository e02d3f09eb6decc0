package markdown

import "regexp"

// inlineLinkPattern matches `[text](target)`; image links match too and are
// classified by their target like any other link.
var inlineLinkPattern = regexp.MustCompile(`\[([^\]]+)\]\(([^)]+)\)`)

// InlineLink is one `[text](target)` occurrence on a line.
type InlineLink struct {
	Text   string
	Target string
}

// ScanInlineLinks returns the inline links on a single line in occurrence order.
func ScanInlineLinks(line string) []InlineLink {
	matches := inlineLinkPattern.FindAllStringSubmatch(line, -1)
	if len(matches) == 0 {
		return nil
	}
	links := make([]InlineLink, 0, len(matches))
	for _, m := range matches {
		links = append(links, InlineLink{Text: m[1], Target: m[2]})
	}
	return links
}

// DocumentLinkScanner finds links whose target ends in a document extension.
type DocumentLinkScanner struct {
	pattern *regexp.Regexp
}

// NewDocumentLinkScanner builds a scanner for targets ending in ext (for example ".md").
func NewDocumentLinkScanner(ext string) *DocumentLinkScanner {
	return &DocumentLinkScanner{
		pattern: regexp.MustCompile(`\[([^\]]+)\]\(([^)]+` + regexp.QuoteMeta(ext) + `)\)`),
	}
}

// Scan returns every matching link in content in occurrence order.
func (s *DocumentLinkScanner) Scan(content string) []InlineLink {
	var links []InlineLink
	for _, m := range s.pattern.FindAllStringSubmatch(content, -1) {
		links = append(links, InlineLink{Text: m[1], Target: m[2]})
	}
	return links
}
