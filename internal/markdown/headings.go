package markdown

import (
	"regexp"
	"strings"
)

var (
	headingLinePattern = regexp.MustCompile(`^(#+)\s+(.+)$`)
	headingsPattern    = regexp.MustCompile(`(?m)^#+\s+(.+)$`)

	// Letters and digits in any script count as word characters, so Hangul
	// headings keep their text in the slug. Unicode separators such as NBSP
	// and U+3000 are whitespace.
	slugStripPattern    = regexp.MustCompile(`[^\p{L}\p{N}_\s\p{Z}-]`)
	slugCollapsePattern = regexp.MustCompile(`[-\s\p{Z}]+`)

	fenceLanguagePattern = regexp.MustCompile("^\\s*```[\\p{L}\\p{N}_]")
)

// ParseHeading reports the marker depth and text of a heading line.
// Depth is not capped, so `#######` lines are reported with level 7.
func ParseHeading(line string) (level int, text string, ok bool) {
	m := headingLinePattern.FindStringSubmatch(line)
	if m == nil {
		return 0, "", false
	}
	return len(m[1]), m[2], true
}

// Headings returns the text of every heading line in content.
func Headings(content string) []string {
	matches := headingsPattern.FindAllStringSubmatch(content, -1)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, m[1])
	}
	return out
}

// Slug converts heading text into its anchor form: lowercased, characters
// outside word/space/hyphen dropped, whitespace and hyphen runs collapsed to
// one hyphen, leading and trailing hyphens trimmed.
func Slug(heading string) string {
	s := slugStripPattern.ReplaceAllString(strings.ToLower(heading), "")
	s = slugCollapsePattern.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// Fence tracks fenced code blocks across consecutive lines.
type Fence struct {
	open bool
}

// Next consumes a line. It reports whether the line is a backtick fence marker
// and, for an opening marker, whether a language token follows it.
func (f *Fence) Next(line string) (marker, opening, hasLanguage bool) {
	if !strings.HasPrefix(strings.TrimLeft(line, " \t"), "```") {
		return false, false, false
	}
	if f.open {
		f.open = false
		return true, false, false
	}
	f.open = true
	return true, true, fenceLanguagePattern.MatchString(line)
}

// Open reports whether the tracker is inside a fenced block.
func (f *Fence) Open() bool { return f.open }
