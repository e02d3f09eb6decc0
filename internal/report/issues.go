// Package report holds the issue records produced by the continuity checks and
// the aggregate report written at the end of a run.
package report

// IssueKind identifies the rule that produced an issue.
type IssueKind string

// Link issue kinds.
const (
	KindBrokenAnchor       IssueKind = "broken_anchor"
	KindInvalidURL         IssueKind = "invalid_url"
	KindBrokenInternalLink IssueKind = "broken_internal_link"
)

// Consistency issue kinds.
const (
	KindTerminologyInconsistency  IssueKind = "terminology_inconsistency"
	KindHeadingLevelTooDeep       IssueKind = "heading_level_too_deep"
	KindCodeBlockMissingLanguage  IssueKind = "code_block_missing_language"
	KindMissingRequiredSection    IssueKind = "missing_required_section"
	KindSeriesNumberInconsistency IssueKind = "series_number_inconsistency"
)

// Dependency issue kinds.
const (
	KindCircularDependency IssueKind = "circular_dependency"
	KindMissingDependency  IssueKind = "missing_dependency"
)

// LinkIssue is a problem with a single inline link.
type LinkIssue struct {
	FilePath   string    `json:"file_path"`
	LineNumber int       `json:"line_number"`
	LinkText   string    `json:"link_text"`
	LinkURL    string    `json:"link_url"`
	IssueType  IssueKind `json:"issue_type"`
	Message    string    `json:"message"`
}

// ConsistencyIssue is a terminology, style or structure problem.
// LineNumber is 0 for document-wide and series-wide issues.
type ConsistencyIssue struct {
	FilePath     string    `json:"file_path"`
	LineNumber   int       `json:"line_number"`
	IssueType    IssueKind `json:"issue_type"`
	Message      string    `json:"message"`
	SuggestedFix string    `json:"suggested_fix"`
}

// DependencyIssue is a problem in the document dependency graph.
type DependencyIssue struct {
	FilePath          string    `json:"file_path"`
	MissingDependency string    `json:"missing_dependency"`
	IssueType         IssueKind `json:"issue_type"`
	Message           string    `json:"message"`
}

// UnreadableDocument is a document skipped because it could not be read.
type UnreadableDocument struct {
	FilePath string `json:"file_path"`
	Error    string `json:"error"`
}

// Located is implemented by every issue record.
type Located interface {
	Path() string
	Kind() IssueKind
	Line() int
	Text() string
}

func (i LinkIssue) Path() string    { return i.FilePath }
func (i LinkIssue) Kind() IssueKind { return i.IssueType }
func (i LinkIssue) Line() int       { return i.LineNumber }
func (i LinkIssue) Text() string    { return i.Message }

func (i ConsistencyIssue) Path() string    { return i.FilePath }
func (i ConsistencyIssue) Kind() IssueKind { return i.IssueType }
func (i ConsistencyIssue) Line() int       { return i.LineNumber }
func (i ConsistencyIssue) Text() string    { return i.Message }

func (i DependencyIssue) Path() string    { return i.FilePath }
func (i DependencyIssue) Kind() IssueKind { return i.IssueType }
func (i DependencyIssue) Line() int       { return 0 }
func (i DependencyIssue) Text() string    { return i.Message }
