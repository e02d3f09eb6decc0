package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyRunID      = "run_id"
	KeySeries     = "series"
	KeyDocument   = "document"
	KeyCheck      = "check"
	KeyIssues     = "issues"
	KeyDocuments  = "documents"
	KeyDurationMS = "duration_ms"
	KeyPath       = "path"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func RunID(id string) slog.Attr       { return slog.String(KeyRunID, id) }
func Series(p string) slog.Attr       { return slog.String(KeySeries, p) }
func Document(p string) slog.Attr     { return slog.String(KeyDocument, p) }
func Check(name string) slog.Attr     { return slog.String(KeyCheck, name) }
func Issues(n int) slog.Attr          { return slog.Int(KeyIssues, n) }
func Documents(n int) slog.Attr       { return slog.Int(KeyDocuments, n) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
