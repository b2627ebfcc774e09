package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyPage        = "page"
	KeyVersion     = "page_version"
	KeyStage       = "stage"
	KeyTransform   = "transform"
	KeyAttachment  = "attachment"
	KeyKind        = "kind"
	KeyPattern     = "pattern"
	KeyCount       = "count"
	KeyPath        = "path"
	KeyEnvironment = "environment"
	KeyDurationMS  = "duration_ms"
	KeyRunID       = "run_id"
	KeyError       = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func Page(name string) slog.Attr        { return slog.String(KeyPage, name) }
func PageVersion(v int) slog.Attr       { return slog.Int(KeyVersion, v) }
func Stage(name string) slog.Attr       { return slog.String(KeyStage, name) }
func Transform(name string) slog.Attr   { return slog.String(KeyTransform, name) }
func Attachment(name string) slog.Attr  { return slog.String(KeyAttachment, name) }
func Kind(k string) slog.Attr           { return slog.String(KeyKind, k) }
func Pattern(p string) slog.Attr        { return slog.String(KeyPattern, p) }
func Count(n int) slog.Attr             { return slog.Int(KeyCount, n) }
func Path(p string) slog.Attr           { return slog.String(KeyPath, p) }
func Environment(p string) slog.Attr    { return slog.String(KeyEnvironment, p) }
func DurationMS(ms float64) slog.Attr   { return slog.Float64(KeyDurationMS, ms) }
func RunID(id string) slog.Attr         { return slog.String(KeyRunID, id) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
