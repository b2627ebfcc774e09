package errors

import (
	"fmt"
	"log/slog"
	"strings"
	"testing"
)

func TestCLIErrorAdapter_ExitCodeFor(t *testing.T) {
	adapter := NewCLIErrorAdapter(false, slog.Default())

	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{name: "nil error", err: nil, expected: 0},
		{name: "validation error", err: ValidationError("since must be a date").Build(), expected: 2},
		{name: "unknown page", err: NotFoundError("page not found").Build(), expected: 3},
		{name: "config error", err: ConfigError("missing links.wiki").Build(), expected: 7},
		{name: "source error", err: SourceError("open trac.db").Build(), expected: 8},
		{name: "wrapped source error", err: fmt.Errorf("load: %w", SourceError("open trac.db").Build()), expected: 8},
		{name: "page write failure", err: ConversionError("2 pages failed").Build(), expected: 11},
		{name: "git commit failure", err: GitError("commit").Build(), expected: 12},
		{name: "internal error", err: InternalError("bug").Build(), expected: 10},
		{name: "unclassified error", err: &customError{msg: "unknown error"}, expected: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := adapter.ExitCodeFor(tt.err)
			if got != tt.expected {
				t.Errorf("ExitCodeFor() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestCLIErrorAdapter_FormatError(t *testing.T) {
	adapter := NewCLIErrorAdapter(false, slog.Default())

	tests := []struct {
		name     string
		err      error
		contains string
	}{
		{name: "nil error", err: nil, contains: ""},
		{
			name:     "internal error in non-verbose mode",
			err:      InternalError("internal issue").Build(),
			contains: "Internal error occurred (use -v for details)",
		},
		{
			name:     "config error shows message",
			err:      ConfigError("missing trac.environment").Build(),
			contains: "Error: missing trac.environment",
		},
		{
			name:     "conversion failure",
			err:      ConversionError("1 page failed").Build(),
			contains: "Conversion failed: 1 page failed",
		},
		{
			name:     "git failure shows message",
			err:      GitError("cannot commit").Build(),
			contains: "Run failed: cannot commit",
		},
		{
			name:     "unclassified error",
			err:      &customError{msg: "unknown error"},
			contains: "Error: unknown error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := adapter.FormatError(tt.err)
			if tt.contains == "" {
				if got != "" {
					t.Errorf("FormatError() = %q, want empty string", got)
				}
				return
			}
			if !strings.Contains(got, tt.contains) {
				t.Errorf("FormatError() = %q, want to contain %q", got, tt.contains)
			}
		})
	}
}

func TestCLIErrorAdapter_VerboseShowsFullError(t *testing.T) {
	adapter := NewCLIErrorAdapter(true, slog.Default())
	err := InternalError("internal issue").Build()

	got := adapter.FormatError(err)
	if got != err.Error() {
		t.Errorf("FormatError() = %q, want %q", got, err.Error())
	}
}

// customError is a test helper for unclassified errors
type customError struct {
	msg string
}

func (e *customError) Error() string {
	return e.msg
}
