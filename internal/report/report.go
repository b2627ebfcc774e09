// Package report collects the outcome of a conversion run.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"git.home.luguber.info/inful/trac2md/internal/convert"
	"git.home.luguber.info/inful/trac2md/internal/foundation/errors"
)

// Outcome of a whole run.
const (
	OutcomeSuccess  = "success"
	OutcomeWarning  = "warning"
	OutcomeFailed   = "failed"
	OutcomeCanceled = "canceled"
)

// PageResult is the outcome of one page.
type PageResult struct {
	Name     string            `json:"name"`
	Version  int               `json:"version"`
	Path     string            `json:"path,omitempty"` // relative to the output directory
	Warnings []convert.Warning `json:"warnings,omitempty"`
	Error    string            `json:"error,omitempty"`
	Category string            `json:"error_category,omitempty"`
	Copied   int               `json:"copied_attachments,omitempty"`
	Duration time.Duration     `json:"duration_ns"`
}

// Failed reports whether the page was not written.
func (p PageResult) Failed() bool {
	return p.Error != ""
}

// Report summarizes a run.
type Report struct {
	RunID    string       `json:"run_id"`
	Started  time.Time    `json:"started"`
	Finished time.Time    `json:"finished"`
	Since    time.Time    `json:"since,omitzero"`
	Page     string       `json:"page,omitempty"`
	Canceled bool         `json:"canceled,omitempty"`
	Commit   string       `json:"commit,omitempty"`
	Pages    []PageResult `json:"pages"`
}

// New starts a report for a run.
func New(runID string, started time.Time) *Report {
	return &Report{RunID: runID, Started: started, Pages: []PageResult{}}
}

// Add records the result of one page.
func (r *Report) Add(p PageResult) {
	r.Pages = append(r.Pages, p)
}

// Finish stamps the end of the run.
func (r *Report) Finish(t time.Time) {
	r.Finished = t
}

// Duration returns the run duration.
func (r *Report) Duration() time.Duration {
	if r.Finished.IsZero() {
		return 0
	}
	return r.Finished.Sub(r.Started)
}

// Converted counts written pages.
func (r *Report) Converted() int {
	n := 0
	for _, p := range r.Pages {
		if !p.Failed() {
			n++
		}
	}
	return n
}

// WithWarnings returns written pages that carry warnings.
func (r *Report) WithWarnings() []PageResult {
	var out []PageResult
	for _, p := range r.Pages {
		if !p.Failed() && len(p.Warnings) > 0 {
			out = append(out, p)
		}
	}
	return out
}

// Failed returns pages that were not written.
func (r *Report) Failed() []PageResult {
	var out []PageResult
	for _, p := range r.Pages {
		if p.Failed() {
			out = append(out, p)
		}
	}
	return out
}

// WarningCount counts warnings over all pages.
func (r *Report) WarningCount() int {
	n := 0
	for _, p := range r.Pages {
		n += len(p.Warnings)
	}
	return n
}

// WarningsByKind counts warnings per kind.
func (r *Report) WarningsByKind() map[convert.WarningKind]int {
	counts := map[convert.WarningKind]int{}
	for _, p := range r.Pages {
		for _, w := range p.Warnings {
			counts[w.Kind]++
		}
	}
	return counts
}

// Outcome classifies the run.
func (r *Report) Outcome() string {
	switch {
	case r.Canceled:
		return OutcomeCanceled
	case len(r.Failed()) > 0:
		return OutcomeFailed
	case r.WarningCount() > 0:
		return OutcomeWarning
	default:
		return OutcomeSuccess
	}
}

// WriteText renders the human readable summary.
func (r *Report) WriteText(w io.Writer) error {
	pw := &printer{w: w}
	withWarnings := r.WithWarnings()
	failed := r.Failed()

	pw.printf("Converted %d of %d pages (%d with warnings, %d failed) in %s\n",
		r.Converted(), len(r.Pages), len(withWarnings), len(failed), r.Duration().Round(time.Millisecond))
	if r.Canceled {
		pw.printf("Run was canceled before all pages were processed\n")
	}
	if r.Commit != "" {
		pw.printf("Committed %s\n", r.Commit)
	}

	if len(withWarnings) > 0 {
		pw.printf("\nPages with warnings:\n")
		for _, p := range withWarnings {
			pw.printf("  %s\n", p.Name)
			for _, warn := range p.Warnings {
				if warn.Stage != "" {
					pw.printf("    - %s [%s]: %s\n", warn.Kind, warn.Stage, warn.Detail)
				} else {
					pw.printf("    - %s: %s\n", warn.Kind, warn.Detail)
				}
			}
		}
	}

	if len(failed) > 0 {
		pw.printf("\nFailed pages:\n")
		for _, p := range failed {
			pw.printf("  %s: %s\n", p.Name, p.Error)
		}
	}

	if counts := r.WarningsByKind(); len(counts) > 0 {
		kinds := make([]string, 0, len(counts))
		for k := range counts {
			kinds = append(kinds, string(k))
		}
		sort.Strings(kinds)
		pw.printf("\nWarnings by kind:\n")
		for _, k := range kinds {
			pw.printf("  %-24s %d\n", k, counts[convert.WarningKind(k)])
		}
	}
	return pw.err
}

// WriteJSON writes the report to path.
func (r *Report) WriteJSON(path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return errors.InternalError("failed to marshal report").WithCause(err).Build()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to create report directory").
			WithContext("path", path).
			Build()
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to write report").
			WithContext("path", path).
			Build()
	}
	return nil
}

// printer keeps the first write error.
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}
