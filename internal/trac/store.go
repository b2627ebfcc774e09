package trac

import (
	"context"
	"errors"
	"log/slog"
	"path"
	"strings"
	"time"

	"git.home.luguber.info/inful/trac2md/internal/logfields"
)

// ErrPageNotFound is returned by GetPage for unknown page names.
var ErrPageNotFound = errors.New("wiki page not found")

// Store reads wiki content from a Trac environment.
type Store interface {
	// GetPage returns the latest version of a single page.
	GetPage(ctx context.Context, name string) (*Page, error)
	// GetPages returns the latest version of every page modified after since,
	// ordered by name, minus pages matching any excluded pattern.
	GetPages(ctx context.Context, since time.Time, excluded []string) ([]*Page, error)
	// GetAttachments returns the attachments of the named pages keyed by page name.
	GetAttachments(ctx context.Context, pages []string) (map[string][]Attachment, error)

	PageNames(ctx context.Context) ([]string, error)
	TicketIDs(ctx context.Context) ([]int, error)
	ReportIDs(ctx context.Context) ([]int, error)

	Close() error
}

// slash stands in for "/" so that "*" in ignore patterns also spans
// hierarchy levels, as shell fnmatch does for page names.
const slash = "∕"

// MatchPattern reports whether name matches the shell-style pattern.
func MatchPattern(pattern, name string) bool {
	ok, err := path.Match(strings.ReplaceAll(pattern, "/", slash), strings.ReplaceAll(name, "/", slash))
	return err == nil && ok
}

// FilterIgnored removes pages matching any pattern, logging which pages each
// pattern excluded.
func FilterIgnored(pages []*Page, patterns []string, logger *slog.Logger) []*Page {
	if logger == nil {
		logger = slog.Default()
	}
	for _, pattern := range patterns {
		kept := pages[:0:0]
		var ignored []string
		for _, p := range pages {
			if MatchPattern(pattern, p.Name) {
				ignored = append(ignored, p.Name)
				continue
			}
			kept = append(kept, p)
		}
		if len(ignored) > 0 {
			logger.Info("Ignoring wiki pages",
				logfields.Pattern(pattern),
				logfields.Count(len(ignored)),
				slog.Any("pages", ignored))
		}
		pages = kept
	}
	return pages
}
