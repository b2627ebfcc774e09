package trac

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"git.home.luguber.info/inful/trac2md/internal/foundation/errors"
	"git.home.luguber.info/inful/trac2md/internal/logfields"
)

// SQLiteStore implements Store over an environment's db/trac.db.
type SQLiteStore struct {
	env    string
	db     *sql.DB
	logger *slog.Logger
}

// latestPagesQuery selects each page's newest row.
const latestPagesQuery = `
	SELECT w.name, w.version, w.time, COALESCE(w.author, ''), COALESCE(w.text, ''), COALESCE(w.comment, '')
	FROM wiki w
	JOIN (SELECT name, MAX(version) AS version FROM wiki GROUP BY name) latest
	  ON w.name = latest.name AND w.version = latest.version`

// OpenSQLiteStore opens the Trac database of env read-only.
func OpenSQLiteStore(env string, logger *slog.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	dbPath := DatabasePath(env)
	if _, err := os.Stat(dbPath); err != nil {
		return nil, errors.SourceError("trac database not found").
			WithCause(err).
			WithContext("path", dbPath).
			Build()
	}

	db, err := sql.Open("sqlite", "file:"+filepath.ToSlash(dbPath)+"?mode=ro&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, errors.SourceError("open trac database").
			WithCause(err).
			WithContext("path", dbPath).
			Build()
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, errors.SourceError("open trac database").
			WithCause(err).
			WithContext("path", dbPath).
			Build()
	}

	logger.Debug("Opened trac database", logfields.Environment(env), logfields.Path(dbPath))
	return &SQLiteStore{env: env, db: db, logger: logger}, nil
}

// DatabasePath returns the location of trac.db inside env.
func DatabasePath(env string) string {
	return filepath.Join(env, "db", "trac.db")
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// GetPage returns the latest version of name.
func (s *SQLiteStore) GetPage(ctx context.Context, name string) (*Page, error) {
	rows, err := s.db.QueryContext(ctx, latestPagesQuery+` WHERE w.name = ?`, name)
	if err != nil {
		return nil, sourceError(err, "query wiki page")
	}
	pages, err := scanPages(rows)
	if err != nil {
		return nil, sourceError(err, "read wiki page")
	}
	if len(pages) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrPageNotFound, name)
	}
	return pages[0], nil
}

// GetPages returns the latest version of every page changed after since.
func (s *SQLiteStore) GetPages(ctx context.Context, since time.Time, excluded []string) ([]*Page, error) {
	rows, err := s.db.QueryContext(ctx, latestPagesQuery+` WHERE w.time > ? ORDER BY w.name`, ToTracTime(since))
	if err != nil {
		return nil, sourceError(err, "query wiki pages")
	}
	pages, err := scanPages(rows)
	if err != nil {
		return nil, sourceError(err, "read wiki pages")
	}
	s.logger.Debug("Selected wiki pages", logfields.Count(len(pages)), slog.Time("since", since))
	return FilterIgnored(pages, excluded, s.logger), nil
}

func scanPages(rows *sql.Rows) ([]*Page, error) {
	defer func() { _ = rows.Close() }()

	var pages []*Page
	for rows.Next() {
		var (
			p  Page
			ts int64
		)
		if err := rows.Scan(&p.Name, &p.Version, &ts, &p.Author, &p.Text, &p.Comment); err != nil {
			return nil, err
		}
		p.Time = FromTracTime(ts)
		pages = append(pages, &p)
	}
	return pages, rows.Err()
}

// GetAttachments returns wiki attachments for the given pages. Pages without
// attachments are absent from the result.
func (s *SQLiteStore) GetAttachments(ctx context.Context, pages []string) (map[string][]Attachment, error) {
	wanted := make(map[string]bool, len(pages))
	for _, p := range pages {
		wanted[p] = true
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, filename, COALESCE(size, 0), COALESCE(time, 0), COALESCE(description, '')
		FROM attachment
		WHERE type = 'wiki'
		ORDER BY id, filename`)
	if err != nil {
		return nil, sourceError(err, "query attachments")
	}
	defer func() { _ = rows.Close() }()

	result := make(map[string][]Attachment)
	for rows.Next() {
		var (
			a  Attachment
			ts int64
		)
		if err := rows.Scan(&a.Page, &a.Filename, &a.Size, &ts, &a.Description); err != nil {
			return nil, sourceError(err, "read attachments")
		}
		if !wanted[a.Page] {
			continue
		}
		a.Time = FromTracTime(ts)
		a.Path = AttachmentPath(s.env, a.Page, a.Filename)
		result[a.Page] = append(result[a.Page], a)
	}
	if err := rows.Err(); err != nil {
		return nil, sourceError(err, "read attachments")
	}
	return result, nil
}

// PageNames returns every wiki page name regardless of age.
func (s *SQLiteStore) PageNames(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT name FROM wiki ORDER BY name`)
	if err != nil {
		return nil, sourceError(err, "query page names")
	}
	defer func() { _ = rows.Close() }()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, sourceError(err, "read page names")
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// TicketIDs returns all ticket numbers.
func (s *SQLiteStore) TicketIDs(ctx context.Context) ([]int, error) {
	return s.ids(ctx, "ticket")
}

// ReportIDs returns all report numbers.
func (s *SQLiteStore) ReportIDs(ctx context.Context) ([]int, error) {
	return s.ids(ctx, "report")
}

func (s *SQLiteStore) ids(ctx context.Context, table string) ([]int, error) {
	// table is one of two constants above.
	rows, err := s.db.QueryContext(ctx, "SELECT id FROM "+table+" ORDER BY id")
	if err != nil {
		return nil, sourceError(err, "query "+table+" ids")
	}
	defer func() { _ = rows.Close() }()

	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, sourceError(err, "read "+table+" ids")
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func sourceError(err error, op string) error {
	if stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return errors.SourceError(op).WithCause(err).Build()
}
