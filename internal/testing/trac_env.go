package testing

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"git.home.luguber.info/inful/trac2md/internal/trac"
)

// tracSchema is the subset of the Trac 1.x schema read by trac2md.
const tracSchema = `
CREATE TABLE wiki (
	name text, version integer, time integer, author text, ipnr text,
	text text, comment text, readonly integer,
	UNIQUE (name, version)
);
CREATE TABLE attachment (
	type text, id text, filename text, size integer, time integer,
	description text, author text, ipnr text,
	UNIQUE (type, id, filename)
);
CREATE TABLE ticket (id integer PRIMARY KEY, summary text);
CREATE TABLE report (id integer PRIMARY KEY, title text);
`

// EnvironmentBuilder assembles a Trac environment in a temporary directory.
type EnvironmentBuilder struct {
	t   *testing.T
	dir string
	db  *sql.DB
}

// NewEnvironmentBuilder creates an empty environment with an initialized trac.db.
func NewEnvironmentBuilder(t *testing.T) *EnvironmentBuilder {
	t.Helper()
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "db"), testDirPermissions); err != nil {
		t.Fatalf("create db dir: %v", err)
	}
	db, err := sql.Open("sqlite", trac.DatabasePath(dir))
	if err != nil {
		t.Fatalf("open fixture database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if _, err := db.Exec(tracSchema); err != nil {
		t.Fatalf("create fixture schema: %v", err)
	}
	return &EnvironmentBuilder{t: t, dir: dir, db: db}
}

// WithPage inserts one version of a wiki page.
func (b *EnvironmentBuilder) WithPage(name string, version int, modified time.Time, text string) *EnvironmentBuilder {
	b.t.Helper()
	b.exec(`INSERT INTO wiki (name, version, time, author, text, comment) VALUES (?, ?, ?, 'fixture', ?, '')`,
		name, version, trac.ToTracTime(modified), text)
	return b
}

// WithAttachment records an attachment and stores its content at the hashed path.
func (b *EnvironmentBuilder) WithAttachment(page, filename string, content []byte) *EnvironmentBuilder {
	b.t.Helper()
	b.exec(`INSERT INTO attachment (type, id, filename, size, time, description) VALUES ('wiki', ?, ?, ?, ?, '')`,
		page, filename, len(content), trac.ToTracTime(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)))
	path := trac.AttachmentPath(b.dir, page, filename)
	if err := os.MkdirAll(filepath.Dir(path), testDirPermissions); err != nil {
		b.t.Fatalf("create attachment dir: %v", err)
	}
	if err := os.WriteFile(path, content, testFilePermissions); err != nil {
		b.t.Fatalf("write attachment: %v", err)
	}
	return b
}

// WithAttachmentRecord records an attachment without storing a file.
func (b *EnvironmentBuilder) WithAttachmentRecord(page, filename string) *EnvironmentBuilder {
	b.t.Helper()
	b.exec(`INSERT INTO attachment (type, id, filename, size, time, description) VALUES ('wiki', ?, ?, 0, 0, '')`,
		page, filename)
	return b
}

// WithTickets inserts ticket rows.
func (b *EnvironmentBuilder) WithTickets(ids ...int) *EnvironmentBuilder {
	b.t.Helper()
	for _, id := range ids {
		b.exec(`INSERT INTO ticket (id, summary) VALUES (?, 'fixture')`, id)
	}
	return b
}

// WithReports inserts report rows.
func (b *EnvironmentBuilder) WithReports(ids ...int) *EnvironmentBuilder {
	b.t.Helper()
	for _, id := range ids {
		b.exec(`INSERT INTO report (id, title) VALUES (?, 'fixture')`, id)
	}
	return b
}

// Build returns the environment directory.
func (b *EnvironmentBuilder) Build() string {
	b.t.Helper()
	return b.dir
}

func (b *EnvironmentBuilder) exec(query string, args ...any) {
	b.t.Helper()
	if _, err := b.db.Exec(query, args...); err != nil {
		b.t.Fatalf("fixture insert: %v", err)
	}
}
