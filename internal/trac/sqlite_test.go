package trac_test

import (
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/trac2md/internal/foundation/errors"
	th "git.home.luguber.info/inful/trac2md/internal/testing"
	"git.home.luguber.info/inful/trac2md/internal/trac"
)

var (
	old    = time.Date(2003, 6, 1, 0, 0, 0, 0, time.UTC)
	recent = time.Date(2021, 3, 14, 9, 30, 0, 0, time.UTC)
)

func newStore(t *testing.T, env string) *trac.SQLiteStore {
	t.Helper()
	store, err := trac.OpenSQLiteStore(env, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteStore_GetPages(t *testing.T) {
	env := th.NewEnvironmentBuilder(t).
		WithPage("WikiStart", 1, old, "v1").
		WithPage("WikiStart", 2, recent, "= Welcome =").
		WithPage("Ancient", 1, old, "old page").
		WithPage("Dev/Setup", 1, recent, "setup").
		WithPage("TracGuide", 1, recent, "guide").
		Build()
	store := newStore(t, env)

	pages, err := store.GetPages(context.Background(), trac.DefaultSince, []string{"Trac*"})
	require.NoError(t, err)

	var names []string
	for _, p := range pages {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{"Dev/Setup", "WikiStart"}, names)
	assert.Equal(t, 2, pages[1].Version)
	assert.Equal(t, "= Welcome =", pages[1].Text)
	assert.Equal(t, recent, pages[1].Time)
	assert.Equal(t, "fixture", pages[1].Author)
}

func TestSQLiteStore_GetPage(t *testing.T) {
	env := th.NewEnvironmentBuilder(t).
		WithPage("Design", 1, old, "first").
		WithPage("Design", 3, recent, "third").
		Build()
	store := newStore(t, env)

	page, err := store.GetPage(context.Background(), "Design")
	require.NoError(t, err)
	assert.Equal(t, 3, page.Version)
	assert.Equal(t, "third", page.Text)

	_, err = store.GetPage(context.Background(), "Missing")
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, trac.ErrPageNotFound))
}

func TestSQLiteStore_GetAttachments(t *testing.T) {
	env := th.NewEnvironmentBuilder(t).
		WithPage("Design", 1, recent, "").
		WithPage("Other", 1, recent, "").
		WithAttachment("Design", "diagram.png", []byte("png")).
		WithAttachment("Design", "release notes.pdf", []byte("pdf")).
		WithAttachment("Other", "x.txt", []byte("x")).
		Build()
	store := newStore(t, env)

	got, err := store.GetAttachments(context.Background(), []string{"Design"})
	require.NoError(t, err)
	require.Len(t, got["Design"], 2)
	assert.NotContains(t, got, "Other")

	a := got["Design"][0]
	assert.Equal(t, "diagram.png", a.Filename)
	assert.Equal(t, "Design", a.Page)
	assert.Equal(t, int64(3), a.Size)
	data, err := os.ReadFile(a.Path)
	require.NoError(t, err)
	assert.Equal(t, "png", string(data))
}

func TestSQLiteStore_KnownNames(t *testing.T) {
	env := th.NewEnvironmentBuilder(t).
		WithPage("B", 1, old, "").
		WithPage("A", 1, recent, "").
		WithPage("A", 2, recent, "").
		WithTickets(12, 3).
		WithReports(1).
		Build()
	store := newStore(t, env)
	ctx := context.Background()

	names, err := store.PageNames(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, names)

	tickets, err := store.TicketIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{3, 12}, tickets)

	reports, err := store.ReportIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, reports)
}

func TestOpenSQLiteStore_MissingDatabase(t *testing.T) {
	_, err := trac.OpenSQLiteStore(filepath.Join(t.TempDir(), "nope"), nil)
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategorySource))
}
