package convert

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/trac2md/internal/links"
	"git.home.luguber.info/inful/trac2md/internal/trac"
)

var testTemplates = links.Templates{
	Main: "https://trac.example.org/",
	Docs: "https://docs.example.org/",
	Code: "https://code.example.org/log/",
	Wiki: "https://trac.example.org/wiki/",
}

func testResolver() *links.Resolver {
	return links.NewResolver(links.Options{
		Templates: testTemplates,
		PageNames: []string{"WikiStart", "Dev/Setup", "Dev/Build"},
		TicketIDs: []int{12},
		ReportIDs: []int{3},
	})
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// applyTransforms runs fns on a fresh document and returns it together with
// its content after restoring the vault.
func applyTransforms(t *testing.T, page *trac.Page, fns ...func(*Document) error) (*Document, string) {
	t.Helper()
	d := NewDocument(page)
	for _, fn := range fns {
		require.NoError(t, fn(d))
	}
	return d, d.Vault().Restore(d.Content)
}

// runStage orders and applies the given transforms.
func runStage(t *testing.T, page *trac.Page, transforms []Transformer) (*Document, string) {
	t.Helper()
	ordered, err := BuildPipeline(transforms)
	require.NoError(t, err)
	fns := make([]func(*Document) error, 0, len(ordered))
	for _, tr := range ordered {
		fns = append(fns, tr.Transform)
	}
	return applyTransforms(t, page, fns...)
}

func newTestPipeline(t *testing.T, opts Options) *Pipeline {
	t.Helper()
	if opts.Resolver == nil {
		opts.Resolver = testResolver()
	}
	if opts.Logger == nil {
		opts.Logger = discardLogger()
	}
	p, err := NewPipeline(opts)
	require.NoError(t, err)
	return p
}

func convertText(t *testing.T, p *Pipeline, name, text string) *Result {
	t.Helper()
	res, err := p.Convert(&trac.Page{Name: name, Text: text})
	require.NoError(t, err)
	return res
}

func page(text string) *trac.Page {
	return &trac.Page{Name: "Test", Text: text}
}
