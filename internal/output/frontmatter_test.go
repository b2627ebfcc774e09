package output

import (
	"strings"
	"testing"
	"time"

	"github.com/inful/mdfp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/trac2md/internal/trac"
)

func samplePage() *trac.Page {
	return &trac.Page{
		Name:    "Dev/Build",
		Version: 7,
		Author:  "bob",
		Time:    time.Date(2020, time.January, 2, 3, 4, 5, 0, time.FixedZone("CET", 3600)),
	}
}

func splitFrontMatter(t *testing.T, content string) (map[string]any, string) {
	t.Helper()
	require.True(t, strings.HasPrefix(content, "---\n"))
	rest := strings.TrimPrefix(content, "---\n")
	idx := strings.Index(rest, "---\n")
	require.GreaterOrEqual(t, idx, 0)
	var fields map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(rest[:idx]), &fields))
	return fields, rest[idx+len("---\n"):]
}

func TestWithPageFrontMatter_Fields(t *testing.T) {
	content, err := WithPageFrontMatter(samplePage(), "Hello\n")
	require.NoError(t, err)

	fields, body := splitFrontMatter(t, content)
	assert.Equal(t, "Hello\n", body)
	assert.Equal(t, "Build", fields["title"])
	assert.Equal(t, "Dev/Build", fields["trac_page"])
	assert.Equal(t, 7, fields["trac_version"])
	assert.Equal(t, "bob", fields["author"])
	assert.Equal(t, "2020-01-02T02:04:05Z", fields["date"])
	assert.Equal(t, PageUID("Dev/Build"), fields["uid"])
	assert.NotEmpty(t, fields[mdfp.FingerprintField])
}

func TestWithPageFrontMatter_SortedKeys(t *testing.T) {
	content, err := WithPageFrontMatter(samplePage(), "x")
	require.NoError(t, err)

	var keys []string
	for _, line := range strings.Split(content, "\n")[1:] {
		if line == "---" {
			break
		}
		keys = append(keys, strings.SplitN(line, ":", 2)[0])
	}
	assert.Equal(t, []string{"author", "date", "fingerprint", "title", "trac_page", "trac_version", "uid"}, keys)
}

func TestWithPageFrontMatter_Deterministic(t *testing.T) {
	a, err := WithPageFrontMatter(samplePage(), "same body\n")
	require.NoError(t, err)
	b, err := WithPageFrontMatter(samplePage(), "same body\n")
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestFingerprint_TracksBody(t *testing.T) {
	fields := FrontMatter(samplePage())
	first, err := Fingerprint(fields, "one")
	require.NoError(t, err)
	second, err := Fingerprint(fields, "two")
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}

func TestFingerprint_IgnoresUID(t *testing.T) {
	fields := FrontMatter(samplePage())
	before, err := Fingerprint(fields, "body")
	require.NoError(t, err)

	fields["uid"] = "something-else"
	after, err := Fingerprint(fields, "body")
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestPageUID_Stable(t *testing.T) {
	assert.Equal(t, PageUID("WikiStart"), PageUID("WikiStart"))
	assert.NotEqual(t, PageUID("WikiStart"), PageUID("Dev/Setup"))
}

func TestFrontMatter_OmitsEmptyFields(t *testing.T) {
	fields := FrontMatter(&trac.Page{Name: "Solo", Version: 1})
	_, hasAuthor := fields["author"]
	_, hasDate := fields["date"]
	assert.False(t, hasAuthor)
	assert.False(t, hasDate)
}
