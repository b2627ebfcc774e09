package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractLinks_InlineLink(t *testing.T) {
	links, err := ExtractLinks([]byte("See [API](api.md) for details."))
	require.NoError(t, err)
	require.Len(t, links, 1)
	require.Equal(t, LinkKindInline, links[0].Kind)
	require.Equal(t, "api.md", links[0].Destination)
}

func TestExtractLinks_ImageLink(t *testing.T) {
	links, err := ExtractLinks([]byte("![Diagram](Design/diagram.png)"))
	require.NoError(t, err)
	require.Len(t, links, 1)
	require.Equal(t, LinkKindImage, links[0].Kind)
	require.Equal(t, "Design/diagram.png", links[0].Destination)
}

func TestExtractLinks_AutoLink(t *testing.T) {
	links, err := ExtractLinks([]byte("<https://example.com/path>"))
	require.NoError(t, err)
	require.Len(t, links, 1)
	require.Equal(t, LinkKindAuto, links[0].Kind)
	require.Equal(t, "https://example.com/path", links[0].Destination)
}

func TestExtractLinks_InsideTable(t *testing.T) {
	links, err := ExtractLinks([]byte("| a | b |\n| --- | --- |\n| [x](x.md) | y |\n"))
	require.NoError(t, err)
	require.Len(t, links, 1)
	require.Equal(t, "x.md", links[0].Destination)
}

func TestExtractLinks_SkipsInlineCodeAndCodeBlocks(t *testing.T) {
	src := []byte("" +
		"Inline code: `[Link](./ignored-inline.md)`\n" +
		"\n" +
		"```\n" +
		"[Link](./ignored-fence.md)\n" +
		"```\n" +
		"\n" +
		"Real: [OK](./real.md)\n")

	links, err := ExtractLinks(src)
	require.NoError(t, err)
	require.Len(t, links, 1)
	require.Equal(t, "./real.md", links[0].Destination)
}

func TestDanglingWikiLinks(t *testing.T) {
	const base = "https://trac.example.org/wiki/"
	links := []Link{
		{Kind: LinkKindInline, Destination: base + "WikiStart"},
		{Kind: LinkKindInline, Destination: base + "Old%20Page#intro"},
		{Kind: LinkKindInline, Destination: base + "Old%20Page"},
		{Kind: LinkKindInline, Destination: base + "Internal/Notes"},
		{Kind: LinkKindInline, Destination: "https://trac.example.org/ticket/1"},
		{Kind: LinkKindImage, Destination: base + "Missing"},
	}
	exists := func(name string) bool { return name == "WikiStart" }

	assert.Equal(t, []string{"Internal/Notes", "Old Page"}, DanglingWikiLinks(links, base, exists))
	assert.Nil(t, DanglingWikiLinks(links, "", exists))
}
