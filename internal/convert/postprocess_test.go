package convert

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollapseCodeDelimiters(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"doubled", "use ``x`` here", "use `x` here"},
		{"inside fence", "```\n``x``\n```", "```\n``x``\n```"},
		{"needed double", "`` a`b ``", "`` a`b ``"},
		{"single", "`x`", "`x`"},
		{"no code", "plain text", "plain text"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, collapseCodeDelimiters(tt.input))
		})
	}
}

// Postprocessing is a repair pass: Markdown without artifacts passes through.
func TestPostprocess_PureRepair(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"document", "# Title\n\n- item `code`\n\n```go\nx := 1\n```\n\n| a | b |\n| --- | --- |\n"},
		{"hard break", "line one  \nline two\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, got := runStage(t, page(tt.input), postprocessTransforms())
			assert.Equal(t, tt.input, got)
		})
	}
}

func TestPostprocess_ProtectedCodeIsNotCollapsed(t *testing.T) {
	_, got := runStage(t, page("run {{{x``y}}} now"), append(protectTransforms(Options{}), postprocessTransforms()...))
	assert.Equal(t, "run ``` x``y ``` now", got)
}

func TestFinishTables(t *testing.T) {
	d := NewDocument(page(""))
	code := d.Protect("`a|b`")
	link := d.Protect("[Home](https://trac.example.org/wiki/WikiStart)")
	sep := string(cellSeparator)
	d.Content = "intro\n\n" +
		sep + " " + code + " " + sep + " " + link + " " + sep + "\n" +
		"| --- | --- |\n" +
		sep + " x|y " + sep + "  " + sep + "\n"

	require.NoError(t, finishTables(d))
	require.NoError(t, restoreProtected(d))
	assert.Equal(t, "intro\n\n"+
		"| `a\\|b` | [Home](https://trac.example.org/wiki/WikiStart) |\n"+
		"| --- | --- |\n"+
		"| x\\|y |  |\n", d.Content)
}
