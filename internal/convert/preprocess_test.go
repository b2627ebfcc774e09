package convert

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeLineEndings(t *testing.T) {
	assert.Equal(t, "a\nb\nc", normalizeLineEndings("a\r\nb\rc"))
}

func TestStripWrappingQuotes(t *testing.T) {
	assert.Equal(t, "text\n", stripWrappingQuotes("\"text\"\n"))
	assert.Equal(t, `say "hi"`, stripWrappingQuotes(`say "hi"`))
	assert.Equal(t, `"`, stripWrappingQuotes(`"`))
}

func TestMacroStripper(t *testing.T) {
	s := newMacroStripper([]string{"PageOutline", "TicketQuery"})

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"own line", "[[PageOutline]]\n= Title =", "= Title ="},
		{"with arguments", "x [[TicketQuery(status=new)]] y", "x  y"},
		{"indented line", "  [[PageOutline(2-3)]]\ntext", "text"},
		{"other macros kept", "[[RecentChanges]]", "[[RecentChanges]]"},
		{"inside code", "{{{\n[[PageOutline]]\n}}}", "{{{\n[[PageOutline]]\n}}}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.strip(tt.input))
		})
	}
}

func TestMacroStripper_NoNames(t *testing.T) {
	assert.Equal(t, "[[TOC]]", newMacroStripper(nil).strip("[[TOC]]"))
}

func TestConvertLineBreaks(t *testing.T) {
	assert.Equal(t, "one\ntwo", convertLineBreaks("one[[BR]]two"))
	assert.Equal(t, "|| a<br>b ||", convertLineBreaks("|| a[[br]]b ||"))
	assert.Equal(t, "{{{[[BR]]}}}", convertLineBreaks("{{{[[BR]]}}}"))
}
