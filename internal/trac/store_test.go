package trac

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchPattern(t *testing.T) {
	tests := []struct {
		pattern string
		name    string
		want    bool
	}{
		{"Trac*", "TracGuide", true},
		{"Trac*", "WikiStart", false},
		{"Dev*", "Dev/Setup/Deep", true},
		{"Dev/*", "Dev/Setup", true},
		{"WikiStart", "WikiStart", true},
		{"Wiki?tart", "WikiStart", true},
		{"[ab]*", "api", true},
		{"Bad[", "Bad[", false},
	}
	for _, tt := range tests {
		t.Run(tt.pattern+"_"+tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MatchPattern(tt.pattern, tt.name))
		})
	}
}

func TestFilterIgnored(t *testing.T) {
	pages := []*Page{{Name: "TracGuide"}, {Name: "WikiStart"}, {Name: "Design"}, {Name: "TracIni"}}

	kept := FilterIgnored(pages, []string{"Trac*", "WikiStart"}, nil)

	var names []string
	for _, p := range kept {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{"Design"}, names)
	assert.Len(t, pages, 4, "input slice must not be modified")
	assert.Equal(t, "TracGuide", pages[0].Name)
}

func TestPage_FindAttachment(t *testing.T) {
	p := &Page{Name: "Design", Attachments: []Attachment{{Filename: "a.png"}, {Filename: "b.pdf"}}}
	a, ok := p.FindAttachment("b.pdf")
	assert.True(t, ok)
	assert.Equal(t, "b.pdf", a.Filename)
	_, ok = p.FindAttachment("c.gif")
	assert.False(t, ok)
}
