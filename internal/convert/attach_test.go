package convert

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/trac2md/internal/trac"
)

func designPage(text string) *trac.Page {
	return &trac.Page{
		Name: "Design",
		Text: text,
		Attachments: []trac.Attachment{
			{Filename: "logo.png", Page: "Design", Path: "/env/files/logo"},
			{Filename: "data sheet.pdf", Page: "Design", Path: "/env/files/data"},
			{Filename: "extra.txt", Page: "Design", Path: "/env/files/extra"},
		},
	}
}

func attachmentsTransform(copyUnreferenced bool) func(*Document) error {
	a := &attachments{resolver: testResolver(), copyUnreferenced: copyUnreferenced}
	return a.transform
}

func TestAttachments_Rewrite(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"image with size", "[[Image(logo.png, 50%)]]", "![logo.png](Design/logo.png)"},
		{"bracketed with label", `[attachment:"data sheet.pdf" the sheet]`, "[the sheet](Design/datasheet.pdf)"},
		{"bare", "see attachment:logo.png.", "see [logo.png](Design/logo.png)."},
		{"double bracket", "[[attachment:logo.png|Logo]]", "[Logo](Design/logo.png)"},
		{"other page image", "[[Image(wiki:Other/Page:pic.png)]]", "![pic.png](Other/Page/pic.png)"},
		{"other page link", "[attachment:pic.png:wiki:Other label]", "[label](Other/pic.png)"},
		{"ticket image", "[[Image(ticket:5:shot.png)]]", "![shot.png](https://trac.example.org/raw-attachment/ticket/5/shot.png)"},
		{"external image", "[[Image(https://example.org/a.png)]]", "![a.png](https://example.org/a.png)"},
		{"source image", "[[Image(source:trunk/a.png)]]", "![a.png](https://trac.example.org/browser/trunk/a.png)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, got := applyTransforms(t, designPage(tt.input), attachmentsTransform(false))
			assert.Equal(t, tt.want, got)
			assert.Empty(t, d.Warnings)
		})
	}
}

func TestAttachments_QueuesCopies(t *testing.T) {
	d, _ := applyTransforms(t, designPage("[[Image(logo.png)]] [attachment:logo.png again] [attachment:\"data sheet.pdf\"]"),
		attachmentsTransform(false))

	assert.Equal(t, []CopyRequest{
		{Filename: "logo.png", Source: "/env/files/logo", Target: "Design/logo.png"},
		{Filename: "data sheet.pdf", Source: "/env/files/data", Target: "Design/datasheet.pdf"},
	}, d.Copies)
}

func TestAttachments_CopyUnreferenced(t *testing.T) {
	d, _ := applyTransforms(t, designPage("[[Image(logo.png)]]"), attachmentsTransform(true))

	targets := make([]string, len(d.Copies))
	for i, c := range d.Copies {
		targets[i] = c.Target
	}
	assert.Equal(t, []string{"Design/logo.png", "Design/datasheet.pdf", "Design/extra.txt"}, targets)
}

func TestAttachments_MissingRecord(t *testing.T) {
	p := &trac.Page{Name: "Design", Text: "[[Image(diagram.png)]]"}
	d, got := applyTransforms(t, p, attachmentsTransform(true))

	assert.Equal(t, "![diagram.png](Design/diagram.png)", got)
	require.Len(t, d.Warnings, 1)
	assert.Equal(t, WarnMissingAttachment, d.Warnings[0].Kind)
	assert.Empty(t, d.Copies)
}

func TestAttachments_NestedPage(t *testing.T) {
	p := &trac.Page{
		Name:        "Dev/Setup",
		Text:        "[[Image(diagram.png)]] [[Image(wiki:Dev/Build:pic.png)]]",
		Attachments: []trac.Attachment{{Filename: "diagram.png", Page: "Dev/Setup", Path: "/env/d"}},
	}
	d, got := applyTransforms(t, p, attachmentsTransform(false))

	assert.Equal(t, "![diagram.png](Setup/diagram.png) ![pic.png](Build/pic.png)", got)
	require.Len(t, d.Copies, 1)
	assert.Equal(t, "Dev/Setup/diagram.png", d.Copies[0].Target)
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "myfile.txt", SanitizeFilename("my file .txt"))
	assert.Equal(t, "café.png", SanitizeFilename("café.png"))
}

func TestRelativePath(t *testing.T) {
	assert.Equal(t, "Other/pic.png", relativePath(".", "Other/pic.png"))
	assert.Equal(t, "Build/pic.png", relativePath("Dev", "Dev/Build/pic.png"))
	assert.Equal(t, "../Other/pic.png", relativePath("Dev", "Other/pic.png"))
	assert.Equal(t, "../../A/pic.png", relativePath("Dev/Sub", "A/pic.png"))
}
