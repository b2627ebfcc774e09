package convert

import (
	"regexp"
	"strings"

	"github.com/alecthomas/chroma/v2/lexers"
)

// HTMLMode controls how {{{#!html}}} blocks are emitted.
type HTMLMode int

const (
	// HTMLFence emits HTML processor blocks as html code blocks.
	HTMLFence HTMLMode = iota
	// HTMLSanitize emits them as raw HTML with active content removed.
	HTMLSanitize
)

// wrapperProcessors hold wiki markup and are unwrapped so their content is converted.
var wrapperProcessors = map[string]bool{
	"div": true, "span": true, "wiki": true, "td": true, "th": true, "tr": true, "table": true,
}

// codeBlocks converts {{{ }}} blocks to fenced blocks and vaults them along
// with any Markdown fences already present.
type codeBlocks struct {
	html HTMLMode
}

func (c *codeBlocks) transform(d *Document) error {
	lines := strings.Split(d.Content, "\n")
	out := make([]string, 0, len(lines))

	for i := 0; i < len(lines); {
		line := lines[i]
		trimmed := strings.TrimSpace(line)

		if m := fenceOpen.FindStringSubmatch(line); m != nil {
			if end := markdownFenceEnd(lines, i, m[1]); end >= 0 {
				out = append(out, d.Protect(strings.Join(lines[i:end+1], "\n")))
				i = end + 1
				continue
			}
		}

		if isTracBlockOpen(trimmed) {
			end := tracBlockEnd(lines, i)
			if end < 0 {
				// Unclosed block: leave it unconverted.
				out = append(out, line)
				i++
				continue
			}
			indent := line[:len(line)-len(strings.TrimLeft(line, " \t"))]
			header := strings.TrimSpace(trimmed[3:])
			body := append([]string(nil), lines[i+1:end]...)

			var processor string
			switch {
			case strings.HasPrefix(header, "#!"):
				processor = header[2:]
			case header == "" && len(body) > 0 && strings.HasPrefix(strings.TrimSpace(body[0]), "#!"):
				processor = strings.TrimSpace(body[0])[2:]
				body = body[1:]
			case header != "":
				body = append([]string{header}, body...)
			}
			name := processorName(processor)
			if wrapperProcessors[name] {
				// Rescan the unwrapped content for nested blocks.
				rest := append(body, lines[end+1:]...)
				lines = append(lines[:i:i], rest...)
				continue
			}
			out = append(out, c.render(d, indent, name, body)...)
			i = end + 1
			continue
		}

		out = append(out, line)
		i++
	}

	d.Content = strings.Join(out, "\n")
	return nil
}

func processorName(processor string) string {
	fields := strings.Fields(processor)
	if len(fields) == 0 {
		return ""
	}
	return strings.ToLower(fields[0])
}

func (c *codeBlocks) render(d *Document, indent, name string, body []string) []string {
	content := strings.Join(body, "\n")

	switch {
	case name == "comment":
		return nil
	case name == "htmlcomment":
		return []string{indent + d.Protect("<!--\n"+content+"\n-->")}
	case name == "html" && c.html == HTMLSanitize:
		return []string{indent + d.Protect(sanitizeHTML(content))}
	}

	fence := fenceFor(body)
	block := fence + languageTag(name) + "\n"
	if len(body) > 0 {
		block += content + "\n"
	}
	block += indent + fence
	return []string{indent + d.Protect(block)}
}

func isTracBlockOpen(trimmed string) bool {
	return strings.HasPrefix(trimmed, "{{{") && !strings.Contains(trimmed[3:], "}}}")
}

// tracBlockEnd returns the index of the line closing the block opened at
// start, honoring nested blocks, or -1.
func tracBlockEnd(lines []string, start int) int {
	depth := 1
	for j := start + 1; j < len(lines); j++ {
		t := strings.TrimSpace(lines[j])
		switch {
		case isTracBlockOpen(t):
			depth++
		case t == "}}}":
			depth--
			if depth == 0 {
				return j
			}
		}
	}
	return -1
}

func markdownFenceEnd(lines []string, start int, fence string) int {
	for j := start + 1; j < len(lines); j++ {
		if isFenceClose(lines[j], fence) {
			return j
		}
	}
	return -1
}

// fenceFor picks a backtick fence longer than any fence inside body.
func fenceFor(body []string) string {
	n := 3
	for _, line := range body {
		t := strings.TrimSpace(line)
		run := len(t) - len(strings.TrimLeft(t, "`"))
		if run >= n {
			n = run + 1
		}
	}
	return strings.Repeat("`", n)
}

// languageTag maps a Trac processor name to the canonical name chroma knows
// it by. Unknown names pass through lowercased.
func languageTag(name string) string {
	switch name {
	case "", "default":
		return ""
	}
	lexer := lexers.Get(name)
	if lexer == nil && strings.Contains(name, "/") {
		lexer = lexers.MatchMimeType(name)
	}
	if lexer == nil {
		return name
	}
	cfg := lexer.Config()
	if len(cfg.Aliases) > 0 {
		return cfg.Aliases[0]
	}
	return strings.ToLower(cfg.Name)
}

var tracInlineCodeRe = regexp.MustCompile(`\{\{\{(.+?)\}\}\}`)

func protectInlineCode(d *Document) error {
	content := tracInlineCodeRe.ReplaceAllStringFunc(d.Content, func(m string) string {
		return d.Protect(inlineCode(m[3 : len(m)-3]))
	})
	d.Content = protectCodeSpans(d, content)
	return nil
}

// protectCodeSpans vaults Markdown code spans. A span opens with a run of
// backticks and closes at the next run of the same length on that line.
func protectCodeSpans(d *Document, content string) string {
	if !strings.Contains(content, "`") {
		return content
	}
	var b strings.Builder
	for {
		start := strings.IndexByte(content, '`')
		if start < 0 {
			b.WriteString(content)
			return b.String()
		}
		n := backtickRun(content[start:])
		rest := content[start+n:]
		end := closingRun(rest, n)
		if end < 0 {
			b.WriteString(content[:start+n])
			content = rest
			continue
		}
		b.WriteString(content[:start])
		b.WriteString(d.Protect(content[start : start+n+end+n]))
		content = rest[end+n:]
	}
}

func backtickRun(s string) int {
	n := 0
	for n < len(s) && s[n] == '`' {
		n++
	}
	return n
}

// closingRun returns the offset of the first run of exactly n backticks in
// s before the end of the line, or -1.
func closingRun(s string, n int) int {
	for i := 0; i < len(s); {
		switch s[i] {
		case '\n':
			return -1
		case '`':
			run := backtickRun(s[i:])
			if run == n {
				return i
			}
			i += run
		default:
			i++
		}
	}
	return -1
}

// inlineCode renders s as a code span using the shortest safe delimiter.
func inlineCode(s string) string {
	if !strings.Contains(s, "`") {
		return "`" + s + "`"
	}
	longest, run := 0, 0
	for _, r := range s {
		if r == '`' {
			run++
			longest = max(longest, run)
		} else {
			run = 0
		}
	}
	delim := strings.Repeat("`", longest+1)
	return delim + " " + s + " " + delim
}

var existingMarkdownRe = regexp.MustCompile(
	`!\[[^\]\n]*\]\([^)\s]*\)` + // images
		`|\[[^\]\n]+\]\([^)\s]+\)` + // inline links
		`|<(?:https?|ftp|mailto):[^>\s]+>`) // autolinks

func protectExistingMarkdown(d *Document) error {
	d.Content = existingMarkdownRe.ReplaceAllStringFunc(d.Content, d.Protect)
	return nil
}

var escapeRe = regexp.MustCompile(`!(` +
	`\[[^\]\n]+\]` +
	`|#\d+` +
	`|\{\d+\}` +
	`|(?:wiki|ticket|report|source|log|attachment|raw-attachment):[^\s\]]+` +
	`|[A-Z][a-z0-9]+(?:[A-Z][a-z0-9]+)+` +
	`)`)

// protectEscapes vaults !-escaped references without the leading "!".
func protectEscapes(d *Document) error {
	d.Content = escapeRe.ReplaceAllStringFunc(d.Content, func(m string) string {
		return d.Protect(m[1:])
	})
	return nil
}

func protectTransforms(opts Options) []Transformer {
	blocks := &codeBlocks{html: opts.HTML}
	return []Transformer{
		&funcTransform{
			name:  "code_blocks",
			stage: StageProtect,
			deps: TransformDependencies{
				MustRunBefore:        []string{"inline_code"},
				ProducesPlaceholders: true,
			},
			fn: blocks.transform,
		},
		&funcTransform{
			name:  "inline_code",
			stage: StageProtect,
			deps: TransformDependencies{
				MustRunBefore:        []string{"existing_markdown"},
				ProducesPlaceholders: true,
			},
			fn: protectInlineCode,
		},
		&funcTransform{
			name:  "existing_markdown",
			stage: StageProtect,
			deps: TransformDependencies{
				MustRunBefore:        []string{"escapes"},
				ProducesPlaceholders: true,
			},
			fn: protectExistingMarkdown,
		},
		&funcTransform{
			name:  "escapes",
			stage: StageProtect,
			deps:  TransformDependencies{ProducesPlaceholders: true},
			fn:    protectEscapes,
		},
	}
}
