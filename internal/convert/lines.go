package convert

import (
	"regexp"
	"strings"
)

// mapLines applies fn to every line. Line terminators are preserved.
func mapLines(content string, fn func(line string) string) string {
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = fn(line)
	}
	return strings.Join(lines, "\n")
}

// fenceOpen matches a Markdown code fence opener.
var fenceOpen = regexp.MustCompile("^[ \t]{0,3}(`{3,}|~{3,})")

// mapLinesOutsideFences applies fn to lines outside Markdown fenced code
// blocks. Fence lines and block content are passed through untouched.
func mapLinesOutsideFences(content string, fn func(line string) string) string {
	var fence string
	return mapLines(content, func(line string) string {
		if fence != "" {
			if isFenceClose(line, fence) {
				fence = ""
			}
			return line
		}
		if m := fenceOpen.FindStringSubmatch(line); m != nil {
			fence = m[1]
			return line
		}
		return fn(line)
	})
}

func isFenceClose(line, fence string) bool {
	trimmed := strings.TrimSpace(line)
	if len(trimmed) < len(fence) || trimmed[0] != fence[0] {
		return false
	}
	return strings.Trim(trimmed, fence[:1]) == ""
}

// replaceOutsideCode applies fn to the parts of content that are not inside
// Trac {{{ }}} code, so preprocessing never edits code.
func replaceOutsideCode(content string, fn func(string) string) string {
	var b strings.Builder
	for len(content) > 0 {
		open := strings.Index(content, "{{{")
		if open < 0 {
			b.WriteString(fn(content))
			break
		}
		b.WriteString(fn(content[:open]))
		end := matchingClose(content, open)
		if end < 0 {
			b.WriteString(content[open:])
			break
		}
		b.WriteString(content[open:end])
		content = content[end:]
	}
	return b.String()
}

// matchingClose returns the index just past the "}}}" closing the "{{{" at
// open, honoring nesting, or -1.
func matchingClose(content string, open int) int {
	depth := 0
	for i := open; i+3 <= len(content); {
		switch content[i : i+3] {
		case "{{{":
			depth++
			i += 3
		case "}}}":
			depth--
			i += 3
			if depth == 0 {
				return i
			}
		default:
			i++
		}
	}
	return -1
}

// isBoundaryBefore reports whether the byte before pos may precede a
// reference token: start of text, whitespace or opening punctuation.
func isBoundaryBefore(s string, pos int) bool {
	if pos == 0 {
		return true
	}
	switch s[pos-1] {
	case ' ', '\t', '\n', '(', '[', '{', ',', ';', '"', '\'', '|', '>', '*':
		return true
	}
	// A token directly after a protected span also starts fresh.
	return strings.HasSuffix(s[:pos], string(placeholderClose))
}

// trimTrailingPunct strips sentence punctuation that is not part of a bare reference.
func trimTrailingPunct(s string) string {
	return strings.TrimRight(s, ".,;:!?)'\"")
}
