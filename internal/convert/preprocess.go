package convert

import (
	"regexp"
	"strings"
)

var lineEndingRe = regexp.MustCompile(`\r\n?`)

func normalizeLineEndings(content string) string {
	return lineEndingRe.ReplaceAllString(content, "\n")
}

// stripWrappingQuotes removes a pair of double quotes enclosing the whole page.
func stripWrappingQuotes(content string) string {
	body := strings.TrimRight(content, " \t\n")
	if len(body) < 2 || body[0] != '"' || body[len(body)-1] != '"' {
		return content
	}
	return body[1:len(body)-1] + content[len(body):]
}

// macroStripper removes the named macros, with or without arguments.
// A macro alone on its line takes the line with it.
type macroStripper struct {
	lineRe   *regexp.Regexp
	inlineRe *regexp.Regexp
}

func newMacroStripper(names []string) *macroStripper {
	if len(names) == 0 {
		return &macroStripper{}
	}
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = regexp.QuoteMeta(n)
	}
	macro := `\[\[(?:` + strings.Join(quoted, "|") + `)(?:\([^\n]*?\))?\]\]`
	return &macroStripper{
		lineRe:   regexp.MustCompile(`(?m)^[ \t]*` + macro + `[ \t]*(?:\n|$)`),
		inlineRe: regexp.MustCompile(macro),
	}
}

func (s *macroStripper) strip(content string) string {
	if s.lineRe == nil {
		return content
	}
	return replaceOutsideCode(content, func(text string) string {
		text = s.lineRe.ReplaceAllString(text, "")
		return s.inlineRe.ReplaceAllString(text, "")
	})
}

var lineBreakRe = regexp.MustCompile(`(?i)\[\[br\]\]`)

// convertLineBreaks turns [[BR]] into <br> inside table rows and into a
// newline everywhere else.
func convertLineBreaks(content string) string {
	return replaceOutsideCode(content, func(text string) string {
		if !lineBreakRe.MatchString(text) {
			return text
		}
		return mapLines(text, func(line string) string {
			if strings.HasPrefix(strings.TrimSpace(line), "||") {
				return lineBreakRe.ReplaceAllString(line, "<br>")
			}
			return lineBreakRe.ReplaceAllString(line, "\n")
		})
	})
}

func preprocessTransforms(opts Options) []Transformer {
	stripper := newMacroStripper(opts.StripMacros)
	return []Transformer{
		&funcTransform{
			name:  "normalize_line_endings",
			stage: StagePreprocess,
			deps:  TransformDependencies{MustRunBefore: []string{"strip_wrapping_quotes", "strip_macros", "line_breaks"}},
			fn:    contentRewrite(normalizeLineEndings),
		},
		&funcTransform{
			name:  "strip_wrapping_quotes",
			stage: StagePreprocess,
			fn:    contentRewrite(stripWrappingQuotes),
		},
		&funcTransform{
			name:  "strip_macros",
			stage: StagePreprocess,
			deps:  TransformDependencies{MustRunAfter: []string{"strip_wrapping_quotes"}},
			fn:    contentRewrite(stripper.strip),
		},
		&funcTransform{
			name:  "line_breaks",
			stage: StagePreprocess,
			deps:  TransformDependencies{MustRunAfter: []string{"strip_macros"}},
			fn:    contentRewrite(convertLineBreaks),
		},
	}
}
