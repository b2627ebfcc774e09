package convert

import (
	"regexp"
	"strings"
)

var (
	headerRe     = regexp.MustCompile(`^(={1,6})\s+(.*?)\s*$`)
	headerBodyRe = regexp.MustCompile(`^(.*?)(?:\s*=+)?(?:\s+#([A-Za-z][\w.:-]*))?$`)
)

// convertHeaders rewrites "== Title == #anchor" to "## Title {#anchor}".
// Depths beyond four are left alone.
func convertHeaders(content string) string {
	return mapLines(content, func(line string) string {
		m := headerRe.FindStringSubmatch(line)
		if m == nil || len(m[1]) > 4 {
			return line
		}
		body := headerBodyRe.FindStringSubmatch(m[2])
		title := strings.TrimSpace(body[1])
		if title == "" {
			return line
		}
		out := strings.Repeat("#", len(m[1])) + " " + title
		if body[2] != "" {
			out += " {#" + body[2] + "}"
		}
		return out
	})
}

var hruleRe = regexp.MustCompile(`^\s*-{4,}\s*$`)

// convertHorizontalRules normalizes dash rules and separates them from a
// preceding text line so they do not turn it into a setext heading.
func convertHorizontalRules(content string) string {
	lines := strings.Split(content, "\n")
	out := make([]string, 0, len(lines))
	for i, line := range lines {
		if !hruleRe.MatchString(line) {
			out = append(out, line)
			continue
		}
		if i > 0 && strings.TrimSpace(lines[i-1]) != "" {
			out = append(out, "")
		}
		out = append(out, "----")
	}
	return strings.Join(out, "\n")
}

func isTableRow(line string) bool {
	return strings.HasPrefix(strings.TrimSpace(line), "||")
}

// convertTables rewrites runs of "||" rows into pipe tables. The first row
// becomes the header row. Cells are delimited by cellSeparator until
// finishTables runs, so later stages still see the raw cell text.
func convertTables(content string) string {
	lines := strings.Split(content, "\n")
	out := make([]string, 0, len(lines))

	for i := 0; i < len(lines); {
		if !isTableRow(lines[i]) {
			out = append(out, lines[i])
			i++
			continue
		}

		var rows [][]string
		for i < len(lines) && isTableRow(lines[i]) {
			row := strings.TrimSpace(lines[i])
			i++
			for strings.HasSuffix(row, `\`) && i < len(lines) {
				row = joinContinuation(strings.TrimSuffix(row, `\`), strings.TrimSpace(lines[i]))
				i++
			}
			rows = append(rows, tableCells(row))
		}

		if len(out) > 0 && strings.TrimSpace(out[len(out)-1]) != "" {
			out = append(out, "")
		}
		out = append(out, renderTable(rows)...)
		if i < len(lines) && strings.TrimSpace(lines[i]) != "" {
			out = append(out, "")
		}
	}
	return strings.Join(out, "\n")
}

// joinContinuation appends a continued row without producing an empty cell.
func joinContinuation(row, next string) string {
	row = strings.TrimSpace(row)
	if strings.HasSuffix(row, "||") && strings.HasPrefix(next, "||") {
		return row + next[2:]
	}
	return row + " " + next
}

// tableCells splits one Trac row into trimmed cell texts.
func tableCells(row string) []string {
	row = strings.TrimPrefix(row, "||")
	row = strings.TrimSuffix(row, "||")
	parts := strings.Split(row, "||")
	cells := make([]string, len(parts))
	for i, p := range parts {
		cell := strings.TrimSpace(p)
		if strings.HasPrefix(cell, "=") && strings.HasSuffix(cell, "=") && len(cell) >= 2 {
			cell = strings.TrimSpace(cell[1 : len(cell)-1])
		}
		cells[i] = cell
	}
	return cells
}

func renderTable(rows [][]string) []string {
	width := 0
	for _, r := range rows {
		width = max(width, len(r))
	}

	sep := string(cellSeparator)
	out := make([]string, 0, len(rows)+1)
	for i, r := range rows {
		for len(r) < width {
			r = append(r, "")
		}
		out = append(out, sep+" "+strings.Join(r, " "+sep+" ")+" "+sep)
		if i == 0 {
			sep := make([]string, width)
			for j := range sep {
				sep[j] = "---"
			}
			out = append(out, "| "+strings.Join(sep, " | ")+" |")
		}
	}
	return out
}

var (
	bulletRe  = regexp.MustCompile(`^([ \t]*)[*-][ \t]+(.*)$`)
	orderedRe = regexp.MustCompile(`^([ \t]*)(\d+|[a-zA-Z]|[ivxIVX]+)\.[ \t]+(.*)$`)
)

type listLevel struct {
	source int // indentation in the Trac text
	target int // indentation of the marker in the output
	width  int // marker width including the trailing space
}

// convertLists rewrites "*" bullets to "-" and re-indents nested items so
// each level sits under its parent's content column. "-" bullets are list
// items too, which keeps converted lists stable on a second pass.
func convertLists(d *Document) error {
	lines := strings.Split(d.Content, "\n")
	var stack []listLevel

	for i, line := range lines {
		indent, marker, text, ok := listItem(line, len(stack) > 0)
		if !ok {
			trimmed := strings.TrimSpace(line)
			switch {
			case len(stack) == 0:
			case trimmed == "" || d.vault.IsBlock(trimmed):
				stack = nil
			case indentWidth(line) > 0:
				top := stack[len(stack)-1]
				lines[i] = strings.Repeat(" ", top.target+top.width) + trimmed
			default:
				stack = nil
			}
			continue
		}

		for len(stack) > 0 && stack[len(stack)-1].source > indent {
			stack = stack[:len(stack)-1]
		}
		target := 0
		switch {
		case len(stack) == 0:
		case stack[len(stack)-1].source == indent:
			target = stack[len(stack)-1].target
			stack = stack[:len(stack)-1]
		default:
			parent := stack[len(stack)-1]
			target = parent.target + parent.width
		}
		stack = append(stack, listLevel{source: indent, target: target, width: len(marker) + 1})
		lines[i] = strings.Repeat(" ", target) + marker + " " + text
	}

	d.Content = strings.Join(lines, "\n")
	return nil
}

// listItem recognizes a list line. Ordered items only count inside a list
// that already started or when they use digits.
func listItem(line string, inList bool) (indent int, marker, text string, ok bool) {
	if m := bulletRe.FindStringSubmatch(line); m != nil {
		return indentWidth(m[1]), "-", m[2], true
	}
	if m := orderedRe.FindStringSubmatch(line); m != nil {
		isDigit := m[2][0] >= '0' && m[2][0] <= '9'
		if !isDigit && !inList {
			return 0, "", "", false
		}
		number := m[2]
		if !isDigit {
			number = "1"
		}
		return indentWidth(m[1]), number + ".", m[3], true
	}
	return 0, "", "", false
}

func indentWidth(s string) int {
	w := 0
	for _, r := range s {
		switch r {
		case ' ':
			w++
		case '\t':
			w += 4
		default:
			return w
		}
	}
	return w
}

func trimTrailingWhitespace(content string) string {
	return mapLinesOutsideFences(content, func(line string) string {
		return strings.TrimRight(line, " \t")
	})
}

func structureTransforms() []Transformer {
	return []Transformer{
		&funcTransform{
			name:  "trim_trailing_whitespace",
			stage: StageStructure,
			deps:  TransformDependencies{MustRunBefore: []string{"headers", "horizontal_rules", "tables", "unordered_lists"}},
			fn:    contentRewrite(trimTrailingWhitespace),
		},
		&funcTransform{
			name:  "headers",
			stage: StageStructure,
			deps:  TransformDependencies{MustRunBefore: []string{"unordered_lists", "horizontal_rules"}},
			fn:    contentRewrite(convertHeaders),
		},
		&funcTransform{
			name:  "horizontal_rules",
			stage: StageStructure,
			deps:  TransformDependencies{MustRunBefore: []string{"unordered_lists", "tables"}},
			fn:    contentRewrite(convertHorizontalRules),
		},
		&funcTransform{
			name:  "tables",
			stage: StageStructure,
			deps:  TransformDependencies{MustRunBefore: []string{"unordered_lists"}},
			fn:    contentRewrite(convertTables),
		},
		&funcTransform{
			name:  "unordered_lists",
			stage: StageStructure,
			fn:    convertLists,
		},
	}
}
